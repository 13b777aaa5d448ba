// Package metadata is a small key/value store in the local database. It keeps
// cached credentials, the session token and the sync watermark.
package metadata

import (
	"context"
	"time"
)

type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error

	// GetTime returns nil when the key is absent.
	GetTime(ctx context.Context, key string) (*time.Time, error)
	SetTime(ctx context.Context, key string, t time.Time) error
}

// Package blob stores backup objects in an S3-compatible bucket.
package blob

import (
	"context"
	"errors"
	"io"
)

var ErrNotFound = errors.New("object not found")

// Store is the minimal object storage surface the backup service needs.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, contentType string) error
	// Get returns ErrNotFound for unknown keys.
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	// List returns the keys under prefix in lexical order.
	List(ctx context.Context, prefix string) ([]string, error)
}

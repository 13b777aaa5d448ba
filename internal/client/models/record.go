// Package models defines the gift-planning domain entities, the generic
// Record the sync engine moves around and the queued sync operation.
package models

import (
	"fmt"
	"maps"
	"time"
)

// EntityType names a synchronised collection. The value doubles as the
// local and remote table name.
type EntityType string

const (
	EntityHolidays   EntityType = "holidays"
	EntityRecipients EntityType = "recipients"
	EntityGifts      EntityType = "gifts"
)

// PullOrder is the fixed order in which collections are reconciled so that
// parents land before their children.
var PullOrder = []EntityType{EntityHolidays, EntityRecipients, EntityGifts}

func (t EntityType) Valid() bool {
	switch t {
	case EntityHolidays, EntityRecipients, EntityGifts:
		return true
	}
	return false
}

func ParseEntityType(s string) (EntityType, error) {
	t := EntityType(s)
	if !t.Valid() {
		return "", fmt.Errorf("unknown entity type %q", s)
	}
	return t, nil
}

// Record is the storage-agnostic form of any domain entity. Fields holds the
// domain attributes keyed by their local (camelCase) names.
type Record struct {
	ID        string         `json:"id"`
	UserID    *string        `json:"userId,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt *time.Time     `json:"deletedAt,omitempty"`
	Fields    map[string]any `json:"fields"`
}

// ComparisonTime is the timestamp used by last-write-wins: UpdatedAt when
// set, CreatedAt otherwise.
func (r *Record) ComparisonTime() time.Time {
	if !r.UpdatedAt.IsZero() {
		return r.UpdatedAt
	}
	return r.CreatedAt
}

// Clone returns a deep enough copy for the engine to mutate safely: the
// field map and pointer members are copied, field values are shared.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	c := *r
	if r.UserID != nil {
		uid := *r.UserID
		c.UserID = &uid
	}
	if r.DeletedAt != nil {
		d := *r.DeletedAt
		c.DeletedAt = &d
	}
	c.Fields = maps.Clone(r.Fields)
	if c.Fields == nil {
		c.Fields = map[string]any{}
	}
	return &c
}

// Owner returns the owning user id or "" for unclaimed records.
func (r *Record) Owner() string {
	if r.UserID == nil {
		return ""
	}
	return *r.UserID
}

// String returns a text field, "" when missing or not a string.
func (r *Record) String(key string) string {
	s, _ := r.Fields[key].(string)
	return s
}

// Number returns a numeric field as float64, 0 when missing.
func (r *Record) Number(key string) float64 {
	switch v := r.Fields[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case int32:
		return float64(v)
	}
	return 0
}

// StringPtr returns a pointer to s, or nil for "".
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

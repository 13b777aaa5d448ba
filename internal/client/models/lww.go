package models

import (
	"maps"
	"time"
)

// UpsertOutcome reports what a last-write-wins upsert did.
type UpsertOutcome int

const (
	OutcomeSkipped UpsertOutcome = iota
	OutcomeCreated
	OutcomeUpdated
)

func (o UpsertOutcome) String() string {
	switch o {
	case OutcomeCreated:
		return "created"
	case OutcomeUpdated:
		return "updated"
	default:
		return "skipped"
	}
}

// ResolveLWW decides how incoming is applied on top of existing (nil when the
// id is not stored yet) and returns the record to persist.
//
// An existing record strictly newer than incoming wins and nothing is
// written. On a tie incoming wins, so the most recently applied call
// prevails. Fields are merged with incoming taking precedence, creation time
// stays with the first copy, and the merged record is stamped with the
// incoming comparison time, or now if incoming carries no timestamp at all.
func ResolveLWW(existing, incoming *Record, now time.Time) (*Record, UpsertOutcome) {
	if existing == nil {
		created := incoming.Clone()
		if created.CreatedAt.IsZero() {
			created.CreatedAt = timeOr(created.UpdatedAt, now)
		}
		if created.UpdatedAt.IsZero() {
			created.UpdatedAt = created.CreatedAt
		}
		return created, OutcomeCreated
	}

	incomingAt := incoming.ComparisonTime()
	if existing.ComparisonTime().After(incomingAt) {
		return existing, OutcomeSkipped
	}

	merged := existing.Clone()
	maps.Copy(merged.Fields, incoming.Fields)
	if incoming.UserID != nil {
		uid := *incoming.UserID
		merged.UserID = &uid
	}
	if merged.CreatedAt.IsZero() {
		merged.CreatedAt = incoming.CreatedAt
	}
	merged.UpdatedAt = timeOr(incomingAt, now)
	merged.DeletedAt = nil

	return merged, OutcomeUpdated
}

func timeOr(t, fallback time.Time) time.Time {
	if t.IsZero() {
		return fallback
	}
	return t
}

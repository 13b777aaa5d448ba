package models

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2025, 12, 1, 10, 0, 0, 0, time.UTC)

func rec(id string, updated time.Time, fields map[string]any) *Record {
	return &Record{ID: id, CreatedAt: base, UpdatedAt: updated, Fields: fields}
}

func TestResolveLWW_CreatesWhenMissing(t *testing.T) {
	in := rec("h1", base.Add(time.Minute), map[string]any{"name": "Xmas"})

	got, outcome := ResolveLWW(nil, in, base.Add(time.Hour))

	require.Equal(t, OutcomeCreated, outcome)
	assert.Equal(t, "Xmas", got.Fields["name"])
	assert.Equal(t, base.Add(time.Minute), got.UpdatedAt)
	assert.NotSame(t, in, got)
}

func TestResolveLWW_CreatedStampsMissingTimes(t *testing.T) {
	now := base.Add(time.Hour)
	got, outcome := ResolveLWW(nil, &Record{ID: "h1"}, now)

	require.Equal(t, OutcomeCreated, outcome)
	assert.Equal(t, now, got.CreatedAt)
	assert.Equal(t, now, got.UpdatedAt)
}

func TestResolveLWW_SkipsWhenExistingIsNewer(t *testing.T) {
	existing := rec("h1", base.Add(2*time.Minute), map[string]any{"name": "local"})
	incoming := rec("h1", base.Add(time.Minute), map[string]any{"name": "remote"})

	got, outcome := ResolveLWW(existing, incoming, base.Add(time.Hour))

	require.Equal(t, OutcomeSkipped, outcome)
	assert.Equal(t, "local", got.Fields["name"])
}

func TestResolveLWW_TieGoesToIncoming(t *testing.T) {
	ts := base.Add(time.Minute)
	existing := rec("h1", ts, map[string]any{"name": "first"})
	incoming := rec("h1", ts, map[string]any{"name": "second"})

	got, outcome := ResolveLWW(existing, incoming, base.Add(time.Hour))

	require.Equal(t, OutcomeUpdated, outcome)
	assert.Equal(t, "second", got.Fields["name"])
}

func TestResolveLWW_KeepsIncomingTimestamp(t *testing.T) {
	now := base.Add(time.Hour)
	existing := rec("h1", base, map[string]any{"name": "v1"})

	got, outcome := ResolveLWW(existing, rec("h1", base.Add(time.Minute), map[string]any{"name": "v2"}), now)
	require.Equal(t, OutcomeUpdated, outcome)
	assert.Equal(t, base.Add(time.Minute), got.UpdatedAt, "not restamped with the apply time")

	// a write made before now but after v2 must still win
	got, outcome = ResolveLWW(got, rec("h1", base.Add(2*time.Minute), map[string]any{"name": "v3"}), now)
	require.Equal(t, OutcomeUpdated, outcome)
	assert.Equal(t, "v3", got.Fields["name"])
}

func TestResolveLWW_MergesFieldsAndKeepsCreatedAt(t *testing.T) {
	existing := rec("h1", base, map[string]any{"name": "old", "notes": "keep me"})
	incoming := &Record{ID: "h1", CreatedAt: base.Add(time.Hour), UpdatedAt: base.Add(time.Hour), Fields: map[string]any{"name": "new"}}

	got, outcome := ResolveLWW(existing, incoming, base.Add(2*time.Hour))

	require.Equal(t, OutcomeUpdated, outcome)
	assert.Equal(t, "new", got.Fields["name"])
	assert.Equal(t, "keep me", got.Fields["notes"])
	assert.Equal(t, base, got.CreatedAt)
	assert.Equal(t, base.Add(time.Hour), got.UpdatedAt)
	assert.Equal(t, "old", existing.Fields["name"], "existing must not be mutated")
}

func TestResolveLWW_FallsBackToCreatedAt(t *testing.T) {
	existing := &Record{ID: "g1", CreatedAt: base.Add(time.Minute), Fields: map[string]any{"title": "a"}}
	incoming := &Record{ID: "g1", CreatedAt: base, Fields: map[string]any{"title": "b"}}

	_, outcome := ResolveLWW(existing, incoming, base.Add(time.Hour))
	assert.Equal(t, OutcomeSkipped, outcome)
}

func TestResolveLWW_UpdatedAtNeverDecreases(t *testing.T) {
	stored, _ := ResolveLWW(nil, rec("h1", base, map[string]any{"v": 0.0}), base)

	r := rand.New(rand.NewSource(1))
	for i := 0; i < 200; i++ {
		in := rec("h1", base.Add(time.Duration(r.Intn(1000))*time.Second), map[string]any{"v": float64(i)})
		next, outcome := ResolveLWW(stored, in, base.Add(time.Hour))
		require.False(t, next.UpdatedAt.Before(stored.UpdatedAt), "iteration %d (%s)", i, outcome)
		stored = next
	}
}

// Applying the same set of upserts in any order converges to the fields of
// the upsert with the greatest comparison timestamp.
func TestResolveLWW_OrderIndependent(t *testing.T) {
	r := rand.New(rand.NewSource(42))

	for round := 0; round < 100; round++ {
		n := 2 + r.Intn(6)
		offsets := r.Perm(50)[:n] // distinct timestamps
		calls := make([]*Record, n)
		maxIdx := 0
		for i := range calls {
			calls[i] = rec("h1", base.Add(time.Duration(offsets[i])*time.Minute), map[string]any{
				"name":   fmt.Sprintf("name-%d", i),
				"budget": float64(i),
			})
			if offsets[i] > offsets[maxIdx] {
				maxIdx = i
			}
		}

		for shuffle := 0; shuffle < 5; shuffle++ {
			order := r.Perm(n)
			var stored *Record
			for _, idx := range order {
				next, outcome := ResolveLWW(stored, calls[idx], base.Add(24*time.Hour))
				if outcome != OutcomeSkipped {
					stored = next
				}
			}
			require.Equal(t, calls[maxIdx].Fields, stored.Fields, "round %d order %v", round, order)
		}
	}
}

func TestUpsertOutcome_String(t *testing.T) {
	assert.Equal(t, "created", OutcomeCreated.String())
	assert.Equal(t, "updated", OutcomeUpdated.String())
	assert.Equal(t, "skipped", OutcomeSkipped.String())
}

package queue

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(name, category string, at time.Time) Entry {
	return Entry{
		UserID:      uuid.New(),
		DisplayName: name,
		Category:    category,
		EnqueuedAt:  at,
	}
}

func TestTryMatchFIFOOrder(t *testing.T) {
	q := New(zerolog.Nop())
	base := time.Now()

	a := entry("alice", "history", base)
	b := entry("bob", "history", base.Add(time.Second))
	c := entry("carol", "history", base.Add(2*time.Second))
	q.Enqueue(a)
	q.Enqueue(b)
	q.Enqueue(c)

	first, second, ok := q.TryMatch("history")
	require.True(t, ok)
	assert.Equal(t, a.UserID, first.UserID)
	assert.Equal(t, b.UserID, second.UserID)
	assert.Equal(t, 1, q.Size())
	assert.True(t, q.Contains(c.UserID))
}

func TestTryMatchCategorySegregation(t *testing.T) {
	q := New(zerolog.Nop())
	base := time.Now()

	flags := entry("flag-fan", "flags", base)
	capitals := entry("capital-fan", "capitals", base.Add(time.Second))
	q.Enqueue(flags)
	q.Enqueue(capitals)

	_, _, ok := q.TryMatch("flags")
	assert.False(t, ok, "players in different categories must never pair")

	// A second flags player arrives; only the flags pair should match.
	flags2 := entry("flag-fan-2", "flags", base.Add(2*time.Second))
	q.Enqueue(flags2)

	first, second, ok := q.TryMatch("flags")
	require.True(t, ok)
	assert.Equal(t, flags.UserID, first.UserID)
	assert.Equal(t, flags2.UserID, second.UserID)
	assert.True(t, q.Contains(capitals.UserID))
}

func TestTryMatchAnyBridgesCategories(t *testing.T) {
	q := New(zerolog.Nop())
	base := time.Now()

	anyone := entry("anyone", CategoryAny, base)
	capitals := entry("capital-fan", "capitals", base.Add(time.Second))
	q.Enqueue(anyone)
	q.Enqueue(capitals)

	first, second, ok := q.TryMatch(CategoryAny)
	require.True(t, ok)
	assert.Equal(t, anyone.UserID, first.UserID)
	assert.Equal(t, capitals.UserID, second.UserID)
	assert.Equal(t, 0, q.Size())
}

func TestEnqueueIdempotent(t *testing.T) {
	q := New(zerolog.Nop())
	base := time.Now()

	a := entry("alice", "history", base)
	b := entry("bob", "history", base.Add(time.Second))
	q.Enqueue(a)
	q.Enqueue(b)

	// Re-enqueueing moves alice behind bob rather than duplicating her.
	a.EnqueuedAt = base.Add(2 * time.Second)
	q.Enqueue(a)
	assert.Equal(t, 2, q.Size())

	first, second, ok := q.TryMatch("history")
	require.True(t, ok)
	assert.Equal(t, b.UserID, first.UserID)
	assert.Equal(t, a.UserID, second.UserID)
}

func TestCancel(t *testing.T) {
	q := New(zerolog.Nop())

	a := entry("alice", "history", time.Now())
	q.Enqueue(a)

	assert.True(t, q.Cancel(a.UserID))
	assert.False(t, q.Cancel(a.UserID), "cancelling an absent entry is a no-op")
	assert.Equal(t, 0, q.Size())
}

func TestRestorePreservesOrder(t *testing.T) {
	q := New(zerolog.Nop())
	base := time.Now()

	a := entry("alice", "history", base)
	b := entry("bob", "history", base.Add(time.Second))
	c := entry("carol", "history", base.Add(2*time.Second))
	q.Enqueue(a)
	q.Enqueue(b)
	q.Enqueue(c)

	first, second, ok := q.TryMatch("history")
	require.True(t, ok)

	// Session creation failed; both players go back where they were.
	q.Restore(first, second)
	assert.Equal(t, 3, q.Size())

	f2, s2, ok := q.TryMatch("history")
	require.True(t, ok)
	assert.Equal(t, a.UserID, f2.UserID)
	assert.Equal(t, b.UserID, s2.UserID)
}

func TestCompatible(t *testing.T) {
	assert.True(t, Compatible("flags", "flags"))
	assert.True(t, Compatible(CategoryAny, "flags"))
	assert.True(t, Compatible("flags", CategoryAny))
	assert.False(t, Compatible("flags", "capitals"))
}

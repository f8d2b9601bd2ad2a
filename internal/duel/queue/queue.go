package queue

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// CategoryAny matches every category.
const CategoryAny = "any"

// Entry represents a queued player waiting for an opponent.
type Entry struct {
	UserID      uuid.UUID
	DisplayName string
	Category    string
	EnqueuedAt  time.Time
}

// Queue holds players waiting for an opponent, in enqueue order. Pairing is
// category-aware: two players are never matched across incompatible
// categories.
type Queue struct {
	mu      sync.Mutex
	entries []Entry
	logger  zerolog.Logger
}

// New creates an empty matchmaking queue.
func New(logger zerolog.Logger) *Queue {
	return &Queue{logger: logger.With().Str("component", "matchmaking_queue").Logger()}
}

// Enqueue appends a player. A prior entry for the same identity is removed
// first, so re-enqueueing is idempotent and moves the player to the back.
func (q *Queue) Enqueue(e Entry) {
	if e.Category == "" {
		e.Category = CategoryAny
	}
	if e.EnqueuedAt.IsZero() {
		e.EnqueuedAt = time.Now()
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	q.removeLocked(e.UserID)
	q.entries = append(q.entries, e)
	q.logger.Debug().
		Str("user_id", e.UserID.String()).
		Str("category", e.Category).
		Int("queue_size", len(q.entries)).
		Msg("player enqueued")
}

// Cancel removes the queued entry for an identity. Returns false when the
// player was not queued; cancelling an absent entry is a no-op.
func (q *Queue) Cancel(userID uuid.UUID) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.removeLocked(userID)
}

// TryMatch scans for the earliest-enqueued pair whose categories are mutually
// compatible with each other and with the requested category. Both entries
// are removed and returned in enqueue order. Linear scan; queues are small.
func (q *Queue) TryMatch(category string) (first, second Entry, ok bool) {
	if category == "" {
		category = CategoryAny
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	for i := 0; i < len(q.entries); i++ {
		if !Compatible(q.entries[i].Category, category) {
			continue
		}
		for j := i + 1; j < len(q.entries); j++ {
			if !Compatible(q.entries[j].Category, category) {
				continue
			}
			if !Compatible(q.entries[i].Category, q.entries[j].Category) {
				continue
			}

			first, second = q.entries[i], q.entries[j]
			// Remove the later index first so the earlier one stays valid.
			q.entries = append(q.entries[:j], q.entries[j+1:]...)
			q.entries = append(q.entries[:i], q.entries[i+1:]...)
			return first, second, true
		}
	}
	return Entry{}, Entry{}, false
}

// Restore puts entries back after an aborted session creation, preserving
// their original enqueue order.
func (q *Queue) Restore(entries ...Entry) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, e := range entries {
		q.removeLocked(e.UserID)
		q.entries = append(q.entries, e)
	}
	sort.SliceStable(q.entries, func(i, j int) bool {
		return q.entries[i].EnqueuedAt.Before(q.entries[j].EnqueuedAt)
	})
}

// Size reports the number of waiting players.
func (q *Queue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}

// Contains reports whether an identity is currently queued.
func (q *Queue) Contains(userID uuid.UUID) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, e := range q.entries {
		if e.UserID == userID {
			return true
		}
	}
	return false
}

func (q *Queue) removeLocked(userID uuid.UUID) bool {
	for i, e := range q.entries {
		if e.UserID == userID {
			q.entries = append(q.entries[:i], q.entries[i+1:]...)
			return true
		}
	}
	return false
}

// Compatible reports whether two categories may be paired: identical, or
// either side requested "any".
func Compatible(a, b string) bool {
	return a == b || a == CategoryAny || b == CategoryAny
}

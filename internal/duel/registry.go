package duel

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Registry indexes active sessions by duel id and by player id, guaranteeing
// at most one active duel per player. It is injected rather than a process
// global so tests can instantiate isolated registries.
type Registry struct {
	mu       sync.RWMutex
	duels    map[uuid.UUID]*Session
	byPlayer map[uuid.UUID]uuid.UUID
	logger   zerolog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger zerolog.Logger) *Registry {
	return &Registry{
		duels:    make(map[uuid.UUID]*Session),
		byPlayer: make(map[uuid.UUID]uuid.UUID),
		logger:   logger.With().Str("component", "duel_registry").Logger(),
	}
}

// Add registers a session and both player index entries. Fails when either
// player is already in an active duel.
func (r *Registry) Add(s *Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range s.players {
		if duelID, exists := r.byPlayer[p.UserID]; exists {
			return fmt.Errorf("player %s already in duel %s", p.UserID, duelID)
		}
	}

	r.duels[s.ID] = s
	for _, p := range s.players {
		r.byPlayer[p.UserID] = s.ID
	}
	return nil
}

// Get returns the session for a duel id.
func (r *Registry) Get(duelID uuid.UUID) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.duels[duelID]
	return s, ok
}

// ByPlayer returns the active session a player belongs to.
func (r *Registry) ByPlayer(userID uuid.UUID) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	duelID, ok := r.byPlayer[userID]
	if !ok {
		return nil, false
	}
	s, ok := r.duels[duelID]
	return s, ok
}

// PlayerActive reports whether a player has an active duel.
func (r *Registry) PlayerActive(userID uuid.UUID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byPlayer[userID]
	return ok
}

// Remove deletes a session and clears both players' index entries.
func (r *Registry) Remove(duelID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.duels[duelID]
	if !ok {
		return
	}
	delete(r.duels, duelID)
	for _, p := range s.players {
		if r.byPlayer[p.UserID] == duelID {
			delete(r.byPlayer, p.UserID)
		}
	}
	r.logger.Debug().Str("duel_id", duelID.String()).Msg("duel removed from registry")
}

// Len reports the number of active duels.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.duels)
}

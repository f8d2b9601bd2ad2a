package question

import (
	"context"
	"fmt"
	"math/rand"
	"sync"

	"github.com/rs/zerolog"
)

// PoolStore loads the full question pool for a category.
type PoolStore interface {
	Pool(ctx context.Context, category string) ([]Question, error)
}

// Service assembles shuffled question packs from the bank, with an optional
// cache in front. Implements Source.
type Service struct {
	store  PoolStore
	cache  PoolCache
	logger zerolog.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

var _ Source = (*Service)(nil)

// NewService creates a question service. cache may be nil.
func NewService(store PoolStore, cache PoolCache, seed int64, logger zerolog.Logger) *Service {
	return &Service{
		store:  store,
		cache:  cache,
		logger: logger.With().Str("component", "question_service").Logger(),
		rng:    rand.New(rand.NewSource(seed)),
	}
}

// Fetch returns count questions for the category in a fresh random order.
// Returns ErrNotEnoughQuestions when the pool cannot fill the pack.
func (s *Service) Fetch(ctx context.Context, category string, count int) ([]Question, error) {
	if category == "" {
		category = CategoryAny
	}

	pool, err := s.pool(ctx, category)
	if err != nil {
		return nil, err
	}
	if len(pool) < count {
		return nil, fmt.Errorf("%w: have %d, need %d", ErrNotEnoughQuestions, len(pool), count)
	}

	pack := make([]Question, len(pool))
	copy(pack, pool)

	s.mu.Lock()
	s.rng.Shuffle(len(pack), func(i, j int) {
		pack[i], pack[j] = pack[j], pack[i]
	})
	s.mu.Unlock()

	return pack[:count], nil
}

func (s *Service) pool(ctx context.Context, category string) ([]Question, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, category); err != nil {
			s.logger.Warn().Err(err).Str("category", category).Msg("question cache read failed")
		} else if len(cached) > 0 {
			return cached, nil
		}
	}

	pool, err := s.store.Pool(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("load question pool: %w", err)
	}

	if s.cache != nil && len(pool) > 0 {
		if err := s.cache.Set(ctx, category, pool); err != nil {
			s.logger.Warn().Err(err).Str("category", category).Msg("question cache write failed")
		}
	}
	return pool, nil
}

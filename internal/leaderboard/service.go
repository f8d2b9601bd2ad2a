package leaderboard

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	ws "github.com/quizarena/trivia-duel/pkg/http/ws"
)

// Entry represents a leaderboard record sent to clients.
type Entry struct {
	Rank        int       `json:"rank"`
	UserID      uuid.UUID `json:"user_id"`
	DisplayName string    `json:"display_name"`
	Score       int       `json:"score"`
}

// ServiceOptions configures leaderboard service behavior.
type ServiceOptions struct {
	TopN           int
	PubSubChannel  string
	RedisKeyPrefix string
}

// Service manages the ranked best-score structure in Redis and emits updates
// over Pub/Sub. Scores only ever move up: writes use ZADD GT semantics.
type Service struct {
	redis         *redis.Client
	logger        zerolog.Logger
	topN          int
	pubsubChannel string
	prefix        string
}

// NewService constructs a leaderboard service instance.
func NewService(redis *redis.Client, logger zerolog.Logger, opts ServiceOptions) *Service {
	topN := opts.TopN
	if topN <= 0 {
		topN = 50
	}
	channel := opts.PubSubChannel
	if channel == "" {
		channel = "lb:updates"
	}
	prefix := opts.RedisKeyPrefix
	if prefix == "" {
		prefix = "lb"
	}

	return &Service{
		redis:         redis,
		logger:        logger.With().Str("component", "leaderboard").Logger(),
		topN:          topN,
		pubsubChannel: channel,
		prefix:        prefix,
	}
}

// SetIfGreater records a score for a player only when it exceeds the
// previously recorded best, and refreshes the display name metadata.
func (s *Service) SetIfGreater(ctx context.Context, userID uuid.UUID, displayName string, score int) error {
	pipe := s.redis.TxPipeline()
	pipe.ZAddGT(ctx, s.scoresKey(), redis.Z{Score: float64(score), Member: userID.String()})
	pipe.HSet(ctx, s.namesKey(), userID.String(), displayName)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("update leaderboard: %w", err)
	}

	go s.publishUpdate(context.Background())
	return nil
}

// Rank returns a player's 1-based rank, or 0 when not ranked.
func (s *Service) Rank(ctx context.Context, userID uuid.UUID) (int, error) {
	rank, err := s.redis.ZRevRank(ctx, s.scoresKey(), userID.String()).Result()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("leaderboard rank: %w", err)
	}
	return int(rank) + 1, nil
}

// Top retrieves the top N entries.
func (s *Service) Top(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 || limit > s.topN {
		limit = s.topN
	}

	results, err := s.redis.ZRevRangeWithScores(ctx, s.scoresKey(), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("fetch leaderboard: %w", err)
	}

	entries := make([]Entry, 0, len(results))
	for i, z := range results {
		member, _ := z.Member.(string)
		userID, err := uuid.Parse(member)
		if err != nil {
			s.logger.Warn().Str("member", member).Msg("skipping malformed leaderboard member")
			continue
		}

		name, err := s.redis.HGet(ctx, s.namesKey(), member).Result()
		if err != nil && err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read leaderboard display name")
		}

		entries = append(entries, Entry{
			Rank:        i + 1,
			UserID:      userID,
			DisplayName: name,
			Score:       int(z.Score),
		})
	}
	return entries, nil
}

func (s *Service) publishUpdate(ctx context.Context) {
	entries, err := s.Top(ctx, 10)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to collect leaderboard update")
		return
	}
	if len(entries) == 0 {
		return
	}

	payload := ws.LeaderboardUpdatePayload{Top: toWSEntries(entries)}
	data, err := json.Marshal(payload)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to marshal leaderboard update")
		return
	}
	if err := s.redis.Publish(ctx, s.pubsubChannel, data).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to publish leaderboard update")
	}
}

func (s *Service) scoresKey() string {
	return s.prefix + ":best"
}

func (s *Service) namesKey() string {
	return s.prefix + ":names"
}

func toWSEntries(entries []Entry) []ws.LeaderboardEntry {
	result := make([]ws.LeaderboardEntry, len(entries))
	for i, e := range entries {
		result[i] = ws.LeaderboardEntry{
			Rank:        e.Rank,
			UserID:      e.UserID.String(),
			DisplayName: e.DisplayName,
			Score:       e.Score,
		}
	}
	return result
}

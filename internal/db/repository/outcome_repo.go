package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/quizarena/trivia-duel/internal/duel"
)

type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// OutcomeRepository persists finished duel outcomes and tracks per-player
// personal bests.
type OutcomeRepository struct {
	db dbtx
}

var _ duel.OutcomeRecorder = (*OutcomeRepository)(nil)

// NewOutcomeRepository constructs a repository over a pgx pool or tx.
func NewOutcomeRepository(db dbtx) *OutcomeRepository {
	return &OutcomeRepository{db: db}
}

const insertOutcome = `
INSERT INTO duel_outcomes (duel_id, user_id, category, mode, reason, score, correct_count, won, results)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

const selectBest = `
SELECT best_score FROM player_bests WHERE user_id = $1`

const upsertBest = `
INSERT INTO player_bests (user_id, best_score, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (user_id) DO UPDATE
SET best_score = GREATEST(player_bests.best_score, EXCLUDED.best_score),
    updated_at = now()`

// RecordOutcome stores one player's final result and reports whether the
// score beats the player's previously recorded best.
func (r *OutcomeRepository) RecordOutcome(ctx context.Context, userID uuid.UUID, outcome duel.PlayerOutcome) (bool, error) {
	resultsJSON, err := json.Marshal(outcome.Results)
	if err != nil {
		return false, fmt.Errorf("marshal results: %w", err)
	}

	if _, err := r.db.Exec(ctx, insertOutcome,
		outcome.DuelID, userID, outcome.Category, outcome.Mode, outcome.Reason,
		outcome.Score, outcome.CorrectCount, outcome.Won, resultsJSON,
	); err != nil {
		return false, fmt.Errorf("insert outcome: %w", err)
	}

	var prevBest int
	isNewBest := false
	err = r.db.QueryRow(ctx, selectBest, userID).Scan(&prevBest)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		isNewBest = outcome.Score > 0
	case err != nil:
		return false, fmt.Errorf("read best score: %w", err)
	default:
		isNewBest = outcome.Score > prevBest
	}

	if _, err := r.db.Exec(ctx, upsertBest, userID, outcome.Score); err != nil {
		return false, fmt.Errorf("upsert best score: %w", err)
	}

	return isNewBest, nil
}

package repository

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quizarena/trivia-duel/internal/duel"
)

type stubRow struct {
	best int
	err  error
}

func (r stubRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if p, ok := dest[0].(*int); ok {
		*p = r.best
	}
	return nil
}

type stubDB struct {
	best     int
	bestErr  error
	execErr  error
	inserts  []string
	upserted int
}

func (s *stubDB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if s.execErr != nil {
		return pgconn.CommandTag{}, s.execErr
	}
	s.inserts = append(s.inserts, sql)
	if strings.Contains(sql, "player_bests") {
		s.upserted = args[1].(int)
	}
	return pgconn.CommandTag{}, nil
}

func (s *stubDB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return stubRow{best: s.best, err: s.bestErr}
}

func sampleOutcome(score int) duel.PlayerOutcome {
	return duel.PlayerOutcome{
		DuelID:       uuid.New(),
		Category:     "history",
		Mode:         duel.ModeDuel,
		Reason:       duel.ReasonCompleted,
		Score:        score,
		CorrectCount: 7,
		Won:          true,
		Results: []duel.RoundResult{
			{RoundIndex: 0, QuestionID: uuid.NewString(), Correct: true, Points: 140},
		},
	}
}

func TestRecordOutcomeNewBest(t *testing.T) {
	db := &stubDB{best: 500}
	repo := NewOutcomeRepository(db)

	isNew, err := repo.RecordOutcome(context.Background(), uuid.New(), sampleOutcome(800))
	require.NoError(t, err)
	assert.True(t, isNew)
	assert.Equal(t, 800, db.upserted)
	assert.Len(t, db.inserts, 2)
}

func TestRecordOutcomeNotABest(t *testing.T) {
	db := &stubDB{best: 900}
	repo := NewOutcomeRepository(db)

	isNew, err := repo.RecordOutcome(context.Background(), uuid.New(), sampleOutcome(800))
	require.NoError(t, err)
	assert.False(t, isNew)
	// The upsert still runs; GREATEST keeps the stored best intact.
	assert.Equal(t, 800, db.upserted)
}

func TestRecordOutcomeFirstGame(t *testing.T) {
	db := &stubDB{bestErr: pgx.ErrNoRows}
	repo := NewOutcomeRepository(db)

	isNew, err := repo.RecordOutcome(context.Background(), uuid.New(), sampleOutcome(300))
	require.NoError(t, err)
	assert.True(t, isNew)
}

func TestRecordOutcomeZeroScoreFirstGame(t *testing.T) {
	db := &stubDB{bestErr: pgx.ErrNoRows}
	repo := NewOutcomeRepository(db)

	isNew, err := repo.RecordOutcome(context.Background(), uuid.New(), sampleOutcome(0))
	require.NoError(t, err)
	assert.False(t, isNew, "a zero score is not a highlight even on the first game")
}

func TestRecordOutcomeInsertFailure(t *testing.T) {
	db := &stubDB{execErr: errors.New("connection reset")}
	repo := NewOutcomeRepository(db)

	_, err := repo.RecordOutcome(context.Background(), uuid.New(), sampleOutcome(300))
	require.Error(t, err)
}

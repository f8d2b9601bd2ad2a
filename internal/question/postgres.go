package question

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresStore loads category question pools from the question bank.
type PostgresStore struct {
	db querier
}

// NewPostgresStore constructs a store over a pgx pool or connection.
func NewPostgresStore(db querier) *PostgresStore {
	return &PostgresStore{db: db}
}

const poolQuery = `
SELECT id, category, kind, prompt, options, image_url, answer, target_lat, target_lng
FROM questions
WHERE $1 = 'any' OR category = $1`

// Pool returns every question in a category ("any" returns the full bank).
func (s *PostgresStore) Pool(ctx context.Context, category string) ([]Question, error) {
	rows, err := s.db.Query(ctx, poolQuery, category)
	if err != nil {
		return nil, fmt.Errorf("query question pool: %w", err)
	}
	defer rows.Close()

	var questions []Question
	for rows.Next() {
		var (
			q        Question
			imageURL *string
			lat, lng *float64
		)
		if err := rows.Scan(&q.ID, &q.Category, &q.Kind, &q.Prompt, &q.Options, &imageURL, &lat, &lng); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		if imageURL != nil {
			q.ImageURL = *imageURL
		}
		if lat != nil && lng != nil {
			q.Target = &Coordinates{Lat: *lat, Lng: *lng}
		}
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate question pool: %w", err)
	}
	return questions, nil
}

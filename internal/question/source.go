package question

import (
	"context"
	"errors"
)

// ErrNotEnoughQuestions is returned when a category cannot fill a pack.
// Session creation must abort before any player is marked matched.
var ErrNotEnoughQuestions = errors.New("not enough questions for category")

// Source supplies a question set for a category.
type Source interface {
	Fetch(ctx context.Context, category string, count int) ([]Question, error)
}

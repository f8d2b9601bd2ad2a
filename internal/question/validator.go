package question

import (
	"strings"
	"time"

	"github.com/quizarena/trivia-duel/internal/duel/scoring"
)

// Validator scores a submitted answer against a question. It owns answer
// normalization; point arithmetic is delegated to the scoring engine.
type Validator struct {
	engine          *scoring.Engine
	timePerQuestion time.Duration
}

// NewValidator creates a validator bound to the configured round length.
func NewValidator(engine *scoring.Engine, timePerQuestion time.Duration) *Validator {
	return &Validator{engine: engine, timePerQuestion: timePerQuestion}
}

// Validate checks a submission and computes awarded points. timeRemaining is
// the seconds left on the round clock when the answer arrived.
func (v *Validator) Validate(q Question, answer string, timeRemaining float64, coords *Coordinates) Outcome {
	remaining := secondsToDuration(timeRemaining)

	if q.Kind == KindLocation && q.Target != nil {
		if coords == nil {
			return Outcome{}
		}
		dist := scoring.HaversineKm(coords.Lat, coords.Lng, q.Target.Lat, q.Target.Lng)
		points, correct := v.engine.LocationScore(dist, remaining, v.timePerQuestion)
		return Outcome{IsCorrect: correct, Points: points, DistanceKm: &dist}
	}

	correct := normalize(answer) == normalize(q.Answer)
	return Outcome{
		IsCorrect: correct,
		Points:    v.engine.Score(correct, remaining, v.timePerQuestion),
	}
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func secondsToDuration(seconds float64) time.Duration {
	if seconds < 0 {
		return 0
	}
	return time.Duration(seconds * float64(time.Second))
}

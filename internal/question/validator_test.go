package question

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quizarena/trivia-duel/internal/duel/scoring"
)

func newTestValidator() *Validator {
	return NewValidator(scoring.NewEngine(scoring.DefaultConfig()), 10*time.Second)
}

func TestValidateChoice(t *testing.T) {
	v := newTestValidator()
	q := Question{
		ID:     "q1",
		Kind:   KindChoice,
		Answer: "Paris",
	}

	t.Run("exact match", func(t *testing.T) {
		out := v.Validate(q, "Paris", 8, nil)
		assert.True(t, out.IsCorrect)
		assert.Equal(t, 140, out.Points)
		assert.Nil(t, out.DistanceKm)
	})

	t.Run("case and whitespace insensitive", func(t *testing.T) {
		out := v.Validate(q, "  paris ", 8, nil)
		assert.True(t, out.IsCorrect)
	})

	t.Run("wrong answer", func(t *testing.T) {
		out := v.Validate(q, "Lyon", 8, nil)
		assert.False(t, out.IsCorrect)
		assert.Equal(t, 0, out.Points)
	})

	t.Run("negative time clamps to zero bonus", func(t *testing.T) {
		out := v.Validate(q, "Paris", -1, nil)
		assert.True(t, out.IsCorrect)
		assert.Equal(t, 100, out.Points)
	})
}

func TestValidateLocation(t *testing.T) {
	v := newTestValidator()
	q := Question{
		ID:     "q2",
		Kind:   KindLocation,
		Answer: "Paris",
		Target: &Coordinates{Lat: 48.8566, Lng: 2.3522},
	}

	t.Run("guess at the target is correct", func(t *testing.T) {
		out := v.Validate(q, "", 10, &Coordinates{Lat: 48.86, Lng: 2.35})
		assert.True(t, out.IsCorrect)
		assert.Equal(t, 150, out.Points)
		require.NotNil(t, out.DistanceKm)
		assert.Less(t, *out.DistanceKm, 50.0)
	})

	t.Run("far guess earns partial credit", func(t *testing.T) {
		// London, roughly 344 km away.
		out := v.Validate(q, "", 10, &Coordinates{Lat: 51.5074, Lng: -0.1278})
		assert.False(t, out.IsCorrect)
		assert.Greater(t, out.Points, 0)
		assert.Less(t, out.Points, 100)
	})

	t.Run("missing coordinates score zero", func(t *testing.T) {
		out := v.Validate(q, "", 10, nil)
		assert.False(t, out.IsCorrect)
		assert.Equal(t, 0, out.Points)
		assert.Nil(t, out.DistanceKm)
	})
}

package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestScore(t *testing.T) {
	e := NewEngine(DefaultConfig())
	perQuestion := 10 * time.Second

	t.Run("wrong answer scores zero regardless of speed", func(t *testing.T) {
		assert.Equal(t, 0, e.Score(false, 10*time.Second, perQuestion))
	})

	t.Run("instant correct answer earns full bonus", func(t *testing.T) {
		assert.Equal(t, 150, e.Score(true, 10*time.Second, perQuestion))
	})

	t.Run("correct at the buzzer earns base only", func(t *testing.T) {
		assert.Equal(t, 100, e.Score(true, 0, perQuestion))
	})

	t.Run("8s remaining of 10s earns 140", func(t *testing.T) {
		assert.Equal(t, 140, e.Score(true, 8*time.Second, perQuestion))
	})

	t.Run("clock skew beyond the limit is clamped", func(t *testing.T) {
		assert.Equal(t, 150, e.Score(true, 12*time.Second, perQuestion))
		assert.Equal(t, 100, e.Score(true, -time.Second, perQuestion))
	})
}

func TestLocationScore(t *testing.T) {
	e := NewEngine(DefaultConfig())
	perQuestion := 10 * time.Second

	t.Run("inside full-score radius counts as correct", func(t *testing.T) {
		points, correct := e.LocationScore(30, 10*time.Second, perQuestion)
		assert.True(t, correct)
		assert.Equal(t, 150, points)
	})

	t.Run("beyond max distance scores zero", func(t *testing.T) {
		points, correct := e.LocationScore(2000, 5*time.Second, perQuestion)
		assert.False(t, correct)
		assert.Equal(t, 0, points)
	})

	t.Run("midpoint of decay band earns half base, no bonus", func(t *testing.T) {
		points, correct := e.LocationScore(1025, 10*time.Second, perQuestion)
		assert.False(t, correct)
		assert.Equal(t, 50, points)
	})

	t.Run("partial credit never includes the time bonus", func(t *testing.T) {
		points, _ := e.LocationScore(51, 10*time.Second, perQuestion)
		assert.LessOrEqual(t, points, 100)
	})
}

func TestHaversineKm(t *testing.T) {
	t.Run("zero distance", func(t *testing.T) {
		assert.InDelta(t, 0, HaversineKm(48.8566, 2.3522, 48.8566, 2.3522), 0.001)
	})

	t.Run("paris to london", func(t *testing.T) {
		d := HaversineKm(48.8566, 2.3522, 51.5074, -0.1278)
		assert.InDelta(t, 344, d, 5)
	})

	t.Run("antimeridian crossing", func(t *testing.T) {
		// Suva to Apia crosses 180 degrees longitude.
		d := HaversineKm(-18.1248, 178.4501, -13.8507, -171.7514)
		assert.InDelta(t, 1152, d, 20)
	})
}

package scoring

import (
	"math"
	"time"
)

// Config holds configurable scoring constants shared by every game mode.
type Config struct {
	BasePoints        int     // default: 100
	MaxTimeBonus      int     // default: 50
	FullScoreRadiusKm float64 // location guess within this counts as correct
	MaxDistanceKm     float64 // location guess beyond this scores 0
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		BasePoints:        100,
		MaxTimeBonus:      50,
		FullScoreRadiusKm: 50,
		MaxDistanceKm:     2000,
	}
}

// Engine computes server-side scores. All methods are pure.
type Engine struct {
	cfg Config
}

// NewEngine creates a scoring engine with the provided config.
func NewEngine(cfg Config) *Engine {
	if cfg.BasePoints == 0 {
		cfg = DefaultConfig()
	}
	return &Engine{cfg: cfg}
}

// Score computes points for a choice answer.
// Formula: base + time_bonus, where the time bonus is max when answered
// instantly and decays linearly to 0 at the per-question timeout.
func (e *Engine) Score(isCorrect bool, timeRemaining, timePerQuestion time.Duration) int {
	if !isCorrect {
		return 0
	}
	return e.cfg.BasePoints + e.timeBonus(timeRemaining, timePerQuestion)
}

// LocationScore computes points for a location guess from its geodesic
// distance to the target. Within FullScoreRadiusKm the guess is correct and
// earns full base points plus the time bonus; beyond that the base decays
// linearly, reaching 0 at MaxDistanceKm.
func (e *Engine) LocationScore(distanceKm float64, timeRemaining, timePerQuestion time.Duration) (points int, isCorrect bool) {
	if distanceKm <= e.cfg.FullScoreRadiusKm {
		return e.cfg.BasePoints + e.timeBonus(timeRemaining, timePerQuestion), true
	}
	if distanceKm >= e.cfg.MaxDistanceKm {
		return 0, false
	}

	span := e.cfg.MaxDistanceKm - e.cfg.FullScoreRadiusKm
	ratio := 1 - (distanceKm-e.cfg.FullScoreRadiusKm)/span
	return int(math.Round(float64(e.cfg.BasePoints) * ratio)), false
}

func (e *Engine) timeBonus(timeRemaining, timePerQuestion time.Duration) int {
	if timePerQuestion <= 0 {
		return 0
	}
	ratio := float64(timeRemaining) / float64(timePerQuestion)
	if ratio > 1.0 {
		ratio = 1.0
	}
	if ratio < 0.0 {
		ratio = 0.0
	}
	return int(float64(e.cfg.MaxTimeBonus) * ratio)
}

const earthRadiusKm = 6371.0

// HaversineKm returns the great-circle distance between two points in km.
func HaversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := radians(lat2 - lat1)
	dLng := radians(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(radians(lat1))*math.Cos(radians(lat2))*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

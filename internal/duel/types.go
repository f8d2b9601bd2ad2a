package duel

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/quizarena/trivia-duel/internal/question"
	ws "github.com/quizarena/trivia-duel/pkg/http/ws"
)

// Session lifecycle states. No transition leaves StatusFinished.
const (
	StatusWaiting   = "waiting"
	StatusCountdown = "countdown"
	StatusPlaying   = "playing"
	StatusFinished  = "finished"
)

// Finish reasons.
const (
	ReasonCompleted            = "completed"
	ReasonOpponentDisconnected = "opponent_disconnected"
)

// ModeDuel tags persisted outcomes from the realtime 1v1 mode.
const ModeDuel = "duel"

// Player is the session-scoped view of one duelist.
type Player struct {
	UserID      uuid.UUID
	DisplayName string
	Ready       bool
	Results     []RoundResult
	Score       int
}

func (p *Player) resultFor(round int) *RoundResult {
	for i := range p.Results {
		if p.Results[i].RoundIndex == round {
			return &p.Results[i]
		}
	}
	return nil
}

func (p *Player) correctCount() int {
	n := 0
	for _, r := range p.Results {
		if r.Correct {
			n++
		}
	}
	return n
}

// RoundResult is one player's recorded result for one round.
type RoundResult struct {
	RoundIndex    int      `json:"round_index"`
	QuestionID    string   `json:"question_id"`
	Correct       bool     `json:"correct"`
	CorrectAnswer string   `json:"correct_answer"`
	Answer        string   `json:"answer"`
	Points        int      `json:"points"`
	DistanceKm    *float64 `json:"distance_km,omitempty"`
	TimeRemaining float64  `json:"time_remaining"`
}

// PlayerOutcome is the final per-player record handed to persistence.
type PlayerOutcome struct {
	DuelID       uuid.UUID
	Category     string
	Mode         string
	Reason       string
	Score        int
	CorrectCount int
	Won          bool
	Results      []RoundResult
}

// Config groups the gameplay timings of a session.
type Config struct {
	QuestionCount     int
	TimePerQuestion   time.Duration
	TimeoutBuffer     time.Duration
	CountdownSeconds  int
	RoundDisplayDelay time.Duration
	ReadyGracePeriod  time.Duration
}

// DefaultConfig returns the production gameplay defaults.
func DefaultConfig() Config {
	return Config{
		QuestionCount:     10,
		TimePerQuestion:   10 * time.Second,
		TimeoutBuffer:     time.Second,
		CountdownSeconds:  3,
		RoundDisplayDelay: 3 * time.Second,
		ReadyGracePeriod:  20 * time.Second,
	}
}

// Transport delivers events to connected clients. Implemented by ws.Hub.
type Transport interface {
	SendToUser(userID uuid.UUID, msg ws.Message) error
	BroadcastToDuel(duelID uuid.UUID, msg ws.Message) error
	JoinDuel(duelID, userID uuid.UUID)
	CloseDuel(duelID uuid.UUID)
}

// Validator scores a submitted answer against a question.
type Validator interface {
	Validate(q question.Question, answer string, timeRemaining float64, coords *question.Coordinates) question.Outcome
}

// OutcomeRecorder persists a finished player's outcome and reports whether
// the score is a new personal best.
type OutcomeRecorder interface {
	RecordOutcome(ctx context.Context, userID uuid.UUID, outcome PlayerOutcome) (isNewHighScore bool, err error)
}

// Leaderboard is the externally owned ranked score structure. Updates only
// raise scores, never lower them.
type Leaderboard interface {
	SetIfGreater(ctx context.Context, userID uuid.UUID, displayName string, score int) error
}

// Deps bundles the collaborators a session needs.
type Deps struct {
	Transport   Transport
	Validator   Validator
	Outcomes    OutcomeRecorder
	Leaderboard Leaderboard
	Logger      zerolog.Logger
	OnClosed    func(*Session)
}

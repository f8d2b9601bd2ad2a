package ws

import "encoding/json"

// MessageType constants for the duel WebSocket protocol.
const (
	// Client -> Server
	TypeQueue  = "queue"
	TypeCancel = "cancel"
	TypeReady  = "ready"
	TypeAnswer = "answer"

	// Server -> Client
	TypeQueued            = "queued"
	TypeCancelled         = "cancelled"
	TypeMatched           = "matched"
	TypeOpponent          = "opponent"
	TypeCountdown         = "countdown"
	TypeStart             = "start"
	TypeQuestion          = "question"
	TypePlayerAnswered    = "player_answered"
	TypeRoundResult       = "round_result"
	TypeFinished          = "finished"
	TypeLeaderboardUpdate = "leaderboard_update"
	TypeError             = "error"
)

// Message wraps all WebSocket payloads with a type tag.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NewMessage marshals a payload into a tagged message.
func NewMessage(msgType string, payload interface{}) Message {
	msg := Message{Type: msgType}
	if payload != nil {
		msg.Payload, _ = json.Marshal(payload)
	}
	return msg
}

// Client messages (incoming)

type QueuePayload struct {
	Category string `json:"category,omitempty"` // empty means "any"
}

type AnswerPayload struct {
	QuestionID    string       `json:"question_id"`
	Answer        string       `json:"answer"`
	TimeRemaining float64      `json:"time_remaining"` // seconds left on the client clock
	Coordinates   *Coordinates `json:"coordinates,omitempty"`
}

// Coordinates carries a location-round guess.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Server messages (outgoing)

type QueuedPayload struct {
	QueueSize int    `json:"queue_size"`
	Category  string `json:"category"`
}

type MatchedPayload struct {
	DuelID          string `json:"duel_id"`
	QuestionsCount  int    `json:"questions_count"`
	TimePerQuestion int    `json:"time_per_question"` // seconds
	Category        string `json:"category"`
}

type OpponentPayload struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
}

type CountdownPayload struct {
	SecondsRemaining int `json:"seconds_remaining"`
}

type QuestionPayload struct {
	RoundIndex  int              `json:"round_index"`
	TotalRounds int              `json:"total_rounds"`
	Question    RenderedQuestion `json:"question"`
	TimeLimit   int              `json:"time_limit"` // seconds
}

// RenderedQuestion is the client-safe projection of a question. The correct
// answer and target coordinates never leave the server.
type RenderedQuestion struct {
	ID       string   `json:"id"`
	Kind     string   `json:"kind"`
	Prompt   string   `json:"prompt"`
	Options  []string `json:"options,omitempty"`
	ImageURL string   `json:"image_url,omitempty"`
}

type PlayerAnsweredPayload struct {
	UserID     string `json:"user_id"`
	RoundIndex int    `json:"round_index"`
}

type RoundResultPayload struct {
	RoundIndex    int               `json:"round_index"`
	CorrectAnswer string            `json:"correct_answer"`
	Players       []PlayerRoundView `json:"players"`
}

type PlayerRoundView struct {
	UserID          string      `json:"user_id"`
	Result          RoundResult `json:"result"`
	CumulativeScore int         `json:"cumulative_score"`
}

type RoundResult struct {
	QuestionID string   `json:"question_id"`
	Correct    bool     `json:"correct"`
	Answer     string   `json:"answer"`
	Points     int      `json:"points"`
	DistanceKm *float64 `json:"distance_km,omitempty"`
}

type FinishedPayload struct {
	Reason   string            `json:"reason"` // "completed" or "opponent_disconnected"
	WinnerID *string           `json:"winner_id"`
	IsDraw   bool              `json:"is_draw"`
	Players  []PlayerFinalView `json:"players"`
}

type PlayerFinalView struct {
	UserID       string `json:"user_id"`
	DisplayName  string `json:"display_name"`
	Score        int    `json:"score"`
	CorrectCount int    `json:"correct_count"`
}

type LeaderboardUpdatePayload struct {
	Top []LeaderboardEntry `json:"top"`
}

type LeaderboardEntry struct {
	Rank        int    `json:"rank"`
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	Score       int    `json:"score"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

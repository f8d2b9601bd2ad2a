package duel

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/quizarena/trivia-duel/internal/duel/queue"
	"github.com/quizarena/trivia-duel/internal/question"
	httperrors "github.com/quizarena/trivia-duel/pkg/http/errors"
	ws "github.com/quizarena/trivia-duel/pkg/http/ws"
)

// Engine drives matchmaking and session lifecycle: it pairs waiting players,
// creates sessions, and routes inbound events to the owning session.
type Engine struct {
	cfg      Config
	queue    *queue.Queue
	registry *Registry
	source   question.Source

	transport   Transport
	validator   Validator
	outcomes    OutcomeRecorder
	leaderboard Leaderboard
	logger      zerolog.Logger
}

// NewEngine wires the duel engine with its collaborators.
func NewEngine(
	cfg Config,
	q *queue.Queue,
	registry *Registry,
	source question.Source,
	transport Transport,
	validator Validator,
	outcomes OutcomeRecorder,
	leaderboard Leaderboard,
	logger zerolog.Logger,
) *Engine {
	if cfg.QuestionCount == 0 {
		cfg = DefaultConfig()
	}
	return &Engine{
		cfg:         cfg,
		queue:       q,
		registry:    registry,
		source:      source,
		transport:   transport,
		validator:   validator,
		outcomes:    outcomes,
		leaderboard: leaderboard,
		logger:      logger.With().Str("component", "duel_engine").Logger(),
	}
}

// HandleQueue enqueues a player and attempts a match. Queueing while in an
// active duel is rejected with an error event; re-enqueueing while already
// queued just refreshes the entry.
func (e *Engine) HandleQueue(ctx context.Context, userID uuid.UUID, displayName, category string) {
	if e.registry.PlayerActive(userID) {
		e.sendError(userID, httperrors.ErrCodeAlreadyInDuel, "Already in an active duel")
		return
	}
	if category == "" {
		category = queue.CategoryAny
	}

	e.queue.Enqueue(queue.Entry{
		UserID:      userID,
		DisplayName: displayName,
		Category:    category,
	})
	queueSize.Set(float64(e.queue.Size()))

	e.send(userID, ws.NewMessage(ws.TypeQueued, ws.QueuedPayload{
		QueueSize: e.queue.Size(),
		Category:  category,
	}))

	e.tryStartDuel(ctx, category)
}

// HandleCancel removes the player from the queue; cancelling while not
// queued is a no-op.
func (e *Engine) HandleCancel(userID uuid.UUID) {
	if e.queue.Cancel(userID) {
		queueSize.Set(float64(e.queue.Size()))
		e.send(userID, ws.NewMessage(ws.TypeCancelled, nil))
	}
}

// HandleReady forwards a ready signal to the player's session. Out-of-turn
// signals are dropped.
func (e *Engine) HandleReady(userID uuid.UUID) {
	if s, ok := e.registry.ByPlayer(userID); ok {
		s.PlayerReady(userID)
	}
}

// HandleAnswer forwards an answer submission to the player's session.
// Submissions with no active session are dropped.
func (e *Engine) HandleAnswer(userID uuid.UUID, payload ws.AnswerPayload) {
	if s, ok := e.registry.ByPlayer(userID); ok {
		s.SubmitAnswer(userID, payload)
	}
}

// HandleDisconnect handles a connection-level disconnect: dequeue when
// queued, force-finish the session when mid-duel. Idempotent.
func (e *Engine) HandleDisconnect(userID uuid.UUID) {
	if e.queue.Cancel(userID) {
		queueSize.Set(float64(e.queue.Size()))
	}
	if s, ok := e.registry.ByPlayer(userID); ok {
		s.PlayerLeft(userID)
	}
}

func (e *Engine) tryStartDuel(ctx context.Context, category string) {
	first, second, ok := e.queue.TryMatch(category)
	if !ok {
		return
	}
	queueSize.Set(float64(e.queue.Size()))

	duelCategory := matchCategory(first.Category, second.Category)
	questions, err := e.source.Fetch(ctx, duelCategory, e.cfg.QuestionCount)
	if err != nil {
		// Abort before either player is marked matched; their queue
		// entries are not consumed.
		e.queue.Restore(first, second)
		queueSize.Set(float64(e.queue.Size()))
		e.logger.Warn().Err(err).Str("category", duelCategory).Msg("question fetch failed, match aborted")
		return
	}

	s := NewSession(e.cfg, duelCategory,
		Player{UserID: first.UserID, DisplayName: first.DisplayName},
		Player{UserID: second.UserID, DisplayName: second.DisplayName},
		questions,
		Deps{
			Transport:   e.transport,
			Validator:   e.validator,
			Outcomes:    e.outcomes,
			Leaderboard: e.leaderboard,
			Logger:      e.logger,
			OnClosed:    e.sessionClosed,
		})

	if err := e.registry.Add(s); err != nil {
		e.queue.Restore(first, second)
		queueSize.Set(float64(e.queue.Size()))
		e.logger.Warn().Err(err).Msg("registry conflict, match aborted")
		return
	}

	for _, entry := range []queue.Entry{first, second} {
		e.transport.JoinDuel(s.ID, entry.UserID)
	}

	e.transport.BroadcastToDuel(s.ID, ws.NewMessage(ws.TypeMatched, ws.MatchedPayload{
		DuelID:          s.ID.String(),
		QuestionsCount:  len(questions),
		TimePerQuestion: int(e.cfg.TimePerQuestion.Seconds()),
		Category:        duelCategory,
	}))
	e.send(first.UserID, ws.NewMessage(ws.TypeOpponent, ws.OpponentPayload{
		UserID:      second.UserID.String(),
		DisplayName: second.DisplayName,
	}))
	e.send(second.UserID, ws.NewMessage(ws.TypeOpponent, ws.OpponentPayload{
		UserID:      first.UserID.String(),
		DisplayName: first.DisplayName,
	}))

	duelsStarted.Inc()
	e.logger.Info().
		Str("duel_id", s.ID.String()).
		Str("category", duelCategory).
		Str("player_a", first.UserID.String()).
		Str("player_b", second.UserID.String()).
		Msg("duel created")

	s.Start()
}

func (e *Engine) sessionClosed(s *Session) {
	e.registry.Remove(s.ID)
	e.transport.CloseDuel(s.ID)
}

func (e *Engine) send(userID uuid.UUID, msg ws.Message) {
	if err := e.transport.SendToUser(userID, msg); err != nil {
		e.logger.Debug().Err(err).Str("user_id", userID.String()).Msg("send failed")
	}
}

func (e *Engine) sendError(userID uuid.UUID, code, message string) {
	e.send(userID, ws.NewMessage(ws.TypeError, ws.ErrorPayload{Code: code, Message: message}))
}

// matchCategory picks the duel's effective category from a matched pair:
// the concrete category when one side requested "any".
func matchCategory(a, b string) string {
	if a != queue.CategoryAny {
		return a
	}
	return b
}

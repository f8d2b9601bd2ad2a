package duel

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/quizarena/trivia-duel/internal/question"
	ws "github.com/quizarena/trivia-duel/pkg/http/ws"
)

// Session is the state machine for one 1v1 duel. All mutable state is owned
// by the run goroutine, which consumes commands from a single channel; timers
// and transport handlers only ever post commands, so mutations to one session
// are serialized structurally.
type Session struct {
	ID       uuid.UUID
	Category string

	cfg  Config
	deps Deps

	players   [2]*Player
	questions []question.Question

	// Owned by the run goroutine after Start.
	status         string
	round          int
	resolvingRound int
	roundStartedAt time.Time
	createdAt      time.Time

	cmds chan command
	done chan struct{}

	timersMu sync.Mutex
	timers   []*time.Timer

	logger zerolog.Logger
}

type command interface{}

type readyCmd struct{ userID uuid.UUID }
type answerCmd struct {
	userID  uuid.UUID
	payload ws.AnswerPayload
}
type timeoutCmd struct{ round int }
type countdownCmd struct{ remaining int }
type advanceCmd struct{ round int }
type graceCmd struct{}
type leaveCmd struct{ userID uuid.UUID }

// NewSession builds a session for a matched pair. Questions are immutable
// once set.
func NewSession(cfg Config, category string, a, b Player, questions []question.Question, deps Deps) *Session {
	id := uuid.New()
	return &Session{
		ID:             id,
		Category:       category,
		cfg:            cfg,
		deps:           deps,
		players:        [2]*Player{&a, &b},
		questions:      questions,
		status:         StatusWaiting,
		round:          0,
		resolvingRound: NoRound,
		createdAt:      time.Now(),
		cmds:           make(chan command, 32),
		done:           make(chan struct{}),
		logger: deps.Logger.With().
			Str("component", "duel_session").
			Str("duel_id", id.String()).
			Logger(),
	}
}

// Start launches the owning goroutine and arms the ready grace timer: a
// session whose players never signal ready force-starts instead of hanging.
func (s *Session) Start() {
	go s.run()
	s.schedule(s.cfg.ReadyGracePeriod, graceCmd{})
}

// PlayerReady signals that a player is ready to begin.
func (s *Session) PlayerReady(userID uuid.UUID) {
	s.post(readyCmd{userID: userID})
}

// SubmitAnswer delivers an answer submission to the session.
func (s *Session) SubmitAnswer(userID uuid.UUID, payload ws.AnswerPayload) {
	s.post(answerCmd{userID: userID, payload: payload})
}

// PlayerLeft signals a connection-level disconnect for a player.
func (s *Session) PlayerLeft(userID uuid.UUID) {
	s.post(leaveCmd{userID: userID})
}

// Players returns both duelists' identities.
func (s *Session) Players() [2]uuid.UUID {
	return [2]uuid.UUID{s.players[0].UserID, s.players[1].UserID}
}

// Done is closed once the session reaches its terminal state and teardown
// side effects have been attempted.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

func (s *Session) post(cmd command) {
	select {
	case s.cmds <- cmd:
	case <-s.done:
	}
}

func (s *Session) schedule(d time.Duration, cmd command) {
	s.timersMu.Lock()
	defer s.timersMu.Unlock()
	s.timers = append(s.timers, time.AfterFunc(d, func() { s.post(cmd) }))
}

func (s *Session) stopTimers() {
	s.timersMu.Lock()
	defer s.timersMu.Unlock()
	for _, t := range s.timers {
		t.Stop()
	}
	s.timers = nil
}

func (s *Session) run() {
	for {
		select {
		case cmd := <-s.cmds:
			s.handle(cmd)
		case <-s.done:
			return
		}
	}
}

func (s *Session) handle(cmd command) {
	switch c := cmd.(type) {
	case readyCmd:
		s.handleReady(c.userID)
	case graceCmd:
		if s.status == StatusWaiting {
			s.logger.Info().Msg("ready grace period elapsed, force starting")
			s.beginCountdown()
		}
	case countdownCmd:
		s.handleCountdown(c.remaining)
	case answerCmd:
		s.handleAnswer(c.userID, c.payload)
	case timeoutCmd:
		if RoundResolvable(s.status, c.round, s.round, s.resolvingRound) {
			roundsResolved.WithLabelValues("timeout").Inc()
			s.resolveRound(c.round)
		}
	case advanceCmd:
		s.handleAdvance(c.round)
	case leaveCmd:
		s.handleLeave(c.userID)
	}
}

func (s *Session) handleReady(userID uuid.UUID) {
	if s.status != StatusWaiting {
		return
	}
	p := s.player(userID)
	if p == nil {
		return
	}
	p.Ready = true

	for _, pl := range s.players {
		if !pl.Ready {
			return
		}
	}
	s.beginCountdown()
}

func (s *Session) beginCountdown() {
	s.status = StatusCountdown
	for i := 0; i <= s.cfg.CountdownSeconds; i++ {
		s.schedule(time.Duration(i)*time.Second, countdownCmd{remaining: s.cfg.CountdownSeconds - i})
	}
}

func (s *Session) handleCountdown(remaining int) {
	if s.status != StatusCountdown {
		return
	}
	if remaining > 0 {
		s.broadcast(ws.NewMessage(ws.TypeCountdown, ws.CountdownPayload{SecondsRemaining: remaining}))
		return
	}

	s.status = StatusPlaying
	s.broadcast(ws.NewMessage(ws.TypeStart, nil))
	s.startRound(0)
}

func (s *Session) startRound(i int) {
	s.round = i
	s.resolvingRound = NoRound
	s.roundStartedAt = time.Now()

	q := s.questions[i]
	s.broadcast(ws.NewMessage(ws.TypeQuestion, ws.QuestionPayload{
		RoundIndex:  i,
		TotalRounds: len(s.questions),
		Question: ws.RenderedQuestion{
			ID:       q.ID,
			Kind:     q.Kind,
			Prompt:   q.Prompt,
			Options:  q.Options,
			ImageURL: q.ImageURL,
		},
		TimeLimit: int(s.cfg.TimePerQuestion / time.Second),
	}))

	// The timer is never cancelled on early resolution; it fires and is
	// rejected by the guard instead.
	s.schedule(s.cfg.TimePerQuestion+s.cfg.TimeoutBuffer, timeoutCmd{round: i})
}

func (s *Session) handleAnswer(userID uuid.UUID, payload ws.AnswerPayload) {
	// Protocol violations are silent drops, never surfaced to the opponent.
	if s.status != StatusPlaying {
		return
	}
	p := s.player(userID)
	if p == nil {
		return
	}
	q := s.questions[s.round]
	if payload.QuestionID != q.ID {
		s.logger.Debug().
			Str("user_id", userID.String()).
			Str("question_id", payload.QuestionID).
			Msg("stale answer dropped")
		return
	}
	if p.resultFor(s.round) != nil {
		s.logger.Debug().Str("user_id", userID.String()).Msg("duplicate answer dropped")
		return
	}

	var coords *question.Coordinates
	if payload.Coordinates != nil {
		coords = &question.Coordinates{Lat: payload.Coordinates.Lat, Lng: payload.Coordinates.Lng}
	}
	outcome := s.deps.Validator.Validate(q, payload.Answer, payload.TimeRemaining, coords)

	p.Results = append(p.Results, RoundResult{
		RoundIndex:    s.round,
		QuestionID:    q.ID,
		Correct:       outcome.IsCorrect,
		CorrectAnswer: q.Answer,
		Answer:        payload.Answer,
		Points:        outcome.Points,
		DistanceKm:    outcome.DistanceKm,
		TimeRemaining: payload.TimeRemaining,
	})
	p.Score += outcome.Points

	// Notify the room without revealing the answer.
	s.broadcast(ws.NewMessage(ws.TypePlayerAnswered, ws.PlayerAnsweredPayload{
		UserID:     userID.String(),
		RoundIndex: s.round,
	}))

	if s.bothAnswered(s.round) && AnswerTriggersResolution(s.status, s.round, s.round, s.resolvingRound) {
		roundsResolved.WithLabelValues("answers").Inc()
		s.resolveRound(s.round)
	}
}

func (s *Session) bothAnswered(round int) bool {
	for _, p := range s.players {
		if p.resultFor(round) == nil {
			return false
		}
	}
	return true
}

func (s *Session) resolveRound(i int) {
	s.resolvingRound = i
	q := s.questions[i]

	// Any player without a result gets a synthetic zero-point incorrect one.
	for _, p := range s.players {
		if p.resultFor(i) == nil {
			p.Results = append(p.Results, RoundResult{
				RoundIndex:    i,
				QuestionID:    q.ID,
				Correct:       false,
				CorrectAnswer: q.Answer,
				Answer:        "",
				Points:        0,
			})
		}
	}

	views := make([]ws.PlayerRoundView, len(s.players))
	for idx, p := range s.players {
		r := p.resultFor(i)
		views[idx] = ws.PlayerRoundView{
			UserID:          p.UserID.String(),
			Result:          toWSResult(*r),
			CumulativeScore: p.Score,
		}
	}
	s.broadcast(ws.NewMessage(ws.TypeRoundResult, ws.RoundResultPayload{
		RoundIndex:    i,
		CorrectAnswer: q.Answer,
		Players:       views,
	}))

	s.schedule(s.cfg.RoundDisplayDelay, advanceCmd{round: i})
}

func (s *Session) handleAdvance(round int) {
	if s.status != StatusPlaying || round != s.round {
		return
	}
	next := round + 1
	if next >= len(s.questions) {
		s.finish(ReasonCompleted, nil)
		return
	}
	s.startRound(next)
}

func (s *Session) handleLeave(userID uuid.UUID) {
	if s.status == StatusFinished {
		return
	}
	leaver := s.player(userID)
	if leaver == nil {
		return
	}

	var winner *uuid.UUID
	for _, p := range s.players {
		if p.UserID != userID {
			id := p.UserID
			winner = &id
		}
	}
	s.logger.Info().Str("user_id", userID.String()).Msg("player disconnected, ending duel")
	s.finish(ReasonOpponentDisconnected, winner)
}

// finish moves the session to its terminal state exactly once: it broadcasts
// the final summary (always the session's last client message), then attempts
// persistence and leaderboard side effects best-effort, then tears down.
func (s *Session) finish(reason string, forcedWinner *uuid.UUID) {
	if s.status == StatusFinished {
		return
	}
	s.status = StatusFinished
	s.stopTimers()

	winner := forcedWinner
	isDraw := false
	if winner == nil {
		switch {
		case s.players[0].Score > s.players[1].Score:
			winner = &s.players[0].UserID
		case s.players[1].Score > s.players[0].Score:
			winner = &s.players[1].UserID
		default:
			isDraw = true
		}
	}

	finals := make([]ws.PlayerFinalView, len(s.players))
	for i, p := range s.players {
		finals[i] = ws.PlayerFinalView{
			UserID:       p.UserID.String(),
			DisplayName:  p.DisplayName,
			Score:        p.Score,
			CorrectCount: p.correctCount(),
		}
	}
	var winnerID *string
	if winner != nil {
		id := winner.String()
		winnerID = &id
	}
	s.broadcast(ws.NewMessage(ws.TypeFinished, ws.FinishedPayload{
		Reason:   reason,
		WinnerID: winnerID,
		IsDraw:   isDraw,
		Players:  finals,
	}))

	duelsFinished.WithLabelValues(reason).Inc()
	s.finalize(reason, winner)

	if s.deps.OnClosed != nil {
		s.deps.OnClosed(s)
	}
	close(s.done)
}

// finalize persists both players' outcomes. Failures are logged per player
// and never roll back the already-broadcast result.
func (s *Session) finalize(reason string, winner *uuid.UUID) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for _, p := range s.players {
		won := winner != nil && *winner == p.UserID
		outcome := PlayerOutcome{
			DuelID:       s.ID,
			Category:     s.Category,
			Mode:         ModeDuel,
			Reason:       reason,
			Score:        p.Score,
			CorrectCount: p.correctCount(),
			Won:          won,
			Results:      p.Results,
		}

		newBest := true
		if s.deps.Outcomes != nil {
			var err error
			newBest, err = s.deps.Outcomes.RecordOutcome(ctx, p.UserID, outcome)
			if err != nil {
				s.logger.Warn().Err(err).
					Str("user_id", p.UserID.String()).
					Msg("failed to persist duel outcome")
				continue
			}
		}

		if newBest && s.deps.Leaderboard != nil {
			if err := s.deps.Leaderboard.SetIfGreater(ctx, p.UserID, p.DisplayName, p.Score); err != nil {
				s.logger.Warn().Err(err).
					Str("user_id", p.UserID.String()).
					Msg("failed to update leaderboard")
			}
		}
	}
}

func (s *Session) player(userID uuid.UUID) *Player {
	for _, p := range s.players {
		if p.UserID == userID {
			return p
		}
	}
	return nil
}

func (s *Session) broadcast(msg ws.Message) {
	if err := s.deps.Transport.BroadcastToDuel(s.ID, msg); err != nil {
		s.logger.Warn().Err(err).Str("type", msg.Type).Msg("broadcast failed")
	}
}

func toWSResult(r RoundResult) ws.RoundResult {
	return ws.RoundResult{
		QuestionID: r.QuestionID,
		Correct:    r.Correct,
		Answer:     r.Answer,
		Points:     r.Points,
		DistanceKm: r.DistanceKm,
	}
}

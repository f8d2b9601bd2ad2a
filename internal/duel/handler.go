package duel

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/quizarena/trivia-duel/internal/auth"
	httperrors "github.com/quizarena/trivia-duel/pkg/http/errors"
	ws "github.com/quizarena/trivia-duel/pkg/http/ws"
)

// Handler manages WebSocket connections and routes duel messages. The
// identity attached at upgrade time is the only identity trusted for every
// inbound event on the connection.
type Handler struct {
	engine   *Engine
	hub      *ws.Hub
	verifier *auth.Verifier
	logger   zerolog.Logger
}

// NewHandler creates a duel WebSocket handler.
func NewHandler(engine *Engine, hub *ws.Hub, verifier *auth.Verifier, logger zerolog.Logger) *Handler {
	return &Handler{
		engine:   engine,
		hub:      hub,
		verifier: verifier,
		logger:   logger.With().Str("component", "duel_handler").Logger(),
	}
}

// HandleConnection processes an authenticated WebSocket connection until the
// peer goes away, then signals the disconnect to the engine.
func (h *Handler) HandleConnection(conn *websocket.Conn, userID uuid.UUID, displayName string) {
	wsConn := ws.NewConnection(conn, h.logger)
	h.hub.RegisterConnection(userID, wsConn)

	go wsConn.WritePump()

	wsConn.ReadPump(func(msg ws.Message) error {
		return h.handleMessage(context.Background(), userID, displayName, msg)
	})

	h.hub.UnregisterConnection(userID)
	h.engine.HandleDisconnect(userID)
}

func (h *Handler) handleMessage(ctx context.Context, userID uuid.UUID, displayName string, msg ws.Message) error {
	switch msg.Type {
	case ws.TypeQueue:
		var req ws.QueuePayload
		if len(msg.Payload) > 0 {
			if err := json.Unmarshal(msg.Payload, &req); err != nil {
				return h.sendError(userID, httperrors.ErrCodeInvalidPayload, "Invalid queue payload")
			}
		}
		h.engine.HandleQueue(ctx, userID, displayName, req.Category)
		return nil

	case ws.TypeCancel:
		h.engine.HandleCancel(userID)
		return nil

	case ws.TypeReady:
		h.engine.HandleReady(userID)
		return nil

	case ws.TypeAnswer:
		var req ws.AnswerPayload
		if err := json.Unmarshal(msg.Payload, &req); err != nil {
			return h.sendError(userID, httperrors.ErrCodeInvalidPayload, "Invalid answer payload")
		}
		h.engine.HandleAnswer(userID, req)
		return nil

	default:
		return h.sendError(userID, httperrors.ErrCodeUnknownMessageType, fmt.Sprintf("Unknown message type: %s", msg.Type))
	}
}

func (h *Handler) sendError(userID uuid.UUID, code, message string) error {
	return h.hub.SendToUser(userID, ws.NewMessage(ws.TypeError, ws.ErrorPayload{
		Code:    code,
		Message: message,
	}))
}

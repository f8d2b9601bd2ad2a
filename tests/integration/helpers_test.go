//go:build integration
// +build integration

package integration

import (
	"encoding/json"
	"net/url"
	"os"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/quizarena/trivia-duel/internal/auth"
	wsmsg "github.com/quizarena/trivia-duel/pkg/http/ws"
)

func envOrDefault(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// mintToken signs an access token the way the identity service would, using
// the shared secret the server under test was started with.
func mintToken(t *testing.T, displayName string) (uuid.UUID, string) {
	t.Helper()

	secret := envOrDefault("INTEGRATION_JWT_SECRET", "integration-secret")
	userID := uuid.New()
	claims := auth.Claims{
		UserID:      userID,
		DisplayName: displayName,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return userID, token
}

func dialDuelWS(t *testing.T, wsBase, token string) *websocket.Conn {
	t.Helper()

	u, err := url.Parse(wsBase)
	if err != nil {
		t.Fatalf("invalid WS url: %v", err)
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		t.Fatalf("websocket dial failed: %v", err)
	}
	return conn
}

func sendMessage(t *testing.T, conn *websocket.Conn, msgType string, payload interface{}) {
	t.Helper()

	conn.SetWriteDeadline(time.Now().Add(3 * time.Second))
	if err := conn.WriteJSON(wsmsg.NewMessage(msgType, payload)); err != nil {
		t.Fatalf("write %s: %v", msgType, err)
	}
}

// waitForMessage reads until a message of the wanted type arrives, skipping
// everything else, and unmarshals its payload into out when non-nil.
func waitForMessage(t *testing.T, conn *websocket.Conn, msgType string, timeout time.Duration, out interface{}) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for {
		conn.SetReadDeadline(deadline)
		var msg wsmsg.Message
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("waiting for %s: %v", msgType, err)
		}
		if msg.Type != msgType {
			continue
		}
		if out != nil {
			if err := json.Unmarshal(msg.Payload, out); err != nil {
				t.Fatalf("unmarshal %s payload: %v", msgType, err)
			}
		}
		return
	}
}

package signal

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/horlas08/awals-backend/internal/app"
	"github.com/horlas08/awals-backend/internal/config"
	"github.com/horlas08/awals-backend/internal/core"
	"github.com/horlas08/awals-backend/internal/domain"
)

type rejectVerifier struct{}

func (rejectVerifier) Verify(context.Context, string) (domain.UserID, error) {
	return "", core.ErrInvalidToken
}

type emptyAuthorizer struct{}

func (emptyAuthorizer) ResolveParticipants(context.Context, domain.BookingID) (core.Participants, error) {
	return core.Participants{}, core.ErrBookingNotFound
}

func dialTestServer(t *testing.T) *websocket.Conn {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{ReadLimit: 32768, PingPeriod: 30 * time.Second}
	engine := app.NewEngine(app.NewRegistry(), rejectVerifier{}, emptyAuthorizer{})
	ctl := NewChatWSController(engine, cfg)

	r := gin.New()
	r.GET("/ws", func(c *gin.Context) {
		ctl.HandleChat(context.Background(), c)
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

// A failed auth must deliver auth_error before the server tears down the
// transport; the terminal frame may not be lost in the send buffer.
func TestHandleChat_AuthErrorDeliveredBeforeClose(t *testing.T) {
	conn := dialTestServer(t)

	require.NoError(t, conn.WriteJSON(core.AuthFrame{Type: "auth", Token: "bad"}))
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	_, data, err := conn.ReadMessage()
	require.NoError(t, err, "auth_error must arrive before the close")

	var ev core.Event
	require.NoError(t, json.Unmarshal(data, &ev))
	assert.Equal(t, "auth_error", ev.Type)
	assert.Equal(t, "invalid token", ev.Error)

	// The transport closes after the terminal frame; no further frames
	// from this connection are processed.
	_, _, err = conn.ReadMessage()
	require.Error(t, err)
}

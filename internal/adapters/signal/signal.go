// Package signal is the websocket transport for the chat relay.
package signal

import (
	"context"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/horlas08/awals-backend/internal/app"
	"github.com/horlas08/awals-backend/internal/config"
	"github.com/horlas08/awals-backend/internal/core"
)

type ChatWSController struct {
	Engine *app.Engine
	Cfg    *config.Config
}

func NewChatWSController(engine *app.Engine, cfg *config.Config) *ChatWSController {
	return &ChatWSController{Engine: engine, Cfg: cfg}
}

// WsConn adapts a gorilla connection to core.Conn. Sends go through a
// buffered channel drained by the write pump; a full buffer drops the
// frame instead of blocking the broadcaster.
type WsConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func (c *WsConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return core.ErrConnClosed
	}
	select {
	case c.send <- f:
	default:
		return core.ErrBackpressure
	}
	return nil
}

// Close stops accepting frames and closes the send channel. The write pump
// flushes anything still buffered (a terminal auth_error included) before
// it closes the socket.
func (c *WsConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	c.mu.Unlock()
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleChat upgrades the request and starts the connection's pumps. The
// connection enters the registry unauthenticated; everything after that is
// driven by inbound frames.
func (ctl *ChatWSController) HandleChat(ctx context.Context, c *gin.Context) {
	cid := core.ConnID(uuid.NewString())
	log.Info().Str("module", "signal").Str("cid", string(cid)).Str("client", c.GetString("client_token")).Msg("new WS connection")

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}

	conn := &WsConn{
		conn: ws,
		send: make(chan core.Frame, 32),
	}

	ctx, cancel := context.WithCancel(ctx)
	ctl.Engine.Registry.Register(cid, conn, cancel)

	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, cid, conn)
}

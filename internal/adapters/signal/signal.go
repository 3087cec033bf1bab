package signal

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Parley/internal/app"
	"github.com/dkeye/Parley/internal/config"
	"github.com/dkeye/Parley/internal/core"
)

var ErrBackpressure = errors.New("backpressure")

const writeWait = 5 * time.Second

type ChatWSController struct {
	Hub     *app.Hub
	Creates *SlidingLimiter

	readLimit  int64
	sendBuffer int
}

func NewChatWSController(hub *app.Hub, cfg *config.Config) *ChatWSController {
	return &ChatWSController{
		Hub:        hub,
		Creates:    NewSlidingLimiter(cfg.CreateLimit, cfg.CreateWindow),
		readLimit:  cfg.ReadLimit,
		sendBuffer: cfg.SendBuffer,
	}
}

// wsConn wraps one websocket with a buffered send channel and the
// liveness flag the heartbeat monitor sweeps. The pong handler is the
// only raiser of the flag; the monitor is the only lowerer.
type wsConn struct {
	conn *websocket.Conn
	send chan core.Frame

	alive atomic.Bool

	mu     sync.RWMutex
	closed bool
}

func (c *wsConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *wsConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

// Ping sends a transport-level probe. Control frames may be written
// concurrently with the write pump, per gorilla's concurrency rules.
func (c *wsConn) Ping() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	return c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
}

func (c *wsConn) Alive() bool { return c.alive.Load() }
func (c *wsConn) MarkDead()   { c.alive.Store(false) }

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func (ctl *ChatWSController) HandleChat(ctx context.Context, c *gin.Context) {
	sid := core.SessionID(uuid.NewString())
	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("token", c.GetString("client_token")).Msg("new WS connection")

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Msg("ws upgrade")
		return
	}
	ws.SetReadLimit(ctl.readLimit)

	conn := &wsConn{
		conn: ws,
		send: make(chan core.Frame, ctl.sendBuffer),
	}
	conn.alive.Store(true)
	ws.SetPongHandler(func(string) error {
		conn.alive.Store(true)
		return nil
	})

	ctl.Hub.Register(sid, conn)

	ctx, cancel := context.WithCancel(ctx)
	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, cancel, sid, conn)
}

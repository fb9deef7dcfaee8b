// Package ws is the socket transport: one goroutine pair per connection,
// a bounded send queue, and the event dispatch into the session manager.
package ws

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"

	"github.com/zodiora/live/internal/app"
	"github.com/zodiora/live/internal/core"
	"github.com/zodiora/live/internal/domain"
)

var ErrBackpressure = errors.New("backpressure")

const writeWait = 5 * time.Second

type Options struct {
	ReadLimit  int64
	SendBuffer int
	PingPeriod time.Duration
}

type Controller struct {
	manager  *app.Manager
	ice      webrtc.Configuration
	validate *validator.Validate

	readLimit  int64
	sendBuffer int
	pingPeriod time.Duration
	pongWait   time.Duration
}

func NewController(m *app.Manager, ice webrtc.Configuration, opts Options) *Controller {
	if opts.ReadLimit <= 0 {
		opts.ReadLimit = 32768
	}
	if opts.SendBuffer <= 0 {
		opts.SendBuffer = 32
	}
	if opts.PingPeriod <= 0 {
		opts.PingPeriod = 54 * time.Second
	}
	return &Controller{
		manager:    m,
		ice:        ice,
		validate:   validator.New(),
		readLimit:  opts.ReadLimit,
		sendBuffer: opts.SendBuffer,
		pingPeriod: opts.PingPeriod,
		pongWait:   opts.PingPeriod * 10 / 9,
	}
}

type wsConn struct {
	conn *websocket.Conn
	send chan core.Frame

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

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleSocket upgrades the request and starts the connection's pump
// pair. Identity was settled by middleware before we get here.
func (ctl *Controller) HandleSocket(ctx context.Context, c *gin.Context) {
	v, ok := c.Get("identity")
	if !ok {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	identity := v.(domain.Identity)

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "ws").Msg("upgrade")
		return
	}

	conn := &wsConn{
		conn: ws,
		send: make(chan core.Frame, ctl.sendBuffer),
	}
	cid := core.ClientID(uuid.NewString())
	client := core.NewClient(cid, identity, conn)
	ctl.manager.Registry().Bind(client)

	log.Info().Str("module", "ws").Str("cid", string(cid)).
		Str("uid", string(identity.UserID)).Msg("connection open")

	go ctl.writePump(ctx, cid, conn)
	go ctl.readPump(ctx, cid, conn)
}

// Package signal is the websocket adapter for the session channel: it
// owns the connection lifecycle and dispatches inbound actions to the
// hub.
package signal

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"venue/internal/app"
	"venue/internal/protocol"
)

var ErrBackpressure = errors.New("backpressure")

const createRoomLimit = 5

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Controller handles the /ws/session endpoint.
type Controller struct {
	Hub        *app.Hub
	ReadLimit  int64
	PingPeriod time.Duration

	roomLimiter *RateLimiter
}

func NewController(hub *app.Hub, readLimit int64, pingPeriod time.Duration) *Controller {
	if pingPeriod <= 0 {
		pingPeriod = 54 * time.Second
	}
	return &Controller{
		Hub:         hub,
		ReadLimit:   readLimit,
		PingPeriod:  pingPeriod,
		roomLimiter: NewRateLimiter(createRoomLimit, time.Minute),
	}
}

// wsConn adapts a gorilla connection to app.Conn. Writes go through a
// buffered channel drained by the write pump, so TrySend never blocks.
type wsConn struct {
	conn *websocket.Conn
	send chan []byte

	mu     sync.RWMutex
	closed bool
}

func newWSConn(ws *websocket.Conn) *wsConn {
	return &wsConn{conn: ws, send: make(chan []byte, 32)}
}

func (c *wsConn) TrySend(payload []byte) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- payload:
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

// HandleSession upgrades the request, binds the viewer into the hub and
// starts the pumps. The Welcome response is the first targeted message.
func (ctl *Controller) HandleSession(ctx context.Context, c *gin.Context) {
	token := c.GetString("client_token")
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}
	if ctl.ReadLimit > 0 {
		ws.SetReadLimit(ctl.ReadLimit)
	}

	conn := newWSConn(ws)
	viewer, err := ctl.Hub.Connect(conn)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("hub connect")
		conn.Close()
		return
	}
	log.Info().Str("module", "signal").Str("viewer", viewer.ID).Str("client_token", token).Msg("new WS session")

	ctx, cancel := context.WithCancel(ctx)
	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, cancel, viewer.ID, conn)

	ctl.sendResponse(viewer.ID, protocol.TypeWelcome, map[string]string{"playerId": viewer.ID})
}

// sendResponse composes an outbound envelope with a fresh snapshot and
// delivers it through the hub.
func (ctl *Controller) sendResponse(to string, t protocol.ResponseType, params map[string]string) {
	resp := protocol.Response{
		Type:       t,
		ExpState:   ctl.Hub.Session.Snapshot(),
		Parameters: params,
	}
	payload, err := resp.Encode()
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Str("type", string(t)).Msg("encode response")
		return
	}
	if err := ctl.Hub.Deliver(to, payload); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("type", string(t)).Str("viewer", to).Msg("response dropped")
	}
}

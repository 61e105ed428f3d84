// Package media is the raw stream relay: every frame received from one
// media client is forwarded unmodified to every other connected media
// client. The relay keeps no state besides the open connections.
package media

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type frame struct {
	messageType int
	data        []byte
}

type client struct {
	conn *websocket.Conn
	send chan frame
}

// Hub tracks the open media clients and fans frames out among them.
type Hub struct {
	mu      sync.RWMutex
	clients map[*client]bool
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*client]bool)}
}

// ClientCount reports the number of open media clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) add(c *client) {
	h.mu.Lock()
	h.clients[c] = true
	h.mu.Unlock()
	log.Info().Str("module", "media").Int("clients", h.ClientCount()).Msg("media client connected")
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
	log.Info().Str("module", "media").Int("clients", h.ClientCount()).Msg("media client disconnected")
}

// broadcastFrom forwards a frame to every client except the sender.
// A slow or closed client is skipped silently; the frame is dropped for
// that client only.
func (h *Hub) broadcastFrom(from *client, f frame) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		if c == from {
			continue
		}
		select {
		case c.send <- f:
		default:
		}
	}
}

// Handle upgrades the request and runs the relay pumps for one client.
func (h *Hub) Handle(c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "media").Msg("ws upgrade")
		return
	}
	cl := &client{conn: ws, send: make(chan frame, 64)}
	h.add(cl)
	go cl.writePump()
	go h.readPump(cl)
}

func (h *Hub) readPump(c *client) {
	defer func() {
		h.remove(c)
		_ = c.conn.Close()
	}()
	for {
		mt, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		h.broadcastFrom(c, frame{messageType: mt, data: data})
	}
}

func (c *client) writePump() {
	defer c.conn.Close()
	for f := range c.send {
		if err := c.conn.WriteMessage(f.messageType, f.data); err != nil {
			return
		}
	}
}

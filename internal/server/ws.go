package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/ayusman/blinker/internal/app"
	"github.com/ayusman/blinker/internal/observe"
	"github.com/gorilla/websocket"
)

const (
	overlayWriteWait = time.Second
	overlayQueueSize = 8
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

type overlayClient struct {
	conn *websocket.Conn
	send chan []byte
}

// OverlayHub broadcasts the per-tick overlay state to WebSocket clients.
// Slow clients drop messages rather than stall the detection loop.
type OverlayHub struct {
	metrics *observe.Metrics
	clients map[*overlayClient]struct{}
	closed  bool
	mu      sync.RWMutex
}

// NewOverlayHub creates an empty hub.
func NewOverlayHub(m *observe.Metrics) *OverlayHub {
	return &OverlayHub{
		metrics: m,
		clients: make(map[*overlayClient]struct{}),
	}
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *OverlayHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	c := &overlayClient{conn: conn, send: make(chan []byte, overlayQueueSize)}
	if !h.add(c) {
		return
	}
	defer h.remove(c)

	go h.writeLoop(c)

	// Keep connection alive by reading messages
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

func (h *OverlayHub) add(c *overlayClient) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	h.metrics.OverlayClientConnected(context.Background(), 1)
	return true
}

func (h *OverlayHub) remove(c *overlayClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
	h.metrics.OverlayClientConnected(context.Background(), -1)
}

func (h *OverlayHub) writeLoop(c *overlayClient) {
	for msg := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(overlayWriteWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			c.conn.Close()
			return
		}
	}
	c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(overlayWriteWait))
}

// Broadcast queues st for every connected client.
func (h *OverlayHub) Broadcast(st app.OverlayState) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if len(h.clients) == 0 {
		return
	}

	msg, err := json.Marshal(st)
	if err != nil {
		log.Printf("overlay encode error: %v", err)
		return
	}
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
		}
	}
}

// Clients returns the number of connected clients.
func (h *OverlayHub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client and refuses new ones.
func (h *OverlayHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
		h.metrics.OverlayClientConnected(context.Background(), -1)
	}
}

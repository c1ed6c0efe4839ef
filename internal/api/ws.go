package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/playok/astermon/internal/model"
	"nhooyr.io/websocket"
)

const (
	pingInterval = 30 * time.Second
	writeTimeout = 10 * time.Second
)

// Hub manages WebSocket connections and pushes frames to them. It also keeps
// the most recent frame so new clients render without waiting for a tick.
type Hub struct {
	mu      sync.RWMutex
	clients map[*wsClient]struct{}
	reg     chan *wsClient
	unreg   chan *wsClient

	latestMu    sync.RWMutex
	latest      *model.Frame
	latestBytes []byte
}

type wsClient struct {
	conn *websocket.Conn
	send chan []byte
}

// NewHub creates a new WebSocket hub.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[*wsClient]struct{}),
		reg:     make(chan *wsClient, 16),
		unreg:   make(chan *wsClient, 16),
	}
}

// Run processes register/unregister events.
func (h *Hub) Run() {
	for {
		select {
		case c := <-h.reg:
			h.mu.Lock()
			h.clients[c] = struct{}{}
			h.mu.Unlock()
		case c := <-h.unreg:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()
		}
	}
}

// Broadcast records frame as the latest and sends it to every client.
func (h *Hub) Broadcast(frame model.Frame) {
	data, err := json.Marshal(map[string]interface{}{
		"type":  "frame",
		"frame": frame,
	})
	if err != nil {
		log.Printf("[ws] marshal frame: %v", err)
		return
	}

	h.latestMu.Lock()
	h.latest = &frame
	h.latestBytes = data
	h.latestMu.Unlock()

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			// client too slow, skip
		}
	}
}

// Latest returns the most recently broadcast frame.
func (h *Hub) Latest() (model.Frame, bool) {
	h.latestMu.RLock()
	defer h.latestMu.RUnlock()
	if h.latest == nil {
		return model.Frame{}, false
	}
	return *h.latest, true
}

func (h *Hub) clientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) latestMessage() []byte {
	h.latestMu.RLock()
	defer h.latestMu.RUnlock()
	return h.latestBytes
}

// HandleWS handles WebSocket upgrade and streams frames until the client
// goes away.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // dashboards are often reached through proxies
	})
	if err != nil {
		log.Printf("[ws] accept error: %v", err)
		return
	}

	client := &wsClient{
		conn: conn,
		send: make(chan []byte, 16),
	}
	if data := h.latestMessage(); data != nil {
		client.send <- data
	}
	h.reg <- client

	// The dashboard never sends data; CloseRead handles control frames and
	// cancels ctx once the peer disconnects.
	ctx := conn.CloseRead(r.Context())
	go client.pingLoop(ctx)
	client.writePump(ctx)

	h.unreg <- client
	conn.Close(websocket.StatusNormalClosure, "bye")
}

func (c *wsClient) pingLoop(ctx context.Context) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.conn.Ping(ctx); err != nil {
				return
			}
		}
	}
}

func (c *wsClient) writePump(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case data, ok := <-c.send:
			if !ok {
				return
			}
			wctx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := c.conn.Write(wctx, websocket.MessageText, data)
			cancel()
			if err != nil {
				return
			}
		}
	}
}

// Package stream pushes periodic quote updates to WebSocket clients.
// Each connection owns an isolated symbol set, mutated by subscribe
// and unsubscribe frames; a per-connection ticker drives pushes, and
// all connection goroutines stop deterministically when the peer goes
// away or the hub shuts down.
package stream

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"marketgateway/internal/metrics"
	"marketgateway/internal/model"
)

const defaultPushInterval = 5 * time.Second

// QuoteSource supplies quotes for pushed frames. The gateway service
// satisfies it, so pushes go through the same cache and fallback
// pipeline as REST reads.
type QuoteSource interface {
	Quote(ctx context.Context, symbol string) (*model.Quote, bool, error)
}

// Hub tracks live WebSocket clients and owns the shared upgrade path.
type Hub struct {
	source   QuoteSource
	interval time.Duration
	metrics  *metrics.Metrics
	log      *zap.Logger
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*Client]bool
	closed  bool
}

// NewHub creates a Hub pushing quotes every interval (the default 5s
// when interval <= 0).
func NewHub(source QuoteSource, interval time.Duration, m *metrics.Metrics, log *zap.Logger) *Hub {
	if interval <= 0 {
		interval = defaultPushInterval
	}
	return &Hub{
		source:   source,
		interval: interval,
		metrics:  m,
		log:      log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The gateway serves a personal dashboard; cross-origin
			// browsers are allowed.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		clients: make(map[*Client]bool),
	}
}

// HandleWS upgrades the request and runs the connection's pumps. The
// new connection starts with an empty symbol set.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", zap.Error(err))
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	client := &Client{
		hub:     h,
		conn:    conn,
		send:    make(chan []byte, 64),
		ctx:     ctx,
		cancel:  cancel,
		symbols: make(map[string]struct{}),
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		cancel()
		conn.Close()
		return
	}
	h.clients[client] = true
	count := len(h.clients)
	h.mu.Unlock()

	h.metrics.StreamClients.Inc()
	h.log.Info("stream client connected", zap.Int("total", count))

	go client.writePump()
	go client.tickLoop()
	go client.readPump()
}

// removeClient unregisters a client. Idempotent: the pumps race to
// tear the connection down. The send channel is never closed; the
// write pump exits on the connection context instead, so late pushes
// from the tick loop cannot panic.
func (h *Hub) removeClient(c *Client) {
	h.mu.Lock()
	if !h.clients[c] {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c)
	count := len(h.clients)
	h.mu.Unlock()

	h.metrics.StreamClients.Dec()
	h.log.Info("stream client disconnected", zap.Int("total", count))
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Shutdown cancels every connection. New upgrades are refused.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	h.closed = true
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		c.cancel()
		c.conn.Close()
	}
}

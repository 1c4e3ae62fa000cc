package stream

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"marketgateway/internal/gateway"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second

	maxMessageSize = 4096
)

// Client is a single WebSocket peer with its own symbol set.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.RWMutex
	symbols map[string]struct{}
}

// readPump consumes client frames until the connection dies, then
// tears the whole connection down: cancel stops the tick loop and the
// write pump, removeClient drops the hub registration.
func (c *Client) readPump() {
	defer func() {
		c.cancel()
		c.hub.removeClient(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var m clientMessage
		if err := json.Unmarshal(msg, &m); err != nil {
			c.sendError("malformed frame: expected JSON with action and symbols")
			continue
		}

		switch m.Action {
		case actionSubscribe:
			c.handleSubscribe(m.Symbols)
		case actionUnsubscribe:
			c.handleUnsubscribe(m.Symbols)
		default:
			c.sendError("unknown action " + m.Action)
		}
	}
}

// handleSubscribe validates every symbol before mutating the set, so a
// frame with one bad symbol changes nothing.
func (c *Client) handleSubscribe(raw []string) {
	if len(raw) == 0 {
		c.sendError("subscribe requires at least one symbol")
		return
	}
	syms, err := gateway.NormalizeSymbols(raw)
	if err != nil {
		c.sendError(err.Error())
		return
	}

	c.mu.Lock()
	for _, sym := range syms {
		c.symbols[sym] = struct{}{}
	}
	c.mu.Unlock()

	c.sendJSON(serverMessage{Type: typeSubscribed, Symbols: c.snapshotSymbols()})
}

// handleUnsubscribe removes symbols and acks with the ones actually
// removed; symbols that were never subscribed are ignored.
func (c *Client) handleUnsubscribe(raw []string) {
	syms, err := gateway.NormalizeSymbols(raw)
	if err != nil {
		c.sendError(err.Error())
		return
	}

	c.mu.Lock()
	removed := make([]string, 0, len(syms))
	for _, sym := range syms {
		if _, ok := c.symbols[sym]; ok {
			delete(c.symbols, sym)
			removed = append(removed, sym)
		}
	}
	c.mu.Unlock()

	sort.Strings(removed)
	c.sendJSON(serverMessage{Type: typeUnsubscribed, Symbols: removed})
}

// snapshotSymbols returns the current set sorted, for deterministic
// acks and push order.
func (c *Client) snapshotSymbols() []string {
	c.mu.RLock()
	out := make([]string, 0, len(c.symbols))
	for sym := range c.symbols {
		out = append(out, sym)
	}
	c.mu.RUnlock()
	sort.Strings(out)
	return out
}

// tickLoop pushes one quote frame per subscribed symbol each interval.
// An empty set means a quiet tick, not an error.
func (c *Client) tickLoop() {
	ticker := time.NewTicker(c.hub.interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			for _, sym := range c.snapshotSymbols() {
				q, _, err := c.hub.source.Quote(c.ctx, sym)
				if err != nil {
					// Symbols are validated at subscribe time; a failure
					// here is a cancelled context.
					continue
				}
				c.sendJSON(serverMessage{Type: typeQuote, Data: q})
				c.hub.metrics.StreamFrames.Inc()
			}
		}
	}
}

// writePump serializes all writes to the connection. Queued frames are
// coalesced into a single WebSocket message with newline separators.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.ctx.Done():
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(msg)
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}
			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) sendJSON(v serverMessage) {
	data, err := json.Marshal(v)
	if err != nil {
		c.hub.log.Error("stream marshal failed", zap.Error(err))
		return
	}
	select {
	case <-c.ctx.Done():
	case c.send <- data:
	default:
		c.hub.log.Warn("stream client send buffer full, dropping frame")
	}
}

func (c *Client) sendError(msg string) {
	c.sendJSON(serverMessage{Type: typeError, Message: msg})
}

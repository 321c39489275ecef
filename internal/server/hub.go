package server

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	wsIdlePingInterval = 30 * time.Second
	wsWriteWait        = 10 * time.Second
)

type wsMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Hub fans typed messages out to websocket clients. Slow clients drop
// messages rather than block the broadcaster.
type Hub struct {
	name      string
	logger    *zap.Logger
	mu        sync.Mutex
	clients   map[*Client]struct{}
	broadcast chan wsMessage
}

type Client struct {
	mu     sync.Mutex
	closed bool
	send   chan []byte
}

func NewHub(name string, logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		name:      name,
		logger:    logger,
		clients:   make(map[*Client]struct{}),
		broadcast: make(chan wsMessage, 32),
	}
}

// Run delivers published messages until ctx is done.
func (h *Hub) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return nil
		case msg := <-h.broadcast:
			data, err := json.Marshal(msg)
			if err != nil {
				h.logger.Warn("ws marshal failed", zap.String("hub", h.name), zap.String("type", msg.Type), zap.Error(err))
				continue
			}
			h.mu.Lock()
			for client := range h.clients {
				client.trySend(data)
			}
			h.mu.Unlock()
		}
	}
}

// Publish queues payload for broadcast; it never blocks.
func (h *Hub) Publish(msgType string, payload any) {
	msg, err := newMessage(msgType, payload)
	if err != nil {
		h.logger.Warn("ws marshal failed", zap.String("hub", h.name), zap.String("type", msgType), zap.Error(err))
		return
	}
	select {
	case h.broadcast <- msg:
	default:
		h.logger.Debug("ws broadcast dropped", zap.String("hub", h.name), zap.String("type", msgType))
	}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		c.close()
	}
	h.mu.Unlock()
}

func (h *Hub) HasClients() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients) > 0
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	for c := range h.clients {
		delete(h.clients, c)
		c.close()
	}
	h.mu.Unlock()
}

func newClient() *Client {
	return &Client{send: make(chan []byte, 16)}
}

func (c *Client) sendJSON(msgType string, payload any) {
	msg, err := newMessage(msgType, payload)
	if err != nil {
		return
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	c.trySend(data)
}

func (c *Client) trySend(data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// writeLoop drains the client's queue into conn. When nothing was written
// for idle it sends a {"type":"ping"} message so proxies keep the socket
// open. It returns after the close frame once the client is closed, or
// on the first failed write.
func (c *Client) writeLoop(conn *websocket.Conn, idle time.Duration) error {
	ping, err := json.Marshal(wsMessage{Type: "ping"})
	if err != nil {
		return err
	}
	timer := time.NewTimer(idle)
	defer timer.Stop()

	write := func(data []byte) error {
		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return err
		}
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(idle)
		return nil
	}

	for {
		select {
		case data, ok := <-c.send:
			if !ok {
				_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
				return conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			}
			if err := write(data); err != nil {
				return err
			}
		case <-timer.C:
			if err := write(ping); err != nil {
				return err
			}
		}
	}
}

func newMessage(msgType string, payload any) (wsMessage, error) {
	msg := wsMessage{Type: msgType}
	if payload == nil {
		return msg, nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return wsMessage{}, err
	}
	msg.Payload = raw
	return msg, nil
}

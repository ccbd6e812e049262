package bridge

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/muurk/bravia/internal/logging"
)

// Event types sent to stream clients.
const (
	EventNotify     = "notify"
	EventConnection = "connection"
	EventState      = "state"
)

const (
	wsTypeEvent = "event"

	wsSendBufferSize = 256
	wsWriteWait      = 10 * time.Second
	wsPongWait       = 60 * time.Second
	wsPingPeriod     = (wsPongWait * 9) / 10
	wsMaxMessageSize = 512
)

// WSMessage is one message on the event stream.
type WSMessage struct {
	Type      string `json:"type"`
	EventType string `json:"event_type"`
	Timestamp string `json:"timestamp"`
	Payload   any    `json:"payload"`
}

// ConnectionPayload is the payload of connection events.
type ConnectionPayload struct {
	State       string `json:"state"`
	Intentional bool   `json:"intentional,omitempty"`
	Error       string `json:"error,omitempty"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// Hub fans events out to every connected stream client. Clients never
// send anything but control frames; a client that cannot keep up loses
// messages instead of blocking the display connection.
type Hub struct {
	mu      sync.RWMutex
	clients map[*wsClient]struct{}
	metrics *metrics
}

type wsClient struct {
	id   string
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

func newHub(m *metrics) *Hub {
	return &Hub{clients: make(map[*wsClient]struct{}), metrics: m}
}

func encodeEvent(eventType string, payload any) ([]byte, error) {
	return json.Marshal(WSMessage{
		Type:      wsTypeEvent,
		EventType: eventType,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Payload:   payload,
	})
}

// Broadcast sends an event to every client.
func (h *Hub) Broadcast(eventType string, payload any) {
	data, err := encodeEvent(eventType, payload)
	if err != nil {
		logging.Error("Failed to marshal event", zap.String("event_type", eventType), zap.Error(err))
		return
	}

	// send channels are closed only under the write lock, so holding the
	// read lock keeps every channel in the map open while we send.
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		c.trySend(data)
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) register(c *wsClient) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	h.metrics.websocketClients.Set(float64(n))
	logging.Debug("Event client connected", zap.String("client_id", c.id), zap.Int("clients", n))
}

// unregister removes c. Only the caller that removes it closes c.send.
func (h *Hub) unregister(c *wsClient) {
	h.mu.Lock()
	_, existed := h.clients[c]
	delete(h.clients, c)
	n := len(h.clients)
	h.mu.Unlock()

	if existed {
		close(c.send)
		h.metrics.websocketClients.Set(float64(n))
		logging.Debug("Event client disconnected", zap.String("client_id", c.id), zap.Int("clients", n))
	}
}

// closeAll disconnects every client.
func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		close(c.send)
		_ = c.conn.Close()
		delete(h.clients, c)
	}
	h.metrics.websocketClients.Set(0)
}

// serve upgrades the request and runs the client until it goes away.
// initial, when non-nil, is sent before any broadcast.
func (h *Hub) serve(w http.ResponseWriter, r *http.Request, initial []byte) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Warn("WebSocket upgrade failed", zap.String("remote_addr", r.RemoteAddr), zap.Error(err))
		return
	}

	c := &wsClient{
		id:   uuid.NewString(),
		hub:  h,
		conn: conn,
		send: make(chan []byte, wsSendBufferSize),
	}
	if initial != nil {
		c.send <- initial
	}
	h.register(c)

	go c.writePump()
	go c.readPump()
}

// trySend queues data without blocking. The caller holds h.mu.
func (c *wsClient) trySend(data []byte) {
	select {
	case c.send <- data:
	default:
		logging.Warn("Event client too slow, dropping message", zap.String("client_id", c.id))
	}
}

func (c *wsClient) readPump() {
	defer func() {
		c.hub.unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(wsMaxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logging.Debug("Event client read error", zap.String("client_id", c.id), zap.Error(err))
			}
			return
		}
	}
}

func (c *wsClient) writePump() {
	ticker := time.NewTicker(wsPingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

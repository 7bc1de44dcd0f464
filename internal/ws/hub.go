package ws

import (
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
)

// Event is the envelope broadcast to connected observers.
type Event struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Hub tracks connected observers and fans events out to them. Delivery is
// best effort: a client whose send buffer is full simply misses the event.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
	log     *zap.SugaredLogger
}

func NewHub(log *zap.SugaredLogger) *Hub {
	return &Hub{
		clients: make(map[string]*Client),
		log:     log,
	}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c.ID] = c
}

func (h *Hub) Unregister(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c, ok := h.clients[id]; ok {
		delete(h.clients, id)
		close(c.send)
	}
}

func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast sends the event to every connected client without blocking the
// caller.
func (h *Hub) Broadcast(event string, data interface{}) {
	msg := Event{Event: event, Data: data}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		select {
		case c.send <- msg:
		default:
			h.log.Warnw("dropping event for slow websocket client", "client", c.ID, "event", event)
		}
	}
}

// UpgradeGate only lets websocket upgrade requests through to the handler.
func UpgradeGate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}
}

// Handler upgrades the connection and pumps events until the client
// disconnects.
func (h *Hub) Handler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		client := NewClient(conn)
		h.Register(client)
		defer h.Unregister(client.ID)

		go client.writePump()
		client.readPump()
	})
}

package ws

import (
	"EduPortal/entity"
	"EduPortal/internal/lib/sl"
	"context"
	"encoding/json"
	"log/slog"
	"sync"
)

// Event is one message pushed to feed clients.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Hub keeps the connected administrators and fans audit events out to them.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan *Event
	register   chan *Client
	unregister chan *Client
	// done is closed when Run returns.
	done       chan struct{}
	mu         sync.RWMutex
	log        *slog.Logger
}

func NewHub(log *slog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan *Event, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		log:        log.With(sl.Module("ws.hub")),
	}
}

// Run is the hub's event loop. It returns when ctx is done and closes every
// client.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.mu.Lock()
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			h.log.With(slog.String("user_id", client.userID)).Debug("feed client connected")

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()

		case event := <-h.broadcast:
			data, err := json.Marshal(event)
			if err != nil {
				h.log.Error("encode feed event", sl.Err(err))
				continue
			}
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- data:
				default:
					// Slow reader: drop it rather than stall the feed.
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Broadcast queues an audit event for all clients without blocking. Events
// are dropped when the queue is full.
func (h *Hub) Broadcast(ev entity.AuditEvent) {
	select {
	case h.broadcast <- &Event{Type: "audit_event", Data: ev}:
	default:
		h.log.With(slog.String("event_id", ev.ID)).Warn("feed queue full, event dropped")
	}
}

// join hands a new client to the running hub. It reports false once the hub
// has stopped.
func (h *Hub) join(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) leave(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

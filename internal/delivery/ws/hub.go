package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/mmuslimabdulj/calcvault/internal/domain"
	"github.com/mmuslimabdulj/calcvault/internal/metrics"
)

// Hub maintains the set of connected clients and fans store changes out to
// them. The latest snapshot and recent message events are replayed to every
// newly registered client.
type Hub struct {
	mu         sync.RWMutex
	clients    map[string]*Client
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	history    *RingBuffer
	latest     []byte
	published  int // messages already announced as EventMessage
	logger     *slog.Logger
}

// NewHub creates a hub keeping historySize recent message events
func NewHub(historySize int, logger *slog.Logger) *Hub {
	if historySize <= 0 {
		historySize = domain.MaxHistorySize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		clients:    make(map[string]*Client),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		history:    NewRingBuffer(historySize),
		logger:     logger,
	}
}

// Run is the hub's event loop. It returns when ctx is cancelled, closing
// every client's send channel.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ID] = client
			metrics.WSClients.Set(float64(len(h.clients)))

			for _, event := range h.history.GetAll() {
				client.Send(event)
			}
			if h.latest != nil {
				client.Send(h.latest)
			}
			h.mu.Unlock()
			h.logger.Debug("ws client registered", "client_id", client.ID, "user_id", client.UserID)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.ID]; ok {
				delete(h.clients, client.ID)
				close(client.send)
				metrics.WSClients.Set(float64(len(h.clients)))
			}
			h.mu.Unlock()

		case message := <-h.broadcast:
			h.mu.Lock()
			var head struct {
				Type EventType `json:"type"`
			}
			if err := json.Unmarshal(message, &head); err == nil {
				switch head.Type {
				case EventSnapshot:
					h.latest = message
				case EventMessage:
					h.history.Add(message)
				}
			}

			for id, client := range h.clients {
				select {
				case client.send <- message:
				default:
					// slow consumer; it reconnects and gets the latest snapshot
					close(client.send)
					delete(h.clients, id)
					h.logger.Warn("ws client dropped, send buffer full", "client_id", id)
				}
			}
			metrics.WSClients.Set(float64(len(h.clients)))
			h.mu.Unlock()

		case <-ctx.Done():
			h.mu.Lock()
			for id, client := range h.clients {
				close(client.send)
				delete(h.clients, id)
			}
			metrics.WSClients.Set(0)
			h.mu.Unlock()
			return
		}
	}
}

// Register adds a client to the hub
func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	case <-h.done:
	}
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Broadcast sends an encoded event to all connected clients
func (h *Hub) Broadcast(msg []byte) {
	select {
	case h.broadcast <- msg:
	case <-h.done:
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// PublishState announces messages appended since the previous call and then
// the full snapshot. Subscribe it to the store.
func (h *Hub) PublishState(state domain.AppState) {
	h.mu.Lock()
	from := h.published
	if from > len(state.Messages) {
		from = len(state.Messages)
	}
	h.published = len(state.Messages)
	h.mu.Unlock()

	for _, m := range state.Messages[from:] {
		event, err := NewEvent(EventMessage, m)
		if err != nil {
			h.logger.Error("encode message event", "message_id", m.ID, "error", err)
			continue
		}
		h.Broadcast(event)
	}

	event, err := NewEvent(EventSnapshot, state)
	if err != nil {
		h.logger.Error("encode snapshot event", "error", err)
		return
	}
	h.Broadcast(event)
}

// Prime records the message count already known at startup so the initial
// log is not replayed as new message events
func (h *Hub) Prime(state domain.AppState) {
	h.mu.Lock()
	h.published = len(state.Messages)
	h.mu.Unlock()
}

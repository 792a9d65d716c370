package websocket

import (
	"errors"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/medwelfare/welfare-backend/internal/domain"
)

// ErrClientClosed is returned when attempting to send to a closed client
var ErrClientClosed = errors.New("client is closed")

// ClientInterface defines the interface that clients must implement
type ClientInterface interface {
	ID() string
	Scope() domain.Scope
	Send(data []byte) error
	Close() error
}

// Hub manages WebSocket connections and routes events by category visibility
// It is safe for concurrent use
type Hub struct {
	// clients maps client ID to client
	clients map[string]ClientInterface
	mu      sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]ClientInterface),
	}
}

// Register adds a client to the hub
func (h *Hub) Register(client ClientInterface) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client.ID()] = client

	log.Debug().
		Str("client_id", client.ID()).
		Bool("scope_all", client.Scope().All).
		Msg("WebSocket client registered")
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client ClientInterface) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, exists := h.clients[client.ID()]; exists {
		delete(h.clients, client.ID())

		log.Debug().
			Str("client_id", client.ID()).
			Msg("WebSocket client unregistered")
	}
}

// Broadcast sends an event to every client whose visibility scope covers
// the given category
func (h *Hub) Broadcast(categoryID int32, event Event) {
	data, err := event.ToJSON()
	if err != nil {
		log.Error().
			Err(err).
			Int32("category_id", categoryID).
			Str("event_type", event.Type).
			Msg("Failed to serialize event")
		return
	}

	h.mu.RLock()
	// Copy eligible clients to avoid holding lock during send
	eligible := make([]ClientInterface, 0, len(h.clients))
	for _, client := range h.clients {
		if client.Scope().Covers(categoryID) {
			eligible = append(eligible, client)
		}
	}
	h.mu.RUnlock()

	if len(eligible) == 0 {
		return
	}

	// Send to each client asynchronously
	for _, client := range eligible {
		go func(c ClientInterface) {
			if err := c.Send(data); err != nil {
				log.Warn().
					Err(err).
					Int32("category_id", categoryID).
					Str("client_id", c.ID()).
					Msg("Failed to send to client")
			}
		}(client)
	}

	log.Debug().
		Int32("category_id", categoryID).
		Str("event_type", event.Type).
		Int("client_count", len(eligible)).
		Msg("Broadcast event")
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

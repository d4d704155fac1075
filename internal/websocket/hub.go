package websocket

import (
	"errors"
	"sync"

	"github.com/dafibh/tally/tally-backend/internal/domain"
	"github.com/rs/zerolog/log"
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

// Hub fans change notifications out to the clients watching a scope.
// It is safe for concurrent use.
type Hub struct {
	// scopes maps an owner scope to a map of client ID to client
	scopes map[domain.Scope]map[string]ClientInterface
	mu     sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		scopes: make(map[domain.Scope]map[string]ClientInterface),
	}
}

// Register adds a client to the hub under its scope
func (h *Hub) Register(client ClientInterface) {
	h.mu.Lock()
	defer h.mu.Unlock()

	scope := client.Scope()
	if h.scopes[scope] == nil {
		h.scopes[scope] = make(map[string]ClientInterface)
	}
	h.scopes[scope][client.ID()] = client

	log.Debug().
		Str("scope", scope.String()).
		Str("client_id", client.ID()).
		Msg("WebSocket client registered")
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client ClientInterface) {
	h.mu.Lock()
	defer h.mu.Unlock()

	scope := client.Scope()
	clients, ok := h.scopes[scope]
	if !ok {
		return
	}
	if _, exists := clients[client.ID()]; !exists {
		return
	}

	delete(clients, client.ID())
	if len(clients) == 0 {
		delete(h.scopes, scope)
	}

	log.Debug().
		Str("scope", scope.String()).
		Str("client_id", client.ID()).
		Msg("WebSocket client unregistered")
}

// Broadcast sends an event to all clients watching scope
func (h *Hub) Broadcast(scope domain.Scope, event Event) {
	data, err := event.ToJSON()
	if err != nil {
		log.Error().
			Err(err).
			Str("scope", scope.String()).
			Str("event_type", event.Type).
			Msg("Failed to serialize event")
		return
	}

	h.mu.RLock()
	clients, ok := h.scopes[scope]
	if !ok || len(clients) == 0 {
		h.mu.RUnlock()
		return
	}

	// Copy clients to avoid holding lock during send
	targets := make([]ClientInterface, 0, len(clients))
	for _, client := range clients {
		targets = append(targets, client)
	}
	h.mu.RUnlock()

	for _, client := range targets {
		go func(c ClientInterface) {
			if err := c.Send(data); err != nil {
				log.Warn().
					Err(err).
					Str("scope", scope.String()).
					Str("client_id", c.ID()).
					Msg("Failed to send to client")
			}
		}(client)
	}

	log.Debug().
		Str("scope", scope.String()).
		Str("event_type", event.Type).
		Int("client_count", len(targets)).
		Msg("Broadcast event")
}

// ClientCount returns the number of clients watching scope
func (h *Hub) ClientCount(scope domain.Scope) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.scopes[scope])
}

// TotalClientCount returns the number of connected clients across all scopes
func (h *Hub) TotalClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := 0
	for _, clients := range h.scopes {
		total += len(clients)
	}
	return total
}

package websocket

import "github.com/dafibh/tally/tally-backend/internal/domain"

// EventPublisher defines the interface for publishing events to WebSocket clients
type EventPublisher interface {
	// Publish sends an event to all clients watching scope
	Publish(scope domain.Scope, event Event)
}

var _ EventPublisher = (*Hub)(nil)

// Publish implements EventPublisher by broadcasting the event to the scope
func (h *Hub) Publish(scope domain.Scope, event Event) {
	h.Broadcast(scope, event)
}

// NoOpPublisher is a publisher that does nothing (for testing or when WebSocket is disabled)
type NoOpPublisher struct{}

// Publish does nothing
func (n *NoOpPublisher) Publish(scope domain.Scope, event Event) {}

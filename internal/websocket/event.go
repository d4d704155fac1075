package websocket

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventType represents the type of event (created, updated, deleted)
type EventType string

const (
	EventTypeCreated   EventType = "created"
	EventTypeUpdated   EventType = "updated"
	EventTypeDeleted   EventType = "deleted"
	EventTypeReordered EventType = "reordered"
)

// EntityType represents the type of entity the event is about
type EntityType string

const (
	EntityTypeCategory EntityType = "category"
	EntityTypeCharge   EntityType = "charge"
)

// Event represents a WebSocket event message sent to clients
// Format: { type, entity, payload, timestamp }
type Event struct {
	Type      string      `json:"type"`      // Combined type e.g. "charge.created"
	Entity    EntityType  `json:"entity"`    // Entity type e.g. "charge"
	Payload   interface{} `json:"payload"`   // Full entity data
	Timestamp time.Time   `json:"timestamp"` // Event timestamp
}

// NewEvent creates a new event with the given type, entity, and payload
func NewEvent(eventType EventType, entityType EntityType, payload interface{}) Event {
	return Event{
		Type:      fmt.Sprintf("%s.%s", entityType, eventType),
		Entity:    entityType,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON serializes the event to JSON bytes
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// CategoryCreated creates a category.created event
func CategoryCreated(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypeCategory, payload)
}

// CategoryUpdated creates a category.updated event
func CategoryUpdated(payload interface{}) Event {
	return NewEvent(EventTypeUpdated, EntityTypeCategory, payload)
}

// CategoryDeleted creates a category.deleted event
func CategoryDeleted(payload interface{}) Event {
	return NewEvent(EventTypeDeleted, EntityTypeCategory, payload)
}

// CategoryReordered creates a category.reordered event
func CategoryReordered(payload interface{}) Event {
	return NewEvent(EventTypeReordered, EntityTypeCategory, payload)
}

// ChargeCreated creates a charge.created event
func ChargeCreated(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypeCharge, payload)
}

// ChargeUpdated creates a charge.updated event
func ChargeUpdated(payload interface{}) Event {
	return NewEvent(EventTypeUpdated, EntityTypeCharge, payload)
}

// ChargeDeleted creates a charge.deleted event
func ChargeDeleted(payload interface{}) Event {
	return NewEvent(EventTypeDeleted, EntityTypeCharge, payload)
}

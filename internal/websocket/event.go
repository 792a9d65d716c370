package websocket

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventType represents the kind of change an event reports
type EventType string

const (
	EventTypeCreated  EventType = "created"
	EventTypeUpdated  EventType = "updated"
	EventTypeDeleted  EventType = "deleted"
	EventTypeToppedUp EventType = "topped_up"
)

// EntityType represents the entity an event is about
type EntityType string

const (
	EntityTypeClaim      EntityType = "claim"
	EntityTypeAllocation EntityType = "allocation"
	EntityTypeCategory   EntityType = "category"
	EntityTypeAssignment EntityType = "assignment"
)

// Event is a message sent to connected clients
// Format: { type, entity, payload, timestamp }
type Event struct {
	Type      string      `json:"type"` // Combined type e.g. "claim.created"
	Entity    EntityType  `json:"entity"`
	Payload   interface{} `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
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

// ClaimCreated creates a claim.created event
func ClaimCreated(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypeClaim, payload)
}

// AllocationUpdated creates an allocation.updated event
func AllocationUpdated(payload interface{}) Event {
	return NewEvent(EventTypeUpdated, EntityTypeAllocation, payload)
}

// AllocationToppedUp creates an allocation.topped_up event
func AllocationToppedUp(payload interface{}) Event {
	return NewEvent(EventTypeToppedUp, EntityTypeAllocation, payload)
}

// CategoryCreated creates a category.created event
func CategoryCreated(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypeCategory, payload)
}

// CategoryDeleted creates a category.deleted event
func CategoryDeleted(payload interface{}) Event {
	return NewEvent(EventTypeDeleted, EntityTypeCategory, payload)
}

// AssignmentCreated creates an assignment.created event
func AssignmentCreated(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypeAssignment, payload)
}

// AssignmentDeleted creates an assignment.deleted event
func AssignmentDeleted(payload interface{}) Event {
	return NewEvent(EventTypeDeleted, EntityTypeAssignment, payload)
}

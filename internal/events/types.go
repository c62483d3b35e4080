package events

import (
	"time"
)

// EventType defines the type of event
type EventType string

const (
	// Widget events
	WidgetCreated EventType = "widget:created"
	WidgetUpdated EventType = "widget:updated"
	WidgetDeleted EventType = "widget:deleted"

	// Stream events
	ConnectionEstablished EventType = "connection:established"
)

// Event represents a real-time event
type Event struct {
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	UserID    string      `json:"user_id,omitempty"`
	WidgetID  string      `json:"widget_id,omitempty"`
	Data      interface{} `json:"data,omitempty"`
}

// NewEvent creates a new event
func NewEvent(eventType EventType, data interface{}) *Event {
	return &Event{
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

// ForUser sets the owning user
func (e *Event) ForUser(userID string) *Event {
	e.UserID = userID
	return e
}

// WithWidget sets widget ID
func (e *Event) WithWidget(widgetID string) *Event {
	e.WidgetID = widgetID
	return e
}

// ParseFilter splits a comma separated list of event types
func ParseFilter(s string) []EventType {
	var filters []EventType
	for _, part := range splitComma(s) {
		filters = append(filters, EventType(part))
	}
	return filters
}

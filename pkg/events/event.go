package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "SESSION_INDEXED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent carries the common fields of every concrete event.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// Event type codes published by the core.
const (
	TypeSessionIndexed = "SESSION_INDEXED"
	TypeSessionEvicted = "SESSION_EVICTED"
)

// NewSessionIndexed is emitted after an upload successfully replaces a
// session's knowledge base.
func NewSessionIndexed(sessionID string, files, chunks int) Event {
	return BaseEvent{
		Type: TypeSessionIndexed,
		Data: map[string]interface{}{
			"session_id": sessionID,
			"files":      files,
			"chunks":     chunks,
		},
		OccurredAt: time.Now(),
	}
}

// NewSessionEvicted is emitted when the sweeper removes an idle session.
func NewSessionEvicted(sessionID string, idleFor time.Duration) Event {
	return BaseEvent{
		Type: TypeSessionEvicted,
		Data: map[string]interface{}{
			"session_id": sessionID,
			"idle_for":   idleFor.String(),
		},
		OccurredAt: time.Now(),
	}
}

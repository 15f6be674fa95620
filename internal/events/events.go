package events

// Event is a named event on the realtime connection.
type Event string

// Server-pushed domain events.
const (
	ContactCreated Event = "contact:created"
	ContactUpdated Event = "contact:updated"
	ContactDeleted Event = "contact:deleted"

	TaskCreated Event = "task:created"
	TaskUpdated Event = "task:updated"
	TaskDeleted Event = "task:deleted"

	MessageCreated Event = "message:created"
	MessageUpdated Event = "message:updated"
	MessageDeleted Event = "message:deleted"

	CalendarEventCreated Event = "calendar_event:created"
	CalendarEventUpdated Event = "calendar_event:updated"
	CalendarEventDeleted Event = "calendar_event:deleted"

	WorkflowCreated Event = "workflow:created"
	WorkflowUpdated Event = "workflow:updated"
	WorkflowDeleted Event = "workflow:deleted"

	// Connected is the server's acknowledgment after a successful handshake.
	Connected Event = "connected"
)

// ConnectionStatus is the reserved event under which the connection manager
// republishes its own state transitions. It is produced locally, never by
// the server.
const ConnectionStatus Event = "connection:status"

// domain lists every event the server may push.
var domain = []Event{
	ContactCreated, ContactUpdated, ContactDeleted,
	TaskCreated, TaskUpdated, TaskDeleted,
	MessageCreated, MessageUpdated, MessageDeleted,
	CalendarEventCreated, CalendarEventUpdated, CalendarEventDeleted,
	WorkflowCreated, WorkflowUpdated, WorkflowDeleted,
	Connected,
}

// Domain returns the full set of server-pushed events.
func Domain() []Event {
	out := make([]Event, len(domain))
	copy(out, domain)
	return out
}

// Valid reports whether e is part of the known vocabulary
// (domain events plus the reserved status event).
func (e Event) Valid() bool {
	if e == ConnectionStatus {
		return true
	}
	for _, d := range domain {
		if e == d {
			return true
		}
	}
	return false
}

// StatusPayload is the JSON payload carried by ConnectionStatus events.
// Attempt and MaxAttempts are set only while reconnecting; Reason and
// Message are set on failures.
type StatusPayload struct {
	Status      string `json:"status"`
	Attempt     int    `json:"attempt,omitempty"`
	MaxAttempts int    `json:"maxAttempts,omitempty"`
	Reason      string `json:"reason,omitempty"`
	Message     string `json:"message,omitempty"`
}

package events

import (
	"time"

	"github.com/spec-kit/ticketdesk/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventViewChanged     EventType = "view_changed"
	EventSessionOpened   EventType = "session_opened"
	EventSessionClosed   EventType = "session_closed"
	EventLoginRejected   EventType = "login_rejected"
	EventTicketsReplaced EventType = "tickets_replaced"
)

// Event represents a state change emitted by the application service.
type Event struct {
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// ViewChangedPayload payload.
type ViewChangedPayload struct {
	From domain.View `json:"from"`
	To   domain.View `json:"to"`
}

// SessionPayload payload for session_opened and session_closed.
type SessionPayload struct {
	Username string `json:"username,omitempty"`
}

// LoginRejectedPayload payload.
type LoginRejectedPayload struct {
	Reason string `json:"reason"`
}

// TicketsReplacedPayload payload.
type TicketsReplacedPayload struct {
	Cause   string               `json:"cause"`
	Count   int                  `json:"count"`
	Summary domain.TicketSummary `json:"summary"`
}

package events

import (
	"time"

	"github.com/campus-desk/pqrs-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketRegistered  EventType = "ticket_registered"
	EventTicketClassified  EventType = "ticket_classified"
	EventTicketPrioritized EventType = "ticket_prioritized"
	EventTicketAssigned    EventType = "ticket_assigned"
	EventTicketResolved    EventType = "ticket_resolved"
	EventTicketClosed      EventType = "ticket_closed"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string         `json:"id"`
	Type      EventType      `json:"type"`
	TicketID  string         `json:"ticket_id"`
	Actor     domain.UserRef `json:"actor"`
	Timestamp time.Time      `json:"timestamp"`
	Payload   interface{}    `json:"payload"`
}

// TicketRegisteredPayload payload.
type TicketRegisteredPayload struct {
	RequesterID string         `json:"requester_id"`
	Channel     domain.Channel `json:"channel"`
}

// TicketClassifiedPayload payload.
type TicketClassifiedPayload struct {
	Category domain.TicketCategory `json:"category"`
}

// TicketPrioritizedPayload payload.
type TicketPrioritizedPayload struct {
	Priority      domain.TicketPriority `json:"priority"`
	Justification string                `json:"justification"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	AssigneeID   string `json:"assignee_id"`
	AssigneeName string `json:"assignee_name"`
}

// TicketStatusPayload payload for resolve/close.
type TicketStatusPayload struct {
	Status domain.TicketStatus `json:"status"`
	Note   string              `json:"note,omitempty"`
}

package dto

import (
	"time"

	"github.com/campus-desk/pqrs-service/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	RequesterID   string `json:"requester_id"`
	RequesterName string `json:"requester_name"`
	Channel       string `json:"channel"`
	Description   string `json:"description"`
}

// ClassifyRequest payload.
type ClassifyRequest struct {
	Category      string `json:"category"`
	CoordinatorID string `json:"coordinator_id"`
}

// PrioritizeRequest payload.
type PrioritizeRequest struct {
	Priority      string `json:"priority"`
	Justification string `json:"justification"`
	CoordinatorID string `json:"coordinator_id"`
}

// AssignRequest payload.
type AssignRequest struct {
	AssigneeID    string `json:"assignee_id"`
	CoordinatorID string `json:"coordinator_id"`
}

// CompletionRequest payload for resolve and close.
type CompletionRequest struct {
	ActorID string `json:"actor_id"`
	Note    string `json:"note"`
}

// UserRefResponse is an embedded user reference.
type UserRefResponse struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// AuditEntryResponse is one history line.
type AuditEntryResponse struct {
	ID        string          `json:"id"`
	Timestamp time.Time       `json:"timestamp"`
	Action    string          `json:"action"`
	Actor     UserRefResponse `json:"actor"`
	Note      string          `json:"note"`
}

// TicketResponse provides the full ticket view.
type TicketResponse struct {
	ID                    string               `json:"id"`
	Requester             UserRefResponse      `json:"requester"`
	Channel               domain.Channel       `json:"channel"`
	RegisteredAt          time.Time            `json:"registered_at"`
	Category              string               `json:"category,omitempty"`
	Description           string               `json:"description"`
	Priority              string               `json:"priority,omitempty"`
	PriorityJustification string               `json:"priority_justification,omitempty"`
	Status                domain.TicketStatus  `json:"status"`
	Assignee              *UserRefResponse     `json:"assignee,omitempty"`
	History               []AuditEntryResponse `json:"history"`
}

package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/campus-desk/pqrs-service/pkg/util"
)

// TicketStatus enumerates lifecycle states for tickets. Status only moves
// forward through the sequence, never regressing and never skipping a stage.
type TicketStatus string

const (
	TicketStatusRegistered TicketStatus = "REGISTERED"
	TicketStatusClassified TicketStatus = "CLASSIFIED"
	TicketStatusInProgress TicketStatus = "IN_PROGRESS"
	TicketStatusResolved   TicketStatus = "RESOLVED"
	TicketStatusClosed     TicketStatus = "CLOSED"
)

// TicketCategory enumerates what kind of request a ticket carries.
type TicketCategory string

const (
	CategoryComplaint  TicketCategory = "COMPLAINT"
	CategoryClaim      TicketCategory = "CLAIM"
	CategorySuggestion TicketCategory = "SUGGESTION"
	CategoryRequest    TicketCategory = "REQUEST"
)

// TicketPriority enumerates urgency assigned during triage.
type TicketPriority string

const (
	TicketPriorityHigh   TicketPriority = "HIGH"
	TicketPriorityMedium TicketPriority = "MEDIUM"
	TicketPriorityLow    TicketPriority = "LOW"
)

// Channel enumerates intake channels a ticket can arrive through.
type Channel string

const (
	ChannelWeb      Channel = "WEB"
	ChannelEmail    Channel = "EMAIL"
	ChannelPhone    Channel = "PHONE"
	ChannelInPerson Channel = "IN_PERSON"
)

const (
	descriptionMinLen   = 10
	descriptionMaxLen   = 1000
	justificationMinLen = 10
)

// Ticket is the aggregate for institutional complaint/request records.
// Transitions return a new value; the receiver is never mutated, so a failed
// transition leaves the caller's copy untouched.
type Ticket struct {
	ID                    string
	Requester             UserRef
	Channel               Channel
	RegisteredAt          time.Time
	Category              TicketCategory
	Description           string
	Priority              TicketPriority
	PriorityJustification string
	Status                TicketStatus
	Assignee              *UserRef
	History               []AuditEntry
}

// NewTicket registers a ticket in REGISTERED state and writes the first
// audit entry.
func NewTicket(requester UserRef, channel Channel, description string) (Ticket, error) {
	if requester.ID == "" {
		return Ticket{}, apperrors.NewValidationError("requester is required", nil)
	}
	if channel == "" {
		return Ticket{}, apperrors.NewValidationError("origin channel is required", nil)
	}
	if err := validateDescription(description); err != nil {
		return Ticket{}, err
	}

	ticket := Ticket{
		ID:           uuid.NewString(),
		Requester:    requester,
		Channel:      channel,
		RegisteredAt: time.Now().UTC(),
		Description:  strings.TrimSpace(description),
		Status:       TicketStatusRegistered,
	}
	return ticket.withAudit("REGISTER_TICKET", requester, "ticket registered"), nil
}

// Classify sets the ticket category and advances REGISTERED -> CLASSIFIED.
func (t Ticket) Classify(category TicketCategory, actor UserRef) (Ticket, error) {
	if err := t.ensureOpen(); err != nil {
		return t, err
	}
	if t.Status != TicketStatusRegistered {
		return t, stateMismatch("classified", TicketStatusRegistered, t.Status)
	}
	if category == "" {
		return t, apperrors.NewValidationError("category is required", nil)
	}

	t.Category = category
	t.Status = TicketStatusClassified
	return t.withAudit("CLASSIFY_TICKET", actor, "category: "+string(category)), nil
}

// Prioritize records priority and its justification. It is permitted only
// while CLASSIFIED and does not advance the status: priority is refinement,
// not a workflow stage. It still appends an audit entry like any transition.
func (t Ticket) Prioritize(priority TicketPriority, justification string, actor UserRef) (Ticket, error) {
	if err := t.ensureOpen(); err != nil {
		return t, err
	}
	if t.Status != TicketStatusClassified {
		return t, stateMismatch("prioritized", TicketStatusClassified, t.Status)
	}
	if priority == "" {
		return t, apperrors.NewValidationError("priority is required", nil)
	}
	justification = strings.TrimSpace(justification)
	if len(justification) < justificationMinLen {
		return t, apperrors.NewValidationError(
			fmt.Sprintf("priority justification must have at least %d characters", justificationMinLen), nil)
	}

	t.Priority = priority
	t.PriorityJustification = justification
	return t.withAudit("PRIORITIZE_TICKET", actor, "priority: "+string(priority)), nil
}

// Assign hands the ticket to a responsible user and advances
// CLASSIFIED -> IN_PROGRESS. The assignee must be active.
func (t Ticket) Assign(assignee UserSummary, actor UserRef) (Ticket, error) {
	if err := t.ensureOpen(); err != nil {
		return t, err
	}
	if t.Status != TicketStatusClassified {
		return t, stateMismatch("assigned", TicketStatusClassified, t.Status)
	}
	if assignee.ID == "" {
		return t, apperrors.NewValidationError("assignee is required", nil)
	}
	if !assignee.Active {
		return t, apperrors.NewBusinessRuleViolation("assignee_active",
			"an inactive user cannot be assigned as responsible")
	}

	ref := assignee.Ref()
	t.Assignee = &ref
	t.Status = TicketStatusInProgress
	return t.withAudit("ASSIGN_RESPONSIBLE", actor, "assignee: "+assignee.DisplayName), nil
}

// Resolve marks the ticket handled and advances IN_PROGRESS -> RESOLVED.
// Only the current assignee may resolve.
func (t Ticket) Resolve(actor UserRef, note string) (Ticket, error) {
	if err := t.ensureOpen(); err != nil {
		return t, err
	}
	if t.Status != TicketStatusInProgress {
		return t, stateMismatch("resolved", TicketStatusInProgress, t.Status)
	}
	if t.Assignee == nil {
		return t, apperrors.NewBusinessRuleViolation("assignee_required",
			"ticket cannot be resolved without an assignee")
	}
	if t.Assignee.ID != actor.ID {
		return t, apperrors.NewBusinessRuleViolation("assignee_only",
			"only the assigned responsible can resolve the ticket")
	}

	note = strings.TrimSpace(note)
	if note == "" {
		note = "resolved"
	}
	t.Status = TicketStatusResolved
	return t.withAudit("RESOLVE_TICKET", actor, note), nil
}

// Close terminates the ticket, RESOLVED -> CLOSED. A closing note is
// mandatory; afterwards the ticket is immutable.
func (t Ticket) Close(actor UserRef, note string) (Ticket, error) {
	if err := t.ensureOpen(); err != nil {
		return t, err
	}
	if t.Status != TicketStatusResolved {
		return t, stateMismatch("closed", TicketStatusResolved, t.Status)
	}
	if strings.TrimSpace(note) == "" {
		return t, apperrors.NewBusinessRuleViolation("closing_note_required",
			"a closing note is required to close the ticket")
	}

	t.Status = TicketStatusClosed
	return t.withAudit("CLOSE_TICKET", actor, strings.TrimSpace(note)), nil
}

// Pending reports whether the ticket counts against its requester's cap.
func (t Ticket) Pending() bool {
	switch t.Status {
	case TicketStatusRegistered, TicketStatusClassified, TicketStatusInProgress:
		return true
	}
	return false
}

func (t Ticket) ensureOpen() error {
	if t.Status == TicketStatusClosed {
		return apperrors.NewBusinessRuleViolation("ticket_closed",
			"a CLOSED ticket cannot be modified")
	}
	return nil
}

// withAudit is the single path appending history entries, guaranteeing one
// entry per successful change. It clones the slice so earlier values of the
// ticket never observe the append.
func (t Ticket) withAudit(action string, actor UserRef, note string) Ticket {
	history := make([]AuditEntry, len(t.History), len(t.History)+1)
	copy(history, t.History)
	t.History = append(history, NewAuditEntry(action, actor, note))
	return t
}

func stateMismatch(operation string, required, current TicketStatus) error {
	return apperrors.NewBusinessRuleViolation("state_"+strings.ToLower(string(required)),
		fmt.Sprintf("ticket can only be %s in %s state, current status is %s", operation, required, current))
}

// ValidStatuses lists lifecycle states in their forward order.
func ValidStatuses() []TicketStatus {
	return []TicketStatus{
		TicketStatusRegistered,
		TicketStatusClassified,
		TicketStatusInProgress,
		TicketStatusResolved,
		TicketStatusClosed,
	}
}

// ParseChannel validates an intake channel label.
func ParseChannel(raw string) (Channel, error) {
	switch Channel(strings.ToUpper(strings.TrimSpace(raw))) {
	case ChannelWeb:
		return ChannelWeb, nil
	case ChannelEmail:
		return ChannelEmail, nil
	case ChannelPhone:
		return ChannelPhone, nil
	case ChannelInPerson:
		return ChannelInPerson, nil
	}
	return "", apperrors.NewValidationError("unknown origin channel", map[string]any{"channel": raw})
}

// ParseCategory validates a category label.
func ParseCategory(raw string) (TicketCategory, error) {
	switch TicketCategory(strings.ToUpper(strings.TrimSpace(raw))) {
	case CategoryComplaint:
		return CategoryComplaint, nil
	case CategoryClaim:
		return CategoryClaim, nil
	case CategorySuggestion:
		return CategorySuggestion, nil
	case CategoryRequest:
		return CategoryRequest, nil
	}
	return "", apperrors.NewValidationError("unknown category", map[string]any{"category": raw})
}

// ParsePriority validates a priority label.
func ParsePriority(raw string) (TicketPriority, error) {
	switch TicketPriority(strings.ToUpper(strings.TrimSpace(raw))) {
	case TicketPriorityHigh:
		return TicketPriorityHigh, nil
	case TicketPriorityMedium:
		return TicketPriorityMedium, nil
	case TicketPriorityLow:
		return TicketPriorityLow, nil
	}
	return "", apperrors.NewValidationError("unknown priority", map[string]any{"priority": raw})
}

func validateDescription(description string) error {
	trimmed := strings.TrimSpace(description)
	if trimmed == "" {
		return apperrors.NewValidationError("description is required", nil)
	}
	if len(trimmed) < descriptionMinLen {
		return apperrors.NewValidationError(
			fmt.Sprintf("description must have at least %d characters", descriptionMinLen), nil)
	}
	if len(trimmed) > descriptionMaxLen {
		return apperrors.NewValidationError(
			fmt.Sprintf("description cannot exceed %d characters", descriptionMaxLen), nil)
	}
	return nil
}

package domain

import "time"

// Role enumerates what a user can do in the workflow.
type Role string

const (
	// RoleStudent users create tickets.
	RoleStudent Role = "STUDENT"
	// RoleTeacher users can be assigned as responsible for tickets.
	RoleTeacher Role = "TEACHER"
	// RoleCoordinator users classify, prioritize and assign.
	RoleCoordinator Role = "COORDINATOR"
)

// UserRef is a lightweight reference (id + display name) embedded in tickets
// and audit entries. Immutable once attached to a ticket.
type UserRef struct {
	ID          string
	DisplayName string
}

// TicketRef is a back-reference kept on the requester's own ticket list.
type TicketRef struct {
	TicketID string
	Label    string
}

// UserSummary is the directory view of a user the core reads. The core owns
// only the active flag and the ticket back-reference list; user lifecycle
// belongs to the directory.
type UserSummary struct {
	ID          string
	DisplayName string
	Role        Role
	Active      bool
	Tickets     []TicketRef
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Ref returns the embeddable reference for this user.
func (u UserSummary) Ref() UserRef {
	return UserRef{ID: u.ID, DisplayName: u.DisplayName}
}

// AddTicketRef appends a back-reference to a ticket this user registered.
func (u *UserSummary) AddTicketRef(ref TicketRef) {
	u.Tickets = append(u.Tickets, ref)
}

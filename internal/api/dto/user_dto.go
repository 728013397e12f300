package dto

import (
	"time"
)

// CreateUserRequest payload.
type CreateUserRequest struct {
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
}

// TicketRefResponse is a back-reference on the user's ticket list.
type TicketRefResponse struct {
	TicketID string `json:"ticket_id"`
	Label    string `json:"label"`
}

// UserResponse provides the directory view of a user.
type UserResponse struct {
	ID          string              `json:"id"`
	DisplayName string              `json:"display_name"`
	Role        string              `json:"role"`
	Active      bool                `json:"active"`
	Tickets     []TicketRefResponse `json:"tickets"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// IdentityTokenResponse carries an issued identity token.
type IdentityTokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

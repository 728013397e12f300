package repository

import (
	"context"
	"sync"

	"github.com/campus-desk/pqrs-service/internal/domain"
	apperrors "github.com/campus-desk/pqrs-service/pkg/util"
)

// MemoryTicketRepository keeps tickets in process memory. It backs local runs
// without a Postgres DSN and the test suites. The single mutex makes every
// read-validate-write race-free inside one process.
type MemoryTicketRepository struct {
	mu      sync.RWMutex
	tickets map[string]domain.Ticket
	order   []string
}

// NewMemoryTicketRepository builds an empty in-memory store.
func NewMemoryTicketRepository() *MemoryTicketRepository {
	return &MemoryTicketRepository{tickets: make(map[string]domain.Ticket)}
}

func (r *MemoryTicketRepository) Save(_ context.Context, ticket domain.Ticket) (domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tickets[ticket.ID]; !exists {
		r.order = append(r.order, ticket.ID)
	}
	r.tickets[ticket.ID] = ticket
	return ticket, nil
}

func (r *MemoryTicketRepository) GetByID(_ context.Context, id string) (domain.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ticket, ok := r.tickets[id]
	if !ok {
		return domain.Ticket{}, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": id})
	}
	return ticket, nil
}

func (r *MemoryTicketRepository) List(_ context.Context) ([]domain.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]domain.Ticket, 0, len(r.order))
	for _, id := range r.order {
		result = append(result, r.tickets[id])
	}
	return result, nil
}

func (r *MemoryTicketRepository) ListByRequester(_ context.Context, requesterID string) ([]domain.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.Ticket
	for _, id := range r.order {
		if ticket := r.tickets[id]; ticket.Requester.ID == requesterID {
			result = append(result, ticket)
		}
	}
	return result, nil
}

func (r *MemoryTicketRepository) CountPendingByRequester(_ context.Context, requesterID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	count := 0
	for _, ticket := range r.tickets {
		if ticket.Requester.ID == requesterID && ticket.Pending() {
			count++
		}
	}
	return count, nil
}

func (r *MemoryTicketRepository) CountInProgressByAssignee(_ context.Context, assigneeID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	count := 0
	for _, ticket := range r.tickets {
		if ticket.Assignee != nil && ticket.Assignee.ID == assigneeID && ticket.Status == domain.TicketStatusInProgress {
			count++
		}
	}
	return count, nil
}

// MemoryUserRepository is the in-memory user directory counterpart.
type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[string]domain.UserSummary
	order []string
}

// NewMemoryUserRepository builds an empty in-memory directory.
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: make(map[string]domain.UserSummary)}
}

func (r *MemoryUserRepository) Create(_ context.Context, user *domain.UserSummary) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.users[user.ID]; exists {
		return apperrors.NewConflict("user already exists", map[string]any{"user_id": user.ID})
	}
	r.users[user.ID] = cloneUser(*user)
	r.order = append(r.order, user.ID)
	return nil
}

func (r *MemoryUserRepository) Save(_ context.Context, user *domain.UserSummary) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.users[user.ID]; !exists {
		return apperrors.NewNotFound("user", map[string]any{"user_id": user.ID})
	}
	r.users[user.ID] = cloneUser(*user)
	return nil
}

func (r *MemoryUserRepository) GetByID(_ context.Context, id string) (*domain.UserSummary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[id]
	if !ok {
		return nil, apperrors.NewNotFound("user", map[string]any{"user_id": id})
	}
	clone := cloneUser(user)
	return &clone, nil
}

func (r *MemoryUserRepository) List(_ context.Context) ([]domain.UserSummary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]domain.UserSummary, 0, len(r.order))
	for _, id := range r.order {
		result = append(result, cloneUser(r.users[id]))
	}
	return result, nil
}

func cloneUser(user domain.UserSummary) domain.UserSummary {
	refs := make([]domain.TicketRef, len(user.Tickets))
	copy(refs, user.Tickets)
	user.Tickets = refs
	return user
}

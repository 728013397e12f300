package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campus-desk/pqrs-service/internal/domain"
	"github.com/campus-desk/pqrs-service/internal/events"
	"github.com/campus-desk/pqrs-service/internal/repository"
)

// TicketService is the orchestrator: it loads the ticket and the referenced
// users, consults the workflow rules where applicable, invokes the aggregate
// transition and persists only on success. Transitions on the same ticket are
// serialized through a keyed mutex; creation is serialized per requester and
// assignment per assignee so neither cap check can race in-process.
type TicketService struct {
	tickets    repository.TicketRepository
	users      repository.UserRepository
	rules      WorkflowRules
	dispatcher events.Dispatcher
	logger     *zap.Logger

	locks keyedMutex
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo repository.TicketRepository
	UserRepo   repository.UserRepository
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TicketService{
		tickets:    deps.TicketRepo,
		users:      deps.UserRepo,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// Create registers a ticket for a requester and records a back-reference on
// the requester's own ticket list.
func (s *TicketService) Create(ctx context.Context, requesterID, requesterName string, channel domain.Channel, description string) (domain.Ticket, error) {
	unlock := s.locks.lock("requester:" + requesterID)
	defer unlock()

	requester, err := s.users.GetByID(ctx, requesterID)
	if err != nil {
		return domain.Ticket{}, err
	}

	pending, err := s.tickets.CountPendingByRequester(ctx, requesterID)
	if err != nil {
		return domain.Ticket{}, err
	}
	if err := s.rules.ValidateCreate(requester, pending); err != nil {
		return domain.Ticket{}, err
	}

	requesterRef := domain.UserRef{ID: requesterID, DisplayName: requesterName}
	ticket, err := domain.NewTicket(requesterRef, channel, description)
	if err != nil {
		return domain.Ticket{}, err
	}

	saved, err := s.tickets.Save(ctx, ticket)
	if err != nil {
		return domain.Ticket{}, err
	}

	requester.AddTicketRef(domain.TicketRef{
		TicketID: saved.ID,
		Label:    "Ticket #" + shortID(saved.ID),
	})
	// The ticket is already persisted; a failed back-reference write must not
	// make the caller believe creation failed.
	if err := s.users.Save(ctx, requester); err != nil {
		s.logger.Warn("record ticket back-reference",
			zap.String("ticket_id", saved.ID),
			zap.String("requester_id", requesterID),
			zap.Error(err))
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketRegistered,
		TicketID: saved.ID,
		Actor:    requesterRef,
		Payload: events.TicketRegisteredPayload{
			RequesterID: requesterID,
			Channel:     saved.Channel,
		},
	})
	return saved, nil
}

// Classify sets the ticket category on behalf of a coordinator.
func (s *TicketService) Classify(ctx context.Context, ticketID string, category domain.TicketCategory, coordinatorID string) (domain.Ticket, error) {
	actor, err := s.userRef(ctx, coordinatorID)
	if err != nil {
		return domain.Ticket{}, err
	}
	return s.transition(ctx, ticketID, func(t domain.Ticket) (domain.Ticket, error) {
		return t.Classify(category, actor)
	}, events.EventTicketClassified, actor, func(t domain.Ticket) any {
		return events.TicketClassifiedPayload{Category: t.Category}
	})
}

// Prioritize records priority and justification while the ticket is CLASSIFIED.
func (s *TicketService) Prioritize(ctx context.Context, ticketID string, priority domain.TicketPriority, justification, coordinatorID string) (domain.Ticket, error) {
	actor, err := s.userRef(ctx, coordinatorID)
	if err != nil {
		return domain.Ticket{}, err
	}
	return s.transition(ctx, ticketID, func(t domain.Ticket) (domain.Ticket, error) {
		return t.Prioritize(priority, justification, actor)
	}, events.EventTicketPrioritized, actor, func(t domain.Ticket) any {
		return events.TicketPrioritizedPayload{Priority: t.Priority, Justification: t.PriorityJustification}
	})
}

// Assign hands the ticket to a responsible teacher after the eligibility
// check. The count and the transition run under a per-assignee lock so two
// concurrent assignments cannot both pass the in-progress cap.
func (s *TicketService) Assign(ctx context.Context, ticketID, assigneeID, coordinatorID string) (domain.Ticket, error) {
	unlock := s.locks.lock("assignee:" + assigneeID)
	defer unlock()

	assignee, err := s.users.GetByID(ctx, assigneeID)
	if err != nil {
		return domain.Ticket{}, err
	}
	actor, err := s.userRef(ctx, coordinatorID)
	if err != nil {
		return domain.Ticket{}, err
	}

	inProgress, err := s.tickets.CountInProgressByAssignee(ctx, assigneeID)
	if err != nil {
		return domain.Ticket{}, err
	}
	if err := s.rules.ValidateAssignment(assignee, inProgress); err != nil {
		return domain.Ticket{}, err
	}

	return s.transition(ctx, ticketID, func(t domain.Ticket) (domain.Ticket, error) {
		return t.Assign(*assignee, actor)
	}, events.EventTicketAssigned, actor, func(t domain.Ticket) any {
		return events.TicketAssignedPayload{AssigneeID: assignee.ID, AssigneeName: assignee.DisplayName}
	})
}

// Resolve marks the ticket handled; only the current assignee may do so.
func (s *TicketService) Resolve(ctx context.Context, ticketID, actorID, note string) (domain.Ticket, error) {
	actor, err := s.userRef(ctx, actorID)
	if err != nil {
		return domain.Ticket{}, err
	}
	return s.transition(ctx, ticketID, func(t domain.Ticket) (domain.Ticket, error) {
		return t.Resolve(actor, note)
	}, events.EventTicketResolved, actor, func(t domain.Ticket) any {
		return events.TicketStatusPayload{Status: t.Status, Note: note}
	})
}

// Close terminates the ticket with a mandatory closing note.
func (s *TicketService) Close(ctx context.Context, ticketID, actorID, note string) (domain.Ticket, error) {
	actor, err := s.userRef(ctx, actorID)
	if err != nil {
		return domain.Ticket{}, err
	}
	return s.transition(ctx, ticketID, func(t domain.Ticket) (domain.Ticket, error) {
		return t.Close(actor, note)
	}, events.EventTicketClosed, actor, func(t domain.Ticket) any {
		return events.TicketStatusPayload{Status: t.Status, Note: note}
	})
}

// Get fetches a ticket by id.
func (s *TicketService) Get(ctx context.Context, ticketID string) (domain.Ticket, error) {
	return s.tickets.GetByID(ctx, ticketID)
}

// ListAll returns every ticket.
func (s *TicketService) ListAll(ctx context.Context) ([]domain.Ticket, error) {
	return s.tickets.List(ctx)
}

// ListByRequester returns the tickets a requester registered.
func (s *TicketService) ListByRequester(ctx context.Context, requesterID string) ([]domain.Ticket, error) {
	if _, err := s.users.GetByID(ctx, requesterID); err != nil {
		return nil, err
	}
	return s.tickets.ListByRequester(ctx, requesterID)
}

// transition is the shared load -> mutate -> persist sequence for every
// aggregate operation. Persist happens only when the transition succeeded.
func (s *TicketService) transition(ctx context.Context, ticketID string, apply func(domain.Ticket) (domain.Ticket, error), eventType events.EventType, actor domain.UserRef, payload func(domain.Ticket) any) (domain.Ticket, error) {
	unlock := s.locks.lock("ticket:" + ticketID)
	defer unlock()

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return domain.Ticket{}, err
	}
	updated, err := apply(ticket)
	if err != nil {
		return domain.Ticket{}, err
	}
	saved, err := s.tickets.Save(ctx, updated)
	if err != nil {
		return domain.Ticket{}, err
	}
	s.publishEvent(ctx, events.Event{
		Type:     eventType,
		TicketID: saved.ID,
		Actor:    actor,
		Payload:  payload(saved),
	})
	return saved, nil
}

func (s *TicketService) userRef(ctx context.Context, userID string) (domain.UserRef, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return domain.UserRef{}, err
	}
	return user.Ref(), nil
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

// keyedMutex provides one mutex per key. Entries are not reclaimed; the key
// space (ticket, requester and assignee ids) is bounded by the working set.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*sync.Mutex)
	}
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()

	m.Lock()
	return m.Unlock
}

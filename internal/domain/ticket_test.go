package domain_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campus-desk/pqrs-service/internal/domain"
	apperrors "github.com/campus-desk/pqrs-service/pkg/util"
)

var (
	student     = domain.UserRef{ID: "student-1", DisplayName: "Ana Gomez"}
	coordinator = domain.UserRef{ID: "coord-1", DisplayName: "Luis Rojas"}
	teacher     = domain.UserSummary{ID: "teacher-1", DisplayName: "Marta Diaz", Role: domain.RoleTeacher, Active: true}
)

func newRegisteredTicket(t *testing.T) domain.Ticket {
	t.Helper()
	ticket, err := domain.NewTicket(student, domain.ChannelWeb, "Projector broken in room 204")
	require.NoError(t, err)
	return ticket
}

func TestNewTicket(t *testing.T) {
	ticket := newRegisteredTicket(t)

	assert.NotEmpty(t, ticket.ID)
	assert.Equal(t, domain.TicketStatusRegistered, ticket.Status)
	assert.Equal(t, student, ticket.Requester)
	assert.False(t, ticket.RegisteredAt.IsZero())
	assert.Nil(t, ticket.Assignee)
	require.Len(t, ticket.History, 1)
	assert.Equal(t, "REGISTER_TICKET", ticket.History[0].Action)
	assert.Equal(t, student, ticket.History[0].Actor)
}

func TestNewTicketDescriptionValidation(t *testing.T) {
	tests := []struct {
		name        string
		description string
	}{
		{"blank", "   "},
		{"too short", "too short"},
		{"too long", strings.Repeat("x", 1001)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := domain.NewTicket(student, domain.ChannelWeb, tc.description)
			require.Error(t, err)
			de := apperrors.ToDomainError(err)
			assert.Equal(t, "VALIDATION_FAILED", de.Code)
		})
	}
}

func TestClassify(t *testing.T) {
	ticket := newRegisteredTicket(t)

	classified, err := ticket.Classify(domain.CategoryRequest, coordinator)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusClassified, classified.Status)
	assert.Equal(t, domain.CategoryRequest, classified.Category)
	assert.Len(t, classified.History, 2)

	// original value untouched
	assert.Equal(t, domain.TicketStatusRegistered, ticket.Status)
	assert.Len(t, ticket.History, 1)

	_, err = classified.Classify(domain.CategoryComplaint, coordinator)
	require.Error(t, err)
	assert.True(t, apperrors.IsBusinessRuleViolation(err))
	assert.Contains(t, err.Error(), "REGISTERED")
}

func TestClassifyRequiresCategory(t *testing.T) {
	ticket := newRegisteredTicket(t)
	_, err := ticket.Classify("", coordinator)
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)
}

func TestPrioritizeKeepsStatus(t *testing.T) {
	ticket := newRegisteredTicket(t)
	classified, err := ticket.Classify(domain.CategoryRequest, coordinator)
	require.NoError(t, err)

	prioritized, err := classified.Prioritize(domain.TicketPriorityHigh, "Blocks scheduled class", coordinator)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusClassified, prioritized.Status)
	assert.Equal(t, domain.TicketPriorityHigh, prioritized.Priority)
	assert.Equal(t, "Blocks scheduled class", prioritized.PriorityJustification)
	assert.Len(t, prioritized.History, 3)
}

func TestPrioritizeGuards(t *testing.T) {
	ticket := newRegisteredTicket(t)

	_, err := ticket.Prioritize(domain.TicketPriorityHigh, "Blocks scheduled class", coordinator)
	require.Error(t, err)
	assert.True(t, apperrors.IsBusinessRuleViolation(err))

	classified, err := ticket.Classify(domain.CategoryRequest, coordinator)
	require.NoError(t, err)

	_, err = classified.Prioritize(domain.TicketPriorityHigh, "short", coordinator)
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)

	_, err = classified.Prioritize("", "Blocks scheduled class", coordinator)
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)
}

func TestAssign(t *testing.T) {
	ticket := newRegisteredTicket(t)
	classified, err := ticket.Classify(domain.CategoryRequest, coordinator)
	require.NoError(t, err)

	assigned, err := classified.Assign(teacher, coordinator)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusInProgress, assigned.Status)
	require.NotNil(t, assigned.Assignee)
	assert.Equal(t, teacher.ID, assigned.Assignee.ID)
	assert.Len(t, assigned.History, 4)
}

func TestAssignInactiveFails(t *testing.T) {
	ticket := newRegisteredTicket(t)
	classified, err := ticket.Classify(domain.CategoryRequest, coordinator)
	require.NoError(t, err)

	inactive := teacher
	inactive.Active = false
	_, err = classified.Assign(inactive, coordinator)
	require.Error(t, err)
	assert.True(t, apperrors.IsBusinessRuleViolation(err))
}

func TestAssignBeforeClassifyFails(t *testing.T) {
	ticket := newRegisteredTicket(t)
	_, err := ticket.Assign(teacher, coordinator)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CLASSIFIED")
}

func TestResolveOnlyByAssignee(t *testing.T) {
	assigned := inProgressTicket(t)

	// a different teacher cannot resolve
	other := domain.UserRef{ID: "teacher-2", DisplayName: "Other Teacher"}
	_, err := assigned.Resolve(other, "Replaced bulb")
	require.Error(t, err)
	assert.True(t, apperrors.IsBusinessRuleViolation(err))

	resolved, err := assigned.Resolve(teacher.Ref(), "Replaced bulb")
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusResolved, resolved.Status)
	assert.Len(t, resolved.History, 5)
}

func TestResolveWrongState(t *testing.T) {
	ticket := newRegisteredTicket(t)
	_, err := ticket.Resolve(teacher.Ref(), "done early")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "IN_PROGRESS")
}

func TestCloseRequiresNote(t *testing.T) {
	resolved := resolvedTicket(t)

	_, err := resolved.Close(teacher.Ref(), "  ")
	require.Error(t, err)
	assert.True(t, apperrors.IsBusinessRuleViolation(err))

	closed, err := resolved.Close(teacher.Ref(), "Confirmed fixed")
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusClosed, closed.Status)
	assert.Len(t, closed.History, 6)
}

func TestCloseWrongState(t *testing.T) {
	assigned := inProgressTicket(t)
	_, err := assigned.Close(teacher.Ref(), "Confirmed fixed")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RESOLVED")
}

func TestClosedTicketIsImmutable(t *testing.T) {
	resolved := resolvedTicket(t)
	closed, err := resolved.Close(teacher.Ref(), "Confirmed fixed")
	require.NoError(t, err)

	_, err = closed.Classify(domain.CategoryClaim, coordinator)
	assert.True(t, apperrors.IsBusinessRuleViolation(err))
	_, err = closed.Prioritize(domain.TicketPriorityLow, "late justification", coordinator)
	assert.True(t, apperrors.IsBusinessRuleViolation(err))
	_, err = closed.Assign(teacher, coordinator)
	assert.True(t, apperrors.IsBusinessRuleViolation(err))
	_, err = closed.Resolve(teacher.Ref(), "again")
	assert.True(t, apperrors.IsBusinessRuleViolation(err))
	_, err = closed.Close(teacher.Ref(), "again")
	assert.True(t, apperrors.IsBusinessRuleViolation(err))

	assert.Len(t, closed.History, 6)
}

func TestLifecycleWalkthrough(t *testing.T) {
	ticket, err := domain.NewTicket(student, domain.ChannelWeb, "Projector broken in room 204")
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusRegistered, ticket.Status)
	assert.Len(t, ticket.History, 1)

	ticket, err = ticket.Classify(domain.CategoryRequest, coordinator)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusClassified, ticket.Status)
	assert.Len(t, ticket.History, 2)

	ticket, err = ticket.Prioritize(domain.TicketPriorityHigh, "Blocks scheduled class", coordinator)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusClassified, ticket.Status)
	assert.Len(t, ticket.History, 3)

	ticket, err = ticket.Assign(teacher, coordinator)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusInProgress, ticket.Status)
	assert.Len(t, ticket.History, 4)

	ticket, err = ticket.Resolve(teacher.Ref(), "Replaced bulb")
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusResolved, ticket.Status)
	assert.Len(t, ticket.History, 5)

	ticket, err = ticket.Close(teacher.Ref(), "Confirmed fixed")
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusClosed, ticket.Status)
	assert.Len(t, ticket.History, 6)
}

func TestPending(t *testing.T) {
	assigned := inProgressTicket(t)
	assert.True(t, assigned.Pending())

	resolved, err := assigned.Resolve(teacher.Ref(), "Replaced bulb")
	require.NoError(t, err)
	assert.False(t, resolved.Pending())
}

func TestParsers(t *testing.T) {
	channel, err := domain.ParseChannel("web")
	require.NoError(t, err)
	assert.Equal(t, domain.ChannelWeb, channel)
	_, err = domain.ParseChannel("carrier-pigeon")
	assert.Error(t, err)

	category, err := domain.ParseCategory(" request ")
	require.NoError(t, err)
	assert.Equal(t, domain.CategoryRequest, category)
	_, err = domain.ParseCategory("other")
	assert.Error(t, err)

	priority, err := domain.ParsePriority("HIGH")
	require.NoError(t, err)
	assert.Equal(t, domain.TicketPriorityHigh, priority)
	_, err = domain.ParsePriority("URGENT")
	assert.Error(t, err)
}

func inProgressTicket(t *testing.T) domain.Ticket {
	t.Helper()
	ticket := newRegisteredTicket(t)
	classified, err := ticket.Classify(domain.CategoryRequest, coordinator)
	require.NoError(t, err)
	assigned, err := classified.Assign(teacher, coordinator)
	require.NoError(t, err)
	return assigned
}

func resolvedTicket(t *testing.T) domain.Ticket {
	t.Helper()
	assigned := inProgressTicket(t)
	resolved, err := assigned.Resolve(teacher.Ref(), "Replaced bulb")
	require.NoError(t, err)
	return resolved
}

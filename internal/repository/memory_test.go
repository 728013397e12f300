package repository_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campus-desk/pqrs-service/internal/domain"
	"github.com/campus-desk/pqrs-service/internal/repository"
	apperrors "github.com/campus-desk/pqrs-service/pkg/util"
)

var (
	requester = domain.UserRef{ID: "student-1", DisplayName: "Ana Gomez"}
	assigner  = domain.UserRef{ID: "coord-1", DisplayName: "Luis Rojas"}
	handler   = domain.UserSummary{ID: "teacher-1", DisplayName: "Marta Diaz", Role: domain.RoleTeacher, Active: true}
)

func storeTicket(t *testing.T, repo *repository.MemoryTicketRepository, from domain.UserRef) domain.Ticket {
	t.Helper()
	ticket, err := domain.NewTicket(from, domain.ChannelWeb, "Projector broken in room 204")
	require.NoError(t, err)
	saved, err := repo.Save(context.Background(), ticket)
	require.NoError(t, err)
	return saved
}

func TestTicketSaveAndGet(t *testing.T) {
	repo := repository.NewMemoryTicketRepository()
	saved := storeTicket(t, repo, requester)

	got, err := repo.GetByID(context.Background(), saved.ID)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, got.ID)
	assert.Equal(t, domain.TicketStatusRegistered, got.Status)

	_, err = repo.GetByID(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestTicketSaveIsUpsert(t *testing.T) {
	repo := repository.NewMemoryTicketRepository()
	saved := storeTicket(t, repo, requester)

	classified, err := saved.Classify(domain.CategoryRequest, assigner)
	require.NoError(t, err)
	_, err = repo.Save(context.Background(), classified)
	require.NoError(t, err)

	all, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, domain.TicketStatusClassified, all[0].Status)
	assert.Len(t, all[0].History, 2)
}

func TestListByRequesterPreservesOrder(t *testing.T) {
	repo := repository.NewMemoryTicketRepository()
	other := domain.UserRef{ID: "student-2", DisplayName: "Bea Lopez"}

	first := storeTicket(t, repo, requester)
	storeTicket(t, repo, other)
	second := storeTicket(t, repo, requester)

	mine, err := repo.ListByRequester(context.Background(), requester.ID)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, first.ID, mine[0].ID)
	assert.Equal(t, second.ID, mine[1].ID)

	none, err := repo.ListByRequester(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestCountPendingByRequester(t *testing.T) {
	repo := repository.NewMemoryTicketRepository()
	ctx := context.Background()

	registered := storeTicket(t, repo, requester)
	storeTicket(t, repo, requester)

	count, err := repo.CountPendingByRequester(ctx, requester.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	// walk one ticket to CLOSED; it must stop counting
	ticket, err := registered.Classify(domain.CategoryRequest, assigner)
	require.NoError(t, err)
	ticket, err = ticket.Assign(handler, assigner)
	require.NoError(t, err)

	// IN_PROGRESS still counts as pending
	_, err = repo.Save(ctx, ticket)
	require.NoError(t, err)
	count, err = repo.CountPendingByRequester(ctx, requester.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	ticket, err = ticket.Resolve(handler.Ref(), "Replaced bulb")
	require.NoError(t, err)
	_, err = repo.Save(ctx, ticket)
	require.NoError(t, err)

	count, err = repo.CountPendingByRequester(ctx, requester.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestCountInProgressByAssignee(t *testing.T) {
	repo := repository.NewMemoryTicketRepository()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		saved := storeTicket(t, repo, requester)
		ticket, err := saved.Classify(domain.CategoryRequest, assigner)
		require.NoError(t, err)
		ticket, err = ticket.Assign(handler, assigner)
		require.NoError(t, err)
		if i == 0 {
			ticket, err = ticket.Resolve(handler.Ref(), "Replaced bulb")
			require.NoError(t, err)
		}
		_, err = repo.Save(ctx, ticket)
		require.NoError(t, err)
	}

	count, err := repo.CountInProgressByAssignee(ctx, handler.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	count, err = repo.CountInProgressByAssignee(ctx, "someone-else")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestUserCreateConflict(t *testing.T) {
	repo := repository.NewMemoryUserRepository()
	ctx := context.Background()

	user := handler
	require.NoError(t, repo.Create(ctx, &user))

	err := repo.Create(ctx, &user)
	require.Error(t, err)
	assert.Equal(t, "CONFLICT", apperrors.ToDomainError(err).Code)
}

func TestUserSaveRequiresExisting(t *testing.T) {
	repo := repository.NewMemoryUserRepository()
	ctx := context.Background()

	ghost := domain.UserSummary{ID: "ghost", DisplayName: "Nobody", Role: domain.RoleStudent, Active: true}
	err := repo.Save(ctx, &ghost)
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestUserClonesIsolateCallers(t *testing.T) {
	repo := repository.NewMemoryUserRepository()
	ctx := context.Background()

	user := handler
	require.NoError(t, repo.Create(ctx, &user))

	loaded, err := repo.GetByID(ctx, handler.ID)
	require.NoError(t, err)
	loaded.AddTicketRef(domain.TicketRef{TicketID: "t-1", Label: "Ticket #t-1"})

	// mutating the returned copy must not leak into the store
	fresh, err := repo.GetByID(ctx, handler.ID)
	require.NoError(t, err)
	assert.Empty(t, fresh.Tickets)

	loadedAgain, err := repo.GetByID(ctx, handler.ID)
	require.NoError(t, err)
	loadedAgain.AddTicketRef(domain.TicketRef{TicketID: "t-1", Label: "Ticket #t-1"})
	require.NoError(t, repo.Save(ctx, loadedAgain))

	persisted, err := repo.GetByID(ctx, handler.ID)
	require.NoError(t, err)
	require.Len(t, persisted.Tickets, 1)
	assert.Equal(t, "t-1", persisted.Tickets[0].TicketID)
}

func TestUserListOrder(t *testing.T) {
	repo := repository.NewMemoryUserRepository()
	ctx := context.Background()

	first := domain.UserSummary{ID: "a", DisplayName: "First", Role: domain.RoleStudent, Active: true}
	second := domain.UserSummary{ID: "b", DisplayName: "Second", Role: domain.RoleTeacher, Active: true}
	require.NoError(t, repo.Create(ctx, &first))
	require.NoError(t, repo.Create(ctx, &second))

	users, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "a", users[0].ID)
	assert.Equal(t, "b", users[1].ID)
}

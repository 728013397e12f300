package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campus-desk/pqrs-service/internal/domain"
	apperrors "github.com/campus-desk/pqrs-service/pkg/util"
)

// TicketRepository encapsulates ticket persistence. Counting queries back the
// workflow caps so the rules engine never has to load the full collection.
type TicketRepository interface {
	Save(ctx context.Context, ticket domain.Ticket) (domain.Ticket, error)
	GetByID(ctx context.Context, id string) (domain.Ticket, error)
	List(ctx context.Context) ([]domain.Ticket, error)
	ListByRequester(ctx context.Context, requesterID string) ([]domain.Ticket, error)
	CountPendingByRequester(ctx context.Context, requesterID string) (int, error)
	CountInProgressByAssignee(ctx context.Context, assigneeID string) (int, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates a Postgres-backed repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

func (r *ticketRepository) Save(ctx context.Context, ticket domain.Ticket) (domain.Ticket, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return domain.Ticket{}, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const upsert = `
        INSERT INTO tickets (id, requester_id, requester_name, channel, registered_at, category,
                             description, priority, priority_justification, status, assignee_id, assignee_name)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
        ON CONFLICT (id) DO UPDATE SET
            category=EXCLUDED.category,
            description=EXCLUDED.description,
            priority=EXCLUDED.priority,
            priority_justification=EXCLUDED.priority_justification,
            status=EXCLUDED.status,
            assignee_id=EXCLUDED.assignee_id,
            assignee_name=EXCLUDED.assignee_name,
            updated_at=NOW()`

	var assigneeID, assigneeName *string
	if ticket.Assignee != nil {
		assigneeID = &ticket.Assignee.ID
		assigneeName = &ticket.Assignee.DisplayName
	}
	if _, err := tx.Exec(ctx, upsert,
		ticket.ID,
		ticket.Requester.ID,
		ticket.Requester.DisplayName,
		ticket.Channel,
		ticket.RegisteredAt,
		nullable(string(ticket.Category)),
		ticket.Description,
		nullable(string(ticket.Priority)),
		nullable(ticket.PriorityJustification),
		ticket.Status,
		assigneeID,
		assigneeName,
	); err != nil {
		return domain.Ticket{}, err
	}

	const insertAudit = `
        INSERT INTO ticket_audit (id, ticket_id, occurred_at, action, actor_id, actor_name, note)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        ON CONFLICT (id) DO NOTHING`
	for _, entry := range ticket.History {
		if _, err := tx.Exec(ctx, insertAudit,
			entry.ID,
			ticket.ID,
			entry.Timestamp,
			entry.Action,
			entry.Actor.ID,
			entry.Actor.DisplayName,
			entry.Note,
		); err != nil {
			return domain.Ticket{}, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Ticket{}, err
	}
	return ticket, nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (domain.Ticket, error) {
	const query = `
        SELECT id, requester_id, requester_name, channel, registered_at, category,
               description, priority, priority_justification, status, assignee_id, assignee_name
        FROM tickets WHERE id=$1`
	ticket, err := scanTicket(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Ticket{}, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": id})
		}
		return domain.Ticket{}, err
	}
	ticket.History, err = r.loadHistory(ctx, ticket.ID)
	if err != nil {
		return domain.Ticket{}, err
	}
	return ticket, nil
}

func (r *ticketRepository) List(ctx context.Context) ([]domain.Ticket, error) {
	const query = `
        SELECT id, requester_id, requester_name, channel, registered_at, category,
               description, priority, priority_justification, status, assignee_id, assignee_name
        FROM tickets ORDER BY registered_at ASC`
	return r.queryTickets(ctx, query)
}

func (r *ticketRepository) ListByRequester(ctx context.Context, requesterID string) ([]domain.Ticket, error) {
	const query = `
        SELECT id, requester_id, requester_name, channel, registered_at, category,
               description, priority, priority_justification, status, assignee_id, assignee_name
        FROM tickets WHERE requester_id=$1 ORDER BY registered_at ASC`
	return r.queryTickets(ctx, query, requesterID)
}

func (r *ticketRepository) CountPendingByRequester(ctx context.Context, requesterID string) (int, error) {
	const query = `
        SELECT COUNT(*) FROM tickets
        WHERE requester_id=$1 AND status IN ('REGISTERED','CLASSIFIED','IN_PROGRESS')`
	var count int
	err := r.pool.QueryRow(ctx, query, requesterID).Scan(&count)
	return count, err
}

func (r *ticketRepository) CountInProgressByAssignee(ctx context.Context, assigneeID string) (int, error) {
	const query = `
        SELECT COUNT(*) FROM tickets
        WHERE assignee_id=$1 AND status='IN_PROGRESS'`
	var count int
	err := r.pool.QueryRow(ctx, query, assigneeID).Scan(&count)
	return count, err
}

func (r *ticketRepository) queryTickets(ctx context.Context, query string, args ...any) ([]domain.Ticket, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range result {
		history, err := r.loadHistory(ctx, result[i].ID)
		if err != nil {
			return nil, err
		}
		result[i].History = history
	}
	return result, nil
}

func (r *ticketRepository) loadHistory(ctx context.Context, ticketID string) ([]domain.AuditEntry, error) {
	// seq is assigned in insertion order, so entries come back exactly as the
	// aggregate appended them even when timestamps collide.
	const query = `
        SELECT id, occurred_at, action, actor_id, actor_name, note
        FROM ticket_audit WHERE ticket_id=$1 ORDER BY seq ASC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.AuditEntry
	for rows.Next() {
		var entry domain.AuditEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.Timestamp,
			&entry.Action,
			&entry.Actor.ID,
			&entry.Actor.DisplayName,
			&entry.Note,
		); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func scanTicket(row pgx.Row) (domain.Ticket, error) {
	var (
		ticket        domain.Ticket
		category      *string
		priority      *string
		justification *string
		assigneeID    *string
		assigneeName  *string
	)
	if err := row.Scan(
		&ticket.ID,
		&ticket.Requester.ID,
		&ticket.Requester.DisplayName,
		&ticket.Channel,
		&ticket.RegisteredAt,
		&category,
		&ticket.Description,
		&priority,
		&justification,
		&ticket.Status,
		&assigneeID,
		&assigneeName,
	); err != nil {
		return domain.Ticket{}, err
	}
	if category != nil {
		ticket.Category = domain.TicketCategory(*category)
	}
	if priority != nil {
		ticket.Priority = domain.TicketPriority(*priority)
	}
	if justification != nil {
		ticket.PriorityJustification = *justification
	}
	if assigneeID != nil {
		ticket.Assignee = &domain.UserRef{ID: *assigneeID}
		if assigneeName != nil {
			ticket.Assignee.DisplayName = *assigneeName
		}
	}
	return ticket, nil
}

func nullable(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

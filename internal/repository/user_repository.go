package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campus-desk/pqrs-service/internal/domain"
	apperrors "github.com/campus-desk/pqrs-service/pkg/util"
)

// UserRepository is the user directory the core collaborates with. The core
// reads identity, role and the active flag; Save is used for the active flag
// and for appending ticket back-references.
type UserRepository interface {
	Create(ctx context.Context, user *domain.UserSummary) error
	Save(ctx context.Context, user *domain.UserSummary) error
	GetByID(ctx context.Context, id string) (*domain.UserSummary, error)
	List(ctx context.Context) ([]domain.UserSummary, error)
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

func (r *userRepository) Create(ctx context.Context, user *domain.UserSummary) error {
	const query = `
        INSERT INTO users (id, display_name, role, active)
        VALUES ($1,$2,$3,$4)
        RETURNING created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		user.ID,
		user.DisplayName,
		user.Role,
		user.Active,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
}

func (r *userRepository) Save(ctx context.Context, user *domain.UserSummary) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const update = `
        UPDATE users SET display_name=$1, role=$2, active=$3, updated_at=NOW()
        WHERE id=$4`
	cmd, err := tx.Exec(ctx, update, user.DisplayName, user.Role, user.Active, user.ID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return apperrors.NewNotFound("user", map[string]any{"user_id": user.ID})
	}

	const insertRef = `
        INSERT INTO user_ticket_refs (user_id, ticket_id, label)
        VALUES ($1,$2,$3)
        ON CONFLICT (user_id, ticket_id) DO NOTHING`
	for _, ref := range user.Tickets {
		if _, err := tx.Exec(ctx, insertRef, user.ID, ref.TicketID, ref.Label); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.UserSummary, error) {
	const query = `
        SELECT id, display_name, role, active, created_at, updated_at
        FROM users WHERE id=$1`
	var user domain.UserSummary
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&user.ID,
		&user.DisplayName,
		&user.Role,
		&user.Active,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"user_id": id})
		}
		return nil, err
	}
	refs, err := r.loadTicketRefs(ctx, id)
	if err != nil {
		return nil, err
	}
	user.Tickets = refs
	return &user, nil
}

func (r *userRepository) List(ctx context.Context) ([]domain.UserSummary, error) {
	const query = `
        SELECT id, display_name, role, active, created_at, updated_at
        FROM users ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.UserSummary
	for rows.Next() {
		var user domain.UserSummary
		if err := rows.Scan(
			&user.ID,
			&user.DisplayName,
			&user.Role,
			&user.Active,
			&user.CreatedAt,
			&user.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, user)
	}
	return result, rows.Err()
}

func (r *userRepository) loadTicketRefs(ctx context.Context, userID string) ([]domain.TicketRef, error) {
	const query = `
        SELECT ticket_id, label FROM user_ticket_refs
        WHERE user_id=$1 ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var refs []domain.TicketRef
	for rows.Next() {
		var ref domain.TicketRef
		if err := rows.Scan(&ref.TicketID, &ref.Label); err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

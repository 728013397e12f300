package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/campus-desk/pqrs-service/internal/domain"
	"github.com/campus-desk/pqrs-service/internal/repository"
	apperrors "github.com/campus-desk/pqrs-service/pkg/util"
)

// UserService manages the user directory: creation, lookup and the active
// flag. Users are created active.
type UserService struct {
	users repository.UserRepository
}

// NewUserService constructs the service.
func NewUserService(users repository.UserRepository) *UserService {
	return &UserService{users: users}
}

// Create registers a new active user.
func (s *UserService) Create(ctx context.Context, displayName string, role domain.Role) (*domain.UserSummary, error) {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return nil, apperrors.NewValidationError("display name is required", nil)
	}
	switch role {
	case domain.RoleStudent, domain.RoleTeacher, domain.RoleCoordinator:
	default:
		return nil, apperrors.NewValidationError("unknown role", map[string]any{"role": string(role)})
	}

	user := &domain.UserSummary{
		ID:          uuid.NewString(),
		DisplayName: displayName,
		Role:        role,
		Active:      true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Get fetches a user by id.
func (s *UserService) Get(ctx context.Context, id string) (*domain.UserSummary, error) {
	return s.users.GetByID(ctx, id)
}

// List returns every user in the directory.
func (s *UserService) List(ctx context.Context) ([]domain.UserSummary, error) {
	return s.users.List(ctx)
}

// Activate flips the user active.
func (s *UserService) Activate(ctx context.Context, id string) (*domain.UserSummary, error) {
	return s.setActive(ctx, id, true)
}

// Deactivate flips the user inactive; they can no longer create or be
// assigned tickets.
func (s *UserService) Deactivate(ctx context.Context, id string) (*domain.UserSummary, error) {
	return s.setActive(ctx, id, false)
}

func (s *UserService) setActive(ctx context.Context, id string, active bool) (*domain.UserSummary, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.Active == active {
		return user, nil
	}
	user.Active = active
	if err := s.users.Save(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

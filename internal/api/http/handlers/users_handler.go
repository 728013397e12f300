package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/campus-desk/pqrs-service/internal/api/dto"
	"github.com/campus-desk/pqrs-service/internal/auth"
	"github.com/campus-desk/pqrs-service/internal/domain"
	"github.com/campus-desk/pqrs-service/internal/service"
	apperrors "github.com/campus-desk/pqrs-service/pkg/util"
)

// UsersHandler exposes directory endpoints.
type UsersHandler struct {
	users  *service.UserService
	tokens *auth.TokenManager
}

// NewUsersHandler constructs the handler. tokens may be nil when identity
// tokens are not configured.
func NewUsersHandler(userService *service.UserService, tokens *auth.TokenManager) *UsersHandler {
	return &UsersHandler{users: userService, tokens: tokens}
}

// Create POST /api/users.
func (h *UsersHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	user, err := h.users.Create(c.UserContext(), req.DisplayName, domain.Role(req.Role))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": userResponse(user)})
}

// List GET /api/users.
func (h *UsersHandler) List(c *fiber.Ctx) error {
	users, err := h.users.List(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		items = append(items, userResponse(&users[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get GET /api/users/:id.
func (h *UsersHandler) Get(c *fiber.Ctx) error {
	user, err := h.users.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": userResponse(user)})
}

// Activate PUT /api/users/:id/activate.
func (h *UsersHandler) Activate(c *fiber.Ctx) error {
	user, err := h.users.Activate(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": userResponse(user)})
}

// Deactivate PUT /api/users/:id/deactivate.
func (h *UsersHandler) Deactivate(c *fiber.Ctx) error {
	user, err := h.users.Deactivate(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": userResponse(user)})
}

// IssueToken POST /api/users/:id/token. Mints an identity token for
// deployments without an external identity provider.
func (h *UsersHandler) IssueToken(c *fiber.Ctx) error {
	if h.tokens == nil {
		return apperrors.NewConflict("identity tokens not configured", nil)
	}
	user, err := h.users.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	token, expiresAt, err := h.tokens.GenerateToken(user)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	return c.JSON(fiber.Map{"data": dto.IdentityTokenResponse{Token: token, ExpiresAt: expiresAt}})
}

func userResponse(user *domain.UserSummary) dto.UserResponse {
	refs := make([]dto.TicketRefResponse, 0, len(user.Tickets))
	for _, ref := range user.Tickets {
		refs = append(refs, dto.TicketRefResponse{TicketID: ref.TicketID, Label: ref.Label})
	}
	return dto.UserResponse{
		ID:          user.ID,
		DisplayName: user.DisplayName,
		Role:        string(user.Role),
		Active:      user.Active,
		Tickets:     refs,
		CreatedAt:   user.CreatedAt,
		UpdatedAt:   user.UpdatedAt,
	}
}

package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/campus-desk/pqrs-service/internal/api/dto"
	"github.com/campus-desk/pqrs-service/internal/auth"
	"github.com/campus-desk/pqrs-service/internal/domain"
	"github.com/campus-desk/pqrs-service/internal/service"
	apperrors "github.com/campus-desk/pqrs-service/pkg/util"
)

// TicketsHandler exposes the ticket lifecycle endpoints. Transitions map to
// PUT on sub-resources; validation failures surface as 4xx through the error
// middleware.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs the handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// Create POST /api/tickets.
func (h *TicketsHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	requesterID := actorID(c, req.RequesterID)
	if requesterID == "" || strings.TrimSpace(req.RequesterName) == "" {
		return apperrors.NewValidationError("requester_id and requester_name required", nil)
	}
	channel, err := domain.ParseChannel(req.Channel)
	if err != nil {
		return err
	}

	ticket, err := h.service.Create(c.UserContext(), requesterID, req.RequesterName, channel, req.Description)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// List GET /api/tickets.
func (h *TicketsHandler) List(c *fiber.Ctx) error {
	tickets, err := h.service.ListAll(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponses(tickets)})
}

// Get GET /api/tickets/:id.
func (h *TicketsHandler) Get(c *fiber.Ctx) error {
	ticket, err := h.service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// ListByRequester GET /api/tickets/requester/:id.
func (h *TicketsHandler) ListByRequester(c *fiber.Ctx) error {
	tickets, err := h.service.ListByRequester(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponses(tickets)})
}

// Classify PUT /api/tickets/:id/classify.
func (h *TicketsHandler) Classify(c *fiber.Ctx) error {
	var req dto.ClassifyRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	category, err := domain.ParseCategory(req.Category)
	if err != nil {
		return err
	}
	coordinatorID := actorID(c, req.CoordinatorID)
	if coordinatorID == "" {
		return apperrors.NewValidationError("coordinator_id required", nil)
	}

	ticket, err := h.service.Classify(c.UserContext(), c.Params("id"), category, coordinatorID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// Prioritize PUT /api/tickets/:id/prioritize.
func (h *TicketsHandler) Prioritize(c *fiber.Ctx) error {
	var req dto.PrioritizeRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	priority, err := domain.ParsePriority(req.Priority)
	if err != nil {
		return err
	}
	coordinatorID := actorID(c, req.CoordinatorID)
	if coordinatorID == "" {
		return apperrors.NewValidationError("coordinator_id required", nil)
	}

	ticket, err := h.service.Prioritize(c.UserContext(), c.Params("id"), priority, req.Justification, coordinatorID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// Assign PUT /api/tickets/:id/assign.
func (h *TicketsHandler) Assign(c *fiber.Ctx) error {
	var req dto.AssignRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	coordinatorID := actorID(c, req.CoordinatorID)
	if req.AssigneeID == "" || coordinatorID == "" {
		return apperrors.NewValidationError("assignee_id and coordinator_id required", nil)
	}

	ticket, err := h.service.Assign(c.UserContext(), c.Params("id"), req.AssigneeID, coordinatorID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// Resolve PUT /api/tickets/:id/resolve.
func (h *TicketsHandler) Resolve(c *fiber.Ctx) error {
	req, err := parseCompletion(c)
	if err != nil {
		return err
	}
	ticket, err := h.service.Resolve(c.UserContext(), c.Params("id"), req.ActorID, req.Note)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// Close PUT /api/tickets/:id/close.
func (h *TicketsHandler) Close(c *fiber.Ctx) error {
	req, err := parseCompletion(c)
	if err != nil {
		return err
	}
	ticket, err := h.service.Close(c.UserContext(), c.Params("id"), req.ActorID, req.Note)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

func parseCompletion(c *fiber.Ctx) (dto.CompletionRequest, error) {
	var req dto.CompletionRequest
	if err := c.BodyParser(&req); err != nil {
		return req, apperrors.NewValidationError("invalid payload", nil)
	}
	req.ActorID = actorID(c, req.ActorID)
	if req.ActorID == "" {
		return req, apperrors.NewValidationError("actor_id required", nil)
	}
	return req, nil
}

// actorID prefers the explicit payload field and falls back to the bearer
// identity when the caller supplied one.
func actorID(c *fiber.Ctx, explicit string) string {
	if explicit != "" {
		return explicit
	}
	if identity, ok := auth.IdentityFromContext(c); ok {
		return identity.UserID
	}
	return ""
}

func ticketResponse(ticket domain.Ticket) dto.TicketResponse {
	history := make([]dto.AuditEntryResponse, 0, len(ticket.History))
	for _, entry := range ticket.History {
		history = append(history, dto.AuditEntryResponse{
			ID:        entry.ID,
			Timestamp: entry.Timestamp,
			Action:    entry.Action,
			Actor:     dto.UserRefResponse{ID: entry.Actor.ID, DisplayName: entry.Actor.DisplayName},
			Note:      entry.Note,
		})
	}
	resp := dto.TicketResponse{
		ID:                    ticket.ID,
		Requester:             dto.UserRefResponse{ID: ticket.Requester.ID, DisplayName: ticket.Requester.DisplayName},
		Channel:               ticket.Channel,
		RegisteredAt:          ticket.RegisteredAt,
		Category:              string(ticket.Category),
		Description:           ticket.Description,
		Priority:              string(ticket.Priority),
		PriorityJustification: ticket.PriorityJustification,
		Status:                ticket.Status,
		History:               history,
	}
	if ticket.Assignee != nil {
		resp.Assignee = &dto.UserRefResponse{ID: ticket.Assignee.ID, DisplayName: ticket.Assignee.DisplayName}
	}
	return resp
}

func ticketResponses(tickets []domain.Ticket) []dto.TicketResponse {
	items := make([]dto.TicketResponse, 0, len(tickets))
	for _, ticket := range tickets {
		items = append(items, ticketResponse(ticket))
	}
	return items
}

package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/campus-desk/pqrs-service/internal/api/http/handlers"
	"github.com/campus-desk/pqrs-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health   *handlers.HealthHandler
	Tickets  *handlers.TicketsHandler
	Users    *handlers.UsersHandler
	Identity *auth.IdentityMiddleware
}

// RegisterRoutes wires HTTP routes. Transitions are PUTs on sub-resources.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api", cfg.Identity.Handle)

	tickets := api.Group("/tickets")
	tickets.Post("/", cfg.Tickets.Create)
	tickets.Get("/", cfg.Tickets.List)
	tickets.Get("/requester/:id", cfg.Tickets.ListByRequester)
	tickets.Get("/:id", cfg.Tickets.Get)
	tickets.Put("/:id/classify", cfg.Tickets.Classify)
	tickets.Put("/:id/prioritize", cfg.Tickets.Prioritize)
	tickets.Put("/:id/assign", cfg.Tickets.Assign)
	tickets.Put("/:id/resolve", cfg.Tickets.Resolve)
	tickets.Put("/:id/close", cfg.Tickets.Close)

	users := api.Group("/users")
	users.Post("/", cfg.Users.Create)
	users.Get("/", cfg.Users.List)
	users.Get("/:id", cfg.Users.Get)
	users.Put("/:id/activate", cfg.Users.Activate)
	users.Put("/:id/deactivate", cfg.Users.Deactivate)
	users.Post("/:id/token", cfg.Users.IssueToken)
}

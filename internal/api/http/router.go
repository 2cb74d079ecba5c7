package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticketdesk/internal/api/http/handlers"
	"github.com/spec-kit/ticketdesk/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	View    *handlers.ViewHandler
	Intents *handlers.IntentsHandler
	Tickets *handlers.TicketsHandler
	Health  *handlers.HealthHandler
	Ops     *handlers.OpsHandler
	Session auth.SessionProbe
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", cfg.Ops.Metrics)
	app.Get("/activity", cfg.Ops.Activity)

	app.Get("/", cfg.View.Page)
	app.Get("/state", cfg.View.State)

	intents := app.Group("/intents")
	intents.Post("/nav/:target", cfg.Intents.Navigate)
	intents.Post("/get-started", cfg.Intents.GetStarted)
	intents.Post("/back", cfg.Intents.Back)
	intents.Post("/open-tickets", cfg.Intents.OpenTickets)
	intents.Post("/login", cfg.Intents.Login)
	intents.Post("/logout", cfg.Intents.Logout)
	intents.Post("/seed-demo", cfg.Intents.SeedDemo)

	tickets := app.Group("/tickets", auth.RequireSession(cfg.Session))
	tickets.Post("/", cfg.Tickets.CreateTicket)
	tickets.Put("/", cfg.Tickets.ReplaceTickets)
	tickets.Patch("/:id/status", cfg.Tickets.UpdateStatus)
	tickets.Post("/:id/status", cfg.Tickets.UpdateStatus)
}

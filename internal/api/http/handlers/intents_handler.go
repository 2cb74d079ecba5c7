package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticketdesk/internal/api/dto"
	"github.com/spec-kit/ticketdesk/internal/auth"
	"github.com/spec-kit/ticketdesk/internal/domain"
	"github.com/spec-kit/ticketdesk/internal/observability"
	"github.com/spec-kit/ticketdesk/internal/service"
	"github.com/spec-kit/ticketdesk/internal/view"
	apperrors "github.com/spec-kit/ticketdesk/pkg/util/errorutil"
)

// IntentsHandler accepts user intents and answers with the resulting state.
type IntentsHandler struct {
	app     *service.AppService
	metrics *observability.Metrics
}

// NewIntentsHandler constructs handler.
func NewIntentsHandler(app *service.AppService, metrics *observability.Metrics) *IntentsHandler {
	return &IntentsHandler{app: app, metrics: metrics}
}

// Navigate POST /intents/nav/:target.
func (h *IntentsHandler) Navigate(c *fiber.Ctx) error {
	state, err := h.app.Navigate(c.UserContext(), domain.View(c.Params("target")))
	return h.respond(c, "nav", state, err)
}

// GetStarted POST /intents/get-started.
func (h *IntentsHandler) GetStarted(c *fiber.Ctx) error {
	return h.respond(c, "get_started", h.app.GetStarted(c.UserContext()), nil)
}

// Back POST /intents/back.
func (h *IntentsHandler) Back(c *fiber.Ctx) error {
	return h.respond(c, "back", h.app.Back(c.UserContext()), nil)
}

// OpenTickets POST /intents/open-tickets.
func (h *IntentsHandler) OpenTickets(c *fiber.Ctx) error {
	return h.respond(c, "open_tickets", h.app.OpenTickets(c.UserContext()), nil)
}

// Logout POST /intents/logout.
func (h *IntentsHandler) Logout(c *fiber.Ctx) error {
	state, err := h.app.Logout(c.UserContext())
	return h.respond(c, "logout", state, err)
}

// SeedDemo POST /intents/seed-demo.
func (h *IntentsHandler) SeedDemo(c *fiber.Ctx) error {
	state, err := h.app.SeedDemo(c.UserContext())
	return h.respond(c, "seed_demo", state, err)
}

// Login POST /intents/login. The check completes after the login delay;
// clients poll GET /state (or reload the page) for the outcome.
func (h *IntentsHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	state, accepted, err := h.app.Login(c.UserContext(), req.Username, req.Password)
	h.metrics.RecordIntent("login", accepted)

	if isFormPost(c) && (err == nil || errors.Is(err, auth.ErrMissingCredentials)) {
		// The form shows its own inline message.
		return backToPage(c)
	}
	if err != nil {
		return mapError(err)
	}

	status := fiber.StatusOK
	if accepted {
		status = fiber.StatusAccepted
	}
	return c.Status(status).JSON(fiber.Map{"data": dto.IntentResponse{
		Accepted: accepted,
		State:    view.Build(state),
	}})
}

func (h *IntentsHandler) respond(c *fiber.Ctx, name string, state domain.AppState, err error) error {
	h.metrics.RecordIntent(name, err == nil)
	if err != nil {
		return mapError(err)
	}
	if isFormPost(c) {
		return backToPage(c)
	}
	return c.JSON(fiber.Map{"data": dto.IntentResponse{
		Accepted: true,
		State:    view.Build(state),
	}})
}

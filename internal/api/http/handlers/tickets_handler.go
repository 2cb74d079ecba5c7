package handlers

import (
	"net/url"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticketdesk/internal/api/dto"
	"github.com/spec-kit/ticketdesk/internal/service"
	"github.com/spec-kit/ticketdesk/internal/view"
	apperrors "github.com/spec-kit/ticketdesk/pkg/util/errorutil"
)

// TicketsHandler manages ticket endpoints. Routes sit behind
// auth.RequireSession.
type TicketsHandler struct {
	app *service.AppService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(app *service.AppService) *TicketsHandler {
	return &TicketsHandler{app: app}
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.app.CreateTicket(c.UserContext(), req.Title, req.Description)
	if err != nil {
		return mapError(err)
	}
	if isFormPost(c) {
		return backToPage(c)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// ReplaceTickets PUT /tickets.
func (h *TicketsHandler) ReplaceTickets(c *fiber.Ctx) error {
	var req dto.ReplaceTicketsRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Tickets == nil {
		return apperrors.NewValidationError("tickets required", nil)
	}
	state, err := h.app.ReplaceTickets(c.UserContext(), req.Tickets)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(fiber.Map{"data": dto.IntentResponse{Accepted: true, State: view.Build(state)}})
}

// UpdateStatus PATCH /tickets/:id/status.
func (h *TicketsHandler) UpdateStatus(c *fiber.Ctx) error {
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	id, err := url.PathUnescape(c.Params("id"))
	if err != nil {
		return apperrors.NewValidationError("invalid ticket id", nil)
	}
	ticket, err := h.app.SetTicketStatus(c.UserContext(), id, req.Status)
	if err != nil {
		return mapError(err)
	}
	if isFormPost(c) {
		return backToPage(c)
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

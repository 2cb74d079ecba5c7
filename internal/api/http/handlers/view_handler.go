package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticketdesk/internal/service"
	"github.com/spec-kit/ticketdesk/internal/view"
)

// ViewHandler serves the rendered application.
type ViewHandler struct {
	app      *service.AppService
	renderer *view.Renderer
}

// NewViewHandler constructs handler.
func NewViewHandler(app *service.AppService, renderer *view.Renderer) *ViewHandler {
	return &ViewHandler{app: app, renderer: renderer}
}

// Page GET /.
func (h *ViewHandler) Page(c *fiber.Ctx) error {
	model := view.Build(h.app.Snapshot())
	c.Set(fiber.HeaderCacheControl, "no-store")
	c.Type("html", "utf-8")
	return h.renderer.Render(c, model)
}

// State GET /state.
func (h *ViewHandler) State(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": view.Build(h.app.Snapshot())})
}

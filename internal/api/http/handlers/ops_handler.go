package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticketdesk/internal/observability"
	"github.com/spec-kit/ticketdesk/internal/service"
)

// OpsHandler exposes counters and the recent activity log.
type OpsHandler struct {
	metrics *observability.Metrics
	audit   *service.AuditService
}

// NewOpsHandler constructs handler.
func NewOpsHandler(metrics *observability.Metrics, audit *service.AuditService) *OpsHandler {
	return &OpsHandler{metrics: metrics, audit: audit}
}

// Metrics GET /metrics.
func (h *OpsHandler) Metrics(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": h.metrics.Snapshot()})
}

// Activity GET /activity.
func (h *OpsHandler) Activity(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": h.audit.Recent()})
}

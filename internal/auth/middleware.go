package auth

import (
	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/ticketdesk/pkg/util/errorutil"
)

// SessionProbe reports whether the application currently has a session.
type SessionProbe interface {
	Authenticated() bool
}

// RequireSession rejects requests made while no session is open. It guards
// the data endpoints; the view routes render a placeholder instead.
func RequireSession(probe SessionProbe) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !probe.Authenticated() {
			return apperrors.NewUnauthorized("Unauthorized")
		}
		return c.Next()
	}
}

package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticketdesk/internal/auth"
	"github.com/spec-kit/ticketdesk/internal/navigation"
	"github.com/spec-kit/ticketdesk/internal/repository"
	"github.com/spec-kit/ticketdesk/internal/service"
	apperrors "github.com/spec-kit/ticketdesk/pkg/util/errorutil"
)

// mapError translates package sentinels into domain errors for the
// error middleware. Anything unrecognized becomes INTERNAL_ERROR there.
func mapError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, navigation.ErrUnknownView):
		return apperrors.NewValidationError("unknown view", nil)
	case errors.Is(err, auth.ErrMissingCredentials):
		return apperrors.NewValidationError(auth.MsgMissingCredentials, nil)
	case errors.Is(err, repository.ErrTitleRequired):
		return apperrors.NewValidationError("title required", nil)
	case errors.Is(err, repository.ErrInvalidStatus):
		return apperrors.NewValidationError("status must be open, resolved or closed", nil)
	case errors.Is(err, repository.ErrDuplicateID):
		return apperrors.Wrap(err, apperrors.NewValidationError("ticket ids must be unique", nil))
	case errors.Is(err, repository.ErrTicketNotFound):
		return apperrors.Wrap(err, apperrors.NewNotFound("ticket"))
	case errors.Is(err, service.ErrNotAuthenticated):
		return apperrors.NewUnauthorized("Unauthorized")
	case errors.Is(err, service.ErrLoginFormClosed):
		return apperrors.NewConflict("login form is not open")
	}
	return apperrors.ToDomainError(err)
}

// isFormPost reports whether the request came from an HTML form.
func isFormPost(c *fiber.Ctx) bool {
	return strings.HasPrefix(string(c.Request().Header.ContentType()), fiber.MIMEApplicationForm)
}

// backToPage sends a browser back to the rendered view.
func backToPage(c *fiber.Ctx) error {
	return c.Redirect("/", fiber.StatusSeeOther)
}

// Package errorutil carries the error codes the HTTP edge reports.
package errorutil

import (
	"errors"
	"fmt"
	"net/http"
)

// Codes rendered in the JSON error envelope.
const (
	CodeValidation   = "VALIDATION_FAILED"
	CodeNotFound     = "NOT_FOUND"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeConflict     = "CONFLICT"
	CodeInternal     = "INTERNAL_ERROR"
)

// DomainError is an error with the code and status it is reported under.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error { return e.Err }

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

// Wrap records err as the cause of de and returns de.
func Wrap(err error, de *DomainError) *DomainError {
	de.Err = err
	return de
}

func NewValidationError(message string, details map[string]any) *DomainError {
	return NewDomainError(CodeValidation, message, http.StatusBadRequest, details)
}

func NewNotFound(resource string) *DomainError {
	return NewDomainError(CodeNotFound, resource+" not found", http.StatusNotFound, nil)
}

func NewUnauthorized(message string) *DomainError {
	return NewDomainError(CodeUnauthorized, message, http.StatusUnauthorized, nil)
}

func NewConflict(message string) *DomainError {
	return NewDomainError(CodeConflict, message, http.StatusConflict, nil)
}

// NewInternalError hides err from clients; it is kept as the cause for logs.
func NewInternalError(err error) *DomainError {
	return Wrap(err, NewDomainError(CodeInternal, "internal server error", http.StatusInternalServerError, nil))
}

// ToDomainError finds the DomainError in err's chain, or reports err as
// an internal error.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return NewInternalError(err)
}

package dto

import (
	"github.com/spec-kit/ticketdesk/internal/view"
)

// LoginRequest payload for POST /intents/login.
type LoginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// IntentResponse is returned by every intent endpoint.
type IntentResponse struct {
	Accepted bool       `json:"accepted"`
	State    view.Model `json:"state"`
}

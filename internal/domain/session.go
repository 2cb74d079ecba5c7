package domain

// View identifies which screen of the application is active.
type View string

const (
	ViewLanding   View = "landing"
	ViewLogin     View = "login"
	ViewDashboard View = "dashboard"
	ViewTickets   View = "tickets"
)

// Valid reports whether v names a known view.
func (v View) Valid() bool {
	switch v {
	case ViewLanding, ViewLogin, ViewDashboard, ViewTickets:
		return true
	}
	return false
}

// Gated reports whether v requires an authenticated session to render.
func (v View) Gated() bool {
	return v == ViewDashboard || v == ViewTickets
}

// LoginState is the observable state of the login form.
type LoginState struct {
	Pending bool   `json:"pending"`
	Error   string `json:"error,omitempty"`
}

// AppState is the read-only snapshot handed to the renderer.
type AppState struct {
	View          View
	Authenticated bool
	Tickets       []Ticket
	Summary       TicketSummary
	Login         LoginState
}

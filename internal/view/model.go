// Package view turns application state into what the pages show. Build is
// pure; Renderer writes the HTML page for a Model.
package view

import (
	"net/url"
	"time"

	"github.com/spec-kit/ticketdesk/internal/domain"
)

// Fixed page copy.
const (
	AppTitle          = "TicketDoc"
	DashboardDenied   = "Unauthorized - redirecting to login..."
	TicketsDenied     = "Unauthorized"
	TicketsEmpty      = `No tickets. Click "Seed Demo Tickets" on the dashboard to add sample data.`
	SubmitLabel       = "Sign in"
	SubmitLabelActive = "Signing in..."
)

// Control is a button that posts an intent.
type Control struct {
	Label  string `json:"label"`
	Action string `json:"action"`
}

// Model is everything a page render needs.
type Model struct {
	Title         string          `json:"title"`
	View          domain.View     `json:"view"`
	Authenticated bool            `json:"authenticated"`
	Header        []Control       `json:"header"`
	Placeholder   string          `json:"placeholder,omitempty"`
	Landing       *LandingModel   `json:"landing,omitempty"`
	Login         *LoginModel     `json:"login,omitempty"`
	Dashboard     *DashboardModel `json:"dashboard,omitempty"`
	Tickets       *TicketsModel   `json:"tickets,omitempty"`
}

// LandingModel is the hero section.
type LandingModel struct {
	Heading string  `json:"heading"`
	Lead    string  `json:"lead"`
	Start   Control `json:"start"`
}

// LoginModel is the login form.
type LoginModel struct {
	Pending     bool    `json:"pending"`
	SubmitLabel string  `json:"submitLabel"`
	Error       string  `json:"error,omitempty"`
	Submit      string  `json:"submit"`
	Back        Control `json:"back"`
}

// DashboardModel shows the ticket counters and quick actions.
type DashboardModel struct {
	Summary domain.TicketSummary `json:"summary"`
	Manage  Control              `json:"manage"`
	Seed    Control              `json:"seed"`
}

// TicketsModel is the ticket table.
type TicketsModel struct {
	Rows      []TicketRow `json:"rows"`
	EmptyText string      `json:"emptyText,omitempty"`
	Statuses  []string    `json:"statuses"`
	Back      Control     `json:"back"`
	Create    string      `json:"create"`
}

// TicketRow is one table row.
type TicketRow struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Created     string `json:"created"`
	StatusForm  string `json:"statusForm"`
}

// Build derives the page model from state. Gated views without a session
// render a placeholder instead of their content.
func Build(state domain.AppState) Model {
	m := Model{
		Title:         AppTitle,
		View:          state.View,
		Authenticated: state.Authenticated,
		Header:        header(state.Authenticated),
	}

	switch state.View {
	case domain.ViewLanding:
		m.Landing = &LandingModel{
			Heading: "My Ticket Management Platform",
			Lead:    "Easy to use ticket management starter platform. Supper User friendly.",
			Start:   Control{Label: "Get Started", Action: "/intents/get-started"},
		}
	case domain.ViewLogin:
		label := SubmitLabel
		if state.Login.Pending {
			label = SubmitLabelActive
		}
		m.Login = &LoginModel{
			Pending:     state.Login.Pending,
			SubmitLabel: label,
			Error:       state.Login.Error,
			Submit:      "/intents/login",
			Back:        Control{Label: "Back", Action: "/intents/back"},
		}
	case domain.ViewDashboard:
		if !state.Authenticated {
			m.Placeholder = DashboardDenied
			break
		}
		m.Dashboard = &DashboardModel{
			Summary: state.Summary,
			Manage:  Control{Label: "Manage Tickets", Action: "/intents/open-tickets"},
			Seed:    Control{Label: "Seed Demo Tickets", Action: "/intents/seed-demo"},
		}
	case domain.ViewTickets:
		if !state.Authenticated {
			m.Placeholder = TicketsDenied
			break
		}
		m.Tickets = ticketsModel(state.Tickets)
	}
	return m
}

func header(authenticated bool) []Control {
	dashboard := "/intents/nav/login"
	if authenticated {
		dashboard = "/intents/nav/dashboard"
	}
	controls := []Control{
		{Label: "Home", Action: "/intents/nav/landing"},
		{Label: "Dashboard", Action: dashboard},
		{Label: "Tickets", Action: "/intents/nav/tickets"},
	}
	if authenticated {
		return append(controls, Control{Label: "Logout", Action: "/intents/logout"})
	}
	return append(controls, Control{Label: "Login", Action: "/intents/nav/login"})
}

func ticketsModel(tickets []domain.Ticket) *TicketsModel {
	tm := &TicketsModel{
		Rows: make([]TicketRow, 0, len(tickets)),
		Statuses: []string{
			string(domain.TicketStatusOpen),
			string(domain.TicketStatusResolved),
			string(domain.TicketStatusClosed),
		},
		Back:   Control{Label: "Back to Dashboard", Action: "/intents/back"},
		Create: "/tickets",
	}
	if len(tickets) == 0 {
		tm.EmptyText = TicketsEmpty
	}
	for _, t := range tickets {
		tm.Rows = append(tm.Rows, TicketRow{
			ID:          t.ID,
			Title:       t.Title,
			Description: t.Description,
			Status:      string(t.Status),
			Created:     t.Created().UTC().Format(time.RFC3339),
			StatusForm:  "/tickets/" + url.PathEscape(t.ID) + "/status",
		})
	}
	return tm
}

// Package navigation tracks which view is active and whether a session is
// open, and derives every view change from user intents plus one reactive
// rule: when the session flag goes from false to true, the view becomes
// the dashboard, whatever the intent asked for.
package navigation

import (
	"errors"
	"fmt"

	"github.com/spec-kit/ticketdesk/internal/domain"
)

// ErrUnknownView is returned when a navigation target names no view.
var ErrUnknownView = errors.New("unknown view")

// Transition describes the effect of one intent.
type Transition struct {
	From          domain.View
	To            domain.View
	AuthChanged   bool
	Authenticated bool
}

// Changed reports whether the intent had any visible effect.
func (t Transition) Changed() bool {
	return t.From != t.To || t.AuthChanged
}

// Machine is the navigation state machine. It is not safe for concurrent
// use; the application serializes intents.
type Machine struct {
	view          domain.View
	authenticated bool
}

// NewMachine starts at the landing view. A restored session is applied
// through the same rule as a fresh login, so the returned machine is
// already on the dashboard when authenticated is true.
func NewMachine(authenticated bool) *Machine {
	m := &Machine{view: domain.ViewLanding}
	if authenticated {
		m.apply(func() { m.authenticated = true })
	}
	return m
}

// View returns the active view.
func (m *Machine) View() domain.View { return m.view }

// Authenticated reports whether a session is open.
func (m *Machine) Authenticated() bool { return m.authenticated }

// Navigate switches to target. Gated views are entered even without a
// session; rendering substitutes a placeholder rather than redirecting.
func (m *Machine) Navigate(target domain.View) (Transition, error) {
	if !target.Valid() {
		return Transition{From: m.view, To: m.view, Authenticated: m.authenticated}, fmt.Errorf("%w: %q", ErrUnknownView, target)
	}
	return m.apply(func() { m.view = target }), nil
}

// GetStarted is the landing page's call to action.
func (m *Machine) GetStarted() Transition {
	return m.apply(func() { m.view = domain.ViewLogin })
}

// Back leaves the login form for the landing page and the tickets table
// for the dashboard. Elsewhere it does nothing.
func (m *Machine) Back() Transition {
	return m.apply(func() {
		switch m.view {
		case domain.ViewLogin:
			m.view = domain.ViewLanding
		case domain.ViewTickets:
			m.view = domain.ViewDashboard
		}
	})
}

// OpenTickets is the dashboard's "manage tickets" action.
func (m *Machine) OpenTickets() Transition {
	return m.apply(func() { m.view = domain.ViewTickets })
}

// LoginSucceeded opens the session and shows the dashboard. Logging in
// again while a session is already open still lands on the dashboard.
func (m *Machine) LoginSucceeded() Transition {
	return m.apply(func() {
		m.authenticated = true
		m.view = domain.ViewDashboard
	})
}

// Logout closes the session and returns to the landing page.
func (m *Machine) Logout() Transition {
	return m.apply(func() {
		m.authenticated = false
		m.view = domain.ViewLanding
	})
}

// apply runs mutate and then evaluates the reactive rule once.
func (m *Machine) apply(mutate func()) Transition {
	from, wasAuthenticated := m.view, m.authenticated
	mutate()
	if !wasAuthenticated && m.authenticated {
		m.view = domain.ViewDashboard
	}
	return Transition{
		From:          from,
		To:            m.view,
		AuthChanged:   wasAuthenticated != m.authenticated,
		Authenticated: m.authenticated,
	}
}

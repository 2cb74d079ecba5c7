package view

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/spec-kit/ticketdesk/internal/domain"
	"github.com/spec-kit/ticketdesk/internal/repository"
)

var now = time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)

func labels(controls []Control) string {
	parts := make([]string, 0, len(controls))
	for _, c := range controls {
		parts = append(parts, c.Label+"="+c.Action)
	}
	return strings.Join(parts, " ")
}

func TestBuild_Header(t *testing.T) {
	anon := labels(Build(domain.AppState{View: domain.ViewLanding}).Header)
	want := "Home=/intents/nav/landing Dashboard=/intents/nav/login Tickets=/intents/nav/tickets Login=/intents/nav/login"
	if anon != want {
		t.Errorf("anonymous header = %q", anon)
	}

	authed := labels(Build(domain.AppState{View: domain.ViewDashboard, Authenticated: true}).Header)
	want = "Home=/intents/nav/landing Dashboard=/intents/nav/dashboard Tickets=/intents/nav/tickets Logout=/intents/logout"
	if authed != want {
		t.Errorf("authenticated header = %q", authed)
	}
}

func TestBuild_Placeholders(t *testing.T) {
	tests := []struct {
		view domain.View
		want string
	}{
		{domain.ViewDashboard, DashboardDenied},
		{domain.ViewTickets, TicketsDenied},
	}
	for _, tt := range tests {
		m := Build(domain.AppState{View: tt.view})
		if m.Placeholder != tt.want {
			t.Errorf("%s placeholder = %q", tt.view, m.Placeholder)
		}
		if m.Dashboard != nil || m.Tickets != nil {
			t.Errorf("%s rendered gated content without a session", tt.view)
		}
	}
}

func TestBuild_Login(t *testing.T) {
	m := Build(domain.AppState{View: domain.ViewLogin, Login: domain.LoginState{Pending: true}})
	if m.Login == nil || m.Login.SubmitLabel != SubmitLabelActive || !m.Login.Pending {
		t.Fatalf("pending login = %+v", m.Login)
	}

	m = Build(domain.AppState{View: domain.ViewLogin, Login: domain.LoginState{Error: "boom"}})
	if m.Login.SubmitLabel != SubmitLabel || m.Login.Error != "boom" {
		t.Fatalf("idle login = %+v", m.Login)
	}
}

func TestBuild_Tickets(t *testing.T) {
	empty := Build(domain.AppState{View: domain.ViewTickets, Authenticated: true, Tickets: []domain.Ticket{}})
	if empty.Tickets == nil || empty.Tickets.EmptyText != TicketsEmpty || len(empty.Tickets.Rows) != 0 {
		t.Fatalf("empty tickets = %+v", empty.Tickets)
	}

	demo := repository.DemoTickets(now)
	m := Build(domain.AppState{View: domain.ViewTickets, Authenticated: true, Tickets: demo})
	if len(m.Tickets.Rows) != 3 || m.Tickets.EmptyText != "" {
		t.Fatalf("rows = %+v", m.Tickets.Rows)
	}
	row := m.Tickets.Rows[1]
	if row.ID != "t2" || row.Status != "resolved" || row.StatusForm != "/tickets/t2/status" {
		t.Errorf("row = %+v", row)
	}
	if row.Created != "2026-02-01T07:00:00Z" {
		t.Errorf("created = %q", row.Created)
	}
}

func TestBuild_StatusFormEscapesID(t *testing.T) {
	state := domain.AppState{
		View: domain.ViewTickets, Authenticated: true,
		Tickets: []domain.Ticket{{ID: "a/b?x", Title: "odd id", Status: domain.TicketStatusOpen}},
	}
	got := Build(state).Tickets.Rows[0].StatusForm
	if got != "/tickets/a%2Fb%3Fx/status" {
		t.Fatalf("status form = %q", got)
	}
}

func TestRenderer_Pages(t *testing.T) {
	r, err := NewRenderer()
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}

	demo := repository.DemoTickets(now)
	tests := []struct {
		name  string
		state domain.AppState
		want  []string
		never []string
	}{
		{
			name:  "landing",
			state: domain.AppState{View: domain.ViewLanding},
			want:  []string{"My Ticket Management Platform", "Get Started", ">Login<"},
		},
		{
			name:  "login pending",
			state: domain.AppState{View: domain.ViewLogin, Login: domain.LoginState{Pending: true}},
			want:  []string{"Signing in...", "disabled", `http-equiv="refresh"`},
		},
		{
			name:  "login error",
			state: domain.AppState{View: domain.ViewLogin, Login: domain.LoginState{Error: "Please enter both username and password."}},
			want:  []string{"Please enter both username and password.", "Sign in"},
			never: []string{"refresh"},
		},
		{
			name: "dashboard",
			state: domain.AppState{
				View: domain.ViewDashboard, Authenticated: true, Tickets: demo,
				Summary: repository.Aggregate(demo),
			},
			want: []string{"<h3>3</h3><p>Total Tickets</p>", "<h3>2</h3><p>Open</p>", "<h3>1</h3><p>Resolved</p>", "Seed Demo Tickets", ">Logout<"},
		},
		{
			name:  "dashboard denied",
			state: domain.AppState{View: domain.ViewDashboard},
			want:  []string{DashboardDenied},
			never: []string{"Total Tickets"},
		},
		{
			name:  "tickets empty",
			state: domain.AppState{View: domain.ViewTickets, Authenticated: true},
			want:  []string{"No tickets. Click &#34;Seed Demo Tickets&#34; on the dashboard to add sample data."},
		},
		{
			name:  "tickets",
			state: domain.AppState{View: domain.ViewTickets, Authenticated: true, Tickets: demo},
			want:  []string{"Cannot login", `<option value="resolved" selected>`, "Back to Dashboard"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := r.Render(&buf, Build(tt.state)); err != nil {
				t.Fatalf("Render: %v", err)
			}
			out := buf.String()
			for _, s := range tt.want {
				if !strings.Contains(out, s) {
					t.Errorf("missing %q", s)
				}
			}
			for _, s := range tt.never {
				if strings.Contains(out, s) {
					t.Errorf("unexpected %q", s)
				}
			}
		})
	}
}

func TestRenderer_EscapesTicketText(t *testing.T) {
	r, err := NewRenderer()
	if err != nil {
		t.Fatal(err)
	}
	state := domain.AppState{
		View: domain.ViewTickets, Authenticated: true,
		Tickets: []domain.Ticket{{ID: "x", Title: "<script>alert(1)</script>", Status: domain.TicketStatusOpen}},
	}
	var buf bytes.Buffer
	if err := r.Render(&buf, Build(state)); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), "<script>") {
		t.Fatal("ticket title was not escaped")
	}
}

package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/ticketdesk/internal/api/http/handlers"
	"github.com/spec-kit/ticketdesk/internal/auth"
	"github.com/spec-kit/ticketdesk/internal/clock"
	"github.com/spec-kit/ticketdesk/internal/domain"
	"github.com/spec-kit/ticketdesk/internal/events"
	"github.com/spec-kit/ticketdesk/internal/observability"
	"github.com/spec-kit/ticketdesk/internal/persistence"
	"github.com/spec-kit/ticketdesk/internal/repository"
	"github.com/spec-kit/ticketdesk/internal/service"
	"github.com/spec-kit/ticketdesk/internal/view"
)

type testServer struct {
	app     *fiber.App
	clock   *clock.FakeClock
	store   *persistence.Memory
	metrics *observability.Metrics
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := zap.NewNop()
	store := persistence.NewMemory()
	clk := clock.Fake(time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC))

	checker, err := auth.NewDemoChecker(bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	renderer, err := view.NewRenderer()
	if err != nil {
		t.Fatal(err)
	}
	dispatcher := events.NewInMemoryDispatcher()
	audit := service.NewAuditService(dispatcher, logger, 10)
	audit.RegisterHandlers()
	metrics := observability.NewMetrics()

	appService := service.NewAppService(context.Background(), service.AppDependencies{
		Tickets:    repository.NewTicketRepository(store, clk, logger),
		Sessions:   auth.NewSessionStore(store, auth.NewTokenManager("secret", clk.Now), logger),
		Checker:    checker,
		Clock:      clk,
		Dispatcher: dispatcher,
		Logger:     logger,
		LoginDelay: 600 * time.Millisecond,
	})
	t.Cleanup(appService.Close)

	app := fiber.New()
	RegisterMiddlewares(app, logger, metrics, time.Second)
	RegisterRoutes(app, RouteConfig{
		View:    handlers.NewViewHandler(appService, renderer),
		Intents: handlers.NewIntentsHandler(appService, metrics),
		Tickets: handlers.NewTicketsHandler(appService),
		Health:  handlers.NewHealthHandler("ticketdesk", "test", "memory", store),
		Ops:     handlers.NewOpsHandler(metrics, audit),
		Session: appService,
	})
	return &testServer{app: app, clock: clk, store: store, metrics: metrics}
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type intentBody struct {
	Accepted bool       `json:"accepted"`
	State    view.Model `json:"state"`
}

func (s *testServer) do(t *testing.T, method, path, contentType, body string) (int, []byte, string) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set(fiber.HeaderContentType, contentType)
	}
	resp, err := s.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp.StatusCode, raw, resp.Header.Get(fiber.HeaderLocation)
}

func (s *testServer) postJSON(t *testing.T, path, body string) (int, envelope) {
	t.Helper()
	status, raw, _ := s.do(t, fiber.MethodPost, path, fiber.MIMEApplicationJSON, body)
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("decode %s: %v (%s)", path, err, raw)
	}
	return status, env
}

func decodeIntent(t *testing.T, env envelope) intentBody {
	t.Helper()
	var body intentBody
	if err := json.Unmarshal(env.Data, &body); err != nil {
		t.Fatalf("decode intent: %v", err)
	}
	return body
}

func (s *testServer) login(t *testing.T) {
	t.Helper()
	s.postJSON(t, "/intents/get-started", "")
	status, env := s.postJSON(t, "/intents/login", `{"username":"admin","password":"1234"}`)
	if status != fiber.StatusAccepted {
		t.Fatalf("login status = %d", status)
	}
	s.clock.Advance(600 * time.Millisecond)
	if body := decodeIntent(t, env); !body.State.Login.Pending {
		t.Fatalf("expected pending login state, got %+v", body.State.Login)
	}
}

func TestRoutes_LoginThenDashboard(t *testing.T) {
	s := newTestServer(t)
	s.login(t)

	status, raw, _ := s.do(t, fiber.MethodGet, "/state", "", "")
	if status != fiber.StatusOK {
		t.Fatalf("state status = %d", status)
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatal(err)
	}
	var model view.Model
	if err := json.Unmarshal(env.Data, &model); err != nil {
		t.Fatal(err)
	}
	if model.View != "dashboard" || !model.Authenticated || model.Dashboard == nil {
		t.Fatalf("model = %+v", model)
	}
}

func TestRoutes_LoginValidation(t *testing.T) {
	s := newTestServer(t)
	s.postJSON(t, "/intents/get-started", "")

	status, env := s.postJSON(t, "/intents/login", `{"username":"  ","password":"x"}`)
	if status != fiber.StatusBadRequest || env.Error == nil || env.Error.Message != auth.MsgMissingCredentials {
		t.Fatalf("status=%d error=%+v", status, env.Error)
	}
}

func TestRoutes_LoginOutsideLoginView(t *testing.T) {
	s := newTestServer(t)
	status, env := s.postJSON(t, "/intents/login", `{"username":"admin","password":"1234"}`)
	if status != fiber.StatusConflict || env.Error == nil || env.Error.Code != "CONFLICT" {
		t.Fatalf("status=%d error=%+v", status, env.Error)
	}
}

func TestRoutes_SecondLoginWhilePending(t *testing.T) {
	s := newTestServer(t)
	s.postJSON(t, "/intents/get-started", "")
	s.postJSON(t, "/intents/login", `{"username":"admin","password":"1234"}`)

	status, env := s.postJSON(t, "/intents/login", `{"username":"admin","password":"1234"}`)
	if status != fiber.StatusOK || decodeIntent(t, env).Accepted {
		t.Fatalf("second login: status=%d", status)
	}
}

func TestRoutes_FormPostRedirectsToPage(t *testing.T) {
	s := newTestServer(t)

	status, _, location := s.do(t, fiber.MethodPost, "/intents/get-started", fiber.MIMEApplicationForm, "")
	if status != fiber.StatusSeeOther || location != "/" {
		t.Fatalf("status=%d location=%q", status, location)
	}

	form := url.Values{"username": {""}, "password": {""}}.Encode()
	status, _, _ = s.do(t, fiber.MethodPost, "/intents/login", fiber.MIMEApplicationForm, form)
	if status != fiber.StatusSeeOther {
		t.Fatalf("form login status = %d", status)
	}

	_, page, _ := s.do(t, fiber.MethodGet, "/", "", "")
	if !strings.Contains(string(page), auth.MsgMissingCredentials) {
		t.Fatal("page does not show the inline login error")
	}
}

func TestRoutes_UnknownView(t *testing.T) {
	s := newTestServer(t)
	status, env := s.postJSON(t, "/intents/nav/settings", "")
	if status != fiber.StatusBadRequest || env.Error.Code != "VALIDATION_FAILED" {
		t.Fatalf("status=%d error=%+v", status, env.Error)
	}
}

func TestRoutes_GatedPagesWithoutSession(t *testing.T) {
	s := newTestServer(t)
	s.postJSON(t, "/intents/nav/dashboard", "")

	_, page, _ := s.do(t, fiber.MethodGet, "/", "", "")
	if !strings.Contains(string(page), view.DashboardDenied) {
		t.Fatal("expected unauthorized placeholder")
	}

	status, _, _ := s.do(t, fiber.MethodPost, "/tickets", fiber.MIMEApplicationJSON, `{"title":"x"}`)
	if status != fiber.StatusUnauthorized {
		t.Fatalf("create without session = %d", status)
	}
	status, _ = s.postJSON(t, "/intents/seed-demo", "")
	if status != fiber.StatusUnauthorized {
		t.Fatalf("seed without session = %d", status)
	}
}

func TestRoutes_TicketLifecycle(t *testing.T) {
	s := newTestServer(t)
	s.login(t)

	status, env := s.postJSON(t, "/intents/seed-demo", "")
	if status != fiber.StatusOK {
		t.Fatalf("seed status = %d", status)
	}
	if got := decodeIntent(t, env).State.Dashboard.Summary.Total; got != 3 {
		t.Fatalf("total = %d", got)
	}

	status, raw, _ := s.do(t, fiber.MethodPost, "/tickets", fiber.MIMEApplicationJSON, `{"title":"VPN down","description":"Office"}`)
	if status != fiber.StatusCreated {
		t.Fatalf("create status = %d (%s)", status, raw)
	}

	status, raw, _ = s.do(t, fiber.MethodPatch, "/tickets/t1/status", fiber.MIMEApplicationJSON, `{"status":"closed"}`)
	if status != fiber.StatusOK {
		t.Fatalf("patch status = %d (%s)", status, raw)
	}
	status, _, _ = s.do(t, fiber.MethodPatch, "/tickets/t1/status", fiber.MIMEApplicationJSON, `{"status":"pending"}`)
	if status != fiber.StatusBadRequest {
		t.Fatalf("invalid status = %d", status)
	}
	status, _, _ = s.do(t, fiber.MethodPatch, "/tickets/nope/status", fiber.MIMEApplicationJSON, `{"status":"open"}`)
	if status != fiber.StatusNotFound {
		t.Fatalf("missing ticket = %d", status)
	}

	status, raw, _ = s.do(t, fiber.MethodPut, "/tickets", fiber.MIMEApplicationJSON,
		`{"tickets":[{"id":"a","title":"A","status":"open","createdAt":1},{"id":"a","title":"B","status":"open","createdAt":2}]}`)
	if status != fiber.StatusBadRequest {
		t.Fatalf("duplicate replace = %d (%s)", status, raw)
	}

	raw2, found, err := s.store.Get(context.Background(), persistence.KeyTickets)
	if err != nil || !found {
		t.Fatalf("tickets not stored: %v", err)
	}
	if !strings.Contains(raw2, "VPN down") {
		t.Fatal("created ticket not written through")
	}
}

func TestRoutes_StatusFormWithEscapedID(t *testing.T) {
	s := newTestServer(t)
	s.login(t)

	status, raw, _ := s.do(t, fiber.MethodPut, "/tickets", fiber.MIMEApplicationJSON,
		`{"tickets":[{"id":"a/b?x","title":"Odd","status":"open","createdAt":1}]}`)
	if status != fiber.StatusOK {
		t.Fatalf("replace = %d (%s)", status, raw)
	}

	action := view.Build(domain.AppState{
		View: domain.ViewTickets, Authenticated: true,
		Tickets: []domain.Ticket{{ID: "a/b?x", Status: domain.TicketStatusOpen}},
	}).Tickets.Rows[0].StatusForm

	form := url.Values{"status": {"resolved"}}.Encode()
	status, _, location := s.do(t, fiber.MethodPost, action, fiber.MIMEApplicationForm, form)
	if status != fiber.StatusSeeOther || location != "/" {
		t.Fatalf("status form %s = %d", action, status)
	}

	raw2, _, _ := s.store.Get(context.Background(), persistence.KeyTickets)
	if !strings.Contains(raw2, `"status":"resolved"`) {
		t.Fatalf("status not updated: %s", raw2)
	}
}

func TestRoutes_LogoutRemovesToken(t *testing.T) {
	s := newTestServer(t)
	s.login(t)

	status, env := s.postJSON(t, "/intents/logout", "")
	if status != fiber.StatusOK {
		t.Fatalf("logout status = %d", status)
	}
	if state := decodeIntent(t, env).State; state.View != "landing" || state.Authenticated {
		t.Fatalf("state = %+v", state)
	}
	if _, found, _ := s.store.Get(context.Background(), persistence.KeyToken); found {
		t.Fatal("token still stored")
	}
}

func TestRoutes_OpsEndpoints(t *testing.T) {
	s := newTestServer(t)
	s.login(t)

	for _, path := range []string{"/health/live", "/health/ready", "/metrics", "/activity"} {
		status, _, _ := s.do(t, fiber.MethodGet, path, "", "")
		if status != fiber.StatusOK {
			t.Errorf("%s = %d", path, status)
		}
	}

	snap := s.metrics.Snapshot()
	if snap.Intents["login|true"] != 1 {
		t.Errorf("login intents = %v", snap.Intents)
	}

	status, _, _ := s.do(t, fiber.MethodGet, "/nowhere", "", "")
	if status != fiber.StatusNotFound {
		t.Errorf("unknown route = %d", status)
	}
}

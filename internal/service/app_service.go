package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/ticketdesk/internal/auth"
	"github.com/spec-kit/ticketdesk/internal/clock"
	"github.com/spec-kit/ticketdesk/internal/domain"
	"github.com/spec-kit/ticketdesk/internal/events"
	"github.com/spec-kit/ticketdesk/internal/navigation"
	"github.com/spec-kit/ticketdesk/internal/repository"
)

// DefaultLoginDelay is the simulated latency of the credential check.
const DefaultLoginDelay = 600 * time.Millisecond

// sessionWriteTimeout bounds store writes made from the login timer,
// which has no request context of its own.
const sessionWriteTimeout = 5 * time.Second

var (
	// ErrNotAuthenticated is returned by data intents issued without a session.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrLoginFormClosed is returned by Login when the login view is not active.
	ErrLoginFormClosed = errors.New("login form is not open")
)

// AppService is the single application instance. It owns the navigation
// state machine and the login form, and drives the ticket repository.
// Every intent and every login timer completion runs under one lock, so
// each runs to completion before the next begins.
type AppService struct {
	mu         sync.Mutex
	machine    *navigation.Machine
	tickets    *repository.TicketRepository
	sessions   *auth.SessionStore
	checker    *auth.Checker
	clock      clock.Clock
	dispatcher events.Dispatcher
	logger     *zap.Logger
	loginDelay time.Duration

	form   *auth.LoginForm
	closed bool
}

// AppDependencies encapsulates collaborators for the application service.
type AppDependencies struct {
	Tickets    *repository.TicketRepository
	Sessions   *auth.SessionStore
	Checker    *auth.Checker
	Clock      clock.Clock
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	LoginDelay time.Duration
}

// NewAppService loads the stored tickets, restores the session and builds
// the initial navigation state.
func NewAppService(ctx context.Context, deps AppDependencies) *AppService {
	s := &AppService{
		tickets:    deps.Tickets,
		sessions:   deps.Sessions,
		checker:    deps.Checker,
		clock:      deps.Clock,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
		loginDelay: deps.LoginDelay,
	}
	if s.clock == nil {
		s.clock = clock.Real()
	}
	if s.dispatcher == nil {
		s.dispatcher = events.NewInMemoryDispatcher()
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.loginDelay <= 0 {
		s.loginDelay = DefaultLoginDelay
	}

	loaded := s.tickets.Load(ctx)
	restored := s.sessions.Restore(ctx)
	s.machine = navigation.NewMachine(restored)
	s.syncFormLocked()

	s.logger.Info("application state initialized",
		zap.Int("tickets", len(loaded)),
		zap.Bool("session_restored", restored),
		zap.String("view", string(s.machine.View())))
	return s
}

// Snapshot returns the current state for rendering.
func (s *AppService) Snapshot() domain.AppState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

// Authenticated reports whether a session is open.
func (s *AppService) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.machine.Authenticated()
}

// Navigate handles nav(target).
func (s *AppService) Navigate(ctx context.Context, target domain.View) (domain.AppState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tr, err := s.machine.Navigate(target)
	if err != nil {
		return s.stateLocked(), err
	}
	s.afterTransitionLocked(ctx, tr)
	return s.stateLocked(), nil
}

// GetStarted handles the landing page call to action.
func (s *AppService) GetStarted(ctx context.Context) domain.AppState {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.afterTransitionLocked(ctx, s.machine.GetStarted())
	return s.stateLocked()
}

// Back handles the back control of the login form and the tickets page.
func (s *AppService) Back(ctx context.Context) domain.AppState {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.afterTransitionLocked(ctx, s.machine.Back())
	return s.stateLocked()
}

// OpenTickets handles openTickets().
func (s *AppService) OpenTickets(ctx context.Context) domain.AppState {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.afterTransitionLocked(ctx, s.machine.OpenTickets())
	return s.stateLocked()
}

// Login handles login(username, password). It only starts the delayed
// check; the outcome shows up in later snapshots. accepted is false, with
// a nil error, when a check is already pending.
func (s *AppService) Login(_ context.Context, username, password string) (state domain.AppState, accepted bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.form == nil {
		return s.stateLocked(), false, ErrLoginFormClosed
	}
	accepted, err = s.form.Submit(username, password)
	return s.stateLocked(), accepted, err
}

// Logout handles logout(). The stored token is removed before the state
// changes; if that fails nothing changes.
func (s *AppService) Logout(ctx context.Context) (domain.AppState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sessions.Close(ctx); err != nil {
		s.logger.Error("logout failed", zap.Error(err))
		return s.stateLocked(), err
	}
	tr := s.machine.Logout()
	if tr.AuthChanged {
		s.publishLocked(ctx, events.EventSessionClosed, events.SessionPayload{})
	}
	s.afterTransitionLocked(ctx, tr)
	return s.stateLocked(), nil
}

// SeedDemo handles seedDemo(): the ticket list is replaced by the demo data.
func (s *AppService) SeedDemo(ctx context.Context) (domain.AppState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.machine.Authenticated() {
		return s.stateLocked(), ErrNotAuthenticated
	}
	if _, err := s.tickets.SeedDemo(ctx); err != nil {
		return s.stateLocked(), err
	}
	s.ticketsChangedLocked(ctx, "seed_demo")
	return s.stateLocked(), nil
}

// ReplaceTickets replaces the whole ticket list.
func (s *AppService) ReplaceTickets(ctx context.Context, tickets []domain.Ticket) (domain.AppState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.machine.Authenticated() {
		return s.stateLocked(), ErrNotAuthenticated
	}
	if err := s.tickets.ReplaceAll(ctx, tickets); err != nil {
		return s.stateLocked(), err
	}
	s.ticketsChangedLocked(ctx, "replace")
	return s.stateLocked(), nil
}

// CreateTicket adds an open ticket.
func (s *AppService) CreateTicket(ctx context.Context, title, description string) (domain.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.machine.Authenticated() {
		return domain.Ticket{}, ErrNotAuthenticated
	}
	ticket, err := s.tickets.Create(ctx, title, description)
	if err != nil {
		return domain.Ticket{}, err
	}
	s.ticketsChangedLocked(ctx, "create")
	return ticket, nil
}

// SetTicketStatus changes one ticket's status.
func (s *AppService) SetTicketStatus(ctx context.Context, id string, status domain.TicketStatus) (domain.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.machine.Authenticated() {
		return domain.Ticket{}, ErrNotAuthenticated
	}
	ticket, err := s.tickets.SetStatus(ctx, id, status)
	if err != nil {
		return domain.Ticket{}, err
	}
	s.ticketsChangedLocked(ctx, "set_status")
	return ticket, nil
}

// Close discards the login form and ignores any timer that fires later.
func (s *AppService) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	if s.form != nil {
		s.form.Close()
		s.form = nil
	}
}

// schedule runs fn on the clock under the application lock.
func (s *AppService) schedule(d time.Duration, fn func()) func() bool {
	timer := s.clock.AfterFunc(d, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.closed {
			return
		}
		fn()
	})
	return timer.Stop
}

// completeLogin runs under the lock from the login timer.
func (s *AppService) completeLogin(username string) error {
	ctx, cancel := context.WithTimeout(context.Background(), sessionWriteTimeout)
	defer cancel()

	if err := s.sessions.Open(ctx, username); err != nil {
		s.logger.Error("failed to open session", zap.Error(err))
		return err
	}
	tr := s.machine.LoginSucceeded()
	s.publishLocked(ctx, events.EventSessionOpened, events.SessionPayload{Username: username})
	s.afterTransitionLocked(ctx, tr)
	return nil
}

func (s *AppService) loginRejected(reason error) {
	s.publishLocked(context.Background(), events.EventLoginRejected, events.LoginRejectedPayload{Reason: reason.Error()})
}

func (s *AppService) afterTransitionLocked(ctx context.Context, tr navigation.Transition) {
	if tr.From != tr.To {
		s.publishLocked(ctx, events.EventViewChanged, events.ViewChangedPayload{From: tr.From, To: tr.To})
	}
	s.syncFormLocked()
}

// syncFormLocked ties the login form's lifetime to the login view: a fresh
// form on entry, cancellation on exit.
func (s *AppService) syncFormLocked() {
	if s.machine.View() == domain.ViewLogin {
		if s.form == nil {
			s.form = auth.NewLoginForm(s.checker, s.loginDelay, s.schedule, auth.LoginHooks{
				OnSuccess: s.completeLogin,
				OnReject:  s.loginRejected,
			})
		}
		return
	}
	if s.form != nil {
		s.form.Close()
		s.form = nil
	}
}

func (s *AppService) ticketsChangedLocked(ctx context.Context, cause string) {
	tickets := s.tickets.Tickets()
	s.publishLocked(ctx, events.EventTicketsReplaced, events.TicketsReplacedPayload{
		Cause:   cause,
		Count:   len(tickets),
		Summary: repository.Aggregate(tickets),
	})
}

func (s *AppService) publishLocked(ctx context.Context, eventType events.EventType, payload interface{}) {
	event := events.Event{Type: eventType, Timestamp: s.clock.Now(), Payload: payload}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed", zap.String("event_type", string(eventType)), zap.Error(err))
	}
}

func (s *AppService) stateLocked() domain.AppState {
	tickets := s.tickets.Tickets()
	state := domain.AppState{
		View:          s.machine.View(),
		Authenticated: s.machine.Authenticated(),
		Tickets:       tickets,
		Summary:       repository.Aggregate(tickets),
	}
	if s.form != nil {
		state.Login = domain.LoginState{Pending: s.form.Pending(), Error: s.form.Message()}
	}
	return state
}

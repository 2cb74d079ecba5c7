package service

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/ticketdesk/internal/events"
)

// AuditService logs application events and keeps the most recent ones for
// the activity endpoint.
type AuditService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	limit      int

	mu     sync.Mutex
	recent []events.Event
}

// NewAuditService creates the service. limit bounds the retained history.
func NewAuditService(dispatcher events.Dispatcher, logger *zap.Logger, limit int) *AuditService {
	if limit <= 0 {
		limit = 50
	}
	return &AuditService{
		dispatcher: dispatcher,
		logger:     logger,
		limit:      limit,
	}
}

// RegisterHandlers subscribes to events.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	a.dispatcher.Subscribe(events.EventViewChanged, a.handleViewChanged)
	a.dispatcher.Subscribe(events.EventSessionOpened, a.handleSession)
	a.dispatcher.Subscribe(events.EventSessionClosed, a.handleSession)
	a.dispatcher.Subscribe(events.EventLoginRejected, a.handleLoginRejected)
	a.dispatcher.Subscribe(events.EventTicketsReplaced, a.handleTicketsReplaced)
}

// Recent returns retained events, oldest first.
func (a *AuditService) Recent() []events.Event {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]events.Event(nil), a.recent...)
}

func (a *AuditService) handleViewChanged(_ context.Context, event events.Event) error {
	a.logger.Debug("ViewChanged", zap.Any("payload", event.Payload))
	a.record(event)
	return nil
}

func (a *AuditService) handleSession(_ context.Context, event events.Event) error {
	a.logger.Info(string(event.Type), zap.Any("payload", event.Payload))
	a.record(event)
	return nil
}

func (a *AuditService) handleLoginRejected(_ context.Context, event events.Event) error {
	a.logger.Info("LoginRejected", zap.Any("payload", event.Payload))
	a.record(event)
	return nil
}

func (a *AuditService) handleTicketsReplaced(_ context.Context, event events.Event) error {
	a.logger.Info("TicketsReplaced", zap.Any("payload", event.Payload))
	a.record(event)
	return nil
}

func (a *AuditService) record(event events.Event) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.recent = append(a.recent, event)
	if over := len(a.recent) - a.limit; over > 0 {
		a.recent = append([]events.Event(nil), a.recent[over:]...)
	}
}

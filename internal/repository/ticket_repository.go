package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/ticketdesk/internal/clock"
	"github.com/spec-kit/ticketdesk/internal/domain"
	"github.com/spec-kit/ticketdesk/internal/persistence"
)

var (
	// ErrDuplicateID is returned when a replacement list repeats an id.
	ErrDuplicateID = errors.New("duplicate ticket id")
	// ErrTicketNotFound is returned when no ticket has the requested id.
	ErrTicketNotFound = errors.New("ticket not found")
	// ErrInvalidStatus is returned for a status outside open/resolved/closed.
	ErrInvalidStatus = errors.New("invalid ticket status")
	// ErrTitleRequired is returned when a new ticket has a blank title.
	ErrTitleRequired = errors.New("ticket title required")
)

// TicketRepository owns the in-memory ticket list and mirrors it to the
// store under persistence.KeyTickets. Every mutation is written through
// before it becomes visible in memory, one mutation at a time.
type TicketRepository struct {
	mu      sync.Mutex
	store   persistence.Store
	clock   clock.Clock
	logger  *zap.Logger
	newID   func() string
	tickets []domain.Ticket
}

// NewTicketRepository builds an empty repository. Call Load to read the stored list.
func NewTicketRepository(store persistence.Store, clk clock.Clock, logger *zap.Logger) *TicketRepository {
	return &TicketRepository{
		store:   store,
		clock:   clk,
		logger:  logger,
		newID:   uuid.NewString,
		tickets: []domain.Ticket{},
	}
}

// Load reads the stored list into memory. A missing key yields an empty
// list. Unreadable or unparseable content is logged and also yields an
// empty list: Load never fails.
func (r *TicketRepository) Load(ctx context.Context) []domain.Ticket {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tickets = r.readStored(ctx)
	return cloneTickets(r.tickets)
}

func (r *TicketRepository) readStored(ctx context.Context) []domain.Ticket {
	raw, found, err := r.store.Get(ctx, persistence.KeyTickets)
	if err != nil {
		r.logger.Error("failed to read tickets from store", zap.Error(err))
		return []domain.Ticket{}
	}
	if !found {
		return []domain.Ticket{}
	}

	var tickets []domain.Ticket
	if err := json.Unmarshal([]byte(raw), &tickets); err != nil {
		r.logger.Error("failed to parse tickets from store",
			zap.String("key", persistence.KeyTickets),
			zap.Int("bytes", len(raw)),
			zap.Error(err))
		return []domain.Ticket{}
	}
	if tickets == nil {
		tickets = []domain.Ticket{}
	}
	return tickets
}

// Tickets returns a copy of the current list.
func (r *TicketRepository) Tickets() []domain.Ticket {
	r.mu.Lock()
	defer r.mu.Unlock()
	return cloneTickets(r.tickets)
}

// ReplaceAll swaps the whole list and persists it. Lists with repeated ids
// are rejected and leave the current list untouched.
func (r *TicketRepository) ReplaceAll(ctx context.Context, tickets []domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.replaceLocked(ctx, cloneTickets(tickets))
}

// SeedDemo discards the current list and installs the three demo tickets.
func (r *TicketRepository) SeedDemo(ctx context.Context) ([]domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	demo := DemoTickets(r.clock.Now())
	if err := r.replaceLocked(ctx, demo); err != nil {
		return nil, err
	}
	return cloneTickets(demo), nil
}

// Create appends a new open ticket with a generated id.
func (r *TicketRepository) Create(ctx context.Context, title, description string) (domain.Ticket, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return domain.Ticket{}, ErrTitleRequired
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	ticket := domain.Ticket{
		ID:          r.newID(),
		Title:       title,
		Description: strings.TrimSpace(description),
		Status:      domain.TicketStatusOpen,
		CreatedAt:   r.clock.Now().UnixMilli(),
	}
	next := append(cloneTickets(r.tickets), ticket)
	if err := r.replaceLocked(ctx, next); err != nil {
		return domain.Ticket{}, err
	}
	return ticket, nil
}

// SetStatus changes the status of the ticket with the given id.
func (r *TicketRepository) SetStatus(ctx context.Context, id string, status domain.TicketStatus) (domain.Ticket, error) {
	if !status.Valid() {
		return domain.Ticket{}, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	next := cloneTickets(r.tickets)
	for i := range next {
		if next[i].ID != id {
			continue
		}
		next[i].Status = status
		if err := r.replaceLocked(ctx, next); err != nil {
			return domain.Ticket{}, err
		}
		return next[i], nil
	}
	return domain.Ticket{}, fmt.Errorf("%w: %s", ErrTicketNotFound, id)
}

// replaceLocked persists next and, only once the write succeeded, makes it
// the in-memory list. Caller holds r.mu.
func (r *TicketRepository) replaceLocked(ctx context.Context, next []domain.Ticket) error {
	if next == nil {
		next = []domain.Ticket{}
	}
	if id, dup := firstDuplicateID(next); dup {
		return fmt.Errorf("%w: %s", ErrDuplicateID, id)
	}

	payload, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("encode tickets: %w", err)
	}
	if err := r.store.Set(ctx, persistence.KeyTickets, string(payload)); err != nil {
		return fmt.Errorf("persist tickets: %w", err)
	}

	r.tickets = next
	r.logger.Debug("tickets persisted", zap.Int("count", len(next)))
	return nil
}

// DemoTickets returns the fixed sample data relative to now.
func DemoTickets(now time.Time) []domain.Ticket {
	return []domain.Ticket{
		{
			ID:          "t1",
			Title:       "Cannot login",
			Description: "User reports login failure.",
			Status:      domain.TicketStatusOpen,
			CreatedAt:   now.UnixMilli(),
		},
		{
			ID:          "t2",
			Title:       "UI bug on dashboard",
			Description: "Chart not rendering.",
			Status:      domain.TicketStatusResolved,
			CreatedAt:   now.Add(-time.Hour).UnixMilli(),
		},
		{
			ID:          "t3",
			Title:       "Feature request: export",
			Description: "Add CSV export.",
			Status:      domain.TicketStatusOpen,
			CreatedAt:   now.Add(-24 * time.Hour).UnixMilli(),
		},
	}
}

// Aggregate computes the dashboard counters. Closed tickets count as resolved;
// tickets with any other status only count toward the total.
func Aggregate(tickets []domain.Ticket) domain.TicketSummary {
	summary := domain.TicketSummary{Total: len(tickets)}
	for _, t := range tickets {
		switch t.Status {
		case domain.TicketStatusOpen:
			summary.Open++
		case domain.TicketStatusResolved, domain.TicketStatusClosed:
			summary.Resolved++
		}
	}
	return summary
}

func firstDuplicateID(tickets []domain.Ticket) (string, bool) {
	seen := make(map[string]struct{}, len(tickets))
	for _, t := range tickets {
		if _, ok := seen[t.ID]; ok {
			return t.ID, true
		}
		seen[t.ID] = struct{}{}
	}
	return "", false
}

func cloneTickets(tickets []domain.Ticket) []domain.Ticket {
	out := make([]domain.Ticket, len(tickets))
	copy(out, tickets)
	return out
}

package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen     TicketStatus = "open"
	TicketStatusResolved TicketStatus = "resolved"
	TicketStatusClosed   TicketStatus = "closed"
)

// Valid reports whether s is one of the known statuses. Tickets read back
// from storage may carry other values; they are kept verbatim.
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusOpen, TicketStatusResolved, TicketStatusClosed:
		return true
	}
	return false
}

// Ticket is a trackable unit of work. The JSON shape is the persisted
// record format and must stay stable.
type Ticket struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Status      TicketStatus `json:"status"`
	CreatedAt   int64        `json:"createdAt"`
}

// Created returns CreatedAt as a time.Time.
func (t Ticket) Created() time.Time {
	return time.UnixMilli(t.CreatedAt)
}

// TicketSummary holds the dashboard counters.
type TicketSummary struct {
	Total    int `json:"total"`
	Open     int `json:"open"`
	Resolved int `json:"resolved"`
}

package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "open"
	TicketStatusInProgress TicketStatus = "in-progress"
	TicketStatusResolved   TicketStatus = "resolved"
	TicketStatusClosed     TicketStatus = "closed"
)

// Valid reports whether s is a known status.
func (s TicketStatus) Valid() bool {
	return s.Rank() >= 0
}

// Rank orders statuses along the lifecycle; unknown statuses rank -1.
func (s TicketStatus) Rank() int {
	switch s {
	case TicketStatusOpen:
		return 0
	case TicketStatusInProgress:
		return 1
	case TicketStatusResolved:
		return 2
	case TicketStatusClosed:
		return 3
	}
	return -1
}

// TicketPriority enumerates urgency.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "low"
	TicketPriorityMedium TicketPriority = "medium"
	TicketPriorityHigh   TicketPriority = "high"
	TicketPriorityUrgent TicketPriority = "urgent"
)

// Valid reports whether p is a known priority.
func (p TicketPriority) Valid() bool {
	return p.Rank() >= 0
}

// Rank orders priorities by severity; unknown priorities rank -1.
func (p TicketPriority) Rank() int {
	switch p {
	case TicketPriorityLow:
		return 0
	case TicketPriorityMedium:
		return 1
	case TicketPriorityHigh:
		return 2
	case TicketPriorityUrgent:
		return 3
	}
	return -1
}

// Ticket is the aggregate for support requests.
type Ticket struct {
	ID          string
	Subject     string
	Description string
	Status      TicketStatus
	Priority    TicketPriority
	OwnerID     string
	CategoryID  *string
	AssigneeID  *string
	Upvotes     int
	Downvotes   int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TicketView is a ticket with display fields joined in from related records.
type TicketView struct {
	Ticket
	CategoryName  string
	CategoryColor string
	OwnerName     string
	OwnerEmail    string
	AssigneeName  string
	CommentCount  int
}

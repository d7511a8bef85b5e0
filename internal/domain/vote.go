package domain

import "time"

// VoteType is the direction of a vote.
type VoteType string

const (
	VoteUp   VoteType = "upvote"
	VoteDown VoteType = "downvote"
)

// Valid reports whether v is a known vote type.
func (v VoteType) Valid() bool {
	return v == VoteUp || v == VoteDown
}

// Vote ties one user to one ticket. At most one exists per (user, ticket).
type Vote struct {
	ID        string
	TicketID  string
	UserID    string
	Type      VoteType
	CreatedAt time.Time
}

// VoteTally is the per-type count of a ticket's votes.
type VoteTally struct {
	Upvotes   int
	Downvotes int
}

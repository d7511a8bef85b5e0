package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventTicketVoted         EventType = "ticket_voted"
	EventCommentAdded        EventType = "comment_added"
	EventPromotionRequested  EventType = "promotion_requested"
	EventPromotionResolved   EventType = "promotion_resolved"
)

// AllEventTypes lists every type services publish.
var AllEventTypes = []EventType{
	EventTicketCreated,
	EventTicketStatusChanged,
	EventTicketVoted,
	EventCommentAdded,
	EventPromotionRequested,
	EventPromotionResolved,
}

// Actor identifies who triggered an event. Guests have no UserID.
type Actor struct {
	UserID *string     `json:"user_id,omitempty"`
	Role   domain.Role `json:"role,omitempty"`
}

// Event represents a committed domain change. Notifications holds the
// records written in the same transaction.
type Event struct {
	ID            string                `json:"id"`
	Type          EventType             `json:"type"`
	TicketID      string                `json:"ticket_id,omitempty"`
	Actor         Actor                 `json:"actor"`
	Timestamp     time.Time             `json:"timestamp"`
	Payload       interface{}           `json:"payload"`
	Notifications []domain.Notification `json:"-"`
}

// New stamps an event with an id and time.
func New(eventType EventType, actor Actor, ticketID string, payload interface{}, notifications []domain.Notification) Event {
	return Event{
		ID:            uuid.NewString(),
		Type:          eventType,
		TicketID:      ticketID,
		Actor:         actor,
		Timestamp:     time.Now().UTC(),
		Payload:       payload,
		Notifications: notifications,
	}
}

// ActorFor builds an Actor from a signed-in identity.
func ActorFor(id domain.Identity) Actor {
	userID := id.UserID
	return Actor{UserID: &userID, Role: id.Role}
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Subject    string                `json:"subject"`
	Priority   domain.TicketPriority `json:"priority"`
	CategoryID *string               `json:"category_id,omitempty"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
}

// TicketVotedPayload payload.
type TicketVotedPayload struct {
	VoteType  domain.VoteType `json:"vote_type"`
	Upvotes   int             `json:"upvotes"`
	Downvotes int             `json:"downvotes"`
}

// CommentAddedPayload payload.
type CommentAddedPayload struct {
	CommentID   string  `json:"comment_id"`
	ParentID    *string `json:"parent_id,omitempty"`
	Public      bool    `json:"public"`
	BodyPreview string  `json:"body_preview"`
}

// PromotionRequestedPayload payload.
type PromotionRequestedPayload struct {
	RequestID     string      `json:"request_id"`
	RequestedRole domain.Role `json:"requested_role"`
}

// PromotionResolvedPayload payload.
type PromotionResolvedPayload struct {
	RequestID string                 `json:"request_id"`
	Status    domain.PromotionStatus `json:"status"`
	UserID    string                 `json:"user_id"`
}

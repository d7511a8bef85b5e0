package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// NotificationResponse body.
type NotificationResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	Read      bool      `json:"read"`
	TicketID  *string   `json:"ticket_id"`
	CreatedAt time.Time `json:"created_at"`
}

// MarkReadRequest payload. IDs must be present, even if empty.
type MarkReadRequest struct {
	IDs []string `json:"ids"`
}

func NewNotificationResponse(n *domain.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID,
		Title:     n.Title,
		Message:   n.Message,
		Type:      n.Type,
		Read:      n.Read,
		TicketID:  n.TicketID,
		CreatedAt: n.CreatedAt,
	}
}

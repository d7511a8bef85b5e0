package domain

import "time"

// Notification type tags.
const (
	NotificationTicket            = "ticket"
	NotificationComment           = "comment"
	NotificationStatus            = "status"
	NotificationPublicComment     = "public_comment"
	NotificationPromotionRequest  = "promotion_request"
	NotificationPromotionResponse = "promotion_response"
)

// Notification is a message addressed to one user.
type Notification struct {
	ID        string
	UserID    string
	Title     string
	Message   string
	Type      string
	Read      bool
	TicketID  *string
	CreatedAt time.Time
}

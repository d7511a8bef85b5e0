package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Subject     string                `json:"subject"`
	Description string                `json:"description"`
	CategoryID  *string               `json:"category_id"`
	Priority    domain.TicketPriority `json:"priority"`
}

// UpdateTicketRequest payload. Omitted fields are left unchanged; an empty
// assigned_to clears the assignment.
type UpdateTicketRequest struct {
	Subject     *string                `json:"subject"`
	Description *string                `json:"description"`
	Status      *domain.TicketStatus   `json:"status"`
	Priority    *domain.TicketPriority `json:"priority"`
	AssignedTo  *string                `json:"assigned_to"`
}

// VoteRequest payload.
type VoteRequest struct {
	VoteType domain.VoteType `json:"vote_type"`
}

// VoteResponse carries the recounted totals.
type VoteResponse struct {
	Upvotes   int `json:"upvotes"`
	Downvotes int `json:"downvotes"`
}

// TicketResponse is a ticket with its joined display fields.
type TicketResponse struct {
	ID             string                `json:"id"`
	Subject        string                `json:"subject"`
	Description    string                `json:"description"`
	Status         domain.TicketStatus   `json:"status"`
	Priority       domain.TicketPriority `json:"priority"`
	CategoryID     *string               `json:"category_id"`
	CategoryName   string                `json:"category_name,omitempty"`
	CategoryColor  string                `json:"category_color,omitempty"`
	UserID         string                `json:"user_id"`
	UserName       string                `json:"user_name,omitempty"`
	UserEmail      string                `json:"user_email,omitempty"`
	AssignedTo     *string               `json:"assigned_to"`
	AssignedToName string                `json:"assigned_user_name,omitempty"`
	Upvotes        int                   `json:"upvotes"`
	Downvotes      int                   `json:"downvotes"`
	CommentCount   int                   `json:"comment_count"`
	CreatedAt      time.Time             `json:"created_at"`
	UpdatedAt      time.Time             `json:"updated_at"`
}

// Pagination describes a page of results.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// TicketListResponse is one page of tickets.
type TicketListResponse struct {
	Tickets    []TicketResponse `json:"tickets"`
	Pagination Pagination       `json:"pagination"`
}

// NewTicketResponse maps a hydrated ticket.
func NewTicketResponse(v *domain.TicketView) TicketResponse {
	return TicketResponse{
		ID:             v.ID,
		Subject:        v.Subject,
		Description:    v.Description,
		Status:         v.Status,
		Priority:       v.Priority,
		CategoryID:     v.CategoryID,
		CategoryName:   v.CategoryName,
		CategoryColor:  v.CategoryColor,
		UserID:         v.OwnerID,
		UserName:       v.OwnerName,
		UserEmail:      v.OwnerEmail,
		AssignedTo:     v.AssigneeID,
		AssignedToName: v.AssigneeName,
		Upvotes:        v.Upvotes,
		Downvotes:      v.Downvotes,
		CommentCount:   v.CommentCount,
		CreatedAt:      v.CreatedAt,
		UpdatedAt:      v.UpdatedAt,
	}
}

package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// CreateCommentRequest payload for signed-in authors.
type CreateCommentRequest struct {
	Content  string  `json:"content"`
	ParentID *string `json:"parent_id"`
}

// PublicCommentRequest payload for guests.
type PublicCommentRequest struct {
	Content  string  `json:"content"`
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	ParentID *string `json:"parent_id"`
}

// CommentResponse is a comment and its replies.
type CommentResponse struct {
	ID          string            `json:"id"`
	TicketID    string            `json:"ticket_id"`
	UserID      *string           `json:"user_id"`
	AuthorName  string            `json:"author_name"`
	AuthorEmail string            `json:"author_email,omitempty"`
	AuthorRole  string            `json:"author_role"`
	Content     string            `json:"content"`
	ParentID    *string           `json:"parent_id"`
	CreatedAt   time.Time         `json:"created_at"`
	Replies     []CommentResponse `json:"replies"`
}

// CommentThreadResponse is a ticket's comment tree.
type CommentThreadResponse struct {
	Comments []CommentResponse `json:"comments"`
	Total    int               `json:"total"`
}

// NewCommentResponse maps a single comment. Emails are dropped unless
// withEmail is set.
func NewCommentResponse(c *domain.Comment, withEmail bool) CommentResponse {
	resp := CommentResponse{
		ID:         c.ID,
		TicketID:   c.TicketID,
		UserID:     c.AuthorID,
		AuthorName: c.AuthorName,
		AuthorRole: c.AuthorRole,
		Content:    c.Content,
		ParentID:   c.ParentID,
		CreatedAt:  c.CreatedAt,
		Replies:    []CommentResponse{},
	}
	if withEmail {
		resp.AuthorEmail = c.AuthorEmail
	}
	return resp
}

// NewCommentThreadResponse maps a tree of nodes.
func NewCommentThreadResponse(roots []*domain.CommentNode, total int, withEmail bool) CommentThreadResponse {
	return CommentThreadResponse{Comments: mapNodes(roots, withEmail), Total: total}
}

func mapNodes(nodes []*domain.CommentNode, withEmail bool) []CommentResponse {
	out := make([]CommentResponse, 0, len(nodes))
	for _, node := range nodes {
		resp := NewCommentResponse(&node.Comment, withEmail)
		resp.Replies = mapNodes(node.Replies, withEmail)
		out = append(out, resp)
	}
	return out
}

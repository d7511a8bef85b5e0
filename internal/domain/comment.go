package domain

import "time"

// GuestRole is the synthetic role attached to anonymous public comments.
const GuestRole = "guest"

// Comment is a message on a ticket. Registered authors carry AuthorID;
// guests carry AuthorName/AuthorEmail and AuthorRole "guest".
type Comment struct {
	ID          string
	TicketID    string
	AuthorID    *string
	AuthorName  string
	AuthorEmail string
	AuthorRole  string
	Content     string
	ParentID    *string
	CreatedAt   time.Time
}

// IsGuest reports whether the comment was posted without an account.
func (c *Comment) IsGuest() bool {
	return c.AuthorID == nil
}

// CommentNode is a comment placed in its reply tree.
type CommentNode struct {
	Comment
	Replies []*CommentNode
}

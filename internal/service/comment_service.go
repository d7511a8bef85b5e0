package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

const anonymousName = "Anonymous"

// CommentService manages ticket discussions for members and guests.
type CommentService struct {
	store      repository.Store
	policy     *auth.RolePolicy
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// CommentInput is a signed-in author's comment.
type CommentInput struct {
	Content  string
	ParentID *string
}

// GuestCommentInput is an anonymous comment with optional contact details.
type GuestCommentInput struct {
	Content  string
	Name     string
	Email    string
	ParentID *string
}

// CommentThread is a ticket's reply tree and its node count. Author
// emails are only meant for readers with ShowEmails set.
type CommentThread struct {
	Roots      []*domain.CommentNode
	Total      int
	ShowEmails bool
}

// NewCommentService constructs the service.
func NewCommentService(store repository.Store, policy *auth.RolePolicy, dispatcher events.Dispatcher, logger *zap.Logger) *CommentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CommentService{store: store, policy: policy, dispatcher: dispatcher, logger: logger}
}

// ListThread returns the threaded comments of a ticket to any signed-in
// actor. Emails are shown to the ticket owner and to agents and admins.
func (s *CommentService) ListThread(ctx context.Context, actor domain.Identity, ticketID string) (*CommentThread, error) {
	ticket, thread, err := s.thread(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	thread.ShowEmails = ticket.OwnerID == actor.UserID || s.policy.IsStaff(actor.Role)
	return thread, nil
}

// ListPublicThread returns the threaded comments of a ticket without emails.
func (s *CommentService) ListPublicThread(ctx context.Context, ticketID string) (*CommentThread, error) {
	_, thread, err := s.thread(ctx, ticketID)
	return thread, err
}

func (s *CommentService) thread(ctx context.Context, ticketID string) (*domain.Ticket, *CommentThread, error) {
	repos := s.store.Repos()
	ticket, err := repos.Tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, nil, storeError(err, "ticket")
	}
	comments, err := repos.Comments.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, nil, storeError(err, "comment")
	}
	if err := hydrateComments(ctx, repos, comments); err != nil {
		return nil, nil, storeError(err, "comment")
	}

	roots := BuildThread(comments)
	return ticket, &CommentThread{Roots: roots, Total: CountThread(roots)}, nil
}

// AddComment posts a comment by actor. The ticket owner is notified unless
// they wrote it.
func (s *CommentService) AddComment(ctx context.Context, actor domain.Identity, ticketID string, input CommentInput) (*domain.Comment, error) {
	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, apperrors.NewValidationError("content is required", nil)
	}

	authorID := actor.UserID
	comment := &domain.Comment{
		TicketID:    ticketID,
		AuthorID:    &authorID,
		AuthorName:  actor.Name,
		AuthorEmail: actor.Email,
		AuthorRole:  string(actor.Role),
		Content:     content,
	}
	if input.ParentID != nil {
		comment.ParentID = optionalString(*input.ParentID)
	}

	var created []domain.Notification
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		ticket, err := s.prepare(ctx, repos, comment)
		if err != nil {
			return err
		}
		if ticket.OwnerID == actor.UserID {
			return nil
		}
		created, err = notifyUsers(ctx, repos, []string{ticket.OwnerID}, domain.Notification{
			Title:    "New Comment",
			Message:  actor.Name + " commented on your ticket",
			Type:     domain.NotificationComment,
			TicketID: &ticket.ID,
		})
		return err
	})
	if err != nil {
		return nil, storeError(err, "ticket")
	}

	s.publish(ctx, events.ActorFor(actor), comment, false, created)
	return comment, nil
}

// AddGuestComment posts an anonymous comment and notifies the ticket owner.
func (s *CommentService) AddGuestComment(ctx context.Context, ticketID string, input GuestCommentInput) (*domain.Comment, error) {
	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, apperrors.NewValidationError("comment content is required", nil)
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		name = anonymousName
	}

	comment := &domain.Comment{
		TicketID:    ticketID,
		AuthorName:  name,
		AuthorEmail: strings.TrimSpace(input.Email),
		AuthorRole:  domain.GuestRole,
		Content:     content,
	}
	if input.ParentID != nil {
		comment.ParentID = optionalString(*input.ParentID)
	}

	var created []domain.Notification
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		ticket, err := s.prepare(ctx, repos, comment)
		if err != nil {
			return err
		}
		created, err = notifyUsers(ctx, repos, []string{ticket.OwnerID}, domain.Notification{
			Title:    "New Public Comment",
			Message:  `Someone commented on your ticket: "` + ticket.Subject + `"`,
			Type:     domain.NotificationPublicComment,
			TicketID: &ticket.ID,
		})
		return err
	})
	if err != nil {
		return nil, storeError(err, "ticket")
	}

	s.publish(ctx, events.Actor{Role: domain.Role(domain.GuestRole)}, comment, true, created)
	return comment, nil
}

// prepare checks the ticket and parent, then stores comment.
func (s *CommentService) prepare(ctx context.Context, repos repository.Repositories, comment *domain.Comment) (*domain.Ticket, error) {
	ticket, err := repos.Tickets.GetByID(ctx, comment.TicketID)
	if err != nil {
		return nil, err
	}
	if comment.ParentID != nil {
		parent, err := repos.Comments.GetByID(ctx, *comment.ParentID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, apperrors.NewValidationError("parent comment does not exist", map[string]any{"parent_id": *comment.ParentID})
			}
			return nil, err
		}
		if parent.TicketID != comment.TicketID {
			return nil, apperrors.NewValidationError("parent comment belongs to another ticket", map[string]any{"parent_id": *comment.ParentID})
		}
	}
	if err := repos.Comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	return ticket, nil
}

func (s *CommentService) publish(ctx context.Context, actor events.Actor, comment *domain.Comment, public bool, created []domain.Notification) {
	publishEvent(ctx, s.dispatcher, events.New(events.EventCommentAdded, actor, comment.TicketID,
		events.CommentAddedPayload{
			CommentID:   comment.ID,
			ParentID:    comment.ParentID,
			Public:      public,
			BodyPreview: stringPreview(comment.Content, 120),
		}, created))
}

// hydrateComments refreshes member author names and roles from their
// accounts with one batched lookup. Guest comments keep what they stored.
func hydrateComments(ctx context.Context, repos repository.Repositories, comments []domain.Comment) error {
	ids := make([]string, 0, len(comments))
	seen := map[string]struct{}{}
	for _, comment := range comments {
		if comment.AuthorID == nil {
			continue
		}
		if _, ok := seen[*comment.AuthorID]; !ok {
			seen[*comment.AuthorID] = struct{}{}
			ids = append(ids, *comment.AuthorID)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	users, err := repos.Users.GetMany(ctx, ids)
	if err != nil {
		return err
	}
	for i := range comments {
		if comments[i].AuthorID == nil {
			continue
		}
		if user, ok := users[*comments[i].AuthorID]; ok {
			comments[i].AuthorName = user.Name
			comments[i].AuthorEmail = user.Email
			comments[i].AuthorRole = string(user.Role)
		}
	}
	return nil
}

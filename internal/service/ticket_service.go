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

// TicketService coordinates ticket workflows.
type TicketService struct {
	store      repository.Store
	policy     *auth.RolePolicy
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	Store      repository.Store
	Policy     *auth.RolePolicy
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Subject     string
	Description string
	CategoryID  *string
	Priority    domain.TicketPriority
}

// TicketUpdateInput carries optional ticket changes. An empty AssigneeID
// clears the assignment.
type TicketUpdateInput struct {
	Subject     *string
	Description *string
	Status      *domain.TicketStatus
	Priority    *domain.TicketPriority
	AssigneeID  *string
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TicketService{
		store:      deps.Store,
		policy:     deps.Policy,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// CreateTicket files a ticket for actor and notifies every other agent and admin.
func (s *TicketService) CreateTicket(ctx context.Context, actor domain.Identity, input TicketCreateInput) (*domain.TicketView, error) {
	subject := strings.TrimSpace(input.Subject)
	description := strings.TrimSpace(input.Description)
	if subject == "" || description == "" {
		return nil, apperrors.NewValidationError("subject and description are required", nil)
	}
	priority := input.Priority
	if priority == "" {
		priority = domain.TicketPriorityMedium
	}
	if !priority.Valid() {
		return nil, apperrors.NewValidationError("invalid priority", map[string]any{"priority": priority})
	}

	ticket := &domain.Ticket{
		Subject:     subject,
		Description: description,
		Status:      domain.TicketStatusOpen,
		Priority:    priority,
		OwnerID:     actor.UserID,
	}
	if input.CategoryID != nil {
		ticket.CategoryID = optionalString(*input.CategoryID)
	}

	var created []domain.Notification
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if ticket.CategoryID != nil {
			if _, err := repos.Categories.GetByID(ctx, *ticket.CategoryID); err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return apperrors.NewValidationError("unknown category", map[string]any{"category_id": *ticket.CategoryID})
				}
				return err
			}
		}
		if err := repos.Tickets.Create(ctx, ticket); err != nil {
			return err
		}

		recipients, err := staffRecipients(ctx, repos, actor.UserID)
		if err != nil {
			return err
		}
		ticketID := ticket.ID
		created, err = notifyUsers(ctx, repos, recipients, domain.Notification{
			Title:    "New Ticket Created",
			Message:  "New ticket: " + ticket.Subject,
			Type:     domain.NotificationTicket,
			TicketID: &ticketID,
		})
		return err
	})
	if err != nil {
		return nil, storeError(err, "ticket")
	}

	publishEvent(ctx, s.dispatcher, events.New(events.EventTicketCreated, events.ActorFor(actor), ticket.ID,
		events.TicketCreatedPayload{
			Subject:    ticket.Subject,
			Priority:   ticket.Priority,
			CategoryID: ticket.CategoryID,
		}, created))

	return s.view(ctx, ticket)
}

// GetTicket returns a ticket visible to actor: its owner or any agent+.
func (s *TicketService) GetTicket(ctx context.Context, actor domain.Identity, ticketID string) (*domain.TicketView, error) {
	ticket, err := s.store.Repos().Tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, storeError(err, "ticket")
	}
	if !s.canAccess(actor, ticket) {
		return nil, apperrors.NewForbidden("ticket belongs to another user")
	}
	return s.view(ctx, ticket)
}

// GetPublicTicket returns a ticket for anonymous viewers without the owner's email.
func (s *TicketService) GetPublicTicket(ctx context.Context, ticketID string) (*domain.TicketView, error) {
	ticket, err := s.store.Repos().Tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, storeError(err, "ticket")
	}
	view, err := s.view(ctx, ticket)
	if err != nil {
		return nil, err
	}
	view.OwnerEmail = ""
	return view, nil
}

// UpdateTicket applies input. Status and assignment changes need agent+;
// a status change notifies the owner in the same transaction.
func (s *TicketService) UpdateTicket(ctx context.Context, actor domain.Identity, ticketID string, input TicketUpdateInput) (*domain.TicketView, error) {
	staff := s.policy.IsStaff(actor.Role)
	if (input.Status != nil || input.AssigneeID != nil) && !staff {
		return nil, apperrors.NewForbidden("only agents and admins can change status or assignment")
	}
	if input.Status != nil && !input.Status.Valid() {
		return nil, apperrors.NewValidationError("invalid status", map[string]any{"status": *input.Status})
	}
	if input.Priority != nil && !input.Priority.Valid() {
		return nil, apperrors.NewValidationError("invalid priority", map[string]any{"priority": *input.Priority})
	}

	var (
		ticket    *domain.Ticket
		oldStatus domain.TicketStatus
		created   []domain.Notification
	)
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		var err error
		ticket, err = repos.Tickets.GetByID(ctx, ticketID)
		if err != nil {
			return err
		}
		if !s.canAccess(actor, ticket) {
			return apperrors.NewForbidden("ticket belongs to another user")
		}
		oldStatus = ticket.Status

		if input.Subject != nil {
			subject := strings.TrimSpace(*input.Subject)
			if subject == "" {
				return apperrors.NewValidationError("subject cannot be empty", nil)
			}
			ticket.Subject = subject
		}
		if input.Description != nil {
			description := strings.TrimSpace(*input.Description)
			if description == "" {
				return apperrors.NewValidationError("description cannot be empty", nil)
			}
			ticket.Description = description
		}
		if input.Priority != nil {
			ticket.Priority = *input.Priority
		}
		if input.Status != nil {
			ticket.Status = *input.Status
		}
		if input.AssigneeID != nil {
			assignee := optionalString(*input.AssigneeID)
			if assignee != nil {
				if _, err := repos.Users.GetByID(ctx, *assignee); err != nil {
					if errors.Is(err, repository.ErrNotFound) {
						return apperrors.NewNotFound("assignee", map[string]any{"assigned_to": *assignee})
					}
					return err
				}
			}
			ticket.AssigneeID = assignee
		}

		if err := repos.Tickets.Update(ctx, ticket); err != nil {
			return err
		}

		if ticket.Status != oldStatus {
			ticketID := ticket.ID
			created, err = notifyUsers(ctx, repos, []string{ticket.OwnerID}, domain.Notification{
				Title:    "Ticket Status Updated",
				Message:  "Your ticket status changed to: " + string(ticket.Status),
				Type:     domain.NotificationStatus,
				TicketID: &ticketID,
			})
			return err
		}
		return nil
	})
	if err != nil {
		return nil, storeError(err, "ticket")
	}

	if ticket.Status != oldStatus {
		publishEvent(ctx, s.dispatcher, events.New(events.EventTicketStatusChanged, events.ActorFor(actor), ticket.ID,
			events.TicketStatusChangedPayload{OldStatus: oldStatus, NewStatus: ticket.Status}, created))
	}
	return s.view(ctx, ticket)
}

func (s *TicketService) canAccess(actor domain.Identity, ticket *domain.Ticket) bool {
	return ticket.OwnerID == actor.UserID || s.policy.IsStaff(actor.Role)
}

func (s *TicketService) view(ctx context.Context, ticket *domain.Ticket) (*domain.TicketView, error) {
	views, err := hydrateTickets(ctx, s.store.Repos(), []domain.Ticket{*ticket})
	if err != nil {
		return nil, storeError(err, "ticket")
	}
	return &views[0], nil
}

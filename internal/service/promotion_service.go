package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// PromotionService runs the role promotion workflow:
// no request -> pending -> approved | rejected. Resolved requests are final.
type PromotionService struct {
	store      repository.Store
	policy     *auth.RolePolicy
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// PromotionStatusView answers "what happened to my latest request".
// Request is nil when the user never asked.
type PromotionStatusView struct {
	Requested bool
	Request   *domain.PromotionRequest
}

// NewPromotionService constructs the service.
func NewPromotionService(store repository.Store, policy *auth.RolePolicy, dispatcher events.Dispatcher, logger *zap.Logger) *PromotionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PromotionService{store: store, policy: policy, dispatcher: dispatcher, logger: logger}
}

// Request files a promotion request for actor and notifies every admin.
func (s *PromotionService) Request(ctx context.Context, actor domain.Identity, requested domain.Role, reason string) (*domain.PromotionRequest, error) {
	if requested != domain.RoleAgent && requested != domain.RoleAdmin {
		return nil, apperrors.NewValidationError("invalid role requested, must be 'agent' or 'admin'", map[string]any{"role": requested})
	}

	var (
		req     *domain.PromotionRequest
		created []domain.Notification
	)
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		user, err := repos.Users.GetByID(ctx, actor.UserID)
		if err != nil {
			return err
		}
		if user.Role == requested {
			return apperrors.NewValidationError(fmt.Sprintf("you are already a %s", requested), nil)
		}
		if user.Role == domain.RoleAdmin && requested == domain.RoleAgent {
			return apperrors.NewValidationError("admins cannot request to be demoted to agent", nil)
		}
		if _, err := repos.Promotions.FindPendingByUser(ctx, user.ID); err == nil {
			return errPendingPromotion
		} else if !errors.Is(err, repository.ErrNotFound) {
			return err
		}

		reason := strings.TrimSpace(reason)
		if reason == "" {
			reason = fmt.Sprintf("User requested promotion from %s to %s", user.Role, requested)
		}
		req = &domain.PromotionRequest{
			UserID:        user.ID,
			UserName:      user.Name,
			UserEmail:     user.Email,
			CurrentRole:   user.Role,
			RequestedRole: requested,
			Reason:        reason,
			Status:        domain.PromotionPending,
		}
		if err := repos.Promotions.Create(ctx, req); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return errPendingPromotion
			}
			return err
		}

		admins, err := adminRecipients(ctx, repos)
		if err != nil {
			return err
		}
		created, err = notifyUsers(ctx, repos, admins, domain.Notification{
			Title:   "New Promotion Request",
			Message: fmt.Sprintf("%s (%s) has requested promotion from %s to %s", user.Name, user.Email, user.Role, requested),
			Type:    domain.NotificationPromotionRequest,
		})
		return err
	})
	if err != nil {
		return nil, storeError(err, "user")
	}

	s.logger.Info("promotion requested",
		zap.String("request_id", req.ID),
		zap.String("user_id", req.UserID),
		zap.String("requested_role", string(req.RequestedRole)))
	publishEvent(ctx, s.dispatcher, events.New(events.EventPromotionRequested, events.ActorFor(actor), "",
		events.PromotionRequestedPayload{RequestID: req.ID, RequestedRole: req.RequestedRole}, created))
	return req, nil
}

var errPendingPromotion = apperrors.NewValidationError("you already have a pending promotion request", nil)

// Status returns actor's most recent request, if any.
func (s *PromotionService) Status(ctx context.Context, actor domain.Identity) (*PromotionStatusView, error) {
	req, err := s.store.Repos().Promotions.LatestByUser(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &PromotionStatusView{Requested: false}, nil
		}
		return nil, storeError(err, "promotion request")
	}
	return &PromotionStatusView{Requested: true, Request: req}, nil
}

// List returns requests newest first, optionally by status. Admin only.
func (s *PromotionService) List(ctx context.Context, actor domain.Identity, status string) ([]domain.PromotionRequest, error) {
	if !s.policy.Allows(actor.Role, domain.RoleAdmin) {
		return nil, apperrors.NewForbidden("admin role required")
	}
	var filter *domain.PromotionStatus
	if status = strings.TrimSpace(status); status != "" && status != filterAll {
		st := domain.PromotionStatus(status)
		if !st.Valid() {
			return nil, apperrors.NewValidationError("invalid status filter", map[string]any{"status": status})
		}
		filter = &st
	}
	requests, err := s.store.Repos().Promotions.List(ctx, filter)
	if err != nil {
		return nil, storeError(err, "promotion request")
	}
	return requests, nil
}

// Resolve approves or rejects a pending request. The request update, the
// role change and the requester's notification commit together.
func (s *PromotionService) Resolve(ctx context.Context, actor domain.Identity, requestID string, action domain.PromotionAction, reason string) (*domain.PromotionRequest, error) {
	if !s.policy.Allows(actor.Role, domain.RoleAdmin) {
		return nil, apperrors.NewForbidden("admin role required")
	}
	if action != domain.PromotionApprove && action != domain.PromotionReject {
		return nil, apperrors.NewValidationError("invalid action, must be 'approve' or 'reject'", map[string]any{"action": action})
	}
	reason = strings.TrimSpace(reason)

	var (
		req     *domain.PromotionRequest
		created []domain.Notification
	)
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		var err error
		req, err = repos.Promotions.GetByID(ctx, requestID)
		if err != nil {
			return err
		}
		if req.Status != domain.PromotionPending {
			return errAlreadyResolved
		}

		reviewer := actor.UserID
		reviewedAt := time.Now().UTC()
		adminReason := reason
		req.ReviewedBy = &reviewer
		req.ReviewedAt = &reviewedAt
		req.AdminReason = &adminReason

		var n domain.Notification
		if action == domain.PromotionApprove {
			req.Status = domain.PromotionApproved
			user, err := repos.Users.GetByID(ctx, req.UserID)
			if err != nil {
				return err
			}
			user.Role = req.RequestedRole
			if err := repos.Users.Update(ctx, user); err != nil {
				return err
			}
			n = domain.Notification{
				Title:   "Promotion Approved",
				Message: fmt.Sprintf("Your promotion request to %s has been approved!", req.RequestedRole),
			}
		} else {
			req.Status = domain.PromotionRejected
			shown := reason
			if shown == "" {
				shown = "No reason provided"
			}
			n = domain.Notification{
				Title:   "Promotion Rejected",
				Message: fmt.Sprintf("Your promotion request to %s was rejected: %s", req.RequestedRole, shown),
			}
		}

		if err := repos.Promotions.Resolve(ctx, req); err != nil {
			if errors.Is(err, repository.ErrStaleState) {
				return errAlreadyResolved
			}
			return err
		}

		n.Type = domain.NotificationPromotionResponse
		created, err = notifyUsers(ctx, repos, []string{req.UserID}, n)
		return err
	})
	if err != nil {
		return nil, storeError(err, "promotion request")
	}

	s.logger.Info("promotion resolved",
		zap.String("request_id", req.ID),
		zap.String("user_id", req.UserID),
		zap.String("status", string(req.Status)),
		zap.String("reviewed_by", actor.UserID))
	publishEvent(ctx, s.dispatcher, events.New(events.EventPromotionResolved, events.ActorFor(actor), "",
		events.PromotionResolvedPayload{RequestID: req.ID, Status: req.Status, UserID: req.UserID}, created))
	return req, nil
}

var errAlreadyResolved = apperrors.NewValidationError("promotion request has already been resolved", nil)

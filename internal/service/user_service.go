package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// UserService exposes account administration.
type UserService struct {
	store  repository.Store
	policy *auth.RolePolicy
	logger *zap.Logger
}

// NewUserService constructs the service.
func NewUserService(store repository.Store, policy *auth.RolePolicy, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{store: store, policy: policy, logger: logger}
}

// List returns all accounts, newest first. Agents and admins only.
func (s *UserService) List(ctx context.Context, actor domain.Identity) ([]domain.User, error) {
	if !s.policy.IsStaff(actor.Role) {
		return nil, apperrors.NewForbidden("agent role required")
	}
	users, err := s.store.Repos().Users.List(ctx)
	if err != nil {
		return nil, storeError(err, "user")
	}
	return users, nil
}

// UpdateRole sets a user's role directly. Admin only.
func (s *UserService) UpdateRole(ctx context.Context, actor domain.Identity, userID string, role domain.Role) (*domain.User, error) {
	if !s.policy.Allows(actor.Role, domain.RoleAdmin) {
		return nil, apperrors.NewForbidden("admin role required")
	}
	if !role.Valid() {
		return nil, apperrors.NewValidationError("invalid role", map[string]any{"role": role})
	}

	users := s.store.Repos().Users
	user, err := users.GetByID(ctx, userID)
	if err != nil {
		return nil, storeError(err, "user")
	}
	previous := user.Role
	user.Role = role
	if err := users.Update(ctx, user); err != nil {
		return nil, storeError(err, "user")
	}

	s.logger.Info("role changed",
		zap.String("user_id", user.ID),
		zap.String("from", string(previous)),
		zap.String("to", string(role)),
		zap.String("changed_by", actor.UserID))
	return user, nil
}

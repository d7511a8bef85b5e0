package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// AuthService coordinates registration, login and profile flows.
type AuthService struct {
	store      repository.Store
	tokenMgr   *auth.TokenManager
	bcryptCost int
	logger     *zap.Logger
}

// AuthResult is a signed-in user with a fresh session.
type AuthResult struct {
	User    *domain.User
	Session domain.Session
}

// ProfileUpdateInput carries optional profile changes.
type ProfileUpdateInput struct {
	Name  *string
	Email *string
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, store repository.Store, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		store:      store,
		tokenMgr:   auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL()),
		bcryptCost: cfg.BcryptCost,
		logger:     logger,
	}
}

// Register creates a new end-user account and signs it in.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*AuthResult, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if name == "" || email == "" || password == "" {
		return nil, apperrors.NewValidationError("name, email and password are required", nil)
	}
	if !strings.Contains(email, "@") {
		return nil, apperrors.NewValidationError("email is malformed", map[string]any{"field": "email"})
	}

	users := s.store.Repos().Users
	if _, err := users.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewValidationError("user already exists", map[string]any{"field": "email"})
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, storeError(err, "user")
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleEndUser,
	}
	if err := users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, apperrors.NewValidationError("user already exists", map[string]any{"field": "email"})
		}
		return nil, storeError(err, "user")
	}
	s.logger.Info("user registered", zap.String("user_id", user.ID))

	return s.issue(user)
}

// Login authenticates by email and password.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, apperrors.NewValidationError("missing email or password", nil)
	}

	user, err := s.store.Repos().Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, storeError(err, "user")
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}
	return s.issue(user)
}

// Profile returns the caller's own account.
func (s *AuthService) Profile(ctx context.Context, actor domain.Identity) (*domain.User, error) {
	user, err := s.store.Repos().Users.GetByID(ctx, actor.UserID)
	if err != nil {
		return nil, storeError(err, "user")
	}
	return user, nil
}

// UpdateProfile changes the caller's name and/or email.
func (s *AuthService) UpdateProfile(ctx context.Context, actor domain.Identity, input ProfileUpdateInput) (*domain.User, error) {
	users := s.store.Repos().Users
	user, err := users.GetByID(ctx, actor.UserID)
	if err != nil {
		return nil, storeError(err, "user")
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, apperrors.NewValidationError("name cannot be empty", map[string]any{"field": "name"})
		}
		user.Name = name
	}
	if input.Email != nil {
		email := normalizeEmail(*input.Email)
		if email == "" || !strings.Contains(email, "@") {
			return nil, apperrors.NewValidationError("email is malformed", map[string]any{"field": "email"})
		}
		user.Email = email
	}

	if err := users.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, apperrors.NewValidationError("email already in use", map[string]any{"field": "email"})
		}
		return nil, storeError(err, "user")
	}
	return user, nil
}

// ChangePassword verifies the current password before storing the new hash.
func (s *AuthService) ChangePassword(ctx context.Context, actor domain.Identity, currentPassword, newPassword string) error {
	if currentPassword == "" || newPassword == "" {
		return apperrors.NewValidationError("current and new password are required", nil)
	}
	users := s.store.Repos().Users
	user, err := users.GetByID(ctx, actor.UserID)
	if err != nil {
		return storeError(err, "user")
	}
	if err := auth.ComparePassword(user.PasswordHash, currentPassword); err != nil {
		return apperrors.NewValidationError("current password is incorrect", map[string]any{"field": "current_password"})
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	user.PasswordHash = hash
	if err := users.Update(ctx, user); err != nil {
		return storeError(err, "user")
	}
	s.logger.Info("password changed", zap.String("user_id", user.ID))
	return nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *AuthService) issue(user *domain.User) (*AuthResult, error) {
	session, err := s.tokenMgr.GenerateToken(user)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &AuthResult{User: user, Session: session}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

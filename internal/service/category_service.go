package service

import (
	"context"
	"strings"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// CategoryService lists and creates ticket categories.
type CategoryService struct {
	store  repository.Store
	policy *auth.RolePolicy
}

// NewCategoryService constructs the service.
func NewCategoryService(store repository.Store, policy *auth.RolePolicy) *CategoryService {
	return &CategoryService{store: store, policy: policy}
}

// List returns every category ordered by name.
func (s *CategoryService) List(ctx context.Context) ([]domain.Category, error) {
	categories, err := s.store.Repos().Categories.List(ctx)
	if err != nil {
		return nil, storeError(err, "category")
	}
	return categories, nil
}

// Create adds a category. Admin only.
func (s *CategoryService) Create(ctx context.Context, actor domain.Identity, name, description, color string) (*domain.Category, error) {
	if !s.policy.Allows(actor.Role, domain.RoleAdmin) {
		return nil, apperrors.NewForbidden("admin role required")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError("name is required", map[string]any{"field": "name"})
	}
	color = strings.TrimSpace(color)
	if color == "" {
		color = domain.DefaultCategoryColor
	}

	category := &domain.Category{
		Name:        name,
		Description: strings.TrimSpace(description),
		Color:       color,
	}
	if err := s.store.Repos().Categories.Create(ctx, category); err != nil {
		return nil, storeError(err, "category")
	}
	return category, nil
}

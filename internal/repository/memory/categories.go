package memory

import (
	"context"
	"sort"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
)

type categoryRepository struct {
	v view
}

func (r *categoryRepository) Create(ctx context.Context, category *domain.Category) error {
	return r.v.write(func(st *state) error {
		category.ID = newID()
		category.CreatedAt = r.v.now()
		st.categories = append(st.categories, *category)
		return nil
	})
}

func (r *categoryRepository) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	var found *domain.Category
	err := r.v.read(func(st *state) error {
		for _, category := range st.categories {
			if category.ID == id {
				c := category
				found = &c
				return nil
			}
		}
		return repository.ErrNotFound
	})
	return found, err
}

func (r *categoryRepository) GetMany(ctx context.Context, ids []string) (map[string]domain.Category, error) {
	result := make(map[string]domain.Category, len(ids))
	err := r.v.read(func(st *state) error {
		for _, category := range st.categories {
			if containsString(ids, category.ID) {
				result[category.ID] = category
			}
		}
		return nil
	})
	return result, err
}

func (r *categoryRepository) List(ctx context.Context) ([]domain.Category, error) {
	result := []domain.Category{}
	err := r.v.read(func(st *state) error {
		result = append(result, st.categories...)
		return nil
	})
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result, err
}

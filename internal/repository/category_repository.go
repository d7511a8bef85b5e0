package repository

import (
	"context"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// CategoryRepository manages ticket categories.
type CategoryRepository interface {
	Create(ctx context.Context, category *domain.Category) error
	GetByID(ctx context.Context, id string) (*domain.Category, error)
	GetMany(ctx context.Context, ids []string) (map[string]domain.Category, error)
	List(ctx context.Context) ([]domain.Category, error)
}

type categoryRepository struct {
	db DBTX
}

// NewCategoryRepository builds repository.
func NewCategoryRepository(db DBTX) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) Create(ctx context.Context, category *domain.Category) error {
	const query = `
        INSERT INTO categories (name, description, color)
        VALUES ($1,$2,$3)
        RETURNING id, created_at`
	err := r.db.QueryRow(ctx, query,
		category.Name,
		category.Description,
		category.Color,
	).Scan(&category.ID, &category.CreatedAt)
	return translate(err)
}

func (r *categoryRepository) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	const query = `SELECT id, name, description, color, created_at FROM categories WHERE id=$1`
	var category domain.Category
	if err := r.db.QueryRow(ctx, query, id).Scan(
		&category.ID,
		&category.Name,
		&category.Description,
		&category.Color,
		&category.CreatedAt,
	); err != nil {
		return nil, translate(err)
	}
	return &category, nil
}

func (r *categoryRepository) GetMany(ctx context.Context, ids []string) (map[string]domain.Category, error) {
	result := make(map[string]domain.Category, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	categories, err := r.query(ctx, `SELECT id, name, description, color, created_at FROM categories WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	for _, category := range categories {
		result[category.ID] = category
	}
	return result, nil
}

func (r *categoryRepository) List(ctx context.Context) ([]domain.Category, error) {
	return r.query(ctx, `SELECT id, name, description, color, created_at FROM categories ORDER BY name ASC`)
}

func (r *categoryRepository) query(ctx context.Context, query string, args ...any) ([]domain.Category, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Category{}
	for rows.Next() {
		var category domain.Category
		if err := rows.Scan(
			&category.ID,
			&category.Name,
			&category.Description,
			&category.Color,
			&category.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, category)
	}
	return result, rows.Err()
}

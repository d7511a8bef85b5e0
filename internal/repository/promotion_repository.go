package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// PromotionRepository persists role promotion requests.
type PromotionRepository interface {
	Create(ctx context.Context, req *domain.PromotionRequest) error
	GetByID(ctx context.Context, id string) (*domain.PromotionRequest, error)
	FindPendingByUser(ctx context.Context, userID string) (*domain.PromotionRequest, error)
	LatestByUser(ctx context.Context, userID string) (*domain.PromotionRequest, error)
	List(ctx context.Context, status *domain.PromotionStatus) ([]domain.PromotionRequest, error)
	// Resolve writes the review fields of a pending request. It returns
	// ErrStaleState when the stored request is no longer pending.
	Resolve(ctx context.Context, req *domain.PromotionRequest) error
}

type promotionRepository struct {
	db DBTX
}

// NewPromotionRepository builds repository.
func NewPromotionRepository(db DBTX) PromotionRepository {
	return &promotionRepository{db: db}
}

const promotionColumns = `id, user_id, user_name, user_email, role_at_request, requested_role, reason, status,
               reviewed_by, reviewed_at, admin_reason, created_at, updated_at`

func (r *promotionRepository) Create(ctx context.Context, req *domain.PromotionRequest) error {
	const query = `
        INSERT INTO promotion_requests (user_id, user_name, user_email, role_at_request, requested_role, reason, status)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(ctx, query,
		req.UserID,
		req.UserName,
		req.UserEmail,
		req.CurrentRole,
		req.RequestedRole,
		req.Reason,
		req.Status,
	).Scan(&req.ID, &req.CreatedAt, &req.UpdatedAt)
	return translate(err)
}

func (r *promotionRepository) GetByID(ctx context.Context, id string) (*domain.PromotionRequest, error) {
	return r.fetchSingle(ctx, `SELECT `+promotionColumns+` FROM promotion_requests WHERE id=$1`, id)
}

func (r *promotionRepository) FindPendingByUser(ctx context.Context, userID string) (*domain.PromotionRequest, error) {
	return r.fetchSingle(ctx, `SELECT `+promotionColumns+` FROM promotion_requests
        WHERE user_id=$1 AND status='pending' LIMIT 1`, userID)
}

func (r *promotionRepository) LatestByUser(ctx context.Context, userID string) (*domain.PromotionRequest, error) {
	return r.fetchSingle(ctx, `SELECT `+promotionColumns+` FROM promotion_requests
        WHERE user_id=$1 ORDER BY created_at DESC LIMIT 1`, userID)
}

func (r *promotionRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.PromotionRequest, error) {
	req, err := scanPromotion(r.db.QueryRow(ctx, query, arg))
	if err != nil {
		return nil, translate(err)
	}
	return req, nil
}

func (r *promotionRepository) List(ctx context.Context, status *domain.PromotionStatus) ([]domain.PromotionRequest, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if status != nil {
		rows, err = r.db.Query(ctx, `SELECT `+promotionColumns+` FROM promotion_requests
            WHERE status=$1 ORDER BY created_at DESC`, *status)
	} else {
		rows, err = r.db.Query(ctx, `SELECT `+promotionColumns+` FROM promotion_requests ORDER BY created_at DESC`)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.PromotionRequest{}
	for rows.Next() {
		req, err := scanPromotion(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *req)
	}
	return result, rows.Err()
}

func (r *promotionRepository) Resolve(ctx context.Context, req *domain.PromotionRequest) error {
	const query = `
        UPDATE promotion_requests
        SET status=$1, reviewed_by=$2, reviewed_at=$3, admin_reason=$4, updated_at=NOW()
        WHERE id=$5 AND status='pending'
        RETURNING updated_at`
	err := r.db.QueryRow(ctx, query,
		req.Status,
		req.ReviewedBy,
		req.ReviewedAt,
		req.AdminReason,
		req.ID,
	).Scan(&req.UpdatedAt)
	if err == pgx.ErrNoRows {
		return ErrStaleState
	}
	return translate(err)
}

func scanPromotion(row pgx.Row) (*domain.PromotionRequest, error) {
	var req domain.PromotionRequest
	if err := row.Scan(
		&req.ID,
		&req.UserID,
		&req.UserName,
		&req.UserEmail,
		&req.CurrentRole,
		&req.RequestedRole,
		&req.Reason,
		&req.Status,
		&req.ReviewedBy,
		&req.ReviewedAt,
		&req.AdminReason,
		&req.CreatedAt,
		&req.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &req, nil
}

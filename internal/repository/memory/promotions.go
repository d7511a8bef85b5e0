package memory

import (
	"context"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
)

type promotionRepository struct {
	v view
}

func (r *promotionRepository) Create(ctx context.Context, req *domain.PromotionRequest) error {
	return r.v.write(func(st *state) error {
		if req.Status == domain.PromotionPending {
			for _, existing := range st.promotions {
				if existing.UserID == req.UserID && existing.Status == domain.PromotionPending {
					return repository.ErrConflict
				}
			}
		}
		now := r.v.now()
		req.ID = newID()
		req.CreatedAt = now
		req.UpdatedAt = now
		st.promotions = append(st.promotions, *req)
		return nil
	})
}

func (r *promotionRepository) GetByID(ctx context.Context, id string) (*domain.PromotionRequest, error) {
	return r.find(func(req domain.PromotionRequest) bool { return req.ID == id }, false)
}

func (r *promotionRepository) FindPendingByUser(ctx context.Context, userID string) (*domain.PromotionRequest, error) {
	return r.find(func(req domain.PromotionRequest) bool {
		return req.UserID == userID && req.Status == domain.PromotionPending
	}, false)
}

func (r *promotionRepository) LatestByUser(ctx context.Context, userID string) (*domain.PromotionRequest, error) {
	return r.find(func(req domain.PromotionRequest) bool { return req.UserID == userID }, true)
}

// find returns the first match in insertion order, or the last one when newest is set.
func (r *promotionRepository) find(match func(domain.PromotionRequest) bool, newest bool) (*domain.PromotionRequest, error) {
	var found *domain.PromotionRequest
	err := r.v.read(func(st *state) error {
		for i := range st.promotions {
			idx := i
			if newest {
				idx = len(st.promotions) - 1 - i
			}
			if match(st.promotions[idx]) {
				req := st.promotions[idx]
				found = &req
				return nil
			}
		}
		return repository.ErrNotFound
	})
	return found, err
}

func (r *promotionRepository) List(ctx context.Context, status *domain.PromotionStatus) ([]domain.PromotionRequest, error) {
	result := []domain.PromotionRequest{}
	err := r.v.read(func(st *state) error {
		for i := len(st.promotions) - 1; i >= 0; i-- {
			req := st.promotions[i]
			if status != nil && req.Status != *status {
				continue
			}
			result = append(result, req)
		}
		return nil
	})
	return result, err
}

func (r *promotionRepository) Resolve(ctx context.Context, req *domain.PromotionRequest) error {
	return r.v.write(func(st *state) error {
		for i := range st.promotions {
			stored := &st.promotions[i]
			if stored.ID != req.ID {
				continue
			}
			if stored.Status != domain.PromotionPending {
				return repository.ErrStaleState
			}
			stored.Status = req.Status
			stored.ReviewedBy = req.ReviewedBy
			stored.ReviewedAt = req.ReviewedAt
			stored.AdminReason = req.AdminReason
			stored.UpdatedAt = r.v.now()
			req.UpdatedAt = stored.UpdatedAt
			return nil
		}
		return repository.ErrNotFound
	})
}

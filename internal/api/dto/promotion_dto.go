package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// PromotionRequestBody is a user's request for a higher role.
type PromotionRequestBody struct {
	RequestedRole domain.Role `json:"requested_role"`
	Reason        string      `json:"reason"`
}

// ResolvePromotionRequest is an admin's decision.
type ResolvePromotionRequest struct {
	Action domain.PromotionAction `json:"action"`
	Reason string                 `json:"reason"`
}

// PromotionResponse body.
type PromotionResponse struct {
	ID            string                 `json:"id"`
	UserID        string                 `json:"user_id"`
	UserName      string                 `json:"user_name"`
	UserEmail     string                 `json:"user_email"`
	CurrentRole   domain.Role            `json:"current_role"`
	RequestedRole domain.Role            `json:"requested_role"`
	Reason        string                 `json:"reason"`
	Status        domain.PromotionStatus `json:"status"`
	ReviewedBy    *string                `json:"reviewed_by"`
	ReviewedAt    *time.Time             `json:"reviewed_at"`
	AdminReason   *string                `json:"admin_reason"`
	CreatedAt     time.Time              `json:"created_at"`
	UpdatedAt     time.Time              `json:"updated_at"`
}

// PromotionStatusResponse answers whether the caller ever asked.
type PromotionStatusResponse struct {
	HasRequest bool               `json:"has_request"`
	Request    *PromotionResponse `json:"request"`
}

func NewPromotionResponse(r *domain.PromotionRequest) PromotionResponse {
	return PromotionResponse{
		ID:            r.ID,
		UserID:        r.UserID,
		UserName:      r.UserName,
		UserEmail:     r.UserEmail,
		CurrentRole:   r.CurrentRole,
		RequestedRole: r.RequestedRole,
		Reason:        r.Reason,
		Status:        r.Status,
		ReviewedBy:    r.ReviewedBy,
		ReviewedAt:    r.ReviewedAt,
		AdminReason:   r.AdminReason,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

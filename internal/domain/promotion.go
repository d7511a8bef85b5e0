package domain

import "time"

// PromotionStatus is the state of a promotion request.
type PromotionStatus string

const (
	PromotionPending  PromotionStatus = "pending"
	PromotionApproved PromotionStatus = "approved"
	PromotionRejected PromotionStatus = "rejected"
)

// Valid reports whether s is a known status.
func (s PromotionStatus) Valid() bool {
	switch s {
	case PromotionPending, PromotionApproved, PromotionRejected:
		return true
	}
	return false
}

// PromotionAction is an admin's disposition of a pending request.
type PromotionAction string

const (
	PromotionApprove PromotionAction = "approve"
	PromotionReject  PromotionAction = "reject"
)

// PromotionRequest asks for a role change. User fields are copied at
// creation time so the record reads on its own.
type PromotionRequest struct {
	ID            string
	UserID        string
	UserName      string
	UserEmail     string
	CurrentRole   Role
	RequestedRole Role
	Reason        string
	Status        PromotionStatus
	ReviewedBy    *string
	ReviewedAt    *time.Time
	AdminReason   *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

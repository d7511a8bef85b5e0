package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/service"
)

// AdminHandler exposes user administration and promotion review.
type AdminHandler struct {
	users      *service.UserService
	promotions *service.PromotionService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(users *service.UserService, promotions *service.PromotionService) *AdminHandler {
	return &AdminHandler{users: users, promotions: promotions}
}

// ListUsers GET /api/admin/users.
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	actor, err := identity(c)
	if err != nil {
		return err
	}
	users, err := h.users.List(c.UserContext(), actor)
	if err != nil {
		return err
	}
	items := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		items = append(items, dto.NewUserResponse(&users[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// UpdateRole PUT /api/admin/users/:id/role.
func (h *AdminHandler) UpdateRole(c *fiber.Ctx) error {
	actor, err := identity(c)
	if err != nil {
		return err
	}
	var req dto.UpdateRoleRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	user, err := h.users.UpdateRole(c.UserContext(), actor, c.Params("id"), req.Role)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}

// ListPromotions GET /api/admin/promotion-requests.
func (h *AdminHandler) ListPromotions(c *fiber.Ctx) error {
	actor, err := identity(c)
	if err != nil {
		return err
	}
	requests, err := h.promotions.List(c.UserContext(), actor, c.Query("status"))
	if err != nil {
		return err
	}
	items := make([]dto.PromotionResponse, 0, len(requests))
	for i := range requests {
		items = append(items, dto.NewPromotionResponse(&requests[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// ResolvePromotion PUT /api/admin/promotion-requests/:id.
func (h *AdminHandler) ResolvePromotion(c *fiber.Ctx) error {
	actor, err := identity(c)
	if err != nil {
		return err
	}
	var req dto.ResolvePromotionRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	resolved, err := h.promotions.Resolve(c.UserContext(), actor, c.Params("id"), req.Action, req.Reason)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewPromotionResponse(resolved)})
}

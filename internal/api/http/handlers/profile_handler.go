package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/service"
)

// ProfileHandler serves the caller's own account and promotion requests.
type ProfileHandler struct {
	auth       *service.AuthService
	promotions *service.PromotionService
}

// NewProfileHandler constructs handler.
func NewProfileHandler(authService *service.AuthService, promotions *service.PromotionService) *ProfileHandler {
	return &ProfileHandler{auth: authService, promotions: promotions}
}

// Get handles GET /api/profile.
func (h *ProfileHandler) Get(c *fiber.Ctx) error {
	actor, err := identity(c)
	if err != nil {
		return err
	}
	user, err := h.auth.Profile(c.UserContext(), actor)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}

// Update handles PUT /api/profile.
func (h *ProfileHandler) Update(c *fiber.Ctx) error {
	actor, err := identity(c)
	if err != nil {
		return err
	}
	var req dto.UpdateProfileRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	user, err := h.auth.UpdateProfile(c.UserContext(), actor, service.ProfileUpdateInput{Name: req.Name, Email: req.Email})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}

// ChangePassword handles PUT /api/profile/password.
func (h *ProfileHandler) ChangePassword(c *fiber.Ctx) error {
	actor, err := identity(c)
	if err != nil {
		return err
	}
	var req dto.ChangePasswordRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := h.auth.ChangePassword(c.UserContext(), actor, req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"updated": true}})
}

// RequestPromotion handles POST /api/profile/promotion-requests.
func (h *ProfileHandler) RequestPromotion(c *fiber.Ctx) error {
	actor, err := identity(c)
	if err != nil {
		return err
	}
	var req dto.PromotionRequestBody
	if err := parseBody(c, &req); err != nil {
		return err
	}
	created, err := h.promotions.Request(c.UserContext(), actor, req.RequestedRole, req.Reason)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewPromotionResponse(created)})
}

// PromotionStatus handles GET /api/profile/promotion-status.
func (h *ProfileHandler) PromotionStatus(c *fiber.Ctx) error {
	actor, err := identity(c)
	if err != nil {
		return err
	}
	status, err := h.promotions.Status(c.UserContext(), actor)
	if err != nil {
		return err
	}
	resp := dto.PromotionStatusResponse{HasRequest: status.Requested}
	if status.Request != nil {
		r := dto.NewPromotionResponse(status.Request)
		resp.Request = &r
	}
	return c.JSON(fiber.Map{"data": resp})
}

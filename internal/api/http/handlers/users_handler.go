package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/service"
)

// UsersHandler exposes sign-up, sign-in and sign-out.
type UsersHandler struct {
	auth   *service.AuthService
	cookie auth.CookieSettings
}

// NewUsersHandler constructs handler.
func NewUsersHandler(authService *service.AuthService, cookie auth.CookieSettings) *UsersHandler {
	return &UsersHandler{auth: authService, cookie: cookie}
}

// Register handles POST /api/auth/register.
func (h *UsersHandler) Register(c *fiber.Ctx) error {
	var req dto.UserRegisterRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	result, err := h.auth.Register(c.UserContext(), req.Name, req.Email, req.Password)
	if err != nil {
		return err
	}
	auth.SetSessionCookie(c, h.cookie, result.Session)
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": authResponse(result)})
}

// Login handles POST /api/auth/login.
func (h *UsersHandler) Login(c *fiber.Ctx) error {
	var req dto.UserLoginRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	result, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	auth.SetSessionCookie(c, h.cookie, result.Session)
	return c.JSON(fiber.Map{"data": authResponse(result)})
}

// Logout handles POST /api/auth/logout.
func (h *UsersHandler) Logout(c *fiber.Ctx) error {
	auth.ClearSessionCookie(c, h.cookie)
	return c.JSON(fiber.Map{"data": fiber.Map{"logged_out": true}})
}

func authResponse(result *service.AuthResult) dto.AuthResponse {
	return dto.AuthResponse{
		User:      dto.NewUserResponse(result.User),
		Token:     result.Session.Token,
		ExpiresAt: result.Session.ExpiresAt,
	}
}

package auth

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// CookieSettings describe the session cookie.
type CookieSettings struct {
	Name   string
	Secure bool
}

// SetSessionCookie writes session as an HTTP-only cookie.
func SetSessionCookie(c *fiber.Ctx, settings CookieSettings, session domain.Session) {
	c.Cookie(&fiber.Cookie{
		Name:     settings.Name,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HTTPOnly: true,
		Secure:   settings.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// ClearSessionCookie expires the session cookie.
func ClearSessionCookie(c *fiber.Ctx, settings CookieSettings) {
	c.Cookie(&fiber.Cookie{
		Name:     settings.Name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   settings.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

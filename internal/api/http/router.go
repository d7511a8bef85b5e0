package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Profile        *handlers.ProfileHandler
	Tickets        *handlers.TicketsHandler
	Comments       *handlers.CommentsHandler
	Categories     *handlers.CategoriesHandler
	Admin          *handlers.AdminHandler
	Notifications  *handlers.NotificationsHandler
	AuthMiddleware *auth.AuthMiddleware
	Policy         *auth.RolePolicy
	Store          repository.Store
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/metrics", cfg.Health.Metrics)

	api := app.Group("/api", RequireStore(cfg.Store))

	authGroup := api.Group("/auth")
	authGroup.Post("/register", cfg.Users.Register)
	authGroup.Post("/login", cfg.Users.Login)
	authGroup.Post("/logout", cfg.Users.Logout)

	public := api.Group("/public")
	public.Get("/tickets/:id", cfg.Comments.PublicTicket)
	public.Get("/tickets/:id/comments", cfg.Comments.PublicList)
	public.Post("/tickets/:id/comments", cfg.Comments.PublicCreate)

	api.Get("/categories", cfg.Categories.List)

	authed := cfg.AuthMiddleware.Handle
	admin := auth.RequireRole(cfg.Policy, domain.RoleAdmin)
	agent := auth.RequireRole(cfg.Policy, domain.RoleAgent)

	api.Post("/categories", authed, admin, cfg.Categories.Create)

	tickets := api.Group("/tickets", authed)
	tickets.Get("/", cfg.Tickets.ListTickets)
	tickets.Post("/", cfg.Tickets.CreateTicket)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Put("/:id", cfg.Tickets.UpdateTicket)
	tickets.Post("/:id/vote", cfg.Tickets.Vote)
	tickets.Get("/:id/comments", cfg.Comments.List)
	tickets.Post("/:id/comments", cfg.Comments.Create)

	profile := api.Group("/profile", authed)
	profile.Get("/", cfg.Profile.Get)
	profile.Put("/", cfg.Profile.Update)
	profile.Put("/password", cfg.Profile.ChangePassword)
	profile.Post("/promotion-requests", cfg.Profile.RequestPromotion)
	profile.Get("/promotion-status", cfg.Profile.PromotionStatus)

	notifications := api.Group("/notifications", authed)
	notifications.Get("/", cfg.Notifications.List)
	notifications.Put("/read", cfg.Notifications.MarkRead)
	notifications.Get("/stream", cfg.Notifications.Stream)

	adminGroup := api.Group("/admin", authed)
	adminGroup.Get("/users", agent, cfg.Admin.ListUsers)
	adminGroup.Put("/users/:id/role", admin, cfg.Admin.UpdateRole)
	adminGroup.Get("/promotion-requests", admin, cfg.Admin.ListPromotions)
	adminGroup.Put("/promotion-requests/:id", admin, cfg.Admin.ResolvePromotion)
}

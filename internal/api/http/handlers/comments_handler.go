package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/service"
)

// CommentsHandler serves ticket discussions, both signed-in and public.
type CommentsHandler struct {
	comments *service.CommentService
	tickets  *service.TicketService
}

// NewCommentsHandler constructs handler.
func NewCommentsHandler(comments *service.CommentService, tickets *service.TicketService) *CommentsHandler {
	return &CommentsHandler{comments: comments, tickets: tickets}
}

// List GET /api/tickets/:id/comments.
func (h *CommentsHandler) List(c *fiber.Ctx) error {
	actor, err := identity(c)
	if err != nil {
		return err
	}
	thread, err := h.comments.ListThread(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewCommentThreadResponse(thread.Roots, thread.Total, thread.ShowEmails)})
}

// Create POST /api/tickets/:id/comments.
func (h *CommentsHandler) Create(c *fiber.Ctx) error {
	actor, err := identity(c)
	if err != nil {
		return err
	}
	var req dto.CreateCommentRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	comment, err := h.comments.AddComment(c.UserContext(), actor, c.Params("id"), service.CommentInput{
		Content:  req.Content,
		ParentID: req.ParentID,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewCommentResponse(comment, true)})
}

// PublicTicket GET /api/public/tickets/:id.
func (h *CommentsHandler) PublicTicket(c *fiber.Ctx) error {
	view, err := h.tickets.GetPublicTicket(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(view)})
}

// PublicList GET /api/public/tickets/:id/comments.
func (h *CommentsHandler) PublicList(c *fiber.Ctx) error {
	thread, err := h.comments.ListPublicThread(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewCommentThreadResponse(thread.Roots, thread.Total, false)})
}

// PublicCreate POST /api/public/tickets/:id/comments.
func (h *CommentsHandler) PublicCreate(c *fiber.Ctx) error {
	var req dto.PublicCommentRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	comment, err := h.comments.AddGuestComment(c.UserContext(), c.Params("id"), service.GuestCommentInput{
		Content:  req.Content,
		Name:     req.Name,
		Email:    req.Email,
		ParentID: req.ParentID,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewCommentResponse(comment, false)})
}

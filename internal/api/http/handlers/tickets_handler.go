package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/service"
)

// TicketsHandler manages authenticated ticket endpoints.
type TicketsHandler struct {
	tickets *service.TicketService
	votes   *service.VoteService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(tickets *service.TicketService, votes *service.VoteService) *TicketsHandler {
	return &TicketsHandler{tickets: tickets, votes: votes}
}

// CreateTicket POST /api/tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	actor, err := identity(c)
	if err != nil {
		return err
	}
	var req dto.CreateTicketRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	view, err := h.tickets.CreateTicket(c.UserContext(), actor, service.TicketCreateInput{
		Subject:     req.Subject,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		Priority:    req.Priority,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewTicketResponse(view)})
}

// ListTickets GET /api/tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	actor, err := identity(c)
	if err != nil {
		return err
	}
	page, err := h.tickets.ListTickets(c.UserContext(), actor, service.TicketListQuery{
		Status:     c.Query("status"),
		CategoryID: c.Query("category"),
		Search:     c.Query("search"),
		Sort:       c.Query("sort"),
		Order:      c.Query("order"),
		Page:       parseInt(c.Query("page"), 1),
		Limit:      parseInt(c.Query("limit"), service.DefaultPageSize),
	})
	if err != nil {
		return err
	}

	items := make([]dto.TicketResponse, 0, len(page.Tickets))
	for i := range page.Tickets {
		items = append(items, dto.NewTicketResponse(&page.Tickets[i]))
	}
	return c.JSON(fiber.Map{"data": dto.TicketListResponse{
		Tickets: items,
		Pagination: dto.Pagination{
			Page:  page.Page,
			Limit: page.Limit,
			Total: page.Total,
			Pages: page.Pages,
		},
	}})
}

// GetTicket GET /api/tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	actor, err := identity(c)
	if err != nil {
		return err
	}
	view, err := h.tickets.GetTicket(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(view)})
}

// UpdateTicket PUT /api/tickets/:id.
func (h *TicketsHandler) UpdateTicket(c *fiber.Ctx) error {
	actor, err := identity(c)
	if err != nil {
		return err
	}
	var req dto.UpdateTicketRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	view, err := h.tickets.UpdateTicket(c.UserContext(), actor, c.Params("id"), service.TicketUpdateInput{
		Subject:     req.Subject,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		AssigneeID:  req.AssignedTo,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(view)})
}

// Vote POST /api/tickets/:id/vote.
func (h *TicketsHandler) Vote(c *fiber.Ctx) error {
	actor, err := identity(c)
	if err != nil {
		return err
	}
	var req dto.VoteRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	tally, err := h.votes.Vote(c.UserContext(), actor, c.Params("id"), req.VoteType)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.VoteResponse{Upvotes: tally.Upvotes, Downvotes: tally.Downvotes}})
}

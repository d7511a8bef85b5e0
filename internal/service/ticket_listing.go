package service

import (
	"context"
	"sort"
	"strings"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// Listing defaults.
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
	filterAll       = "all"
)

// Sort keys accepted by ListTickets.
const (
	SortCreatedAt = "created_at"
	SortUpdatedAt = "updated_at"
	SortSubject   = "subject"
	SortPriority  = "priority"
	SortStatus    = "status"
)

// TicketListQuery holds raw listing parameters. Empty strings and "all"
// mean no filter; zero page values take defaults.
type TicketListQuery struct {
	Status     string
	CategoryID string
	Search     string
	Sort       string
	Order      string
	Page       int
	Limit      int
}

// TicketPage is one page of hydrated tickets.
type TicketPage struct {
	Tickets []domain.TicketView
	Page    int
	Limit   int
	Total   int
	Pages   int
}

type ticketLess func(a, b *domain.Ticket) int

var ticketSorters = map[string]ticketLess{
	SortCreatedAt: func(a, b *domain.Ticket) int { return a.CreatedAt.Compare(b.CreatedAt) },
	SortUpdatedAt: func(a, b *domain.Ticket) int { return a.UpdatedAt.Compare(b.UpdatedAt) },
	SortSubject:   func(a, b *domain.Ticket) int { return strings.Compare(strings.ToLower(a.Subject), strings.ToLower(b.Subject)) },
	SortPriority:  func(a, b *domain.Ticket) int { return a.Priority.Rank() - b.Priority.Rank() },
	SortStatus:    func(a, b *domain.Ticket) int { return a.Status.Rank() - b.Status.Rank() },
}

// ListTickets filters, sorts and paginates the tickets actor may see.
// End users only see their own tickets.
func (s *TicketService) ListTickets(ctx context.Context, actor domain.Identity, q TicketListQuery) (*TicketPage, error) {
	filter, err := s.storeFilter(actor, q)
	if err != nil {
		return nil, err
	}
	compare, desc, err := parseSort(q.Sort, q.Order)
	if err != nil {
		return nil, err
	}
	page, limit := normalizePage(q.Page, q.Limit)

	repos := s.store.Repos()
	tickets, err := repos.Tickets.List(ctx, filter)
	if err != nil {
		return nil, storeError(err, "ticket")
	}

	tickets = searchTickets(tickets, q.Search)
	sort.SliceStable(tickets, func(i, j int) bool {
		c := compare(&tickets[i], &tickets[j])
		if desc {
			return c > 0
		}
		return c < 0
	})

	total := len(tickets)
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	views, err := hydrateTickets(ctx, repos, tickets[start:end])
	if err != nil {
		return nil, storeError(err, "ticket")
	}

	return &TicketPage{
		Tickets: views,
		Page:    page,
		Limit:   limit,
		Total:   total,
		Pages:   (total + limit - 1) / limit,
	}, nil
}

func (s *TicketService) storeFilter(actor domain.Identity, q TicketListQuery) (repository.TicketQuery, error) {
	var filter repository.TicketQuery
	if !s.policy.IsStaff(actor.Role) {
		owner := actor.UserID
		filter.OwnerID = &owner
	}
	if status := strings.TrimSpace(q.Status); status != "" && status != filterAll {
		st := domain.TicketStatus(status)
		if !st.Valid() {
			return filter, apperrors.NewValidationError("invalid status filter", map[string]any{"status": status})
		}
		filter.Status = &st
	}
	if category := strings.TrimSpace(q.CategoryID); category != "" && category != filterAll {
		filter.CategoryID = &category
	}
	return filter, nil
}

func parseSort(key, order string) (ticketLess, bool, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		key = SortCreatedAt
	}
	compare, ok := ticketSorters[key]
	if !ok {
		return nil, false, apperrors.NewValidationError("invalid sort key", map[string]any{"sort": key})
	}
	switch strings.ToLower(strings.TrimSpace(order)) {
	case "", "desc":
		return compare, true, nil
	case "asc":
		return compare, false, nil
	}
	return nil, false, apperrors.NewValidationError("invalid sort order", map[string]any{"order": order})
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return page, limit
}

func searchTickets(tickets []domain.Ticket, term string) []domain.Ticket {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return tickets
	}
	matched := tickets[:0:0]
	for _, ticket := range tickets {
		if strings.Contains(strings.ToLower(ticket.Subject), term) ||
			strings.Contains(strings.ToLower(ticket.Description), term) {
			matched = append(matched, ticket)
		}
	}
	return matched
}

// hydrateTickets joins display fields with one lookup per collection.
func hydrateTickets(ctx context.Context, repos repository.Repositories, tickets []domain.Ticket) ([]domain.TicketView, error) {
	views := make([]domain.TicketView, len(tickets))
	if len(tickets) == 0 {
		return views, nil
	}

	var (
		ticketIDs   = make([]string, 0, len(tickets))
		userIDs     = make([]string, 0, len(tickets))
		categoryIDs = make([]string, 0, len(tickets))
		seenUsers   = map[string]struct{}{}
		seenCats    = map[string]struct{}{}
	)
	addUser := func(id string) {
		if _, ok := seenUsers[id]; !ok {
			seenUsers[id] = struct{}{}
			userIDs = append(userIDs, id)
		}
	}
	for _, ticket := range tickets {
		ticketIDs = append(ticketIDs, ticket.ID)
		addUser(ticket.OwnerID)
		if ticket.AssigneeID != nil {
			addUser(*ticket.AssigneeID)
		}
		if ticket.CategoryID != nil {
			if _, ok := seenCats[*ticket.CategoryID]; !ok {
				seenCats[*ticket.CategoryID] = struct{}{}
				categoryIDs = append(categoryIDs, *ticket.CategoryID)
			}
		}
	}

	users, err := repos.Users.GetMany(ctx, userIDs)
	if err != nil {
		return nil, err
	}
	categories, err := repos.Categories.GetMany(ctx, categoryIDs)
	if err != nil {
		return nil, err
	}
	counts, err := repos.Comments.CountByTickets(ctx, ticketIDs)
	if err != nil {
		return nil, err
	}

	for i, ticket := range tickets {
		view := domain.TicketView{Ticket: ticket, CommentCount: counts[ticket.ID]}
		if owner, ok := users[ticket.OwnerID]; ok {
			view.OwnerName = owner.Name
			view.OwnerEmail = owner.Email
		}
		if ticket.AssigneeID != nil {
			if assignee, ok := users[*ticket.AssigneeID]; ok {
				view.AssigneeName = assignee.Name
			}
		}
		if ticket.CategoryID != nil {
			if category, ok := categories[*ticket.CategoryID]; ok {
				view.CategoryName = category.Name
				view.CategoryColor = category.Color
			}
		}
		views[i] = view
	}
	return views, nil
}

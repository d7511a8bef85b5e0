package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

func TestCreateTicketDefaultsAndFanOut(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, "owner", domain.RoleEndUser)
	agent := env.user(t, "agent", domain.RoleAgent)
	admin := env.user(t, "admin", domain.RoleAdmin)
	bystander := env.user(t, "bystander", domain.RoleEndUser)

	view := env.ticket(t, owner, "  Printer jam  ", "Paper stuck")
	if view.Subject != "Printer jam" {
		t.Fatalf("subject not trimmed: %q", view.Subject)
	}
	if view.Status != domain.TicketStatusOpen || view.Priority != domain.TicketPriorityMedium {
		t.Fatalf("unexpected defaults: %s/%s", view.Status, view.Priority)
	}
	if view.OwnerName != "owner" || view.OwnerEmail != "owner@example.com" {
		t.Fatalf("owner not hydrated: %+v", view)
	}

	for _, staff := range []domain.Identity{agent, admin} {
		list := env.notificationsFor(t, staff)
		if len(list) != 1 || list[0].Message != "New ticket: Printer jam" || list[0].TicketID == nil || *list[0].TicketID != view.ID {
			t.Fatalf("%s notifications: %+v", staff.Name, list)
		}
	}
	for _, other := range []domain.Identity{owner, bystander} {
		if n := len(env.notificationsFor(t, other)); n != 0 {
			t.Fatalf("%s got %d notifications", other.Name, n)
		}
	}

	// A staff creator is not told about their own ticket.
	env.ticket(t, agent, "Internal", "desc")
	if n := len(env.notificationsFor(t, agent)); n != 1 {
		t.Fatalf("agent notifications = %d, want 1", n)
	}
	if n := len(env.notificationsFor(t, admin)); n != 2 {
		t.Fatalf("admin notifications = %d, want 2", n)
	}
}

func TestCreateTicketValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.user(t, "owner", domain.RoleEndUser)

	cases := []struct {
		name  string
		input TicketCreateInput
	}{
		{"missing subject", TicketCreateInput{Description: "d"}},
		{"blank description", TicketCreateInput{Subject: "s", Description: "   "}},
		{"bad priority", TicketCreateInput{Subject: "s", Description: "d", Priority: "whenever"}},
		{"unknown category", TicketCreateInput{Subject: "s", Description: "d", CategoryID: ptr("missing")}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.tickets.CreateTicket(ctx, owner, tc.input)
			expectKind(t, err, "VALIDATION_FAILED")
		})
	}

	page, err := env.tickets.ListTickets(ctx, owner, TicketListQuery{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.Total != 0 {
		t.Fatalf("failed creates persisted %d tickets", page.Total)
	}
}

func TestCreateTicketWithCategory(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.user(t, "admin", domain.RoleAdmin)
	owner := env.user(t, "owner", domain.RoleEndUser)

	category, err := env.categories.Create(ctx, admin, "Billing", "Invoices", "#10B981")
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	view, err := env.tickets.CreateTicket(ctx, owner, TicketCreateInput{
		Subject:     "Refund",
		Description: "Charged twice",
		CategoryID:  &category.ID,
		Priority:    domain.TicketPriorityHigh,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if view.CategoryName != "Billing" || view.CategoryColor != "#10B981" {
		t.Fatalf("category not hydrated: %+v", view)
	}
}

func TestGetTicketVisibility(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.user(t, "owner", domain.RoleEndUser)
	other := env.user(t, "other", domain.RoleEndUser)
	agent := env.user(t, "agent", domain.RoleAgent)
	view := env.ticket(t, owner, "Mine", "desc")

	if _, err := env.tickets.GetTicket(ctx, owner, view.ID); err != nil {
		t.Fatalf("owner get: %v", err)
	}
	if _, err := env.tickets.GetTicket(ctx, agent, view.ID); err != nil {
		t.Fatalf("agent get: %v", err)
	}
	_, err := env.tickets.GetTicket(ctx, other, view.ID)
	expectKind(t, err, "FORBIDDEN")
	_, err = env.tickets.GetTicket(ctx, owner, "missing")
	expectKind(t, err, "NOT_FOUND")

	public, err := env.tickets.GetPublicTicket(ctx, view.ID)
	if err != nil {
		t.Fatalf("public get: %v", err)
	}
	if public.OwnerEmail != "" || public.OwnerName != "owner" {
		t.Fatalf("public view leaked owner email: %+v", public)
	}
}

func TestListTicketsVisibilityAndSearch(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.user(t, "alice", domain.RoleEndUser)
	bob := env.user(t, "bob", domain.RoleEndUser)
	agent := env.user(t, "agent", domain.RoleAgent)

	env.ticket(t, alice, "VPN broken", "cannot connect")
	env.ticket(t, alice, "Laptop", "battery drains over vpn")
	env.ticket(t, bob, "Email", "inbox full")

	page, err := env.tickets.ListTickets(ctx, alice, TicketListQuery{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.Total != 2 {
		t.Fatalf("alice sees %d tickets, want 2", page.Total)
	}
	for _, ticket := range page.Tickets {
		if ticket.OwnerID != alice.UserID {
			t.Fatalf("alice sees ticket of %s", ticket.OwnerID)
		}
	}

	page, err = env.tickets.ListTickets(ctx, agent, TicketListQuery{Status: "all", CategoryID: "all"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.Total != 3 {
		t.Fatalf("agent sees %d tickets, want 3", page.Total)
	}

	page, err = env.tickets.ListTickets(ctx, agent, TicketListQuery{Search: "VPN"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if page.Total != 2 {
		t.Fatalf("search matched %d, want subject and description hits", page.Total)
	}

	page, err = env.tickets.ListTickets(ctx, bob, TicketListQuery{Search: "vpn"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if page.Total != 0 {
		t.Fatalf("search leaked other users' tickets")
	}
}

func TestListTicketsPagination(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	agent := env.user(t, "agent", domain.RoleAgent)
	for i := 0; i < 15; i++ {
		env.ticket(t, agent, fmt.Sprintf("ticket %02d", i), "desc")
	}

	cases := []struct {
		page, limit int
		wantLen     int
		wantPage    int
		wantLimit   int
		wantPages   int
	}{
		{0, 0, 10, 1, 10, 2},
		{2, 0, 5, 2, 10, 2},
		{3, 10, 0, 3, 10, 2},
		{1, 500, 15, 1, MaxPageSize, 1},
		{4, 4, 3, 4, 4, 4},
	}
	for _, tc := range cases {
		page, err := env.tickets.ListTickets(ctx, agent, TicketListQuery{Page: tc.page, Limit: tc.limit})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(page.Tickets) != tc.wantLen || page.Page != tc.wantPage || page.Limit != tc.wantLimit ||
			page.Pages != tc.wantPages || page.Total != 15 {
			t.Fatalf("page=%d limit=%d: got len=%d page=%d limit=%d pages=%d total=%d",
				tc.page, tc.limit, len(page.Tickets), page.Page, page.Limit, page.Pages, page.Total)
		}
	}
}

func TestListTicketsSorting(t *testing.T) {
	env := newTestEnv(t)
	env.store.SetClock(tickingClock())
	ctx := context.Background()
	agent := env.user(t, "agent", domain.RoleAgent)

	create := func(subject string, priority domain.TicketPriority) {
		if _, err := env.tickets.CreateTicket(ctx, agent, TicketCreateInput{Subject: subject, Description: "d", Priority: priority}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	create("bravo", domain.TicketPriorityLow)
	create("Alpha", domain.TicketPriorityUrgent)
	create("charlie", domain.TicketPriorityMedium)

	subjects := func(q TicketListQuery) []string {
		t.Helper()
		page, err := env.tickets.ListTickets(ctx, agent, q)
		if err != nil {
			t.Fatalf("list %+v: %v", q, err)
		}
		out := make([]string, len(page.Tickets))
		for i, ticket := range page.Tickets {
			out[i] = ticket.Subject
		}
		return out
	}

	cases := []struct {
		query TicketListQuery
		want  []string
	}{
		{TicketListQuery{}, []string{"charlie", "Alpha", "bravo"}},
		{TicketListQuery{Sort: SortCreatedAt, Order: "asc"}, []string{"bravo", "Alpha", "charlie"}},
		{TicketListQuery{Sort: SortSubject, Order: "asc"}, []string{"Alpha", "bravo", "charlie"}},
		{TicketListQuery{Sort: SortPriority, Order: "desc"}, []string{"Alpha", "charlie", "bravo"}},
	}
	for _, tc := range cases {
		if got := subjects(tc.query); !equal(got, tc.want) {
			t.Fatalf("%+v: got %v, want %v", tc.query, got, tc.want)
		}
	}

	_, err := env.tickets.ListTickets(ctx, agent, TicketListQuery{Sort: "owner"})
	expectKind(t, err, "VALIDATION_FAILED")
	_, err = env.tickets.ListTickets(ctx, agent, TicketListQuery{Order: "sideways"})
	expectKind(t, err, "VALIDATION_FAILED")
	_, err = env.tickets.ListTickets(ctx, agent, TicketListQuery{Status: "pending"})
	expectKind(t, err, "VALIDATION_FAILED")
}

func TestUpdateTicketPermissions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.user(t, "owner", domain.RoleEndUser)
	other := env.user(t, "other", domain.RoleEndUser)
	agent := env.user(t, "agent", domain.RoleAgent)
	view := env.ticket(t, owner, "Subject", "desc")

	updated, err := env.tickets.UpdateTicket(ctx, owner, view.ID, TicketUpdateInput{
		Subject:  ptr("New subject"),
		Priority: ptr(domain.TicketPriorityHigh),
	})
	if err != nil {
		t.Fatalf("owner update: %v", err)
	}
	if updated.Subject != "New subject" || updated.Priority != domain.TicketPriorityHigh {
		t.Fatalf("update not applied: %+v", updated)
	}

	_, err = env.tickets.UpdateTicket(ctx, owner, view.ID, TicketUpdateInput{Status: ptr(domain.TicketStatusClosed)})
	expectKind(t, err, "FORBIDDEN")
	_, err = env.tickets.UpdateTicket(ctx, owner, view.ID, TicketUpdateInput{AssigneeID: &agent.UserID})
	expectKind(t, err, "FORBIDDEN")
	_, err = env.tickets.UpdateTicket(ctx, other, view.ID, TicketUpdateInput{Subject: ptr("mine now")})
	expectKind(t, err, "FORBIDDEN")
	_, err = env.tickets.UpdateTicket(ctx, owner, view.ID, TicketUpdateInput{Subject: ptr("  ")})
	expectKind(t, err, "VALIDATION_FAILED")
	_, err = env.tickets.UpdateTicket(ctx, agent, view.ID, TicketUpdateInput{Status: ptr(domain.TicketStatus("done"))})
	expectKind(t, err, "VALIDATION_FAILED")
	_, err = env.tickets.UpdateTicket(ctx, agent, view.ID, TicketUpdateInput{AssigneeID: ptr("ghost")})
	expectKind(t, err, "NOT_FOUND")
	_, err = env.tickets.UpdateTicket(ctx, agent, "missing", TicketUpdateInput{Subject: ptr("x")})
	expectKind(t, err, "NOT_FOUND")
}

func TestUpdateTicketStatusNotifiesOwner(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.user(t, "owner", domain.RoleEndUser)
	agent := env.user(t, "agent", domain.RoleAgent)
	view := env.ticket(t, owner, "Subject", "desc")

	updated, err := env.tickets.UpdateTicket(ctx, agent, view.ID, TicketUpdateInput{
		Status:     ptr(domain.TicketStatusInProgress),
		AssigneeID: &agent.UserID,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.AssigneeName != "agent" || updated.AssigneeID == nil || *updated.AssigneeID != agent.UserID {
		t.Fatalf("assignee not set: %+v", updated)
	}

	list := env.notificationsFor(t, owner)
	if len(list) != 1 || list[0].Title != "Ticket Status Updated" || list[0].Message != "Your ticket status changed to: in-progress" {
		t.Fatalf("owner notifications: %+v", list)
	}

	// Same status again and an unassign: no new notification.
	updated, err = env.tickets.UpdateTicket(ctx, agent, view.ID, TicketUpdateInput{
		Status:     ptr(domain.TicketStatusInProgress),
		AssigneeID: ptr(""),
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.AssigneeID != nil {
		t.Fatalf("assignee not cleared")
	}
	if n := len(env.notificationsFor(t, owner)); n != 1 {
		t.Fatalf("owner notifications = %d, want 1", n)
	}
}

package service

import (
	"context"
	"testing"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

func TestUserAdministration(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.user(t, "admin", domain.RoleAdmin)
	agent := env.user(t, "agent", domain.RoleAgent)
	member := env.user(t, "member", domain.RoleEndUser)

	_, err := env.users.List(ctx, member)
	expectKind(t, err, "FORBIDDEN")
	list, err := env.users.List(ctx, agent)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("listed %d users", len(list))
	}

	_, err = env.users.UpdateRole(ctx, agent, member.UserID, domain.RoleAgent)
	expectKind(t, err, "FORBIDDEN")
	_, err = env.users.UpdateRole(ctx, admin, member.UserID, domain.Role("root"))
	expectKind(t, err, "VALIDATION_FAILED")
	_, err = env.users.UpdateRole(ctx, admin, "missing", domain.RoleAgent)
	expectKind(t, err, "NOT_FOUND")

	updated, err := env.users.UpdateRole(ctx, admin, member.UserID, domain.RoleAgent)
	if err != nil {
		t.Fatalf("update role: %v", err)
	}
	if updated.Role != domain.RoleAgent {
		t.Fatalf("role = %s", updated.Role)
	}
}

func TestCategoryAdministration(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.user(t, "admin", domain.RoleAdmin)
	agent := env.user(t, "agent", domain.RoleAgent)

	_, err := env.categories.Create(ctx, agent, "Billing", "", "")
	expectKind(t, err, "FORBIDDEN")
	_, err = env.categories.Create(ctx, admin, "  ", "", "")
	expectKind(t, err, "VALIDATION_FAILED")

	if _, err := env.categories.Create(ctx, admin, "Technical Support", "", "#EF4444"); err != nil {
		t.Fatalf("create: %v", err)
	}
	billing, err := env.categories.Create(ctx, admin, "Billing", "Invoices", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if billing.Color != domain.DefaultCategoryColor {
		t.Fatalf("color = %q, want default", billing.Color)
	}

	list, err := env.categories.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].Name != "Billing" {
		t.Fatalf("categories not ordered by name: %+v", list)
	}
}

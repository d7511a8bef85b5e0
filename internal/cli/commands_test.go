package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository/memory"
	"github.com/spec-kit/helpdesk-service/internal/seed"
)

func TestSetRole(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	u := &domain.User{Name: "Ops", Email: "ops@example.com", PasswordHash: "x", Role: domain.RoleEndUser}
	if err := store.Repos().Users.Create(ctx, u); err != nil {
		t.Fatalf("create: %v", err)
	}

	user, previous, err := setRole(ctx, store, " OPS@example.com ", domain.RoleAdmin)
	if err != nil {
		t.Fatalf("set role: %v", err)
	}
	if previous != domain.RoleEndUser || user.Role != domain.RoleAdmin {
		t.Fatalf("previous=%s now=%s", previous, user.Role)
	}
	stored, _ := store.Repos().Users.GetByID(ctx, u.ID)
	if stored.Role != domain.RoleAdmin {
		t.Fatalf("role not persisted")
	}

	if _, _, err := setRole(ctx, store, "ops@example.com", domain.Role("root")); err == nil {
		t.Fatal("expected invalid role error")
	}
	if _, _, err := setRole(ctx, store, "ghost@example.com", domain.RoleAgent); err == nil || !strings.Contains(err.Error(), "no user") {
		t.Fatalf("expected missing user error, got %v", err)
	}
}

func TestPrintSeedResult(t *testing.T) {
	color.NoColor = true
	data := &seed.Data{Categories: make([]seed.Category, 5), Users: make([]seed.User, 3)}
	var buf bytes.Buffer
	printSeedResult(&buf, data, seed.Result{CategoriesCreated: 2, UsersCreated: 0})

	out := buf.String()
	if !strings.Contains(out, "categories: 2 created, 3 already present") || !strings.Contains(out, "users: 0 created, 3 already present") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestPrintSeedResultSkippedUsers(t *testing.T) {
	color.NoColor = true
	data := &seed.Data{Categories: make([]seed.Category, 5), Users: make([]seed.User, 3)}
	var buf bytes.Buffer
	printSeedResult(&buf, data, seed.Result{CategoriesCreated: 5, UsersSkipped: true})

	out := buf.String()
	if !strings.Contains(out, "users: built-in accounts are not created in production") || strings.Contains(out, "users: 0 created") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

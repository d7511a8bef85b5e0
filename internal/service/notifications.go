package service

import (
	"context"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
)

// notifyUsers writes one copy of tmpl per recipient through repos, which
// is expected to be transaction-scoped. Duplicate recipients get one copy.
func notifyUsers(ctx context.Context, repos repository.Repositories, recipients []string, tmpl domain.Notification) ([]domain.Notification, error) {
	created := make([]domain.Notification, 0, len(recipients))
	seen := make(map[string]struct{}, len(recipients))
	for _, userID := range recipients {
		if _, dup := seen[userID]; dup || userID == "" {
			continue
		}
		seen[userID] = struct{}{}

		n := tmpl
		n.UserID = userID
		n.Read = false
		if err := repos.Notifications.Create(ctx, &n); err != nil {
			return nil, err
		}
		created = append(created, n)
	}
	return created, nil
}

// staffRecipients lists agents and admins, skipping except.
func staffRecipients(ctx context.Context, repos repository.Repositories, except string) ([]string, error) {
	staff, err := repos.Users.ListByRoles(ctx, domain.RoleAgent, domain.RoleAdmin)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(staff))
	for _, user := range staff {
		if user.ID != except {
			ids = append(ids, user.ID)
		}
	}
	return ids, nil
}

func adminRecipients(ctx context.Context, repos repository.Repositories) ([]string, error) {
	admins, err := repos.Users.ListByRoles(ctx, domain.RoleAdmin)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(admins))
	for _, user := range admins {
		ids = append(ids, user.ID)
	}
	return ids, nil
}

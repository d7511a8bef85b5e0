package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/realtime"
	"github.com/spec-kit/helpdesk-service/internal/repository/memory"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

type testEnv struct {
	store         *memory.Store
	broker        *realtime.LocalBroker
	auth          *AuthService
	tickets       *TicketService
	comments      *CommentService
	votes         *VoteService
	promotions    *PromotionService
	categories    *CategoryService
	users         *UserService
	notifications *NotificationService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := memory.NewStore()
	policy, err := auth.NewRolePolicy(nil)
	if err != nil {
		t.Fatalf("policy: %v", err)
	}
	dispatcher := events.NewInMemoryDispatcher(nil)
	broker := realtime.NewLocalBroker()

	notifications := NewNotificationService(NotificationDependencies{
		Store:      store,
		Dispatcher: dispatcher,
		Broker:     broker,
		Config:     config.NotificationConfig{ListLimit: 50},
	})
	notifications.RegisterHandlers()

	return &testEnv{
		store:  store,
		broker: broker,
		auth: NewAuthService(config.AuthConfig{
			JWTSecret:             "test",
			AccessTokenTTLMinutes: 60,
			BcryptCost:            4,
		}, store, nil),
		tickets:       NewTicketService(TicketDependencies{Store: store, Policy: policy, Dispatcher: dispatcher}),
		comments:      NewCommentService(store, policy, dispatcher, nil),
		votes:         NewVoteService(store, dispatcher),
		promotions:    NewPromotionService(store, policy, dispatcher, nil),
		categories:    NewCategoryService(store, policy),
		users:         NewUserService(store, policy, nil),
		notifications: notifications,
	}
}

func (e *testEnv) user(t *testing.T, name string, role domain.Role) domain.Identity {
	t.Helper()
	u := &domain.User{Name: name, Email: name + "@example.com", PasswordHash: "x", Role: role}
	if err := e.store.Repos().Users.Create(context.Background(), u); err != nil {
		t.Fatalf("create user %s: %v", name, err)
	}
	return u.Identity()
}

func (e *testEnv) ticket(t *testing.T, owner domain.Identity, subject, description string) *domain.TicketView {
	t.Helper()
	view, err := e.tickets.CreateTicket(context.Background(), owner, TicketCreateInput{Subject: subject, Description: description})
	if err != nil {
		t.Fatalf("create ticket: %v", err)
	}
	return view
}

func (e *testEnv) notificationsFor(t *testing.T, id domain.Identity) []domain.Notification {
	t.Helper()
	list, err := e.notifications.List(context.Background(), id, false)
	if err != nil {
		t.Fatalf("list notifications: %v", err)
	}
	return list
}

func expectKind(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", code)
	}
	if !apperrors.IsKind(err, code) {
		t.Fatalf("expected %s, got %v", code, err)
	}
}

// tickingClock returns a clock that advances one second per call so
// records created in sequence get distinct timestamps.
func tickingClock() func() time.Time {
	var mu sync.Mutex
	current := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		current = current.Add(time.Second)
		return current
	}
}

func ptr[T any](v T) *T {
	return &v
}

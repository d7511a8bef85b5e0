package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/observability"
	"github.com/spec-kit/helpdesk-service/internal/realtime"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/internal/repository/memory"
	"github.com/spec-kit/helpdesk-service/internal/service"
)

type testServer struct {
	app    *fiber.App
	store  repository.Store
	tokens *auth.TokenManager
}

func newTestServer(t *testing.T, store repository.Store) *testServer {
	t.Helper()
	policy, err := auth.NewRolePolicy(nil)
	if err != nil {
		t.Fatalf("policy: %v", err)
	}
	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher(nil)

	authService := service.NewAuthService(config.AuthConfig{
		JWTSecret:             "test-secret",
		AccessTokenTTLMinutes: 60,
		BcryptCost:            4,
	}, store, nil)
	tickets := service.NewTicketService(service.TicketDependencies{Store: store, Policy: policy, Dispatcher: dispatcher})
	comments := service.NewCommentService(store, policy, dispatcher, nil)
	votes := service.NewVoteService(store, dispatcher)
	promotions := service.NewPromotionService(store, policy, dispatcher, nil)
	notifications := service.NewNotificationService(service.NotificationDependencies{
		Store:      store,
		Dispatcher: dispatcher,
		Broker:     realtime.NewLocalBroker(),
		Metrics:    metrics,
		Config:     config.NotificationConfig{ListLimit: 50},
	})
	notifications.RegisterHandlers()

	cookie := auth.CookieSettings{Name: "auth-token"}
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(zap.NewNop())})
	RegisterMiddlewares(app, zap.NewNop(), metrics, 0)
	RegisterRoutes(app, RouteConfig{
		Health: handlers.NewHealthHandler(handlers.HealthDependencies{
			ServiceName: "helpdesk-service",
			Version:     "test",
			Store:       store,
			Metrics:     metrics,
		}),
		Users:          handlers.NewUsersHandler(authService, cookie),
		Profile:        handlers.NewProfileHandler(authService, promotions),
		Tickets:        handlers.NewTicketsHandler(tickets, votes),
		Comments:       handlers.NewCommentsHandler(comments, tickets),
		Categories:     handlers.NewCategoriesHandler(service.NewCategoryService(store, policy)),
		Admin:          handlers.NewAdminHandler(service.NewUserService(store, policy, nil), promotions),
		Notifications:  handlers.NewNotificationsHandler(notifications, nil),
		AuthMiddleware: auth.NewAuthMiddleware(authService.TokenManager(), store, cookie.Name),
		Policy:         policy,
		Store:          store,
	})
	return &testServer{app: app, store: store, tokens: authService.TokenManager()}
}

// userToken creates an account directly in the store and returns a bearer token for it.
func (s *testServer) userToken(t *testing.T, name string, role domain.Role) (string, *domain.User) {
	t.Helper()
	user := &domain.User{Name: name, Email: name + "@example.com", PasswordHash: "x", Role: role}
	if err := s.store.Repos().Users.Create(context.Background(), user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	session, err := s.tokens.GenerateToken(user)
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	return session.Token, user
}

type apiResponse struct {
	status int
	header nethttp.Header
	body   map[string]any
}

func (r apiResponse) data(t *testing.T) map[string]any {
	t.Helper()
	data, ok := r.body["data"].(map[string]any)
	if !ok {
		t.Fatalf("response has no data object: %v", r.body)
	}
	return data
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) apiResponse {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	out := apiResponse{status: resp.StatusCode, header: resp.Header}
	raw, _ := io.ReadAll(resp.Body)
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &out.body); err != nil {
			t.Fatalf("%s %s: decode %q: %v", method, path, raw, err)
		}
	}
	return out
}

func expectError(t *testing.T, resp apiResponse, status int, code string) {
	t.Helper()
	if resp.status != status {
		t.Fatalf("status = %d, want %d (%v)", resp.status, status, resp.body)
	}
	if resp.body["code"] != code {
		t.Fatalf("code = %v, want %s", resp.body["code"], code)
	}
	if msg, _ := resp.body["error"].(string); msg == "" {
		t.Fatalf("error message missing: %v", resp.body)
	}
}

func TestRegisterLoginAndCookie(t *testing.T) {
	srv := newTestServer(t, memory.NewStore())

	resp := srv.do(t, nethttp.MethodPost, "/api/auth/register", "", map[string]string{
		"name": "Jane", "email": "jane@example.com", "password": "secret1",
	})
	if resp.status != nethttp.StatusCreated {
		t.Fatalf("register status = %d: %v", resp.status, resp.body)
	}
	user := resp.data(t)["user"].(map[string]any)
	if user["role"] != "end-user" {
		t.Fatalf("role = %v", user["role"])
	}
	if _, leaked := user["password_hash"]; leaked {
		t.Fatal("password hash leaked")
	}
	if !strings.Contains(resp.header.Get("Set-Cookie"), "auth-token=") {
		t.Fatalf("session cookie not set: %q", resp.header.Get("Set-Cookie"))
	}

	resp = srv.do(t, nethttp.MethodPost, "/api/auth/register", "", map[string]string{
		"name": "Jane", "email": "JANE@example.com", "password": "other",
	})
	expectError(t, resp, nethttp.StatusBadRequest, "VALIDATION_FAILED")

	resp = srv.do(t, nethttp.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "jane@example.com", "password": "wrong",
	})
	expectError(t, resp, nethttp.StatusUnauthorized, "UNAUTHORIZED")

	resp = srv.do(t, nethttp.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "jane@example.com", "password": "secret1",
	})
	if resp.status != nethttp.StatusOK {
		t.Fatalf("login status = %d", resp.status)
	}
	token, _ := resp.data(t)["token"].(string)

	resp = srv.do(t, nethttp.MethodGet, "/api/profile", token, nil)
	if resp.status != nethttp.StatusOK || resp.data(t)["email"] != "jane@example.com" {
		t.Fatalf("profile: %d %v", resp.status, resp.body)
	}

	resp = srv.do(t, nethttp.MethodPost, "/api/auth/logout", "", nil)
	if resp.status != nethttp.StatusOK || !strings.Contains(resp.header.Get("Set-Cookie"), "auth-token=;") {
		t.Fatalf("logout did not clear cookie: %q", resp.header.Get("Set-Cookie"))
	}
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	srv := newTestServer(t, memory.NewStore())
	memberToken, _ := srv.userToken(t, "member", domain.RoleEndUser)
	agentToken, _ := srv.userToken(t, "agent", domain.RoleAgent)

	expectError(t, srv.do(t, nethttp.MethodGet, "/api/tickets", "", nil), nethttp.StatusUnauthorized, "UNAUTHORIZED")
	expectError(t, srv.do(t, nethttp.MethodGet, "/api/tickets", "garbage", nil), nethttp.StatusUnauthorized, "UNAUTHORIZED")
	expectError(t, srv.do(t, nethttp.MethodGet, "/api/admin/users", memberToken, nil), nethttp.StatusForbidden, "FORBIDDEN")
	expectError(t, srv.do(t, nethttp.MethodGet, "/api/admin/promotion-requests", agentToken, nil), nethttp.StatusForbidden, "FORBIDDEN")
	expectError(t, srv.do(t, nethttp.MethodPost, "/api/categories", agentToken, map[string]string{"name": "X"}), nethttp.StatusForbidden, "FORBIDDEN")

	resp := srv.do(t, nethttp.MethodGet, "/api/admin/users", agentToken, nil)
	if resp.status != nethttp.StatusOK {
		t.Fatalf("agent user list status = %d", resp.status)
	}
	if users, _ := resp.body["data"].([]any); len(users) != 2 {
		t.Fatalf("users = %v", resp.body["data"])
	}

	expectError(t, srv.do(t, nethttp.MethodGet, "/api/nope", "", nil), nethttp.StatusNotFound, "NOT_FOUND")
}

func TestTicketLifecycle(t *testing.T) {
	srv := newTestServer(t, memory.NewStore())
	ownerToken, owner := srv.userToken(t, "owner", domain.RoleEndUser)
	agentToken, agent := srv.userToken(t, "agent", domain.RoleAgent)
	otherToken, _ := srv.userToken(t, "other", domain.RoleEndUser)

	resp := srv.do(t, nethttp.MethodPost, "/api/tickets", ownerToken, map[string]any{
		"subject": "VPN down", "description": "cannot connect",
	})
	if resp.status != nethttp.StatusCreated {
		t.Fatalf("create status = %d: %v", resp.status, resp.body)
	}
	ticket := resp.data(t)
	id := ticket["id"].(string)
	if ticket["priority"] != "medium" || ticket["status"] != "open" || ticket["user_id"] != owner.ID {
		t.Fatalf("unexpected ticket: %v", ticket)
	}

	expectError(t, srv.do(t, nethttp.MethodPost, "/api/tickets", ownerToken, map[string]any{"subject": "x"}),
		nethttp.StatusBadRequest, "VALIDATION_FAILED")
	expectError(t, srv.do(t, nethttp.MethodGet, "/api/tickets/"+id, otherToken, nil), nethttp.StatusForbidden, "FORBIDDEN")
	expectError(t, srv.do(t, nethttp.MethodGet, "/api/tickets/missing", ownerToken, nil), nethttp.StatusNotFound, "NOT_FOUND")
	expectError(t, srv.do(t, nethttp.MethodPut, "/api/tickets/"+id, ownerToken, map[string]any{"status": "resolved"}),
		nethttp.StatusForbidden, "FORBIDDEN")

	resp = srv.do(t, nethttp.MethodPut, "/api/tickets/"+id, agentToken, map[string]any{
		"status": "in-progress", "assigned_to": agent.ID,
	})
	if resp.status != nethttp.StatusOK || resp.data(t)["assigned_user_name"] != "agent" {
		t.Fatalf("update: %d %v", resp.status, resp.body)
	}

	resp = srv.do(t, nethttp.MethodPost, "/api/tickets/"+id+"/vote", otherToken, map[string]string{"vote_type": "upvote"})
	if resp.status != nethttp.StatusOK || resp.data(t)["upvotes"] != float64(1) {
		t.Fatalf("vote: %d %v", resp.status, resp.body)
	}
	expectError(t, srv.do(t, nethttp.MethodPost, "/api/tickets/"+id+"/vote", otherToken, map[string]string{"vote_type": "sideways"}),
		nethttp.StatusBadRequest, "VALIDATION_FAILED")

	resp = srv.do(t, nethttp.MethodPost, "/api/tickets/"+id+"/comments", agentToken, map[string]string{"content": "on it"})
	if resp.status != nethttp.StatusCreated {
		t.Fatalf("comment: %d %v", resp.status, resp.body)
	}
	parentID := resp.data(t)["id"].(string)
	resp = srv.do(t, nethttp.MethodPost, "/api/tickets/"+id+"/comments", ownerToken, map[string]string{
		"content": "thanks", "parent_id": parentID,
	})
	if resp.status != nethttp.StatusCreated {
		t.Fatalf("reply: %d %v", resp.status, resp.body)
	}

	resp = srv.do(t, nethttp.MethodGet, "/api/tickets/"+id+"/comments", ownerToken, nil)
	thread := resp.data(t)
	roots := thread["comments"].([]any)
	if thread["total"] != float64(2) || len(roots) != 1 {
		t.Fatalf("thread: %v", thread)
	}
	if replies := roots[0].(map[string]any)["replies"].([]any); len(replies) != 1 {
		t.Fatalf("replies: %v", replies)
	}

	resp = srv.do(t, nethttp.MethodGet, "/api/tickets?search=vpn&status=in-progress", agentToken, nil)
	list := resp.data(t)
	if tickets := list["tickets"].([]any); len(tickets) != 1 {
		t.Fatalf("list: %v", list)
	}
	if pagination := list["pagination"].(map[string]any); pagination["total"] != float64(1) || pagination["pages"] != float64(1) {
		t.Fatalf("pagination: %v", pagination)
	}
	expectError(t, srv.do(t, nethttp.MethodGet, "/api/tickets?sort=owner", agentToken, nil), nethttp.StatusBadRequest, "VALIDATION_FAILED")

	resp = srv.do(t, nethttp.MethodGet, "/api/notifications?unread=true", ownerToken, nil)
	notes, _ := resp.body["data"].([]any)
	if len(notes) != 2 {
		t.Fatalf("owner notifications: %v", resp.body)
	}
	ids := []string{}
	for _, n := range notes {
		ids = append(ids, n.(map[string]any)["id"].(string))
	}
	resp = srv.do(t, nethttp.MethodPut, "/api/notifications/read", ownerToken, map[string]any{"ids": ids})
	if resp.status != nethttp.StatusOK || resp.data(t)["updated"] != float64(2) {
		t.Fatalf("mark read: %d %v", resp.status, resp.body)
	}
	expectError(t, srv.do(t, nethttp.MethodPut, "/api/notifications/read", ownerToken, map[string]any{}),
		nethttp.StatusBadRequest, "VALIDATION_FAILED")
}

func TestPublicTicketAndGuestComments(t *testing.T) {
	srv := newTestServer(t, memory.NewStore())
	ownerToken, _ := srv.userToken(t, "owner", domain.RoleEndUser)

	resp := srv.do(t, nethttp.MethodPost, "/api/tickets", ownerToken, map[string]any{
		"subject": "Shared", "description": "see link",
	})
	id := resp.data(t)["id"].(string)

	resp = srv.do(t, nethttp.MethodGet, "/api/public/tickets/"+id, "", nil)
	if resp.status != nethttp.StatusOK {
		t.Fatalf("public ticket: %d", resp.status)
	}
	if _, leaked := resp.data(t)["user_email"]; leaked {
		t.Fatal("public ticket leaked owner email")
	}

	resp = srv.do(t, nethttp.MethodPost, "/api/public/tickets/"+id+"/comments", "", map[string]string{
		"content": "me too", "email": "guest@example.com",
	})
	if resp.status != nethttp.StatusCreated {
		t.Fatalf("guest comment: %d %v", resp.status, resp.body)
	}
	comment := resp.data(t)
	if comment["author_name"] != "Anonymous" || comment["author_role"] != "guest" {
		t.Fatalf("guest comment: %v", comment)
	}
	if _, leaked := comment["author_email"]; leaked {
		t.Fatal("guest email echoed on public surface")
	}

	resp = srv.do(t, nethttp.MethodGet, "/api/public/tickets/"+id+"/comments", "", nil)
	if resp.data(t)["total"] != float64(1) {
		t.Fatalf("public thread: %v", resp.body)
	}
	expectError(t, srv.do(t, nethttp.MethodGet, "/api/public/tickets/missing/comments", "", nil), nethttp.StatusNotFound, "NOT_FOUND")
}

func TestCommentEmailsHiddenFromOtherEndUsers(t *testing.T) {
	srv := newTestServer(t, memory.NewStore())
	ownerToken, _ := srv.userToken(t, "owner", domain.RoleEndUser)
	agentToken, _ := srv.userToken(t, "agent", domain.RoleAgent)
	strangerToken, _ := srv.userToken(t, "stranger", domain.RoleEndUser)

	resp := srv.do(t, nethttp.MethodPost, "/api/tickets", ownerToken, map[string]any{
		"subject": "Private", "description": "details",
	})
	id := resp.data(t)["id"].(string)
	resp = srv.do(t, nethttp.MethodPost, "/api/tickets/"+id+"/comments", agentToken, map[string]string{"content": "on it"})
	if resp.status != nethttp.StatusCreated {
		t.Fatalf("agent comment: %d %v", resp.status, resp.body)
	}

	expectError(t, srv.do(t, nethttp.MethodGet, "/api/tickets/"+id, strangerToken, nil), nethttp.StatusForbidden, "FORBIDDEN")

	firstComment := func(token string) map[string]any {
		t.Helper()
		resp := srv.do(t, nethttp.MethodGet, "/api/tickets/"+id+"/comments", token, nil)
		if resp.status != nethttp.StatusOK {
			t.Fatalf("list comments: %d %v", resp.status, resp.body)
		}
		comments, _ := resp.data(t)["comments"].([]any)
		if len(comments) != 1 {
			t.Fatalf("comments: %v", resp.body)
		}
		return comments[0].(map[string]any)
	}

	if _, leaked := firstComment(strangerToken)["author_email"]; leaked {
		t.Fatal("author email shown to an end user who cannot open the ticket")
	}
	if firstComment(ownerToken)["author_email"] != "agent@example.com" {
		t.Fatal("ticket owner should see author email")
	}
	if firstComment(agentToken)["author_email"] != "agent@example.com" {
		t.Fatal("agent should see author email")
	}
}

func TestPromotionFlowOverHTTP(t *testing.T) {
	srv := newTestServer(t, memory.NewStore())
	userToken, user := srv.userToken(t, "member", domain.RoleEndUser)
	adminToken, _ := srv.userToken(t, "admin", domain.RoleAdmin)

	resp := srv.do(t, nethttp.MethodGet, "/api/profile/promotion-status", userToken, nil)
	if resp.data(t)["has_request"] != false {
		t.Fatalf("status before request: %v", resp.body)
	}

	resp = srv.do(t, nethttp.MethodPost, "/api/profile/promotion-requests", userToken, map[string]string{"requested_role": "agent"})
	if resp.status != nethttp.StatusCreated {
		t.Fatalf("request: %d %v", resp.status, resp.body)
	}
	requestID := resp.data(t)["id"].(string)
	expectError(t, srv.do(t, nethttp.MethodPost, "/api/profile/promotion-requests", userToken, map[string]string{"requested_role": "agent"}),
		nethttp.StatusBadRequest, "VALIDATION_FAILED")

	resp = srv.do(t, nethttp.MethodGet, "/api/admin/promotion-requests?status=pending", adminToken, nil)
	if pending, _ := resp.body["data"].([]any); len(pending) != 1 {
		t.Fatalf("pending: %v", resp.body)
	}

	resp = srv.do(t, nethttp.MethodPut, "/api/admin/promotion-requests/"+requestID, adminToken, map[string]string{"action": "approve"})
	if resp.status != nethttp.StatusOK || resp.data(t)["status"] != "approved" {
		t.Fatalf("approve: %d %v", resp.status, resp.body)
	}
	expectError(t, srv.do(t, nethttp.MethodPut, "/api/admin/promotion-requests/"+requestID, adminToken, map[string]string{"action": "reject"}),
		nethttp.StatusBadRequest, "VALIDATION_FAILED")

	// The role is reloaded per request, so the same token now carries agent rights.
	resp = srv.do(t, nethttp.MethodGet, "/api/admin/users", userToken, nil)
	if resp.status != nethttp.StatusOK {
		t.Fatalf("promoted user denied: %d %v", resp.status, resp.body)
	}

	resp = srv.do(t, nethttp.MethodPut, "/api/admin/users/"+user.ID+"/role", adminToken, map[string]string{"role": "end-user"})
	if resp.status != nethttp.StatusOK || resp.data(t)["role"] != "end-user" {
		t.Fatalf("set role: %d %v", resp.status, resp.body)
	}
}

func TestUnconfiguredStoreIsReported(t *testing.T) {
	srv := newTestServer(t, repository.NewPostgresStore(nil))

	resp := srv.do(t, nethttp.MethodGet, "/api/categories", "", nil)
	expectError(t, resp, nethttp.StatusInternalServerError, "UPSTREAM_UNAVAILABLE")
	if !strings.Contains(resp.body["error"].(string), "POSTGRES_DSN") {
		t.Fatalf("message not actionable: %v", resp.body["error"])
	}

	resp = srv.do(t, nethttp.MethodGet, "/health/ready", "", nil)
	if resp.status != nethttp.StatusServiceUnavailable {
		t.Fatalf("ready status = %d", resp.status)
	}
	resp = srv.do(t, nethttp.MethodGet, "/health/live", "", nil)
	if resp.status != nethttp.StatusOK || resp.body["status"] != "alive" {
		t.Fatalf("live: %d %v", resp.status, resp.body)
	}
}

func TestCategoriesAndMetrics(t *testing.T) {
	srv := newTestServer(t, memory.NewStore())
	adminToken, _ := srv.userToken(t, "admin", domain.RoleAdmin)

	resp := srv.do(t, nethttp.MethodPost, "/api/categories", adminToken, map[string]string{"name": "Billing"})
	if resp.status != nethttp.StatusCreated || resp.data(t)["color"] != domain.DefaultCategoryColor {
		t.Fatalf("create category: %d %v", resp.status, resp.body)
	}
	resp = srv.do(t, nethttp.MethodGet, "/api/categories", "", nil)
	if list, _ := resp.body["data"].([]any); len(list) != 1 {
		t.Fatalf("categories: %v", resp.body)
	}

	resp = srv.do(t, nethttp.MethodGet, "/health/metrics", "", nil)
	counters, _ := resp.data(t)["counters"].(map[string]any)
	requests, _ := counters["requests"].(map[string]any)
	if len(requests) == 0 {
		t.Fatalf("metrics recorded no requests: %v", resp.body)
	}
	if _, ok := resp.data(t)["postgres_pool"]; ok {
		t.Fatal("pool stats reported without postgres")
	}
}

package service

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/observability"
	"github.com/spec-kit/helpdesk-service/internal/realtime"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// NotificationService reads a user's notifications and pushes newly
// committed ones to live subscribers.
type NotificationService struct {
	store      repository.Store
	dispatcher events.Dispatcher
	broker     realtime.Broker
	metrics    *observability.Metrics
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// PushMessage is the realtime wire form of a notification.
type PushMessage struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	Read      bool      `json:"read"`
	TicketID  *string   `json:"ticket_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// NotificationDependencies bundles collaborators.
type NotificationDependencies struct {
	Store      repository.Store
	Dispatcher events.Dispatcher
	Broker     realtime.Broker
	Metrics    *observability.Metrics
	Logger     *zap.Logger
	Config     config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(deps NotificationDependencies) *NotificationService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		store:      deps.Store,
		dispatcher: deps.Dispatcher,
		broker:     deps.Broker,
		metrics:    deps.Metrics,
		logger:     logger,
		cfg:        deps.Config,
	}
}

// RegisterHandlers subscribes to every domain event.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	events.SubscribeAll(n.dispatcher, n.handleEvent)
}

// List returns actor's notifications, newest first, capped by config.
func (n *NotificationService) List(ctx context.Context, actor domain.Identity, unreadOnly bool) ([]domain.Notification, error) {
	list, err := n.store.Repos().Notifications.ListByUser(ctx, actor.UserID, unreadOnly, n.cfg.ListLimit)
	if err != nil {
		return nil, storeError(err, "notification")
	}
	return list, nil
}

// MarkRead flags ids as read. Ids addressed to other users are ignored.
func (n *NotificationService) MarkRead(ctx context.Context, actor domain.Identity, ids []string) (int, error) {
	if ids == nil {
		return 0, apperrors.NewValidationError("ids must be an array", map[string]any{"field": "ids"})
	}
	updated, err := n.store.Repos().Notifications.MarkRead(ctx, actor.UserID, ids)
	if err != nil {
		return 0, storeError(err, "notification")
	}
	return updated, nil
}

// Subscribe opens a live feed of actor's new notifications.
func (n *NotificationService) Subscribe(ctx context.Context, actor domain.Identity) (<-chan []byte, func(), error) {
	if n.broker == nil {
		return nil, nil, apperrors.NewUpstream("realtime push is not configured", nil)
	}
	ch, cancel, err := n.broker.Subscribe(ctx, actor.UserID)
	if err != nil {
		return nil, nil, apperrors.NewUpstream("realtime broker unavailable", err)
	}
	return ch, cancel, nil
}

func (n *NotificationService) handleEvent(ctx context.Context, event events.Event) error {
	n.metrics.RecordEvent(string(event.Type))
	n.logger.Debug("domain event",
		zap.String("event_type", string(event.Type)),
		zap.String("event_id", event.ID),
		zap.String("ticket_id", event.TicketID),
		zap.Int("notifications", len(event.Notifications)))

	if n.broker == nil {
		return nil
	}
	for _, notification := range event.Notifications {
		payload, err := json.Marshal(toPushMessage(notification))
		if err != nil {
			return err
		}
		if err := n.broker.Publish(ctx, notification.UserID, payload); err != nil {
			n.metrics.RecordEvent("push_failed")
			n.logger.Warn("notification push failed",
				zap.String("notification_id", notification.ID),
				zap.String("user_id", notification.UserID),
				zap.Error(err))
			continue
		}
		n.metrics.RecordEvent("push_sent")
	}
	return nil
}

func toPushMessage(n domain.Notification) PushMessage {
	return PushMessage{
		ID:        n.ID,
		Title:     n.Title,
		Message:   n.Message,
		Type:      n.Type,
		Read:      n.Read,
		TicketID:  n.TicketID,
		CreatedAt: n.CreatedAt,
	}
}

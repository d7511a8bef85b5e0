package handlers

import (
	"bufio"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/service"
)

const streamKeepAlive = 25 * time.Second

// NotificationsHandler serves a user's notifications and live feed.
type NotificationsHandler struct {
	notifications *service.NotificationService
	logger        *zap.Logger
}

// NewNotificationsHandler constructs handler.
func NewNotificationsHandler(notifications *service.NotificationService, logger *zap.Logger) *NotificationsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationsHandler{notifications: notifications, logger: logger}
}

// List GET /api/notifications?unread=true.
func (h *NotificationsHandler) List(c *fiber.Ctx) error {
	actor, err := identity(c)
	if err != nil {
		return err
	}
	list, err := h.notifications.List(c.UserContext(), actor, c.QueryBool("unread", false))
	if err != nil {
		return err
	}
	items := make([]dto.NotificationResponse, 0, len(list))
	for i := range list {
		items = append(items, dto.NewNotificationResponse(&list[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// MarkRead PUT /api/notifications/read.
func (h *NotificationsHandler) MarkRead(c *fiber.Ctx) error {
	actor, err := identity(c)
	if err != nil {
		return err
	}
	var req dto.MarkReadRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	updated, err := h.notifications.MarkRead(c.UserContext(), actor, req.IDs)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"updated": updated}})
}

// Stream GET /api/notifications/stream. Each pushed notification is one
// server-sent event; comment lines keep idle connections open.
func (h *NotificationsHandler) Stream(c *fiber.Ctx) error {
	actor, err := identity(c)
	if err != nil {
		return err
	}
	feed, cancel, err := h.notifications.Subscribe(c.UserContext(), actor)
	if err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	userID := actor.UserID
	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer cancel()
		ticker := time.NewTicker(streamKeepAlive)
		defer ticker.Stop()

		if _, err := fmt.Fprint(w, ": connected\n\n"); err != nil || w.Flush() != nil {
			return
		}
		for {
			select {
			case payload, ok := <-feed:
				if !ok {
					return
				}
				if _, err := fmt.Fprintf(w, "event: notification\ndata: %s\n\n", payload); err != nil {
					return
				}
			case <-ticker.C:
				if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
					return
				}
			}
			if err := w.Flush(); err != nil {
				h.logger.Debug("notification stream closed", zap.String("user_id", userID), zap.Error(err))
				return
			}
		}
	}))
	return nil
}

package memory

import (
	"context"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

type notificationRepository struct {
	v view
}

func (r *notificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	return r.v.write(func(st *state) error {
		n.ID = newID()
		n.CreatedAt = r.v.now()
		st.notifications = append(st.notifications, *n)
		return nil
	})
}

// ListByUser walks newest first.
func (r *notificationRepository) ListByUser(ctx context.Context, userID string, unreadOnly bool, limit int) ([]domain.Notification, error) {
	result := []domain.Notification{}
	err := r.v.read(func(st *state) error {
		for i := len(st.notifications) - 1; i >= 0; i-- {
			n := st.notifications[i]
			if n.UserID != userID || (unreadOnly && n.Read) {
				continue
			}
			result = append(result, n)
			if limit > 0 && len(result) == limit {
				break
			}
		}
		return nil
	})
	return result, err
}

func (r *notificationRepository) MarkRead(ctx context.Context, userID string, ids []string) (int, error) {
	updated := 0
	if len(ids) == 0 {
		return 0, nil
	}
	err := r.v.write(func(st *state) error {
		for i := range st.notifications {
			n := &st.notifications[i]
			if n.UserID == userID && containsString(ids, n.ID) {
				n.Read = true
				updated++
			}
		}
		return nil
	})
	return updated, err
}

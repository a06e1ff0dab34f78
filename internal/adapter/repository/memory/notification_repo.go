package memory

import (
	"context"

	"github.com/iho/creditledger/internal/domain"
)

// NotificationRepository implements usecase.NotificationRepository.
type NotificationRepository struct {
	store *Store
}

// NewNotificationRepository creates a new NotificationRepository.
func NewNotificationRepository(store *Store) *NotificationRepository {
	return &NotificationRepository{store: store}
}

// Create appends the message to the inbox. A known id is ignored.
func (r *NotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if r.store.notified[n.ID] {
		return nil
	}
	r.store.notified[n.ID] = true

	cp := *n
	r.store.notifications = append(r.store.notifications, &cp)
	return nil
}

// ListByUser lists the user's messages, most recent first.
func (r *NotificationRepository) ListByUser(ctx context.Context, filter domain.NotificationFilter) ([]*domain.Notification, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var out []*domain.Notification
	for i := len(r.store.notifications) - 1; i >= 0; i-- {
		n := r.store.notifications[i]
		if n.UserID != filter.UserID || (filter.UnreadOnly && n.Read) {
			continue
		}
		cp := *n
		out = append(out, &cp)
	}
	return page(out, filter.Limit, filter.Offset), nil
}

// CountUnread counts the user's unread messages.
func (r *NotificationRepository) CountUnread(ctx context.Context, userID int64) (int, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	count := 0
	for _, n := range r.store.notifications {
		if n.UserID == userID && !n.Read {
			count++
		}
	}
	return count, nil
}

// MarkRead marks one of the user's messages as read.
func (r *NotificationRepository) MarkRead(ctx context.Context, userID int64, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, n := range r.store.notifications {
		if n.ID == id && n.UserID == userID {
			n.Read = true
			return nil
		}
	}
	return domain.ErrNotificationNotFound
}

// Delete removes one of the user's messages.
func (r *NotificationRepository) Delete(ctx context.Context, userID int64, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for i, n := range r.store.notifications {
		if n.ID == id && n.UserID == userID {
			r.store.notifications = append(r.store.notifications[:i], r.store.notifications[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotificationNotFound
}

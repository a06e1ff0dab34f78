package postgres

import (
	"context"
	"time"

	"github.com/iho/creditledger/internal/domain"
	"github.com/iho/creditledger/internal/infrastructure/postgres/generated"
)

// NotificationRepository implements usecase.NotificationRepository.
type NotificationRepository struct {
	queries *generated.Queries
}

// NewNotificationRepository creates a new NotificationRepository.
func NewNotificationRepository(db generated.DBTX) *NotificationRepository {
	return &NotificationRepository{
		queries: generated.New(db),
	}
}

// Create stores the message. A known id is ignored, including one the user
// deleted, so redelivered events stay deleted.
func (r *NotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	return r.queries.CreateNotification(ctx, generated.CreateNotificationParams{
		ID:        n.ID,
		UserID:    n.UserID,
		Title:     n.Title,
		Body:      n.Body,
		Category:  string(n.Category),
		Link:      ptrToText(n.Link),
		Read:      n.Read,
		CreatedAt: timeToPgTimestamptz(n.CreatedAt),
	})
}

// ListByUser lists the user's messages, most recent first.
func (r *NotificationRepository) ListByUser(ctx context.Context, filter domain.NotificationFilter) ([]*domain.Notification, error) {
	rows, err := r.queries.ListNotificationsByUser(ctx, generated.ListNotificationsByUserParams{
		UserID:     filter.UserID,
		UnreadOnly: filter.UnreadOnly,
		RowLimit:   int32(filter.Limit),
		RowOffset:  int32(filter.Offset),
	})
	if err != nil {
		return nil, err
	}

	out := make([]*domain.Notification, 0, len(rows))
	for _, row := range rows {
		out = append(out, &domain.Notification{
			CreatedAt: row.CreatedAt.Time,
			Link:      textToPtr(row.Link),
			ID:        row.ID,
			Title:     row.Title,
			Body:      row.Body,
			Category:  domain.NotificationCategory(row.Category),
			UserID:    row.UserID,
			Read:      row.Read,
		})
	}

	return out, nil
}

// CountUnread counts the user's unread messages.
func (r *NotificationRepository) CountUnread(ctx context.Context, userID int64) (int, error) {
	n, err := r.queries.CountUnreadNotifications(ctx, userID)
	return int(n), err
}

// MarkRead marks one of the user's messages as read.
func (r *NotificationRepository) MarkRead(ctx context.Context, userID int64, id string) error {
	n, err := r.queries.MarkNotificationRead(ctx, generated.MarkNotificationReadParams{ID: id, UserID: userID})
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotificationNotFound
	}
	return nil
}

// Delete removes one of the user's messages. The row stays behind as a
// tombstone with its content cleared.
func (r *NotificationRepository) Delete(ctx context.Context, userID int64, id string) error {
	n, err := r.queries.DeleteNotification(ctx, generated.DeleteNotificationParams{
		ID:        id,
		UserID:    userID,
		DeletedAt: timeToPgTimestamptz(time.Now().UTC()),
	})
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotificationNotFound
	}
	return nil
}

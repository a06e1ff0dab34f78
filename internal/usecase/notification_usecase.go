package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/creditledger/internal/domain"
)

var ErrInvalidNotification = errors.New("notification requires a recipient and a title")

// NotificationUseCase owns user inboxes. It is the NotificationSink the
// ledger delivers alerts to.
type NotificationUseCase struct {
	repo   NotificationRepository
	idGen  IDGenerator
	logger zerolog.Logger
}

// NewNotificationUseCase creates a new NotificationUseCase.
func NewNotificationUseCase(repo NotificationRepository, idGen IDGenerator, logger zerolog.Logger) *NotificationUseCase {
	return &NotificationUseCase{
		repo:   repo,
		idGen:  idGen,
		logger: logger,
	}
}

// Enqueue stores msg in the recipient's inbox and returns its id. A message
// that already carries an id keeps it, so redelivery is a no-op.
func (uc *NotificationUseCase) Enqueue(ctx context.Context, msg *domain.Notification) (string, error) {
	if msg.UserID <= 0 || strings.TrimSpace(msg.Title) == "" {
		return "", ErrInvalidNotification
	}

	if msg.ID == "" {
		msg.ID = uc.idGen.Generate()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}

	if err := uc.repo.Create(ctx, msg); err != nil {
		return "", err
	}

	uc.logger.Debug().
		Str("notification_id", msg.ID).
		Int64("user_id", msg.UserID).
		Str("category", string(msg.Category)).
		Msg("notification enqueued")

	return msg.ID, nil
}

// ListNotifications lists a user's inbox, most recent first.
func (uc *NotificationUseCase) ListNotifications(ctx context.Context, filter domain.NotificationFilter) ([]*domain.Notification, error) {
	if err := domain.ValidateAccountID(filter.UserID); err != nil {
		return nil, err
	}
	filter.Limit, filter.Offset, _ = domain.ValidatePagination(filter.Limit, filter.Offset)
	return uc.repo.ListByUser(ctx, filter)
}

// UnreadCount returns how many messages the user has not read.
func (uc *NotificationUseCase) UnreadCount(ctx context.Context, userID int64) (int, error) {
	return uc.repo.CountUnread(ctx, userID)
}

// MarkRead marks one of the user's messages as read.
func (uc *NotificationUseCase) MarkRead(ctx context.Context, userID int64, id string) error {
	return uc.repo.MarkRead(ctx, userID, id)
}

// DeleteNotification removes one of the user's messages.
func (uc *NotificationUseCase) DeleteNotification(ctx context.Context, userID int64, id string) error {
	return uc.repo.Delete(ctx, userID, id)
}

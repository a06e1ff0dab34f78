package domain

import "time"

// Event types
const (
	EventTypeNotificationRequested = "notification.requested"
)

// Aggregate types
const (
	AggregateTypeAccount = "account"
)

// OutboxEvent is a notification committed together with the ledger mutation
// that caused it and delivered to the inbox afterwards.
type OutboxEvent struct {
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Message       *Notification
	ID            string
	AggregateType string
	EventType     string
	AccountID     int64
	Published     bool
}

// NewNotificationEvent wraps msg for delivery. The message id doubles as the
// inbox id so redelivery is detectable by the sink.
func NewNotificationEvent(id string, accountID int64, msg *Notification, now time.Time) *OutboxEvent {
	msg.ID = id
	msg.CreatedAt = now
	return &OutboxEvent{
		ID:            id,
		AccountID:     accountID,
		AggregateType: AggregateTypeAccount,
		EventType:     EventTypeNotificationRequested,
		Message:       msg,
		CreatedAt:     now,
	}
}

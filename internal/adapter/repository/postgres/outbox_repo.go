package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/iho/creditledger/internal/domain"
	"github.com/iho/creditledger/internal/infrastructure/postgres/generated"
	"github.com/iho/creditledger/internal/usecase"
)

// notificationPayload is the JSON stored in outbox_events.payload.
type notificationPayload struct {
	CreatedAt time.Time `json:"created_at"`
	Link      *string   `json:"link,omitempty"`
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Category  string    `json:"category"`
	UserID    int64     `json:"user_id"`
}

// OutboxRepository implements usecase.OutboxRepository.
type OutboxRepository struct {
	queries *generated.Queries
}

// NewOutboxRepository creates a new OutboxRepository.
func NewOutboxRepository(db generated.DBTX) *OutboxRepository {
	return &OutboxRepository{
		queries: generated.New(db),
	}
}

// Create creates a new outbox event within a transaction.
func (r *OutboxRepository) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	queries, err := txQueries(tx)
	if err != nil {
		return err
	}

	if event.Message == nil {
		return fmt.Errorf("outbox event %s has no message", event.ID)
	}

	payload, err := json.Marshal(notificationPayload{
		CreatedAt: event.Message.CreatedAt,
		Link:      event.Message.Link,
		ID:        event.Message.ID,
		Title:     event.Message.Title,
		Body:      event.Message.Body,
		Category:  string(event.Message.Category),
		UserID:    event.Message.UserID,
	})
	if err != nil {
		return err
	}

	return queries.CreateOutboxEvent(ctx, generated.CreateOutboxEventParams{
		ID:            event.ID,
		AccountID:     event.AccountID,
		AggregateType: event.AggregateType,
		EventType:     event.EventType,
		Payload:       payload,
		CreatedAt:     timeToPgTimestamptz(event.CreatedAt),
		Published:     event.Published,
	})
}

// GetUnpublished retrieves unpublished events created no later than olderThan.
func (r *OutboxRepository) GetUnpublished(ctx context.Context, limit int, olderThan time.Time) ([]*domain.OutboxEvent, error) {
	rows, err := r.queries.GetUnpublishedEvents(ctx, generated.GetUnpublishedEventsParams{
		Limit:     int32(limit),
		CreatedAt: timeToPgTimestamptz(olderThan),
	})
	if err != nil {
		return nil, err
	}

	events := make([]*domain.OutboxEvent, 0, len(rows))
	for _, row := range rows {
		event, err := rowToOutboxEvent(row)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}

	return events, nil
}

// MarkPublished marks an event as published.
func (r *OutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	return r.queries.MarkEventPublished(ctx, generated.MarkEventPublishedParams{
		ID:          id,
		PublishedAt: timeToPgTimestamptz(publishedAt),
	})
}

// DeletePublished deletes published events older than the given time.
func (r *OutboxRepository) DeletePublished(ctx context.Context, before time.Time) error {
	return r.queries.DeletePublishedEvents(ctx, timeToPgTimestamptz(before))
}

func rowToOutboxEvent(row generated.OutboxEvent) (*domain.OutboxEvent, error) {
	var p notificationPayload
	if err := json.Unmarshal(row.Payload, &p); err != nil {
		return nil, fmt.Errorf("outbox event %s: %w", row.ID, err)
	}

	var publishedAt *time.Time
	if row.PublishedAt.Valid {
		t := row.PublishedAt.Time
		publishedAt = &t
	}

	return &domain.OutboxEvent{
		ID:            row.ID,
		AccountID:     row.AccountID,
		AggregateType: row.AggregateType,
		EventType:     row.EventType,
		CreatedAt:     row.CreatedAt.Time,
		PublishedAt:   publishedAt,
		Published:     row.Published,
		Message: &domain.Notification{
			CreatedAt: p.CreatedAt,
			Link:      p.Link,
			ID:        p.ID,
			Title:     p.Title,
			Body:      p.Body,
			Category:  domain.NotificationCategory(p.Category),
			UserID:    p.UserID,
		},
	}, nil
}

package memory

import (
	"context"
	"time"

	"github.com/iho/creditledger/internal/domain"
	"github.com/iho/creditledger/internal/usecase"
)

// OutboxRepository implements usecase.OutboxRepository.
type OutboxRepository struct {
	store *Store
}

// NewOutboxRepository creates a new OutboxRepository.
func NewOutboxRepository(store *Store) *OutboxRepository {
	return &OutboxRepository{store: store}
}

// Create buffers the event until commit.
func (r *OutboxRepository) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	t, err := asTx(tx)
	if err != nil {
		return err
	}
	t.outbox = append(t.outbox, cloneEvent(event))
	return nil
}

// GetUnpublished returns unpublished events created before olderThan in
// insert order.
func (r *OutboxRepository) GetUnpublished(ctx context.Context, limit int, olderThan time.Time) ([]*domain.OutboxEvent, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var out []*domain.OutboxEvent
	for _, e := range r.store.outbox {
		if len(out) >= limit {
			break
		}
		if !e.Published && e.CreatedAt.Before(olderThan) {
			out = append(out, cloneEvent(e))
		}
	}
	return out, nil
}

// MarkPublished marks an event as published.
func (r *OutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, e := range r.store.outbox {
		if e.ID == id {
			e.Published = true
			e.PublishedAt = &publishedAt
			return nil
		}
	}
	return nil
}

// DeletePublished removes published events older than before.
func (r *OutboxRepository) DeletePublished(ctx context.Context, before time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	kept := r.store.outbox[:0]
	for _, e := range r.store.outbox {
		if e.Published && e.PublishedAt != nil && e.PublishedAt.Before(before) {
			continue
		}
		kept = append(kept, e)
	}
	clear(r.store.outbox[len(kept):])
	r.store.outbox = kept
	return nil
}

func cloneEvent(e *domain.OutboxEvent) *domain.OutboxEvent {
	cp := *e
	if e.Message != nil {
		msg := *e.Message
		cp.Message = &msg
	}
	return &cp
}

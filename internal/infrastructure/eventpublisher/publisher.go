package eventpublisher

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/creditledger/internal/domain"
	"github.com/iho/creditledger/internal/usecase"
)

// EventPublisher redelivers outbox events that the eager post-commit flush
// did not publish.
type EventPublisher struct {
	outboxRepo usecase.OutboxRepository
	publisher  Publisher
	observer   Observer
	logger     zerolog.Logger
	batchSize  int
	interval   time.Duration
	minAge     time.Duration
	retention  time.Duration
}

// Publisher defines the interface for publishing events to external systems.
type Publisher interface {
	Publish(ctx context.Context, event *domain.OutboxEvent) error
}

// Observer is told about every published event.
type Observer interface {
	EventPublished()
}

// Config for EventPublisher.
type Config struct {
	OutboxRepo usecase.OutboxRepository
	Publisher  Publisher
	Observer   Observer
	Logger     zerolog.Logger
	BatchSize  int           // Number of events to fetch per batch
	Interval   time.Duration // Polling interval
	MinAge     time.Duration // Younger events are left to the eager flush
	Retention  time.Duration // Published events older than this are deleted
}

// NewEventPublisher creates a new EventPublisher.
func NewEventPublisher(cfg Config) *EventPublisher {
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 100
	}
	if cfg.Interval == 0 {
		cfg.Interval = 5 * time.Second
	}
	if cfg.MinAge == 0 {
		cfg.MinAge = cfg.Interval
	}

	return &EventPublisher{
		outboxRepo: cfg.OutboxRepo,
		publisher:  cfg.Publisher,
		observer:   cfg.Observer,
		logger:     cfg.Logger,
		batchSize:  cfg.BatchSize,
		interval:   cfg.Interval,
		minAge:     cfg.MinAge,
		retention:  cfg.Retention,
	}
}

// Start begins the event publishing worker.
// It runs continuously until the context is cancelled.
func (ep *EventPublisher) Start(ctx context.Context) error {
	ep.logger.Info().
		Int("batch_size", ep.batchSize).
		Dur("interval", ep.interval).
		Msg("event publisher started")

	ticker := time.NewTicker(ep.interval)
	defer ticker.Stop()

	// Process immediately on start
	ep.runOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			ep.logger.Info().Msg("event publisher shutting down")
			return ctx.Err()
		case <-ticker.C:
			ep.runOnce(ctx)
		}
	}
}

func (ep *EventPublisher) runOnce(ctx context.Context) {
	if _, err := ep.processEvents(ctx); err != nil && !errors.Is(err, context.Canceled) {
		ep.logger.Error().Err(err).Msg("error processing events")
	}

	if ep.retention > 0 {
		if err := ep.outboxRepo.DeletePublished(ctx, time.Now().Add(-ep.retention)); err != nil && !errors.Is(err, context.Canceled) {
			ep.logger.Error().Err(err).Msg("failed to delete published events")
		}
	}
}

// processEvents fetches and publishes a batch of unpublished events. It
// returns how many were published.
func (ep *EventPublisher) processEvents(ctx context.Context) (int, error) {
	events, err := ep.outboxRepo.GetUnpublished(ctx, ep.batchSize, time.Now().Add(-ep.minAge))
	if err != nil {
		return 0, err
	}

	if len(events) == 0 {
		return 0, nil
	}

	ep.logger.Info().Int("count", len(events)).Msg("redelivering outbox events")

	published := 0
	for _, event := range events {
		if err := ep.publisher.Publish(ctx, event); err != nil {
			ep.logger.Error().
				Err(err).
				Str("event_id", event.ID).
				Str("event_type", event.EventType).
				Msg("failed to publish event")
			// Continue processing other events even if one fails
			continue
		}

		// A failed mark means the event is redelivered next round; the
		// inbox ignores the duplicate id.
		if err := ep.outboxRepo.MarkPublished(ctx, event.ID, time.Now()); err != nil {
			ep.logger.Error().
				Err(err).
				Str("event_id", event.ID).
				Msg("failed to mark event as published")
			continue
		}

		published++
		if ep.observer != nil {
			ep.observer.EventPublished()
		}
	}

	return published, nil
}

// SinkPublisher delivers notification events to the inbox.
type SinkPublisher struct {
	sink usecase.NotificationSink
}

// NewSinkPublisher creates a new SinkPublisher.
func NewSinkPublisher(sink usecase.NotificationSink) *SinkPublisher {
	return &SinkPublisher{sink: sink}
}

// Publish enqueues the event's message.
func (p *SinkPublisher) Publish(ctx context.Context, event *domain.OutboxEvent) error {
	if event.EventType != domain.EventTypeNotificationRequested || event.Message == nil {
		return errUnknownEvent
	}
	_, err := p.sink.Enqueue(ctx, event.Message)
	return err
}

var errUnknownEvent = errors.New("outbox event carries no notification")

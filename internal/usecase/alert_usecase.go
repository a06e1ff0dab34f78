package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/creditledger/internal/domain"
)

// AlertEngine evaluates low-balance thresholds and delivers the resulting
// notifications. OnBalanceChanged and Stage run inside the ledger
// transaction; Deliver runs after commit.
type AlertEngine struct {
	alertRepo  AlertStateRepository
	outboxRepo OutboxRepository
	directory  AdministratorDirectory
	sink       NotificationSink
	idGen      IDGenerator
	thresholds domain.Thresholds
	metrics    Metrics
	logger     zerolog.Logger
}

// AlertEngineConfig configures an AlertEngine.
type AlertEngineConfig struct {
	AlertRepo  AlertStateRepository
	OutboxRepo OutboxRepository
	Directory  AdministratorDirectory
	Sink       NotificationSink
	IDGen      IDGenerator
	Thresholds domain.Thresholds // defaults to domain.DefaultThresholds
	Metrics    Metrics
	Logger     zerolog.Logger
}

// NewAlertEngine creates a new AlertEngine.
func NewAlertEngine(cfg AlertEngineConfig) *AlertEngine {
	if len(cfg.Thresholds) == 0 {
		cfg.Thresholds = domain.DefaultThresholds
	}
	if cfg.Metrics == nil {
		cfg.Metrics = noopMetrics{}
	}

	return &AlertEngine{
		alertRepo:  cfg.AlertRepo,
		outboxRepo: cfg.OutboxRepo,
		directory:  cfg.Directory,
		sink:       cfg.Sink,
		idGen:      cfg.IDGen,
		thresholds: cfg.Thresholds,
		metrics:    cfg.Metrics,
		logger:     cfg.Logger,
	}
}

// OnBalanceChanged advances the account's alert state for its new balance
// and stages alerts for the holder and admins. The account must be locked
// by tx. admins comes from Administrators, resolved before tx began.
func (e *AlertEngine) OnBalanceChanged(ctx context.Context, tx Transaction, account *domain.Account, admins []int64) ([]*domain.OutboxEvent, error) {
	if account.Balance < 0 {
		e.logger.Warn().
			Int64("account_id", account.ID).
			Int64("balance", account.Balance).
			Msg("negative balance observed, skipping alert evaluation")
		return nil, nil
	}

	state, err := e.alertRepo.Get(ctx, tx, account.ID)
	if err != nil {
		return nil, fmt.Errorf("load alert state: %w", err)
	}

	now := time.Now().UTC()
	decision := state.Observe(e.thresholds, account.Balance, now)

	if decision.Changed {
		if err := e.alertRepo.Save(ctx, tx, state); err != nil {
			return nil, fmt.Errorf("save alert state: %w", err)
		}
	}

	if !decision.Notify {
		return nil, nil
	}

	holderMsg, adminMsg := domain.LowBalanceMessages(account, decision.Threshold)

	events := make([]*domain.OutboxEvent, 0, 2)

	holder := holderMsg
	holder.UserID = account.ID
	event, err := e.stage(ctx, tx, account.ID, &holder, now)
	if err != nil {
		return nil, err
	}
	events = append(events, event)

	for _, adminID := range except(admins, account.ID) {
		msg := adminMsg
		msg.UserID = adminID
		event, err := e.stage(ctx, tx, account.ID, &msg, now)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}

	e.metrics.AlertEmitted(decision.Threshold)
	e.logger.Info().
		Int64("account_id", account.ID).
		Int64("balance", account.Balance).
		Int64("threshold", decision.Threshold).
		Int("recipients", len(events)).
		Msg("low balance alert staged")

	return events, nil
}

// Stage writes a single notification for accountID to the outbox.
func (e *AlertEngine) Stage(ctx context.Context, tx Transaction, accountID int64, msg *domain.Notification) (*domain.OutboxEvent, error) {
	return e.stage(ctx, tx, accountID, msg, time.Now().UTC())
}

func (e *AlertEngine) stage(ctx context.Context, tx Transaction, accountID int64, msg *domain.Notification, now time.Time) (*domain.OutboxEvent, error) {
	event := domain.NewNotificationEvent(e.idGen.Generate(), accountID, msg, now)
	if err := e.outboxRepo.Create(ctx, tx, event); err != nil {
		return nil, fmt.Errorf("stage notification: %w", err)
	}
	return event, nil
}

// Administrators lists the admin recipients of low-balance alerts. It must
// be called outside the ledger transaction. A directory failure degrades to
// holder-only delivery.
func (e *AlertEngine) Administrators(ctx context.Context) []int64 {
	if e.directory == nil {
		return nil
	}

	ids, err := e.directory.ListAdministrators(ctx)
	if err != nil {
		e.logger.Error().Err(err).Msg("failed to list administrators, alerting holders only")
		return nil
	}
	return ids
}

// except drops holderID and duplicates from ids.
func except(ids []int64, holderID int64) []int64 {
	out := make([]int64, 0, len(ids))
	seen := map[int64]bool{holderID: true}
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// Deliver hands committed events to the sink and marks them published.
// Failures are logged and left for the outbox publisher.
func (e *AlertEngine) Deliver(ctx context.Context, events []*domain.OutboxEvent) {
	if len(events) == 0 || e.sink == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), outboxFlushTimeout)
	defer cancel()

	for _, event := range events {
		if _, err := e.sink.Enqueue(ctx, event.Message); err != nil {
			e.metrics.NotificationFailed()
			e.logger.Warn().Err(err).
				Str("event_id", event.ID).
				Int64("user_id", event.Message.UserID).
				Msg("notification delivery failed, leaving for outbox publisher")
			continue
		}
		e.metrics.NotificationDelivered()

		if err := e.outboxRepo.MarkPublished(ctx, event.ID, time.Now().UTC()); err != nil {
			e.logger.Error().Err(err).
				Str("event_id", event.ID).
				Msg("failed to mark event as published")
		}
	}
}

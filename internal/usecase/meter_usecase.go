package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/iho/creditledger/internal/domain"
)

// MeterUseCase gates billable operations on the caller's balance and debits
// them only after they succeed.
type MeterUseCase struct {
	txManager   TransactionManager
	accountRepo AccountRepository
	transfers   *TransferUseCase
	metrics     Metrics
	logger      zerolog.Logger
}

// NewMeterUseCase creates a new MeterUseCase.
func NewMeterUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	transfers *TransferUseCase,
	logger zerolog.Logger,
) *MeterUseCase {
	return &MeterUseCase{
		txManager:   txManager,
		accountRepo: accountRepo,
		transfers:   transfers,
		metrics:     noopMetrics{},
		logger:      logger,
	}
}

// WithMetrics sets the metrics sink.
func (uc *MeterUseCase) WithMetrics(m Metrics) *MeterUseCase {
	if m != nil {
		uc.metrics = m
	}
	return uc
}

// MeterInput describes one metered charge.
type MeterInput struct {
	Description string
	Kind        domain.EntryKind
	AccountID   int64
	Cost        int64
}

// MeterResult reports the committed debit of a metered operation.
type MeterResult struct {
	Entry   *domain.Entry
	Balance int64
}

// Meter admits the operation when the balance covers the cost, runs it
// without holding any lock, and debits the cost only if it succeeded.
func (uc *MeterUseCase) Meter(ctx context.Context, in MeterInput, operation func(ctx context.Context) error) (*MeterResult, error) {
	if in.Cost <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	if err := domain.ValidateAmount(in.Cost); err != nil {
		return nil, err
	}
	if !in.Kind.IsValid() {
		return nil, domain.ErrInvalidEntryKind
	}

	if err := uc.admit(ctx, in); err != nil {
		return nil, err
	}

	if err := operation(ctx); err != nil {
		uc.logger.Debug().Err(err).
			Int64("account_id", in.AccountID).
			Msg("metered operation failed, no charge")
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// The operation already happened; caller cancellation must not skip the charge.
	change, err := uc.transfers.Debit(context.WithoutCancel(ctx), in.AccountID, in.Cost, in.Kind, in.Description)
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientBalance) {
			uc.metrics.MeterRejected()
			uc.logger.Warn().
				Int64("account_id", in.AccountID).
				Int64("cost", in.Cost).
				Msg("balance drained during metered operation")
			return nil, fmt.Errorf("%w: account %d", domain.ErrInsufficientCredits, in.AccountID)
		}
		return nil, err
	}

	return &MeterResult{Entry: change.Entry, Balance: change.Balance}, nil
}

// admit reads the balance under the account lock without mutating it.
func (uc *MeterUseCase) admit(ctx context.Context, in MeterInput) error {
	return uc.transfers.retrier.Retry(ctx, func() error {
		return uc.admitOnce(ctx, in)
	})
}

func (uc *MeterUseCase) admitOnce(ctx context.Context, in MeterInput) error {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	accounts, err := uc.accountRepo.GetByIDsForUpdate(ctx, tx, []int64{in.AccountID})
	if err != nil {
		return err
	}
	if len(accounts) == 0 {
		return fmt.Errorf("%w: %d", domain.ErrAccountNotFound, in.AccountID)
	}

	if accounts[0].Balance < in.Cost {
		uc.metrics.MeterRejected()
		return fmt.Errorf("%w: balance %d, cost %d", domain.ErrInsufficientCredits, accounts[0].Balance, in.Cost)
	}

	return nil
}

// MeterValue is Meter for operations that produce a value.
func MeterValue[T any](ctx context.Context, uc *MeterUseCase, in MeterInput, operation func(ctx context.Context) (T, error)) (T, *MeterResult, error) {
	var value T
	result, err := uc.Meter(ctx, in, func(ctx context.Context) error {
		v, err := operation(ctx)
		if err != nil {
			return err
		}
		value = v
		return nil
	})
	if err != nil {
		var zero T
		return zero, nil, err
	}
	return value, result, nil
}

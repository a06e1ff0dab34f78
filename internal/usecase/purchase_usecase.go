package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/creditledger/internal/domain"
)

var (
	ErrInvalidPrice   = errors.New("amount paid does not buy a whole credit")
	ErrInvalidPayment = errors.New("amount paid must be positive")
)

// PurchaseUseCase turns confirmed payments into credits exactly once per
// provider reference. The registry turns concurrent repeats away early; the
// purchase entry in the ledger is the durable record.
type PurchaseUseCase struct {
	transfers *TransferUseCase
	registry  PaymentRegistry
	unitPrice decimal.Decimal
	logger    zerolog.Logger
}

// NewPurchaseUseCase creates a new PurchaseUseCase. unitPrice is the price
// of one credit in the payment currency.
func NewPurchaseUseCase(transfers *TransferUseCase, registry PaymentRegistry, unitPrice decimal.Decimal, logger zerolog.Logger) *PurchaseUseCase {
	return &PurchaseUseCase{
		transfers: transfers,
		registry:  registry,
		unitPrice: unitPrice,
		logger:    logger,
	}
}

// PurchaseInput is a confirmed payment.
type PurchaseInput struct {
	ProviderReference string
	AmountPaid        decimal.Decimal
	Credits           int64 // derived from AmountPaid when zero
	AccountID         int64
}

// Purchase credits the account for a confirmed payment.
func (uc *PurchaseUseCase) Purchase(ctx context.Context, in PurchaseInput) (*domain.BalanceChange, error) {
	if err := domain.ValidateReference(in.ProviderReference); err != nil {
		return nil, err
	}

	credits, err := uc.credits(in)
	if err != nil {
		return nil, err
	}

	claimed, err := uc.registry.Claim(ctx, in.ProviderReference)
	if err != nil {
		return nil, fmt.Errorf("claim payment reference: %w", err)
	}
	if !claimed {
		return nil, fmt.Errorf("%w: %s", domain.ErrDuplicatePayment, in.ProviderReference)
	}

	confirm := func(acc *domain.Account) domain.Notification {
		return domain.PurchaseMessage(credits, acc.Balance)
	}

	// The ledger refuses a reference it already holds, so a lost or expired
	// claim cannot credit the same payment twice.
	change, err := uc.transfers.credit(ctx, in.AccountID, credits, domain.EntryKindPurchase, in.ProviderReference, confirm)
	if errors.Is(err, domain.ErrDuplicatePayment) {
		return nil, err
	}
	if err != nil {
		if relErr := uc.registry.Release(context.WithoutCancel(ctx), in.ProviderReference); relErr != nil {
			uc.logger.Error().Err(relErr).
				Str("reference", in.ProviderReference).
				Msg("failed to release payment claim")
		}
		return nil, err
	}

	if err := uc.registry.Complete(ctx, in.ProviderReference, change.Entry.ID); err != nil {
		uc.logger.Error().Err(err).
			Str("reference", in.ProviderReference).
			Int64("entry_id", change.Entry.ID).
			Msg("failed to mark payment complete")
	}

	uc.logger.Info().
		Int64("account_id", in.AccountID).
		Int64("credits", credits).
		Str("reference", in.ProviderReference).
		Msg("credits purchased")

	return change, nil
}

// credits resolves how many credits the payment buys.
func (uc *PurchaseUseCase) credits(in PurchaseInput) (int64, error) {
	if in.Credits != 0 {
		if err := domain.ValidateAmount(in.Credits); err != nil {
			return 0, err
		}
		return in.Credits, nil
	}

	if !in.AmountPaid.IsPositive() {
		return 0, ErrInvalidPayment
	}
	if !uc.unitPrice.IsPositive() {
		return 0, fmt.Errorf("%w: unit price not configured", ErrInvalidPrice)
	}

	credits := in.AmountPaid.Div(uc.unitPrice).Floor()
	if credits.LessThan(decimal.NewFromInt(1)) {
		return 0, fmt.Errorf("%w: paid %s at %s per credit", ErrInvalidPrice, in.AmountPaid, uc.unitPrice)
	}
	if credits.GreaterThan(decimal.NewFromInt(domain.MaxAmount)) {
		return 0, domain.ErrAmountTooLarge
	}

	return credits.IntPart(), nil
}

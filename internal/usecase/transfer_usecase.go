package usecase

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/creditledger/internal/domain"
)

// TransferUseCase applies credits, debits and two-account transfers.
type TransferUseCase struct {
	txManager   TransactionManager
	accountRepo AccountRepository
	entryRepo   EntryRepository
	alerts      *AlertEngine
	retrier     Retrier
	metrics     Metrics
	logger      zerolog.Logger
}

// NewTransferUseCase creates a new TransferUseCase. A nil retrier runs each
// transaction once.
func NewTransferUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	entryRepo EntryRepository,
	alerts *AlertEngine,
	retrier Retrier,
	logger zerolog.Logger,
) *TransferUseCase {
	if retrier == nil {
		retrier = onceRetrier{}
	}

	return &TransferUseCase{
		txManager:   txManager,
		accountRepo: accountRepo,
		entryRepo:   entryRepo,
		alerts:      alerts,
		retrier:     retrier,
		metrics:     noopMetrics{},
		logger:      logger,
	}
}

// WithMetrics sets the metrics sink.
func (uc *TransferUseCase) WithMetrics(m Metrics) *TransferUseCase {
	if m != nil {
		uc.metrics = m
	}
	return uc
}

// posting is one signed balance change inside a transaction.
type posting struct {
	counterparty *int64
	description  string
	kind         domain.EntryKind
	accountID    int64
	amount       int64
}

// notice builds a message for an account from its post-mutation state.
type notice func(account *domain.Account) domain.Notification

// Credit adds amount to the account. It never fails on balance.
func (uc *TransferUseCase) Credit(ctx context.Context, accountID, amount int64, kind domain.EntryKind, description string) (*domain.BalanceChange, error) {
	return uc.credit(ctx, accountID, amount, kind, description, nil)
}

func (uc *TransferUseCase) credit(ctx context.Context, accountID, amount int64, kind domain.EntryKind, description string, build notice) (*domain.BalanceChange, error) {
	if err := validateSingle(accountID, amount, kind, description); err != nil {
		return nil, err
	}

	var notices map[int64]notice
	if build != nil {
		notices = map[int64]notice{accountID: build}
	}

	entries, err := uc.apply(ctx, "credit", []posting{{
		accountID:   accountID,
		amount:      amount,
		kind:        kind,
		description: description,
	}}, notices)
	if err != nil {
		return nil, err
	}

	return &domain.BalanceChange{Entry: entries[0], AccountID: accountID, Balance: entries[0].BalanceAfter}, nil
}

// Debit removes amount from the account, failing with
// domain.ErrInsufficientBalance when the balance cannot cover it.
func (uc *TransferUseCase) Debit(ctx context.Context, accountID, amount int64, kind domain.EntryKind, description string) (*domain.BalanceChange, error) {
	if err := validateSingle(accountID, amount, kind, description); err != nil {
		return nil, err
	}

	entries, err := uc.apply(ctx, "debit", []posting{{
		accountID:   accountID,
		amount:      -amount,
		kind:        kind,
		description: description,
	}}, nil)
	if err != nil {
		return nil, err
	}

	return &domain.BalanceChange{Entry: entries[0], AccountID: accountID, Balance: entries[0].BalanceAfter}, nil
}

// Transfer moves credits between two accounts. A positive amount debits the
// source and credits the destination; a negative amount reverses the flow.
func (uc *TransferUseCase) Transfer(ctx context.Context, t domain.Transfer) (*domain.TransferRecord, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	if err := domain.ValidateSignedAmount(t.Amount); err != nil {
		return nil, err
	}
	if err := domain.ValidateDescription(t.Description); err != nil {
		return nil, err
	}

	kind := t.EntryKind()
	source, dest := t.SourceID, t.DestID

	// Entries are written in the order the money moves.
	postings := []posting{
		{accountID: source, amount: -t.Amount, kind: kind, description: t.DebitDescription(dest), counterparty: &dest},
		{accountID: dest, amount: t.Amount, kind: kind, description: t.CreditDescription(source), counterparty: &source},
	}
	if t.IsReversal() {
		postings[0].description = t.CreditDescription(dest)
		postings[1].description = t.DebitDescription(source)
	}

	entries, err := uc.apply(ctx, "transfer", postings, nil)
	if err != nil {
		return nil, err
	}

	return &domain.TransferRecord{
		CreatedAt:     entries[0].CreatedAt,
		SourceEntry:   entries[0],
		DestEntry:     entries[1],
		SourceID:      source,
		DestID:        dest,
		Amount:        t.Amount,
		SourceBalance: entries[0].BalanceAfter,
		DestBalance:   entries[1].BalanceAfter,
		Kind:          kind,
	}, nil
}

// apply runs the postings in one transaction, retrying on lock contention,
// then delivers staged notifications.
func (uc *TransferUseCase) apply(ctx context.Context, operation string, postings []posting, notices map[int64]notice) ([]*domain.Entry, error) {
	var (
		entries []*domain.Entry
		events  []*domain.OutboxEvent
		admins  []int64
	)

	// Resolved before any row lock is taken.
	if uc.alerts != nil {
		admins = uc.alerts.Administrators(ctx)
	}

	err := uc.retrier.Retry(ctx, func() error {
		var err error
		entries, events, err = uc.applyOnce(ctx, postings, notices, admins)
		return err
	})
	if err != nil {
		uc.metrics.OperationFailed(operation, err)
		return nil, err
	}

	for _, e := range entries {
		uc.metrics.CreditsMoved(e.Kind, e.Amount)
	}

	if uc.alerts != nil {
		uc.alerts.Deliver(ctx, events)
	}

	return entries, nil
}

func (uc *TransferUseCase) applyOnce(ctx context.Context, postings []posting, notices map[int64]notice, admins []int64) ([]*domain.Entry, []*domain.OutboxEvent, error) {
	// 1. Collect and sort unique account IDs (DEADLOCK PREVENTION)
	ids := make([]int64, 0, len(postings))
	for _, p := range postings {
		ids = append(ids, p.accountID)
	}
	slices.Sort(ids)
	ids = slices.Compact(ids)

	// 2. Begin transaction
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback(ctx)

	// 3. Lock accounts in sorted order
	accounts, err := uc.accountRepo.GetByIDsForUpdate(ctx, tx, ids)
	if err != nil {
		return nil, nil, err
	}

	accountMap := make(map[int64]*domain.Account, len(accounts))
	for _, a := range accounts {
		accountMap[a.ID] = a
	}
	for _, id := range ids {
		if accountMap[id] == nil {
			return nil, nil, fmt.Errorf("%w: %d", domain.ErrAccountNotFound, id)
		}
	}

	// 4. Check every debit before any write
	for _, p := range postings {
		if p.amount < 0 {
			if err := accountMap[p.accountID].ValidateDebit(-p.amount); err != nil {
				return nil, nil, fmt.Errorf("%w: account %d", err, p.accountID)
			}
		}
	}

	// 5. Append entries and write balances
	now := time.Now().UTC()
	entries := make([]*domain.Entry, 0, len(postings))
	for _, p := range postings {
		acc := accountMap[p.accountID]
		newBalance := acc.Balance + p.amount

		entry := &domain.Entry{
			AccountID:      acc.ID,
			CounterpartyID: p.counterparty,
			Amount:         p.amount,
			BalanceBefore:  acc.Balance,
			BalanceAfter:   newBalance,
			Kind:           p.kind,
			Description:    p.description,
			CreatedAt:      now,
		}
		if err := uc.entryRepo.Create(ctx, tx, entry); err != nil {
			return nil, nil, err
		}

		if err := uc.accountRepo.UpdateBalance(ctx, tx, acc.ID, newBalance, now); err != nil {
			return nil, nil, err
		}

		acc.Balance = newBalance
		acc.Version++
		acc.UpdatedAt = now
		entries = append(entries, entry)
	}

	// 6. Evaluate alerts for every touched account under the same locks
	var events []*domain.OutboxEvent
	if uc.alerts != nil {
		for _, id := range ids {
			staged, err := uc.alerts.OnBalanceChanged(ctx, tx, accountMap[id], admins)
			if err != nil {
				return nil, nil, err
			}
			events = append(events, staged...)

			if build := notices[id]; build != nil {
				msg := build(accountMap[id])
				msg.UserID = id
				event, err := uc.alerts.Stage(ctx, tx, id, &msg)
				if err != nil {
					return nil, nil, err
				}
				events = append(events, event)
			}
		}
	}

	// 7. Commit transaction
	if err := tx.Commit(ctx); err != nil {
		return nil, nil, err
	}

	return entries, events, nil
}

func validateSingle(accountID, amount int64, kind domain.EntryKind, description string) error {
	if err := domain.ValidateAmount(amount); err != nil {
		return err
	}
	if err := domain.ValidateAccountID(accountID); err != nil {
		return err
	}
	if !kind.IsValid() {
		return domain.ErrInvalidEntryKind
	}
	return domain.ValidateDescription(description)
}

// onceRetrier runs the operation a single time and reports lock timeouts as
// domain.ErrBusy.
type onceRetrier struct{}

func (onceRetrier) Retry(_ context.Context, operation func() error) error {
	err := operation()
	if errors.Is(err, domain.ErrLockTimeout) {
		return fmt.Errorf("%w: %w", domain.ErrBusy, err)
	}
	return err
}

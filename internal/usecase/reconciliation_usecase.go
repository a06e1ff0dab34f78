package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/iho/creditledger/internal/domain"
)

// reconcilePageSize is the account page size used by full reports.
const reconcilePageSize = 100

// ReconciliationUseCase checks that balances are explained by their entries.
type ReconciliationUseCase struct {
	accountRepo AccountRepository
	entryRepo   EntryRepository
}

// NewReconciliationUseCase creates a new reconciliation use case
func NewReconciliationUseCase(
	accountRepo AccountRepository,
	entryRepo EntryRepository,
) *ReconciliationUseCase {
	return &ReconciliationUseCase{
		accountRepo: accountRepo,
		entryRepo:   entryRepo,
	}
}

// ReconciliationResult represents the result of a reconciliation check
type ReconciliationResult struct {
	LastChecked     time.Time
	AccountID       int64
	RecordedBalance int64
	InitialBalance  int64
	EntrySum        int64
	Difference      int64
	IsReconciled    bool
}

// ReconcileAccount compares balance - initial_balance with the sum of the
// account's entries.
func (uc *ReconciliationUseCase) ReconcileAccount(ctx context.Context, accountID int64) (*ReconciliationResult, error) {
	account, err := uc.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	return uc.reconcile(ctx, account)
}

func (uc *ReconciliationUseCase) reconcile(ctx context.Context, account *domain.Account) (*ReconciliationResult, error) {
	sum, err := uc.entryRepo.SumByAccount(ctx, account.ID)
	if err != nil {
		return nil, err
	}

	diff := (account.Balance - account.InitialBalance) - sum

	return &ReconciliationResult{
		AccountID:       account.ID,
		RecordedBalance: account.Balance,
		InitialBalance:  account.InitialBalance,
		EntrySum:        sum,
		Difference:      diff,
		IsReconciled:    diff == 0 && account.Balance >= 0,
		LastChecked:     time.Now().UTC(),
	}, nil
}

// ReconcileAllAccounts reconciles all accounts in the system
func (uc *ReconciliationUseCase) ReconcileAllAccounts(ctx context.Context) ([]*ReconciliationResult, error) {
	var results []*ReconciliationResult

	for offset := 0; ; offset += reconcilePageSize {
		accounts, err := uc.accountRepo.List(ctx, reconcilePageSize, offset)
		if err != nil {
			return nil, err
		}

		for _, account := range accounts {
			result, err := uc.reconcile(ctx, account)
			if err != nil {
				return nil, fmt.Errorf("failed to reconcile account %d: %w", account.ID, err)
			}
			results = append(results, result)
		}

		if len(accounts) < reconcilePageSize {
			return results, nil
		}
	}
}

// ReconciliationReport represents a full reconciliation report
type ReconciliationReport struct {
	CheckedAt          time.Time
	Discrepancies      []*ReconciliationResult
	TotalAccounts      int
	ReconciledAccounts int
	TotalBalance       int64
}

// GenerateReconciliationReport generates a comprehensive reconciliation report
func (uc *ReconciliationUseCase) GenerateReconciliationReport(ctx context.Context) (*ReconciliationReport, error) {
	results, err := uc.ReconcileAllAccounts(ctx)
	if err != nil {
		return nil, err
	}

	report := &ReconciliationReport{
		TotalAccounts: len(results),
		Discrepancies: make([]*ReconciliationResult, 0),
		CheckedAt:     time.Now().UTC(),
	}

	for _, result := range results {
		report.TotalBalance += result.RecordedBalance
		if result.IsReconciled {
			report.ReconciledAccounts++
		} else {
			report.Discrepancies = append(report.Discrepancies, result)
		}
	}

	return report, nil
}

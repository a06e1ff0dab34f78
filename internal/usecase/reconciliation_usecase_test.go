package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/creditledger/internal/domain"
	"github.com/iho/creditledger/internal/usecase"
	"github.com/iho/creditledger/internal/usecase/mocks"
)

func TestReconcileAccount(t *testing.T) {
	t.Parallel()

	l := newLedger(t, []*domain.Account{{ID: 1, Balance: 40}})
	ctx := context.Background()

	_, err := l.transfers.Debit(ctx, 1, 15, domain.EntryKindUsage, "gen")
	require.NoError(t, err)
	_, err = l.transfers.Credit(ctx, 1, 5, domain.EntryKindPurchase, "pi_1")
	require.NoError(t, err)

	uc := usecase.NewReconciliationUseCase(l.accounts, l.entries)
	result, err := uc.ReconcileAccount(ctx, 1)
	require.NoError(t, err)

	assert.True(t, result.IsReconciled)
	assert.Equal(t, int64(30), result.RecordedBalance)
	assert.Equal(t, int64(40), result.InitialBalance)
	assert.Equal(t, int64(-10), result.EntrySum)
	assert.Zero(t, result.Difference)
}

func TestReconcileAccountNotFound(t *testing.T) {
	t.Parallel()

	uc := usecase.NewReconciliationUseCase(mocks.NewMockAccountRepository(), mocks.NewMockEntryRepository())

	_, err := uc.ReconcileAccount(context.Background(), 3)
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestGenerateReconciliationReport(t *testing.T) {
	t.Parallel()

	accounts := mocks.NewMockAccountRepository(
		&domain.Account{ID: 1, Balance: 10, InitialBalance: 10},
		&domain.Account{ID: 2, Balance: 25, InitialBalance: 5},
	)
	entries := mocks.NewMockEntryRepository()
	entries.SumByAccountFunc = func(_ context.Context, id int64) (int64, error) {
		if id == 2 {
			return 15, nil // five credits unexplained
		}
		return 0, nil
	}

	report, err := usecase.NewReconciliationUseCase(accounts, entries).GenerateReconciliationReport(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, report.TotalAccounts)
	assert.Equal(t, 1, report.ReconciledAccounts)
	assert.Equal(t, int64(35), report.TotalBalance)
	require.Len(t, report.Discrepancies, 1)
	assert.Equal(t, int64(2), report.Discrepancies[0].AccountID)
	assert.Equal(t, int64(5), report.Discrepancies[0].Difference)
}

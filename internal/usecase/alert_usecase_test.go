package usecase_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/iho/creditledger/internal/domain"
	"github.com/iho/creditledger/internal/usecase"
	"github.com/iho/creditledger/internal/usecase/mocks"
)

func TestAlertEngine_ThresholdScenarios(t *testing.T) {
	l := newLedger(t, []*domain.Account{
		{ID: 1, Name: "Ada", Role: domain.RoleCustomer, Balance: 12},
		{ID: 9, Name: "Root", Role: domain.RoleAdmin, Balance: 1000},
	}, withThresholds(domain.Thresholds{1, 5, 10}))
	ctx := context.Background()

	// 12 -> 7: first alert at 10.
	_, err := l.transfers.Debit(ctx, 1, 5, domain.EntryKindUsage, "gen")
	require.NoError(t, err)
	require.Len(t, l.inboxOf(t, 1), 1)
	require.Len(t, l.inboxOf(t, 9), 1)
	assert.Equal(t, domain.CategoryCreditAlert, l.inboxOf(t, 1)[0].Category)
	assert.Contains(t, l.inboxOf(t, 9)[0].Title, "Ada")

	// 7 -> 4: crosses into the 5 band.
	_, err = l.transfers.Debit(ctx, 1, 3, domain.EntryKindUsage, "gen")
	require.NoError(t, err)
	assert.Len(t, l.inboxOf(t, 1), 2)
	assert.Len(t, l.inboxOf(t, 9), 2)

	// 4 -> 6: partial recovery is silent.
	_, err = l.transfers.Credit(ctx, 1, 2, domain.EntryKindPurchase, "pi_1")
	require.NoError(t, err)
	assert.Len(t, l.inboxOf(t, 1), 2)

	// 6 -> 26: clears state silently.
	_, err = l.transfers.Credit(ctx, 1, 20, domain.EntryKindPurchase, "pi_2")
	require.NoError(t, err)
	assert.Len(t, l.inboxOf(t, 1), 2)
	assert.Len(t, l.inboxOf(t, 9), 2)

	// 26 -> 9: re-alerts after recovery.
	_, err = l.transfers.Debit(ctx, 1, 17, domain.EntryKindUsage, "gen")
	require.NoError(t, err)
	assert.Len(t, l.inboxOf(t, 1), 3)
	assert.Len(t, l.inboxOf(t, 9), 3)

	// The admin stayed above every threshold.
	for _, n := range l.inboxOf(t, 9) {
		assert.NotContains(t, n.Title, "Root")
	}
}

func TestAlertEngine_IdempotentWithinBand(t *testing.T) {
	l := newLedger(t, []*domain.Account{{ID: 1, Name: "Ada", Balance: 20}}, withThresholds(domain.Thresholds{1, 5, 10}))
	ctx := context.Background()

	_, err := l.transfers.Debit(ctx, 1, 11, domain.EntryKindUsage, "gen")
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err = l.transfers.Debit(ctx, 1, 1, domain.EntryKindUsage, "gen")
		require.NoError(t, err)
	}

	// 9, 8, 7, 6 all sit in the 10 band.
	assert.Len(t, l.inboxOf(t, 1), 1)
}

func TestAlertEngine_AdminHolderNotifiedOnce(t *testing.T) {
	l := newLedger(t, []*domain.Account{
		{ID: 1, Name: "Root", Role: domain.RoleAdmin, Balance: 6},
		{ID: 2, Name: "Other admin", Role: domain.RoleAdmin, Balance: 500},
	}, withThresholds(domain.Thresholds{1, 5, 10}))

	_, err := l.transfers.Debit(context.Background(), 1, 2, domain.EntryKindUsage, "gen")
	require.NoError(t, err)

	holder := l.inboxOf(t, 1)
	require.Len(t, holder, 1)
	assert.Equal(t, "Your credit balance is running low", holder[0].Title)
	assert.Len(t, l.inboxOf(t, 2), 1)
}

func TestAlertEngine_ConcurrentDescentAlertsOnce(t *testing.T) {
	l := newLedger(t, []*domain.Account{{ID: 1, Name: "Ada", Balance: 40}}, withThresholds(domain.Thresholds{10}))
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 35; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := l.transfers.Debit(ctx, 1, 1, domain.EntryKindUsage, "gen"); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(5), l.balance(t, 1))
	assert.Len(t, l.inboxOf(t, 1), 1)
}

func TestAlertEngine_SinkFailureDoesNotRollBack(t *testing.T) {
	ctrl := gomock.NewController(t)
	sink := mocks.NewMockNotificationSink(ctrl)
	sink.EXPECT().Enqueue(gomock.Any(), gomock.Any()).Return("", errors.New("inbox down"))

	l := newLedger(t, []*domain.Account{{ID: 1, Name: "Ada", Balance: 12}},
		withThresholds(domain.Thresholds{1, 5, 10}), withSink(sink))

	change, err := l.transfers.Debit(context.Background(), 1, 5, domain.EntryKindUsage, "gen")
	require.NoError(t, err)
	assert.Equal(t, int64(7), change.Balance)

	pending, err := l.outbox.GetUnpublished(context.Background(), 10, time.Now().Add(time.Minute))
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, int64(1), pending[0].Message.UserID)
}

func TestAlertEngine_DeliveredEventsArePublished(t *testing.T) {
	ctrl := gomock.NewController(t)
	sink := mocks.NewMockNotificationSink(ctrl)

	var got []*domain.Notification
	sink.EXPECT().Enqueue(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, msg *domain.Notification) (string, error) {
			got = append(got, msg)
			return msg.ID, nil
		}).Times(2)

	l := newLedger(t, []*domain.Account{
		{ID: 1, Name: "Ada", Balance: 12},
		{ID: 9, Name: "Root", Role: domain.RoleAdmin, Balance: 500},
	}, withThresholds(domain.Thresholds{1, 5, 10}), withSink(sink))

	_, err := l.transfers.Debit(context.Background(), 1, 5, domain.EntryKindUsage, "gen")
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, int64(1), got[0].UserID)
	assert.Equal(t, int64(9), got[1].UserID)
	assert.NotEqual(t, got[0].ID, got[1].ID)

	pending, err := l.outbox.GetUnpublished(context.Background(), 10, time.Now().Add(time.Minute))
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestAlertEngine_DirectoryFailureAlertsHolderOnly(t *testing.T) {
	ctrl := gomock.NewController(t)
	dir := mocks.NewMockAdministratorDirectory(ctrl)
	dir.EXPECT().ListAdministrators(gomock.Any()).Return(nil, errors.New("identity service down"))

	l := newLedger(t, []*domain.Account{
		{ID: 1, Name: "Ada", Balance: 12},
		{ID: 9, Name: "Root", Role: domain.RoleAdmin, Balance: 500},
	}, withThresholds(domain.Thresholds{1, 5, 10}), withDirectory(dir))

	_, err := l.transfers.Debit(context.Background(), 1, 5, domain.EntryKindUsage, "gen")
	require.NoError(t, err)

	assert.Len(t, l.inboxOf(t, 1), 1)
	assert.Empty(t, l.inboxOf(t, 9))
}

func TestAlertEngine_TransferEvaluatesBothAccounts(t *testing.T) {
	l := newLedger(t, []*domain.Account{
		{ID: 1, Name: "Root", Role: domain.RoleAdmin, Balance: 12},
		{ID: 2, Name: "Bo", Role: domain.RoleCollaborator, Balance: 0},
	}, withThresholds(domain.Thresholds{1, 5, 10}))

	_, err := l.transfers.Transfer(context.Background(), domain.Transfer{
		SourceID: 1, DestID: 2, Amount: 8, Kind: domain.EntryKindAllocation,
	})
	require.NoError(t, err)

	// Root falls to 4 and alerts at 5; Bo rises to 8 and alerts at 10, which
	// Root also receives as administrator.
	assert.Len(t, l.inboxOf(t, 1), 2)
	assert.Len(t, l.inboxOf(t, 2), 1)
}

type directoryFunc func(ctx context.Context) ([]int64, error)

func (f directoryFunc) ListAdministrators(ctx context.Context) ([]int64, error) {
	return f(ctx)
}

// recordingTxManager logs each Begin into a shared call trace.
type recordingTxManager struct {
	usecase.TransactionManager
	trace *[]string
}

func (m recordingTxManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	*m.trace = append(*m.trace, "begin")
	return m.TransactionManager.Begin(ctx)
}

func TestAlertEngine_AdministratorsResolvedBeforeLocking(t *testing.T) {
	var trace []string
	dir := directoryFunc(func(ctx context.Context) ([]int64, error) {
		trace = append(trace, "directory")
		return []int64{9}, nil
	})

	l := newLedger(t, []*domain.Account{
		{ID: 1, Name: "Ada", Balance: 12},
		{ID: 9, Name: "Root", Role: domain.RoleAdmin, Balance: 500},
	}, withThresholds(domain.Thresholds{1, 5, 10}), withDirectory(dir))

	transfers := usecase.NewTransferUseCase(recordingTxManager{TransactionManager: l.txManager, trace: &trace},
		l.accounts, l.entries, l.alerts, nil, zerolog.Nop())

	_, err := transfers.Debit(context.Background(), 1, 5, domain.EntryKindUsage, "gen")
	require.NoError(t, err)

	assert.Equal(t, []string{"directory", "begin"}, trace)
	assert.Len(t, l.inboxOf(t, 9), 1)
}

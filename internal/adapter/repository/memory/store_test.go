package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/creditledger/internal/domain"
)

func newTestStore(t *testing.T, accounts ...*domain.Account) (*Store, *TxManager, *AccountRepository) {
	t.Helper()

	store := NewStore(50 * time.Millisecond)
	repo := NewAccountRepository(store)
	for _, a := range accounts {
		require.NoError(t, repo.Create(context.Background(), a))
	}
	return store, NewTxManager(store), repo
}

func TestAccountRepository_CreateDuplicate(t *testing.T) {
	_, _, repo := newTestStore(t, &domain.Account{ID: 1, Name: "Ada"})

	err := repo.Create(context.Background(), &domain.Account{ID: 1, Name: "Ada again"})
	assert.ErrorIs(t, err, domain.ErrAccountExists)
}

func TestTx_CommitAppliesBufferedWrites(t *testing.T) {
	ctx := context.Background()
	store, txm, accounts := newTestStore(t, &domain.Account{ID: 1, Balance: 10})
	entries := NewEntryRepository(store)

	tx, err := txm.Begin(ctx)
	require.NoError(t, err)

	locked, err := accounts.GetByIDsForUpdate(ctx, tx, []int64{1})
	require.NoError(t, err)
	require.Len(t, locked, 1)

	now := time.Now().UTC()
	entry := &domain.Entry{AccountID: 1, Amount: -3, BalanceBefore: 10, BalanceAfter: 7, Kind: domain.EntryKindUsage, CreatedAt: now}
	require.NoError(t, entries.Create(ctx, tx, entry))
	require.NoError(t, accounts.UpdateBalance(ctx, tx, 1, 7, now))

	// Writes are invisible before commit.
	acc, err := accounts.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(10), acc.Balance)

	require.NoError(t, tx.Commit(ctx))

	acc, err = accounts.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(7), acc.Balance)
	assert.Equal(t, int64(1), acc.Version)

	list, err := entries.List(ctx, domain.EntryFilter{AccountID: 1})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, entry.ID, list[0].ID)

	sum, err := entries.SumByAccount(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(-3), sum)
}

func TestTx_RollbackDiscardsWrites(t *testing.T) {
	ctx := context.Background()
	store, txm, accounts := newTestStore(t, &domain.Account{ID: 1, Balance: 10})
	entries := NewEntryRepository(store)

	tx, err := txm.Begin(ctx)
	require.NoError(t, err)
	_, err = accounts.GetByIDsForUpdate(ctx, tx, []int64{1})
	require.NoError(t, err)
	require.NoError(t, entries.Create(ctx, tx, &domain.Entry{AccountID: 1, Amount: 5}))
	require.NoError(t, accounts.UpdateBalance(ctx, tx, 1, 15, time.Now()))

	require.NoError(t, tx.Rollback(ctx))
	require.NoError(t, tx.Rollback(ctx), "rollback must be idempotent")

	acc, err := accounts.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(10), acc.Balance)

	list, err := entries.List(ctx, domain.EntryFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestTx_RollbackAfterCommitIsNoop(t *testing.T) {
	ctx := context.Background()
	_, txm, _ := newTestStore(t)

	tx, err := txm.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.Commit(ctx))
	assert.NoError(t, tx.Rollback(ctx))
	assert.ErrorIs(t, tx.Commit(ctx), ErrTxDone)
}

func TestTx_LockTimeout(t *testing.T) {
	ctx := context.Background()
	_, txm, accounts := newTestStore(t, &domain.Account{ID: 1})

	holder, err := txm.Begin(ctx)
	require.NoError(t, err)
	_, err = accounts.GetByIDsForUpdate(ctx, holder, []int64{1})
	require.NoError(t, err)
	defer holder.Rollback(ctx)

	waiter, err := txm.Begin(ctx)
	require.NoError(t, err)
	defer waiter.Rollback(ctx)

	_, err = accounts.GetByIDsForUpdate(ctx, waiter, []int64{1})
	assert.True(t, errors.Is(err, domain.ErrLockTimeout), "got %v", err)
}

func TestTx_LockReleasedOnCommit(t *testing.T) {
	ctx := context.Background()
	_, txm, accounts := newTestStore(t, &domain.Account{ID: 1})

	first, err := txm.Begin(ctx)
	require.NoError(t, err)
	_, err = accounts.GetByIDsForUpdate(ctx, first, []int64{1})
	require.NoError(t, err)

	acquired := make(chan error, 1)
	go func() {
		second, err := txm.Begin(ctx)
		if err != nil {
			acquired <- err
			return
		}
		defer second.Rollback(ctx)
		_, err = accounts.GetByIDsForUpdate(ctx, second, []int64{1})
		acquired <- err
	}()

	require.NoError(t, first.Commit(ctx))
	assert.NoError(t, <-acquired)
}

func TestTx_LockHonoursContext(t *testing.T) {
	_, txm, accounts := newTestStore(t, &domain.Account{ID: 1})

	holder, err := txm.Begin(context.Background())
	require.NoError(t, err)
	_, err = accounts.GetByIDsForUpdate(context.Background(), holder, []int64{1})
	require.NoError(t, err)
	defer holder.Rollback(context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	waiter, err := txm.Begin(context.Background())
	require.NoError(t, err)
	_, err = accounts.GetByIDsForUpdate(ctx, waiter, []int64{1})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAccountRepository_GetByIDsForUpdateSkipsUnknown(t *testing.T) {
	ctx := context.Background()
	_, txm, accounts := newTestStore(t, &domain.Account{ID: 3}, &domain.Account{ID: 1})

	tx, err := txm.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	got, err := accounts.GetByIDsForUpdate(ctx, tx, []int64{3, 99, 1})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(1), got[0].ID)
	assert.Equal(t, int64(3), got[1].ID)
}

func TestAccountRepository_UpdateRequiresLock(t *testing.T) {
	ctx := context.Background()
	_, txm, accounts := newTestStore(t, &domain.Account{ID: 1})

	tx, err := txm.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	assert.ErrorIs(t, accounts.UpdateBalance(ctx, tx, 1, 5, time.Now()), ErrNotLocked)
}

func TestAlertStateRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store, txm, accounts := newTestStore(t, &domain.Account{ID: 1})
	alerts := NewAlertStateRepository(store)

	tx, err := txm.Begin(ctx)
	require.NoError(t, err)
	_, err = accounts.GetByIDsForUpdate(ctx, tx, []int64{1})
	require.NoError(t, err)

	st, err := alerts.Get(ctx, tx, 1)
	require.NoError(t, err)
	assert.Nil(t, st.LastAlertedThreshold)

	threshold := int64(5)
	st.LastAlertedThreshold = &threshold
	require.NoError(t, alerts.Save(ctx, tx, st))
	require.NoError(t, tx.Commit(ctx))

	tx, err = txm.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	st, err = alerts.Get(ctx, tx, 1)
	require.NoError(t, err)
	require.NotNil(t, st.LastAlertedThreshold)
	assert.Equal(t, int64(5), *st.LastAlertedThreshold)
}

func TestOutboxRepository_Lifecycle(t *testing.T) {
	ctx := context.Background()
	store, txm, _ := newTestStore(t)
	outbox := NewOutboxRepository(store)

	created := time.Now().Add(-time.Minute)
	tx, err := txm.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, outbox.Create(ctx, tx, &domain.OutboxEvent{ID: "e1", CreatedAt: created, Message: &domain.Notification{ID: "e1"}}))
	require.NoError(t, outbox.Create(ctx, tx, &domain.OutboxEvent{ID: "e2", CreatedAt: created, Message: &domain.Notification{ID: "e2"}}))
	require.NoError(t, tx.Commit(ctx))

	pending, err := outbox.GetUnpublished(ctx, 10, time.Now())
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "e1", pending[0].ID)

	publishedAt := time.Now().Add(-time.Second)
	require.NoError(t, outbox.MarkPublished(ctx, "e1", publishedAt))

	pending, err = outbox.GetUnpublished(ctx, 10, time.Now())
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "e2", pending[0].ID)

	require.NoError(t, outbox.DeletePublished(ctx, time.Now()))
	assert.Len(t, store.outbox, 1)
}

func TestNotificationRepository_Inbox(t *testing.T) {
	ctx := context.Background()
	store, _, _ := newTestStore(t)
	repo := NewNotificationRepository(store)

	require.NoError(t, repo.Create(ctx, &domain.Notification{ID: "n1", UserID: 7, Title: "first"}))
	require.NoError(t, repo.Create(ctx, &domain.Notification{ID: "n2", UserID: 7, Title: "second"}))
	require.NoError(t, repo.Create(ctx, &domain.Notification{ID: "n1", UserID: 7, Title: "first again"}))
	require.NoError(t, repo.Create(ctx, &domain.Notification{ID: "n3", UserID: 8, Title: "other"}))

	list, err := repo.ListByUser(ctx, domain.NotificationFilter{UserID: 7, Limit: 10})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "n2", list[0].ID)
	assert.Equal(t, "n1", list[1].ID)

	assert.ErrorIs(t, repo.MarkRead(ctx, 8, "n1"), domain.ErrNotificationNotFound)
	require.NoError(t, repo.MarkRead(ctx, 7, "n1"))

	unread, err := repo.CountUnread(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 1, unread)

	list, err = repo.ListByUser(ctx, domain.NotificationFilter{UserID: 7, UnreadOnly: true, Limit: 10})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "n2", list[0].ID)

	assert.ErrorIs(t, repo.Delete(ctx, 8, "n2"), domain.ErrNotificationNotFound)
	require.NoError(t, repo.Delete(ctx, 7, "n2"))

	unread, err = repo.CountUnread(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 0, unread)
}

func TestPaymentRegistry_ClaimOnce(t *testing.T) {
	ctx := context.Background()
	reg := NewPaymentRegistry()

	ok, err := reg.Claim(ctx, "pi_1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = reg.Claim(ctx, "pi_1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, reg.Release(ctx, "pi_1"))
	ok, err = reg.Claim(ctx, "pi_1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestTx_InterleavedCommitsKeepEntryOrder(t *testing.T) {
	ctx := context.Background()
	store, txm, accounts := newTestStore(t, &domain.Account{ID: 1, Balance: 10}, &domain.Account{ID: 2, Balance: 10})
	entries := NewEntryRepository(store)

	early, err := txm.Begin(ctx)
	require.NoError(t, err)
	_, err = accounts.GetByIDsForUpdate(ctx, early, []int64{1})
	require.NoError(t, err)
	require.NoError(t, entries.Create(ctx, early, &domain.Entry{AccountID: 1, Amount: 1, Kind: domain.EntryKindAllocation}))

	late, err := txm.Begin(ctx)
	require.NoError(t, err)
	_, err = accounts.GetByIDsForUpdate(ctx, late, []int64{2})
	require.NoError(t, err)
	require.NoError(t, entries.Create(ctx, late, &domain.Entry{AccountID: 2, Amount: 1, Kind: domain.EntryKindAllocation}))
	require.NoError(t, entries.Create(ctx, late, &domain.Entry{AccountID: 2, Amount: 1, Kind: domain.EntryKindAllocation}))

	require.NoError(t, entries.Create(ctx, early, &domain.Entry{AccountID: 1, Amount: 1, Kind: domain.EntryKindAllocation}))

	// Ids are 1 and 4 for early, 2 and 3 for late; late commits first.
	require.NoError(t, late.Commit(ctx))
	require.NoError(t, early.Commit(ctx))

	list, err := entries.List(ctx, domain.EntryFilter{})
	require.NoError(t, err)
	require.Len(t, list, 4)
	for i, e := range list {
		assert.Equal(t, int64(i+1), e.ID)
	}
}

func TestMergeEntries(t *testing.T) {
	ids := func(list []*domain.Entry) []int64 {
		out := make([]int64, 0, len(list))
		for _, e := range list {
			out = append(out, e.ID)
		}
		return out
	}
	mk := func(ids ...int64) []*domain.Entry {
		out := make([]*domain.Entry, 0, len(ids))
		for _, id := range ids {
			out = append(out, &domain.Entry{ID: id})
		}
		return out
	}

	assert.Equal(t, []int64{1, 2, 3}, ids(mergeEntries(mk(1, 2), mk(3))))
	assert.Equal(t, []int64{1, 2, 3, 4, 5}, ids(mergeEntries(mk(1, 3, 5), mk(2, 4))))
	assert.Equal(t, []int64{1, 2}, ids(mergeEntries(nil, mk(1, 2))))
	assert.Equal(t, []int64{1, 2}, ids(mergeEntries(mk(1, 2), nil)))
}

func TestEntryRepository_PurchaseReferenceUnique(t *testing.T) {
	ctx := context.Background()
	store, txm, accounts := newTestStore(t, &domain.Account{ID: 1}, &domain.Account{ID: 2})
	entries := NewEntryRepository(store)

	purchase := func(tx *Tx, accountID int64, ref string) error {
		return entries.Create(ctx, tx, &domain.Entry{AccountID: accountID, Amount: 4, BalanceAfter: 4, Kind: domain.EntryKindPurchase, Description: ref})
	}
	begin := func(accountID int64) *Tx {
		tx, err := txm.Begin(ctx)
		require.NoError(t, err)
		_, err = accounts.GetByIDsForUpdate(ctx, tx, []int64{accountID})
		require.NoError(t, err)
		return tx.(*Tx)
	}

	first := begin(1)
	require.NoError(t, purchase(first, 1, "pi_1"))

	// A pending reservation already blocks another account.
	second := begin(2)
	assert.ErrorIs(t, purchase(second, 2, "pi_1"), domain.ErrDuplicatePayment)
	require.NoError(t, second.Rollback(ctx))

	// Rolling back frees the reference.
	require.NoError(t, first.Rollback(ctx))
	third := begin(2)
	require.NoError(t, purchase(third, 2, "pi_1"))
	require.NoError(t, third.Commit(ctx))

	fourth := begin(1)
	assert.ErrorIs(t, purchase(fourth, 1, "pi_1"), domain.ErrDuplicatePayment)
	require.NoError(t, purchase(fourth, 1, "pi_2"))
	require.NoError(t, fourth.Commit(ctx))

	// Other kinds may repeat a description.
	fifth := begin(1)
	require.NoError(t, entries.Create(ctx, fifth, &domain.Entry{AccountID: 1, Amount: -1, BalanceBefore: 4, BalanceAfter: 3, Kind: domain.EntryKindUsage, Description: "pi_1"}))
	require.NoError(t, fifth.Commit(ctx))
}

func TestNotificationRepository_RedeliveryAfterDeleteStaysDeleted(t *testing.T) {
	ctx := context.Background()
	store, _, _ := newTestStore(t)
	repo := NewNotificationRepository(store)

	msg := &domain.Notification{ID: "n1", UserID: 7, Title: "low"}
	require.NoError(t, repo.Create(ctx, msg))
	require.NoError(t, repo.Delete(ctx, 7, "n1"))
	require.NoError(t, repo.Create(ctx, msg))

	list, err := repo.ListByUser(ctx, domain.NotificationFilter{UserID: 7, Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, list)
}

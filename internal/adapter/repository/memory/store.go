// Package memory is an in-process ledger store for development and tests.
// Accounts are locked through one-slot channels; a transaction buffers its
// writes and applies them atomically at commit.
package memory

import (
	"context"
	"errors"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/iho/creditledger/internal/domain"
	"github.com/iho/creditledger/internal/usecase"
)

// DefaultLockTimeout bounds how long a transaction waits for an account lock.
const DefaultLockTimeout = 5 * time.Second

var (
	ErrTxDone    = errors.New("transaction already committed or rolled back")
	ErrNotLocked = errors.New("account not locked by transaction")
	ErrForeignTx = errors.New("transaction does not belong to the memory store")
)

// Store holds all ledger state.
type Store struct {
	mu            sync.RWMutex
	accounts      map[int64]*domain.Account
	locks         map[int64]chan struct{}
	entries       []*domain.Entry
	alertStates   map[int64]domain.AlertState
	outbox        []*domain.OutboxEvent
	notifications []*domain.Notification
	notified      map[string]bool
	purchases     map[string]bool // provider references of purchase entries
	nextEntryID   atomic.Int64
	lockTimeout   time.Duration
}

// NewStore creates an empty Store. A non-positive lockTimeout uses
// DefaultLockTimeout.
func NewStore(lockTimeout time.Duration) *Store {
	if lockTimeout <= 0 {
		lockTimeout = DefaultLockTimeout
	}
	return &Store{
		accounts:    make(map[int64]*domain.Account),
		locks:       make(map[int64]chan struct{}),
		alertStates: make(map[int64]domain.AlertState),
		notified:    make(map[string]bool),
		purchases:   make(map[string]bool),
		lockTimeout: lockTimeout,
	}
}

// TxManager implements usecase.TransactionManager.
type TxManager struct {
	store *Store
}

// NewTxManager creates a new TxManager.
func NewTxManager(store *Store) *TxManager {
	return &TxManager{store: store}
}

// Begin starts a new transaction.
func (m *TxManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &Tx{
		store:    m.store,
		held:     make(map[int64]bool),
		balances: make(map[int64]balanceWrite),
		alerts:   make(map[int64]domain.AlertState),
	}, nil
}

type balanceWrite struct {
	at      time.Time
	balance int64
}

// Tx is a memory store transaction. It is not safe for concurrent use.
type Tx struct {
	store    *Store
	held     map[int64]bool
	order    []int64
	balances map[int64]balanceWrite
	entries  []*domain.Entry
	alerts   map[int64]domain.AlertState
	outbox   []*domain.OutboxEvent
	refs     []string // purchase references reserved by this tx
	done     bool
}

// lock acquires the account locks in ascending id order. Unknown ids are
// skipped.
func (t *Tx) lock(ctx context.Context, ids []int64) error {
	if t.done {
		return ErrTxDone
	}

	sorted := slices.Clone(ids)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	for _, id := range sorted {
		if t.held[id] {
			continue
		}

		t.store.mu.RLock()
		ch, ok := t.store.locks[id]
		t.store.mu.RUnlock()
		if !ok {
			continue
		}

		timer := time.NewTimer(t.store.lockTimeout)
		select {
		case ch <- struct{}{}:
			timer.Stop()
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
			return domain.ErrLockTimeout
		}

		t.held[id] = true
		t.order = append(t.order, id)
	}

	return nil
}

func (t *Tx) release() {
	t.store.mu.RLock()
	defer t.store.mu.RUnlock()
	for i := len(t.order) - 1; i >= 0; i-- {
		<-t.store.locks[t.order[i]]
	}
	t.order = nil
	clear(t.held)
}

// Commit applies the buffered writes and releases the locks.
func (t *Tx) Commit(ctx context.Context) error {
	if t.done {
		return ErrTxDone
	}
	t.done = true

	s := t.store
	s.mu.Lock()
	for id, w := range t.balances {
		acc := s.accounts[id]
		acc.Balance = w.balance
		acc.Version++
		acc.UpdatedAt = w.at
	}
	s.entries = mergeEntries(s.entries, t.entries)
	for id, st := range t.alerts {
		s.alertStates[id] = st
	}
	s.outbox = append(s.outbox, t.outbox...)
	s.mu.Unlock()

	t.release()
	return nil
}

// Rollback discards the buffered writes and releases the locks. It is a
// no-op after Commit.
func (t *Tx) Rollback(ctx context.Context) error {
	if t.done {
		return nil
	}
	t.done = true

	if len(t.refs) > 0 {
		t.store.mu.Lock()
		for _, ref := range t.refs {
			delete(t.store.purchases, ref)
		}
		t.store.mu.Unlock()
	}

	t.release()
	return nil
}

// mergeEntries inserts added, already in id order, into the id-ordered
// committed slice. Ids are assigned at Create, so a transaction may commit
// after one holding higher ids.
func mergeEntries(committed, added []*domain.Entry) []*domain.Entry {
	if len(added) == 0 {
		return committed
	}
	if len(committed) == 0 || committed[len(committed)-1].ID < added[0].ID {
		return append(committed, added...)
	}

	out := make([]*domain.Entry, 0, len(committed)+len(added))
	i, j := 0, 0
	for i < len(committed) && j < len(added) {
		if committed[i].ID < added[j].ID {
			out = append(out, committed[i])
			i++
		} else {
			out = append(out, added[j])
			j++
		}
	}
	out = append(out, committed[i:]...)
	return append(out, added[j:]...)
}

func asTx(tx usecase.Transaction) (*Tx, error) {
	t, ok := tx.(*Tx)
	if !ok {
		return nil, ErrForeignTx
	}
	if t.done {
		return nil, ErrTxDone
	}
	return t, nil
}


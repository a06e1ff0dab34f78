package memory

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/iho/creditledger/internal/domain"
	"github.com/iho/creditledger/internal/usecase"
)

// AccountRepository implements usecase.AccountRepository.
type AccountRepository struct {
	store *Store
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(store *Store) *AccountRepository {
	return &AccountRepository{store: store}
}

// Create stores a new account and its lock.
func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.accounts[account.ID]; ok {
		return domain.ErrAccountExists
	}

	cp := *account
	r.store.accounts[account.ID] = &cp
	r.store.locks[account.ID] = make(chan struct{}, 1)
	return nil
}

// GetByID retrieves the committed state of an account.
func (r *AccountRepository) GetByID(ctx context.Context, id int64) (*domain.Account, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	acc, ok := r.store.accounts[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	cp := *acc
	return &cp, nil
}

// GetByIDsForUpdate locks the accounts in ascending id order and returns
// them with the transaction's own pending writes applied.
func (r *AccountRepository) GetByIDsForUpdate(ctx context.Context, tx usecase.Transaction, ids []int64) ([]*domain.Account, error) {
	t, err := asTx(tx)
	if err != nil {
		return nil, err
	}

	if err := t.lock(ctx, ids); err != nil {
		return nil, err
	}

	sorted := slices.Clone(ids)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	accounts := make([]*domain.Account, 0, len(sorted))
	for _, id := range sorted {
		acc, ok := r.store.accounts[id]
		if !ok {
			continue
		}
		cp := *acc
		if w, ok := t.balances[id]; ok {
			cp.Balance = w.balance
			cp.UpdatedAt = w.at
		}
		accounts = append(accounts, &cp)
	}
	return accounts, nil
}

// UpdateBalance buffers a balance write. The account must be locked by tx.
func (r *AccountRepository) UpdateBalance(ctx context.Context, tx usecase.Transaction, id int64, balance int64, updatedAt time.Time) error {
	t, err := asTx(tx)
	if err != nil {
		return err
	}
	if !t.held[id] {
		return ErrNotLocked
	}
	t.balances[id] = balanceWrite{balance: balance, at: updatedAt}
	return nil
}

// List lists accounts in id order.
func (r *AccountRepository) List(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	all := make([]*domain.Account, 0, len(r.store.accounts))
	for _, acc := range r.store.accounts {
		cp := *acc
		all = append(all, &cp)
	}
	slices.SortFunc(all, func(a, b *domain.Account) int { return cmp.Compare(a.ID, b.ID) })

	return page(all, limit, offset), nil
}

// ListIDsByRole returns the ids of accounts with the given role.
func (r *AccountRepository) ListIDsByRole(ctx context.Context, role domain.Role) ([]int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var ids []int64
	for id, acc := range r.store.accounts {
		if acc.Role == role {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids, nil
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}

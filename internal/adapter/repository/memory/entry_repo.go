package memory

import (
	"context"
	"fmt"

	"github.com/iho/creditledger/internal/domain"
	"github.com/iho/creditledger/internal/usecase"
)

// EntryRepository implements usecase.EntryRepository.
type EntryRepository struct {
	store *Store
}

// NewEntryRepository creates a new EntryRepository.
func NewEntryRepository(store *Store) *EntryRepository {
	return &EntryRepository{store: store}
}

// Create assigns the next entry id and buffers the entry until commit. A
// purchase reference is reserved immediately and fails with
// domain.ErrDuplicatePayment when any other purchase entry holds it.
func (r *EntryRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.Entry) error {
	t, err := asTx(tx)
	if err != nil {
		return err
	}
	if !t.held[entry.AccountID] {
		return ErrNotLocked
	}

	if entry.Kind == domain.EntryKindPurchase {
		r.store.mu.Lock()
		taken := r.store.purchases[entry.Description]
		if !taken {
			r.store.purchases[entry.Description] = true
		}
		r.store.mu.Unlock()

		if taken {
			return fmt.Errorf("%w: %s", domain.ErrDuplicatePayment, entry.Description)
		}
		t.refs = append(t.refs, entry.Description)
	}

	entry.ID = r.store.nextEntryID.Add(1)
	cp := *entry
	t.entries = append(t.entries, &cp)
	return nil
}

// List returns committed entries matching filter in id order.
func (r *EntryRepository) List(ctx context.Context, filter domain.EntryFilter) ([]*domain.Entry, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var matched []*domain.Entry
	for _, e := range r.store.entries {
		if filter.Matches(e) {
			cp := *e
			matched = append(matched, &cp)
		}
	}

	return page(matched, filter.Limit, filter.Offset), nil
}

// SumByAccount sums the committed entry amounts of an account.
func (r *EntryRepository) SumByAccount(ctx context.Context, accountID int64) (int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var sum int64
	for _, e := range r.store.entries {
		if e.AccountID == accountID {
			sum += e.Amount
		}
	}
	return sum, nil
}

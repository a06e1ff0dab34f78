package memory

import (
	"context"

	"github.com/iho/creditledger/internal/domain"
	"github.com/iho/creditledger/internal/usecase"
)

// AlertStateRepository implements usecase.AlertStateRepository.
type AlertStateRepository struct {
	store *Store
}

// NewAlertStateRepository creates a new AlertStateRepository.
func NewAlertStateRepository(store *Store) *AlertStateRepository {
	return &AlertStateRepository{store: store}
}

// Get returns the transaction's view of the account's alert state.
func (r *AlertStateRepository) Get(ctx context.Context, tx usecase.Transaction, accountID int64) (*domain.AlertState, error) {
	t, err := asTx(tx)
	if err != nil {
		return nil, err
	}

	if st, ok := t.alerts[accountID]; ok {
		return cloneState(st), nil
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	if st, ok := r.store.alertStates[accountID]; ok {
		return cloneState(st), nil
	}
	return &domain.AlertState{AccountID: accountID}, nil
}

// Save buffers the state until commit. The account must be locked by tx.
func (r *AlertStateRepository) Save(ctx context.Context, tx usecase.Transaction, state *domain.AlertState) error {
	t, err := asTx(tx)
	if err != nil {
		return err
	}
	if !t.held[state.AccountID] {
		return ErrNotLocked
	}
	t.alerts[state.AccountID] = *cloneState(*state)
	return nil
}

func cloneState(st domain.AlertState) *domain.AlertState {
	if st.LastAlertedThreshold != nil {
		v := *st.LastAlertedThreshold
		st.LastAlertedThreshold = &v
	}
	return &st
}

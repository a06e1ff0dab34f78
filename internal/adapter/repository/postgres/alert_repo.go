package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/iho/creditledger/internal/domain"
	"github.com/iho/creditledger/internal/infrastructure/postgres/generated"
	"github.com/iho/creditledger/internal/usecase"
)

// AlertStateRepository implements usecase.AlertStateRepository. Reads and
// writes run in the caller's transaction, which already holds the account
// row lock.
type AlertStateRepository struct{}

// NewAlertStateRepository creates a new AlertStateRepository.
func NewAlertStateRepository() *AlertStateRepository {
	return &AlertStateRepository{}
}

// Get returns the stored state, or an empty one.
func (r *AlertStateRepository) Get(ctx context.Context, tx usecase.Transaction, accountID int64) (*domain.AlertState, error) {
	queries, err := txQueries(tx)
	if err != nil {
		return nil, err
	}

	row, err := queries.GetAlertState(ctx, accountID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &domain.AlertState{AccountID: accountID}, nil
		}
		return nil, err
	}

	return &domain.AlertState{
		AccountID:            row.AccountID,
		LastAlertedThreshold: int8ToPtr(row.LastAlertedThreshold),
		UpdatedAt:            row.UpdatedAt.Time,
	}, nil
}

// Save upserts the state.
func (r *AlertStateRepository) Save(ctx context.Context, tx usecase.Transaction, state *domain.AlertState) error {
	queries, err := txQueries(tx)
	if err != nil {
		return err
	}

	return queries.UpsertAlertState(ctx, generated.UpsertAlertStateParams{
		AccountID:            state.AccountID,
		LastAlertedThreshold: ptrToInt8(state.LastAlertedThreshold),
		UpdatedAt:            timeToPgTimestamptz(state.UpdatedAt),
	})
}

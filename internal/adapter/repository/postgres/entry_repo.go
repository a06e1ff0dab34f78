package postgres

import (
	"context"
	"fmt"
	"math"

	"github.com/iho/creditledger/internal/domain"
	"github.com/iho/creditledger/internal/infrastructure/postgres/generated"
	"github.com/iho/creditledger/internal/usecase"
)

// EntryRepository implements usecase.EntryRepository.
type EntryRepository struct {
	queries *generated.Queries
}

// NewEntryRepository creates a new EntryRepository.
func NewEntryRepository(db generated.DBTX) *EntryRepository {
	return &EntryRepository{
		queries: generated.New(db),
	}
}

// Create appends an entry; the id comes from the entries sequence. A
// purchase whose reference is already in the ledger fails with
// domain.ErrDuplicatePayment.
func (r *EntryRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.Entry) error {
	queries, err := txQueries(tx)
	if err != nil {
		return err
	}

	id, err := queries.CreateEntry(ctx, generated.CreateEntryParams{
		AccountID:      entry.AccountID,
		CounterpartyID: ptrToInt8(entry.CounterpartyID),
		Amount:         entry.Amount,
		BalanceBefore:  entry.BalanceBefore,
		BalanceAfter:   entry.BalanceAfter,
		Kind:           string(entry.Kind),
		Description:    entry.Description,
		CreatedAt:      timeToPgTimestamptz(entry.CreatedAt),
	})
	if err != nil {
		if entry.Kind == domain.EntryKindPurchase && pgCode(err) == pgErrUniqueViolation {
			return fmt.Errorf("%w: %s", domain.ErrDuplicatePayment, entry.Description)
		}
		return err
	}

	entry.ID = id
	return nil
}

// List lists entries matching filter in id order.
func (r *EntryRepository) List(ctx context.Context, filter domain.EntryFilter) ([]*domain.Entry, error) {
	kinds := make([]string, 0, len(filter.Kinds))
	for _, k := range filter.Kinds {
		kinds = append(kinds, string(k))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = math.MaxInt32
	}

	rows, err := r.queries.ListEntries(ctx, generated.ListEntriesParams{
		AccountID: filter.AccountID,
		Kinds:     kinds,
		FromTime:  optionalTimestamptz(filter.From),
		ToTime:    optionalTimestamptz(filter.To),
		RowLimit:  int32(limit),
		RowOffset: int32(filter.Offset),
	})
	if err != nil {
		return nil, err
	}

	entries := make([]*domain.Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, rowToEntry(row))
	}

	return entries, nil
}

// SumByAccount returns the signed total of the account's entries.
func (r *EntryRepository) SumByAccount(ctx context.Context, accountID int64) (int64, error) {
	return r.queries.SumEntriesByAccount(ctx, accountID)
}

func rowToEntry(row generated.Entry) *domain.Entry {
	return &domain.Entry{
		ID:             row.ID,
		AccountID:      row.AccountID,
		CounterpartyID: int8ToPtr(row.CounterpartyID),
		Amount:         row.Amount,
		BalanceBefore:  row.BalanceBefore,
		BalanceAfter:   row.BalanceAfter,
		Kind:           domain.EntryKind(row.Kind),
		Description:    row.Description,
		CreatedAt:      row.CreatedAt.Time,
	}
}

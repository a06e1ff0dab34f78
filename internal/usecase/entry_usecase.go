package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/iho/creditledger/internal/domain"
)

var ErrInvalidTimeRange = errors.New("from must be before to")

// EntryUseCase handles entry history queries.
type EntryUseCase struct {
	entryRepo EntryRepository
}

// NewEntryUseCase creates a new EntryUseCase.
func NewEntryUseCase(entryRepo EntryRepository) *EntryUseCase {
	return &EntryUseCase{
		entryRepo: entryRepo,
	}
}

// ListEntriesInput represents input for listing entries.
type ListEntriesInput struct {
	From      *time.Time
	To        *time.Time
	Kinds     []domain.EntryKind
	AccountID int64
	Limit     int
	Offset    int
}

// ListEntries lists entries in id order. It does not take account locks.
func (uc *EntryUseCase) ListEntries(ctx context.Context, input ListEntriesInput) ([]*domain.Entry, error) {
	if input.AccountID != 0 {
		if err := domain.ValidateAccountID(input.AccountID); err != nil {
			return nil, err
		}
	}

	if input.From != nil && input.To != nil && !input.From.Before(*input.To) {
		return nil, ErrInvalidTimeRange
	}

	for _, k := range input.Kinds {
		if !k.IsValid() {
			return nil, domain.ErrInvalidEntryKind
		}
	}

	limit, offset, _ := domain.ValidatePagination(input.Limit, input.Offset)

	return uc.entryRepo.List(ctx, domain.EntryFilter{
		AccountID: input.AccountID,
		Kinds:     input.Kinds,
		From:      input.From,
		To:        input.To,
		Limit:     limit,
		Offset:    offset,
	})
}

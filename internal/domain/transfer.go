package domain

import (
	"fmt"
	"time"
)

// Transfer is a signed reallocation request between two accounts.
type Transfer struct {
	SourceID    int64
	DestID      int64
	Amount      int64
	Kind        EntryKind
	Description string
}

// Validate validates transfer request.
func (t *Transfer) Validate() error {
	if t.SourceID == t.DestID {
		return ErrInvalidOperation
	}

	if t.Amount == 0 {
		return ErrInvalidAmount
	}

	if !t.Kind.IsValid() {
		return ErrInvalidEntryKind
	}

	return nil
}

// IsReversal reports whether credits flow back from destination to source.
func (t *Transfer) IsReversal() bool {
	return t.Amount < 0
}

// Debited returns the account that loses credits and the absolute amount.
func (t *Transfer) Debited() (int64, int64) {
	if t.IsReversal() {
		return t.DestID, -t.Amount
	}
	return t.SourceID, t.Amount
}

// Credited returns the account that gains credits.
func (t *Transfer) Credited() int64 {
	if t.IsReversal() {
		return t.SourceID
	}
	return t.DestID
}

// EntryKind returns the kind recorded on both entries. Reversing an
// allocation is booked as a refund.
func (t *Transfer) EntryKind() EntryKind {
	if t.IsReversal() && t.Kind == EntryKindAllocation {
		return EntryKindAllocationRefund
	}
	return t.Kind
}

// DebitDescription is written on the losing side's entry.
func (t *Transfer) DebitDescription(counterparty int64) string {
	return fmt.Sprintf("%s to account %d: %s", t.EntryKind(), counterparty, t.Description)
}

// CreditDescription is written on the gaining side's entry.
func (t *Transfer) CreditDescription(counterparty int64) string {
	return fmt.Sprintf("%s from account %d: %s", t.EntryKind(), counterparty, t.Description)
}

// TransferRecord is the committed result of a transfer. It carries both
// balances and both entries so callers can build their audit trail.
type TransferRecord struct {
	CreatedAt     time.Time
	SourceEntry   *Entry
	DestEntry     *Entry
	SourceID      int64
	DestID        int64
	Amount        int64
	SourceBalance int64
	DestBalance   int64
	Kind          EntryKind
}

// BalanceChange is the committed result of a single-account credit or debit.
type BalanceChange struct {
	Entry     *Entry
	AccountID int64
	Balance   int64
}

package domain

import "time"

// EntryKind classifies the business reason for a balance change.
type EntryKind string

const (
	EntryKindPurchase         EntryKind = "purchase"
	EntryKindUsage            EntryKind = "usage"
	EntryKindAllocation       EntryKind = "allocation"
	EntryKindAllocationRefund EntryKind = "allocation_refund"
)

var validEntryKinds = map[EntryKind]bool{
	EntryKindPurchase:         true,
	EntryKindUsage:            true,
	EntryKindAllocation:       true,
	EntryKindAllocationRefund: true,
}

// IsValid reports whether k is a known entry kind.
func (k EntryKind) IsValid() bool {
	return validEntryKinds[k]
}

// ParseEntryKind converts a string to an EntryKind.
func ParseEntryKind(s string) (EntryKind, error) {
	k := EntryKind(s)
	if !k.IsValid() {
		return "", ErrInvalidEntryKind
	}
	return k, nil
}

// Entry is an immutable record of one signed balance change.
type Entry struct {
	CreatedAt      time.Time
	ID             int64
	AccountID      int64
	CounterpartyID *int64
	Amount         int64
	BalanceBefore  int64
	BalanceAfter   int64
	Kind           EntryKind
	Description    string
}

// EntryFilter narrows history scans.
type EntryFilter struct {
	From      *time.Time
	To        *time.Time
	Kinds     []EntryKind
	AccountID int64
	Limit     int
	Offset    int
}

// Matches reports whether e passes the filter, ignoring pagination.
func (f EntryFilter) Matches(e *Entry) bool {
	if f.AccountID != 0 && e.AccountID != f.AccountID {
		return false
	}
	if f.From != nil && e.CreatedAt.Before(*f.From) {
		return false
	}
	if f.To != nil && !e.CreatedAt.Before(*f.To) {
		return false
	}
	if len(f.Kinds) == 0 {
		return true
	}
	for _, k := range f.Kinds {
		if e.Kind == k {
			return true
		}
	}
	return false
}

package memory

import (
	"context"
	"sync"
)

// PaymentRegistry implements usecase.PaymentRegistry in process.
type PaymentRegistry struct {
	mu     sync.Mutex
	claims map[string]int64
}

// NewPaymentRegistry creates a new PaymentRegistry.
func NewPaymentRegistry() *PaymentRegistry {
	return &PaymentRegistry{claims: make(map[string]int64)}
}

// Claim reserves ref.
func (r *PaymentRegistry) Claim(ctx context.Context, ref string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.claims[ref]; ok {
		return false, nil
	}
	r.claims[ref] = 0
	return true, nil
}

// Complete records the entry that credited ref.
func (r *PaymentRegistry) Complete(ctx context.Context, ref string, entryID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.claims[ref] = entryID
	return nil
}

// Release drops the claim on ref.
func (r *PaymentRegistry) Release(ctx context.Context, ref string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.claims, ref)
	return nil
}

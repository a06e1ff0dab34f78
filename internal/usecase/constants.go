package usecase

import "time"

const (
	// DefaultTransactionTimeout is the maximum duration for a database transaction
	// This prevents long-running transactions from blocking tables
	DefaultTransactionTimeout = 10 * time.Second

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour

	// DefaultAdminCacheTTL is how long the administrator list is cached
	DefaultAdminCacheTTL = 30 * time.Second

	// outboxFlushTimeout bounds the eager post-commit delivery
	outboxFlushTimeout = 5 * time.Second
)

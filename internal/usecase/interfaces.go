package usecase

import (
	"context"
	"time"

	"github.com/iho/creditledger/internal/domain"
)

// AccountRepository defines data access for accounts.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id int64) (*domain.Account, error)
	// GetByIDsForUpdate locks the rows in ascending id order and returns them
	// in that order. Missing ids are skipped.
	GetByIDsForUpdate(ctx context.Context, tx Transaction, ids []int64) ([]*domain.Account, error)
	UpdateBalance(ctx context.Context, tx Transaction, id int64, balance int64, updatedAt time.Time) error
	List(ctx context.Context, limit, offset int) ([]*domain.Account, error)
	ListIDsByRole(ctx context.Context, role domain.Role) ([]int64, error)
}

// EntryRepository defines data access for ledger entries.
type EntryRepository interface {
	// Create appends the entry and assigns entry.ID.
	Create(ctx context.Context, tx Transaction, entry *domain.Entry) error
	List(ctx context.Context, filter domain.EntryFilter) ([]*domain.Entry, error)
	SumByAccount(ctx context.Context, accountID int64) (int64, error)
}

// AlertStateRepository defines data access for per-account alert state.
type AlertStateRepository interface {
	// Get returns an empty state when none is stored.
	Get(ctx context.Context, tx Transaction, accountID int64) (*domain.AlertState, error)
	Save(ctx context.Context, tx Transaction, state *domain.AlertState) error
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int, olderThan time.Time) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	DeletePublished(ctx context.Context, before time.Time) error
}

// NotificationRepository defines data access for user inboxes.
type NotificationRepository interface {
	// Create stores the message. Storing an id twice is a no-op.
	Create(ctx context.Context, n *domain.Notification) error
	ListByUser(ctx context.Context, filter domain.NotificationFilter) ([]*domain.Notification, error)
	CountUnread(ctx context.Context, userID int64) (int, error)
	MarkRead(ctx context.Context, userID int64, id string) error
	Delete(ctx context.Context, userID int64, id string) error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier re-runs an operation on transient lock and serialization failures.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyPending is the value held by an idempotency key while the first
// request carrying it is still running.
const IdempotencyPending = "processing"

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release drops a claim so the request can be retried.
	Release(ctx context.Context, key string) error
}

// PaymentRegistry records payment-provider confirmations that were already
// turned into credits.
type PaymentRegistry interface {
	// Claim reserves ref. It returns false when ref was claimed before.
	Claim(ctx context.Context, ref string) (bool, error)
	// Complete marks ref as credited by the given entry.
	Complete(ctx context.Context, ref string, entryID int64) error
	// Release drops a claim whose credit failed.
	Release(ctx context.Context, ref string) error
}

// NotificationSink delivers a message to a user's inbox.
type NotificationSink interface {
	Enqueue(ctx context.Context, msg *domain.Notification) (string, error)
}

// AdministratorDirectory lists the accounts that receive every low-balance alert.
type AdministratorDirectory interface {
	ListAdministrators(ctx context.Context) ([]int64, error)
}

// Generator performs the AI generation for a proposal.
type Generator interface {
	Generate(ctx context.Context, req GenerationRequest) (*GenerationResult, error)
}

// GenerationRequest describes one metered generation.
type GenerationRequest struct {
	Prompt     string
	ProposalID string
	AccountID  int64
}

// GenerationResult is the generator's output.
type GenerationResult struct {
	Content string
	Model   string
}

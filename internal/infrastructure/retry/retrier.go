package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"

	"github.com/iho/creditledger/internal/domain"
)

// PostgreSQL error codes for retryable errors.
const (
	pgErrDeadlock             = "40P01"
	pgErrSerializationFailure = "40001"
	pgErrLockNotAvailable     = "55P03"
)

// Observer is notified of every retried attempt.
type Observer interface {
	LockRetried()
}

// Retrier implements usecase.Retrier with exponential backoff.
type Retrier struct {
	observer        Observer
	logger          zerolog.Logger
	maxRetries      int
	initialInterval time.Duration
	maxInterval     time.Duration
	maxElapsedTime  time.Duration
}

// New creates a new retrier with default settings.
func New(logger zerolog.Logger) *Retrier {
	return &Retrier{
		maxRetries:      3,
		initialInterval: 50 * time.Millisecond,
		maxInterval:     1 * time.Second,
		maxElapsedTime:  10 * time.Second,
		logger:          logger,
	}
}

// WithObserver counts retries, typically into metrics.
func (r *Retrier) WithObserver(o Observer) *Retrier {
	r.observer = o
	return r
}

// WithMaxRetries overrides the retry budget.
func (r *Retrier) WithMaxRetries(n int) *Retrier {
	r.maxRetries = n
	return r
}

// Retry executes an operation with exponential backoff on retryable errors.
// Lock contention that outlasts the budget is reported as domain.ErrBusy.
func (r *Retrier) Retry(ctx context.Context, operation func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.initialInterval
	b.MaxInterval = r.maxInterval
	b.MaxElapsedTime = r.maxElapsedTime

	retryCount := 0

	err := backoff.Retry(func() error {
		err := operation()
		if err == nil {
			return nil
		}

		if !IsRetryable(err) {
			return backoff.Permanent(err)
		}

		retryCount++
		if retryCount > r.maxRetries {
			return backoff.Permanent(err)
		}

		if r.observer != nil {
			r.observer.LockRetried()
		}

		r.logger.Warn().
			Err(err).
			Int("retry", retryCount).
			Msg("retryable database error, retrying")

		return err
	}, backoff.WithContext(b, ctx))

	if err != nil && IsRetryable(err) && !errors.Is(err, domain.ErrBusy) {
		return fmt.Errorf("%w: %w", domain.ErrBusy, err)
	}
	return err
}

// IsRetryable reports whether err is lock contention or a serialization
// failure that a fresh attempt may overcome.
func IsRetryable(err error) bool {
	if errors.Is(err, domain.ErrLockTimeout) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgErrDeadlock, pgErrSerializationFailure, pgErrLockNotAvailable:
			return true
		}
	}
	return false
}

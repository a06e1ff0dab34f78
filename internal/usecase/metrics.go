package usecase

import "github.com/iho/creditledger/internal/domain"

// Metrics receives ledger counters. infrastructure/metrics.Metrics implements it.
type Metrics interface {
	CreditsMoved(kind domain.EntryKind, amount int64)
	OperationFailed(operation string, err error)
	MeterRejected()
	AlertEmitted(threshold int64)
	NotificationDelivered()
	NotificationFailed()
}

type noopMetrics struct{}

func (noopMetrics) CreditsMoved(domain.EntryKind, int64) {}
func (noopMetrics) OperationFailed(string, error)        {}
func (noopMetrics) MeterRejected()                       {}
func (noopMetrics) AlertEmitted(int64)                   {}
func (noopMetrics) NotificationDelivered()               {}
func (noopMetrics) NotificationFailed()                  {}

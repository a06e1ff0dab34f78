package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/iho/creditledger/internal/adapter/repository/memory"
	"github.com/iho/creditledger/internal/domain"
	"github.com/iho/creditledger/internal/infrastructure/idgen"
	"github.com/iho/creditledger/internal/usecase"
)

// ledger wires the use cases over a fresh memory store.
type ledger struct {
	store         *memory.Store
	txManager     *memory.TxManager
	accounts      *memory.AccountRepository
	entries       *memory.EntryRepository
	outbox        *memory.OutboxRepository
	notifications *memory.NotificationRepository
	inbox         *usecase.NotificationUseCase
	alerts        *usecase.AlertEngine
	transfers     *usecase.TransferUseCase
	meter         *usecase.MeterUseCase
}

type ledgerOption func(*usecase.AlertEngineConfig)

func withThresholds(th domain.Thresholds) ledgerOption {
	return func(c *usecase.AlertEngineConfig) { c.Thresholds = th }
}

func withSink(sink usecase.NotificationSink) ledgerOption {
	return func(c *usecase.AlertEngineConfig) { c.Sink = sink }
}

func withDirectory(dir usecase.AdministratorDirectory) ledgerOption {
	return func(c *usecase.AlertEngineConfig) { c.Directory = dir }
}

func newLedger(t *testing.T, accounts []*domain.Account, opts ...ledgerOption) *ledger {
	t.Helper()

	store := memory.NewStore(time.Second)
	l := &ledger{
		store:         store,
		txManager:     memory.NewTxManager(store),
		accounts:      memory.NewAccountRepository(store),
		entries:       memory.NewEntryRepository(store),
		outbox:        memory.NewOutboxRepository(store),
		notifications: memory.NewNotificationRepository(store),
	}

	for _, a := range accounts {
		if a.InitialBalance == 0 {
			a.InitialBalance = a.Balance
		}
		require.NoError(t, l.accounts.Create(context.Background(), a))
	}

	logger := zerolog.Nop()
	ids := idgen.NewULIDGenerator()
	l.inbox = usecase.NewNotificationUseCase(l.notifications, ids, logger)

	cfg := usecase.AlertEngineConfig{
		AlertRepo:  memory.NewAlertStateRepository(store),
		OutboxRepo: l.outbox,
		Directory:  usecase.NewCachedDirectory(l.accounts, nil, 0, logger),
		Sink:       l.inbox,
		IDGen:      ids,
		Logger:     logger,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	l.alerts = usecase.NewAlertEngine(cfg)
	l.transfers = usecase.NewTransferUseCase(l.txManager, l.accounts, l.entries, l.alerts, nil, logger)
	l.meter = usecase.NewMeterUseCase(l.txManager, l.accounts, l.transfers, logger)
	return l
}

func (l *ledger) balance(t *testing.T, id int64) int64 {
	t.Helper()
	acc, err := l.accounts.GetByID(context.Background(), id)
	require.NoError(t, err)
	return acc.Balance
}

func (l *ledger) entryCount(t *testing.T, id int64) int {
	t.Helper()
	list, err := l.entries.List(context.Background(), domain.EntryFilter{AccountID: id})
	require.NoError(t, err)
	return len(list)
}

func (l *ledger) inboxOf(t *testing.T, id int64) []*domain.Notification {
	t.Helper()
	list, err := l.notifications.ListByUser(context.Background(), domain.NotificationFilter{UserID: id, Limit: 100})
	require.NoError(t, err)
	return list
}

// requireReconciled checks that every account's entries explain its balance.
func (l *ledger) requireReconciled(t *testing.T) {
	t.Helper()
	report, err := usecase.NewReconciliationUseCase(l.accounts, l.entries).GenerateReconciliationReport(context.Background())
	require.NoError(t, err)
	require.Empty(t, report.Discrepancies)
}

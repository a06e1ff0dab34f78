package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/iho/creditledger/internal/adapter/generator"
	httpAdapter "github.com/iho/creditledger/internal/adapter/http"
	"github.com/iho/creditledger/internal/adapter/http/handler"
	"github.com/iho/creditledger/internal/adapter/http/middleware"
	memoryRepo "github.com/iho/creditledger/internal/adapter/repository/memory"
	postgresRepo "github.com/iho/creditledger/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/creditledger/internal/adapter/repository/redis"
	"github.com/iho/creditledger/internal/infrastructure/auth"
	"github.com/iho/creditledger/internal/infrastructure/config"
	"github.com/iho/creditledger/internal/infrastructure/eventpublisher"
	"github.com/iho/creditledger/internal/infrastructure/idgen"
	"github.com/iho/creditledger/internal/infrastructure/logger"
	"github.com/iho/creditledger/internal/infrastructure/metrics"
	"github.com/iho/creditledger/internal/infrastructure/postgres"
	"github.com/iho/creditledger/internal/infrastructure/redis"
	"github.com/iho/creditledger/internal/infrastructure/retry"
	"github.com/iho/creditledger/internal/usecase"
)

const limiterCleanupInterval = 10 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	a, err := buildApp(ctx, cfg, log, reg)
	if err != nil {
		return err
	}
	defer a.Close()

	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()

	go a.publisher.Start(workerCtx)
	go cleanupLimiters(workerCtx, a.limiter, limiterCleanupInterval)

	server := &http.Server{
		Addr:         listenAddr(cfg.HTTPPort),
		Handler:      a.handler,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", server.Addr).Str("store", cfg.StoreDriver).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	cancelWorkers()

	log.Info().Msg("server stopped")
	return nil
}

// app is a fully wired server without its listener.
type app struct {
	handler   http.Handler
	publisher *eventpublisher.EventPublisher
	limiter   *middleware.RateLimiter
	closers   []func()
}

// Close releases connections in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// storage is the set of repositories behind one store driver.
type storage struct {
	txManager     usecase.TransactionManager
	accounts      usecase.AccountRepository
	entries       usecase.EntryRepository
	alertStates   usecase.AlertStateRepository
	outbox        usecase.OutboxRepository
	notifications usecase.NotificationRepository
	checks        map[string]handler.Check
	close         func()
}

// cacheLayer holds the optional Redis-backed collaborators. Every field is
// nil when Redis is not configured.
type cacheLayer struct {
	cache       usecase.Cache
	idempotency usecase.IdempotencyStore
	payments    usecase.PaymentRegistry
	check       handler.Check
	close       func()
}

func buildApp(ctx context.Context, cfg *config.Config, log zerolog.Logger, reg prometheus.Registerer) (*app, error) {
	a := &app{}

	store, err := buildStorage(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, store.close)

	layer, err := buildCacheLayer(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	if layer.close != nil {
		a.closers = append(a.closers, layer.close)
	}

	m := metrics.New(reg)
	ids := idgen.NewULIDGenerator()

	// Without Redis the registry is per process. The ledger still refuses a
	// purchase reference it already holds.
	payments := layer.payments
	if payments == nil {
		payments = memoryRepo.NewPaymentRegistry()
	}

	// Use cases
	notificationUC := usecase.NewNotificationUseCase(store.notifications, ids, log)
	directory := usecase.NewCachedDirectory(store.accounts, layer.cache, cfg.AdminCacheTTL, log)
	alerts := usecase.NewAlertEngine(usecase.AlertEngineConfig{
		AlertRepo:  store.alertStates,
		OutboxRepo: store.outbox,
		Directory:  directory,
		Sink:       notificationUC,
		IDGen:      ids,
		Thresholds: cfg.AlertThresholds,
		Metrics:    m,
		Logger:     log,
	})
	retrier := retry.New(log).WithObserver(m)

	transferUC := usecase.NewTransferUseCase(store.txManager, store.accounts, store.entries, alerts, retrier, log).WithMetrics(m)
	meterUC := usecase.NewMeterUseCase(store.txManager, store.accounts, transferUC, log).WithMetrics(m)
	purchaseUC := usecase.NewPurchaseUseCase(transferUC, payments, cfg.CreditUnitPrice, log)
	accountUC := usecase.NewAccountUseCase(store.accounts).WithDirectory(directory)
	entryUC := usecase.NewEntryUseCase(store.entries)
	reconciliationUC := usecase.NewReconciliationUseCase(store.accounts, store.entries)

	var generationHandler *handler.GenerationHandler
	if cfg.GeneratorURL != "" {
		client := generator.NewHTTPClient(cfg.GeneratorURL, cfg.GeneratorTimeout)
		generationHandler = handler.NewGenerationHandler(usecase.NewGenerationUseCase(meterUC, client))
	} else {
		log.Warn().Msg("GENERATOR_URL not set, generation endpoint disabled")
	}

	health := handler.NewHealthHandler()
	for name, check := range store.checks {
		health.WithCheck(name, check)
	}
	if layer.check != nil {
		health.WithCheck("redis", layer.check)
	}

	a.limiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst).OnReject(m.RateLimited)

	var verifier middleware.TokenVerifier
	if cfg.AuthEnabled {
		verifier = auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)
	}

	a.handler = httpAdapter.NewRouter(httpAdapter.RouterConfig{
		Logger:                log,
		AccountHandler:        handler.NewAccountHandler(accountUC),
		EntryHandler:          handler.NewEntryHandler(entryUC),
		ReconciliationHandler: handler.NewReconciliationHandler(reconciliationUC),
		AllocationHandler:     handler.NewAllocationHandler(transferUC),
		PurchaseHandler:       handler.NewPurchaseHandler(purchaseUC),
		GenerationHandler:     generationHandler,
		NotificationHandler:   handler.NewNotificationHandler(notificationUC),
		HealthHandler:         health,
		Metrics:               m,
		MetricsHandler:        metricsHandler(reg),
		IdempotencyStore:      layer.idempotency,
		RateLimiter:           a.limiter,
		TokenVerifier:         verifier,
		IdempotencyTTL:        cfg.IdempotencyTTL,
		CORSAllowedOrigins:    cfg.CORSAllowedOrigins,
	})

	a.publisher = eventpublisher.NewEventPublisher(eventpublisher.Config{
		OutboxRepo: store.outbox,
		Publisher:  eventpublisher.NewSinkPublisher(notificationUC),
		Observer:   m,
		Logger:     log,
		BatchSize:  cfg.OutboxBatchSize,
		Interval:   cfg.OutboxInterval,
		Retention:  cfg.OutboxRetention,
	})

	return a, nil
}

func buildStorage(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*storage, error) {
	switch cfg.StoreDriver {
	case config.StoreDriverMemory:
		s := memoryRepo.NewStore(cfg.LockTimeout)
		log.Info().Msg("using in-memory store")
		return &storage{
			txManager:     memoryRepo.NewTxManager(s),
			accounts:      memoryRepo.NewAccountRepository(s),
			entries:       memoryRepo.NewEntryRepository(s),
			alertStates:   memoryRepo.NewAlertStateRepository(s),
			outbox:        memoryRepo.NewOutboxRepository(s),
			notifications: memoryRepo.NewNotificationRepository(s),
			close:         func() {},
		}, nil

	case config.StoreDriverPostgres:
		connectCtx, cancel := context.WithTimeout(ctx, cfg.DatabaseTimeout)
		defer cancel()

		pool, err := postgres.NewPoolWithConfig(connectCtx, postgres.PoolConfig{
			DatabaseURL: cfg.DatabaseURL,
			MaxConns:    cfg.DatabaseMaxConns,
			MinConns:    cfg.DatabaseMinConns,
		})
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		log.Info().Msg("connected to postgres")

		if cfg.RunMigrations {
			if err := postgres.RunMigrations(cfg.DatabaseURL, log); err != nil {
				pool.Close()
				return nil, fmt.Errorf("run migrations: %w", err)
			}
		}

		return &storage{
			txManager:     postgresRepo.NewTxManager(pool, cfg.LockTimeout),
			accounts:      postgresRepo.NewAccountRepository(pool),
			entries:       postgresRepo.NewEntryRepository(pool),
			alertStates:   postgresRepo.NewAlertStateRepository(),
			outbox:        postgresRepo.NewOutboxRepository(pool),
			notifications: postgresRepo.NewNotificationRepository(pool),
			checks:        map[string]handler.Check{"postgres": pool.Ping},
			close:         pool.Close,
		}, nil
	}

	return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}

func buildCacheLayer(ctx context.Context, cfg *config.Config) (*cacheLayer, error) {
	if cfg.RedisURL == "" {
		return &cacheLayer{}, nil
	}

	rdb, err := redis.NewClient(ctx, redis.Config{URL: cfg.RedisURL})
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return &cacheLayer{
		cache:       redisRepo.NewCache(rdb),
		idempotency: redisRepo.NewIdempotencyStore(rdb),
		payments:    redisRepo.NewPaymentRegistry(rdb, 0),
		check:       redisCheck(rdb),
		close:       func() { _ = rdb.Close() },
	}, nil
}

func redisCheck(rdb *goredis.Client) handler.Check {
	return func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	}
}

func metricsHandler(reg prometheus.Registerer) http.Handler {
	if g, ok := reg.(prometheus.Gatherer); ok {
		return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
	}
	return promhttp.Handler()
}

func cleanupLimiters(ctx context.Context, rl *middleware.RateLimiter, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.CleanupLimiters()
		}
	}
}

func listenAddr(port string) string {
	if port == "" {
		port = "8080"
	}
	return ":" + port
}

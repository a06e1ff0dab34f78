package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/iho/creditledger/internal/adapter/http/handler"
	"github.com/iho/creditledger/internal/adapter/http/middleware"
	"github.com/iho/creditledger/internal/domain"
	"github.com/iho/creditledger/internal/infrastructure/metrics"
	"github.com/iho/creditledger/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	Logger                zerolog.Logger
	AccountHandler        *handler.AccountHandler
	EntryHandler          *handler.EntryHandler
	ReconciliationHandler *handler.ReconciliationHandler
	AllocationHandler     *handler.AllocationHandler
	PurchaseHandler       *handler.PurchaseHandler
	GenerationHandler     *handler.GenerationHandler // nil when no generator is configured
	NotificationHandler   *handler.NotificationHandler
	HealthHandler         *handler.HealthHandler
	Metrics               *metrics.Metrics
	MetricsHandler        http.Handler
	IdempotencyStore      usecase.IdempotencyStore
	RateLimiter           *middleware.RateLimiter
	TokenVerifier         middleware.TokenVerifier // nil disables auth
	IdempotencyTTL        time.Duration
	CORSAllowedOrigins    []string // empty disables CORS
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery(cfg.Logger))
	if cfg.Metrics != nil {
		r.Use(middleware.NewMetricsMiddleware(cfg.Metrics).Wrap)
	}
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.CORSAllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", middleware.IdempotencyKeyHeader},
			ExposedHeaders: []string{"Retry-After"},
			MaxAge:         300,
		}))
	}

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		if cfg.TokenVerifier != nil {
			var observer middleware.AuthObserver
			if cfg.Metrics != nil {
				observer = cfg.Metrics
			}
			r.Use(middleware.AuthMiddleware(cfg.TokenVerifier, observer))
		}

		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL)
			r.Use(idempotencyMiddleware.Wrap)
		}

		// Accounts
		r.Route("/accounts", func(r chi.Router) {
			r.Post("/", cfg.AccountHandler.Create)
			r.Get("/", cfg.AccountHandler.List)
			r.Get("/{id}", cfg.AccountHandler.Get)
			r.Get("/{id}/entries", cfg.EntryHandler.ListByAccount)
			r.Get("/{id}/reconciliation", cfg.ReconciliationHandler.ReconcileAccount)
		})

		// Credits. Purchases are posted by the operator once the payment
		// provider confirms; account holders never credit themselves.
		admin := r.With()
		if cfg.TokenVerifier != nil {
			admin = r.With(middleware.RequireRole(domain.RoleAdmin))
		}
		admin.Post("/allocations", cfg.AllocationHandler.Create)
		admin.Post("/purchases", cfg.PurchaseHandler.Create)

		if cfg.GenerationHandler != nil {
			r.Post("/proposals/{id}/generate", cfg.GenerationHandler.Generate)
		}

		// Inbox
		r.Route("/users/{id}/notifications", func(r chi.Router) {
			r.Get("/", cfg.NotificationHandler.List)
			r.Post("/{nid}/read", cfg.NotificationHandler.MarkRead)
			r.Delete("/{nid}", cfg.NotificationHandler.Delete)
		})

		r.Get("/ledger/reconciliation", cfg.ReconciliationHandler.Report)
	})

	return r
}

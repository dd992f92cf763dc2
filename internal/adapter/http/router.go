package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/motocrm/balance/internal/adapter/http/handler"
	"github.com/motocrm/balance/internal/adapter/http/middleware"
	"github.com/motocrm/balance/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	BalanceHandler   *handler.BalanceHandler
	OperationHandler *handler.OperationHandler
	OverrideHandler  *handler.OverrideHandler
	DocumentHandler  *handler.DocumentHandler
	HealthHandler    *handler.HealthHandler
	IdempotencyStore usecase.IdempotencyStore
	RateLimiter      *middleware.RateLimiter
	Logging          *middleware.LoggingMiddleware
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Metrics)
	r.Use(middleware.Recovery)

	if cfg.Logging != nil {
		r.Use(cfg.Logging.Wrap)
	}

	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Health and metrics endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore)
			r.Use(idempotencyMiddleware.Wrap)
		}

		// Company balances
		r.Route("/companies/{companyID}", func(r chi.Router) {
			r.Get("/balances", cfg.BalanceHandler.Get)
			r.Post("/balances/update", cfg.BalanceHandler.Update)
			r.Get("/reconcile", cfg.BalanceHandler.Reconcile)
			r.Get("/operations", cfg.OperationHandler.ListByCompany)
			r.Get("/history", cfg.OperationHandler.ListHistory)
		})

		// Manual overrides
		r.Route("/overrides", func(r chi.Router) {
			r.Post("/", cfg.OverrideHandler.Override)
			r.Post("/cash-to-safe", cfg.OverrideHandler.CashToSafe)
			r.Post("/cash-from-safe", cfg.OverrideHandler.CashFromSafe)
			r.Post("/bank-statement", cfg.OverrideHandler.BankStatement)
			r.Post("/cash-inventory", cfg.OverrideHandler.CashInventory)
		})

		// Ledger entries
		r.Route("/operations", func(r chi.Router) {
			r.Post("/{operationID}/approve", cfg.OverrideHandler.Approve)
		})

		// Financial document notifications
		r.Route("/documents", func(r chi.Router) {
			r.Post("/events", cfg.DocumentHandler.Events)
			r.Get("/{documentID}/operations", cfg.OperationHandler.ListByDocument)
		})

		// Fleet-wide reconciliation
		r.Get("/reconciliation/report", cfg.BalanceHandler.DriftReport)
	})

	return r
}

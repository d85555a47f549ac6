package main

import (
	"log"
	"net/http"

	httphandlers "finmgmt/internal/interfaces/http"
	"finmgmt/internal/shared/config"
	"finmgmt/internal/shared/middleware"
)

// SetupRoutes configures all HTTP routes and returns the final handler with middleware.
func SetupRoutes(deps *Dependencies, cfg *config.Config) http.Handler {
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("/health", httphandlers.HandleHealth)

	authMiddleware := middleware.Auth(deps.Verifier, cfg.Auth.CookieName)
	api := func(h http.HandlerFunc) http.Handler {
		return authMiddleware(middleware.RequireRole(cfg.Finance.Role)(h))
	}
	page := func(h http.HandlerFunc) http.Handler {
		return authMiddleware(middleware.RedirectUnlessRole(cfg.Finance.Role, "/")(h))
	}

	// Financial API
	mux.Handle("/api/financial/transactions", api(deps.TransactionHandler.HandleTransactions))
	mux.Handle("/api/financial/transactions/{id}", api(deps.TransactionHandler.HandleTransactionByID))
	mux.Handle("/api/financial/payments", api(deps.PaymentHandler.HandlePayments))
	mux.Handle("/api/financial/payments/{id}", api(deps.PaymentHandler.HandlePaymentByID))
	mux.Handle("/api/financial/summary", api(deps.SummaryHandler.HandleSummary))
	mux.Handle("/api/financial/summary/rebuild", api(deps.SummaryHandler.HandleRebuild))
	mux.Handle("/api/financial/reports/transactions.xlsx", api(deps.ReportHandler.HandleTransactionsReport))

	// Pages
	mux.Handle("/financial", page(deps.PageHandler.HandleFinancial))
	mux.Handle("/financial/transactions", page(deps.PageHandler.HandleCreateTransaction))

	// Apply global middleware, outermost last
	handler := middleware.CORS(cfg.Server.AllowedHosts)(mux)
	if cfg.Telemetry.Enabled {
		handler = middleware.Tracing(handler)
	}
	handler = middleware.Logging(handler)
	if cfg.Telemetry.Enabled {
		handler = middleware.Telemetry(handler)
	}

	// Apply security middleware when TLS is enabled
	if cfg.TLS.Enabled {
		handler = middleware.HSTS(middleware.SecureCookies(handler))
		log.Println("TLS security middleware enabled (HSTS + SecureCookies)")
	}

	return handler
}

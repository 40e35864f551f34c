package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/r3e-network/ledger-core/internal/ledger"
	"github.com/r3e-network/ledger-core/internal/logging"
	"github.com/r3e-network/ledger-core/internal/metrics"
	"github.com/r3e-network/ledger-core/internal/middleware"
)

// NewRouter builds the HTTP surface, with the ambient middleware stack
// (logging, recovery, metrics, per-client rate limit) applied in a fixed
// order around every route.
func NewRouter(bank *ledger.Bank, logger *logging.Logger, m *metrics.Metrics, rateLimiter *middleware.RateLimiter) *mux.Router {
	h := NewHandler(bank, logger)
	r := mux.NewRouter()

	r.Use(middleware.Logging(logger))
	r.Use(middleware.Recovery(logger))
	if m != nil {
		r.Use(middleware.Metrics(m))
	}
	if rateLimiter != nil {
		r.Use(rateLimiter.Handler)
	}

	r.HandleFunc("/users", h.CreateUser).Methods(http.MethodPost)
	r.HandleFunc("/users/{user}/deposits", h.Deposit).Methods(http.MethodPost)
	r.HandleFunc("/users/{user}/withdrawals", h.Withdraw).Methods(http.MethodPost)
	r.HandleFunc("/users/{user}/balance", h.GetBalance).Methods(http.MethodGet)
	r.HandleFunc("/transfers", h.Send).Methods(http.MethodPost)
	r.HandleFunc("/healthz", h.Healthz).Methods(http.MethodGet)

	if m != nil {
		r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	}

	return r
}

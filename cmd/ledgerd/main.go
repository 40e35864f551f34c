// Command ledgerd runs the ledger HTTP service: the synchronous banking
// API described by SPEC_FULL.md, wired to its control-plane core in
// internal/ledger.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/r3e-network/ledger-core/internal/api"
	"github.com/r3e-network/ledger-core/internal/config"
	"github.com/r3e-network/ledger-core/internal/ledger"
	"github.com/r3e-network/ledger-core/internal/logging"
	"github.com/r3e-network/ledger-core/internal/metrics"
	"github.com/r3e-network/ledger-core/internal/middleware"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := logging.New("ledgerd", cfg.LogLevel, cfg.LogFormat)
	m := metrics.New("ledgerd")

	bank := ledger.New(ledger.Config{
		IdleTimeout:        cfg.StaleHandlerTimeout,
		StaleCheckInterval: cfg.StaleCheckInterval,
	}, logger, m)
	defer bank.Close()

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	router := api.NewRouter(bank, logger, m, rateLimiter)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		logger.WithFields(map[string]interface{}{"port": cfg.HTTPPort}).Info("ledgerd listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("shutdown error")
	}
	logger.Info("ledgerd stopped")
}

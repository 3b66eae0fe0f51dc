/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the payroll engine server. Handles configuration,
  dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load .env (optional) and environment configuration
  2. Configure structured logging
  3. Initialize SQLite store
  4. Create engine and API handler
  5. Start background summary refresher
  6. Start server with graceful shutdown

ENVIRONMENT:
  PAYROLL_ADDR                  Listen address (default: :8080)
  PAYROLL_DB_PATH               SQLite database path (default: payroll.db)
                                Use ":memory:" for in-memory database
  PAYROLL_LOG_FORMAT            "text" or "json" (default: text)
  PAYROLL_REFRESH_ENABLED       Background refresher on/off (default: true)
  PAYROLL_REFRESH_INTERVAL      Refresher interval (default: 1h)
  PAYROLL_REFRESH_WINDOW_DAYS   Trailing days recomputed per run (default: 30)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Stop the background refresher
  4. Close database connection
  5. Exit

EXAMPLES:
  # Run with file database
  PAYROLL_DB_PATH=./data/payroll.db ./server

  # Run with in-memory database
  PAYROLL_DB_PATH=:memory: ./server

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/warp/payroll-engine/api"
	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/store/sqlite"
)

// Config holds all server settings, populated from PAYROLL_* env vars.
type Config struct {
	Addr              string        `envconfig:"ADDR" default:":8080"`
	DBPath            string        `envconfig:"DB_PATH" default:"payroll.db"`
	LogFormat         string        `envconfig:"LOG_FORMAT" default:"text"`
	RefreshEnabled    bool          `envconfig:"REFRESH_ENABLED" default:"true"`
	RefreshInterval   time.Duration `envconfig:"REFRESH_INTERVAL" default:"1h"`
	RefreshWindowDays int           `envconfig:"REFRESH_WINDOW_DAYS" default:"30"`
}

func main() {
	// .env is optional; absence is not an error.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("payroll", &cfg); err != nil {
		slog.Error("failed to parse configuration", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.LogFormat)
	slog.SetDefault(logger)

	// Initialize store
	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		logger.Error("failed to initialize database", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	// Engine and handler
	engine := payroll.NewEngine(store, logger)
	handler := api.NewHandler(store, engine, logger)
	router := api.NewRouter(handler)

	// Background summary refresher
	refresher := api.NewSummaryRefresher(engine, store, logger)
	refresher.CheckInterval = cfg.RefreshInterval
	refresher.WindowDays = cfg.RefreshWindowDays
	refresher.Enabled = cfg.RefreshEnabled
	refresher.Start()
	defer refresher.Stop()

	// Create server
	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("server starting", "addr", cfg.Addr, "db", cfg.DBPath)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

func newLogger(format string) *slog.Logger {
	if format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, nil))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

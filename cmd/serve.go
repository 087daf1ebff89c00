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

	"github.com/Shivanand-hulikatti/event-manager/internal/auth"
	"github.com/Shivanand-hulikatti/event-manager/internal/config"
	"github.com/Shivanand-hulikatti/event-manager/internal/database"
	"github.com/Shivanand-hulikatti/event-manager/internal/handler"
	"github.com/Shivanand-hulikatti/event-manager/internal/metrics"
	"github.com/Shivanand-hulikatti/event-manager/internal/notify"
	"github.com/Shivanand-hulikatti/event-manager/internal/repository"
	"github.com/Shivanand-hulikatti/event-manager/internal/service"
	"github.com/spf13/cobra"
)

var (
	// Server flags (override config/env)
	serverHost  string
	serverPort  int
	autoMigrate bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Start the HTTP server and begin accepting API requests.

Examples:
  # Start with configuration from the environment (or .env)
  event-manager serve

  # Apply pending migrations first, then listen on port 9090
  event-manager serve --migrate --port 9090`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("config error: %w", err)
		}
		applyServeFlags(&cfg)
		return runServer(cfg)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serverHost, "host", "", "server host address (default: 0.0.0.0)")
	serveCmd.Flags().IntVar(&serverPort, "port", 0, "server port (default: 8080)")
	serveCmd.Flags().BoolVar(&autoMigrate, "migrate", false, "apply pending migrations before serving")
}

func applyServeFlags(cfg *config.Config) {
	if serverHost != "" {
		cfg.Server.Host = serverHost
	}
	if serverPort != 0 {
		cfg.Server.Port = serverPort
	}
}

func runServer(cfg config.Config) error {
	logger := config.NewLogger(cfg.Logging)
	logger.Info().Str("environment", cfg.Environment).Msg("starting event manager")

	if autoMigrate {
		if err := database.MigrateUp(cfg.Database.MigrationURL()); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		logger.Info().Msg("migrations applied")
	}

	// ── 1. Connect to PostgreSQL ──────────────────────────────────────────
	connectCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	pool, err := database.NewPool(connectCtx, cfg.Database, logger)
	cancel()
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer pool.Close()
	if err := metrics.RegisterPool(pool); err != nil {
		return fmt.Errorf("metrics: %w", err)
	}
	logger.Info().Msg("connected to postgres")

	// ── 2. Wire up layers ────────────────────────────────────────────────
	notifier, err := notify.New(cfg.Notify, logger)
	if err != nil {
		return fmt.Errorf("notifier: %w", err)
	}
	svc := service.NewEventService(
		repository.NewUserRepository(pool),
		repository.NewEventRepository(pool),
		repository.NewTicketRepository(pool),
		repository.NewRegistrationRepository(pool),
		notifier,
		logger,
	)
	tokens := auth.NewTokenManager(cfg.Auth.TokenSecret, cfg.Auth.TokenTTL)
	h := handler.NewEventHandler(svc, tokens, logger)

	// ── 3. Start server with graceful shutdown ────────────────────────────
	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           handler.NewRouter(h, pool, cfg.Server, logger),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-quit:
	}

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	logger.Info().Msg("server stopped")
	return nil
}

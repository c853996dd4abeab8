package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	outboxadapter "github.com/ericfisherdev/examdesk/internal/adapter/driven/outbox"
	sqliteadapter "github.com/ericfisherdev/examdesk/internal/adapter/driven/sqlite"
	httphandler "github.com/ericfisherdev/examdesk/internal/adapter/driving/http"
	"github.com/ericfisherdev/examdesk/internal/application"
	"github.com/ericfisherdev/examdesk/internal/config"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration (fail fast on invalid env vars).
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	slog.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"db_path", cfg.DBPath,
		"outbox_dir", cfg.OutboxDir,
		"recovery_ttl", cfg.RecoveryTTL,
		"prune_interval", cfg.PruneInterval,
		"allowed_origin", cfg.AllowedOrigin,
	)
	if cfg.UsesDefaultSecret() {
		slog.Warn("EXAMDESK_SESSION_SECRET is not set, admin tokens are signed with the development secret")
	}

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Open database (dual reader/writer with WAL mode).
	db, err := sqliteadapter.NewDB(ctx, cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()
	slog.Info("database opened", "path", cfg.DBPath)

	// 4. Run migrations on writer connection.
	version, err := sqliteadapter.RunMigrations(db.Writer)
	if err != nil {
		return err
	}
	slog.Info("migrations complete", "version", version)

	// 5. Wire adapters.
	credentialStore := sqliteadapter.NewCredentialRepo(db)
	recoveryStore := sqliteadapter.NewRecoveryRepo(db)
	examStore := sqliteadapter.NewExamRepo(db)

	notifier, err := outboxadapter.New(cfg.OutboxDir, logger)
	if err != nil {
		return err
	}
	slog.Info("outbox ready", "dir", notifier.Dir())

	// 6. Wire application services.
	codec, err := application.NewTokenCodec([]byte(cfg.SessionSecret), nil)
	if err != nil {
		return err
	}
	gate := application.NewAuthGate(codec, logger)

	credentials := application.NewCredentialService(credentialStore, nil, logger)
	ledger := application.NewRecoveryLedger(recoveryStore, nil, logger)
	accounts := application.NewAccountService(credentials, ledger, notifier, cfg.RecoveryTTL, cfg.RecoveryURL, logger)
	exams := application.NewExamService(examStore, nil, logger)

	// 7. Start the grant pruner.
	pruner := application.NewGrantPruner(recoveryStore, cfg.PruneInterval, application.DefaultGrantRetention, nil, logger)
	go pruner.Start(ctx)

	// 8. Create HTTP handler with all routes and middleware.
	handler := httphandler.NewServeMux(
		httphandler.NewHandler(accounts, exams, pruner, logger),
		gate,
		cfg.AllowedOrigin,
		logger,
	)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		slog.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			srvErr <- err
		}
	}()

	slog.Info("examdesk started", "listen_addr", cfg.ListenAddr)

	// 9. Wait for shutdown signal or a listener failure.
	select {
	case <-ctx.Done():
		slog.Info("shutting down")
	case err := <-srvErr:
		return err
	}

	// 10. Graceful shutdown with 10s timeout for in-flight requests.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/revanth-rampal/trail/config"
	"github.com/revanth-rampal/trail/internal/bootstrap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	logger := bootstrap.InitLogger()
	err := run(ctx)
	stop()
	if err != nil {
		logger.ErrorContext(ctx, "fatal error", "error", err)
		os.Exit(1) //nolint:forbidigo // Main entrypoint should exit with non-zero status on fatal errors.
	}
}

func run(ctx context.Context) error {
	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		return err
	}
	logger := bootstrap.NewLogger(cfg.Observability.Logging, os.Stdout)

	logStartupInfo(ctx, logger, &cfg)
	return bootstrap.Run(ctx, cfg, logger)
}

func logStartupInfo(ctx context.Context, logger *slog.Logger, cfg *config.AppConfig) {
	logger.InfoContext(ctx, "starting trail",
		"addr", cfg.HTTP.Addr,
		"base_url", cfg.HTTP.BaseURL,
		"dev", cfg.IsDev,
		"directory", string(cfg.Auth.Directory),
		"session_ttl", cfg.Session.TTL.String(),
		"metrics", cfg.Observability.Metrics.IsEnabled(),
	)
	if cfg.IsDev && cfg.HTTP.CookieSecure {
		logger.InfoContext(ctx, "dev mode with secure cookies; sign-in requires https")
	}
}

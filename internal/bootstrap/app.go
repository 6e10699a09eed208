// Package bootstrap wires configuration, storage, and the HTTP server for the binaries.
package bootstrap

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/revanth-rampal/trail/config"
	redisadapter "github.com/revanth-rampal/trail/internal/adapters/redis"
)

// Run connects the backing stores, wires the services, and serves HTTP until ctx is done.
func Run(ctx context.Context, cfg config.AppConfig, logger *slog.Logger) error {
	dbCfg := DatabaseConfig{DBConfig: cfg.Postgres, RedisConfig: cfg.Redis, Logger: logger}

	redisClient, err := ConnectRedis(ctx, dbCfg)
	if err != nil {
		return err
	}
	defer closeWithLog(logger, "redis", redisClient.Close)

	var db *sql.DB
	if cfg.NeedsPostgres() {
		db, err = ConnectDB(ctx, dbCfg)
		if err != nil {
			return err
		}
		defer closeWithLog(logger, "database", db.Close)

		if cfg.Postgres.RunMigrationsOnStart {
			if err = RunMigrations(ctx, db, logger); err != nil {
				return err
			}
		}
	}

	metricsClient, err := BuildMetrics(cfg.Observability.Metrics, logger)
	if err != nil {
		return err
	}
	defer closeWithLog(logger, "metrics", metricsClient.Close)

	dir, err := BuildDirectory(ctx, DirectoryDeps{Config: cfg.Auth, DB: db, Logger: logger})
	if err != nil {
		return err
	}

	services, err := NewServices(ServiceConfig{
		Directory:   dir,
		Sessions:    redisadapter.NewSessionStoreWithPrefix(redisClient, cfg.Session.KeyPrefix),
		AuthTimeout: cfg.Auth.Timeout,
		SessionTTL:  cfg.Session.TTL,
		Metrics:     metricsClient,
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	handler, err := BuildHTTPHandler(HTTPHandlerConfig{Config: cfg, Services: services, Logger: logger})
	if err != nil {
		return err
	}

	return Serve(ctx, ServeOptions{
		Server:          NewHTTPServer(cfg.HTTP, handler),
		ShutdownTimeout: cfg.HTTP.ShutdownTimeout,
		Logger:          logger,
	})
}

func closeWithLog(logger *slog.Logger, what string, closeFn func() error) {
	if err := closeFn(); err != nil && logger != nil {
		logger.Warn("failed to close resource", "resource", what, "error", err)
	}
}

package bootstrap

import (
	"fmt"
	"log/slog"

	"github.com/revanth-rampal/trail/config"
	"github.com/revanth-rampal/trail/internal/observability/statsd"
)

// BuildMetrics returns the StatsD client. A disabled config yields a client that drops
// every metric, so callers never need a nil check.
func BuildMetrics(cfg config.ObservabilityMetricsConfig, logger *slog.Logger) (*statsd.Client, error) {
	client, err := statsd.NewClient(statsd.Config{
		Enabled: cfg.IsEnabled(),
		Address: cfg.StatsdAddress,
		Prefix:  cfg.Prefix,
		Logger:  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("build metrics client: %w", err)
	}
	if logger != nil && client.Enabled() {
		logger.Info("metrics enabled", "statsd_address", cfg.StatsdAddress, "prefix", cfg.Prefix)
	}
	return client, nil
}

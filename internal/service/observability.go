package service

import (
	"io"
	"log/slog"

	"github.com/revanth-rampal/trail/internal/observability/statsd"
)

// Observability groups the optional logging and metrics dependencies shared by services.
type Observability struct {
	Logger  *slog.Logger
	Metrics statsd.Sink
}

func (o Observability) logger(component string) *slog.Logger {
	if o.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return o.Logger.With("component", component)
}

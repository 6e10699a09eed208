package bootstrap

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/revanth-rampal/trail/internal/domain/route"
	"github.com/revanth-rampal/trail/internal/observability/statsd"
	"github.com/revanth-rampal/trail/internal/ports"
	"github.com/revanth-rampal/trail/internal/service"
)

// ServiceConfig contains the dependencies shared by every request.
type ServiceConfig struct {
	Directory   ports.Directory         // Required
	Sessions    ports.SessionRepository // Optional: without it sessions last one request
	AuthTimeout time.Duration
	SessionTTL  time.Duration
	Metrics     statsd.Sink
	Logger      *slog.Logger
}

// ServiceContainer holds the process-wide services and a factory for per-request stores.
type ServiceContainer struct {
	Authenticator *service.Authenticator
	Guard         *service.Guard
	NewSession    func() *service.SessionStore
}

// NewServices validates the route table and wires the auth services.
func NewServices(cfg ServiceConfig) (*ServiceContainer, error) {
	if cfg.Directory == nil {
		return nil, errors.New("services: directory is required")
	}
	policy, err := route.DefaultPolicy()
	if err != nil {
		return nil, fmt.Errorf("route policy: %w", err)
	}

	obs := service.Observability{Logger: cfg.Logger, Metrics: cfg.Metrics}
	authn := service.NewAuthenticator(service.AuthenticatorOptions{
		Directory: cfg.Directory,
		Config:    service.AuthenticatorConfig{Timeout: cfg.AuthTimeout},
		Obs:       obs,
	})
	guard := service.NewGuard(service.GuardOptions{Policy: policy, Obs: obs})

	return &ServiceContainer{
		Authenticator: authn,
		Guard:         guard,
		NewSession: func() *service.SessionStore {
			return service.NewSessionStore(service.SessionStoreOptions{
				Authenticator: authn,
				Sessions:      cfg.Sessions,
				Config:        service.SessionStoreConfig{TTL: cfg.SessionTTL},
				Obs:           obs,
			})
		},
	}, nil
}


package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/revanth-rampal/trail/config"
	httpx "github.com/revanth-rampal/trail/internal/http"
)

// HTTPHandlerConfig contains what BuildHTTPHandler wires into the router.
type HTTPHandlerConfig struct {
	Config   config.AppConfig
	Services *ServiceContainer
	Logger   *slog.Logger
}

// BuildHTTPHandler builds the router and wraps it with middleware.
// Order: Recover -> Logging -> Router.
func BuildHTTPHandler(cfg HTTPHandlerConfig) (http.Handler, error) {
	if cfg.Services == nil {
		return nil, errors.New("http: services are required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	router, err := httpx.NewRouter(httpx.RouterServices{
		Guard:      cfg.Services.Guard,
		NewSession: cfg.Services.NewSession,
		Cookies: httpx.CookieConfig{
			Name:   cfg.Config.Session.CookieName,
			Domain: cfg.Config.HTTP.CookieDomain,
			Secure: cfg.Config.HTTP.CookieSecure,
		},
		IsDev:  cfg.Config.IsDev,
		Logger: logger,
	})
	if err != nil {
		return nil, fmt.Errorf("build router: %w", err)
	}

	h := httpx.Logging(logger)(router)
	h = httpx.Recover(logger)(h)
	return h, nil
}

// NewHTTPServer returns a server for handler with the configured timeouts.
func NewHTTPServer(cfg config.HTTPConfig, handler http.Handler) *http.Server {
	addr := cfg.Addr
	// Guard against empty addr to avoid listening on Go default
	if addr == "" {
		addr = ":8080"
	}
	readHeader := cfg.ReadHeaderTimeout
	if readHeader <= 0 {
		readHeader = 5 * time.Second
	}

	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: readHeader,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

// ServeOptions controls Serve.
type ServeOptions struct {
	Server          *http.Server // Required
	Listener        net.Listener // Optional: listens on Server.Addr when nil
	ShutdownTimeout time.Duration
	Logger          *slog.Logger
}

// Serve runs the server until ctx is done, then shuts it down gracefully. It returns nil
// after a clean shutdown and the server's error if it stopped on its own.
func Serve(ctx context.Context, opts ServeOptions) error {
	if opts.Server == nil {
		return errors.New("serve: server is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := opts.ShutdownTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	ln := opts.Listener
	if ln == nil {
		var err error
		ln, err = (&net.ListenConfig{}).Listen(ctx, "tcp", opts.Server.Addr)
		if err != nil {
			return fmt.Errorf("listen on %s: %w", opts.Server.Addr, err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.InfoContext(gctx, "starting HTTP server", "addr", ln.Addr().String())
		if err := opts.Server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down HTTP server")

		// The parent ctx is already done here; shutdown gets its own deadline.
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), timeout)
		defer cancel()
		if err := opts.Server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		logger.Info("HTTP server stopped")
		return nil
	})
	return g.Wait()
}

package httpx

import (
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	domainauth "github.com/revanth-rampal/trail/internal/domain/auth"
	"github.com/revanth-rampal/trail/internal/service"
)

// Logging returns a middleware that logs HTTP requests and responses.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &respWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)
			logger.InfoContext(r.Context(), "http",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.status),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}

type respWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *respWriter) WriteHeader(status int) {
	if !w.wroteHeader {
		w.status = status
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *respWriter) Write(b []byte) (int, error) {
	w.wroteHeader = true
	return w.ResponseWriter.Write(b)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (w *respWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }

// Recover returns a middleware that recovers from panics and logs them.
func Recover(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					if err == http.ErrAbortHandler { //nolint:errorlint // sentinel compared by identity, as net/http does
						panic(err)
					}
					logger.ErrorContext(r.Context(), "panic",
						slog.Any("error", err),
						slog.String("path", r.URL.Path),
						slog.String("method", r.Method),
						slog.String("stack", string(debug.Stack())))
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// SessionLoaderOptions configures LoadSession.
type SessionLoaderOptions struct {
	// NewStore builds a fresh, Loading session store for one request. Required.
	NewStore func() *service.SessionStore
	Cookies  CookieConfig
	Logger   *slog.Logger
}

// LoadSession returns a middleware that gives every request its own session store, restored from
// the session cookie. A stale cookie is cleared. When the session backend cannot be reached the
// store is left Loading so guards answer with the loading interstitial.
func LoadSession(opts SessionLoaderOptions) func(http.Handler) http.Handler {
	if opts.NewStore == nil {
		panic("LoadSession: NewStore is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cookies := opts.Cookies.withDefaults()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			store := opts.NewStore()
			token := cookies.token(r)

			if err := store.Restore(r.Context(), token); err != nil {
				logger.WarnContext(r.Context(), "session restore failed",
					slog.String("path", r.URL.Path),
					slog.Any("error", err),
				)
			} else if token != "" && store.Session().Status == domainauth.StatusAnonymous {
				cookies.clear(w, r)
			}

			next.ServeHTTP(w, r.WithContext(SetSessionStoreInContext(r.Context(), store)))
		})
	}
}

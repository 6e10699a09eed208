package httpx

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"

	"github.com/revanth-rampal/trail"
	"github.com/revanth-rampal/trail/internal/service"
)

// Asset directories, relative to the repository root, read from disk in dev mode.
const (
	TemplateDir = "web/templates"
	StaticDir   = "web/static"
)

// RouterServices holds everything the HTTP router needs.
type RouterServices struct {
	Guard *service.Guard // Required
	// NewSession builds the per-request session store. Required.
	NewSession func() *service.SessionStore
	Cookies    CookieConfig
	// TemplateFS overrides where templates are read from; tests use it.
	TemplateFS fs.FS
	IsDev      bool         // Development mode: templates and static files are read from disk
	Logger     *slog.Logger // Logger for template and HTTP errors (optional)
}

// NewRouter builds the HTTP handler: health, static assets, sign-in and sign-out, the JSON API,
// and the guarded page catch-all.
func NewRouter(services RouterServices) (http.Handler, error) {
	if services.Guard == nil {
		return nil, errors.New("router: Guard is required")
	}
	if services.NewSession == nil {
		return nil, errors.New("router: NewSession is required")
	}
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}

	templateFS, err := templateFS(services)
	if err != nil {
		return nil, err
	}
	renderer, err := NewTemplateRenderer(TemplateRendererConfig{TemplateFS: templateFS, Logger: logger})
	if err != nil {
		return nil, err
	}
	staticFS, err := staticFS(services.IsDev)
	if err != nil {
		return nil, err
	}

	views := &Views{Renderer: renderer, Guard: services.Guard, Logger: logger}
	pages := &PageHandlers{Views: views}
	auth := &AuthHandlers{Views: views, Cookies: services.Cookies}
	api := &APIHandlers{Views: views}

	withSession := LoadSession(SessionLoaderOptions{
		NewStore: services.NewSession,
		Cookies:  services.Cookies,
		Logger:   logger,
	})

	mux := http.NewServeMux()
	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("GET /static/", staticHandler(staticFS))

	mux.Handle("POST /login", withSession(http.HandlerFunc(auth.Login)))
	mux.Handle("POST /logout", withSession(http.HandlerFunc(auth.Logout)))

	mux.Handle("GET /api/session", withSession(http.HandlerFunc(api.Session)))
	mux.Handle("GET /api/access", withSession(http.HandlerFunc(api.Access)))
	mux.Handle("GET /api/navigation", withSession(http.HandlerFunc(api.Navigation)))
	mux.Handle("GET /api/", http.HandlerFunc(api.NotFound))

	// Every other page navigation goes through the route guard.
	mux.Handle("GET /", withSession(http.HandlerFunc(pages.Serve)))

	return mux, nil
}

func templateFS(services RouterServices) (fs.FS, error) {
	if services.TemplateFS != nil {
		return services.TemplateFS, nil
	}
	if services.IsDev {
		return os.DirFS(TemplateDir), nil
	}
	sub, err := fs.Sub(trail.TemplateFS, TemplateDir)
	if err != nil {
		return nil, fmt.Errorf("embedded templates: %w", err)
	}
	return sub, nil
}

func staticFS(isDev bool) (fs.FS, error) {
	if isDev {
		return os.DirFS(StaticDir), nil
	}
	sub, err := fs.Sub(trail.StaticFS, StaticDir)
	if err != nil {
		return nil, fmt.Errorf("embedded static assets: %w", err)
	}
	return sub, nil
}

// staticHandler serves /static/* with a short cache lifetime; asset names are not hashed.
func staticHandler(fsys fs.FS) http.Handler {
	files := http.StripPrefix("/static/", http.FileServer(http.FS(fsys)))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		files.ServeHTTP(w, r)
	})
}

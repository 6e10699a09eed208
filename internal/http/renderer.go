package httpx

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"

	domainauth "github.com/revanth-rampal/trail/internal/domain/auth"
	"github.com/revanth-rampal/trail/internal/domain/route"
)

// Content template names rendered inside the layout.
const (
	ContentLogin   = "login-content"
	ContentPage    = "page-content"
	ContentLoading = "loading-content"
	ContentError   = "error-content"
)

// PageData is the view model shared by every full-page render.
type PageData struct {
	Title string
	Path  string
	// Content names the template rendered inside the layout.
	Content  string
	Identity *domainauth.Identity
	Menu     []route.MenuItem
	Params   map[string]string
	Error    string
	Form     LoginForm
	Roles    []domainauth.Role
	// RefreshAfter, when positive, asks the browser to reload after that many seconds.
	RefreshAfter int
}

// LoginForm echoes the submitted login fields back into the form. The password is never echoed.
type LoginForm struct {
	Email       string
	Role        string
	RedirectURI string
}

// TemplateRenderer renders HTML templates for browser responses.
type TemplateRenderer struct {
	t      *template.Template
	logger *slog.Logger
}

// TemplateRendererConfig holds configuration for creating a TemplateRenderer.
type TemplateRendererConfig struct {
	TemplateFS fs.FS        // Filesystem containing layout.tmpl and pages/ (required)
	Logger     *slog.Logger // Logger for template errors (optional)
}

// NewTemplateRenderer parses the layout and page templates from cfg.TemplateFS.
func NewTemplateRenderer(cfg TemplateRendererConfig) (*TemplateRenderer, error) {
	if cfg.TemplateFS == nil {
		return nil, errors.New("TemplateFS is required")
	}

	r := &TemplateRenderer{logger: cfg.Logger}

	var t *template.Template
	funcs := template.FuncMap{
		// include executes a named template so the layout can pick its content at render time.
		"include": func(name string, data any) (template.HTML, error) {
			var buf bytes.Buffer
			if err := t.ExecuteTemplate(&buf, name, data); err != nil {
				return "", err
			}
			return template.HTML(buf.String()), nil //nolint:gosec // output of html/template is already escaped
		},
	}

	t, err := template.New("root").Funcs(funcs).ParseFS(cfg.TemplateFS, "*.tmpl", "pages/*.tmpl")
	if err != nil {
		if cfg.Logger != nil {
			cfg.Logger.Error("template parsing failed",
				slog.Any("error", err),
				slog.String("phase", "initialization"),
			)
		}
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	for _, name := range []string{"layout", ContentLogin, ContentPage, ContentLoading, ContentError} {
		if t.Lookup(name) == nil {
			return nil, fmt.Errorf("template %q is not defined", name)
		}
	}
	r.t = t
	return r, nil
}

// Render writes the layout around data.Content with the given status code. The page is
// rendered into a buffer first so a template failure never produces a half-written response.
func (r *TemplateRenderer) Render(w http.ResponseWriter, status int, data PageData) error {
	if data.Content == "" {
		data.Content = ContentPage
	}

	var buf bytes.Buffer
	if err := r.t.ExecuteTemplate(&buf, "layout", data); err != nil {
		r.logTemplateError(data.Content, err)
		return err
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		if r.logger != nil {
			r.logger.Error("failed to write rendered template",
				slog.String("template", data.Content),
				slog.Any("error", err),
			)
		}
		return err
	}
	return nil
}

func (r *TemplateRenderer) logTemplateError(templateName string, err error) {
	if r.logger == nil || err == nil {
		return
	}
	r.logger.Error("template execution failed",
		slog.String("template", templateName),
		slog.Any("error", err),
	)
}

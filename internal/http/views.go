package httpx

import (
	"log/slog"
	"net/http"
	"strconv"

	domainauth "github.com/revanth-rampal/trail/internal/domain/auth"
	"github.com/revanth-rampal/trail/internal/domain/route"
	"github.com/revanth-rampal/trail/internal/service"
)

// loginPage is the Page key of the route that renders the sign-in form.
const loginPage = "login"

// Views renders full pages with the session chrome (identity and role menu) filled in.
type Views struct {
	Renderer *TemplateRenderer
	Guard    *service.Guard
	Logger   *slog.Logger
}

func (v *Views) logger() *slog.Logger {
	if v != nil && v.Logger != nil {
		return v.Logger
	}
	return slog.Default()
}

func (v *Views) base(snap domainauth.Snapshot, path, title string) PageData {
	data := PageData{Title: title, Path: route.Normalize(path)}
	if snap.Authenticated() {
		data.Identity = snap.Identity
		data.Menu = route.Menu(v.Guard.Policy(), snap.Identity.Role)
	}
	return data
}

func (v *Views) render(w http.ResponseWriter, r *http.Request, status int, data PageData) {
	if err := v.Renderer.Render(w, status, data); err != nil {
		v.logger().ErrorContext(r.Context(), "render failed",
			slog.String("content", data.Content),
			slog.Any("error", err),
		)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (v *Views) renderLogin(w http.ResponseWriter, r *http.Request, p loginView) {
	data := v.base(p.Snapshot, v.Guard.Policy().LoginPath(), "Sign in")
	data.Content = ContentLogin
	data.Form = p.Form
	data.Error = p.Error
	data.Roles = domainauth.Roles()
	if p.Status == http.StatusServiceUnavailable {
		w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	}
	v.render(w, r, p.Status, data)
}

// loginView groups what the login form needs to render.
type loginView struct {
	Snapshot domainauth.Snapshot
	Form     LoginForm
	Error    string
	Status   int
}

func (v *Views) renderLoading(w http.ResponseWriter, r *http.Request, snap domainauth.Snapshot) {
	data := v.base(snap, r.URL.Path, "Loading")
	data.Content = ContentLoading
	data.RefreshAfter = retryAfter
	if snap.Status == domainauth.StatusLoading && !snap.Pending {
		data.Error = "Your session could not be loaded yet. This page will retry automatically."
	}
	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	v.render(w, r, http.StatusServiceUnavailable, data)
}

func (v *Views) renderNotFound(w http.ResponseWriter, r *http.Request, snap domainauth.Snapshot) {
	data := v.base(snap, r.URL.Path, "Page not found")
	data.Content = ContentError
	data.Error = "The page you are looking for does not exist."
	v.render(w, r, http.StatusNotFound, data)
}

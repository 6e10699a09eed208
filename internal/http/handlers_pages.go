package httpx

import (
	"net/http"

	"github.com/revanth-rampal/trail/internal/domain/route"
)

// PageHandlers serves every page navigation through the route guard.
type PageHandlers struct {
	Views *Views
}

// Serve maps the guard decision for the requested path onto an HTTP response:
// ShowLoading renders the loading interstitial (503), both redirect kinds answer 303, and
// Allow renders the route's page.
func (h *PageHandlers) Serve(w http.ResponseWriter, r *http.Request) {
	store, ok := SessionStoreFromContext(r.Context())
	if !ok {
		h.Views.logger().ErrorContext(r.Context(), "session store missing from request context")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	snap := store.Session()
	guard := h.Views.Guard
	d := guard.Evaluate(r.Context(), snap, r.URL.Path)

	switch d.Kind {
	case route.ShowLoading:
		h.Views.renderLoading(w, r, snap)
	case route.RedirectToLogin:
		var back string
		if !snap.Authenticated() {
			back = r.URL.RequestURI()
		}
		http.Redirect(w, r, loginURL(guard.Policy().LoginPath(), back), http.StatusSeeOther)
	case route.RedirectToLanding:
		http.Redirect(w, r, d.Target, http.StatusSeeOther)
	case route.Allow:
		h.allow(w, r, d)
	default:
		h.Views.renderNotFound(w, r, snap)
	}
}

func (h *PageHandlers) allow(w http.ResponseWriter, r *http.Request, d route.Decision) {
	store, _ := SessionStoreFromContext(r.Context())
	snap := store.Session()

	if d.Route == nil || d.Route.Page == "" {
		h.Views.renderNotFound(w, r, snap)
		return
	}
	// A redirect route resolved to an allowed target: move the browser to the canonical path.
	if m, ok := h.Views.Guard.Policy().Tree().Match(r.URL.Path); ok && m.Route.Redirect != "" {
		http.Redirect(w, r, m.Route.Redirect, http.StatusSeeOther)
		return
	}

	if d.Route.Page == loginPage {
		h.Views.renderLogin(w, r, loginView{
			Snapshot: snap,
			Form:     LoginForm{RedirectURI: safeRedirectPath(r.URL.Query().Get("redirect_uri"))},
			Status:   http.StatusOK,
		})
		return
	}

	data := h.Views.base(snap, r.URL.Path, d.Route.Title)
	data.Content = ContentPage
	data.Params = d.Params
	h.Views.render(w, r, http.StatusOK, data)
}

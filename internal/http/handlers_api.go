package httpx

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	domainauth "github.com/revanth-rampal/trail/internal/domain/auth"
	"github.com/revanth-rampal/trail/internal/domain/route"
	apperrors "github.com/revanth-rampal/trail/internal/errors"
)

// APIHandlers exposes the session, guard decisions and menu as JSON.
type APIHandlers struct {
	Views *Views
}

type sessionResponse struct {
	domainauth.Snapshot
	Landing   string     `json:"landing,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

type accessResponse struct {
	Path          string `json:"path"`
	RequiredGroup string `json:"required_group"`
	route.Decision
	Page  string `json:"page,omitempty"`
	Title string `json:"title,omitempty"`
}

type navigationResponse struct {
	Role    domainauth.Role  `json:"role"`
	Landing string           `json:"landing"`
	Items   []route.MenuItem `json:"items"`
}

// Session returns the request's session snapshot.
// GET /api/session.
func (h *APIHandlers) Session(w http.ResponseWriter, r *http.Request) {
	store, ok := h.store(w, r)
	if !ok {
		return
	}

	snap := store.Session()
	resp := sessionResponse{Snapshot: snap}
	switch snap.Status {
	case domainauth.StatusAuthenticated:
		resp.Landing = h.Views.Guard.Policy().LandingPath(snap.Role())
		if exp := store.ExpiresAt(); !exp.IsZero() {
			resp.ExpiresAt = &exp
		}
	case domainauth.StatusLoading:
		w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	}
	WriteJSON(w, http.StatusOK, resp)
}

// Access evaluates the route guard for a path on behalf of the current session.
// GET /api/access?path=<path>.
func (h *APIHandlers) Access(w http.ResponseWriter, r *http.Request) {
	store, ok := h.store(w, r)
	if !ok {
		return
	}

	path := r.URL.Query().Get("path")
	if path == "" {
		WriteAppError(w, apperrors.ValidationField("path", "path is required"))
		return
	}

	guard := h.Views.Guard
	d := guard.Evaluate(r.Context(), store.Session(), path)
	resp := accessResponse{
		Path:          route.Normalize(path),
		RequiredGroup: guard.Policy().RequiredGroup(path).String(),
		Decision:      d,
	}
	if d.Kind == route.Allow && d.Route != nil {
		resp.Page = d.Route.Page
		resp.Title = d.Route.Title
	}
	WriteJSON(w, http.StatusOK, resp)
}

// Navigation returns the sidebar menu for the signed-in role.
// GET /api/navigation.
func (h *APIHandlers) Navigation(w http.ResponseWriter, r *http.Request) {
	store, ok := h.store(w, r)
	if !ok {
		return
	}

	snap := store.Session()
	switch {
	case snap.Status == domainauth.StatusLoading:
		WriteAppError(w, apperrors.ServiceUnavailable(errors.New("session not loaded")))
		return
	case !snap.Authenticated():
		WriteError(w, ErrorParams{
			Code:    http.StatusUnauthorized,
			ErrCode: "authentication_required",
			Err:     errors.New("authentication required"),
		})
		return
	}

	policy := h.Views.Guard.Policy()
	role := snap.Role()
	WriteJSON(w, http.StatusOK, navigationResponse{
		Role:    role,
		Landing: policy.LandingPath(role),
		Items:   route.Menu(policy, role),
	})
}

// NotFound answers unknown /api/ paths with a JSON 404.
func (h *APIHandlers) NotFound(w http.ResponseWriter, _ *http.Request) {
	WriteError(w, ErrorParams{
		Code:    http.StatusNotFound,
		ErrCode: string(apperrors.ErrCodeNotFound),
		Err:     errors.New("no such endpoint"),
	})
}

func (h *APIHandlers) store(w http.ResponseWriter, r *http.Request) (storeReader, bool) {
	store, ok := SessionStoreFromContext(r.Context())
	if !ok {
		WriteAppError(w, apperrors.Internal("session store missing"))
		return nil, false
	}
	return store, true
}

// storeReader is the read side of a request's session store.
type storeReader interface {
	Session() domainauth.Snapshot
	ExpiresAt() time.Time
}

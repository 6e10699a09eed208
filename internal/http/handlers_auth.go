package httpx

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	domainauth "github.com/revanth-rampal/trail/internal/domain/auth"
	"github.com/revanth-rampal/trail/internal/domain/route"
	apperrors "github.com/revanth-rampal/trail/internal/errors"
)

const (
	unavailableMessage = "The sign-in service is unavailable. Please try again shortly."
	inProgressMessage  = "A sign-in is already in progress. Please wait."
	unexpectedMessage  = "Something went wrong. Please try again."
)

// AuthHandlers provides HTTP handlers for signing in and out.
type AuthHandlers struct {
	Views   *Views
	Cookies CookieConfig
}

// loginRequest is the login payload, accepted as a form or as JSON.
type loginRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	Role        string `json:"role"`
	RedirectURI string `json:"redirect_uri"`
}

type loginResponse struct {
	Identity   domainauth.Identity `json:"identity"`
	RedirectTo string              `json:"redirect_to"`
	ExpiresAt  time.Time           `json:"expires_at"`
}

// Login handles the sign-in form.
// POST /login (email, password, role, redirect_uri).
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	store, ok := SessionStoreFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	req, ok := h.decodeLogin(w, r)
	if !ok {
		return
	}

	cred := domainauth.Credential{
		Identifier: strings.TrimSpace(req.Email),
		Secret:     req.Password,
		Role:       formRole(req.Role),
	}
	id, err := store.Login(r.Context(), cred)
	if err != nil {
		h.loginFailed(w, r, req, err)
		return
	}

	h.cookies().set(w, r, store.Token(), store.ExpiresAt())
	target := h.postLoginTarget(store.Session(), req.RedirectURI)

	h.Views.logger().InfoContext(r.Context(), "signed in",
		slog.String("user_id", id.ID),
		slog.String("role", id.Role.String()),
	)

	if wantsJSON(r) {
		WriteJSON(w, http.StatusOK, loginResponse{Identity: id, RedirectTo: target, ExpiresAt: store.ExpiresAt()})
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// formRole normalizes a submitted role. Unknown values are kept, lowercased, so validation
// reports them against the role field.
func formRole(raw string) domainauth.Role {
	if role, err := domainauth.ParseRole(raw); err == nil {
		return role
	}
	return domainauth.Role(strings.ToLower(strings.TrimSpace(raw)))
}

func (h *AuthHandlers) decodeLogin(w http.ResponseWriter, r *http.Request) (loginRequest, bool) {
	var req loginRequest
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		return req, DecodeJSON(w, r, &req)
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_form", Err: err})
		return req, false
	}
	req.Email = r.PostForm.Get("email")
	req.Password = r.PostForm.Get("password")
	req.Role = r.PostForm.Get("role")
	req.RedirectURI = r.PostForm.Get("redirect_uri")
	return req, true
}

// postLoginTarget honors redirect_uri only when the new session may open it; otherwise the
// user lands on their role's dashboard.
func (h *AuthHandlers) postLoginTarget(snap domainauth.Snapshot, redirectURI string) string {
	policy := h.Views.Guard.Policy()
	landing := policy.LandingPath(snap.Role())

	candidate := safeRedirectPath(redirectURI)
	if candidate == "" {
		return landing
	}
	u, err := url.Parse(candidate)
	if err != nil {
		return landing
	}
	if policy.Decide(snap, u.Path).Kind != route.Allow {
		return landing
	}
	return candidate
}

func (h *AuthHandlers) loginFailed(w http.ResponseWriter, r *http.Request, req loginRequest, err error) {
	status := StatusForError(err)
	logger := h.Views.logger()

	switch {
	case apperrors.IsInvalidCredentials(err), apperrors.IsValidation(err):
		logger.InfoContext(r.Context(), "sign-in rejected", slog.String("reason", string(apperrors.GetCode(err))))
	case status == http.StatusInternalServerError:
		logger.ErrorContext(r.Context(), "sign-in failed", slog.Any("error", err))
	default:
		logger.WarnContext(r.Context(), "sign-in failed", slog.Any("error", err))
	}

	if wantsJSON(r) {
		WriteAppError(w, err)
		return
	}

	store, _ := SessionStoreFromContext(r.Context())
	h.Views.renderLogin(w, r, loginView{
		Snapshot: store.Session(),
		Form: LoginForm{
			Email:       req.Email,
			Role:        req.Role,
			RedirectURI: safeRedirectPath(req.RedirectURI),
		},
		Error:  loginErrorMessage(err, status),
		Status: status,
	})
}

func loginErrorMessage(err error, status int) string {
	var appErr *apperrors.AppError
	switch {
	case apperrors.IsInvalidCredentials(err):
		return apperrors.InvalidCredentialsMessage
	case apperrors.IsValidation(err) && errors.As(err, &appErr):
		return appErr.Message
	case status == http.StatusServiceUnavailable:
		return unavailableMessage
	case apperrors.IsConflict(err):
		return inProgressMessage
	default:
		return unexpectedMessage
	}
}

// Logout handles the sign-out endpoint.
// POST /logout.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	if store, ok := SessionStoreFromContext(r.Context()); ok {
		if err := store.Logout(r.Context()); err != nil {
			h.Views.logger().WarnContext(r.Context(), "logout failed", slog.Any("error", err))
		}
	}
	h.cookies().clear(w, r)

	loginPath := h.Views.Guard.Policy().LoginPath()
	if wantsJSON(r) {
		WriteJSON(w, http.StatusOK, map[string]string{
			"status":      "signed_out",
			"redirect_to": loginPath,
		})
		return
	}
	http.Redirect(w, r, loginPath, http.StatusSeeOther)
}

func (h *AuthHandlers) cookies() CookieConfig { return h.Cookies.withDefaults() }

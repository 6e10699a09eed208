package httpx

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPages_AnonymousRedirectsToLoginWithReturnPath(t *testing.T) {
	f := newRouterFixture(t, nil)

	rec := f.get("/admin_dashboard", nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login?redirect_uri=%2Fadmin_dashboard", rec.Header().Get("Location"))
}

func TestPages_AnonymousPublicPages(t *testing.T) {
	f := newRouterFixture(t, nil)

	rec := f.get("/login?redirect_uri=/feedback", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `name="redirect_uri" value="/feedback"`)
	assert.Contains(t, rec.Body.String(), `<option value="student">`)

	rec = f.get("/badges", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<h1>Badges</h1>")
}

func TestPages_LoginPageDropsOffsiteRedirect(t *testing.T) {
	f := newRouterFixture(t, nil)

	rec := f.get("/login?redirect_uri=https://evil.example/x", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `name="redirect_uri" value=""`)
}

func TestPages_AuthenticatedNavigation(t *testing.T) {
	f := newRouterFixture(t, nil)
	admin := f.login(t, "admin@school.edu", "admin")

	tests := []struct {
		name     string
		path     string
		code     int
		location string
	}{
		{"base path lands on dashboard", "/", http.StatusSeeOther, "/admin_dashboard"},
		{"dashboard alias lands on dashboard", "/dashboard", http.StatusSeeOther, "/admin_dashboard"},
		{"guest only page bounces", "/login", http.StatusSeeOther, "/admin_dashboard"},
		{"unknown path resolves through catch-all", "/no/such/page", http.StatusSeeOther, "/admin_dashboard"},
		{"admin page renders", "/feedback", http.StatusOK, ""},
		{"parametrized page renders", "/homework/7b", http.StatusOK, ""},
		{"parent branch is closed to admin", "/bus-tracking", http.StatusSeeOther, "/login"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.get(tt.path, admin)
			assert.Equal(t, tt.code, rec.Code)
			assert.Equal(t, tt.location, rec.Header().Get("Location"))
		})
	}
}

func TestPages_RendersIdentityMenuAndParams(t *testing.T) {
	f := newRouterFixture(t, nil)
	teacher := f.login(t, "teacher@school.edu", "teacher")

	rec := f.get("/homework/10a", teacher)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<h1>Homework</h1>")
	assert.Contains(t, body, "Mr. David Wilson")
	assert.Contains(t, body, `<dt>classID</dt><dd>10a</dd>`)
	assert.Contains(t, body, `href="/attendance"`)
	assert.NotContains(t, body, `href="/users/teachers"`)
}

func TestPages_WrongRoleCollapsesToLoginThenLanding(t *testing.T) {
	f := newRouterFixture(t, nil)
	parent := f.login(t, "parent@school.edu", "parent")

	rec := f.get("/admin_dashboard", parent)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	rec = f.get("/login", parent)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/parent_dashboard", rec.Header().Get("Location"))
}

func TestPages_SessionBackendDownShowsLoading(t *testing.T) {
	f := newRouterFixture(t, nil)
	admin := f.login(t, "admin@school.edu", "admin")
	f.mr.Close()

	rec := f.get("/admin_dashboard", admin)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "2", rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), "Loading...")
	assert.Contains(t, rec.Body.String(), `http-equiv="refresh"`)

	// Without a cookie there is nothing to restore, so the backend is not needed.
	rec = f.get("/admin_dashboard", nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
}

func TestPages_StaleCookieIsCleared(t *testing.T) {
	f := newRouterFixture(t, nil)

	rec := f.get("/feedback", &http.Cookie{Name: DefaultSessionCookieName, Value: "not-a-session"})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	c := sessionCookie(rec)
	require.NotNil(t, c)
	assert.Negative(t, c.MaxAge)
}

func TestStatic_ServesEmbeddedAssets(t *testing.T) {
	f := newRouterFixture(t, nil)

	rec := f.get("/static/css/app.css", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "public, max-age=3600", rec.Header().Get("Cache-Control"))
}

func TestHealthz(t *testing.T) {
	f := newRouterFixture(t, nil)

	rec := f.get("/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, healthResponse, rec.Body.String())

	rec = f.do(newRequest(http.MethodHead, "/healthz"))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
}

package httpx

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/revanth-rampal/trail/internal/adapters/devauth"
	redisadapter "github.com/revanth-rampal/trail/internal/adapters/redis"
	"github.com/revanth-rampal/trail/internal/domain/route"
	"github.com/revanth-rampal/trail/internal/ports"
	"github.com/revanth-rampal/trail/internal/service"
	"github.com/revanth-rampal/trail/internal/testutil"
)

type routerFixture struct {
	handler http.Handler
	mr      *miniredis.Miniredis
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newRouterFixture wires the router against miniredis and, unless dir is given, the demo
// directory.
func newRouterFixture(t *testing.T, dir ports.Directory) *routerFixture {
	t.Helper()

	client, mr := testutil.SetupMiniRedis(t)
	repo := redisadapter.NewSessionStore(client)

	if dir == nil {
		demo, err := devauth.NewDirectory(devauth.Config{Cost: bcrypt.MinCost})
		require.NoError(t, err)
		dir = demo
	}
	auth := service.NewAuthenticator(service.AuthenticatorOptions{Directory: dir})
	guard := service.NewGuard(service.GuardOptions{Policy: route.MustDefaultPolicy()})

	h, err := NewRouter(RouterServices{
		Guard: guard,
		NewSession: func() *service.SessionStore {
			return service.NewSessionStore(service.SessionStoreOptions{Authenticator: auth, Sessions: repo})
		},
		Logger: discardLogger(),
	})
	require.NoError(t, err)
	return &routerFixture{handler: h, mr: mr}
}

func (f *routerFixture) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func (f *routerFixture) get(path string, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("Accept", "text/html")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	return f.do(req)
}

func (f *routerFixture) postLogin(form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return f.do(req)
}

// login signs in a demo user and returns the session cookie.
func (f *routerFixture) login(t *testing.T, email, role string) *http.Cookie {
	t.Helper()
	rec := f.postLogin(url.Values{
		"email":    {email},
		"password": {devauth.DemoPassword},
		"role":     {role},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
	c := sessionCookie(rec)
	require.NotNil(t, c, "session cookie not set")
	return c
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == DefaultSessionCookieName {
			return c
		}
	}
	return nil
}

func newRequest(method, target string) *http.Request {
	return httptest.NewRequest(method, target, nil)
}

package bootstrap

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/revanth-rampal/trail/config"
	"github.com/revanth-rampal/trail/internal/adapters/devauth"
	redisadapter "github.com/revanth-rampal/trail/internal/adapters/redis"
	"github.com/revanth-rampal/trail/internal/testutil"
)

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	client, _ := testutil.SetupMiniRedis(t)

	dir, err := devauth.NewDirectory(devauth.Config{Cost: bcrypt.MinCost})
	require.NoError(t, err)

	services, err := NewServices(ServiceConfig{
		Directory:  dir,
		Sessions:   redisadapter.NewSessionStore(client),
		SessionTTL: time.Hour,
		Logger:     discardLogger(),
	})
	require.NoError(t, err)

	var cfg config.AppConfig
	cfg.Session.CookieName = "trail_session"
	h, err := BuildHTTPHandler(HTTPHandlerConfig{Config: cfg, Services: services, Logger: discardLogger()})
	require.NoError(t, err)
	return h
}

func TestBuildHTTPHandler_LoginFlow(t *testing.T) {
	h := newTestHandler(t)

	form := url.Values{"email": {"parent@school.edu"}, "password": {devauth.DemoPassword}, "role": {"parent"}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/parent_dashboard", rec.Header().Get("Location"))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "trail_session", cookies[0].Name)

	req = httptest.NewRequest(http.MethodGet, "/bus-tracking", nil)
	req.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/admin_dashboard", nil)
	req.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestBuildHTTPHandler_RequiresServices(t *testing.T) {
	_, err := BuildHTTPHandler(HTTPHandlerConfig{})
	require.Error(t, err)
}

func TestNewHTTPServer_Defaults(t *testing.T) {
	srv := NewHTTPServer(config.HTTPConfig{}, http.NotFoundHandler())
	assert.Equal(t, ":8080", srv.Addr)
	assert.Equal(t, 5*time.Second, srv.ReadHeaderTimeout)
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := NewHTTPServer(config.HTTPConfig{Addr: ln.Addr().String()}, http.HandlerFunc(
		func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) },
	))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Serve(ctx, ServeOptions{Server: srv, Listener: ln, ShutdownTimeout: time.Second, Logger: discardLogger()})
	}()

	resp, err := http.Get("http://" + ln.Addr().String() + "/")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestNewServices_RequiresDirectory(t *testing.T) {
	_, err := NewServices(ServiceConfig{})
	require.Error(t, err)
}

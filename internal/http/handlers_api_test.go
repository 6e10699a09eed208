package httpx

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPI_SessionAnonymous(t *testing.T) {
	f := newRouterFixture(t, nil)

	rec := f.get("/api/session", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"status":"anonymous"}`, rec.Body.String())
}

func TestAPI_SessionAuthenticated(t *testing.T) {
	f := newRouterFixture(t, nil)
	parent := f.login(t, "parent@school.edu", "parent")

	rec := f.get("/api/session", parent)
	require.Equal(t, http.StatusOK, rec.Code)

	var got struct {
		Status   string `json:"status"`
		Landing  string `json:"landing"`
		Identity struct {
			ID    string `json:"id"`
			Phone string `json:"phone"`
		} `json:"identity"`
		ExpiresAt string `json:"expires_at"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "authenticated", got.Status)
	assert.Equal(t, "/parent_dashboard", got.Landing)
	assert.Equal(t, "3", got.Identity.ID)
	assert.Equal(t, "+1-555-0123", got.Identity.Phone)
	assert.NotEmpty(t, got.ExpiresAt)
}

func TestAPI_SessionBackendDown(t *testing.T) {
	f := newRouterFixture(t, nil)
	admin := f.login(t, "admin@school.edu", "admin")
	f.mr.Close()

	rec := f.get("/api/session", admin)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2", rec.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"status":"loading"}`, rec.Body.String())
}

func TestAPI_Access(t *testing.T) {
	f := newRouterFixture(t, nil)
	parent := f.login(t, "parent@school.edu", "parent")

	tests := []struct {
		name string
		path string
		want string
	}{
		{
			"allowed parametrized page",
			"/view_timetable/4",
			`{"path":"/view_timetable/4","required_group":"authenticated","decision":"allow",` +
				`"params":{"childID":"4"},"page":"timetable","title":"Timetable"}`,
		},
		{
			"role set page",
			"/bus-tracking/",
			`{"path":"/bus-tracking","required_group":"roles(parent)","decision":"allow",` +
				`"page":"bus_tracking","title":"Bus Tracking"}`,
		},
		{
			"admin page",
			"/admin_dashboard",
			`{"path":"/admin_dashboard","required_group":"admin","decision":"redirect_to_login","target":"/login"}`,
		},
		{
			"base path",
			"/",
			`{"path":"/","required_group":"authenticated","decision":"redirect_to_landing","target":"/parent_dashboard"}`,
		},
		{
			"unknown path",
			"/nowhere",
			`{"path":"/nowhere","required_group":"admin","decision":"redirect_to_landing","target":"/parent_dashboard"}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.get("/api/access?path="+tt.path, parent)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.JSONEq(t, tt.want, rec.Body.String())
		})
	}
}

func TestAPI_AccessRequiresPath(t *testing.T) {
	f := newRouterFixture(t, nil)

	rec := f.get("/api/access", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"validation","message":"path is required","field":"path"}`, rec.Body.String())
}

func TestAPI_Navigation(t *testing.T) {
	f := newRouterFixture(t, nil)

	rec := f.get("/api/navigation", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	student := f.login(t, "student@school.edu", "student")
	rec = f.get("/api/navigation", student)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"role": "student",
		"landing": "/student_dashboard",
		"items": [
			{"label": "Dashboard", "path": "/dashboard"},
			{"label": "My Attendance", "path": "/attendance"},
			{"label": "Resources", "path": "/resources"}
		]
	}`, rec.Body.String())
}

func TestAPI_UnknownEndpoint(t *testing.T) {
	f := newRouterFixture(t, nil)

	rec := f.get("/api/nope", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"error":"not_found"`)
}

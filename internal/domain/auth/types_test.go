package auth

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		in      string
		want    Role
		wantErr bool
	}{
		{in: "admin", want: RoleAdmin},
		{in: " Teacher ", want: RoleTeacher},
		{in: "PARENT", want: RoleParent},
		{in: "student", want: RoleStudent},
		{in: "mentor", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRole(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRoles_AllValid(t *testing.T) {
	roles := Roles()
	assert.Len(t, roles, 4)
	for _, r := range roles {
		assert.True(t, r.Valid(), r)
	}
	assert.False(t, Role("guest").Valid())
}

func TestSnapshot_Role(t *testing.T) {
	assert.Equal(t, Role(""), Snapshot{Status: StatusLoading}.Role())
	assert.Equal(t, Role(""), Snapshot{Status: StatusAuthenticated}.Role(), "no identity means no role")

	s := Snapshot{Status: StatusAuthenticated, Identity: &Identity{ID: "1", Role: RoleParent}}
	assert.True(t, s.Authenticated())
	assert.Equal(t, RoleParent, s.Role())
}

func TestSnapshot_JSONUsesStatusNames(t *testing.T) {
	b, err := json.Marshal(Snapshot{Status: StatusAnonymous})
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"anonymous"}`, string(b))
}

func TestSession_Expired(t *testing.T) {
	now := time.Now()
	assert.False(t, Session{ExpiresAt: now.Add(time.Minute)}.Expired(now))
	assert.True(t, Session{ExpiresAt: now}.Expired(now))
	assert.False(t, Session{}.Expired(now), "zero expiry never expires")
}

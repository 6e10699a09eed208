package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	domainauth "github.com/revanth-rampal/trail/internal/domain/auth"
	apperrors "github.com/revanth-rampal/trail/internal/errors"
	"github.com/revanth-rampal/trail/internal/mocks"
	authmocks "github.com/revanth-rampal/trail/internal/mocks/auth"
	"github.com/revanth-rampal/trail/internal/observability/statsd"
	"github.com/revanth-rampal/trail/internal/ports"
)

var (
	adminIdentity = domainauth.Identity{
		ID: "1", DisplayName: "Admin User", Email: "admin@school.edu", Role: domainauth.RoleAdmin,
	}
	teacherIdentity = domainauth.Identity{
		ID: "2", DisplayName: "John Smith", Email: "teacher@school.edu", Role: domainauth.RoleTeacher,
	}
)

func newTestDirectory() *authmocks.MockDirectory {
	dir := authmocks.NewMockDirectory()
	dir.AddUser(adminIdentity, "password123")
	dir.AddUser(teacherIdentity, "password123")
	return dir
}

func cred(email, password string, role domainauth.Role) domainauth.Credential {
	return domainauth.Credential{Identifier: email, Secret: password, Role: role}
}

func TestAuthenticator_Success(t *testing.T) {
	rec := &statsd.Recorder{}
	a := NewAuthenticator(AuthenticatorOptions{
		Directory: newTestDirectory(),
		Obs:       Observability{Metrics: rec},
	})

	id, err := a.Authenticate(context.Background(), cred("admin@school.edu", "password123", domainauth.RoleAdmin))
	require.NoError(t, err)
	assert.Equal(t, adminIdentity, id)

	attempts := rec.Find("login.attempt")
	require.Len(t, attempts, 1)
	assert.Equal(t, "success", attempts[0].Tags["result"])
}

func TestAuthenticator_InvalidCredentials(t *testing.T) {
	dir := newTestDirectory()
	a := NewAuthenticator(AuthenticatorOptions{Directory: dir})

	tests := []struct {
		name string
		cred domainauth.Credential
	}{
		{"unknown identifier", cred("nobody@school.edu", "password123", domainauth.RoleAdmin)},
		{"wrong secret", cred("admin@school.edu", "wrong", domainauth.RoleAdmin)},
		{"mismatched role", cred("teacher@school.edu", "password123", domainauth.RoleAdmin)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := a.Authenticate(context.Background(), tt.cred)
			require.Error(t, err)
			assert.True(t, apperrors.IsInvalidCredentials(err), "got %v", err)
			assert.Equal(t, apperrors.InvalidCredentialsMessage, err.Error())
		})
	}
}

func TestAuthenticator_ValidationSkipsDirectory(t *testing.T) {
	dir := newTestDirectory()
	a := NewAuthenticator(AuthenticatorOptions{Directory: dir})

	_, err := a.Authenticate(context.Background(), cred("", "password123", domainauth.RoleAdmin))
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))

	_, err = a.Authenticate(context.Background(), cred("admin@school.edu", "password123", "janitor"))
	require.Error(t, err)
	assert.Equal(t, "role", apperrors.GetField(err))
	assert.Zero(t, dir.Calls())
}

func TestAuthenticator_DirectoryUnavailable(t *testing.T) {
	ctrl := gomock.NewController(t)
	dir := mocks.NewMockDirectory(ctrl)
	boom := errors.New("dial tcp 10.0.0.1:5432: connection refused")
	dir.EXPECT().
		Lookup(gomock.Any(), "admin@school.edu", "password123").
		Return(ports.DirectoryRecord{}, boom)

	a := NewAuthenticator(AuthenticatorOptions{Directory: dir})
	_, err := a.Authenticate(context.Background(), cred("admin@school.edu", "password123", domainauth.RoleAdmin))
	require.Error(t, err)
	assert.True(t, apperrors.IsServiceUnavailable(err))
	assert.ErrorIs(t, err, boom)
}

func TestAuthenticator_Timeout(t *testing.T) {
	ctrl := gomock.NewController(t)
	dir := mocks.NewMockDirectory(ctrl)
	dir.EXPECT().
		Lookup(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _, _ string) (ports.DirectoryRecord, error) {
			<-ctx.Done()
			return ports.DirectoryRecord{}, ctx.Err()
		})

	a := NewAuthenticator(AuthenticatorOptions{
		Directory: dir,
		Config:    AuthenticatorConfig{Timeout: 20 * time.Millisecond},
	})
	_, err := a.Authenticate(context.Background(), cred("admin@school.edu", "password123", domainauth.RoleAdmin))
	require.Error(t, err)
	assert.True(t, apperrors.IsServiceUnavailable(err))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestAuthenticator_VerifiedRecordSkipsHash(t *testing.T) {
	ctrl := gomock.NewController(t)
	dir := mocks.NewMockDirectory(ctrl)
	dir.EXPECT().
		Lookup(gomock.Any(), "teacher@school.edu", "remote-secret").
		Return(ports.DirectoryRecord{Identity: teacherIdentity, Verified: true}, nil).
		Times(2)

	a := NewAuthenticator(AuthenticatorOptions{Directory: dir})
	id, err := a.Authenticate(context.Background(), cred("teacher@school.edu", "remote-secret", domainauth.RoleTeacher))
	require.NoError(t, err)
	assert.Equal(t, teacherIdentity.ID, id.ID)

	_, err = a.Authenticate(context.Background(), cred("teacher@school.edu", "remote-secret", domainauth.RoleParent))
	assert.True(t, apperrors.IsInvalidCredentials(err))
}

func TestAuthenticator_DirectoryRejection(t *testing.T) {
	ctrl := gomock.NewController(t)
	dir := mocks.NewMockDirectory(ctrl)
	dir.EXPECT().
		Lookup(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(ports.DirectoryRecord{}, apperrors.InvalidCredentials())

	a := NewAuthenticator(AuthenticatorOptions{Directory: dir})
	_, err := a.Authenticate(context.Background(), cred("teacher@school.edu", "nope", domainauth.RoleTeacher))
	assert.True(t, apperrors.IsInvalidCredentials(err))
}

func TestNewAuthenticator_RequiresDirectory(t *testing.T) {
	assert.Panics(t, func() { NewAuthenticator(AuthenticatorOptions{}) })
}

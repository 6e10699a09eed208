package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	domainauth "github.com/revanth-rampal/trail/internal/domain/auth"
	"github.com/revanth-rampal/trail/internal/ports"
)

func TestMockDirectory_Lookup(t *testing.T) {
	dir := NewMockDirectory()
	dir.AddUser(domainauth.Identity{ID: "1", Email: "Admin@School.edu", Role: domainauth.RoleAdmin}, "pw")

	rec, err := dir.Lookup(context.Background(), " admin@school.edu ", "")
	require.NoError(t, err)
	assert.Equal(t, domainauth.RoleAdmin, rec.Identity.Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword(rec.PasswordHash, []byte("pw")))

	_, err = dir.Lookup(context.Background(), "nobody@school.edu", "")
	assert.ErrorIs(t, err, ports.ErrUserNotFound)
	assert.Equal(t, 2, dir.Calls())
}

func TestMockDirectory_LookupFunc(t *testing.T) {
	boom := errors.New("boom")
	dir := &MockDirectory{
		LookupFunc: func(context.Context, string, string) (ports.DirectoryRecord, error) {
			return ports.DirectoryRecord{}, boom
		},
	}
	_, err := dir.Lookup(context.Background(), "x", "y")
	assert.ErrorIs(t, err, boom)
}

func TestMemorySessionRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemorySessionRepository()

	require.Error(t, repo.Save(ctx, domainauth.Session{}))
	require.NoError(t, repo.Save(ctx, domainauth.Session{ID: "s1"}))
	assert.Equal(t, 1, repo.Len())

	got, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", got.ID)

	require.NoError(t, repo.Delete(ctx, "s1"))
	_, err = repo.Get(ctx, "s1")
	assert.ErrorIs(t, err, ports.ErrSessionNotFound)

	repo.Err = errors.New("down")
	assert.Error(t, repo.Save(ctx, domainauth.Session{ID: "s2"}))
}

func TestStaticRoleMapper(t *testing.T) {
	m := StaticRoleMapper{Groups: map[string]domainauth.Role{"staff": domainauth.RoleTeacher}}
	r, ok := m.Map([]string{"other", "staff"})
	assert.True(t, ok)
	assert.Equal(t, domainauth.RoleTeacher, r)

	_, ok = m.Map(nil)
	assert.False(t, ok)
}

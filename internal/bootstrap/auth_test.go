package bootstrap

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/revanth-rampal/trail/config"
	"github.com/revanth-rampal/trail/internal/adapters/devauth"
	"github.com/revanth-rampal/trail/internal/data"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestBuildDirectory_Demo(t *testing.T) {
	dir, err := BuildDirectory(context.Background(), DirectoryDeps{
		Config: config.AuthConfig{Directory: config.DirectoryDemo},
		Logger: discardLogger(),
	})
	require.NoError(t, err)

	demo, ok := dir.(*devauth.Directory)
	require.True(t, ok, "got %T", dir)
	assert.Equal(t, len(devauth.DemoUsers()), demo.Len())

	rec, err := dir.Lookup(context.Background(), "ADMIN@school.edu", devauth.DemoPassword)
	require.NoError(t, err)
	assert.Equal(t, "admin@school.edu", rec.Identity.Email)
}

func TestBuildDirectory_Errors(t *testing.T) {
	tests := []struct {
		name string
		deps DirectoryDeps
		want string
	}{
		{
			name: "postgres without database",
			deps: DirectoryDeps{Config: config.AuthConfig{Directory: config.DirectoryPostgres}},
			want: "requires a database connection",
		},
		{
			name: "oidc without discovery url",
			deps: DirectoryDeps{Config: config.AuthConfig{Directory: config.DirectoryOIDC}},
			want: "build oidc directory",
		},
		{
			name: "unknown mode",
			deps: DirectoryDeps{Config: config.AuthConfig{Directory: "ldap"}},
			want: `unknown directory mode "ldap"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.deps.Logger = discardLogger()
			_, err := BuildDirectory(context.Background(), tt.deps)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestBuildDirectory_PostgresUsesRepo(t *testing.T) {
	db := openUnreachableDB(t)
	dir, err := BuildDirectory(context.Background(), DirectoryDeps{
		Config: config.AuthConfig{Directory: config.DirectoryPostgres},
		DB:     db,
		Logger: discardLogger(),
	})
	require.NoError(t, err)
	assert.IsType(t, &data.DirectoryRepo{}, dir)
}

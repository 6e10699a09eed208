package devseed

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/revanth-rampal/trail/internal/adapters/devauth"
	"github.com/revanth-rampal/trail/internal/data"
)

type fakeStore struct {
	users  []data.DirectoryUser
	failOn string
}

func (f *fakeStore) Upsert(_ context.Context, u data.DirectoryUser) error {
	if u.Identity.Email == f.failOn {
		return errors.New("boom")
	}
	f.users = append(f.users, u)
	return nil
}

func quietLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestRun_SeedsDemoUsers(t *testing.T) {
	store := &fakeStore{}
	require.NoError(t, Run(context.Background(), store, Options{Cost: bcrypt.MinCost, Logger: quietLogger()}))

	require.Len(t, store.users, len(devauth.DemoUsers()))
	for _, u := range store.users {
		assert.NoError(t, bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(devauth.DemoPassword)), u.Identity.Email)
	}
}

func TestRun_ContinuesPastFailures(t *testing.T) {
	store := &fakeStore{failOn: "teacher@school.edu"}
	err := Run(context.Background(), store, Options{Cost: bcrypt.MinCost, Logger: quietLogger()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 seed errors")
	assert.Len(t, store.users, len(devauth.DemoUsers())-1)
}

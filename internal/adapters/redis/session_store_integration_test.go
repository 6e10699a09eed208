package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/revanth-rampal/trail/internal/domain/auth"
	"github.com/revanth-rampal/trail/internal/ports"
	"github.com/revanth-rampal/trail/internal/testutil"
)

func TestSessionStore_RealRedisRoundTrip(t *testing.T) {
	client := testutil.SetupTestRedis(t)
	if client == nil {
		return
	}
	ctx := context.Background()
	store := NewSessionStoreWithPrefix(client, "trail:test:session:")

	sess := domainauth.Session{
		ID: "integration-1",
		Identity: domainauth.Identity{
			ID: "2", DisplayName: "John Smith", Email: "teacher@school.edu", Role: domainauth.RoleTeacher,
		},
		ExpiresAt: time.Now().Add(time.Minute),
	}
	require.NoError(t, store.Save(ctx, sess))

	ttl, err := client.TTL(ctx, "trail:test:session:integration-1").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, 50*time.Second)

	got, err := store.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, sess.Identity, got.Identity)

	require.NoError(t, store.Delete(ctx, sess.ID))
	_, err = store.Get(ctx, sess.ID)
	assert.ErrorIs(t, err, ports.ErrSessionNotFound)
}

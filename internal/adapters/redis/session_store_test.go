package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/revanth-rampal/trail/internal/domain/auth"
	"github.com/revanth-rampal/trail/internal/ports"
	"github.com/revanth-rampal/trail/internal/testutil"
)

var testNow = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) (*SessionStore, *miniredis.Miniredis) {
	t.Helper()
	client, mr := testutil.SetupMiniRedis(t)
	store := NewSessionStore(client)
	store.now = func() time.Time { return testNow }
	return store, mr
}

func testSession(id string, ttl time.Duration) domainauth.Session {
	return domainauth.Session{
		ID: id,
		Identity: domainauth.Identity{
			ID:          "3",
			DisplayName: "Sarah Johnson",
			Email:       "parent@school.edu",
			Role:        domainauth.RoleParent,
		},
		ExpiresAt: testNow.Add(ttl),
	}
}

func TestSessionStore_SaveAndGet(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	sess := testSession("sess-1", 30*time.Minute)
	require.NoError(t, store.Save(ctx, sess))

	got, err := store.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, sess.Identity, got.Identity)
	assert.True(t, sess.ExpiresAt.Equal(got.ExpiresAt))

	assert.True(t, mr.Exists(DefaultKeyPrefix+"sess-1"))
	assert.Equal(t, 30*time.Minute, mr.TTL(DefaultKeyPrefix+"sess-1"))
}

func TestSessionStore_GetUnknown(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ports.ErrSessionNotFound)

	_, err = store.Get(context.Background(), "")
	assert.ErrorIs(t, err, ports.ErrSessionNotFound)
}

func TestSessionStore_TTLExpiry(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, testSession("sess-ttl", time.Minute)))
	mr.FastForward(2 * time.Minute)

	_, err := store.Get(ctx, "sess-ttl")
	assert.ErrorIs(t, err, ports.ErrSessionNotFound)
}

func TestSessionStore_GetDropsExpiredRecord(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, testSession("sess-old", time.Hour)))
	store.now = func() time.Time { return testNow.Add(2 * time.Hour) }

	_, err := store.Get(ctx, "sess-old")
	assert.ErrorIs(t, err, ports.ErrSessionNotFound)
	assert.False(t, mr.Exists(DefaultKeyPrefix+"sess-old"))
}

func TestSessionStore_SaveRejects(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.Error(t, store.Save(ctx, testSession("", time.Hour)))
	require.Error(t, store.Save(ctx, testSession("sess-expired", -time.Minute)))
}

func TestSessionStore_Delete(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, testSession("sess-del", time.Hour)))
	require.NoError(t, store.Delete(ctx, "sess-del"))
	assert.False(t, mr.Exists(DefaultKeyPrefix+"sess-del"))

	require.NoError(t, store.Delete(ctx, "sess-del"))
	require.NoError(t, store.Delete(ctx, ""))
}

func TestSessionStore_CustomPrefix(t *testing.T) {
	client, mr := testutil.SetupMiniRedis(t)
	store := NewSessionStoreWithPrefix(client, "school-a:")

	sess := domainauth.Session{
		ID:        "sess-p",
		Identity:  domainauth.Identity{ID: "1", Role: domainauth.RoleAdmin},
		ExpiresAt: time.Now().Add(time.Hour),
	}
	require.NoError(t, store.Save(context.Background(), sess))
	assert.True(t, mr.Exists("school-a:sess-p"))
}

func TestSessionStore_RedisDown(t *testing.T) {
	store, mr := newTestStore(t)
	mr.Close()

	_, err := store.Get(context.Background(), "sess-1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ports.ErrSessionNotFound)
}

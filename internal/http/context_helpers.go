package httpx

import (
	"context"

	"github.com/revanth-rampal/trail/internal/service"
)

// sessionStoreKey is an unexported context key type to avoid collisions across packages.
type sessionStoreKey struct{}

// SetSessionStoreInContext returns a child context that carries the request's session store.
// If store is nil, the original ctx is returned unchanged.
func SetSessionStoreInContext(ctx context.Context, store *service.SessionStore) context.Context {
	if store == nil {
		return ctx
	}
	return context.WithValue(ctx, sessionStoreKey{}, store)
}

// SessionStoreFromContext returns the request's session store and whether one was set.
func SessionStoreFromContext(ctx context.Context) (*service.SessionStore, bool) {
	store, ok := ctx.Value(sessionStoreKey{}).(*service.SessionStore)
	return store, ok && store != nil
}

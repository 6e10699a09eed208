package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	domainauth "github.com/revanth-rampal/trail/internal/domain/auth"
	apperrors "github.com/revanth-rampal/trail/internal/errors"
	"github.com/revanth-rampal/trail/internal/observability/metrics"
	"github.com/revanth-rampal/trail/internal/observability/statsd"
	"github.com/revanth-rampal/trail/internal/ports"
)

// DefaultSessionTTL is the lifetime of a persisted session record.
const DefaultSessionTTL = 8 * time.Hour

var (
	// ErrLoginInProgress rejects a Login issued while another one has not returned.
	ErrLoginInProgress = apperrors.Conflict("a sign-in is already in progress")

	// ErrLoginSuperseded is returned by a Login that completed after a Logout on the same store.
	ErrLoginSuperseded = apperrors.Wrap(context.Canceled, apperrors.ErrCodeCanceled, "sign-in superseded by sign-out")
)

// CredentialChecker is the part of Authenticator the session store depends on.
type CredentialChecker interface {
	Authenticate(ctx context.Context, cred domainauth.Credential) (domainauth.Identity, error)
}

// SessionSource is the read side of a session store, as consumed by guards and UI surfaces.
type SessionSource interface {
	Session() domainauth.Snapshot
	Subscribe(fn func(domainauth.Snapshot)) (unsubscribe func())
}

// SessionStoreConfig tunes a SessionStore. Zero values pick defaults.
type SessionStoreConfig struct {
	TTL   time.Duration
	Now   func() time.Time
	NewID func() string
}

// SessionStoreOptions groups dependencies for SessionStore.
type SessionStoreOptions struct {
	Authenticator CredentialChecker       // Required
	Sessions      ports.SessionRepository // Optional: persists records across requests
	Config        SessionStoreConfig
	Obs           Observability
}

type subscriber struct {
	id uint64
	fn func(domainauth.Snapshot)
}

// SessionStore is the single source of truth for who is logged in. It starts in Loading and
// leaves it exactly once, through Restore, Login, or Logout. It is safe for concurrent use.
//
// Subscribers are notified with the new snapshot after every transition, in commit order.
// The goroutine that commits a transition delivers it before returning unless another
// goroutine is already delivering, in which case that goroutine delivers it. Subscribers may
// call back into the store.
type SessionStore struct {
	auth    CredentialChecker
	repo    ports.SessionRepository
	ttl     time.Duration
	now     func() time.Time
	newID   func() string
	logger  *slog.Logger
	metrics statsd.Sink

	mu        sync.Mutex
	snap      domainauth.Snapshot
	token     string
	expiresAt time.Time
	epoch     uint64
	subs      []subscriber
	nextSub   uint64
	queue     []domainauth.Snapshot
	draining  bool

	// unverified is a token Restore could not check; Logout still deletes its record.
	unverified string
}

// NewSessionStore constructs a store in the Loading state. It panics if Authenticator is nil.
func NewSessionStore(opts SessionStoreOptions) *SessionStore {
	if opts.Authenticator == nil {
		panic("NewSessionStore: Authenticator is required")
	}
	cfg := opts.Config
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultSessionTTL
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.NewID == nil {
		cfg.NewID = generateSessionID
	}
	return &SessionStore{
		auth:    opts.Authenticator,
		repo:    opts.Sessions,
		ttl:     cfg.TTL,
		now:     cfg.Now,
		newID:   cfg.NewID,
		logger:  opts.Obs.logger("session_store"),
		metrics: opts.Obs.Metrics,
		snap:    domainauth.Snapshot{Status: domainauth.StatusLoading},
	}
}

// Session returns a consistent copy of the current state.
func (s *SessionStore) Session() domainauth.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Token returns the id of the persisted session record, or "" when there is none.
func (s *SessionStore) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// ExpiresAt returns the expiry of the persisted session record.
func (s *SessionStore) ExpiresAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expiresAt
}

// Subscribe registers fn for every future transition. The returned func unregisters it and
// is safe to call more than once.
func (s *SessionStore) Subscribe(fn func(domainauth.Snapshot)) func() {
	s.mu.Lock()
	s.nextSub++
	id := s.nextSub
	s.subs = append(s.subs, subscriber{id: id, fn: fn})
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			s.subs = slices.DeleteFunc(s.subs, func(sub subscriber) bool { return sub.id == id })
		})
	}
}

// Restore resolves the Loading state from a stored session token. A missing, unknown, or
// expired token yields Anonymous. If the repository cannot be reached the store stays in
// Loading and a ServiceUnavailable error is returned. Once resolved, Restore is a no-op.
func (s *SessionStore) Restore(ctx context.Context, token string) error {
	s.mu.Lock()
	resolved := s.snap.Status != domainauth.StatusLoading
	s.mu.Unlock()
	if resolved {
		return nil
	}

	if token == "" || s.repo == nil {
		s.resolveAnonymous("restore")
		return nil
	}

	sess, err := s.repo.Get(ctx, token)
	switch {
	case errors.Is(err, ports.ErrSessionNotFound):
		s.resolveAnonymous("restore")
		return nil
	case err != nil:
		s.logger.WarnContext(ctx, "session lookup failed", "error", err)
		s.mu.Lock()
		s.unverified = token
		s.mu.Unlock()
		return apperrors.ServiceUnavailable(fmt.Errorf("get session: %w", err))
	}

	if sess.Expired(s.now()) || !sess.Identity.Role.Valid() {
		if delErr := s.repo.Delete(ctx, token); delErr != nil {
			s.logger.WarnContext(ctx, "failed to delete stale session", "error", delErr)
		}
		s.resolveAnonymous("restore")
		return nil
	}

	s.mu.Lock()
	if s.snap.Status != domainauth.StatusLoading {
		s.mu.Unlock()
		return nil
	}
	id := sess.Identity
	s.unverified = ""
	s.snap.Status = domainauth.StatusAuthenticated
	s.snap.Identity = &id
	s.token = sess.ID
	s.expiresAt = sess.ExpiresAt
	s.publishLocked(domainauth.StatusLoading, "restore")
	s.mu.Unlock()
	s.drain()
	return nil
}

func (s *SessionStore) resolveAnonymous(cause string) {
	s.mu.Lock()
	if s.snap.Status != domainauth.StatusLoading {
		s.mu.Unlock()
		return
	}
	s.snap.Status = domainauth.StatusAnonymous
	s.publishLocked(domainauth.StatusLoading, cause)
	s.mu.Unlock()
	s.drain()
}

// Login authenticates cred and, on success, makes the store Authenticated and persists a
// session record. On a credential or validation failure the status is unchanged except that
// Loading becomes Anonymous. On ServiceUnavailable the store keeps its pre-call state.
// While the call is in flight the snapshot reports Pending; a concurrent Login is rejected
// with ErrLoginInProgress.
func (s *SessionStore) Login(ctx context.Context, cred domainauth.Credential) (domainauth.Identity, error) {
	s.mu.Lock()
	if s.snap.Pending {
		s.mu.Unlock()
		return domainauth.Identity{}, ErrLoginInProgress
	}
	epoch := s.epoch
	s.snap.Pending = true
	s.publishLocked(s.snap.Status, "login")
	s.mu.Unlock()
	s.drain()

	id, err := s.auth.Authenticate(ctx, cred)

	var sess domainauth.Session
	if err == nil {
		sess = domainauth.Session{ID: s.newID(), Identity: id, ExpiresAt: s.now().Add(s.ttl)}
		if s.repo != nil {
			if saveErr := s.repo.Save(ctx, sess); saveErr != nil {
				s.logger.WarnContext(ctx, "failed to persist session", "error", saveErr)
				err = apperrors.ServiceUnavailable(fmt.Errorf("save session: %w", saveErr))
			}
		}
	}

	s.mu.Lock()
	from := s.snap.Status
	// After a Logout, Pending was already cleared and may now belong to a newer Login.
	if epoch == s.epoch {
		s.snap.Pending = false
	}
	var staleToken string
	switch {
	case err == nil && epoch != s.epoch:
		staleToken = sess.ID
		err = ErrLoginSuperseded
	case err == nil:
		staleToken = s.token
		if staleToken == "" {
			staleToken = s.unverified
		}
		s.unverified = ""
		identity := id
		s.snap.Status = domainauth.StatusAuthenticated
		s.snap.Identity = &identity
		s.token = sess.ID
		s.expiresAt = sess.ExpiresAt
	case keepsPreCallState(err):
	default:
		if s.snap.Status == domainauth.StatusLoading {
			s.snap.Status = domainauth.StatusAnonymous
		}
	}
	s.publishLocked(from, "login")
	s.mu.Unlock()
	s.drain()

	s.deleteRecord(ctx, staleToken)
	if err != nil {
		return domainauth.Identity{}, err
	}
	return id, nil
}

func keepsPreCallState(err error) bool {
	return apperrors.IsServiceUnavailable(err) || apperrors.IsTimeout(err) || apperrors.IsCanceled(err)
}

// Logout clears the identity and makes the store Anonymous, then deletes the persisted record.
// Local state is always cleared; a repository failure is logged and returned. A Login still in
// flight when Logout is called completes with ErrLoginSuperseded and no longer holds Pending.
func (s *SessionStore) Logout(ctx context.Context) error {
	s.mu.Lock()
	from := s.snap.Status
	wasPending := s.snap.Pending
	token := s.token
	if token == "" {
		token = s.unverified
	}
	s.epoch++
	s.token = ""
	s.unverified = ""
	s.expiresAt = time.Time{}
	s.snap.Identity = nil
	s.snap.Pending = false
	s.snap.Status = domainauth.StatusAnonymous
	if from != domainauth.StatusAnonymous || wasPending {
		s.publishLocked(from, "logout")
	}
	s.mu.Unlock()
	s.drain()

	if token == "" || s.repo == nil {
		return nil
	}
	if err := s.repo.Delete(ctx, token); err != nil {
		s.logger.WarnContext(ctx, "failed to delete session", "error", err)
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *SessionStore) deleteRecord(ctx context.Context, token string) {
	if token == "" || s.repo == nil {
		return
	}
	if err := s.repo.Delete(ctx, token); err != nil {
		s.logger.WarnContext(ctx, "failed to delete session", "error", err)
	}
}

func (s *SessionStore) snapshotLocked() domainauth.Snapshot {
	out := s.snap
	if s.snap.Identity != nil {
		id := *s.snap.Identity
		out.Identity = &id
	}
	return out
}

// publishLocked queues the current snapshot for delivery. s.mu must be held.
func (s *SessionStore) publishLocked(from domainauth.Status, cause string) {
	snap := s.snapshotLocked()
	s.queue = append(s.queue, snap)
	if from != snap.Status {
		metrics.EmitSessionTransition(s.metrics, metrics.SessionTransition{
			From:  from.String(),
			To:    snap.Status.String(),
			Cause: cause,
		})
	}
}

// drain delivers queued snapshots unless another goroutine is already doing so.
func (s *SessionStore) drain() {
	s.mu.Lock()
	if s.draining {
		s.mu.Unlock()
		return
	}
	s.draining = true
	for len(s.queue) > 0 {
		snap := s.queue[0]
		s.queue = s.queue[1:]
		subs := slices.Clone(s.subs)
		s.mu.Unlock()
		for _, sub := range subs {
			sub.fn(snap)
		}
		s.mu.Lock()
	}
	s.draining = false
	s.mu.Unlock()
}

// generateSessionID creates a random, URL-safe session id.
func generateSessionID() string {
	return uuid.NewString()
}

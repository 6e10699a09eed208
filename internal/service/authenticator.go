// Package service holds the authentication core: the authenticator, the per-client session
// store, and the route guard.
package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	domainauth "github.com/revanth-rampal/trail/internal/domain/auth"
	apperrors "github.com/revanth-rampal/trail/internal/errors"
	"github.com/revanth-rampal/trail/internal/observability/metrics"
	"github.com/revanth-rampal/trail/internal/observability/statsd"
	"github.com/revanth-rampal/trail/internal/ports"
	"github.com/revanth-rampal/trail/internal/validation"
)

// AuthenticatorConfig tunes an Authenticator.
type AuthenticatorConfig struct {
	// Timeout bounds each directory call; zero means the caller's context alone applies.
	Timeout   time.Duration
	Validator *validation.Validator
}

// AuthenticatorOptions groups dependencies for Authenticator.
type AuthenticatorOptions struct {
	Directory ports.Directory // Required
	Config    AuthenticatorConfig
	Obs       Observability
}

// Authenticator checks credentials against a user directory.
type Authenticator struct {
	dir      ports.Directory
	timeout  time.Duration
	validate *validation.Validator
	logger   *slog.Logger
	metrics  statsd.Sink
}

// NewAuthenticator constructs an Authenticator. It panics if Directory is nil.
func NewAuthenticator(opts AuthenticatorOptions) *Authenticator {
	if opts.Directory == nil {
		panic("NewAuthenticator: Directory is required")
	}
	v := opts.Config.Validator
	if v == nil {
		v = validation.New()
	}
	return &Authenticator{
		dir:      opts.Directory,
		timeout:  opts.Config.Timeout,
		validate: v,
		logger:   opts.Obs.logger("authenticator"),
		metrics:  opts.Obs.Metrics,
	}
}

// dummyHash is compared against when the identifier is unknown so both paths cost one bcrypt.
var dummyHash = sync.OnceValue(func() []byte {
	h, _ := bcrypt.GenerateFromPassword([]byte("trail-dummy-secret"), bcrypt.DefaultCost)
	return h
})

// Authenticate resolves cred to an identity. Checks run in order: lookup, secret, role.
// Every credential failure is InvalidCredentials; directory failures are ServiceUnavailable.
// Malformed input returns a validation error before the directory is contacted.
func (a *Authenticator) Authenticate(ctx context.Context, cred domainauth.Credential) (domainauth.Identity, error) {
	start := time.Now()
	id, err := a.authenticate(ctx, cred)

	result := metrics.ResultSuccess
	if err != nil {
		result = metrics.ResultError
	}
	metrics.EmitLogin(a.metrics, metrics.LoginMetric{
		Role:     string(cred.Role),
		Result:   result,
		Duration: time.Since(start),
		Err:      err,
	})
	return id, err
}

func (a *Authenticator) authenticate(ctx context.Context, cred domainauth.Credential) (domainauth.Identity, error) {
	if err := a.validate.Struct(cred); err != nil {
		return domainauth.Identity{}, err
	}

	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	rec, err := a.dir.Lookup(ctx, cred.Identifier, cred.Secret)
	switch {
	case err == nil:
	case errors.Is(err, ports.ErrUserNotFound):
		_ = bcrypt.CompareHashAndPassword(dummyHash(), []byte(cred.Secret))
		a.logger.InfoContext(ctx, "login rejected", "reason", "unknown_identifier", "role", cred.Role)
		return domainauth.Identity{}, apperrors.InvalidCredentials()
	case apperrors.IsInvalidCredentials(err):
		a.logger.InfoContext(ctx, "login rejected", "reason", "directory_rejected", "role", cred.Role)
		return domainauth.Identity{}, err
	default:
		a.logger.WarnContext(ctx, "directory lookup failed", "error", err)
		return domainauth.Identity{}, apperrors.ServiceUnavailable(err)
	}

	if !rec.Verified {
		if cmpErr := bcrypt.CompareHashAndPassword(rec.PasswordHash, []byte(cred.Secret)); cmpErr != nil {
			if !errors.Is(cmpErr, bcrypt.ErrMismatchedHashAndPassword) {
				a.logger.WarnContext(ctx, "stored password hash unusable", "user_id", rec.Identity.ID, "error", cmpErr)
			}
			a.logger.InfoContext(ctx, "login rejected", "reason", "secret_mismatch", "role", cred.Role)
			return domainauth.Identity{}, apperrors.InvalidCredentials()
		}
	}

	if rec.Identity.Role != cred.Role {
		a.logger.InfoContext(ctx, "login rejected", "reason", "role_mismatch",
			"role", cred.Role, "user_id", rec.Identity.ID)
		return domainauth.Identity{}, apperrors.InvalidCredentials()
	}

	a.logger.InfoContext(ctx, "login accepted", "user_id", rec.Identity.ID, "role", rec.Identity.Role)
	return rec.Identity, nil
}

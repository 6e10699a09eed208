package ports

// Package ports defines interfaces (hexagonal ports) for auth-related behavior.
// Implementations live in internal/adapters and internal/data; orchestration in internal/service.

import (
	"context"
	"errors"

	domainauth "github.com/revanth-rampal/trail/internal/domain/auth"
)

var (
	// ErrUserNotFound is returned by a Directory when no record matches the identifier.
	ErrUserNotFound = errors.New("user not found")

	// ErrDirectoryUnavailable wraps transport failures talking to the directory.
	ErrDirectoryUnavailable = errors.New("directory unavailable")

	// ErrSessionNotFound is returned by a SessionRepository for unknown or expired ids.
	ErrSessionNotFound = errors.New("session not found")
)

// DirectoryRecord is a user as stored in the directory. PasswordHash is a bcrypt hash;
// directories that verify secrets themselves set Verified instead.
type DirectoryRecord struct {
	Identity     domainauth.Identity
	PasswordHash []byte
	// Verified is set by directories that checked the secret during Lookup.
	Verified bool
}

// Directory resolves users by identifier. secret is only consumed by directories that
// verify it remotely; local directories return the stored hash and ignore it.
type Directory interface {
	Lookup(ctx context.Context, identifier, secret string) (DirectoryRecord, error)
}

// SessionRepository persists and retrieves server-side session records.
type SessionRepository interface {
	Save(ctx context.Context, sess domainauth.Session) error
	Get(ctx context.Context, id string) (domainauth.Session, error)
	Delete(ctx context.Context, id string) error
}

// RoleMapper maps provider groups to an application role. ok is false when no group maps.
type RoleMapper interface {
	Map(groups []string) (role domainauth.Role, ok bool)
}

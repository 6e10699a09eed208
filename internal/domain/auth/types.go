package auth

// Package auth contains domain-level types for authentication and sessions.
// It is pure and free of framework/adapter concerns.

import (
	"fmt"
	"strings"
	"time"
)

// Role represents a dashboard role. The set is closed; use ParseRole for untrusted input.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleTeacher Role = "teacher"
	RoleParent  Role = "parent"
	RoleStudent Role = "student"
)

// Roles returns every valid role in display order.
func Roles() []Role {
	return []Role{RoleAdmin, RoleTeacher, RoleParent, RoleStudent}
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleTeacher, RoleParent, RoleStudent:
		return true
	default:
		return false
	}
}

func (r Role) String() string { return string(r) }

// ParseRole converts a case-insensitive role name into a Role.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// Status is the authentication state of a session store.
type Status int

const (
	// StatusLoading is the one-shot startup state before the stored credential is checked.
	StatusLoading Status = iota
	StatusAnonymous
	StatusAuthenticated
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusAnonymous:
		return "anonymous"
	case StatusAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler so snapshots serialize as names.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Identity is the authenticated principal as resolved from the user directory.
type Identity struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	Role        Role   `json:"role"`

	// Optional profile fields carried by the directory record.
	Avatar   string `json:"avatar,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Class    string `json:"class,omitempty"`
	Section  string `json:"section,omitempty"`
	ParentID string `json:"parent_id,omitempty"`
}

// Credential is what a user submits on the login form.
type Credential struct {
	Identifier string `json:"email"    validate:"required,notblank,max=254"`
	Secret     string `json:"password" validate:"required,max=256"`
	Role       Role   `json:"role"     validate:"required,role"`
}

// Snapshot is a consistent, read-only copy of a session store's state.
// Identity is non-nil iff Status is StatusAuthenticated.
type Snapshot struct {
	Status   Status    `json:"status"`
	Identity *Identity `json:"identity,omitempty"`
	// Pending is true while a login call is in flight.
	Pending bool `json:"pending,omitempty"`
}

// Authenticated reports whether the snapshot carries an identity.
func (s Snapshot) Authenticated() bool {
	return s.Status == StatusAuthenticated && s.Identity != nil
}

// Role returns the identity role, or "" when not authenticated.
func (s Snapshot) Role() Role {
	if !s.Authenticated() {
		return ""
	}
	return s.Identity.Role
}

// Session is the server-side record persisted for an authenticated user.
// ID is an opaque session identifier stored in the browser cookie.
type Session struct {
	ID        string    `json:"id"`
	Identity  Identity  `json:"identity"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session is past its expiry at time now.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

package auth

// Package auth contains simple hand-written test doubles for auth ports.
// These are lightweight and suitable for unit tests without codegen.

import (
	"context"
	"errors"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"

	domainauth "github.com/revanth-rampal/trail/internal/domain/auth"
	"github.com/revanth-rampal/trail/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.Directory         = (*MockDirectory)(nil)
	_ ports.SessionRepository = (*MemorySessionRepository)(nil)
	_ ports.RoleMapper        = (*StaticRoleMapper)(nil)
)

// MockDirectory is an in-memory directory keyed by lower-cased identifier.
// LookupFunc, when set, replaces the map lookup entirely.
type MockDirectory struct {
	LookupFunc func(ctx context.Context, identifier, secret string) (ports.DirectoryRecord, error)

	mu      sync.Mutex
	records map[string]ports.DirectoryRecord
	calls   int
}

// NewMockDirectory creates an empty MockDirectory.
func NewMockDirectory() *MockDirectory {
	return &MockDirectory{records: make(map[string]ports.DirectoryRecord)}
}

// AddUser stores id with a bcrypt hash of password. MinCost keeps tests fast.
func (m *MockDirectory) AddUser(id domainauth.Identity, password string) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.records == nil {
		m.records = make(map[string]ports.DirectoryRecord)
	}
	m.records[strings.ToLower(id.Email)] = ports.DirectoryRecord{Identity: id, PasswordHash: hash}
}

func (m *MockDirectory) Lookup(ctx context.Context, identifier, secret string) (ports.DirectoryRecord, error) {
	m.mu.Lock()
	m.calls++
	fn := m.LookupFunc
	rec, ok := m.records[strings.ToLower(strings.TrimSpace(identifier))]
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, identifier, secret)
	}
	if !ok {
		return ports.DirectoryRecord{}, ports.ErrUserNotFound
	}
	return rec, nil
}

// Calls returns how many times Lookup was invoked.
func (m *MockDirectory) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// MemorySessionRepository is an in-memory session repository for unit tests.
// Err, when set, is returned from every call.
type MemorySessionRepository struct {
	Err error

	mu       sync.Mutex
	sessions map[string]domainauth.Session
}

// NewMemorySessionRepository creates a new in-memory session repository.
func NewMemorySessionRepository() *MemorySessionRepository {
	return &MemorySessionRepository{sessions: make(map[string]domainauth.Session)}
}

func (m *MemorySessionRepository) Save(_ context.Context, sess domainauth.Session) error {
	if m.Err != nil {
		return m.Err
	}
	if sess.ID == "" {
		return errors.New("session ID cannot be empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sessions == nil {
		m.sessions = make(map[string]domainauth.Session)
	}
	m.sessions[sess.ID] = sess
	return nil
}

func (m *MemorySessionRepository) Get(_ context.Context, id string) (domainauth.Session, error) {
	if m.Err != nil {
		return domainauth.Session{}, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[id]
	if !ok || id == "" {
		return domainauth.Session{}, ports.ErrSessionNotFound
	}
	return sess, nil
}

func (m *MemorySessionRepository) Delete(_ context.Context, id string) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// Len reports how many sessions are stored.
func (m *MemorySessionRepository) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// StaticRoleMapper maps groups by exact name.
type StaticRoleMapper struct {
	Groups map[string]domainauth.Role
}

func (m StaticRoleMapper) Map(groups []string) (domainauth.Role, bool) {
	for _, g := range groups {
		if r, ok := m.Groups[g]; ok {
			return r, true
		}
	}
	return "", false
}

package devauth

// Package devauth provides an in-memory user directory for local development and demos.

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	domainauth "github.com/revanth-rampal/trail/internal/domain/auth"
	"github.com/revanth-rampal/trail/internal/ports"
)

// DemoPassword is the shared password of every demo user.
const DemoPassword = "password123"

// User is a directory entry with its plaintext password, hashed at construction.
type User struct {
	Identity domainauth.Identity
	Password string
}

// DemoUsers returns one account per role.
func DemoUsers() []User {
	return []User{
		{Identity: domainauth.Identity{
			ID:          "1",
			DisplayName: "Dr. Sarah Johnson",
			Email:       "admin@school.edu",
			Role:        domainauth.RoleAdmin,
		}, Password: DemoPassword},
		{Identity: domainauth.Identity{
			ID:          "2",
			DisplayName: "Mr. David Wilson",
			Email:       "teacher@school.edu",
			Role:        domainauth.RoleTeacher,
			Class:       "10",
			Section:     "A",
		}, Password: DemoPassword},
		{Identity: domainauth.Identity{
			ID:          "3",
			DisplayName: "Mrs. Emily Brown",
			Email:       "parent@school.edu",
			Role:        domainauth.RoleParent,
			Phone:       "+1-555-0123",
		}, Password: DemoPassword},
		{Identity: domainauth.Identity{
			ID:          "4",
			DisplayName: "Alex Johnson",
			Email:       "student@school.edu",
			Role:        domainauth.RoleStudent,
			Class:       "10",
			Section:     "A",
			ParentID:    "3",
		}, Password: DemoPassword},
	}
}

// Config controls the dev directory. Users defaults to DemoUsers; Cost defaults to
// bcrypt.DefaultCost.
type Config struct {
	Users []User
	Cost  int
}

// Directory implements ports.Directory from a fixed user list.
// It is read-only after construction and safe for concurrent use.
type Directory struct {
	records map[string]ports.DirectoryRecord
}

var _ ports.Directory = (*Directory)(nil)

// NewDirectory hashes every user's password and indexes users by lower-cased email.
func NewDirectory(cfg Config) (*Directory, error) {
	users := cfg.Users
	if users == nil {
		users = DemoUsers()
	}
	cost := cfg.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}

	records := make(map[string]ports.DirectoryRecord, len(users))
	for _, u := range users {
		key := normalizeEmail(u.Identity.Email)
		if key == "" {
			return nil, errors.New("dev auth: user email is required")
		}
		if !u.Identity.Role.Valid() {
			return nil, fmt.Errorf("dev auth: user %s has invalid role %q", key, u.Identity.Role)
		}
		if _, dup := records[key]; dup {
			return nil, fmt.Errorf("dev auth: duplicate user %s", key)
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), cost)
		if err != nil {
			return nil, fmt.Errorf("dev auth: hash password for %s: %w", key, err)
		}
		records[key] = ports.DirectoryRecord{Identity: u.Identity, PasswordHash: hash}
	}
	return &Directory{records: records}, nil
}

// Lookup returns the record for identifier or ports.ErrUserNotFound.
func (d *Directory) Lookup(ctx context.Context, identifier, _ string) (ports.DirectoryRecord, error) {
	if err := ctx.Err(); err != nil {
		return ports.DirectoryRecord{}, err
	}
	rec, ok := d.records[normalizeEmail(identifier)]
	if !ok {
		return ports.DirectoryRecord{}, ports.ErrUserNotFound
	}
	return rec, nil
}

// Len returns the number of users in the directory.
func (d *Directory) Len() int { return len(d.records) }

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

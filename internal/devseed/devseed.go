// Package devseed loads the demo accounts into the Postgres user directory.
package devseed

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/revanth-rampal/trail/internal/adapters/devauth"
	"github.com/revanth-rampal/trail/internal/data"
)

// UserStore is the part of data.DirectoryRepo seeding writes through.
type UserStore interface {
	Upsert(ctx context.Context, u data.DirectoryUser) error
}

// Options configures a seeding run. Users defaults to devauth.DemoUsers and Cost to
// bcrypt.DefaultCost.
type Options struct {
	Users  []devauth.User
	Cost   int
	Logger *slog.Logger
}

// Run upserts every user, hashing passwords on the way. It keeps going after a failed user
// and reports the number of failures at the end.
func Run(ctx context.Context, store UserStore, opts Options) error {
	users := opts.Users
	if users == nil {
		users = devauth.DemoUsers()
	}
	cost := opts.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	failures := 0
	for _, u := range users {
		if err := seedUser(ctx, store, u, cost); err != nil {
			logger.ErrorContext(ctx, "failed to seed user", "email", u.Identity.Email, "error", err)
			failures++
			continue
		}
		logger.InfoContext(ctx, "seeded user", "email", u.Identity.Email, "role", u.Identity.Role)
	}
	if failures > 0 {
		return fmt.Errorf("%d seed errors; check logs", failures)
	}
	return nil
}

func seedUser(ctx context.Context, store UserStore, u devauth.User, cost int) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return store.Upsert(ctx, data.DirectoryUser{Identity: u.Identity, PasswordHash: hash})
}

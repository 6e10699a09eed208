// Package data implements persistence for trail on PostgreSQL.
package data

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/revanth-rampal/trail/internal/data/pgxutil"
	domainauth "github.com/revanth-rampal/trail/internal/domain/auth"
	apperrors "github.com/revanth-rampal/trail/internal/errors"
	"github.com/revanth-rampal/trail/internal/ports"
)

// DirectoryUser is a row of the directory_users table.
type DirectoryUser struct {
	Identity     domainauth.Identity
	PasswordHash []byte
	Disabled     bool
}

// DirectoryRepo stores dashboard users in Postgres and serves them as a ports.Directory.
type DirectoryRepo struct {
	DB  *sql.DB
	now func() time.Time
}

var _ ports.Directory = (*DirectoryRepo)(nil)

// NewDirectoryRepo creates a DirectoryRepo.
func NewDirectoryRepo(db *sql.DB) *DirectoryRepo {
	return &DirectoryRepo{DB: db, now: time.Now}
}

const directoryColumns = `id, email, display_name, role, password_hash, avatar_url, phone,
	class_name, section, parent_id, disabled`

type directoryRow struct {
	ID           string  `db:"id"`
	Email        string  `db:"email"`
	DisplayName  string  `db:"display_name"`
	Role         string  `db:"role"`
	PasswordHash string  `db:"password_hash"`
	AvatarURL    string  `db:"avatar_url"`
	Phone        string  `db:"phone"`
	ClassName    string  `db:"class_name"`
	Section      string  `db:"section"`
	ParentID     *string `db:"parent_id"`
	Disabled     bool    `db:"disabled"`
}

func (r directoryRow) toUser() DirectoryUser {
	u := DirectoryUser{
		Identity: domainauth.Identity{
			ID:          r.ID,
			DisplayName: r.DisplayName,
			Email:       r.Email,
			Role:        domainauth.Role(r.Role),
			Avatar:      r.AvatarURL,
			Phone:       r.Phone,
			Class:       r.ClassName,
			Section:     r.Section,
		},
		PasswordHash: []byte(r.PasswordHash),
		Disabled:     r.Disabled,
	}
	if r.ParentID != nil {
		u.Identity.ParentID = *r.ParentID
	}
	return u
}

// Lookup resolves an enabled user by email. Unknown and disabled users yield
// ports.ErrUserNotFound; database failures wrap ports.ErrDirectoryUnavailable.
func (r *DirectoryRepo) Lookup(ctx context.Context, identifier, _ string) (ports.DirectoryRecord, error) {
	u, err := r.GetByEmail(ctx, identifier)
	switch {
	case apperrors.IsNotFound(err):
		return ports.DirectoryRecord{}, ports.ErrUserNotFound
	case err != nil:
		return ports.DirectoryRecord{}, fmt.Errorf("%w: %w", ports.ErrDirectoryUnavailable, err)
	case u.Disabled:
		return ports.DirectoryRecord{}, ports.ErrUserNotFound
	}
	return ports.DirectoryRecord{Identity: u.Identity, PasswordHash: u.PasswordHash}, nil
}

// GetByEmail returns the user with the given email, matched case-insensitively.
func (r *DirectoryRepo) GetByEmail(ctx context.Context, email string) (DirectoryUser, error) {
	var row directoryRow
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx,
			`SELECT `+directoryColumns+` FROM directory_users WHERE email = $1`,
			normalizeEmail(email),
		)
		if err != nil {
			return err
		}
		row, err = pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[directoryRow])
		return err
	})
	if err != nil {
		return DirectoryUser{}, apperrors.MapDBError(err)
	}
	return row.toUser(), nil
}

// List returns all users ordered by role then email.
func (r *DirectoryRepo) List(ctx context.Context) ([]DirectoryUser, error) {
	var rowsOut []directoryRow
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx,
			`SELECT `+directoryColumns+` FROM directory_users ORDER BY role, email`)
		if err != nil {
			return err
		}
		rowsOut, err = pgx.CollectRows(rows, pgx.RowToStructByName[directoryRow])
		return err
	})
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	out := make([]DirectoryUser, 0, len(rowsOut))
	for _, row := range rowsOut {
		out = append(out, row.toUser())
	}
	return out, nil
}

// Upsert inserts u or replaces the row with the same id.
func (r *DirectoryRepo) Upsert(ctx context.Context, u DirectoryUser) error {
	if err := validateUser(u); err != nil {
		return err
	}
	id := u.Identity
	var parentID *string
	if id.ParentID != "" {
		parentID = &id.ParentID
	}

	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		_, err := conn.Exec(ctx, `
			INSERT INTO directory_users (
				id, email, display_name, role, password_hash, avatar_url, phone,
				class_name, section, parent_id, disabled, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			ON CONFLICT (id) DO UPDATE SET
				email = EXCLUDED.email,
				display_name = EXCLUDED.display_name,
				role = EXCLUDED.role,
				password_hash = EXCLUDED.password_hash,
				avatar_url = EXCLUDED.avatar_url,
				phone = EXCLUDED.phone,
				class_name = EXCLUDED.class_name,
				section = EXCLUDED.section,
				parent_id = EXCLUDED.parent_id,
				disabled = EXCLUDED.disabled,
				updated_at = EXCLUDED.updated_at`,
			id.ID, normalizeEmail(id.Email), strings.TrimSpace(id.DisplayName), string(id.Role),
			string(u.PasswordHash), id.Avatar, id.Phone, id.Class, id.Section, parentID,
			u.Disabled, r.now().UTC(),
		)
		return err
	})
	return apperrors.MapDBError(err)
}

// Delete removes the user with id. Deleting an unknown id returns NotFound.
func (r *DirectoryRepo) Delete(ctx context.Context, id string) error {
	var affected int64
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		tag, err := conn.Exec(ctx, `DELETE FROM directory_users WHERE id = $1`, id)
		affected = tag.RowsAffected()
		return err
	})
	if err != nil {
		return apperrors.MapDBError(err)
	}
	if affected == 0 {
		return apperrors.NotFound("user not found")
	}
	return nil
}

func validateUser(u DirectoryUser) error {
	switch {
	case strings.TrimSpace(u.Identity.ID) == "":
		return apperrors.ValidationField("id", "id is required")
	case normalizeEmail(u.Identity.Email) == "":
		return apperrors.ValidationField("email", "email is required")
	case strings.TrimSpace(u.Identity.DisplayName) == "":
		return apperrors.ValidationField("display_name", "display name is required")
	case !u.Identity.Role.Valid():
		return apperrors.ValidationField("role", fmt.Sprintf("unknown role %q", u.Identity.Role))
	case len(u.PasswordHash) == 0:
		return apperrors.ValidationField("password_hash", "password hash is required")
	}
	return nil
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

package main

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"

	"github.com/revanth-rampal/trail/internal/bootstrap"
	"github.com/revanth-rampal/trail/internal/data"
	"github.com/revanth-rampal/trail/internal/devseed"
	domainauth "github.com/revanth-rampal/trail/internal/domain/auth"
	"github.com/revanth-rampal/trail/internal/migrate"
)

type migrateOptions struct {
	Timeout time.Duration
	Status  bool
}

type seedOptions struct {
	Timeout     time.Duration
	AllowRemote bool
}

type hashOptions struct {
	Cost int
}

type addUserOptions struct {
	Timeout     time.Duration
	AllowRemote bool
	Cost        int
	Disabled    bool
	Identity    domainauth.Identity
}

type deleteUserOptions struct {
	Timeout     time.Duration
	AllowRemote bool
	ID          string
}

func runHashPassword(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("hash-password", flag.ContinueOnError)
	fs.SetOutput(cmdCtx.Stderr)
	opts := hashOptions{}
	fs.IntVar(&opts.Cost, "cost", bcrypt.DefaultCost, "bcrypt cost")
	if err := fs.Parse(args); err != nil {
		return err
	}

	password, err := readPassword(cmdCtx, "Password: ")
	if err != nil {
		return err
	}
	hash, err := hashPassword(password, opts.Cost)
	if err != nil {
		return err
	}
	return writef(cmdCtx.Stdout, "%s\n", hash)
}

func hashPassword(password string, cost int) ([]byte, error) {
	if password == "" {
		return nil, errors.New("password must not be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	return hash, nil
}

// readPassword reads without echo from a terminal, or one line from piped input.
func readPassword(cmdCtx *commandContext, prompt string) (string, error) {
	if cmdCtx.Stdin == nil {
		return "", errors.New("no input available for password")
	}
	fd := int(cmdCtx.Stdin.Fd()) //nolint:gosec // file descriptors fit in int
	if term.IsTerminal(fd) {
		if err := writef(cmdCtx.Stderr, "%s", prompt); err != nil {
			return "", err
		}
		raw, err := term.ReadPassword(fd)
		if werr := writef(cmdCtx.Stderr, "\n"); werr != nil && err == nil {
			err = werr
		}
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(raw), nil
	}

	line, err := bufio.NewReader(cmdCtx.Stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func runMigrations(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	fs.SetOutput(cmdCtx.Stderr)
	opts := migrateOptions{}
	fs.DurationVar(&opts.Timeout, "timeout", defaultDBTimeout, "Maximum duration to wait for migrations to complete")
	fs.BoolVar(&opts.Status, "status", false, "Print applied and pending migrations instead of applying them")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if opts.Timeout <= 0 {
		return errors.New("--timeout must be greater than zero")
	}

	return withDatabase(cmdCtx, opts.Timeout, func(ctx context.Context, db *sql.DB) error {
		m := migrate.New(db, cmdCtx.Logger)
		if opts.Status {
			statuses, err := m.Status(ctx)
			if err != nil {
				return fmt.Errorf("migration status: %w", err)
			}
			return printMigrationStatus(cmdCtx.Stdout, statuses)
		}

		applied, err := m.Up(ctx)
		if err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
		cmdCtx.Logger.InfoContext(ctx, "migrations completed successfully", "applied", applied)
		return nil
	})
}

func printMigrationStatus(w io.Writer, statuses []migrate.Status) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if err := writef(tw, "VERSION\tAPPLIED AT\n"); err != nil {
		return err
	}
	for _, s := range statuses {
		applied := "pending"
		if s.AppliedAt != nil {
			applied = s.AppliedAt.UTC().Format(time.RFC3339)
		}
		if err := writef(tw, "%s\t%s\n", s.Version, applied); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func runSeedDirectory(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("seed-directory", flag.ContinueOnError)
	fs.SetOutput(cmdCtx.Stderr)
	opts := seedOptions{}
	fs.DurationVar(&opts.Timeout, "timeout", defaultDBTimeout, "Maximum duration for migrations and seeding")
	fs.BoolVar(&opts.AllowRemote, "allow-remote", false, "Allow seeding a database host that does not look local")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := guardRemoteHost(cmdCtx, opts.AllowRemote, "overwrite the demo accounts"); err != nil {
		return err
	}

	return withDatabase(cmdCtx, opts.Timeout, func(ctx context.Context, db *sql.DB) error {
		if err := bootstrap.RunMigrations(ctx, db, cmdCtx.Logger); err != nil {
			return err
		}
		return devseed.Run(ctx, data.NewDirectoryRepo(db), devseed.Options{Logger: cmdCtx.Logger})
	})
}

func runListUsers(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("list-users", flag.ContinueOnError)
	fs.SetOutput(cmdCtx.Stderr)
	var timeout time.Duration
	fs.DurationVar(&timeout, "timeout", 30*time.Second, "Maximum duration for the query")
	if err := fs.Parse(args); err != nil {
		return err
	}

	return withDatabase(cmdCtx, timeout, func(ctx context.Context, db *sql.DB) error {
		users, err := data.NewDirectoryRepo(db).List(ctx)
		if err != nil {
			return fmt.Errorf("list users: %w", err)
		}
		return printUsers(cmdCtx.Stdout, users)
	})
}

func printUsers(w io.Writer, users []data.DirectoryUser) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if err := writef(tw, "ID\tEMAIL\tNAME\tROLE\tSTATUS\n"); err != nil {
		return err
	}
	for _, u := range users {
		status := "active"
		if u.Disabled {
			status = "disabled"
		}
		id := u.Identity
		if err := writef(tw, "%s\t%s\t%s\t%s\t%s\n", id.ID, id.Email, id.DisplayName, id.Role, status); err != nil {
			return err
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	return writef(w, "\n%d user(s)\n", len(users))
}

func runAddUser(cmdCtx *commandContext, args []string) error {
	opts, err := parseAddUserFlags(args, cmdCtx.Stderr)
	if err != nil {
		return err
	}
	if err = guardRemoteHost(cmdCtx, opts.AllowRemote, "create or replace a user"); err != nil {
		return err
	}

	password, err := readPassword(cmdCtx, fmt.Sprintf("Password for %s: ", opts.Identity.Email))
	if err != nil {
		return err
	}
	hash, err := hashPassword(password, opts.Cost)
	if err != nil {
		return err
	}

	return withDatabase(cmdCtx, opts.Timeout, func(ctx context.Context, db *sql.DB) error {
		u := data.DirectoryUser{Identity: opts.Identity, PasswordHash: hash, Disabled: opts.Disabled}
		if err := data.NewDirectoryRepo(db).Upsert(ctx, u); err != nil {
			return fmt.Errorf("save user: %w", err)
		}
		cmdCtx.Logger.InfoContext(ctx, "user saved", "id", u.Identity.ID, "email", u.Identity.Email, "role", u.Identity.Role)
		return writef(cmdCtx.Stdout, "%s\n", u.Identity.ID)
	})
}

func parseAddUserFlags(args []string, out io.Writer) (addUserOptions, error) {
	fs := flag.NewFlagSet("add-user", flag.ContinueOnError)
	fs.SetOutput(out)

	opts := addUserOptions{}
	id := &opts.Identity
	var role string
	fs.StringVar(&id.ID, "id", "", "User id (default: a new UUID)")
	fs.StringVar(&id.Email, "email", "", "Sign-in email (required)")
	fs.StringVar(&id.DisplayName, "name", "", "Display name (required)")
	fs.StringVar(&role, "role", "", "One of admin, teacher, parent, student (required)")
	fs.StringVar(&id.Phone, "phone", "", "Phone number")
	fs.StringVar(&id.Class, "class", "", "Class, for teachers and students")
	fs.StringVar(&id.Section, "section", "", "Section, for teachers and students")
	fs.StringVar(&id.ParentID, "parent-id", "", "Id of the parent account, for students")
	fs.BoolVar(&opts.Disabled, "disabled", false, "Create the account disabled")
	fs.IntVar(&opts.Cost, "cost", bcrypt.DefaultCost, "bcrypt cost")
	fs.DurationVar(&opts.Timeout, "timeout", 30*time.Second, "Maximum duration for the write")
	fs.BoolVar(&opts.AllowRemote, "allow-remote", false, "Allow writing to a database host that does not look local")
	if err := fs.Parse(args); err != nil {
		return addUserOptions{}, err
	}

	if strings.TrimSpace(id.Email) == "" {
		return addUserOptions{}, errors.New("--email is required")
	}
	if strings.TrimSpace(id.DisplayName) == "" {
		return addUserOptions{}, errors.New("--name is required")
	}
	r, err := domainauth.ParseRole(role)
	if err != nil {
		return addUserOptions{}, fmt.Errorf("--role: %w", err)
	}
	id.Role = r
	if id.ID == "" {
		id.ID = uuid.NewString()
	}
	return opts, nil
}

func runDeleteUser(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("delete-user", flag.ContinueOnError)
	fs.SetOutput(cmdCtx.Stderr)
	opts := deleteUserOptions{}
	fs.StringVar(&opts.ID, "id", "", "Id of the user to remove (required)")
	fs.DurationVar(&opts.Timeout, "timeout", 30*time.Second, "Maximum duration for the delete")
	fs.BoolVar(&opts.AllowRemote, "allow-remote", false, "Allow writing to a database host that does not look local")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(opts.ID) == "" {
		return errors.New("--id is required")
	}
	if err := guardRemoteHost(cmdCtx, opts.AllowRemote, "delete a user"); err != nil {
		return err
	}

	return withDatabase(cmdCtx, opts.Timeout, func(ctx context.Context, db *sql.DB) error {
		if err := data.NewDirectoryRepo(db).Delete(ctx, opts.ID); err != nil {
			return fmt.Errorf("delete user %s: %w", opts.ID, err)
		}
		cmdCtx.Logger.InfoContext(ctx, "user deleted", "id", opts.ID)
		return nil
	})
}

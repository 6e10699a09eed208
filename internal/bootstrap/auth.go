package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/revanth-rampal/trail/config"
	"github.com/revanth-rampal/trail/internal/adapters/authroles"
	"github.com/revanth-rampal/trail/internal/adapters/devauth"
	"github.com/revanth-rampal/trail/internal/adapters/oidc"
	"github.com/revanth-rampal/trail/internal/data"
	"github.com/revanth-rampal/trail/internal/ports"
)

// DirectoryDeps groups what BuildDirectory may need, depending on the configured mode.
type DirectoryDeps struct {
	Config config.AuthConfig
	DB     *sql.DB // Required for the postgres directory
	Logger *slog.Logger
}

// BuildDirectory selects the user directory backing sign-in.
//
//nolint:ireturn // the concrete directory depends on AUTH_DIRECTORY.
func BuildDirectory(ctx context.Context, deps DirectoryDeps) (ports.Directory, error) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	switch deps.Config.Directory {
	case config.DirectoryDemo, "":
		dir, err := devauth.NewDirectory(devauth.Config{})
		if err != nil {
			return nil, fmt.Errorf("build demo directory: %w", err)
		}
		logger.WarnContext(ctx, "using built-in demo accounts; do not use in production", "users", dir.Len())
		return dir, nil

	case config.DirectoryPostgres:
		if deps.DB == nil {
			return nil, errors.New("postgres directory requires a database connection")
		}
		logger.InfoContext(ctx, "using postgres directory")
		return data.NewDirectoryRepo(deps.DB), nil

	case config.DirectoryOIDC:
		oc := deps.Config.OIDC
		rg := deps.Config.RoleGroups
		provider, err := oidc.NewProvider(ctx, oidc.ProviderConfig{
			ClientID:     oc.ClientID,
			ClientSecret: oc.ClientSecret,
			Scope:        oc.Scope,
			DiscoveryURL: oc.DiscoveryURL,
			RoleClaim:    oc.RoleClaim,
			Roles: authroles.StaticRoleMapper{
				AdminGroup:   rg.Admin,
				TeacherGroup: rg.Teacher,
				ParentGroup:  rg.Parent,
				StudentGroup: rg.Student,
			},
		})
		if err != nil {
			return nil, fmt.Errorf("build oidc directory: %w", err)
		}
		logger.InfoContext(ctx, "using oidc directory", "discovery_url", oc.DiscoveryURL)
		return provider, nil

	default:
		return nil, fmt.Errorf("unknown directory mode %q", deps.Config.Directory)
	}
}

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DirectoryMode selects where user records come from.
type DirectoryMode string

const (
	// DirectoryDemo serves the four built-in demo accounts from memory.
	DirectoryDemo DirectoryMode = "demo"
	// DirectoryPostgres reads the directory_users table.
	DirectoryPostgres DirectoryMode = "postgres"
	// DirectoryOIDC checks passwords against an OpenID Connect provider.
	DirectoryOIDC DirectoryMode = "oidc"
)

// UnmarshalText implements encoding.TextUnmarshaler for DirectoryMode.
func (d *DirectoryMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch DirectoryMode(v) {
	case DirectoryDemo, DirectoryPostgres, DirectoryOIDC:
		*d = DirectoryMode(v)
		return nil
	default:
		return fmt.Errorf("invalid DirectoryMode: %q (valid options: demo, postgres, oidc)", v)
	}
}

// OIDCConfig contains settings for the OIDC directory.
type OIDCConfig struct {
	ClientID     string `env:"CLIENT_ID"     envDefault:"trail"`
	ClientSecret string `env:"CLIENT_SECRET"`
	Scope        string `env:"SCOPE"         envDefault:"openid profile email"`
	DiscoveryURL string `env:"DISCOVERY_URL"`
	// RoleClaim is a JMESPath expression selecting group names from the ID token.
	RoleClaim string `env:"ROLE_CLAIM" envDefault:"groups"`
}

// RoleGroupsConfig maps provider group names to dashboard roles.
type RoleGroupsConfig struct {
	Admin   string `env:"ADMIN"   envDefault:"admin"`
	Teacher string `env:"TEACHER" envDefault:"teacher"`
	Parent  string `env:"PARENT"  envDefault:"parent"`
	Student string `env:"STUDENT" envDefault:"student"`
}

// AuthConfig groups all authentication-related configuration.
type AuthConfig struct {
	// Directory determines which user directory backs sign-in.
	Directory DirectoryMode `env:"AUTH_DIRECTORY" envDefault:"demo"`

	// Timeout bounds a single directory lookup.
	Timeout time.Duration `env:"AUTH_TIMEOUT" envDefault:"10s"`

	// OIDC configuration (used when Directory=oidc).
	OIDC OIDCConfig `envPrefix:"OIDC_"`

	// RoleGroups is consulted when Directory=oidc.
	RoleGroups RoleGroupsConfig `envPrefix:"ROLE_GROUP_"`
}

// Sanitize trims whitespace and restores defaults for empty values.
func (a *AuthConfig) Sanitize() {
	if a.Directory == "" {
		a.Directory = DirectoryDemo
	}
	if a.Timeout <= 0 {
		a.Timeout = 10 * time.Second
	}
	a.OIDC.DiscoveryURL = strings.TrimSpace(a.OIDC.DiscoveryURL)
	if a.OIDC.RoleClaim = strings.TrimSpace(a.OIDC.RoleClaim); a.OIDC.RoleClaim == "" {
		a.OIDC.RoleClaim = "groups"
	}
}

// Validate checks that the selected directory has what it needs.
func (a *AuthConfig) Validate() error {
	if a.Directory != DirectoryOIDC {
		return nil
	}
	var errs []error
	if a.OIDC.DiscoveryURL == "" {
		errs = append(errs, errors.New("OIDC_DISCOVERY_URL is required when AUTH_DIRECTORY=oidc"))
	}
	if a.OIDC.ClientID == "" {
		errs = append(errs, errors.New("OIDC_CLIENT_ID is required when AUTH_DIRECTORY=oidc"))
	}
	g := a.RoleGroups
	if g.Admin == "" && g.Teacher == "" && g.Parent == "" && g.Student == "" {
		errs = append(errs, errors.New("at least one ROLE_GROUP_* mapping is required when AUTH_DIRECTORY=oidc"))
	}
	return errors.Join(errs...)
}

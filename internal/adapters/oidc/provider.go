package oidc

// Package oidc provides a user directory backed by an OpenID Connect provider. Secrets are
// checked with the resource-owner password grant and the role is read from ID token claims.

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	"github.com/jmespath-community/go-jmespath"
	"golang.org/x/oauth2"

	domainauth "github.com/revanth-rampal/trail/internal/domain/auth"
	apperrors "github.com/revanth-rampal/trail/internal/errors"
	"github.com/revanth-rampal/trail/internal/ports"
)

// DefaultRoleClaim selects the group list from ID token claims.
const DefaultRoleClaim = "groups"

// Provider implements ports.Directory against an OIDC provider.
type Provider struct {
	config     *oauth2.Config
	httpClient *http.Client
	roleClaim  string
	roles      ports.RoleMapper

	// go-oidc provider and verifier
	oidcProvider *gooidc.Provider
	verifier     *gooidc.IDTokenVerifier
}

var _ ports.Directory = (*Provider)(nil)

// ProviderConfig holds configuration for the OIDC directory.
type ProviderConfig struct {
	ClientID     string
	ClientSecret string
	Scope        string
	DiscoveryURL string
	// RoleClaim is a JMESPath expression evaluated against the ID token claims. It must yield
	// a string or a list of strings, which are passed to Roles.
	RoleClaim  string
	Roles      ports.RoleMapper
	HTTPClient *http.Client // Optional, defaults to a client with a 30s timeout
}

// NewProvider discovers the provider's endpoints and constructs the directory.
func NewProvider(ctx context.Context, config ProviderConfig) (*Provider, error) {
	if config.ClientID == "" {
		return nil, errors.New("client ID is required")
	}
	if config.DiscoveryURL == "" {
		return nil, errors.New("discovery URL is required")
	}
	if config.Roles == nil {
		return nil, errors.New("role mapper is required")
	}
	roleClaim := config.RoleClaim
	if roleClaim == "" {
		roleClaim = DefaultRoleClaim
	}
	if _, err := jmespath.Compile(roleClaim); err != nil {
		return nil, fmt.Errorf("invalid role claim expression %q: %w", roleClaim, err)
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	// Single discovery fetch
	dctx := gooidc.ClientContext(ctx, httpClient)
	issuer := strings.TrimSuffix(config.DiscoveryURL, "/")
	issuer = strings.TrimSuffix(issuer, "/.well-known/openid-configuration")
	op, err := gooidc.NewProvider(dctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("oidc new provider: %w", err)
	}

	scopes := strings.Fields(config.Scope)
	if !slices.Contains(scopes, gooidc.ScopeOpenID) {
		scopes = append([]string{gooidc.ScopeOpenID}, scopes...)
	}

	return &Provider{
		config: &oauth2.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			Scopes:       scopes,
			Endpoint:     op.Endpoint(),
		},
		httpClient:   httpClient,
		roleClaim:    roleClaim,
		roles:        config.Roles,
		oidcProvider: op,
		verifier:     op.Verifier(&gooidc.Config{ClientID: config.ClientID}),
	}, nil
}

// Lookup exchanges identifier and secret for tokens. A rejected grant is reported as
// InvalidCredentials; transport and provider failures wrap ports.ErrDirectoryUnavailable.
// The returned record is marked Verified.
func (p *Provider) Lookup(ctx context.Context, identifier, secret string) (ports.DirectoryRecord, error) {
	ctx = gooidc.ClientContext(ctx, p.httpClient)

	token, err := p.config.PasswordCredentialsToken(ctx, identifier, secret)
	if err != nil {
		if isGrantRejected(err) {
			return ports.DirectoryRecord{}, apperrors.InvalidCredentials()
		}
		return ports.DirectoryRecord{}, fmt.Errorf("%w: password grant: %w", ports.ErrDirectoryUnavailable, err)
	}

	claims, err := p.verifiedClaims(ctx, token)
	if err != nil {
		return ports.DirectoryRecord{}, fmt.Errorf("%w: %w", ports.ErrDirectoryUnavailable, err)
	}

	groups, err := p.extractGroups(claims.raw)
	if err != nil {
		return ports.DirectoryRecord{}, fmt.Errorf("%w: %w", ports.ErrDirectoryUnavailable, err)
	}
	role, ok := p.roles.Map(groups)
	if !ok {
		return ports.DirectoryRecord{}, apperrors.InvalidCredentials()
	}

	fields := claims.fields
	if fields.email == "" {
		if fillErr := p.fillFromUserInfo(ctx, token, &fields); fillErr != nil {
			return ports.DirectoryRecord{}, fmt.Errorf("%w: get user info: %w", ports.ErrDirectoryUnavailable, fillErr)
		}
	}

	return ports.DirectoryRecord{
		Identity: domainauth.Identity{
			ID:          fields.userID,
			DisplayName: firstNonEmpty(fields.name, strings.TrimSpace(fields.givenName+" "+fields.familyName), fields.email),
			Email:       fields.email,
			Role:        role,
			Avatar:      fields.picture,
		},
		Verified: true,
	}, nil
}

// isGrantRejected reports whether the token endpoint refused the grant itself rather than
// failing to answer.
func isGrantRejected(err error) bool {
	var re *oauth2.RetrieveError
	if !errors.As(err, &re) || re.Response == nil {
		return false
	}
	if re.ErrorCode == "invalid_grant" {
		return true
	}
	return re.Response.StatusCode == http.StatusBadRequest || re.Response.StatusCode == http.StatusUnauthorized
}

// idClaims is the standard OIDC claim shape we read identity fields from.
type idClaims struct {
	Sub               string `json:"sub"`
	Email             string `json:"email"`
	Name              string `json:"name"`
	GivenName         string `json:"given_name"`
	FamilyName        string `json:"family_name"`
	PreferredUsername string `json:"preferred_username"`
	Picture           string `json:"picture"`
}

type idFields struct {
	userID     string
	email      string
	name       string
	givenName  string
	familyName string
	picture    string
}

type verified struct {
	fields idFields
	raw    map[string]any
}

func (p *Provider) verifiedClaims(ctx context.Context, tok *oauth2.Token) (verified, error) {
	var out verified
	rawID, err := getIDTokenFromToken(tok)
	if err != nil {
		return out, err
	}
	idTok, err := p.verifier.Verify(ctx, rawID)
	if err != nil {
		return out, fmt.Errorf("verify id_token: %w", err)
	}
	var claims idClaims
	if claimsErr := idTok.Claims(&claims); claimsErr != nil {
		return out, fmt.Errorf("parse id_token claims: %w", claimsErr)
	}
	if claimsErr := idTok.Claims(&out.raw); claimsErr != nil {
		return out, fmt.Errorf("parse id_token claims: %w", claimsErr)
	}
	out.fields = mapIDTokenClaims(claims)
	return out, nil
}

// mapIDTokenClaims maps raw id token claims into idFields using precedence rules.
func mapIDTokenClaims(c idClaims) idFields {
	return idFields{
		userID:     firstNonEmpty(c.Sub, c.PreferredUsername),
		email:      c.Email,
		name:       c.Name,
		givenName:  c.GivenName,
		familyName: c.FamilyName,
		picture:    c.Picture,
	}
}

func (p *Provider) fillFromUserInfo(ctx context.Context, tok *oauth2.Token, f *idFields) error {
	ui, err := p.oidcProvider.UserInfo(ctx, oauth2.StaticTokenSource(tok))
	if err != nil {
		return fmt.Errorf("fetch user info: %w", err)
	}
	var claims idClaims
	if claimsErr := ui.Claims(&claims); claimsErr != nil {
		return fmt.Errorf("decode user info: %w", claimsErr)
	}
	fillFromUserInfoClaims(f, claims)
	return nil
}

// fillFromUserInfoClaims fills missing fields from a UserInfo payload.
func fillFromUserInfoClaims(f *idFields, c idClaims) {
	from := mapIDTokenClaims(c)
	if f.userID == "" {
		f.userID = from.userID
	}
	if f.email == "" {
		f.email = from.email
	}
	if f.name == "" {
		f.name = from.name
	}
	if f.givenName == "" {
		f.givenName = from.givenName
	}
	if f.familyName == "" {
		f.familyName = from.familyName
	}
	if f.picture == "" {
		f.picture = from.picture
	}
}

// extractGroups evaluates the role claim expression and normalizes the result to strings.
func (p *Provider) extractGroups(claims map[string]any) ([]string, error) {
	v, err := jmespath.Search(p.roleClaim, claims)
	if err != nil {
		return nil, fmt.Errorf("evaluate role claim: %w", err)
	}
	switch t := v.(type) {
	case nil:
		return nil, nil
	case string:
		return []string{t}, nil
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("role claim %q yielded %T, want string or list", p.roleClaim, v)
	}
}

// firstNonEmpty returns the first non-empty string from vals, or empty string if none.
func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// getIDTokenFromToken extracts the id_token from oauth2.Token.
func getIDTokenFromToken(tok *oauth2.Token) (string, error) {
	if tok == nil {
		return "", errors.New("nil token")
	}
	raw := tok.Extra("id_token")
	s, ok := raw.(string)
	if !ok || s == "" {
		return "", errors.New("missing id_token in token response")
	}
	return s, nil
}

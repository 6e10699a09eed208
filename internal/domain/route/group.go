// Package route declares the dashboard route tree as data and the role policy evaluated over it.
// It is pure: no I/O, no logging, safe to share by reference once built.
package route

import (
	"slices"
	"strings"

	domainauth "github.com/revanth-rampal/trail/internal/domain/auth"
)

// GroupKind is the category of access a route requires.
// The zero value means "undeclared" and fails validation.
type GroupKind int

const (
	GroupPublic GroupKind = iota + 1
	GroupAnyAuthenticated
	GroupAdminOnly
	GroupRoleSet
)

// Group is the access requirement attached to a route.
// Roles is only meaningful for GroupRoleSet.
type Group struct {
	Kind  GroupKind
	Roles []domainauth.Role
}

// Public is reachable without a session.
func Public() Group { return Group{Kind: GroupPublic} }

// AnyAuthenticated is reachable by every role.
func AnyAuthenticated() Group { return Group{Kind: GroupAnyAuthenticated} }

// AdminOnly is reachable by admins only. It is also the default for unknown paths.
func AdminOnly() Group { return Group{Kind: GroupAdminOnly} }

// RoleSet is reachable by the listed roles.
func RoleSet(roles ...domainauth.Role) Group {
	return Group{Kind: GroupRoleSet, Roles: slices.Clone(roles)}
}

// Declared reports whether the group was set explicitly.
func (g Group) Declared() bool {
	return g.Kind >= GroupPublic && g.Kind <= GroupRoleSet
}

// AllowsAnonymous reports whether a visitor without a session may enter.
func (g Group) AllowsAnonymous() bool { return g.Kind == GroupPublic }

// Permits reports whether an authenticated user with role may enter.
func (g Group) Permits(role domainauth.Role) bool {
	return IsPermitted(role, g)
}

// IsPermitted is the role policy predicate. Invalid roles are never permitted, not even on
// public routes, so a corrupted session cannot widen access.
func IsPermitted(role domainauth.Role, g Group) bool {
	if !role.Valid() {
		return false
	}
	switch g.Kind {
	case GroupPublic, GroupAnyAuthenticated:
		return true
	case GroupAdminOnly:
		return role == domainauth.RoleAdmin
	case GroupRoleSet:
		return slices.Contains(g.Roles, role)
	default:
		return false
	}
}

// Within reports whether g is at most as permissive as parent.
// A nested guard may only narrow access.
func (g Group) Within(parent Group) bool {
	if g.AllowsAnonymous() && !parent.AllowsAnonymous() {
		return false
	}
	for _, r := range domainauth.Roles() {
		if g.Permits(r) && !parent.Permits(r) {
			return false
		}
	}
	return true
}

// String renders the group the way it is logged and printed by the CLI.
func (g Group) String() string {
	switch g.Kind {
	case GroupPublic:
		return "public"
	case GroupAnyAuthenticated:
		return "authenticated"
	case GroupAdminOnly:
		return "admin"
	case GroupRoleSet:
		names := make([]string, len(g.Roles))
		for i, r := range g.Roles {
			names[i] = string(r)
		}
		return "roles(" + strings.Join(names, ",") + ")"
	default:
		return "undeclared"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (g Group) MarshalText() ([]byte, error) {
	return []byte(g.String()), nil
}

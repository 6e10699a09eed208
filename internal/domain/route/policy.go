package route

import (
	"maps"
	"strings"

	domainauth "github.com/revanth-rampal/trail/internal/domain/auth"
	apperrors "github.com/revanth-rampal/trail/internal/errors"
)

// DefaultLoginPath is where anonymous visitors are sent.
const DefaultLoginPath = "/login"

// DefaultLanding maps each role to its dashboard.
func DefaultLanding() map[domainauth.Role]string {
	return map[domainauth.Role]string{
		domainauth.RoleAdmin:   "/admin_dashboard",
		domainauth.RoleTeacher: "/teacher_dashboard",
		domainauth.RoleParent:  "/parent_dashboard",
		domainauth.RoleStudent: "/student_dashboard",
	}
}

// PolicyOptions configures a Policy.
type PolicyOptions struct {
	Root      Route
	Landing   map[domainauth.Role]string
	LoginPath string
}

// Policy is the role policy table bound to a compiled route tree.
// It is immutable after construction and safe for concurrent use.
type Policy struct {
	tree      *Tree
	landing   map[domainauth.Role]string
	loginPath string
}

// NewPolicy compiles the tree and validates it. Any MisconfiguredRoute error is fatal for startup.
func NewPolicy(opts PolicyOptions) (*Policy, error) {
	p := &Policy{
		tree:      NewTree(opts.Root),
		landing:   maps.Clone(opts.Landing),
		loginPath: opts.LoginPath,
	}
	if p.loginPath == "" {
		p.loginPath = DefaultLoginPath
	}
	if p.landing == nil {
		p.landing = DefaultLanding()
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// DefaultPolicy builds the policy for DefaultTree.
func DefaultPolicy() (*Policy, error) {
	return NewPolicy(PolicyOptions{Root: DefaultTree(), Landing: DefaultLanding()})
}

// MustDefaultPolicy is DefaultPolicy for package-level wiring and tests.
func MustDefaultPolicy() *Policy {
	p, err := DefaultPolicy()
	if err != nil {
		panic(err)
	}
	return p
}

// Tree returns the compiled tree.
func (p *Policy) Tree() *Tree { return p.tree }

// LoginPath returns the path anonymous visitors are redirected to.
func (p *Policy) LoginPath() string { return p.loginPath }

// RequiredGroup returns the group guarding path. Paths no declared route claims are AdminOnly.
func (p *Policy) RequiredGroup(path string) Group {
	m, ok := p.tree.Match(path)
	if !ok || m.Route.Path == CatchAll {
		return AdminOnly()
	}
	return m.Group()
}

// LandingPath returns the default destination for role, or "" for an unknown role.
func (p *Policy) LandingPath(role domainauth.Role) string {
	return p.landing[role]
}

// IsPermitted reports whether role may enter a route guarded by g.
func (p *Policy) IsPermitted(role domainauth.Role, g Group) bool {
	return IsPermitted(role, g)
}

// Decide evaluates the guards for a navigation to path with the session in s.
// It is total: every input yields a decision.
func (p *Policy) Decide(s domainauth.Snapshot, path string) Decision {
	if s.Status == domainauth.StatusLoading || s.Pending {
		return Decision{Kind: ShowLoading}
	}

	m, ok := p.resolve(path)

	if !s.Authenticated() {
		if ok && m.AllowsAnonymous() {
			return allow(m)
		}
		return p.toLogin()
	}

	role := s.Identity.Role
	landing := p.landing[role]
	if !role.Valid() || landing == "" {
		return p.toLogin()
	}

	if !ok {
		// No catch-all declared: the path is AdminOnly and has nothing to render.
		if AdminOnly().Permits(role) {
			return Decision{Kind: Allow}
		}
		return p.toLogin()
	}
	if m.Route.Base || m.GuestOnly {
		return Decision{Kind: RedirectToLanding, Target: landing}
	}
	if m.Permits(role) {
		return allow(m)
	}
	return p.toLogin()
}

// resolve matches path and follows a redirect route to its target. Redirect targets are
// validated to be plain routes, so one hop is enough.
func (p *Policy) resolve(path string) (Match, bool) {
	m, ok := p.tree.Match(path)
	if !ok || m.Route.Redirect == "" {
		return m, ok
	}
	return p.tree.Match(m.Route.Redirect)
}

func (p *Policy) toLogin() Decision {
	return Decision{Kind: RedirectToLogin, Target: p.loginPath}
}

func allow(m Match) Decision {
	r := m.Route
	return Decision{Kind: Allow, Route: &r, Params: m.Params}
}

// Validate checks the tree and the landing table. It returns the first problem found as a
// MisconfiguredRoute error.
func (p *Policy) Validate() error {
	v := validator{seen: make(map[string]string)}
	if err := v.walk(p.tree.root, nil, true); err != nil {
		return err
	}

	for _, m := range p.tree.Entries() {
		if m.GuestOnly && !m.AllowsAnonymous() {
			return apperrors.MisconfiguredRoutef(m.Route.Path, "guest-only route must be public")
		}
		if target := m.Route.Redirect; target != "" {
			if err := p.validateRedirect(m.Route.Path, target); err != nil {
				return err
			}
		}
	}

	if err := p.validateLogin(); err != nil {
		return err
	}
	return p.validateLanding()
}

func (p *Policy) validateRedirect(from, target string) error {
	tm, ok := p.tree.Match(target)
	if !ok || tm.Route.Path == CatchAll || Normalize(target) != target {
		return apperrors.MisconfiguredRoutef(from, "redirect target %q is not declared", target)
	}
	if tm.Route.Redirect != "" {
		return apperrors.MisconfiguredRoutef(from, "redirect target %q is itself a redirect", target)
	}
	return nil
}

func (p *Policy) validateLogin() error {
	m, ok := p.tree.Match(p.loginPath)
	if !ok || m.Route.Path == CatchAll {
		return apperrors.MisconfiguredRoutef(p.loginPath, "login path is not declared")
	}
	if !m.AllowsAnonymous() {
		return apperrors.MisconfiguredRoutef(p.loginPath, "login path must be public")
	}
	return nil
}

func (p *Policy) validateLanding() error {
	used := make(map[string]domainauth.Role, len(p.landing))
	for _, role := range domainauth.Roles() {
		landing := p.landing[role]
		if landing == "" {
			return apperrors.MisconfiguredRoutef(landing, "no landing path for role %s", role)
		}
		if other, dup := used[landing]; dup {
			return apperrors.MisconfiguredRoutef(landing, "landing path shared by roles %s and %s", other, role)
		}
		used[landing] = role

		m, ok := p.tree.Match(landing)
		if !ok || m.Route.Path == CatchAll {
			return apperrors.MisconfiguredRoutef(landing, "landing path for role %s is not declared", role)
		}
		if m.Route.Redirect != "" || m.Route.Base || m.GuestOnly {
			return apperrors.MisconfiguredRoutef(landing, "landing path for role %s redirects", role)
		}
		if !m.Permits(role) {
			return apperrors.MisconfiguredRoutef(landing, "landing path is not permitted for role %s", role)
		}
	}
	return nil
}

type validator struct {
	seen     map[string]string
	base     string
	catchAll bool
}

func (v *validator) walk(r Route, parent *Group, top bool) error {
	name := r.Path
	if name == "" {
		name = "(layout)"
	}

	if !r.Group.Declared() {
		return apperrors.MisconfiguredRoutef(name, "no access group declared")
	}
	if r.Group.Kind == GroupRoleSet {
		if len(r.Group.Roles) == 0 {
			return apperrors.MisconfiguredRoutef(name, "role set is empty")
		}
		for _, role := range r.Group.Roles {
			if !role.Valid() {
				return apperrors.MisconfiguredRoutef(name, "unknown role %q", role)
			}
		}
	}
	if parent != nil && !r.Group.Within(*parent) {
		return apperrors.MisconfiguredRoutef(name, "group %s widens parent group %s", r.Group, *parent)
	}

	switch {
	case r.Path == "":
		if len(r.Children) == 0 && !top {
			return apperrors.MisconfiguredRoutef(name, "layout has no children")
		}
	case r.Path == CatchAll:
		if v.catchAll {
			return apperrors.MisconfiguredRoutef(name, "catch-all declared twice")
		}
		v.catchAll = true
	default:
		if !strings.HasPrefix(r.Path, "/") || Normalize(r.Path) != r.Path {
			return apperrors.MisconfiguredRoutef(name, "path must be absolute and clean")
		}
		key := shape(r.Path)
		if prev, dup := v.seen[key]; dup {
			return apperrors.MisconfiguredRoutef(name, "path collides with %q", prev)
		}
		v.seen[key] = r.Path
	}

	if r.Base {
		if v.base != "" {
			return apperrors.MisconfiguredRoutef(name, "base path already declared at %q", v.base)
		}
		v.base = name
	}
	if r.Redirect != "" && len(r.Children) > 0 {
		return apperrors.MisconfiguredRoutef(name, "redirect route cannot have children")
	}

	for _, c := range r.Children {
		if err := v.walk(c, &r.Group, false); err != nil {
			return err
		}
	}
	return nil
}

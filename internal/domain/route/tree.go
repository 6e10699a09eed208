package route

import (
	"path"
	"strings"

	domainauth "github.com/revanth-rampal/trail/internal/domain/auth"
)

// CatchAll is the pattern matched by any path no other route claims.
const CatchAll = "*"

// Route is one node of the route tree. A node with an empty Path is a pathless guard layer
// that only contributes its Group (and GuestOnly) to its children.
type Route struct {
	// Path is an absolute pattern such as "/homework/{classID}", CatchAll, or "".
	Path  string
	Group Group
	// GuestOnly sends authenticated users to their landing page instead of rendering.
	GuestOnly bool
	// Base marks the generic home path that resolves to the role's landing page.
	Base bool
	// Page identifies the placeholder rendered when access is allowed.
	Page  string
	Title string
	// Redirect sends the request to another declared path, resolved in the same evaluation.
	Redirect string
	Children []Route
}

// Match is the result of resolving a request path against the tree.
type Match struct {
	// Route is the matched leaf, without children.
	Route Route
	// Chain holds the groups from the outermost layer down to the leaf.
	Chain     []Group
	GuestOnly bool
	Params    map[string]string
}

// Group is the leaf group, which is also the most restrictive one in a validated tree.
func (m Match) Group() Group {
	if len(m.Chain) == 0 {
		return AdminOnly()
	}
	return m.Chain[len(m.Chain)-1]
}

// AllowsAnonymous reports whether every layer on the chain is public.
func (m Match) AllowsAnonymous() bool {
	if len(m.Chain) == 0 {
		return false
	}
	for _, g := range m.Chain {
		if !g.AllowsAnonymous() {
			return false
		}
	}
	return true
}

// Permits reports whether role passes every layer on the chain.
func (m Match) Permits(role domainauth.Role) bool {
	if len(m.Chain) == 0 {
		return false
	}
	for _, g := range m.Chain {
		if !g.Permits(role) {
			return false
		}
	}
	return true
}

type entry struct {
	match    Match
	segments []string
	static   int
}

// Tree is a compiled, immutable route tree.
type Tree struct {
	root     Route
	entries  []entry
	catchAll *entry
}

// NewTree flattens root into a lookup table. It does not validate; see Policy.Validate.
func NewTree(root Route) *Tree {
	t := &Tree{root: root}
	t.flatten(root, nil, false)
	return t
}

// Root returns the tree as declared.
func (t *Tree) Root() Route { return t.root }

func (t *Tree) flatten(r Route, chain []Group, guestOnly bool) {
	chain = append(chain[:len(chain):len(chain)], r.Group)
	guestOnly = guestOnly || r.GuestOnly

	if r.Path != "" {
		leaf := r
		leaf.Children = nil
		e := entry{match: Match{Route: leaf, Chain: chain, GuestOnly: guestOnly}}
		if r.Path == CatchAll {
			if t.catchAll == nil {
				t.catchAll = &e
			}
		} else {
			e.segments = splitPath(r.Path)
			for _, s := range e.segments {
				if !isParam(s) {
					e.static++
				}
			}
			t.entries = append(t.entries, e)
		}
	}

	for _, c := range r.Children {
		t.flatten(c, chain, guestOnly)
	}
}

// Match resolves p to the most specific declared route. Static segments beat parameters;
// among equally specific routes the first declared wins. Paths nothing claims fall through to
// the catch-all when one is declared.
func (t *Tree) Match(p string) (Match, bool) {
	segs := splitPath(Normalize(p))

	var (
		best   *entry
		params map[string]string
	)
	for i := range t.entries {
		e := &t.entries[i]
		got, ok := matchSegments(e.segments, segs)
		if !ok {
			continue
		}
		if best == nil || e.static > best.static {
			best, params = e, got
		}
	}
	if best != nil {
		m := best.match
		m.Params = params
		return m, true
	}
	if t.catchAll != nil {
		return t.catchAll.match, true
	}
	return Match{}, false
}

// Entries returns every addressable route in declaration order, catch-all last.
func (t *Tree) Entries() []Match {
	out := make([]Match, 0, len(t.entries)+1)
	for _, e := range t.entries {
		out = append(out, e.match)
	}
	if t.catchAll != nil {
		out = append(out, t.catchAll.match)
	}
	return out
}

// Normalize cleans a request path: query and fragment dropped, dot segments resolved,
// trailing slash removed. The result always starts with "/".
func Normalize(p string) string {
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	if p == "" || p[0] != '/' {
		p = "/" + p
	}
	return path.Clean(p)
}

func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

func isParam(seg string) bool {
	return len(seg) > 2 && seg[0] == '{' && seg[len(seg)-1] == '}'
}

func matchSegments(pattern, segs []string) (map[string]string, bool) {
	if len(pattern) != len(segs) {
		return nil, false
	}
	var params map[string]string
	for i, ps := range pattern {
		if isParam(ps) {
			if segs[i] == "" {
				return nil, false
			}
			if params == nil {
				params = make(map[string]string)
			}
			params[ps[1:len(ps)-1]] = segs[i]
			continue
		}
		if ps != segs[i] {
			return nil, false
		}
	}
	return params, true
}

// shape returns the pattern with parameter names erased, used to detect duplicates.
func shape(p string) string {
	if p == CatchAll {
		return p
	}
	segs := splitPath(p)
	for i, s := range segs {
		if isParam(s) {
			segs[i] = "{}"
		}
	}
	return "/" + strings.Join(segs, "/")
}

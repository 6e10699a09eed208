package route

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := map[string]string{
		"":                      "/",
		"/":                     "/",
		"attendance":            "/attendance",
		"/notices/":             "/notices",
		"/notices/new?draft=1":  "/notices/new",
		"/a/../admin_dashboard": "/admin_dashboard",
		"//feedback#top":        "/feedback",
		"/homework/7b/./":       "/homework/7b",
	}
	for in, want := range tests {
		assert.Equal(t, want, Normalize(in), "Normalize(%q)", in)
	}
}

func TestTree_MatchStaticAndParams(t *testing.T) {
	tree := NewTree(DefaultTree())

	m, ok := tree.Match("/homework/10-a")
	require.True(t, ok)
	assert.Equal(t, "/homework/{classID}", m.Route.Path)
	assert.Equal(t, map[string]string{"classID": "10-a"}, m.Params)

	m, ok = tree.Match("/notices/new")
	require.True(t, ok)
	assert.Equal(t, "/notices/new", m.Route.Path)
	assert.Nil(t, m.Params)

	m, ok = tree.Match("/teacher-profile/t-42?tab=classes")
	require.True(t, ok)
	assert.Equal(t, "t-42", m.Params["teacherID"])
}

func TestTree_StaticBeatsParam(t *testing.T) {
	tree := NewTree(Route{
		Group: Public(),
		Children: []Route{
			{Path: "/notices/{id}", Group: Public(), Page: "notice"},
			{Path: "/notices/new", Group: Public(), Page: "create"},
		},
	})
	m, ok := tree.Match("/notices/new")
	require.True(t, ok)
	assert.Equal(t, "create", m.Route.Page)

	m, ok = tree.Match("/notices/17")
	require.True(t, ok)
	assert.Equal(t, "notice", m.Route.Page)
}

func TestTree_CatchAll(t *testing.T) {
	tree := NewTree(DefaultTree())
	m, ok := tree.Match("/no/such/page")
	require.True(t, ok)
	assert.Equal(t, CatchAll, m.Route.Path)
	assert.Equal(t, "/", m.Route.Redirect)

	bare := NewTree(Route{Group: Public(), Children: []Route{{Path: "/x", Group: Public()}}})
	_, ok = bare.Match("/y")
	assert.False(t, ok)
}

func TestTree_ChainAndGuestOnlyInherited(t *testing.T) {
	tree := NewTree(DefaultTree())

	m, ok := tree.Match("/login")
	require.True(t, ok)
	assert.True(t, m.GuestOnly)
	assert.True(t, m.AllowsAnonymous())

	m, ok = tree.Match("/feedback")
	require.True(t, ok)
	assert.False(t, m.GuestOnly)
	assert.Len(t, m.Chain, 4)
	assert.Equal(t, AdminOnly(), m.Group())
	assert.False(t, m.AllowsAnonymous())
}

func TestTree_EntriesCatchAllLast(t *testing.T) {
	entries := NewTree(DefaultTree()).Entries()
	require.NotEmpty(t, entries)
	assert.Equal(t, CatchAll, entries[len(entries)-1].Route.Path)
	for _, e := range entries {
		assert.Nil(t, e.Route.Children)
	}
}

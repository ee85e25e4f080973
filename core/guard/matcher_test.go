package guard_test

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/stormpath/client"
	"github.com/dmitrymomot/stormpath/core/guard"
	"github.com/dmitrymomot/stormpath/core/user"
)

func TestParseGroupMatcher(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		in      any
		match   []string
		noMatch []string
	}{
		{name: "plain name is exact", in: "admins", match: []string{"admins"}, noMatch: []string{"admins-eu", "Admins"}},
		{name: "plain name with metacharacters", in: "a.b", match: []string{"a.b"}, noMatch: []string{"axb"}},
		{name: "literal pattern", in: "/^admins/", match: []string{"admins", "admins-eu"}, noMatch: []string{"sysadmins"}},
		{name: "case-insensitive flag", in: "/^ADMINS$/i", match: []string{"admins"}, noMatch: []string{"admins-eu"}},
		{name: "global flag ignored", in: "/ops/g", match: []string{"devops"}},
		{name: "leading slash only", in: "/admins", match: []string{"/admins"}, noMatch: []string{"admins"}},
		{name: "compiled expression", in: regexp.MustCompile(`-eu$`), match: []string{"admins-eu"}, noMatch: []string{"admins"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			re, err := guard.ParseGroupMatcher(tt.in)
			require.NoError(t, err)
			for _, s := range tt.match {
				assert.True(t, re.MatchString(s), s)
			}
			for _, s := range tt.noMatch {
				assert.False(t, re.MatchString(s), s)
			}
		})
	}
}

func TestParseGroupMatcherErrors(t *testing.T) {
	t.Parallel()

	_, err := guard.ParseGroupMatcher(42)
	require.ErrorIs(t, err, guard.ErrUnsupportedMatcher)

	_, err = guard.ParseGroupMatcher("")
	require.ErrorIs(t, err, guard.ErrUnsupportedMatcher)

	_, err = guard.ParseGroupMatcher((*regexp.Regexp)(nil))
	require.ErrorIs(t, err, guard.ErrUnsupportedMatcher)

	_, err = guard.ParseGroupMatcher("/[/")
	require.ErrorIs(t, err, guard.ErrInvalidMatcher)

	_, err = guard.ParseGroupMatcher("/x/q")
	require.ErrorIs(t, err, guard.ErrInvalidMatcher)
}

func TestMatchGroups(t *testing.T) {
	t.Parallel()

	u := user.New(client.Account{"groups": []any{"users", "admins-eu"}})
	assert.True(t, guard.MatchGroups(u, "users"))
	assert.True(t, guard.MatchGroups(u, "/^admins/"))
	assert.False(t, guard.MatchGroups(u, "admins"))
	assert.False(t, guard.MatchGroups(u, 3.14))
	assert.False(t, guard.MatchGroups(nil, "users"))
}

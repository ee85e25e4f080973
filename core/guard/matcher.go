package guard

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dmitrymomot/stormpath/core/user"
)

// ParseGroupMatcher builds a group-name expression from v, which may be
// a "/pattern/flags" literal, a compiled *regexp.Regexp or a plain group name.
// Plain names match exactly. Supported flags are i, m and s; g is accepted
// and ignored.
func ParseGroupMatcher(v any) (*regexp.Regexp, error) {
	switch m := v.(type) {
	case *regexp.Regexp:
		if m == nil {
			return nil, ErrUnsupportedMatcher
		}
		return m, nil
	case string:
		return parseGroupString(m)
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedMatcher, v)
	}
}

func parseGroupString(s string) (*regexp.Regexp, error) {
	if s == "" {
		return nil, ErrUnsupportedMatcher
	}

	end := strings.LastIndex(s, "/")
	if !strings.HasPrefix(s, "/") || end <= 0 {
		return regexp.MustCompile("^" + regexp.QuoteMeta(s) + "$"), nil
	}

	pattern, flags := s[1:end], s[end+1:]
	var prefix strings.Builder
	for _, f := range flags {
		switch f {
		case 'i', 'm', 's':
			prefix.WriteRune(f)
		case 'g':
		default:
			return nil, fmt.Errorf("%w: unknown flag %q", ErrInvalidMatcher, f)
		}
	}
	if prefix.Len() > 0 {
		pattern = "(?" + prefix.String() + ")" + pattern
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidMatcher, err)
	}
	return re, nil
}

// MatchGroups reports whether u belongs to a group matched by v, as
// interpreted by ParseGroupMatcher. Unparseable matchers never match.
func MatchGroups(u *user.User, v any) bool {
	if u == nil {
		return false
	}
	re, err := ParseGroupMatcher(v)
	if err != nil {
		return false
	}
	return u.MatchesGroupExpression(re)
}

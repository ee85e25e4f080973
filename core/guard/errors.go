package guard

import "errors"

var (
	// ErrEmptyRouteName is returned when registering a route without a name.
	ErrEmptyRouteName = errors.New("guard: route name is required")
	// ErrDuplicateRoute is returned when a route name is registered twice.
	ErrDuplicateRoute = errors.New("guard: route already registered")
	// ErrUnsupportedAuthorization is returned for an authorize rule without a group.
	ErrUnsupportedAuthorization = errors.New("guard: authorize rule requires a group")
	// ErrUnsupportedMatcher is returned by ParseGroupMatcher for values it cannot interpret.
	ErrUnsupportedMatcher = errors.New("guard: unsupported group matcher")
	// ErrInvalidMatcher is returned when a /pattern/flags expression does not compile.
	ErrInvalidMatcher = errors.New("guard: invalid group expression")
)

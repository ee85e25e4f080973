package guard

import "time"

// Config holds the route names and redirect behaviour of a Guard.
type Config struct {
	// LoginRoute is where unauthenticated navigations are sent.
	// Authenticated users visiting it are sent to DefaultPostLoginRoute.
	LoginRoute string `env:"LOGIN_ROUTE" envDefault:"login"`
	// ForbiddenRoute receives unauthorized navigations. Empty blocks in place.
	ForbiddenRoute string `env:"FORBIDDEN_ROUTE"`
	// DefaultPostLoginRoute is the destination after login when nothing is pending.
	DefaultPostLoginRoute string `env:"DEFAULT_POST_LOGIN_ROUTE" envDefault:"home"`
	// DisableAutoRedirect stops the guard from navigating after login.
	DisableAutoRedirect bool `env:"DISABLE_AUTO_REDIRECT" envDefault:"false"`
	// FetchTimeout bounds how long a deferred navigation waits for the current user.
	FetchTimeout time.Duration `env:"FETCH_TIMEOUT" envDefault:"10s"`
}

// DefaultFetchTimeout applies when Config.FetchTimeout is zero.
const DefaultFetchTimeout = 10 * time.Second

func (c Config) withDefaults() Config {
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = DefaultFetchTimeout
	}
	return c
}

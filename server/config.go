package server

import (
	"time"

	"github.com/dmitrymomot/stormpath/client"
	"github.com/dmitrymomot/stormpath/social"
)

// Config holds the server-side wrapper settings. Load it with
// config.Parse(&cfg, "STORMPATH_SERVER_").
type Config struct {
	APIKeyID     string `env:"API_KEY_ID"`
	APIKeySecret string `env:"API_KEY_SECRET"`
	APIURL       string `env:"API_URL"`

	Endpoints client.Endpoints

	// SessionCookies are the cookie names that carry the API session.
	SessionCookies []string      `env:"SESSION_COOKIES" envSeparator:"," envDefault:"access_token,refresh_token"`
	UserCacheTTL   time.Duration `env:"USER_CACHE_TTL" envDefault:"5m"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`

	PostLoginRedirect  string `env:"POST_LOGIN_REDIRECT" envDefault:"/"`
	PostLogoutRedirect string `env:"POST_LOGOUT_REDIRECT" envDefault:"/"`

	BodyLimit  int64   `env:"BODY_LIMIT" envDefault:"1048576"`
	LoginRate  float64 `env:"LOGIN_RATE" envDefault:"1"`
	LoginBurst int     `env:"LOGIN_BURST" envDefault:"5"`

	// TrustProxyHeaders keys rate limits by the forwarded client address.
	TrustProxyHeaders bool `env:"TRUST_PROXY_HEADERS" envDefault:"false"`

	// AllowedOrigins enables credentialed CORS for browser apps served from
	// another origin. Empty disables CORS.
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:","`
	// DisableHSTS drops Strict-Transport-Security for plain HTTP development.
	DisableHSTS bool `env:"DISABLE_HSTS" envDefault:"false"`

	Google social.Config `envPrefix:"GOOGLE_"`
}

// DefaultSessionCookies are used when Config.SessionCookies is empty.
var DefaultSessionCookies = []string{"access_token", "refresh_token"}

func (c Config) validate() error {
	if c.APIKeyID == "" || c.APIKeySecret == "" {
		return ErrMissingAPIKey
	}
	if c.APIURL == "" {
		return ErrMissingAPIURL
	}
	return nil
}

func (c Config) withDefaults() Config {
	if len(c.SessionCookies) == 0 {
		c.SessionCookies = DefaultSessionCookies
	}
	if c.PostLoginRedirect == "" {
		c.PostLoginRedirect = "/"
	}
	if c.PostLogoutRedirect == "" {
		c.PostLogoutRedirect = "/"
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = 30 * time.Second
	}
	c.Endpoints = c.Endpoints.WithDefaults()
	return c
}

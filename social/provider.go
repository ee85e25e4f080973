package social

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"

	"github.com/dmitrymomot/stormpath/core/logger"
)

// GoogleProviderID is the provider id the identity API expects for Google.
const GoogleProviderID = "google"

// Config holds the OAuth client registration of one provider.
type Config struct {
	ClientID     string   `env:"CLIENT_ID"`
	ClientSecret string   `env:"CLIENT_SECRET"`
	RedirectURL  string   `env:"REDIRECT_URL"`
	Scopes       []string `env:"SCOPES" envSeparator:","`
}

// Enabled reports whether the provider is configured.
func (c Config) Enabled() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

// Provider is an OAuth 2.0 authorization-code client for one provider.
type Provider struct {
	id         string
	oauth      *oauth2.Config
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a Provider.
type Option func(*Provider)

// WithHTTPClient sets the client used for token requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(p *Provider) {
		p.httpClient = hc
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Provider) {
		p.logger = logger.Default(l)
	}
}

// New creates a provider with an explicit endpoint.
func New(id string, endpoint oauth2.Endpoint, cfg Config, opts ...Option) (*Provider, error) {
	if cfg.ClientID == "" {
		return nil, ErrMissingClientID
	}
	if cfg.ClientSecret == "" {
		return nil, ErrMissingClientSecret
	}

	p := &Provider{
		id: id,
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       cfg.Scopes,
			Endpoint:     endpoint,
		},
		logger: logger.Discard(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Google creates the Google provider. Scopes default to email and profile.
func Google(cfg Config, opts ...Option) (*Provider, error) {
	if len(cfg.Scopes) == 0 {
		cfg.Scopes = []string{"email", "profile"}
	}
	return New(GoogleProviderID, endpoints.Google, cfg, opts...)
}

// ID returns the provider id sent to the identity API.
func (p *Provider) ID() string {
	return p.id
}

// AuthCodeURL returns the consent page URL for state.
func (p *Provider) AuthCodeURL(state string) string {
	return p.oauth.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Exchange trades an authorization code for a provider token.
func (p *Provider) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	if code == "" {
		return nil, ErrMissingCode
	}
	if p.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
	}

	tok, err := p.oauth.Exchange(ctx, code)
	if err != nil {
		var rerr *oauth2.RetrieveError
		if errors.As(err, &rerr) && rerr.Response != nil {
			p.logger.WarnContext(ctx, "provider rejected authorization code",
				logger.Component("social"),
				logger.Provider(p.id),
				logger.StatusCode(rerr.Response.StatusCode),
			)
		}
		return nil, fmt.Errorf("%w: %w", ErrExchangeFailed, err)
	}
	return tok, nil
}

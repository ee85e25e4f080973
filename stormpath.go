package stormpath

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/stormpath/client"
	"github.com/dmitrymomot/stormpath/core/auth"
	"github.com/dmitrymomot/stormpath/core/config"
	"github.com/dmitrymomot/stormpath/core/event"
	"github.com/dmitrymomot/stormpath/core/guard"
	"github.com/dmitrymomot/stormpath/core/logger"
	"github.com/dmitrymomot/stormpath/core/user"
)

// EnvPrefix prefixes every variable read by LoadConfig.
const EnvPrefix = "STORMPATH_"

// Config is the SDK configuration.
type Config struct {
	// BaseURL is the identity API root, e.g. https://id.example.com.
	BaseURL string `env:"BASE_URL"`
	// FormContentType selects how request bodies are encoded.
	FormContentType string `env:"FORM_CONTENT_TYPE" envDefault:"application/x-www-form-urlencoded"`

	Endpoints client.Endpoints
	Events    event.Names `envPrefix:"EVENT_"`
	Guard     guard.Config
}

// LoadConfig reads Config from STORMPATH_* environment variables and .env.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := config.Parse(&cfg, EnvPrefix); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// SDK wires the identity API client, the session cache, the auth actions and
// the route guard around one event bus.
type SDK struct {
	Client *client.Client
	Bus    *event.Bus
	Users  *user.Service
	Auth   *auth.Service
	Guard  *guard.Guard
}

type options struct {
	logger     *slog.Logger
	httpClient *http.Client
	bus        *event.Bus
	routes     []guard.Route
}

// Option configures New.
type Option func(*options)

// WithLogger sets the logger shared by every component.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger.Default(l)
	}
}

// WithHTTPClient sets the HTTP client of the API client. It needs a cookie
// jar to keep the session between calls.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) {
		o.httpClient = hc
	}
}

// WithBus shares an existing event bus.
func WithBus(b *event.Bus) Option {
	return func(o *options) {
		o.bus = b
	}
}

// WithRoutes registers route access descriptors with the guard.
func WithRoutes(routes ...guard.Route) Option {
	return func(o *options) {
		o.routes = append(o.routes, routes...)
	}
}

// New validates cfg and builds the SDK. The guard is not attached to a
// router until SDK.Guard.Start is called.
func New(cfg Config, opts ...Option) (*SDK, error) {
	o := options{logger: logger.Discard()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.bus == nil {
		o.bus = event.NewBus(event.WithLogger(o.logger))
	}

	api, err := client.New(cfg.BaseURL,
		client.WithEndpoints(cfg.Endpoints),
		client.WithFormContentType(cfg.FormContentType),
		client.WithHTTPClient(o.httpClient),
		client.WithLogger(o.logger),
	)
	if err != nil {
		return nil, fmt.Errorf("stormpath: %w", err)
	}

	routes := guard.NewRegistry()
	if err := routes.Register(o.routes...); err != nil {
		return nil, fmt.Errorf("stormpath: %w", err)
	}

	fetchTimeout := cfg.Guard.FetchTimeout
	if fetchTimeout <= 0 {
		fetchTimeout = user.DefaultFetchTimeout
	}

	users := user.NewService(api,
		user.WithBus(o.bus),
		user.WithEventNames(cfg.Events),
		user.WithFetchTimeout(fetchTimeout),
		user.WithLogger(o.logger),
	)

	return &SDK{
		Client: api,
		Bus:    o.bus,
		Users:  users,
		Auth:   auth.NewService(api, users, auth.WithLogger(o.logger)),
		Guard:  guard.New(users, routes, cfg.Guard, guard.WithLogger(o.logger)),
	}, nil
}

// MustNew is like New but panics on error.
func MustNew(cfg Config, opts ...Option) *SDK {
	sdk, err := New(cfg, opts...)
	if err != nil {
		panic(err)
	}
	return sdk
}

// Close detaches the guard and the session cache from the bus.
func (s *SDK) Close() {
	s.Guard.Stop()
	s.Users.Close()
}

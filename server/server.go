package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/dmitrymomot/stormpath/client"
	"github.com/dmitrymomot/stormpath/core/handler"
	"github.com/dmitrymomot/stormpath/core/health"
	"github.com/dmitrymomot/stormpath/core/logger"
	"github.com/dmitrymomot/stormpath/middleware"
	"github.com/dmitrymomot/stormpath/pkg/clientip"
	"github.com/dmitrymomot/stormpath/social"
)

// UserCache stores accounts keyed by session token.
// *redis.UserCache implements it.
type UserCache interface {
	Get(ctx context.Context, session string) (client.Account, error)
	Set(ctx context.Context, session string, acct client.Account) error
	Delete(ctx context.Context, session string) error
}

// Server is the server-side wrapper around the identity API.
type Server struct {
	cfg        Config
	api        *client.Client
	cache      UserCache
	google     *social.Provider
	httpClient *http.Client
	registry   *prometheus.Registry
	metrics    *Metrics
	checks     []func(context.Context) error
	logger     *slog.Logger
	router     chi.Router
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger.Default(l)
	}
}

// WithHTTPClient sets the client used for identity API and OAuth calls.
// It must not carry a cookie jar: sessions belong to browsers, not to the
// server.
func WithHTTPClient(hc *http.Client) Option {
	return func(s *Server) {
		if hc != nil {
			s.httpClient = hc
		}
	}
}

// WithUserCache caches accounts between requests. Without it every lookup
// calls the API.
func WithUserCache(c UserCache) Option {
	return func(s *Server) {
		s.cache = c
	}
}

// WithSocialProvider replaces the Google provider built from Config.Google.
func WithSocialProvider(p *social.Provider) Option {
	return func(s *Server) {
		s.google = p
	}
}

// WithRegistry sets the Prometheus registry metrics are registered with and
// served from. Default: a fresh registry.
func WithRegistry(r *prometheus.Registry) Option {
	return func(s *Server) {
		if r != nil {
			s.registry = r
		}
	}
}

// WithHealthchecks adds readiness checks to /health/ready.
func WithHealthchecks(checks ...func(context.Context) error) Option {
	return func(s *Server) {
		s.checks = append(s.checks, checks...)
	}
}

// New validates cfg and builds the server.
func New(cfg Config, opts ...Option) (*Server, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()

	s := &Server{
		cfg:    cfg,
		logger: logger.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.httpClient == nil {
		s.httpClient = &http.Client{Timeout: cfg.RequestTimeout}
	}
	if s.registry == nil {
		s.registry = prometheus.NewRegistry()
	}
	s.metrics = NewMetrics(s.registry)

	api, err := client.New(cfg.APIURL,
		client.WithHTTPClient(s.httpClient),
		client.WithAPIKey(cfg.APIKeyID, cfg.APIKeySecret),
		client.WithEndpoints(cfg.Endpoints),
		client.WithUserAgent("stormpath-go-server"),
		client.WithLogger(s.logger),
	)
	if err != nil {
		return nil, fmt.Errorf("server: %w", err)
	}
	s.api = api

	if s.google == nil && cfg.Google.Enabled() {
		s.google, err = social.Google(cfg.Google,
			social.WithHTTPClient(s.httpClient),
			social.WithLogger(s.logger),
		)
		if err != nil {
			return nil, fmt.Errorf("server: google provider: %w", err)
		}
	}

	s.router = s.routes()
	return s, nil
}

// MustNew is like New but panics on error.
func MustNew(cfg Config, opts ...Option) *Server {
	s, err := New(cfg, opts...)
	if err != nil {
		panic(err)
	}
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Metrics returns the server's collectors.
func (s *Server) Metrics() *Metrics {
	return s.metrics
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	if len(s.cfg.AllowedOrigins) > 0 {
		r.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins:     s.cfg.AllowedOrigins,
			AllowCredentials: true,
			MaxAge:           600,
		}))
	}
	sec := middleware.APISecurity
	sec.IsDevelopment = s.cfg.DisableHSTS
	r.Use(middleware.SecurityHeadersWithConfig(sec))
	r.Use(middleware.RequestID())
	r.Use(middleware.LoggingWithConfig(middleware.LoggingConfig{
		Logger: s.logger,
		Skip: func(r *http.Request) bool {
			return r.URL.Path == "/health/live" || r.URL.Path == "/metrics"
		},
	}))
	r.Use(middleware.BodyLimit(s.cfg.BodyLimit))

	keyFunc := clientip.RemoteIP
	if s.cfg.TrustProxyHeaders {
		keyFunc = clientip.GetIP
	}
	limited := middleware.RateLimit(middleware.RateLimitConfig{
		Rate:    rate.Limit(s.cfg.LoginRate),
		Burst:   s.cfg.LoginBurst,
		KeyFunc: keyFunc,
	})

	ep := s.cfg.Endpoints
	r.Get(ep.CurrentUser, s.handle(s.me))
	r.With(limited).Post(ep.Authentication, s.handle(s.login))
	r.Get(ep.DestroySession, s.handle(s.logout))
	r.Post(ep.UserCollection, s.handle(s.register))
	r.With(limited).Post(ep.ForgotPassword, s.handle(s.forgotPassword))
	r.Get(ep.ChangePassword, s.handle(s.verifyResetToken))
	r.With(limited).Post(ep.ChangePassword, s.handle(s.resetPassword))
	r.Get(ep.EmailVerification, s.handle(s.verifyEmail))
	r.With(limited).Post(ep.EmailVerification, s.handle(s.resendVerification))
	r.Get("/login/google", s.handle(s.googleLogin))
	r.Get("/callbacks/google", s.handle(s.googleCallback))

	r.Get("/health/live", health.Liveness())
	r.Get("/health/ready", health.Readiness(s.logger, s.checks...))
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	return r
}

func (s *Server) handle(fn handler.Func) http.HandlerFunc {
	return handler.Handle(fn,
		handler.WithErrorHandler(s.renderError),
		handler.WithLogger(s.logger),
	)
}

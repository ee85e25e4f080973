package auth

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dmitrymomot/stormpath/client"
	"github.com/dmitrymomot/stormpath/core/event"
	"github.com/dmitrymomot/stormpath/core/logger"
	"github.com/dmitrymomot/stormpath/core/user"
)

// Authenticator is the subset of the API client the service needs.
type Authenticator interface {
	Login(ctx context.Context, username, password string, opts ...client.RequestOption) (*client.Response, error)
	SocialLogin(ctx context.Context, providerID, accessToken string, opts ...client.RequestOption) (*client.Response, error)
	Logout(ctx context.Context, opts ...client.RequestOption) (*client.Response, error)
}

// Credentials are the password grant inputs.
type Credentials struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// Failure is the AuthenticationFailure event payload.
type Failure struct {
	// Response is the raw API answer, nil when the request never completed.
	Response *client.Response
	Err      error
}

// Service is the auth action service.
type Service struct {
	api    Authenticator
	users  *user.Service
	bus    *event.Bus
	names  event.Names
	logger *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger.Default(l)
	}
}

// NewService creates an auth service that shares the bus and event names of
// the given session cache.
func NewService(api Authenticator, users *user.Service, opts ...Option) *Service {
	s := &Service{
		api:    api,
		users:  users,
		bus:    users.Bus(),
		names:  users.Names(),
		logger: logger.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Authenticate logs in with the password grant. On success the session cache
// is refreshed and Authenticated is emitted with the raw response. On failure
// AuthenticationFailure is emitted and the error is returned.
func (s *Service) Authenticate(ctx context.Context, creds Credentials, opts ...client.RequestOption) (*client.Response, error) {
	resp, err := s.api.Login(ctx, creds.Username, creds.Password, opts...)
	return s.established(ctx, "password", resp, err)
}

// SocialLogin logs in with a third-party provider access token, following the
// same contract as Authenticate.
func (s *Service) SocialLogin(ctx context.Context, providerID, accessToken string, opts ...client.RequestOption) (*client.Response, error) {
	resp, err := s.api.SocialLogin(ctx, providerID, accessToken, opts...)
	return s.established(ctx, providerID, resp, err)
}

func (s *Service) established(ctx context.Context, method string, resp *client.Response, err error) (*client.Response, error) {
	if err != nil {
		s.logger.DebugContext(ctx, "authentication failed",
			logger.Component("auth"),
			logger.Provider(method),
			logger.StatusCode(client.StatusCode(err)),
		)
		s.bus.Emit(ctx, s.names.AuthenticationFailure, Failure{Response: client.ResponseOf(err), Err: err})
		return resp, err
	}

	// Authenticated listeners must observe the refreshed session
	if _, err := s.users.Refresh(ctx).Await(); err != nil {
		err = errors.Join(ErrSessionNotEstablished, err)
		s.logger.WarnContext(ctx, "current user unavailable after login",
			logger.Component("auth"),
			logger.Provider(method),
			logger.Error(err),
		)
		s.bus.Emit(ctx, s.names.AuthenticationFailure, Failure{Response: resp, Err: err})
		return resp, err
	}

	s.logger.DebugContext(ctx, "authenticated",
		logger.Component("auth"),
		logger.Provider(method),
	)
	s.bus.Emit(ctx, s.names.Authenticated, resp)
	return resp, nil
}

// EndSession logs out. SessionEnd is emitted whatever the transport outcome,
// which drops the cached user; a failed request is logged and returned.
func (s *Service) EndSession(ctx context.Context, opts ...client.RequestOption) error {
	_, err := s.api.Logout(ctx, opts...)
	if err != nil {
		err = errors.Join(ErrLogoutFailed, err)
		s.logger.ErrorContext(ctx, "logout request failed",
			logger.Component("auth"),
			logger.Error(err),
		)
	}
	s.bus.Emit(ctx, s.names.SessionEnd, nil)
	return err
}

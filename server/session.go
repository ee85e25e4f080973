package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/dmitrymomot/stormpath/client"
	"github.com/dmitrymomot/stormpath/core/logger"
	"github.com/dmitrymomot/stormpath/core/user"
	"github.com/dmitrymomot/stormpath/integration/database/redis"
	"github.com/dmitrymomot/stormpath/middleware"
)

// sessionCookies returns the session cookies the browser sent.
func (s *Server) sessionCookies(r *http.Request) []*http.Cookie {
	var out []*http.Cookie
	for _, name := range s.cfg.SessionCookies {
		if ck, err := r.Cookie(name); err == nil && ck.Value != "" {
			out = append(out, ck)
		}
	}
	return out
}

// sessionKey identifies the session for caching. Empty without a session.
func sessionKey(cookies []*http.Cookie) string {
	parts := make([]string, 0, len(cookies))
	for _, ck := range cookies {
		parts = append(parts, ck.Name+"="+ck.Value)
	}
	return strings.Join(parts, ";")
}

// apiOptions forwards the browser's cookies to the identity API.
func (s *Server) apiOptions(r *http.Request) []client.RequestOption {
	opts := []client.RequestOption{client.WithCookies(r.Cookies()...)}
	if id, ok := middleware.GetRequestID(r.Context()); ok {
		opts = append(opts, client.WithHeader("X-Request-ID", id))
	}
	return opts
}

// currentAccount resolves the session of r, from the cache when possible.
func (s *Server) currentAccount(r *http.Request) (client.Account, error) {
	ctx := r.Context()
	key := sessionKey(s.sessionCookies(r))
	if key == "" {
		s.metrics.UserLookups.WithLabelValues("none").Inc()
		return nil, middleware.ErrNoSession
	}

	if s.cache != nil {
		acct, err := s.cache.Get(ctx, key)
		if err == nil {
			s.metrics.UserLookups.WithLabelValues("cache").Inc()
			return acct, nil
		}
		if !errors.Is(err, redis.ErrCacheMiss) {
			s.logger.WarnContext(ctx, "user cache read failed",
				logger.Component("server"),
				logger.Error(err),
			)
		}
	}

	s.metrics.UserLookups.WithLabelValues("api").Inc()
	acct, err := s.api.CurrentUser(ctx, s.apiOptions(r)...)
	if err != nil {
		if !client.IsUnauthorized(err) {
			s.apiFailed("current_user", err)
		}
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, acct); err != nil {
			s.logger.WarnContext(ctx, "user cache write failed",
				logger.Component("server"),
				logger.Error(err),
			)
		}
	}
	return acct, nil
}

// forgetSession drops the cached account of the session of r.
func (s *Server) forgetSession(r *http.Request) {
	if s.cache == nil {
		return
	}
	key := sessionKey(s.sessionCookies(r))
	if key == "" {
		return
	}
	if err := s.cache.Delete(r.Context(), key); err != nil {
		s.logger.WarnContext(r.Context(), "user cache delete failed",
			logger.Component("server"),
			logger.Error(err),
		)
	}
}

// Resolver exposes the cached current-user lookup to middleware.User.
func (s *Server) Resolver() middleware.Resolver {
	return middleware.ResolverFunc(func(r *http.Request) (*user.User, error) {
		acct, err := s.currentAccount(r)
		if err != nil {
			return nil, err
		}
		return user.New(acct), nil
	})
}

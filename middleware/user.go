package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/dmitrymomot/stormpath/client"
	"github.com/dmitrymomot/stormpath/core/guard"
	"github.com/dmitrymomot/stormpath/core/handler"
	"github.com/dmitrymomot/stormpath/core/logger"
	"github.com/dmitrymomot/stormpath/core/response"
	"github.com/dmitrymomot/stormpath/core/user"
)

// ErrNoSession is returned by resolvers when the request carries no session.
var ErrNoSession = errors.New("no session")

type userContextKey struct{}

// Resolver looks up the account bound to the session of a request.
type Resolver interface {
	Resolve(r *http.Request) (*user.User, error)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(r *http.Request) (*user.User, error)

// Resolve calls f(r).
func (f ResolverFunc) Resolve(r *http.Request) (*user.User, error) {
	return f(r)
}

// WithUser stores u in ctx.
func WithUser(ctx context.Context, u *user.User) context.Context {
	return context.WithValue(ctx, userContextKey{}, u)
}

// GetUser returns the user resolved for the request, if any.
func GetUser(ctx context.Context) (*user.User, bool) {
	u, ok := ctx.Value(userContextKey{}).(*user.User)
	return u, ok && u != nil
}

// User resolves the current user for every request and stores it in the
// context. Requests without a session continue anonymously; resolver
// failures are logged and also continue anonymously.
func User(res Resolver, log *slog.Logger) func(http.Handler) http.Handler {
	log = logger.Default(log)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, err := res.Resolve(r)
			switch {
			case err == nil && u != nil:
				r = r.WithContext(WithUser(r.Context(), u))
			case err == nil, errors.Is(err, ErrNoSession), client.IsUnauthorized(err):
			default:
				log.WarnContext(r.Context(), "current user lookup failed",
					logger.Component("middleware"),
					logger.Path(r.URL.Path),
					logger.Error(err),
				)
			}
			next.ServeHTTP(w, r)
		})
	}
}

type guardConfig struct {
	loginURL     string
	errorHandler handler.ErrorHandler
}

// GuardOption configures LoginRequired and GroupsRequired.
type GuardOption func(*guardConfig)

// WithLoginRedirect sends anonymous browser requests (Accept: text/html) to
// loginURL with the original path in the "next" query parameter instead of
// answering 401.
func WithLoginRedirect(loginURL string) GuardOption {
	return func(c *guardConfig) {
		c.loginURL = loginURL
	}
}

// WithGuardErrorHandler sets how denials are rendered (default: JSON errors).
func WithGuardErrorHandler(h handler.ErrorHandler) GuardOption {
	return func(c *guardConfig) {
		if h != nil {
			c.errorHandler = h
		}
	}
}

func newGuardConfig(opts []GuardOption) guardConfig {
	cfg := guardConfig{errorHandler: response.JSONErrorHandler}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

func (c guardConfig) unauthenticated(w http.ResponseWriter, r *http.Request) {
	if c.loginURL != "" && strings.Contains(r.Header.Get("Accept"), "text/html") {
		target := c.loginURL + "?next=" + url.QueryEscape(r.URL.RequestURI())
		http.Redirect(w, r, target, http.StatusFound)
		return
	}
	c.errorHandler(w, r, response.ErrUnauthorized)
}

// LoginRequired rejects requests that User did not resolve to an account.
func LoginRequired(opts ...GuardOption) func(http.Handler) http.Handler {
	cfg := newGuardConfig(opts)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := GetUser(r.Context()); !ok {
				cfg.unauthenticated(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GroupsRequired admits users belonging to the listed groups: all of them
// when all is set, any of them otherwise. Entries are parsed with
// guard.ParseGroupMatcher, so "/^admins/i" style expressions are accepted.
// It panics if an entry does not compile.
func GroupsRequired(groups []string, all bool, opts ...GuardOption) func(http.Handler) http.Handler {
	cfg := newGuardConfig(opts)

	matchers := make([]*regexp.Regexp, 0, len(groups))
	for _, g := range groups {
		re, err := guard.ParseGroupMatcher(g)
		if err != nil {
			panic(err)
		}
		matchers = append(matchers, re)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := GetUser(r.Context())
			if !ok {
				cfg.unauthenticated(w, r)
				return
			}
			if !inGroups(u, matchers, all) {
				cfg.errorHandler(w, r, response.ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func inGroups(u *user.User, matchers []*regexp.Regexp, all bool) bool {
	if len(matchers) == 0 {
		return false
	}
	for _, re := range matchers {
		matched := u.MatchesGroupExpression(re)
		if all && !matched {
			return false
		}
		if !all && matched {
			return true
		}
	}
	return all
}

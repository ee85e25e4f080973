package middleware_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/stormpath/client"
	"github.com/dmitrymomot/stormpath/core/user"
	"github.com/dmitrymomot/stormpath/middleware"
)

func member(groups ...string) *user.User {
	items := make([]any, 0, len(groups))
	for _, g := range groups {
		items = append(items, map[string]any{"name": g})
	}
	return user.New(client.Account{
		"href":   "https://api/accounts/bob",
		"groups": map[string]any{"items": items},
	})
}

// resolveByHeader returns the account named by the X-User header.
func resolveByHeader(accounts map[string]*user.User) middleware.Resolver {
	return middleware.ResolverFunc(func(r *http.Request) (*user.User, error) {
		name := r.Header.Get("X-User")
		switch name {
		case "":
			return nil, middleware.ErrNoSession
		case "expired":
			return nil, &client.Error{Response: &client.Response{StatusCode: http.StatusUnauthorized}}
		case "broken":
			return nil, errors.New("identity API unreachable")
		}
		return accounts[name], nil
	})
}

func newGuardedRouter(opts ...middleware.GuardOption) http.Handler {
	accounts := map[string]*user.User{
		"bob":   member("users"),
		"admin": member("users", "admins-eu"),
	}

	r := chi.NewRouter()
	r.Use(middleware.User(resolveByHeader(accounts), nil))
	r.Get("/public", func(w http.ResponseWriter, r *http.Request) {
		if _, ok := middleware.GetUser(r.Context()); ok {
			w.Header().Set("X-Has-User", "yes")
		}
	})
	r.With(middleware.LoginRequired(opts...)).Get("/private", func(w http.ResponseWriter, r *http.Request) {
		u, _ := middleware.GetUser(r.Context())
		_, _ = w.Write([]byte(u.Href()))
	})
	r.With(middleware.GroupsRequired([]string{"/^admins/"}, false, opts...)).Get("/admin", func(http.ResponseWriter, *http.Request) {})
	r.With(middleware.GroupsRequired([]string{"users", "admins-eu"}, true, opts...)).Get("/both", func(http.ResponseWriter, *http.Request) {})
	return r
}

func get(h http.Handler, path, who string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if who != "" {
		req.Header.Set("X-User", who)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestUserMiddleware(t *testing.T) {
	t.Parallel()

	h := newGuardedRouter()

	assert.Equal(t, "yes", get(h, "/public", "bob").Header().Get("X-Has-User"))
	assert.Empty(t, get(h, "/public", "").Header().Get("X-Has-User"))
	assert.Empty(t, get(h, "/public", "expired").Header().Get("X-Has-User"))

	broken := get(h, "/public", "broken")
	assert.Equal(t, http.StatusOK, broken.Code, "lookup failures continue anonymously")
	assert.Empty(t, broken.Header().Get("X-Has-User"))
}

func TestLoginRequired(t *testing.T) {
	t.Parallel()

	h := newGuardedRouter()

	ok := get(h, "/private", "bob")
	assert.Equal(t, http.StatusOK, ok.Code)
	assert.Equal(t, "https://api/accounts/bob", ok.Body.String())

	denied := get(h, "/private", "")
	assert.Equal(t, http.StatusUnauthorized, denied.Code)
	assert.Contains(t, denied.Body.String(), `"code":"unauthorized"`)
}

func TestLoginRequiredRedirectsBrowsers(t *testing.T) {
	t.Parallel()

	h := newGuardedRouter(middleware.WithLoginRedirect("/login"))

	browser := get(h, "/private?tab=1", "", "Accept", "text/html,application/xhtml+xml")
	require.Equal(t, http.StatusFound, browser.Code)
	assert.Equal(t, "/login?next=%2Fprivate%3Ftab%3D1", browser.Header().Get("Location"))

	api := get(h, "/private", "", "Accept", "application/json")
	assert.Equal(t, http.StatusUnauthorized, api.Code)
}

func TestGroupsRequired(t *testing.T) {
	t.Parallel()

	h := newGuardedRouter()

	assert.Equal(t, http.StatusOK, get(h, "/admin", "admin").Code)
	assert.Equal(t, http.StatusForbidden, get(h, "/admin", "bob").Code)
	assert.Equal(t, http.StatusUnauthorized, get(h, "/admin", "").Code)

	assert.Equal(t, http.StatusOK, get(h, "/both", "admin").Code)
	assert.Equal(t, http.StatusForbidden, get(h, "/both", "bob").Code)
}

func TestGroupsRequiredPanicsOnInvalidExpression(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() {
		middleware.GroupsRequired([]string{"/admins/x"}, false)
	})
}

func TestGetUserWithoutMiddleware(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := middleware.GetUser(req.Context())
	assert.False(t, ok)

	_, ok = middleware.GetUser(middleware.WithUser(req.Context(), nil))
	assert.False(t, ok)
}

package server_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/dmitrymomot/stormpath/integration/database/redis"
	"github.com/dmitrymomot/stormpath/middleware"
	"github.com/dmitrymomot/stormpath/server"
	"github.com/dmitrymomot/stormpath/social"
)

// fakeAPI imitates the hosted identity API.
type fakeAPI struct {
	*httptest.Server
	meCalls     atomic.Int32
	logoutCalls atomic.Int32
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()
	api := &fakeAPI{}
	mux := http.NewServeMux()

	mux.HandleFunc("GET /me", func(w http.ResponseWriter, r *http.Request) {
		api.meCalls.Add(1)
		ck, err := r.Cookie("access_token")
		if err != nil || ck.Value != "good" {
			writeJSON(w, http.StatusUnauthorized, `{"errorMessage":"Not logged in."}`)
			return
		}
		writeJSON(w, http.StatusOK, `{"href":"https://api/accounts/alice","email":"alice@example.com","groups":{"items":[{"name":"admins"}]}}`)
	})

	mux.HandleFunc("POST /oauth/token", func(w http.ResponseWriter, r *http.Request) {
		id, secret, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "key-id", id)
		assert.Equal(t, "key-secret", secret)
		assert.NoError(t, r.ParseForm())

		switch r.URL.Query().Get("grant_type") {
		case "password":
			if r.PostForm.Get("username") != "alice" || r.PostForm.Get("password") != "secret" {
				writeJSON(w, http.StatusBadRequest, `{"errorMessage":"Invalid username or password."}`)
				return
			}
		case "social":
			if r.PostForm.Get("providerData[providerId]") != "google" || r.PostForm.Get("providerData[accessToken]") != "gtok" {
				writeJSON(w, http.StatusBadRequest, `{"errorMessage":"Invalid provider token."}`)
				return
			}
		default:
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "access_token", Value: "good", Path: "/", HttpOnly: true})
		writeJSON(w, http.StatusOK, `{"access_token":"good"}`)
	})

	mux.HandleFunc("GET /logout", func(w http.ResponseWriter, _ *http.Request) {
		api.logoutCalls.Add(1)
		http.SetCookie(w, &http.Cookie{Name: "access_token", Path: "/", MaxAge: -1})
		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("POST /register", func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		if strings.HasPrefix(r.PostForm.Get("email"), "pending") {
			writeJSON(w, http.StatusAccepted, `{"email":"pending@example.com","status":"UNVERIFIED"}`)
			return
		}
		writeJSON(w, http.StatusCreated, `{"email":"`+r.PostForm.Get("email")+`","status":"ENABLED","givenName":"`+r.PostForm.Get("givenName")+`"}`)
	})

	mux.HandleFunc("POST /forgot", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, `{}`)
	})

	mux.HandleFunc("GET /change", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("sptoken") != "valid" {
			writeJSON(w, http.StatusNotFound, `{"errorMessage":"Token not found."}`)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	mux.HandleFunc("POST /verify", func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "alice@example.com", r.PostForm.Get("login"))
		w.WriteHeader(http.StatusAccepted)
	})

	api.Server = httptest.NewServer(mux)
	t.Cleanup(api.Close)
	return api
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func baseConfig(apiURL string) server.Config {
	return server.Config{
		APIKeyID:          "key-id",
		APIKeySecret:      "key-secret",
		APIURL:            apiURL,
		PostLoginRedirect: "/dashboard",
	}
}

func newServer(t *testing.T, api *fakeAPI, opts ...server.Option) *server.Server {
	t.Helper()
	srv, err := server.New(baseConfig(api.URL), opts...)
	require.NoError(t, err)
	return srv
}

func do(h http.Handler, method, target string, body url.Values, headers ...string) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != nil {
		rd = strings.NewReader(body.Encode())
	}
	req := httptest.NewRequest(method, target, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Add(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func cookieNamed(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, ck := range w.Result().Cookies() {
		if ck.Name == name {
			return ck
		}
	}
	return nil
}

func TestNewValidatesConfig(t *testing.T) {
	t.Parallel()

	_, err := server.New(server.Config{APIURL: "https://api"})
	require.ErrorIs(t, err, server.ErrMissingAPIKey)

	_, err = server.New(server.Config{APIKeyID: "a", APIKeySecret: "b"})
	require.ErrorIs(t, err, server.ErrMissingAPIURL)

	_, err = server.New(server.Config{APIKeyID: "a", APIKeySecret: "b", APIURL: "not a url"})
	require.Error(t, err)

	assert.Panics(t, func() { server.MustNew(server.Config{}) })
}

func TestMe(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(t)
	h := newServer(t, api).Handler()

	anon := do(h, http.MethodGet, "/me", nil)
	assert.Equal(t, http.StatusUnauthorized, anon.Code)
	assert.Zero(t, api.meCalls.Load(), "requests without session cookies never reach the API")

	expired := do(h, http.MethodGet, "/me", nil, "Cookie", "access_token=stale")
	assert.Equal(t, http.StatusUnauthorized, expired.Code)
	assert.Contains(t, expired.Body.String(), "Not logged in.")

	ok := do(h, http.MethodGet, "/me", nil, "Cookie", "access_token=good")
	require.Equal(t, http.StatusOK, ok.Code)
	var acct map[string]any
	require.NoError(t, json.Unmarshal(ok.Body.Bytes(), &acct))
	assert.Equal(t, "alice@example.com", acct["email"])
}

func TestMeUsesUserCache(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	api := newFakeAPI(t)
	srv := newServer(t, api, server.WithUserCache(redis.NewUserCache(rdb)))
	h := srv.Handler()

	for range 3 {
		w := do(h, http.MethodGet, "/me", nil, "Cookie", "access_token=good")
		require.Equal(t, http.StatusOK, w.Code)
	}
	assert.Equal(t, int32(1), api.meCalls.Load())
	assert.Equal(t, 2.0, testutil.ToFloat64(srv.Metrics().UserLookups.WithLabelValues("cache")))

	logout := do(h, http.MethodGet, "/logout", nil, "Cookie", "access_token=good")
	assert.Equal(t, http.StatusNoContent, logout.Code)
	assert.Empty(t, mr.Keys(), "logout drops the cached account")

	do(h, http.MethodGet, "/me", nil, "Cookie", "access_token=good")
	assert.Equal(t, int32(2), api.meCalls.Load())
}

func TestLogin(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(t)
	srv := newServer(t, api)
	h := srv.Handler()

	t.Run("api client gets the raw answer", func(t *testing.T) {
		w := do(h, http.MethodPost, "/oauth/token", url.Values{"username": {"alice"}, "password": {"secret"}})
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"access_token":"good"}`, w.Body.String())
		ck := cookieNamed(w, "access_token")
		require.NotNil(t, ck)
		assert.Equal(t, "good", ck.Value)
	})

	t.Run("browser is redirected with cookies", func(t *testing.T) {
		w := do(h, http.MethodPost, "/oauth/token",
			url.Values{"login": {"alice"}, "password": {"secret"}, "next": {"/settings"}},
			"Accept", "text/html")
		require.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/settings", w.Header().Get("Location"))
		assert.NotNil(t, cookieNamed(w, "access_token"))
	})

	t.Run("open redirects fall back to the default", func(t *testing.T) {
		w := do(h, http.MethodPost, "/oauth/token",
			url.Values{"username": {"alice"}, "password": {"secret"}, "next": {"//evil.example"}},
			"Accept", "text/html")
		assert.Equal(t, "/dashboard", w.Header().Get("Location"))
	})

	t.Run("rejected credentials keep the api status and message", func(t *testing.T) {
		w := do(h, http.MethodPost, "/oauth/token", url.Values{"username": {"alice"}, "password": {"nope"}})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Invalid username or password.")
		assert.Nil(t, cookieNamed(w, "access_token"))
	})

	t.Run("missing credentials", func(t *testing.T) {
		w := do(h, http.MethodPost, "/oauth/token", url.Values{"username": {"alice"}})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	assert.Equal(t, 3.0, testutil.ToFloat64(srv.Metrics().Logins.WithLabelValues("password", "success")))
	assert.Equal(t, 2.0, testutil.ToFloat64(srv.Metrics().Logins.WithLabelValues("password", "failure")))
}

func TestLoginIsRateLimited(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(t)
	cfg := baseConfig(api.URL)
	cfg.LoginRate = 0.001
	cfg.LoginBurst = 1
	srv, err := server.New(cfg)
	require.NoError(t, err)
	h := srv.Handler()

	creds := url.Values{"username": {"alice"}, "password": {"secret"}}
	assert.Equal(t, http.StatusOK, do(h, http.MethodPost, "/oauth/token", creds).Code)
	assert.Equal(t, http.StatusTooManyRequests, do(h, http.MethodPost, "/oauth/token", creds).Code)
}

func TestLogout(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(t)
	h := newServer(t, api).Handler()

	w := do(h, http.MethodGet, "/logout", nil, "Cookie", "access_token=good; refresh_token=r", "Accept", "text/html")
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
	assert.Equal(t, int32(1), api.logoutCalls.Load())

	refresh := cookieNamed(w, "refresh_token")
	require.NotNil(t, refresh, "cookies the api left alone are expired locally")
	assert.Negative(t, refresh.MaxAge)
}

func TestLogoutWithUnreachableAPI(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(t)
	srv := newServer(t, api)
	api.Close()

	w := do(srv.Handler(), http.MethodGet, "/logout", nil, "Cookie", "access_token=good")
	assert.Equal(t, http.StatusNoContent, w.Code)
	ck := cookieNamed(w, "access_token")
	require.NotNil(t, ck)
	assert.Negative(t, ck.MaxAge)
}

func TestRegister(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(t)
	h := newServer(t, api).Handler()

	created := do(h, http.MethodPost, "/register", url.Values{
		"email": {"bob@example.com"}, "password": {"pw"}, "givenName": {"Bob"},
	})
	require.Equal(t, http.StatusCreated, created.Code)
	var body struct {
		Account map[string]any `json:"account"`
		Status  string         `json:"status"`
	}
	require.NoError(t, json.Unmarshal(created.Body.Bytes(), &body))
	assert.Equal(t, "ENABLED", body.Status)
	assert.Equal(t, "Bob", body.Account["givenName"])

	pending := do(h, http.MethodPost, "/register", url.Values{"email": {"pending@example.com"}, "password": {"pw"}})
	assert.Equal(t, http.StatusAccepted, pending.Code)
	assert.Contains(t, pending.Body.String(), "UNVERIFIED")

	invalid := do(h, http.MethodPost, "/register", url.Values{"email": {"x@example.com"}})
	assert.Equal(t, http.StatusUnprocessableEntity, invalid.Code)
}

func TestRegisterAcceptsJSON(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(t)
	h := newServer(t, api).Handler()

	req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(`{"email":"carol@example.com","password":"pw"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusCreated, w.Code)

	bad := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(`{`))
	bad.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, bad)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPasswordAndVerificationFlows(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(t)
	h := newServer(t, api).Handler()

	assert.Equal(t, http.StatusOK, do(h, http.MethodPost, "/forgot", url.Values{"email": {"alice@example.com"}}).Code)
	assert.Equal(t, http.StatusUnprocessableEntity, do(h, http.MethodPost, "/forgot", url.Values{}).Code)

	assert.Equal(t, http.StatusOK, do(h, http.MethodGet, "/change?sptoken=valid", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(h, http.MethodGet, "/change?sptoken=other", nil).Code)
	assert.Equal(t, http.StatusUnprocessableEntity, do(h, http.MethodGet, "/change", nil).Code)

	assert.Equal(t, http.StatusAccepted, do(h, http.MethodPost, "/verify", url.Values{"email": {"alice@example.com"}}).Code)
}

func TestBodyLimit(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(t)
	cfg := baseConfig(api.URL)
	cfg.BodyLimit = 16
	srv, err := server.New(cfg)
	require.NoError(t, err)

	w := do(srv.Handler(), http.MethodPost, "/register", url.Values{"email": {strings.Repeat("a", 64)}})
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestGoogleLogin(t *testing.T) {
	t.Parallel()

	tokens := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		if r.PostForm.Get("code") != "good" {
			writeJSON(w, http.StatusBadRequest, `{"error":"invalid_grant"}`)
			return
		}
		writeJSON(w, http.StatusOK, `{"access_token":"gtok","token_type":"Bearer"}`)
	}))
	t.Cleanup(tokens.Close)

	google, err := social.New(social.GoogleProviderID, oauth2.Endpoint{
		AuthURL:   tokens.URL + "/auth",
		TokenURL:  tokens.URL + "/token",
		AuthStyle: oauth2.AuthStyleInParams,
	}, social.Config{ClientID: "cid", ClientSecret: "cs", RedirectURL: "https://app/callbacks/google"},
		social.WithHTTPClient(tokens.Client()))
	require.NoError(t, err)

	api := newFakeAPI(t)
	srv := newServer(t, api, server.WithSocialProvider(google))
	h := srv.Handler()

	start := do(h, http.MethodGet, "/login/google", nil)
	require.Equal(t, http.StatusFound, start.Code)
	state := cookieNamed(start, "oauth_state")
	require.NotNil(t, state)
	loc, err := url.Parse(start.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, state.Value, loc.Query().Get("state"))

	t.Run("state mismatch", func(t *testing.T) {
		w := do(h, http.MethodGet, "/callbacks/google?code=good&state=forged", nil, "Cookie", "oauth_state="+state.Value)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rejected code", func(t *testing.T) {
		w := do(h, http.MethodGet, "/callbacks/google?code=bad&state="+state.Value, nil, "Cookie", "oauth_state="+state.Value)
		assert.Equal(t, http.StatusBadGateway, w.Code)
	})

	t.Run("success", func(t *testing.T) {
		w := do(h, http.MethodGet, "/callbacks/google?code=good&state="+state.Value, nil, "Cookie", "oauth_state="+state.Value)
		require.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/dashboard", w.Header().Get("Location"))
		ck := cookieNamed(w, "access_token")
		require.NotNil(t, ck)
		assert.Equal(t, "good", ck.Value)
	})

	assert.Equal(t, 1.0, testutil.ToFloat64(srv.Metrics().Logins.WithLabelValues("google", "success")))
}

func TestGoogleDisabled(t *testing.T) {
	t.Parallel()

	h := newServer(t, newFakeAPI(t)).Handler()
	assert.Equal(t, http.StatusNotFound, do(h, http.MethodGet, "/login/google", nil).Code)
}

func TestResolverFeedsUserMiddleware(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(t)
	srv := newServer(t, api)

	app := middleware.User(srv.Resolver(), nil)(
		middleware.GroupsRequired([]string{"admins"}, false)(
			http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				u, _ := middleware.GetUser(r.Context())
				_, _ = io.WriteString(w, u.Email())
			}),
		),
	)

	ok := do(app, http.MethodGet, "/admin", nil, "Cookie", "access_token=good")
	assert.Equal(t, http.StatusOK, ok.Code)
	assert.Equal(t, "alice@example.com", ok.Body.String())

	assert.Equal(t, http.StatusUnauthorized, do(app, http.MethodGet, "/admin", nil).Code)
}

func TestHealthAndMetrics(t *testing.T) {
	t.Parallel()

	h := newServer(t, newFakeAPI(t)).Handler()

	assert.Equal(t, "ALIVE", do(h, http.MethodGet, "/health/live", nil).Body.String())
	assert.Equal(t, "READY", do(h, http.MethodGet, "/health/ready", nil).Body.String())

	do(h, http.MethodGet, "/me", nil)
	metrics := do(h, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, metrics.Code)
	assert.Contains(t, metrics.Body.String(), `stormpath_user_lookups_total{source="none"} 1`)
}

func TestCORSAndSecurityHeaders(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(t)

	t.Run("cors disabled by default", func(t *testing.T) {
		t.Parallel()

		w := do(newServer(t, api).Handler(), http.MethodGet, "/health/live", nil, "Origin", "https://app.example")
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
		assert.NotEmpty(t, w.Header().Get("Strict-Transport-Security"))
	})

	cfg := baseConfig(api.URL)
	cfg.AllowedOrigins = []string{"https://app.example"}
	cfg.DisableHSTS = true
	srv, err := server.New(cfg)
	require.NoError(t, err)
	h := srv.Handler()

	t.Run("preflight from allowed origin", func(t *testing.T) {
		t.Parallel()

		w := do(h, http.MethodOptions, "/oauth/token", nil,
			"Origin", "https://app.example",
			"Access-Control-Request-Method", http.MethodPost)
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "https://app.example", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
		assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
		assert.Empty(t, w.Header().Get("Strict-Transport-Security"))
	})

	t.Run("preflight from unknown origin", func(t *testing.T) {
		t.Parallel()

		w := do(h, http.MethodOptions, "/oauth/token", nil,
			"Origin", "https://evil.example",
			"Access-Control-Request-Method", http.MethodPost)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

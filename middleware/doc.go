// Package middleware provides net/http middleware for applications served
// behind the identity API: request ids, request logging, body size limits,
// CORS, security headers and session guards backed by the current-user lookup.
//
// All middleware has the func(http.Handler) http.Handler shape and plugs into
// chi or any other router:
//
//	r := chi.NewRouter()
//	r.Use(middleware.CORSWithConfig(middleware.CORSConfig{AllowOrigins: origins, AllowCredentials: true}))
//	r.Use(middleware.SecurityHeadersWithConfig(middleware.APISecurity))
//	r.Use(middleware.RequestID())
//	r.Use(middleware.Logging(log))
//	r.Use(middleware.BodyLimit(1 << 20))
//	r.Use(middleware.User(resolver, log))
//
//	r.Group(func(r chi.Router) {
//		r.Use(middleware.LoginRequired())
//		r.Get("/dashboard", dashboard)
//	})
//	r.With(middleware.GroupsRequired([]string{"admins"}, true)).Get("/admin", admin)
//	r.With(middleware.RateLimit(middleware.RateLimitConfig{Rate: 1, Burst: 5})).Post("/login", login)
//
// User resolves the account once per request and stores it in the request
// context; handlers read it with GetUser. A request without a session simply
// carries no user. LoginRequired and GroupsRequired answer 401 and 403 with
// JSON error bodies, or redirect browsers when configured to. RateLimit keeps
// a token bucket per client address for the credential endpoints. CORS
// answers preflights itself, so mount it first.
package middleware

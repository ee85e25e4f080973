// Package server mounts the identity endpoints on a chi router and proxies
// them to the hosted identity API on behalf of browsers.
//
//	srv, err := server.New(cfg,
//		server.WithLogger(log),
//		server.WithUserCache(redis.NewUserCache(rdb)),
//	)
//	if err != nil {
//		return err
//	}
//	http.ListenAndServe(":8080", srv.Handler())
//
// Routes:
//
//	GET  /me                current account (401 without a session)
//	POST /oauth/token       password login; relays the session cookies
//	GET  /logout            ends the session and drops the cached account
//	POST /register          creates an account (201 enabled, 202 unverified)
//	POST /forgot            sends a password reset email
//	GET  /change?sptoken=   checks a reset token
//	POST /change            sets a new password
//	GET  /verify?sptoken=   consumes an email verification token
//	POST /verify            resends the verification email
//	GET  /login/google      starts the Google authorization code flow
//	GET  /callbacks/google  finishes it and logs the account in
//	GET  /health/live, /health/ready, /metrics
//
// Browser cookies are forwarded to the API and the API's Set-Cookie headers
// are relayed back. The account behind a session is cached, keyed by a
// digest of the session cookies, for Config.UserCacheTTL. Resolver exposes the
// same lookup to middleware.User for host applications.
//
// Every answer carries the middleware.APISecurity headers. Setting
// Config.AllowedOrigins enables credentialed CORS for those origins.
package server

// Package client is an HTTP client for the hosted identity API.
//
// It covers the request/response surface the SDK depends on: the current
// user query, password-grant token login, social login, session logout,
// account registration, password reset, and email verification. Credentials
// travel as cookies; the default Client keeps a cookie jar so a login followed
// by CurrentUser behaves like a browser session.
//
//	c, err := client.New("https://id.example.com",
//		client.WithLogger(log),
//	)
//
//	if _, err := c.Login(ctx, "alice@example.com", "secret"); err != nil {
//		if client.IsUnauthorized(err) { ... }
//	}
//
//	acct, err := c.CurrentUser(ctx)
//
// Failed calls return *Error carrying the raw response and the API's
// errorMessage. Server-side callers forward a browser's cookies per request
// with WithCookies instead of relying on the jar.
package client

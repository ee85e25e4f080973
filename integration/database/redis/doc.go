// Package redis connects to Redis and caches identity API accounts per
// browser session for the server-side wrapper.
//
// Connect validates the URL, retries with exponential backoff until the server
// answers PING and returns a ready client:
//
//	client, err := redis.Connect(ctx, redis.Config{ConnectionURL: "redis://localhost:6379/0"})
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
// UserCache stores the account resolved for a session so repeated requests do
// not hit the identity API. Keys are a SHA-256 digest of the session token,
// never the token itself:
//
//	cache := redis.NewUserCache(client, redis.WithTTL(5*time.Minute))
//	acct, err := cache.Get(ctx, accessToken)
//	if errors.Is(err, redis.ErrCacheMiss) {
//		// resolve through the API, then cache.Set(ctx, accessToken, acct)
//	}
//
// Healthcheck returns a probe suitable for readiness endpoints.
//
// Errors are sentinels checked with errors.Is: ErrEmptyURL, ErrInvalidURL,
// ErrNotReady, ErrHealthcheckFailed and ErrCacheMiss.
package redis

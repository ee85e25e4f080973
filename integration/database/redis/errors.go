package redis

import "errors"

var (
	ErrEmptyURL          = errors.New("redis: connection URL is required")
	ErrInvalidURL        = errors.New("redis: connection URL must use redis:// or rediss://")
	ErrNotReady          = errors.New("redis: server did not answer PING")
	ErrHealthcheckFailed = errors.New("redis: healthcheck failed")
	// ErrCacheMiss is returned by UserCache.Get for unknown or expired sessions.
	ErrCacheMiss = errors.New("redis: user not cached")
)

package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/stormpath/client"
)

// Defaults for UserCache.
const (
	DefaultUserKeyPrefix = "stormpath:user:"
	DefaultUserTTL       = 5 * time.Minute
)

// UserCache stores accounts keyed by a digest of the session token.
type UserCache struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// CacheOption configures a UserCache.
type CacheOption func(*UserCache)

// WithKeyPrefix sets the key namespace.
func WithKeyPrefix(prefix string) CacheOption {
	return func(c *UserCache) {
		if prefix != "" {
			c.prefix = prefix
		}
	}
}

// WithTTL sets how long an entry lives.
func WithTTL(ttl time.Duration) CacheOption {
	return func(c *UserCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// NewUserCache creates a cache on top of an existing client.
func NewUserCache(client redis.UniversalClient, opts ...CacheOption) *UserCache {
	c := &UserCache{
		client: client,
		prefix: DefaultUserKeyPrefix,
		ttl:    DefaultUserTTL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *UserCache) key(session string) string {
	sum := sha256.Sum256([]byte(session))
	return c.prefix + hex.EncodeToString(sum[:])
}

// Get returns the cached account for session or ErrCacheMiss.
func (c *UserCache) Get(ctx context.Context, session string) (client.Account, error) {
	if session == "" {
		return nil, ErrCacheMiss
	}

	data, err := c.client.Get(ctx, c.key(session)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("get cached user: %w", err)
	}

	var acct client.Account
	if err := json.Unmarshal(data, &acct); err != nil {
		return nil, fmt.Errorf("decode cached user: %w", err)
	}
	return acct, nil
}

// Set caches acct for session.
func (c *UserCache) Set(ctx context.Context, session string, acct client.Account) error {
	if session == "" {
		return nil
	}

	data, err := json.Marshal(acct)
	if err != nil {
		return fmt.Errorf("encode cached user: %w", err)
	}
	return c.client.Set(ctx, c.key(session), data, c.ttl).Err()
}

// Delete drops the entry for session.
func (c *UserCache) Delete(ctx context.Context, session string) error {
	if session == "" {
		return nil
	}
	return c.client.Del(ctx, c.key(session)).Err()
}

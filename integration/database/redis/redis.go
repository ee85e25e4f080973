package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/redis/go-redis/v9"
)

// Config holds the Redis connection settings.
type Config struct {
	ConnectionURL  string        `env:"URL" envDefault:"redis://localhost:6379/0"`
	RetryAttempts  int           `env:"RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval  time.Duration `env:"RETRY_INTERVAL" envDefault:"5s"`
	ConnectTimeout time.Duration `env:"CONNECT_TIMEOUT" envDefault:"30s"`
}

// Connect creates a client and waits until Redis answers PING, retrying with
// exponential backoff. The whole attempt is bounded by cfg.ConnectTimeout.
func Connect(ctx context.Context, cfg Config) (*redis.Client, error) {
	if cfg.ConnectionURL == "" {
		return nil, ErrEmptyURL
	}
	if !strings.HasPrefix(cfg.ConnectionURL, "redis://") && !strings.HasPrefix(cfg.ConnectionURL, "rediss://") {
		return nil, ErrInvalidURL
	}

	opts, err := redis.ParseURL(cfg.ConnectionURL)
	if err != nil {
		return nil, errors.Join(ErrInvalidURL, err)
	}

	if cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
	}

	attempts := max(cfg.RetryAttempts, 1)
	client := redis.NewClient(opts)

	bo := backoff.NewExponentialBackOff()
	if cfg.RetryInterval > 0 {
		bo.InitialInterval = cfg.RetryInterval
		bo.MaxInterval = 60 * cfg.RetryInterval
	}
	bo.Reset()

	_, err = backoff.Retry(ctx, func() (string, error) {
		return client.Ping(ctx).Result()
	},
		backoff.WithBackOff(bo),
		backoff.WithMaxTries(uint(attempts)), // #nosec G115 -- attempts is at least 1
	)
	if err != nil {
		_ = client.Close()
		return nil, errors.Join(ErrNotReady, err)
	}
	return client, nil
}

// Healthcheck returns a probe that pings Redis.
func Healthcheck(client redis.UniversalClient) func(context.Context) error {
	return func(ctx context.Context) error {
		if err := client.Ping(ctx).Err(); err != nil {
			return errors.Join(ErrHealthcheckFailed, fmt.Errorf("ping: %w", err))
		}
		return nil
	}
}

package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/stormpath/core/config"
	"github.com/dmitrymomot/stormpath/core/httpserver"
	"github.com/dmitrymomot/stormpath/core/logger"
	"github.com/dmitrymomot/stormpath/integration/database/redis"
	"github.com/dmitrymomot/stormpath/server"
)

// EnvPrefix prefixes every variable the server reads.
const EnvPrefix = "STORMPATH_SERVER_"

// Config is the full process configuration.
type Config struct {
	Server server.Config
	HTTP   httpserver.Config

	// RedisEnabled caches current users in Redis between requests.
	RedisEnabled bool         `env:"REDIS_ENABLED" envDefault:"false"`
	Redis        redis.Config `envPrefix:"REDIS_"`
}

func newServeCmd() *cobra.Command {
	var checkConfig bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			log := newLogger(debug)

			var cfg Config
			if err := config.Parse(&cfg, EnvPrefix); err != nil {
				log.Error("invalid configuration", logger.Error(err))
				return err
			}
			if checkConfig {
				cmd.Printf("listen: %s\napi: %s\nredis: %t\n", cfg.HTTP.Addr, cfg.Server.APIURL, cfg.RedisEnabled)
				return nil
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := serve(ctx, cfg, log); err != nil {
				log.Error("server stopped", logger.Error(err))
				return err
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&checkConfig, "check-config", false, "Print the resolved configuration and exit")
	return cmd
}

func newLogger(debug bool) *slog.Logger {
	if debug {
		return logger.New(logger.WithDevelopment("stormpath-server"), logger.WithOutput(os.Stderr))
	}
	return logger.New(logger.WithProduction("stormpath-server"), logger.WithOutput(os.Stderr))
}

func serve(ctx context.Context, cfg Config, log *slog.Logger) error {
	opts := []server.Option{server.WithLogger(log)}

	if cfg.RedisEnabled {
		rdb, err := redis.Connect(ctx, cfg.Redis)
		if err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		defer rdb.Close()

		opts = append(opts,
			server.WithUserCache(redis.NewUserCache(rdb, redis.WithTTL(cfg.Server.UserCacheTTL))),
			server.WithHealthchecks(redis.Healthcheck(rdb)),
		)
	}

	srv, err := server.New(cfg.Server, opts...)
	if err != nil {
		return err
	}

	httpSrv, err := httpserver.NewFromConfig(cfg.HTTP, httpserver.WithLogger(log))
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(httpSrv.Run(ctx, srv.Handler()))

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

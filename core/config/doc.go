// Package config provides type-safe environment variable loading with caching
// using Go generics. Each configuration type is loaded once and cached for
// subsequent calls.
//
// The package loads a .env file (if present) on first use and uses the
// caarlos0/env library for parsing environment variables into struct fields.
//
//	type Settings struct {
//		BaseURL string `env:"BASE_URL,required"`
//	}
//
//	var s Settings
//	if err := config.Load(&s); err != nil {
//		log.Fatal(err)
//	}
//
//	// Or panic on failure (useful for startup)
//	config.MustLoad(&s)
//
// Parse skips the cache and accepts a variable prefix, which is how the SDK
// loads its STORMPATH_* settings:
//
//	var cfg stormpath.Config
//	err := config.Parse(&cfg, "STORMPATH_")
package config

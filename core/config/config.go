package config

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// ErrNotPointer is returned when the target is not a non-nil pointer to a struct.
var ErrNotPointer = errors.New("config: target must be a non-nil pointer to a struct")

var (
	dotenvOnce sync.Once
	cacheMu    sync.Mutex
	cache      = make(map[reflect.Type]any)
)

// loadDotenv reads .env once; a missing file is not an error.
func loadDotenv() {
	dotenvOnce.Do(func() {
		_ = godotenv.Load()
	})
}

// Load parses environment variables into cfg. The first successful load of a
// given type is cached and copied into later targets of the same type.
func Load[T any](cfg *T) error {
	if cfg == nil {
		return ErrNotPointer
	}
	t := reflect.TypeOf(cfg).Elem()
	if t.Kind() != reflect.Struct {
		return ErrNotPointer
	}

	cacheMu.Lock()
	defer cacheMu.Unlock()

	if cached, ok := cache[t]; ok {
		*cfg = cached.(T)
		return nil
	}

	if err := Parse(cfg); err != nil {
		return err
	}
	cache[t] = *cfg
	return nil
}

// MustLoad is like Load but panics on failure. Intended for startup.
func MustLoad[T any](cfg *T) {
	if err := Load(cfg); err != nil {
		panic(err)
	}
}

// Parse parses environment variables into cfg without caching.
// An optional prefix is prepended to every env tag.
func Parse[T any](cfg *T, prefix ...string) error {
	if cfg == nil {
		return ErrNotPointer
	}
	loadDotenv()

	opts := env.Options{}
	if len(prefix) > 0 {
		opts.Prefix = prefix[0]
	}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return fmt.Errorf("config: parse %T: %w", *cfg, err)
	}
	return nil
}

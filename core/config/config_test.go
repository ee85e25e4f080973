package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/stormpath/core/config"
)

type cachedConfig struct {
	Name string `env:"CFG_TEST_CACHED_NAME" envDefault:"default"`
}

type prefixedConfig struct {
	URL     string        `env:"URL,required"`
	Timeout time.Duration `env:"TIMEOUT" envDefault:"5s"`
}

type requiredConfig struct {
	Secret string `env:"CFG_TEST_REQUIRED_SECRET,required"`
}

func TestLoadCachesPerType(t *testing.T) {
	t.Setenv("CFG_TEST_CACHED_NAME", "first")

	var a cachedConfig
	require.NoError(t, config.Load(&a))
	assert.Equal(t, "first", a.Name)

	t.Setenv("CFG_TEST_CACHED_NAME", "second")

	var b cachedConfig
	require.NoError(t, config.Load(&b))
	assert.Equal(t, "first", b.Name, "second load must come from cache")
}

func TestParseWithPrefix(t *testing.T) {
	t.Setenv("APP_URL", "https://example.com")
	t.Setenv("APP_TIMEOUT", "2s")

	var cfg prefixedConfig
	require.NoError(t, config.Parse(&cfg, "APP_"))
	assert.Equal(t, "https://example.com", cfg.URL)
	assert.Equal(t, 2*time.Second, cfg.Timeout)
}

func TestParseRequiredMissing(t *testing.T) {
	var cfg requiredConfig
	err := config.Parse(&cfg)
	require.Error(t, err)

	assert.Panics(t, func() {
		config.MustLoad(&requiredConfig{})
	})
}

func TestLoadNil(t *testing.T) {
	var cfg *cachedConfig
	require.ErrorIs(t, config.Load(cfg), config.ErrNotPointer)
}

package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randomairborne/tunnelbana/core/config"
)

func TestLoadDefaults(t *testing.T) {
	type defaultsConfig struct {
		Addr string `env:"TEST_DEFAULTS_ADDR" envDefault:":8080"`
		Dir  string `env:"TEST_DEFAULTS_DIR" envDefault:"."`
	}

	var cfg defaultsConfig
	require.NoError(t, config.Load(&cfg))

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, ".", cfg.Dir)
}

func TestLoadFromEnvironment(t *testing.T) {
	type envConfig struct {
		Addr string `env:"TEST_ENV_ADDR" envDefault:":8080"`
	}

	t.Setenv("TEST_ENV_ADDR", ":9999")

	var cfg envConfig
	require.NoError(t, config.Load(&cfg))
	assert.Equal(t, ":9999", cfg.Addr)
}

func TestLoadCachesPerType(t *testing.T) {
	type cachedConfig struct {
		Value string `env:"TEST_CACHED_VALUE" envDefault:"first"`
	}

	var first cachedConfig
	require.NoError(t, config.Load(&first))
	assert.Equal(t, "first", first.Value)

	// Later environment changes no longer affect this type.
	t.Setenv("TEST_CACHED_VALUE", "second")

	var again cachedConfig
	require.NoError(t, config.Load(&again))
	assert.Equal(t, "first", again.Value)
}

func TestLoadRequiredMissing(t *testing.T) {
	type requiredConfig struct {
		Token string `env:"TEST_REQUIRED_TOKEN,required"`
	}

	var cfg requiredConfig
	err := config.Load(&cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TEST_REQUIRED_TOKEN")
}

func TestLoadRejectsNonPointer(t *testing.T) {
	type anyConfig struct{}

	assert.ErrorIs(t, config.Load(anyConfig{}), config.ErrNotStructPointer)
	assert.ErrorIs(t, config.Load(nil), config.ErrNotStructPointer)

	var s string
	assert.ErrorIs(t, config.Load(&s), config.ErrNotStructPointer)
}

func TestMustLoadPanics(t *testing.T) {
	type mustConfig struct {
		Token string `env:"TEST_MUST_TOKEN,required"`
	}

	assert.Panics(t, func() {
		config.MustLoad(&mustConfig{})
	})
}

func TestLoadEnvFiles(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, "custom.env")
	require.NoError(t, os.WriteFile(envFile, []byte("TEST_ENVFILE_VALUE=from-file\n"), 0o644))

	// An absent file is skipped, a present one is loaded.
	require.NoError(t, config.LoadEnvFiles(filepath.Join(dir, "missing.env"), envFile))

	t.Cleanup(func() { os.Unsetenv("TEST_ENVFILE_VALUE") })
	assert.Equal(t, "from-file", os.Getenv("TEST_ENVFILE_VALUE"))
}

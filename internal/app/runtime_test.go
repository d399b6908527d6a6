package app

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/quarrylab/quarry/internal/testing/guard"
)

func TestInTestMode(t *testing.T) {
	// The guard import sets QUARRY_TEST_MODE before any package init runs.
	assert.True(t, InTestMode())
}

func TestRefreshTestMode(t *testing.T) {
	t.Setenv("QUARRY_TEST_MODE", "0")
	RefreshTestMode()
	assert.False(t, InTestMode())

	t.Setenv("QUARRY_TEST_MODE", "1")
	RefreshTestMode()
	assert.True(t, InTestMode())
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.AppAddr)
	assert.Equal(t, "development", cfg.AppEnv)
	assert.False(t, cfg.IsProduction())
	assert.True(t, cfg.SeedOnStartup)
	assert.NotEmpty(t, cfg.ResetCron)
}

func TestLoadConfigRequiresJWTSecret(t *testing.T) {
	old, had := os.LookupEnv("JWT_SECRET")
	os.Unsetenv("JWT_SECRET")
	t.Cleanup(func() {
		if had {
			os.Setenv("JWT_SECRET", old)
		}
	})

	_, err := LoadConfig()
	require.Error(t, err)
}

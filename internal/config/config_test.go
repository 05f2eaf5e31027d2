package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRequiresBaseURL(t *testing.T) {
	t.Setenv("GAS_API_BASE_URL", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GAS_API_BASE_URL")
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GAS_API_BASE_URL", "https://api.example.com")
	t.Setenv("GAS_HTTP_TIMEOUT_SECONDS", "")
	t.Setenv("GAS_DATA_DIR", "")
	t.Setenv("GO_ENV", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com", cfg.APIBaseURL)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, "", cfg.DataDir)
	assert.Equal(t, "dev", cfg.GoEnv)
}

func TestLoadRejectsBadTimeout(t *testing.T) {
	t.Setenv("GAS_API_BASE_URL", "https://api.example.com")
	t.Setenv("GAS_HTTP_TIMEOUT_SECONDS", "abc")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GAS_HTTP_TIMEOUT_SECONDS")
}

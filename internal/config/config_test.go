package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("API_BASE_URL", "")
	t.Setenv("REACT_APP_API_BASE_URL", "")
	t.Setenv("CONFIG_FILE", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultAPIBaseURL, cfg.APIBaseURL)
	assert.Equal(t, "sqlite", cfg.SessionDriver)
	assert.Equal(t, 2*time.Second, cfg.PaymentDelay)
}

func TestLoad_LegacyFrontendVariable(t *testing.T) {
	t.Setenv("API_BASE_URL", "")
	t.Setenv("REACT_APP_API_BASE_URL", "https://api.example.com/api")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com/api", cfg.APIBaseURL)
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agency.yaml")
	content := "api_base_url: http://file/api\nweb_port: \"9000\"\ncache_ttl: 1m\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("API_BASE_URL", "")
	t.Setenv("REACT_APP_API_BASE_URL", "")
	t.Setenv("WEB_PORT", "9100")
	t.Setenv("PAYMENT_DELAY", "0s")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://file/api", cfg.APIBaseURL)
	assert.Equal(t, "9100", cfg.WebPort)
	assert.Equal(t, time.Minute, cfg.CacheTTL)
	assert.Equal(t, time.Duration(0), cfg.PaymentDelay)
}

func TestLoad_BrokenFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))

	_, err := Load()
	assert.Error(t, err)
}

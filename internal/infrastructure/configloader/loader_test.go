package configloader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Port)
	assert.Equal(t, "wallet-exposure-advisor", cfg.Service.Name)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "https://api.dexscreener.com", cfg.DEXScreener.BaseURL)
	assert.Equal(t, 30, cfg.Pricing.MaxTokensPerBatchRequest)
	assert.Equal(t, 5, cfg.Pricing.CacheTTLMinutes)
	assert.Equal(t, "https://api.openai.com/v1", cfg.Advice.BaseURL)
	assert.Equal(t, 10, cfg.Performance.MaxConcurrentRoutines)
	assert.Equal(t, 30, cfg.Performance.RequestTimeoutSeconds)
	assert.False(t, cfg.Payment.Enabled)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	content := []byte(`
server:
  port: ":9090"
logging:
  level: "debug"
pricing:
  maxTokensPerBatchRequest: 10
payment:
  enabled: true
  receivingAddress: "0xabc"
  priceUsd: "0.10"
performance:
  max_concurrent_routines: 3
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 10, cfg.Pricing.MaxTokensPerBatchRequest)
	assert.True(t, cfg.Payment.Enabled)
	assert.Equal(t, "0xabc", cfg.Payment.ReceivingAddress)
	assert.Equal(t, 3, cfg.Performance.MaxConcurrentRoutines)
	// Untouched sections still get defaults.
	assert.Equal(t, "https://api.dexscreener.com", cfg.DEXScreener.BaseURL)
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("server: [not a map"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadAPIKeyFromEnvironment(t *testing.T) {
	t.Setenv("ADVICE_API_KEY", "sk-from-env")

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("advice:\n  apiKey: \"sk-from-file\"\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sk-from-env", cfg.Advice.APIKey)
}

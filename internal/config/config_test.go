package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadServerDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("ALLOWED_ORIGINS", "")
	t.Setenv("AI_PROVIDER", "")
	t.Setenv("AI_HISTORY_LIMIT", "")
	t.Setenv("AI_TEMPERATURE", "")
	t.Setenv("MODEL", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8000", cfg.Server.Addr)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, ProviderOpenAI, cfg.AI.Provider)
	assert.Equal(t, DefaultHistoryLimit, cfg.AI.HistoryLimit)
	require.NotNil(t, cfg.AI.Temperature)
	assert.InDelta(t, 0.7, *cfg.AI.Temperature, 1e-9)
	assert.Equal(t, "Qwen/Qwen2.5-1.5B-Instruct", cfg.AI.Model)
}

func TestLoadServerPortForms(t *testing.T) {
	t.Setenv("PORT", "127.0.0.1:9000")
	cfg, err := loadServerConfig()
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", cfg.Addr)

	t.Setenv("PORT", "80 80")
	_, err = loadServerConfig()
	assert.Error(t, err)
}

func TestLoadAIConfigRejectsUnknownProvider(t *testing.T) {
	t.Setenv("AI_PROVIDER", "llama")
	_, err := loadAIConfig()
	assert.Error(t, err)
}

func TestLoadAIConfigHistoryLimit(t *testing.T) {
	t.Setenv("AI_PROVIDER", "ark")
	t.Setenv("AI_HISTORY_LIMIT", "-3")
	cfg, err := loadAIConfig()
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.HistoryLimit)

	t.Setenv("AI_HISTORY_LIMIT", "abc")
	_, err = loadAIConfig()
	assert.Error(t, err)
}

func TestAIConfigEnabled(t *testing.T) {
	assert.False(t, AIConfig{Provider: ProviderArk, APIKey: "k"}.Enabled(), "model required")
	assert.True(t, AIConfig{Provider: ProviderArk, Model: "m", APIKey: "k"}.Enabled())
	assert.True(t, AIConfig{Provider: ProviderArk, Model: "m", AccessKey: "a", SecretKey: "s"}.Enabled())
	assert.True(t, AIConfig{Provider: ProviderOpenAI, Model: "m", BaseURL: "http://localhost:8001/v1"}.Enabled())
	assert.False(t, AIConfig{Provider: ProviderOpenAI, Model: "m"}.Enabled())
}

func TestLoadClientLayers(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
endpoint = "http://file:8000/chat"
locale = "en"
request_timeout = "30s"
plain = true
`), 0o600))

	t.Setenv("MNCHAT_ENDPOINT", "")
	t.Setenv("MNCHAT_LOCALE", "")
	t.Setenv("MNCHAT_TIMEOUT", "")
	cfg, err := LoadClient(path, true)
	require.NoError(t, err)
	assert.Equal(t, "http://file:8000/chat", cfg.Endpoint)
	assert.Equal(t, "en", cfg.Locale)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.True(t, cfg.Plain)

	t.Setenv("MNCHAT_ENDPOINT", "ws://env:8000/ws")
	cfg, err = LoadClient(path, true)
	require.NoError(t, err)
	assert.Equal(t, "ws://env:8000/ws", cfg.Endpoint)
}

func TestLoadClientMissingFile(t *testing.T) {
	t.Setenv("MNCHAT_ENDPOINT", "")
	t.Setenv("MNCHAT_LOCALE", "")
	t.Setenv("MNCHAT_TIMEOUT", "")
	missing := filepath.Join(t.TempDir(), "nope.toml")

	cfg, err := LoadClient(missing, false)
	require.NoError(t, err)
	assert.Equal(t, DefaultClientConfig(), cfg)

	_, err = LoadClient(missing, true)
	assert.Error(t, err)
}

func TestClientConfigValidate(t *testing.T) {
	cfg := DefaultClientConfig()
	require.NoError(t, cfg.Validate())

	cfg.Endpoint = "::: not validated :::"
	assert.NoError(t, cfg.Validate())

	cfg.Locale = "fr"
	assert.Error(t, cfg.Validate())
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "email-classifier/internal/common/errors"
)

// clearKeyEnv makes sure no API key leaks in from the developer's shell.
func clearKeyEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"GEMINI_API_KEY", "GOOGLE_API_KEY", "GENAI_API_KEY", "OPENAI_API_KEY",
		"GENAI_PROVIDER", "GENAI_MODEL", "SERVER_PORT",
	} {
		t.Setenv(name, "")
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFromFile_AppliesDefaults(t *testing.T) {
	clearKeyEnv(t)
	path := writeConfig(t, `
genai:
  api_key: test-key
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "email-classifier", cfg.App.Name)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 30000, cfg.Server.ShutdownTimeout)
	assert.Equal(t, ProviderGemini, cfg.GenAI.Provider)
	assert.Equal(t, "gemini-2.0-flash", cfg.GenAI.Model)
	assert.Equal(t, 60000, cfg.GenAI.Timeout)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, ":8080", cfg.Server.Addr())
}

func TestLoadFromFile_MissingAPIKeyIsFatal(t *testing.T) {
	clearKeyEnv(t)
	path := writeConfig(t, `
genai:
  api_key: ${GEMINI_API_KEY}
`)

	cfg, err := LoadFromFile(path)
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeConfigInvalid))
	assert.Contains(t, err.Error(), "GEMINI_API_KEY")
}

func TestLoadFromFile_ExpandsPlaceholders(t *testing.T) {
	clearKeyEnv(t)
	t.Setenv("MY_GEMINI_KEY", "expanded-key")
	path := writeConfig(t, `
genai:
  api_key: ${MY_GEMINI_KEY}
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "expanded-key", cfg.GenAI.APIKey)
}

func TestLoadFromFile_FallsBackToGeminiEnvVar(t *testing.T) {
	clearKeyEnv(t)
	t.Setenv("GEMINI_API_KEY", "from-gemini-env")
	path := writeConfig(t, `
app:
  name: classifier-test
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "from-gemini-env", cfg.GenAI.APIKey)
	assert.Equal(t, "classifier-test", cfg.App.Name)
}

func TestLoadFromFile_EnvOverridesFile(t *testing.T) {
	clearKeyEnv(t)
	t.Setenv("GENAI_API_KEY", "env-key")
	t.Setenv("SERVER_PORT", "9090")
	path := writeConfig(t, `
server:
  port: 8081
genai:
  api_key: file-key
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "env-key", cfg.GenAI.APIKey)
	assert.Equal(t, 9090, cfg.Server.Port)
}

func TestLoadFromFile_OpenAIProvider(t *testing.T) {
	clearKeyEnv(t)
	t.Setenv("GEMINI_API_KEY", "should-not-be-used")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	path := writeConfig(t, `
genai:
  provider: OpenAI
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, ProviderOpenAI, cfg.GenAI.Provider)
	assert.Equal(t, "sk-test", cfg.GenAI.APIKey)
	assert.Equal(t, "gpt-4o-mini", cfg.GenAI.Model)
}

func TestLoadFromFile_ShippedConfigUsesSelectedProviderKey(t *testing.T) {
	tests := []struct {
		name        string
		provider    string
		expectedKey string
	}{
		{name: "openai", provider: "openai", expectedKey: "openai-secret"},
		{name: "gemini", provider: "gemini", expectedKey: "gemini-secret"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearKeyEnv(t)
			t.Setenv("GENAI_PROVIDER", tt.provider)
			t.Setenv("GEMINI_API_KEY", "gemini-secret")
			t.Setenv("OPENAI_API_KEY", "openai-secret")

			cfg, err := LoadFromFile(filepath.Join("..", "..", "..", "configs", "config.yaml"))
			require.NoError(t, err)
			assert.Equal(t, tt.provider, cfg.GenAI.Provider)
			assert.Equal(t, tt.expectedKey, cfg.GenAI.APIKey)
		})
	}
}

func TestLoadFromFile_FallsBackToGenericKeyEnvVar(t *testing.T) {
	clearKeyEnv(t)
	t.Setenv("GEMINI_API_KEY", "gemini-secret")
	t.Setenv("GENAI_API_KEY", "generic-key")
	path := writeConfig(t, `
genai:
  provider: openai
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "generic-key", cfg.GenAI.APIKey)
}

func TestLoadFromFile_MissingOpenAIKeyNamesVariable(t *testing.T) {
	clearKeyEnv(t)
	t.Setenv("GEMINI_API_KEY", "gemini-secret")
	path := writeConfig(t, `
genai:
  provider: openai
`)

	_, err := LoadFromFile(path)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeConfigInvalid))
	assert.Contains(t, err.Error(), "OPENAI_API_KEY")
}

func TestLoadFromFile_UnsupportedProvider(t *testing.T) {
	clearKeyEnv(t)
	path := writeConfig(t, `
genai:
  provider: llama
  api_key: whatever
`)

	_, err := LoadFromFile(path)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeConfigInvalid))
	assert.Contains(t, err.Error(), "llama")
}

func TestLoadFromFile_MissingFile(t *testing.T) {
	clearKeyEnv(t)
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeConfigInvalid))
}

func TestGetDuration(t *testing.T) {
	assert.Equal(t, "1.5s", GetDuration(1500).String())
	assert.Equal(t, "0s", GetDuration(0).String())
}

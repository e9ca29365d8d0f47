package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoader(t *testing.T) {
	t.Run("missing file falls back to defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nope.json")
		cfg, err := NewLoader(path).Load()
		require.NoError(t, err)
		assert.Equal(t, "stdio", cfg.Server.Transport)
		assert.Equal(t, 10, cfg.Model.MaxTurns)
	})

	t.Run("file values override defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "tanya.json")
		content := `{
			"server": {
				"transport": "sse",
				"endpoint": "http://localhost:9000/sse"
			},
			"model": {
				"provider": "anthropic",
				"name": "claude-sonnet-4-20250514",
				"temperature": 0.4,
				"max_turns": 6
			}
		}`
		require.NoError(t, os.WriteFile(path, []byte(content), 0600))

		cfg, err := NewLoader(path).Load()
		require.NoError(t, err)
		assert.Equal(t, "sse", cfg.Server.Transport)
		assert.Equal(t, "http://localhost:9000/sse", cfg.Server.Endpoint)
		assert.Equal(t, "anthropic", cfg.Model.Provider)
		assert.Equal(t, "claude-sonnet-4-20250514", cfg.Model.Name)
		assert.InDelta(t, 0.4, cfg.Model.Temperature, 0.001)
		assert.Equal(t, 6, cfg.Model.MaxTurns)

		// Untouched sections keep their defaults
		assert.Equal(t, 3, cfg.Model.MaxRetries)
	})

	t.Run("invalid file content fails", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "tanya.json")
		require.NoError(t, os.WriteFile(path, []byte("{broken"), 0600))

		_, err := NewLoader(path).Load()
		assert.ErrorContains(t, err, "failed to read config file")
	})

	t.Run("invalid values fail validation", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "tanya.json")
		content := `{"model": {"temperature": 3.0}}`
		require.NoError(t, os.WriteFile(path, []byte(content), 0600))

		_, err := NewLoader(path).Load()
		assert.ErrorContains(t, err, "temperature")
	})

	t.Run("TANYA_ env keys override without a config file", func(t *testing.T) {
		t.Setenv("TANYA_MODEL_PROVIDER", "openai")
		t.Setenv("TANYA_MODEL_MAX_TURNS", "4")
		t.Setenv("TANYA_SERVER_COMMAND", "python3")

		path := filepath.Join(t.TempDir(), "nope.json")
		cfg, err := NewLoader(path).Load()
		require.NoError(t, err)

		assert.Equal(t, "openai", cfg.Model.Provider)
		assert.Equal(t, 4, cfg.Model.MaxTurns)
		assert.Equal(t, "python3", cfg.Server.Command)
	})

	t.Run("TANYA_ env keys beat file values", func(t *testing.T) {
		t.Setenv("TANYA_MODEL_PROVIDER", "gemini")

		path := filepath.Join(t.TempDir(), "tanya.json")
		content := `{"model": {"provider": "anthropic"}}`
		require.NoError(t, os.WriteFile(path, []byte(content), 0600))

		cfg, err := NewLoader(path).Load()
		require.NoError(t, err)
		assert.Equal(t, "gemini", cfg.Model.Provider)
	})

	t.Run("api keys come from the environment", func(t *testing.T) {
		t.Setenv("ANTHROPIC_API_KEY", "sk-ant-test")
		t.Setenv("GOOGLE_API_KEY", "g-test")
		t.Setenv("OPENAI_API_KEY", "")
		t.Setenv("API_KEY", "generic-test")
		t.Setenv("BASE_URL", "http://localhost:1234")

		path := filepath.Join(t.TempDir(), "nope.json")
		cfg, err := NewLoader(path).Load()
		require.NoError(t, err)

		assert.Equal(t, "sk-ant-test", cfg.Auth.AnthropicAPIKey)
		assert.Equal(t, "g-test", cfg.Auth.GoogleAPIKey)
		assert.Equal(t, "generic-test", cfg.Auth.OpenAIAPIKey)
		assert.Equal(t, "http://localhost:1234", cfg.Model.BaseURL)
	})

	t.Run("OPENAI_API_KEY beats the generic API_KEY", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "sk-oai-test")
		t.Setenv("API_KEY", "generic-test")

		path := filepath.Join(t.TempDir(), "nope.json")
		cfg, err := NewLoader(path).Load()
		require.NoError(t, err)
		assert.Equal(t, "sk-oai-test", cfg.Auth.OpenAIAPIKey)
	})

	t.Run("log file defaults under the data dir", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nope.json")
		cfg, err := NewLoader(path).Load()
		require.NoError(t, err)
		assert.NotEmpty(t, cfg.DataDir)
		assert.Equal(t, filepath.Join(cfg.DataDir, "tanya.log"), cfg.Logging.File)
	})
}

package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arya/tanya/internal/config"
)

func TestRootCommand(t *testing.T) {
	t.Run("version flag", func(t *testing.T) {
		cmd := GetRootCmd()
		cmd.SetArgs([]string{"--version"})

		output := &bytes.Buffer{}
		cmd.SetOut(output)

		err := cmd.Execute()
		require.NoError(t, err)

		assert.Contains(t, output.String(), "tanya version")
		assert.Contains(t, output.String(), GetVersion())
	})

	t.Run("global flags", func(t *testing.T) {
		cmd := GetRootCmd()

		configFlag := cmd.PersistentFlags().Lookup("config")
		require.NotNil(t, configFlag)
		assert.Equal(t, "", configFlag.DefValue)

		logLevelFlag := cmd.PersistentFlags().Lookup("log-level")
		require.NotNil(t, logLevelFlag)
		assert.Equal(t, "", logLevelFlag.DefValue)

		threadFlag := cmd.PersistentFlags().Lookup("thread")
		require.NotNil(t, threadFlag)
		assert.Equal(t, "wiki-session", threadFlag.DefValue)
	})
}

func TestGetVersion(t *testing.T) {
	version := GetVersion()
	assert.NotEmpty(t, version)
	assert.True(t, strings.HasPrefix(version, "0."))
}

func TestResolveModel(t *testing.T) {
	t.Run("explicit provider wins", func(t *testing.T) {
		cfg := testConfig()
		cfg.Model.Provider = "openai"
		cfg.Auth.AnthropicAPIKey = "sk-ant"
		cfg.Auth.OpenAIAPIKey = "sk-oai"

		provider, key, model := resolveModel(cfg)
		assert.Equal(t, "openai", provider)
		assert.Equal(t, "sk-oai", key)
		assert.Equal(t, "gpt-4-turbo", model)
	})

	t.Run("auto-pick prefers anthropic", func(t *testing.T) {
		cfg := testConfig()
		cfg.Auth.AnthropicAPIKey = "sk-ant"
		cfg.Auth.GoogleAPIKey = "g-key"

		provider, key, _ := resolveModel(cfg)
		assert.Equal(t, "anthropic", provider)
		assert.Equal(t, "sk-ant", key)
	})

	t.Run("falls through to gemini", func(t *testing.T) {
		cfg := testConfig()
		cfg.Auth.GoogleAPIKey = "g-key"

		provider, _, model := resolveModel(cfg)
		assert.Equal(t, "gemini", provider)
		assert.Equal(t, "gemini-2.0-flash", model)
	})

	t.Run("no keys yields no provider", func(t *testing.T) {
		provider, key, model := resolveModel(testConfig())
		assert.Empty(t, provider)
		assert.Empty(t, key)
		assert.Empty(t, model)
	})

	t.Run("configured model name overrides default", func(t *testing.T) {
		cfg := testConfig()
		cfg.Auth.AnthropicAPIKey = "sk-ant"
		cfg.Model.Name = "claude-opus-4-20250514"

		_, _, model := resolveModel(cfg)
		assert.Equal(t, "claude-opus-4-20250514", model)
	})
}

func testConfig() *config.Config {
	return config.DefaultConfig()
}

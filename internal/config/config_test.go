package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "stdio", cfg.Server.Transport)
	assert.Equal(t, "python", cfg.Server.Command)
	assert.Equal(t, []string{"mcp_server.py"}, cfg.Server.Args)
	assert.Equal(t, 10, cfg.Model.MaxTurns)
	assert.Equal(t, 3, cfg.Model.MaxRetries)
	assert.Equal(t, 4096, cfg.Model.MaxTokens)
	assert.NotEmpty(t, cfg.Model.SystemPrompt)

	require.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	valid := func() *Config { return DefaultConfig() }

	t.Run("stdio requires command", func(t *testing.T) {
		cfg := valid()
		cfg.Server.Command = ""
		assert.ErrorContains(t, cfg.Validate(), "server.command")
	})

	t.Run("sse requires endpoint", func(t *testing.T) {
		cfg := valid()
		cfg.Server.Transport = "sse"
		assert.ErrorContains(t, cfg.Validate(), "server.endpoint")

		cfg.Server.Endpoint = "http://localhost:8080/sse"
		assert.NoError(t, cfg.Validate())
	})

	t.Run("unknown transport", func(t *testing.T) {
		cfg := valid()
		cfg.Server.Transport = "grpc"
		assert.ErrorContains(t, cfg.Validate(), "unsupported server.transport")
	})

	t.Run("temperature bounds", func(t *testing.T) {
		cfg := valid()
		cfg.Model.Temperature = 1.2
		assert.ErrorContains(t, cfg.Validate(), "temperature")

		cfg.Model.Temperature = -0.1
		assert.ErrorContains(t, cfg.Validate(), "temperature")

		cfg.Model.Temperature = 0.7
		assert.NoError(t, cfg.Validate())
	})

	t.Run("turn and retry limits", func(t *testing.T) {
		cfg := valid()
		cfg.Model.MaxTurns = 0
		assert.ErrorContains(t, cfg.Validate(), "max_turns")

		cfg = valid()
		cfg.Model.MaxRetries = -1
		assert.ErrorContains(t, cfg.Validate(), "max_retries")

		cfg = valid()
		cfg.Model.MaxTokens = -5
		assert.ErrorContains(t, cfg.Validate(), "max_tokens")
	})
}

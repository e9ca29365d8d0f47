package config

import "fmt"

// Config represents the main Tanya configuration
type Config struct {
	// Server holds the MCP tool server connection settings
	Server ServerConfig `json:"server" mapstructure:"server"`

	// Model holds the language model settings
	Model ModelConfig `json:"model" mapstructure:"model"`

	// Auth holds provider API keys (usually supplied via environment)
	Auth AuthConfig `json:"auth" mapstructure:"auth"`

	// History holds conversation checkpoint settings
	History HistoryConfig `json:"history" mapstructure:"history"`

	// Logging configuration
	Logging LoggingConfig `json:"logging" mapstructure:"logging"`

	// Data directory
	DataDir string `json:"data_dir" mapstructure:"data_dir"`
}

// ServerConfig describes how to reach the MCP tool server
type ServerConfig struct {
	Transport string   `json:"transport" mapstructure:"transport"` // stdio, sse
	Command   string   `json:"command" mapstructure:"command"`     // stdio: child process to launch
	Args      []string `json:"args" mapstructure:"args"`
	Endpoint  string   `json:"endpoint" mapstructure:"endpoint"` // sse: server URL
}

// ModelConfig holds language model settings
type ModelConfig struct {
	Provider     string  `json:"provider" mapstructure:"provider"` // anthropic, openai, gemini
	Name         string  `json:"name" mapstructure:"name"`
	Temperature  float64 `json:"temperature" mapstructure:"temperature"`
	MaxTokens    int     `json:"max_tokens" mapstructure:"max_tokens"`
	MaxTurns     int     `json:"max_turns" mapstructure:"max_turns"` // reasoning/execution cycles per user input
	MaxRetries   int     `json:"max_retries" mapstructure:"max_retries"`
	SystemPrompt string  `json:"system_prompt" mapstructure:"system_prompt"`
	BaseURL      string  `json:"base_url" mapstructure:"base_url"` // OpenAI-compatible endpoint override
}

// AuthConfig holds provider API keys
type AuthConfig struct {
	AnthropicAPIKey string `json:"anthropic_api_key" mapstructure:"anthropic_api_key"`
	OpenAIAPIKey    string `json:"openai_api_key" mapstructure:"openai_api_key"`
	GoogleAPIKey    string `json:"google_api_key" mapstructure:"google_api_key"`
}

// HistoryConfig holds checkpoint store settings
type HistoryConfig struct {
	// Dir enables the JSONL file-backed store when set; empty keeps
	// checkpoints in memory for the process lifetime.
	Dir string `json:"dir" mapstructure:"dir"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level   string `json:"level" mapstructure:"level"`
	File    string `json:"file" mapstructure:"file"`
	Console bool   `json:"console" mapstructure:"console"`
	Pretty  bool   `json:"pretty" mapstructure:"pretty"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Transport: "stdio",
			Command:   "python",
			Args:      []string{"mcp_server.py"},
		},
		Model: ModelConfig{
			Provider:     "",
			Name:         "",
			Temperature:  0,
			MaxTokens:    4096,
			MaxTurns:     10,
			MaxRetries:   3,
			SystemPrompt: "You are a helpful assistant that uses tools to search Wikipedia.",
		},
		Logging: LoggingConfig{
			Level:   "info",
			Console: true,
			Pretty:  true,
		},
	}
}

// Validate checks the configuration for consistency
func (c *Config) Validate() error {
	switch c.Server.Transport {
	case "stdio":
		if c.Server.Command == "" {
			return fmt.Errorf("server.command is required for stdio transport")
		}
	case "sse":
		if c.Server.Endpoint == "" {
			return fmt.Errorf("server.endpoint is required for sse transport")
		}
	default:
		return fmt.Errorf("unsupported server.transport: %s", c.Server.Transport)
	}

	if c.Model.Temperature < 0 || c.Model.Temperature > 1 {
		return fmt.Errorf("model.temperature must be between 0 and 1")
	}
	if c.Model.MaxTokens < 0 {
		return fmt.Errorf("model.max_tokens cannot be negative")
	}
	if c.Model.MaxTurns <= 0 {
		return fmt.Errorf("model.max_turns must be positive")
	}
	if c.Model.MaxRetries < 0 {
		return fmt.Errorf("model.max_retries cannot be negative")
	}

	return nil
}

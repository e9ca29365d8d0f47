package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// envOverrideKeys are the config keys overridable through the TANYA_ prefix,
// e.g. model.provider <- TANYA_MODEL_PROVIDER.
var envOverrideKeys = []string{
	"server.transport",
	"server.command",
	"server.endpoint",
	"model.provider",
	"model.name",
	"model.temperature",
	"model.max_tokens",
	"model.max_turns",
	"model.max_retries",
	"model.system_prompt",
	"model.base_url",
	"history.dir",
	"logging.level",
	"logging.file",
	"data_dir",
}

// Loader handles configuration loading
type Loader struct {
	configPath string
}

// NewLoader creates a new config loader
func NewLoader(configPath string) *Loader {
	return &Loader{
		configPath: configPath,
	}
}

// Load loads the configuration from file and environment
func (l *Loader) Load() (*Config, error) {
	configPath := l.configPath
	if configPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		configPath = filepath.Join(home, ".tanya", "tanya.json")
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("json")

	// Environment overrides: TANYA_MODEL_PROVIDER, TANYA_SERVER_COMMAND, ...
	// Each key is bound explicitly; AutomaticEnv alone never reaches nested
	// keys through Unmarshal.
	v.SetEnvPrefix("TANYA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range envOverrideKeys {
		_ = v.BindEnv(key)
	}

	cfg := DefaultConfig()

	// Config file is optional; defaults plus environment are a valid setup
	if _, err := os.Stat(configPath); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	l.applyEnvKeys(cfg)

	if cfg.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		cfg.DataDir = filepath.Join(home, ".tanya")
	}

	if cfg.Logging.File == "" && cfg.DataDir != "" {
		cfg.Logging.File = filepath.Join(cfg.DataDir, "tanya.log")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyEnvKeys fills API keys and the base URL from the conventional
// provider environment variables when the config file leaves them empty.
func (l *Loader) applyEnvKeys(cfg *Config) {
	if cfg.Auth.AnthropicAPIKey == "" {
		cfg.Auth.AnthropicAPIKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if cfg.Auth.OpenAIAPIKey == "" {
		cfg.Auth.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
		if cfg.Auth.OpenAIAPIKey == "" {
			cfg.Auth.OpenAIAPIKey = os.Getenv("API_KEY")
		}
	}
	if cfg.Auth.GoogleAPIKey == "" {
		cfg.Auth.GoogleAPIKey = os.Getenv("GOOGLE_API_KEY")
	}
	if cfg.Model.BaseURL == "" {
		cfg.Model.BaseURL = os.Getenv("BASE_URL")
	}
}

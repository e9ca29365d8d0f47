package agent

import (
	"context"
	"fmt"
)

// ModelProvider is an interface for language model API providers
type ModelProvider interface {
	// Complete makes one model call
	Complete(ctx context.Context, request ModelRequest) (*ModelResponse, error)

	// Name returns the provider name
	Name() string
}

// ModelRequest contains the request parameters for a model call
type ModelRequest struct {
	Model        string
	Messages     []Message
	Tools        []ToolDescriptor
	Temperature  float64
	MaxTokens    int
	SystemPrompt string
}

// ModelResponse contains the assistant message returned by the model
type ModelResponse struct {
	Content   string
	ToolCalls []ToolCall
	Usage     *TokenUsage
}

// ProviderConfig describes how to construct a provider
type ProviderConfig struct {
	Provider string // "anthropic", "openai", "gemini"
	APIKey   string
	BaseURL  string // optional OpenAI-compatible endpoint override
}

// ProviderCreator creates model providers from configuration
type ProviderCreator interface {
	NewProvider(cfg ProviderConfig) (ModelProvider, error)
}

// ProviderFactory creates model providers
type ProviderFactory struct{}

// NewProvider creates a new model provider based on configuration
func (f *ProviderFactory) NewProvider(cfg ProviderConfig) (ModelProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("api key is required for provider %s", cfg.Provider)
	}

	switch cfg.Provider {
	case "anthropic":
		return NewAnthropicProvider(cfg.APIKey), nil
	case "openai":
		return NewOpenAIProvider(cfg.APIKey, cfg.BaseURL), nil
	case "gemini":
		return NewGeminiProvider(cfg.APIKey), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", cfg.Provider)
	}
}

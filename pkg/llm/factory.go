package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/helmcode/devcompanion/pkg/config"
)

// Provider represents the LLM provider type
type Provider string

const (
	ProviderGemini Provider = "gemini"
	ProviderClaude Provider = "claude"
	ProviderOpenAI Provider = "openai"
)

// Factory creates LLM instances based on provider
type Factory struct{}

// NewFactory creates a new LLM factory
func NewFactory() *Factory {
	return &Factory{}
}

// CreateLLM creates an LLM instance based on provider and configuration.
// Recognized config keys: api_key, model, base_url.
func (f *Factory) CreateLLM(ctx context.Context, provider Provider, cfg map[string]string) (LLM, error) {
	apiKey := cfg["api_key"]
	model := cfg["model"]
	baseURL := cfg["base_url"]

	switch provider {
	case ProviderGemini:
		if apiKey == "" {
			return nil, fmt.Errorf("Gemini: %w", ErrNoAPIKey)
		}
		return NewGemini(ctx, apiKey, model, baseURL)

	case ProviderClaude:
		if apiKey == "" {
			return nil, fmt.Errorf("Claude: %w", ErrNoAPIKey)
		}
		if model != "" {
			return NewClaudeWithModel(apiKey, model).WithBaseURL(baseURL), nil
		}
		return NewClaude(apiKey).WithBaseURL(baseURL), nil

	case ProviderOpenAI:
		if apiKey == "" {
			return nil, fmt.Errorf("OpenAI: %w", ErrNoAPIKey)
		}
		if model != "" {
			return NewOpenAIWithModel(apiKey, model).WithBaseURL(baseURL), nil
		}
		return NewOpenAI(apiKey).WithBaseURL(baseURL), nil

	case "":
		return nil, ErrNoAPIKey

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", provider)
	}
}

// CreateFromConfig creates an LLM instance from the llm section of the config.
func (f *Factory) CreateFromConfig(ctx context.Context, cfg config.LLMConfig) (LLM, error) {
	return f.CreateLLM(ctx, Provider(strings.ToLower(cfg.Provider)), map[string]string{
		"api_key":  cfg.APIKey,
		"model":    cfg.Model,
		"base_url": cfg.BaseURL,
	})
}

// GetAvailableProviders returns a list of available LLM providers
func (f *Factory) GetAvailableProviders() []Provider {
	return []Provider{ProviderGemini, ProviderClaude, ProviderOpenAI}
}

// CreateFromConfig is a convenience wrapper that applies CLI overrides on top
// of the loaded config before creating the client.
func CreateFromConfig(ctx context.Context, cfg config.LLMConfig, providerOverride, modelOverride string) (LLM, error) {
	if providerOverride != "" && !strings.EqualFold(providerOverride, cfg.Provider) {
		cfg.Provider = strings.ToLower(providerOverride)
		cfg.APIKey = config.APIKeyFromEnv(cfg.Provider)
		cfg.Model = ""
	}
	if modelOverride != "" {
		cfg.Model = modelOverride
	}
	return NewFactory().CreateFromConfig(ctx, cfg)
}

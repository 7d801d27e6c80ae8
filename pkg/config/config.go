package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file looked up when none is given.
const DefaultPath = "devcompanion.yaml"

// Config holds all DevCompanion settings.
type Config struct {
	Env     string        `yaml:"env"`
	Server  ServerConfig  `yaml:"server"`
	LLM     LLMConfig     `yaml:"llm"`
	Store   StoreConfig   `yaml:"store"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr           string `yaml:"addr"`
	RequestTimeout string `yaml:"request_timeout"`
}

// LLMConfig configures the hosted model used for reviews.
type LLMConfig struct {
	Provider string `yaml:"provider"` // gemini, claude, openai
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"`
	BaseURL  string `yaml:"base_url"`
	Timeout  string `yaml:"timeout"`
}

// StoreConfig configures snapshot persistence.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Env: "development",
		Server: ServerConfig{
			Addr:           ":4000",
			RequestTimeout: "30s",
		},
		LLM: LLMConfig{
			Timeout: "20s",
		},
		Store: StoreConfig{
			Path: "devcompanion.db",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from a YAML file on top of the defaults.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Override with environment variables
	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	// NODE_ENV only applies when APP_ENV is unset.
	if env := os.Getenv("APP_ENV"); env != "" {
		c.Env = env
	} else if env := os.Getenv("NODE_ENV"); env != "" {
		c.Env = env
	}
	if port := os.Getenv("PORT"); port != "" {
		c.Server.Addr = ":" + port
	}
	if path := os.Getenv("DEVCOMPANION_DB"); path != "" {
		c.Store.Path = path
	}

	if provider := os.Getenv("LLM_PROVIDER"); provider != "" {
		c.LLM.Provider = strings.ToLower(provider)
	}
	if model := os.Getenv("LLM_MODEL"); model != "" {
		c.LLM.Model = model
	}

	// A key in the environment only applies to its own provider. When no
	// provider is set, the first key found picks one.
	for _, k := range providerKeys {
		key := os.Getenv(k.env)
		if key == "" {
			continue
		}
		if c.LLM.Provider == "" {
			c.LLM.Provider = k.provider
		}
		if c.LLM.Provider == k.provider {
			c.LLM.APIKey = key
			break
		}
	}
}

var providerKeys = []struct {
	provider string
	env      string
}{
	{"gemini", "GEMINI_API_KEY"},
	{"claude", "ANTHROPIC_API_KEY"},
	{"openai", "OPENAI_API_KEY"},
}

// APIKeyFromEnv returns the environment key for provider, or "".
func APIKeyFromEnv(provider string) string {
	for _, k := range providerKeys {
		if k.provider == provider {
			return os.Getenv(k.env)
		}
	}
	return ""
}

// Validate checks values that would otherwise fail later at use.
func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case "", "gemini", "claude", "openai":
	default:
		return fmt.Errorf("unsupported llm provider: %s (supported: gemini, claude, openai)", c.LLM.Provider)
	}
	if _, err := parseDuration(c.LLM.Timeout); err != nil {
		return fmt.Errorf("invalid llm.timeout: %w", err)
	}
	if _, err := parseDuration(c.Server.RequestTimeout); err != nil {
		return fmt.Errorf("invalid server.request_timeout: %w", err)
	}
	return nil
}

// GetLLMTimeout returns the per-request model timeout.
func (c *Config) GetLLMTimeout() time.Duration {
	d, err := parseDuration(c.LLM.Timeout)
	if err != nil || d == 0 {
		return 20 * time.Second
	}
	return d
}

// GetRequestTimeout returns the HTTP handler timeout.
func (c *Config) GetRequestTimeout() time.Duration {
	d, err := parseDuration(c.Server.RequestTimeout)
	if err != nil || d == 0 {
		return 30 * time.Second
	}
	return d
}

// HasLLM reports whether a hosted model can be used.
func (c *Config) HasLLM() bool {
	return c.LLM.APIKey != ""
}

func parseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	return time.ParseDuration(s)
}

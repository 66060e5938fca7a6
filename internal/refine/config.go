package refine

import (
	"context"
	"fmt"
	"os"
	"time"
)

const (
	ProviderOpenAI = "openai"
	ProviderGenAI  = "genai"

	defaultOpenAIBaseURL = "https://api.openai.com/v1"
	defaultOpenAIModel   = "gpt-4o"
	defaultGenAIModel    = "gemini-2.0-flash"
)

type Config struct {
	Provider string
	APIKey   string
	BaseURL  string
	Model    string
	Timeout  time.Duration
}

// ConfigFromEnv reads REFINE_* variables, filling provider-specific defaults.
func ConfigFromEnv() Config {
	cfg := Config{
		Provider: os.Getenv("REFINE_PROVIDER"),
		APIKey:   os.Getenv("REFINE_API_KEY"),
		BaseURL:  os.Getenv("REFINE_BASE_URL"),
		Model:    os.Getenv("REFINE_MODEL"),
	}
	if d, err := time.ParseDuration(os.Getenv("REFINE_TIMEOUT")); err == nil && d > 0 {
		cfg.Timeout = d
	}
	return cfg.withDefaults()
}

func (c Config) withDefaults() Config {
	if c.Provider == "" {
		c.Provider = ProviderOpenAI
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	switch c.Provider {
	case ProviderOpenAI:
		if c.BaseURL == "" {
			c.BaseURL = defaultOpenAIBaseURL
		}
		if c.Model == "" {
			c.Model = defaultOpenAIModel
		}
	case ProviderGenAI:
		if c.Model == "" {
			c.Model = defaultGenAIModel
		}
	}
	return c
}

// NewCompleter builds the backend selected by cfg.Provider.
func NewCompleter(ctx context.Context, cfg Config) (Completer, error) {
	cfg = cfg.withDefaults()
	switch cfg.Provider {
	case ProviderOpenAI:
		return NewOpenAIClient(cfg), nil
	case ProviderGenAI:
		g, err := NewGenAICompleter(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return g, nil
	default:
		return nil, fmt.Errorf("unknown refine provider %q", cfg.Provider)
	}
}

// File: internal/services/ai/config.go
package ai

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

const (
	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"
)

type Config struct {
	// Provider selects the wire protocol: the native Ollama chat API or an
	// OpenAI-compatible endpoint.
	Provider string
	BaseURL  string
	APIKey   string

	// DialTimeout bounds connection establishment only. Streaming calls are
	// bounded by the caller's context.
	DialTimeout time.Duration
	// HealthTimeout bounds HealthCheck requests.
	HealthTimeout time.Duration
}

func (c *Config) Validate() error {
	switch strings.ToLower(c.Provider) {
	case ProviderOllama, ProviderOpenAI:
	default:
		return fmt.Errorf("unknown inference provider %q", c.Provider)
	}
	if c.BaseURL == "" {
		return fmt.Errorf("inference host is required")
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid inference host: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("inference host must be an absolute http(s) URL, got %q", c.BaseURL)
	}
	if c.DialTimeout <= 0 {
		return fmt.Errorf("dial timeout must be positive")
	}
	return nil
}

func DefaultConfig() *Config {
	return &Config{
		Provider:      ProviderOllama,
		BaseURL:       "http://127.0.0.1:11434",
		DialTimeout:   10 * time.Second,
		HealthTimeout: 5 * time.Second,
	}
}

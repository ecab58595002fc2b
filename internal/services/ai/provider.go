package ai

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/iyunix/go-llamachat/internal/domain"
)

// Open validates the host configuration and returns a provider for it.
// A bad configuration is reported as a connection failure; an unreachable
// host surfaces on the first call, since the transport is connectionless.
func Open(cfg *Config) (Provider, error) {
	if cfg == nil {
		return nil, NewConfigError("inference config is required", nil)
	}
	if err := cfg.Validate(); err != nil {
		return nil, NewConfigError("invalid inference configuration", err)
	}

	switch strings.ToLower(cfg.Provider) {
	case ProviderOpenAI:
		return NewOpenAIProvider(cfg), nil
	default:
		return NewOllamaProvider(cfg), nil
	}
}

// newHTTPClient has no overall timeout so long streams are not cut off.
func newHTTPClient(cfg *Config) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = (&net.Dialer{Timeout: cfg.DialTimeout}).DialContext
	return &http.Client{Transport: transport}
}

func toWireRole(role string) string {
	if role == "bot" {
		return "assistant"
	}
	return role
}

// Unavailable returns a provider whose every call fails with cause. It stands
// in when the configured backend could not be opened at start-up.
func Unavailable(cause error) Provider {
	return unavailableProvider{cause: cause}
}

type unavailableProvider struct {
	cause error
}

func (u unavailableProvider) Complete(ctx context.Context, model string, turns []domain.Turn) (string, error) {
	return "", u.cause
}

func (u unavailableProvider) Stream(ctx context.Context, model string, turns []domain.Turn) (Stream, error) {
	return nil, u.cause
}

func (u unavailableProvider) HealthCheck(ctx context.Context) error {
	return u.cause
}

func (u unavailableProvider) Name() string { return "unavailable" }

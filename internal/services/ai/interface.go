// File: internal/services/ai/interface.go
package ai

import (
	"context"

	"github.com/iyunix/go-llamachat/internal/domain"
)

// Provider issues chat completions against one inference backend.
type Provider interface {
	// Complete performs one blocking completion. A response whose shape does
	// not carry textual message content yields "" and a nil error.
	Complete(ctx context.Context, model string, turns []domain.Turn) (string, error)
	// Stream starts a streaming completion. The returned Stream is single-pass.
	Stream(ctx context.Context, model string, turns []domain.Turn) (Stream, error)
	HealthCheck(ctx context.Context) error
	Name() string
}

// Stream is a finite, forward-only sequence of text fragments. Recv returns
// io.EOF once the backend signals completion; any other error is a transport
// failure. Close releases the underlying connection and may be called at any
// point, including before the stream is exhausted.
type Stream interface {
	Recv() (string, error)
	Close() error
}

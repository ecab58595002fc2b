// File: internal/services/ai/ollama_provider.go
package ai

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/iyunix/go-llamachat/internal/domain"
)

// maxErrorBody caps how much of a failed response is kept for diagnostics.
const maxErrorBody = 4 << 10

// OllamaProvider speaks the native /api/chat protocol: one JSON document for
// non-streaming calls, newline-delimited JSON objects for streaming ones.
type OllamaProvider struct {
	config *Config
	client *http.Client
}

func NewOllamaProvider(config *Config) *OllamaProvider {
	return &OllamaProvider{
		config: config,
		client: newHTTPClient(config),
	}
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
}

func (p *OllamaProvider) Name() string { return ProviderOllama }

func (p *OllamaProvider) Complete(ctx context.Context, model string, turns []domain.Turn) (string, error) {
	resp, err := p.post(ctx, "completion", model, turns, false)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", NewNetworkError("completion", "failed to read response", err)
	}

	if !gjson.ValidBytes(body) {
		return "", nil
	}
	if msg := gjson.GetBytes(body, "error"); msg.Exists() {
		return "", NewProviderError("completion", msg.String(), nil)
	}
	content := gjson.GetBytes(body, "message.content")
	if content.Type != gjson.String {
		return "", nil
	}
	return content.String(), nil
}

func (p *OllamaProvider) Stream(ctx context.Context, model string, turns []domain.Turn) (Stream, error) {
	resp, err := p.post(ctx, "streaming", model, turns, true)
	if err != nil {
		return nil, err
	}
	return &ollamaStream{body: resp.Body, reader: bufio.NewReader(resp.Body)}, nil
}

// HealthCheck lists local models, which succeeds as soon as the server is up.
func (p *OllamaProvider) HealthCheck(ctx context.Context) error {
	if p.config.HealthTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.config.HealthTimeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.endpoint("/api/tags"), nil)
	if err != nil {
		return NewConfigError("failed to build health request", err)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return NewNetworkError("health", "inference server unreachable", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return &AIError{Type: ErrTypeProvider, Code: resp.StatusCode, Operation: "health", Message: "unexpected status " + resp.Status}
	}
	return nil
}

func (p *OllamaProvider) post(ctx context.Context, operation, model string, turns []domain.Turn, stream bool) (*http.Response, error) {
	payload := ollamaChatRequest{Model: model, Messages: toOllamaMessages(turns), Stream: stream}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, NewProviderError(operation, "failed to encode request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint("/api/chat"), bytes.NewReader(body))
	if err != nil {
		return nil, NewConfigError("failed to build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if p.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.config.APIKey)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, NewNetworkError(operation, "inference server unreachable", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		msg := gjson.GetBytes(detail, "error").String()
		if msg == "" {
			msg = strings.TrimSpace(string(detail))
		}
		return nil, &AIError{
			Type:      ErrTypeProvider,
			Code:      resp.StatusCode,
			Model:     model,
			Operation: operation,
			Message:   fmt.Sprintf("status %d: %s", resp.StatusCode, msg),
		}
	}
	return resp, nil
}

func (p *OllamaProvider) endpoint(path string) string {
	return strings.TrimRight(p.config.BaseURL, "/") + path
}

func toOllamaMessages(turns []domain.Turn) []ollamaMessage {
	messages := make([]ollamaMessage, 0, len(turns))
	for _, t := range turns {
		messages = append(messages, ollamaMessage{Role: toWireRole(string(t.Role)), Content: t.Content})
	}
	return messages
}

// ollamaStream reads one JSON object per line. Lines that are not valid JSON
// and chunks without text are skipped; a chunk with done=true ends the stream.
type ollamaStream struct {
	body   io.ReadCloser
	reader *bufio.Reader
	done   bool
	err    error
}

func (s *ollamaStream) Recv() (string, error) {
	if s.err != nil {
		return "", s.err
	}
	if s.done {
		return "", io.EOF
	}

	for {
		line, readErr := s.reader.ReadBytes('\n')
		if line = bytes.TrimSpace(line); len(line) > 0 && gjson.ValidBytes(line) {
			chunk := gjson.ParseBytes(line)
			if msg := chunk.Get("error"); msg.Exists() {
				s.err = NewProviderError("streaming", msg.String(), nil)
				return "", s.err
			}

			var fragment string
			if content := chunk.Get("message.content"); content.Type == gjson.String {
				fragment = content.String()
			}
			if chunk.Get("done").Bool() {
				s.done = true
				if fragment == "" {
					return "", io.EOF
				}
				return fragment, nil
			}
			if fragment != "" {
				return fragment, nil
			}
		}

		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				s.err = NewNetworkError("streaming", "stream ended before completion", io.ErrUnexpectedEOF)
			} else {
				s.err = NewNetworkError("streaming", "stream receive error", readErr)
			}
			return "", s.err
		}
	}
}

func (s *ollamaStream) Close() error {
	return s.body.Close()
}

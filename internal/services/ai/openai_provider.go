// File: internal/services/ai/openai_provider.go
package ai

import (
	"context"
	"errors"
	"io"

	openai "github.com/sashabaranov/go-openai"

	"github.com/iyunix/go-llamachat/internal/domain"
)

// OpenAIProvider targets OpenAI-compatible endpoints such as Ollama's /v1,
// llama.cpp server or vLLM.
type OpenAIProvider struct {
	config *Config
	client *openai.Client
}

func NewOpenAIProvider(config *Config) *OpenAIProvider {
	clientConfig := openai.DefaultConfig(config.APIKey)
	clientConfig.BaseURL = config.BaseURL
	clientConfig.HTTPClient = newHTTPClient(config)

	return &OpenAIProvider{
		config: config,
		client: openai.NewClientWithConfig(clientConfig),
	}
}

func (p *OpenAIProvider) Name() string { return ProviderOpenAI }

func (p *OpenAIProvider) Complete(ctx context.Context, model string, turns []domain.Turn) (string, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    model,
		Messages: toOpenAIMessages(turns),
	})
	if err != nil {
		return "", classifyOpenAIError("completion", err)
	}

	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

func (p *OpenAIProvider) Stream(ctx context.Context, model string, turns []domain.Turn) (Stream, error) {
	stream, err := p.client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model:    model,
		Messages: toOpenAIMessages(turns),
		Stream:   true,
	})
	if err != nil {
		return nil, classifyOpenAIError("streaming", err)
	}
	return &openAIStream{stream: stream}, nil
}

func (p *OpenAIProvider) HealthCheck(ctx context.Context) error {
	if p.config.HealthTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.config.HealthTimeout)
		defer cancel()
	}
	if _, err := p.client.ListModels(ctx); err != nil {
		return classifyOpenAIError("health", err)
	}
	return nil
}

func toOpenAIMessages(turns []domain.Turn) []openai.ChatCompletionMessage {
	messages := make([]openai.ChatCompletionMessage, 0, len(turns))
	for _, t := range turns {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    toWireRole(string(t.Role)),
			Content: t.Content,
		})
	}
	return messages
}

// classifyOpenAIError separates backend-reported failures from transport ones.
func classifyOpenAIError(operation string, err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &AIError{Type: ErrTypeProvider, Code: apiErr.HTTPStatusCode, Operation: operation, Message: apiErr.Message, Cause: err}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &AIError{Type: ErrTypeProvider, Code: reqErr.HTTPStatusCode, Operation: operation, Message: "request rejected", Cause: err}
	}
	return NewNetworkError(operation, "inference server unreachable", err)
}

type openAIStream struct {
	stream *openai.ChatCompletionStream
}

// Recv skips chunks that carry no delta text, such as the role preamble.
func (s *openAIStream) Recv() (string, error) {
	for {
		resp, err := s.stream.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return "", io.EOF
			}
			return "", NewNetworkError("streaming", "stream receive error", err)
		}
		if len(resp.Choices) == 0 {
			continue
		}
		if delta := resp.Choices[0].Delta.Content; delta != "" {
			return delta, nil
		}
	}
}

func (s *openAIStream) Close() error {
	return s.stream.Close()
}

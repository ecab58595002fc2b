// File: internal/services/chat/config.go
package chat

import (
	"fmt"
	"time"
)

type Config struct {
	// ChatModel is the model identifier sent to the inference backend.
	ChatModel string
	// MaxContextChars bounds the raw conversation text, in characters,
	// before it is split into turns.
	MaxContextChars int

	// StreamTimeout bounds one streaming inference call end to end.
	StreamTimeout time.Duration
	// CompletionTimeout bounds one non-streaming inference call.
	CompletionTimeout time.Duration
	// SaveTimeout bounds the bot-message write after a stream terminates.
	SaveTimeout time.Duration
}

func (c *Config) Validate() error {
	if c.ChatModel == "" {
		return fmt.Errorf("chat_model is required")
	}
	if c.MaxContextChars <= 0 {
		return fmt.Errorf("max_context_chars must be positive")
	}
	if c.StreamTimeout <= 0 || c.CompletionTimeout <= 0 {
		return fmt.Errorf("inference timeouts must be positive")
	}
	if c.SaveTimeout <= 0 {
		return fmt.Errorf("save timeout must be positive")
	}
	return nil
}

func DefaultConfig() *Config {
	return &Config{
		ChatModel:         "llama3.1",
		MaxContextChars:   125000,
		StreamTimeout:     10 * time.Minute,
		CompletionTimeout: 5 * time.Minute,
		SaveTimeout:       5 * time.Second,
	}
}

// File: cmd/diagnostic/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/iyunix/go-llamachat/internal/config"
	"github.com/iyunix/go-llamachat/internal/domain"
	"github.com/iyunix/go-llamachat/internal/services/ai"
)

// Checks that the configured inference backend answers, then runs one
// non-streaming completion and one streamed completion.
func main() {
	prompt := flag.String("prompt", "Say hello in five words.", "prompt to send")
	flag.Parse()

	cfg := config.Load()

	aiCfg := ai.DefaultConfig()
	aiCfg.Provider = cfg.InferenceProvider
	aiCfg.BaseURL = cfg.OllamaHost
	aiCfg.APIKey = cfg.InferenceAPIKey

	provider, err := ai.Open(aiCfg)
	if err != nil {
		log.Fatalf("Provider configuration invalid: %v", err)
	}
	fmt.Printf("Provider: %s at %s, model %s\n", provider.Name(), aiCfg.BaseURL, cfg.ChatModel)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := provider.HealthCheck(ctx); err != nil {
		log.Fatalf("Health check failed: %v", err)
	}
	fmt.Println("Health check: ok")

	turns := []domain.Turn{{Role: domain.RoleUser, Content: *prompt}}

	start := time.Now()
	reply, err := provider.Complete(ctx, cfg.ChatModel, turns)
	if err != nil {
		log.Fatalf("Completion failed: %v", err)
	}
	fmt.Printf("Completion (%s): %s\n", time.Since(start).Round(time.Millisecond), reply)

	stream, err := provider.Stream(ctx, cfg.ChatModel, turns)
	if err != nil {
		log.Fatalf("Stream failed to open: %v", err)
	}
	defer stream.Close()

	fmt.Print("Stream: ")
	fragments := 0
	for {
		fragment, err := stream.Recv()
		if err != nil {
			fmt.Println()
			if !errors.Is(err, io.EOF) {
				log.Fatalf("Stream ended with error after %d fragments: %v", fragments, err)
			}
			break
		}
		fragments++
		fmt.Print(fragment)
	}
	fmt.Printf("Stream finished: %d fragments\n", fragments)
}

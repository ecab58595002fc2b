// File: cmd/server/main.go
package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iyunix/go-llamachat/internal/config"
	"github.com/iyunix/go-llamachat/internal/database"
	"github.com/iyunix/go-llamachat/internal/handlers"
	"github.com/iyunix/go-llamachat/internal/render"
	"github.com/iyunix/go-llamachat/internal/repository/message"
	"github.com/iyunix/go-llamachat/internal/repository/thread"
	"github.com/iyunix/go-llamachat/internal/repository/user"
	"github.com/iyunix/go-llamachat/internal/services"
	"github.com/iyunix/go-llamachat/internal/services/ai"
	"github.com/iyunix/go-llamachat/internal/services/chat"
	"github.com/iyunix/go-llamachat/internal/services/user_services"
)

func main() {
	cfg := config.Load()

	logger := services.NewLogger("llamachat")
	if pl, ok := logger.(*services.ProductionLogger); ok {
		slog.SetDefault(pl.Slog())
	}

	db, err := database.Open(database.Config{
		Driver:     cfg.DatabaseDriver,
		DSN:        cfg.DatabaseDSN,
		LogQueries: cfg.DatabaseLogQueries,
	})
	if err != nil {
		log.Fatalf("DB Error: %v", err)
	}

	// --- Repositories ---
	userRepo := user.NewGormUserRepository(db)
	threadRepo := thread.NewThreadRepository(db)
	messageRepo := message.NewMessageRepository(db)

	// --- Services ---
	aiCfg := ai.DefaultConfig()
	aiCfg.Provider = cfg.InferenceProvider
	aiCfg.BaseURL = cfg.OllamaHost
	aiCfg.APIKey = cfg.InferenceAPIKey
	provider, err := ai.Open(aiCfg)
	if err != nil {
		// Requests still get recorded; replies come back empty until fixed.
		logger.Error("inference provider misconfigured", "error", err)
		provider = ai.Unavailable(err)
	}

	chatCfg := chat.DefaultConfig()
	chatCfg.ChatModel = cfg.ChatModel
	chatCfg.MaxContextChars = cfg.MaxContextChars
	chatCfg.StreamTimeout = cfg.StreamTimeout
	chatCfg.CompletionTimeout = cfg.CompletionTimeout
	chatService, err := chat.NewService(chatCfg, threadRepo, messageRepo, provider, services.With(logger, "component", "chat"))
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize Chat Service: %v", err)
	}

	authService := user_services.NewAuthService(userRepo, cfg.JWTSecretKey, services.With(logger, "component", "auth"))

	probeCtx, cancelProbe := context.WithTimeout(context.Background(), 5*time.Second)
	if err := chatService.HealthCheck(probeCtx); err != nil {
		logger.Warn("inference backend not reachable at startup", "provider", provider.Name(), "host", cfg.OllamaHost, "error", err)
	}
	cancelProbe()

	// --- Router Setup ---
	var limiters *handlers.Limiters
	if cfg.RateLimitEnabled {
		limiters = handlers.DefaultLimiters()
		defer limiters.Close()
	}

	router := handlers.NewRouter(handlers.RouterConfig{
		Auth:           handlers.NewAuthHandler(authService, cfg.IsProduction(), logger),
		Threads:        handlers.NewThreadHandler(chatService, render.NewMarkdown(), logger),
		Chat:           handlers.NewChatHandler(chatService, logger),
		Health:         handlers.NewHealthHandler(chatService, logger),
		Tokens:         authService,
		Limiters:       limiters,
		AllowedOrigins: cfg.AllowedOrigins,
		Logger:         logger,
	})

	// --- Server Configuration ---
	// No WriteTimeout: streamed replies can run for minutes.
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	logger.Info("server starting",
		"port", cfg.ServerPort,
		"provider", provider.Name(),
		"model", cfg.ChatModel,
		"database", cfg.DatabaseDriver,
		"rate_limit", cfg.RateLimitEnabled)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server startup failed: %v", err)
		}
	}()

	// --- Graceful Shutdown ---
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down server gracefully")
	// Running streams stop at their next fragment and commit what they have.
	chatService.CancelAll()
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown failed", "error", err, "active_streams", chatService.ActiveStreams())
		return
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	logger.Info("server stopped gracefully")
}

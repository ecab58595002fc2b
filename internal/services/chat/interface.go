// File: internal/services/chat/interface.go
package chat

import (
	"context"

	"github.com/iyunix/go-llamachat/internal/domain"
)

// ThreadProvider handles a user's thread bookkeeping.
type ThreadProvider interface {
	CreateThread(ctx context.Context, userID uint) (*domain.Thread, error)
	ListThreads(ctx context.Context, userID uint) ([]domain.Thread, error)
	ListMessages(ctx context.Context, userID, threadID uint) ([]domain.Message, error)
	RenameThread(ctx context.Context, userID, threadID uint, title string) (*domain.Thread, error)
	DeleteThread(ctx context.Context, userID, threadID uint) error
	DeleteAllThreads(ctx context.Context, userID uint) (int64, error)
}

// ResponseProvider answers a chat message, either blocking or streaming.
type ResponseProvider interface {
	Reply(ctx context.Context, userID, threadID uint, raw string) (string, error)
	StartStream(ctx context.Context, userID, threadID uint, raw string) (*StreamSession, error)
	RunStream(ctx context.Context, session *StreamSession, emit Emitter) PumpResult
	CancelStream(userID uint, streamID string) error
	CancelAll() int
	ActiveStreams() int
}

// ChatService combines all chat capabilities
type ChatService interface {
	ThreadProvider
	ResponseProvider
	HealthCheck(ctx context.Context) error
}

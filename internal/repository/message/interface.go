package message

import (
	"context"

	"github.com/iyunix/go-llamachat/internal/domain"
)

// MessageRepository is append-only: messages are created and read, never edited.
type MessageRepository interface {
	Create(ctx context.Context, message *domain.Message) (*domain.Message, error)
	FindByThreadID(ctx context.Context, threadID uint) ([]domain.Message, error)
}

// File: internal/repository/message/message_repository.go
package message

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/iyunix/go-llamachat/internal/domain"
)

type gormMessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &gormMessageRepository{db: db}
}

// Create inserts one message. Empty content is allowed: a failed inference
// call is still recorded as an empty bot turn.
func (r *gormMessageRepository) Create(ctx context.Context, message *domain.Message) (*domain.Message, error) {
	if err := validateMessageInput(message); err != nil {
		slog.Warn("[MessageRepository] validation failed", "error", err)
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if err := r.db.WithContext(ctx).Create(message).Error; err != nil {
		slog.Error("[MessageRepository] database error creating message", "thread_id", message.ThreadID, "error", err)
		return nil, errors.New("database error creating message")
	}

	slog.Debug("[MessageRepository] message created",
		"message_id", message.ID,
		"thread_id", message.ThreadID,
		"sender", message.Sender,
		"content_length", len(message.Content))
	return message, nil
}

// FindByThreadID returns the thread's messages in conversation order.
func (r *gormMessageRepository) FindByThreadID(ctx context.Context, threadID uint) ([]domain.Message, error) {
	if threadID == 0 {
		return nil, errors.New("invalid thread ID")
	}

	var messages []domain.Message
	err := r.db.WithContext(ctx).
		Where("thread_id = ?", threadID).
		Order("created_at ASC, id ASC").
		Find(&messages).Error
	if err != nil {
		slog.Error("[MessageRepository] database error listing messages", "thread_id", threadID, "error", err)
		return nil, errors.New("database error fetching messages")
	}
	return messages, nil
}

func validateMessageInput(message *domain.Message) error {
	if message == nil {
		return errors.New("message cannot be nil")
	}
	if message.ThreadID == 0 {
		return errors.New("thread ID is required")
	}
	if !message.Sender.Valid() {
		return fmt.Errorf("invalid sender %q", message.Sender)
	}
	return nil
}

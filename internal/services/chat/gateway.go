// File: internal/services/chat/gateway.go
package chat

import (
	"context"
	"errors"
	"strings"

	"github.com/iyunix/go-llamachat/internal/domain"
	"github.com/iyunix/go-llamachat/internal/repository/message"
	"github.com/iyunix/go-llamachat/internal/repository/thread"
)

// Gateway is the only writer of thread history. Ownership is checked against
// the store on every call.
type Gateway struct {
	threadRepo  thread.ThreadRepository
	messageRepo message.MessageRepository
	logger      Logger
}

func NewGateway(threadRepo thread.ThreadRepository, messageRepo message.MessageRepository, logger Logger) *Gateway {
	return &Gateway{
		threadRepo:  threadRepo,
		messageRepo: messageRepo,
		logger:      logger,
	}
}

// GetOwnedThread fails with a not-found error when the thread is absent or
// belongs to another user.
func (g *Gateway) GetOwnedThread(ctx context.Context, threadID, userID uint) (*domain.Thread, error) {
	t, err := g.threadRepo.FindOwned(ctx, threadID, userID)
	if err != nil {
		if errors.Is(err, thread.ErrThreadNotFound) {
			return nil, NewNotFoundError("get_owned_thread", userID, threadID)
		}
		g.logger.Error("thread lookup failed", "thread_id", threadID, "user_id", userID, "error", err)
		return nil, NewStorageError("get_owned_thread", "failed to load thread", err)
	}
	return t, nil
}

// AppendMessage records one turn and bumps the thread's last-updated time.
func (g *Gateway) AppendMessage(ctx context.Context, t *domain.Thread, sender domain.Sender, content string) (*domain.Message, error) {
	msg, err := g.messageRepo.Create(ctx, &domain.Message{
		ThreadID: t.ID,
		Sender:   sender,
		Content:  content,
	})
	if err != nil {
		g.logger.Error("failed to append message", "thread_id", t.ID, "sender", sender, "error", err)
		return nil, NewStorageError("append_message", "failed to save message", err)
	}

	if err := g.threadRepo.TouchUpdatedAt(ctx, t.ID); err != nil {
		g.logger.Warn("failed to touch thread", "thread_id", t.ID, "error", err)
	}
	return msg, nil
}

// ListMessages returns the owned thread's history in conversation order.
func (g *Gateway) ListMessages(ctx context.Context, threadID, userID uint) ([]domain.Message, error) {
	t, err := g.GetOwnedThread(ctx, threadID, userID)
	if err != nil {
		return nil, err
	}
	messages, err := g.messageRepo.FindByThreadID(ctx, t.ID)
	if err != nil {
		return nil, NewStorageError("list_messages", "failed to load messages", err)
	}
	return messages, nil
}

// ExtractLastUserLine returns the content of the last line starting with
// "user:", trimmed, or "" when the transcript has none. Indented lines do not
// count.
func ExtractLastUserLine(raw string) string {
	line, _ := lastUserLine(raw)
	return line
}

func lastUserLine(raw string) (string, bool) {
	lines := strings.Split(raw, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if rest, ok := strings.CutPrefix(lines[i], "user:"); ok {
			return strings.TrimSpace(rest), true
		}
	}
	return "", false
}

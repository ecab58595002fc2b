// File: internal/services/chat/service.go
package chat

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/iyunix/go-llamachat/internal/domain"
	"github.com/iyunix/go-llamachat/internal/repository/message"
	"github.com/iyunix/go-llamachat/internal/repository/thread"
	"github.com/iyunix/go-llamachat/internal/services/ai"
)

var _ ChatService = (*Service)(nil)

// Service orchestrates one chat request: validate, resolve the thread,
// record the user turn, build the context, then call the backend.
type Service struct {
	config   *Config
	threads  thread.ThreadRepository
	gateway  *Gateway
	provider ai.Provider
	pump     *Pump
	registry *Registry
	logger   Logger
}

func NewService(
	config *Config,
	threadRepo thread.ThreadRepository,
	messageRepo message.MessageRepository,
	provider ai.Provider,
	logger Logger,
) (*Service, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	gateway := NewGateway(threadRepo, messageRepo, logger)
	return &Service{
		config:   config,
		threads:  threadRepo,
		gateway:  gateway,
		provider: provider,
		pump:     NewPump(gateway, config.SaveTimeout, logger),
		registry: NewRegistry(),
		logger:   logger,
	}, nil
}

func (s *Service) CreateThread(ctx context.Context, userID uint) (*domain.Thread, error) {
	t, err := s.threads.Create(ctx, &domain.Thread{UserID: userID, Title: domain.DefaultThreadTitle})
	if err != nil {
		return nil, NewStorageError("create_thread", "failed to create thread", err)
	}
	s.logger.Info("thread created", "thread_id", t.ID, "user_id", userID)
	return t, nil
}

func (s *Service) ListThreads(ctx context.Context, userID uint) ([]domain.Thread, error) {
	threads, err := s.threads.FindByUserID(ctx, userID)
	if err != nil {
		return nil, NewStorageError("list_threads", "failed to load threads", err)
	}
	return threads, nil
}

func (s *Service) ListMessages(ctx context.Context, userID, threadID uint) ([]domain.Message, error) {
	return s.gateway.ListMessages(ctx, threadID, userID)
}

// RenameThread trims the title and clips it to the maximum title length.
func (s *Service) RenameThread(ctx context.Context, userID, threadID uint, title string) (*domain.Thread, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, NewValidationError("rename_thread", CodeMissingTitle, "No title provided")
	}
	title = clipRunes(title, domain.MaxThreadTitleLength)

	if err := s.threads.UpdateTitle(ctx, threadID, userID, title); err != nil {
		if errors.Is(err, thread.ErrThreadNotFound) {
			return nil, NewNotFoundError("rename_thread", userID, threadID)
		}
		return nil, NewStorageError("rename_thread", "failed to update title", err)
	}
	return s.gateway.GetOwnedThread(ctx, threadID, userID)
}

func (s *Service) DeleteThread(ctx context.Context, userID, threadID uint) error {
	if err := s.threads.Delete(ctx, threadID, userID); err != nil {
		if errors.Is(err, thread.ErrThreadNotFound) {
			return NewNotFoundError("delete_thread", userID, threadID)
		}
		return NewStorageError("delete_thread", "failed to delete thread", err)
	}
	s.logger.Info("thread deleted", "thread_id", threadID, "user_id", userID)
	return nil
}

func (s *Service) DeleteAllThreads(ctx context.Context, userID uint) (int64, error) {
	count, err := s.threads.DeleteAllByUserID(ctx, userID)
	if err != nil {
		return 0, NewStorageError("delete_all_threads", "failed to delete threads", err)
	}
	s.logger.Info("threads deleted", "user_id", userID, "count", count)
	return count, nil
}

// Reply is the non-streaming variant. Inference failures are absorbed: the
// bot turn is recorded with whatever text came back, possibly none.
func (s *Service) Reply(ctx context.Context, userID, threadID uint, raw string) (string, error) {
	t, err := s.begin(ctx, "reply", userID, threadID, raw)
	if err != nil {
		return "", err
	}

	turns := BuildLastMessageContext(raw, s.config.MaxContextChars)
	if len(turns) == 0 {
		s.logger.Warn("degenerate context", "thread_id", t.ID, "raw_length", len(raw))
	}

	callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.config.CompletionTimeout)
	defer cancel()

	content, err := s.provider.Complete(callCtx, s.config.ChatModel, turns)
	if err != nil {
		s.logger.Warn("inference call failed, recording empty reply",
			"thread_id", t.ID,
			"connection_failure", ai.IsConnectionFailure(err),
			"error", err)
		content = ""
	}

	saveCtx, saveCancel := context.WithTimeout(context.WithoutCancel(ctx), s.config.SaveTimeout)
	defer saveCancel()
	if _, err := s.gateway.AppendMessage(saveCtx, t, domain.SenderBot, content); err != nil {
		return "", err
	}
	return content, nil
}

// StartStream runs everything up to the first upstream read and registers
// the session. A backend that cannot be reached does not fail the request;
// the session then ends as errored with nothing to commit.
func (s *Service) StartStream(ctx context.Context, userID, threadID uint, raw string) (*StreamSession, error) {
	t, err := s.begin(ctx, "stream", userID, threadID, raw)
	if err != nil {
		return nil, err
	}

	turns := BuildContext(raw, s.config.MaxContextChars)
	if len(turns) <= 1 {
		s.logger.Warn("degenerate context", "thread_id", t.ID, "raw_length", len(raw))
	}

	// Cancellation is cooperative, so the upstream call is not tied to the
	// client connection.
	streamCtx, release := context.WithTimeout(context.WithoutCancel(ctx), s.config.StreamTimeout)
	upstream, openErr := s.provider.Stream(streamCtx, s.config.ChatModel, turns)
	if openErr != nil {
		s.logger.Warn("inference stream unavailable",
			"thread_id", t.ID,
			"connection_failure", ai.IsConnectionFailure(openErr),
			"error", openErr)
		upstream = nil
	}

	session := NewStreamSession(uuid.NewString(), userID, t, turns, upstream, openErr, release)
	s.registry.Add(session)
	s.logger.Debug("stream started", "stream_id", session.ID, "thread_id", t.ID, "turns", len(turns))
	return session, nil
}

func (s *Service) RunStream(ctx context.Context, session *StreamSession, emit Emitter) PumpResult {
	defer s.registry.Remove(session.ID)

	result := s.pump.Run(ctx, session, emit)
	s.logger.Info("stream finished",
		"stream_id", session.ID,
		"thread_id", session.Thread.ID,
		"status", result.Status,
		"fragments", result.Fragments,
		"response_length", len(result.Text),
		"committed", result.Message != nil)
	if result.Status == StatusErrored && result.Err != nil {
		s.logger.Warn("stream ended with transport error", "stream_id", session.ID, "error", result.Err)
	}
	return result
}

func (s *Service) CancelStream(userID uint, streamID string) error {
	if !s.registry.Cancel(streamID, userID) {
		return &ChatError{
			Type:      ErrTypeNotFound,
			Code:      CodeStreamNotFound,
			Operation: "cancel_stream",
			Message:   "Stream not found",
			UserID:    userID,
		}
	}
	s.logger.Info("stream cancellation requested", "stream_id", streamID, "user_id", userID)
	return nil
}

// CancelAll stops every in-flight stream at its next fragment boundary. Each
// stream still commits what it has accumulated. Used on shutdown.
func (s *Service) CancelAll() int {
	n := s.registry.CancelAll()
	if n > 0 {
		s.logger.Info("cancelling in-flight streams", "count", n)
	}
	return n
}

// ActiveStreams reports how many streams are still running.
func (s *Service) ActiveStreams() int {
	return s.registry.Len()
}

func (s *Service) HealthCheck(ctx context.Context) error {
	return s.provider.HealthCheck(ctx)
}

// begin validates the message, resolves the thread and records the user turn.
// Nothing is written unless the first two steps succeed.
func (s *Service) begin(ctx context.Context, operation string, userID, threadID uint, raw string) (*domain.Thread, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, NewValidationError(operation, CodeMissingMessage, "No message provided")
	}

	t, err := s.gateway.GetOwnedThread(ctx, threadID, userID)
	if err != nil {
		return nil, err
	}

	if _, err := s.gateway.AppendMessage(ctx, t, domain.SenderUser, userUtterance(raw)); err != nil {
		return nil, err
	}
	return t, nil
}

// userUtterance is what the user actually said. For a transcript that is the
// last "user:" line, possibly empty; a bare message is kept whole.
func userUtterance(raw string) string {
	if line, ok := lastUserLine(raw); ok {
		return line
	}
	if len(ParseTurns(raw)) > 0 {
		return ""
	}
	return strings.TrimSpace(raw)
}

func clipRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit])
}

package chat

import (
	"context"
	"io"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iyunix/go-llamachat/internal/database"
	"github.com/iyunix/go-llamachat/internal/domain"
	"github.com/iyunix/go-llamachat/internal/repository/message"
	"github.com/iyunix/go-llamachat/internal/repository/thread"
	"github.com/iyunix/go-llamachat/internal/services/ai"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Warn(string, ...interface{})  {}

// scriptedStream replays fragments, then returns err (io.EOF when nil).
type scriptedStream struct {
	mu        sync.Mutex
	fragments []string
	err       error
	recvCalls int
	closed    bool
	// onRecv runs before fragment i is handed to the caller.
	onRecv func(i int)
}

func (s *scriptedStream) Recv() (string, error) {
	s.mu.Lock()
	i := s.recvCalls
	s.recvCalls++
	s.mu.Unlock()

	if i < len(s.fragments) {
		if s.onRecv != nil {
			s.onRecv(i)
		}
		return s.fragments[i], nil
	}
	if s.err != nil {
		return "", s.err
	}
	return "", io.EOF
}

func (s *scriptedStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *scriptedStream) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recvCalls
}

type fakeProvider struct {
	mu          sync.Mutex
	completion  string
	completeErr error
	stream      *scriptedStream
	streamErr   error
	turns       [][]domain.Turn
}

func (p *fakeProvider) Complete(ctx context.Context, model string, turns []domain.Turn) (string, error) {
	p.record(turns)
	return p.completion, p.completeErr
}

func (p *fakeProvider) Stream(ctx context.Context, model string, turns []domain.Turn) (ai.Stream, error) {
	p.record(turns)
	if p.streamErr != nil {
		return nil, p.streamErr
	}
	return p.stream, nil
}

func (p *fakeProvider) HealthCheck(ctx context.Context) error { return nil }

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) record(turns []domain.Turn) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.turns = append(p.turns, turns)
}

type testEnv struct {
	threads  thread.ThreadRepository
	messages message.MessageRepository
	gateway  *Gateway
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := database.Open(database.Config{Driver: database.DriverSQLite, DSN: filepath.Join(t.TempDir(), "chat.db")})
	require.NoError(t, err)

	threads := thread.NewThreadRepository(db)
	messages := message.NewMessageRepository(db)
	return &testEnv{
		threads:  threads,
		messages: messages,
		gateway:  NewGateway(threads, messages, nopLogger{}),
	}
}

func (e *testEnv) newService(t *testing.T, provider ai.Provider) *Service {
	t.Helper()
	svc, err := NewService(DefaultConfig(), e.threads, e.messages, provider, nopLogger{})
	require.NoError(t, err)
	return svc
}

func (e *testEnv) createThread(t *testing.T, userID uint) *domain.Thread {
	t.Helper()
	created, err := e.threads.Create(context.Background(), &domain.Thread{UserID: userID})
	require.NoError(t, err)
	return created
}

func (e *testEnv) messagesOf(t *testing.T, threadID uint) []domain.Message {
	t.Helper()
	msgs, err := e.messages.FindByThreadID(context.Background(), threadID)
	require.NoError(t, err)
	return msgs
}

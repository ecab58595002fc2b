// File: internal/services/chat/pump.go
package chat

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync/atomic"
	"time"

	"github.com/iyunix/go-llamachat/internal/domain"
	"github.com/iyunix/go-llamachat/internal/services/ai"
)

// ErrSessionConsumed is returned when a session is pumped a second time.
var ErrSessionConsumed = errors.New("stream session already consumed")

// CancelFlag is a one-shot cancellation signal. It starts unset and can be
// set once; later calls to Cancel are no-ops.
type CancelFlag struct {
	set atomic.Bool
}

// Cancel sets the flag and reports whether this call was the one that set it.
func (f *CancelFlag) Cancel() bool {
	return f.set.CompareAndSwap(false, true)
}

func (f *CancelFlag) IsSet() bool {
	return f.set.Load()
}

// Emitter forwards one fragment downstream. It blocks until the consumer has
// accepted the fragment; an error means the consumer is gone.
type Emitter func(fragment string) error

// StreamSession is the state of one streaming inference call: its
// cancellation flag, the upstream fragment sequence and the text accumulated
// so far.
type StreamSession struct {
	ID     string
	UserID uint
	Thread *domain.Thread
	Turns  []domain.Turn

	flag     CancelFlag
	upstream ai.Stream
	openErr  error
	release  context.CancelFunc

	buffer    strings.Builder
	started   atomic.Bool
	committed atomic.Bool
}

// NewStreamSession wraps an upstream stream. A nil upstream with openErr set
// records a backend that could not be reached.
func NewStreamSession(id string, userID uint, t *domain.Thread, turns []domain.Turn, upstream ai.Stream, openErr error, release context.CancelFunc) *StreamSession {
	return &StreamSession{
		ID:       id,
		UserID:   userID,
		Thread:   t,
		Turns:    turns,
		upstream: upstream,
		openErr:  openErr,
		release:  release,
	}
}

// Cancel requests cooperative cancellation; the pump observes it at the next
// fragment boundary.
func (s *StreamSession) Cancel() bool {
	return s.flag.Cancel()
}

func (s *StreamSession) Cancelled() bool {
	return s.flag.IsSet()
}

func (s *StreamSession) close() {
	if s.upstream != nil {
		_ = s.upstream.Close()
	}
	if s.release != nil {
		s.release()
	}
}

// PumpResult describes how a session ended.
type PumpResult struct {
	Status    StreamStatus
	Text      string
	Fragments int
	// Err is the transport or downstream failure that ended the stream, if any.
	Err error
	// Message is the committed bot message; nil when nothing was accumulated.
	Message *domain.Message
}

// MessageCommitter persists the bot turn at the end of a stream.
type MessageCommitter interface {
	AppendMessage(ctx context.Context, t *domain.Thread, sender domain.Sender, content string) (*domain.Message, error)
}

// Pump relays fragments from a session's upstream to an Emitter, one at a
// time, and commits the accumulated text exactly once when it stops.
type Pump struct {
	committer   MessageCommitter
	saveTimeout time.Duration
	logger      Logger
}

func NewPump(committer MessageCommitter, saveTimeout time.Duration, logger Logger) *Pump {
	return &Pump{
		committer:   committer,
		saveTimeout: saveTimeout,
		logger:      logger,
	}
}

// Run drives the session to a terminal status. The cancellation flag is
// checked before each upstream read and again before each fragment is
// forwarded. Whatever the outcome, a non-empty buffer is committed as one bot
// message; an empty buffer commits nothing.
func (p *Pump) Run(ctx context.Context, s *StreamSession, emit Emitter) (result PumpResult) {
	if !s.started.CompareAndSwap(false, true) {
		return PumpResult{Status: StatusErrored, Err: ErrSessionConsumed}
	}

	result.Status = StatusErrored
	defer func() {
		s.close()
		result.Text = s.buffer.String()
		msg, err := p.commit(ctx, s)
		result.Message = msg
		if err != nil && result.Err == nil {
			result.Err = err
		}
	}()

	if s.upstream == nil {
		result.Err = s.openErr
		return result
	}

	for {
		if s.flag.IsSet() {
			result.Status = StatusCancelled
			return result
		}

		fragment, err := s.upstream.Recv()
		if errors.Is(err, io.EOF) {
			result.Status = StatusCompleted
			return result
		}
		if err != nil {
			result.Status = StatusErrored
			result.Err = err
			return result
		}

		if s.flag.IsSet() {
			result.Status = StatusCancelled
			return result
		}
		if fragment == "" {
			continue
		}

		s.buffer.WriteString(fragment)
		result.Fragments++
		if err := emit(fragment); err != nil {
			s.flag.Cancel()
			result.Status = StatusCancelled
			result.Err = err
			return result
		}
	}
}

func (p *Pump) commit(ctx context.Context, s *StreamSession) (*domain.Message, error) {
	if s.buffer.Len() == 0 {
		return nil, nil
	}
	if !s.committed.CompareAndSwap(false, true) {
		return nil, nil
	}

	// The write must outlive a disconnected client.
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.saveTimeout)
	defer cancel()

	msg, err := p.committer.AppendMessage(saveCtx, s.Thread, domain.SenderBot, s.buffer.String())
	if err != nil {
		p.logger.Error("failed to commit bot message", "stream_id", s.ID, "thread_id", s.Thread.ID, "error", err)
		return nil, err
	}
	return msg, nil
}

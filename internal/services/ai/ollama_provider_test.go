package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iyunix/go-llamachat/internal/domain"
)

func newOllamaTestProvider(t *testing.T, handler http.HandlerFunc) *OllamaProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := DefaultConfig()
	cfg.BaseURL = srv.URL
	return NewOllamaProvider(cfg)
}

func testTurns() []domain.Turn {
	return []domain.Turn{
		{Role: domain.RoleSystem, Content: "be brief"},
		{Role: domain.RoleUser, Content: "hi"},
		{Role: domain.RoleBot, Content: "hello"},
		{Role: domain.RoleUser, Content: "how are you"},
	}
}

func TestOllamaCompleteSendsChatRequest(t *testing.T) {
	var got ollamaChatRequest
	p := newOllamaTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		fmt.Fprint(w, `{"model":"llama3.1","message":{"role":"assistant","content":"I'm fine"},"done":true}`)
	})

	out, err := p.Complete(context.Background(), "llama3.1", testTurns())
	require.NoError(t, err)
	assert.Equal(t, "I'm fine", out)

	assert.Equal(t, "llama3.1", got.Model)
	assert.False(t, got.Stream)
	require.Len(t, got.Messages, 4)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "assistant", got.Messages[2].Role)
	assert.Equal(t, "how are you", got.Messages[3].Content)
}

func TestOllamaCompleteShapeMismatchYieldsEmpty(t *testing.T) {
	bodies := map[string]string{
		"not json":           `<html>oops</html>`,
		"missing message":    `{"done":true}`,
		"message not object": `{"message":"hello"}`,
		"content not string": `{"message":{"content":42}}`,
		"json array":         `[1,2,3]`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			p := newOllamaTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, body)
			})
			out, err := p.Complete(context.Background(), "llama3.1", testTurns())
			require.NoError(t, err)
			assert.Equal(t, "", out)
		})
	}
}

func TestOllamaCompleteReportsBackendErrors(t *testing.T) {
	p := newOllamaTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"error":"model 'llama3.1' not found"}`)
	})

	_, err := p.Complete(context.Background(), "llama3.1", testTurns())
	require.Error(t, err)
	var aiErr *AIError
	require.True(t, errors.As(err, &aiErr))
	assert.Equal(t, ErrTypeProvider, aiErr.Type)
	assert.Equal(t, http.StatusNotFound, aiErr.Code)
	assert.Contains(t, aiErr.Message, "not found")
}

func TestOllamaConnectionFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	cfg := DefaultConfig()
	cfg.BaseURL = srv.URL
	p := NewOllamaProvider(cfg)

	_, err := p.Complete(context.Background(), "llama3.1", testTurns())
	assert.True(t, IsConnectionFailure(err))

	_, err = p.Stream(context.Background(), "llama3.1", testTurns())
	assert.True(t, IsConnectionFailure(err))

	assert.Error(t, p.HealthCheck(context.Background()))
}

func TestOllamaStreamYieldsFragmentsUntilDone(t *testing.T) {
	p := newOllamaTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		var req ollamaChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.True(t, req.Stream)

		fmt.Fprintln(w, `{"message":{"role":"assistant","content":"Hel"},"done":false}`)
		fmt.Fprintln(w, `not json at all`)
		fmt.Fprintln(w, `{"message":{"role":"assistant","content":""},"done":false}`)
		fmt.Fprintln(w, ``)
		fmt.Fprintln(w, `{"message":{"role":"assistant","content":"lo"},"done":false}`)
		fmt.Fprintln(w, `{"message":{"role":"assistant","content":""},"done":true,"eval_count":2}`)
		fmt.Fprintln(w, `{"message":{"role":"assistant","content":"ignored"},"done":false}`)
	})

	stream, err := p.Stream(context.Background(), "llama3.1", testTurns())
	require.NoError(t, err)
	defer stream.Close()

	var fragments []string
	for {
		frag, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		fragments = append(fragments, frag)
	}
	assert.Equal(t, []string{"Hel", "lo"}, fragments)

	_, err = stream.Recv()
	assert.ErrorIs(t, err, io.EOF)
}

func TestOllamaStreamFinalChunkCarriesText(t *testing.T) {
	p := newOllamaTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"message":{"content":"all at once"},"done":true}`)
	})

	stream, err := p.Stream(context.Background(), "llama3.1", testTurns())
	require.NoError(t, err)
	defer stream.Close()

	frag, err := stream.Recv()
	require.NoError(t, err)
	assert.Equal(t, "all at once", frag)
	_, err = stream.Recv()
	assert.ErrorIs(t, err, io.EOF)
}

func TestOllamaStreamTruncatedIsTransportError(t *testing.T) {
	p := newOllamaTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, `{"message":{"content":"partial"},"done":false}`)
	})

	stream, err := p.Stream(context.Background(), "llama3.1", testTurns())
	require.NoError(t, err)
	defer stream.Close()

	frag, err := stream.Recv()
	require.NoError(t, err)
	assert.Equal(t, "partial", frag)

	_, err = stream.Recv()
	require.Error(t, err)
	assert.NotErrorIs(t, err, io.EOF)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.True(t, IsConnectionFailure(err))
}

func TestOllamaStreamErrorChunk(t *testing.T) {
	p := newOllamaTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, `{"message":{"content":"a"},"done":false}`)
		fmt.Fprintln(w, `{"error":"out of memory"}`)
	})

	stream, err := p.Stream(context.Background(), "llama3.1", testTurns())
	require.NoError(t, err)
	defer stream.Close()

	_, err = stream.Recv()
	require.NoError(t, err)
	_, err = stream.Recv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of memory")
}

func TestOllamaHealthCheck(t *testing.T) {
	p := newOllamaTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tags", r.URL.Path)
		fmt.Fprint(w, `{"models":[]}`)
	})
	assert.NoError(t, p.HealthCheck(context.Background()))
}

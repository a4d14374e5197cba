package backend

import (
	"context"
	"errors"
	"testing"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/aristath/taskplanner/internal/model"
)

func TestFactory_CreatesClaudeAdapter(t *testing.T) {
	b, err := New(context.Background(), Config{Type: TypeClaude, WorkDir: "/tmp"}, NewProcessManager())
	require.NoError(t, err)
	_, ok := b.(*ClaudeAdapter)
	assert.True(t, ok, "expected *ClaudeAdapter, got %T", b)
}

func TestFactory_CreatesGeminiAdapter(t *testing.T) {
	b, err := New(context.Background(), Config{Type: TypeGemini, APIKey: "test-key"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "gemini:"+DefaultGeminiModel, b.Name())
}

func TestFactory_GeminiRequiresAPIKey(t *testing.T) {
	_, err := New(context.Background(), Config{Type: TypeGemini}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrConfiguration))
}

func TestFactory_UnknownType(t *testing.T) {
	_, err := New(context.Background(), Config{Type: "unknown"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown backend type")
}

type flakyBackend struct {
	calls int
	err   error
}

func (f *flakyBackend) Send(ctx context.Context, msg Message) (Response, error) {
	f.calls++
	if f.err != nil {
		return Response{}, f.err
	}
	return Response{Content: "ok:" + msg.Content}, nil
}

func (f *flakyBackend) Name() string { return "flaky" }
func (f *flakyBackend) Close() error { return nil }

func TestBreaker_PassesThroughWithoutRetry(t *testing.T) {
	inner := &flakyBackend{err: errors.New("boom")}
	b := WithBreaker(inner, zap.NewNop())

	_, err := b.Send(context.Background(), Message{Content: "x"})
	require.Error(t, err)
	assert.Equal(t, "boom", err.Error())
	assert.Equal(t, 1, inner.calls, "a failed send must not be retried")
}

func TestBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	inner := &flakyBackend{err: errors.New("unavailable")}
	b := WithBreaker(inner, zap.NewNop())

	for i := 0; i < 5; i++ {
		_, _ = b.Send(context.Background(), Message{Content: "x"})
	}
	assert.Equal(t, gobreaker.StateOpen, b.State())

	_, err := b.Send(context.Background(), Message{Content: "x"})
	assert.True(t, errors.Is(err, gobreaker.ErrOpenState))
	assert.Equal(t, 5, inner.calls, "open circuit should not reach the backend")
}

func TestBreaker_CancellationDoesNotTrip(t *testing.T) {
	inner := &flakyBackend{err: context.Canceled}
	b := WithBreaker(inner, zap.NewNop())

	for i := 0; i < 10; i++ {
		_, _ = b.Send(context.Background(), Message{Content: "x"})
	}
	assert.Equal(t, gobreaker.StateClosed, b.State())
}

func TestBreaker_Success(t *testing.T) {
	b := WithBreaker(&flakyBackend{}, zap.NewNop())
	resp, err := b.Send(context.Background(), Message{Content: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "ok:hi", resp.Content)
	assert.Equal(t, "flaky", b.Name())
}

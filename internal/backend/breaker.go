package backend

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// BreakerBackend guards a Backend with a circuit breaker. It never retries:
// every Send is at most one call to the wrapped backend, and an open circuit
// fails fast with gobreaker.ErrOpenState.
type BreakerBackend struct {
	next Backend
	cb   *gobreaker.CircuitBreaker
}

// WithBreaker wraps b. The circuit trips after five consecutive failures and
// stays open for 30 seconds.
func WithBreaker(b Backend, logger *zap.Logger) *BreakerBackend {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        b.Name(),
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("model circuit breaker state changed",
				zap.String("backend", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
		IsSuccessful: func(err error) bool {
			// Caller cancellation says nothing about backend health.
			return err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
		},
	})
	return &BreakerBackend{next: b, cb: cb}
}

// Send forwards to the wrapped backend through the breaker.
func (b *BreakerBackend) Send(ctx context.Context, msg Message) (Response, error) {
	result, err := b.cb.Execute(func() (interface{}, error) {
		return b.next.Send(ctx, msg)
	})
	if err != nil {
		return Response{}, err
	}
	return result.(Response), nil
}

// Name returns the wrapped backend's name.
func (b *BreakerBackend) Name() string { return b.next.Name() }

// Close closes the wrapped backend.
func (b *BreakerBackend) Close() error { return b.next.Close() }

// State reports the current breaker state.
func (b *BreakerBackend) State() gobreaker.State { return b.cb.State() }

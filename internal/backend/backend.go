// Package backend adapts generative-model providers to a single Send call.
package backend

import (
	"context"
	"fmt"
)

const (
	TypeGemini = "gemini"
	TypeClaude = "claude"

	// DefaultGeminiModel is the model used when none is configured.
	DefaultGeminiModel = "gemini-2.5-flash"
)

// Backend defines the interface that all model adapters must implement.
type Backend interface {
	// Send issues one generation request and returns the model's text.
	Send(ctx context.Context, msg Message) (Response, error)

	// Name identifies the backend in logs, e.g. "gemini:gemini-2.5-flash".
	Name() string

	// Close releases the underlying session.
	Close() error
}

// New creates a backend based on cfg.Type.
// The ProcessManager is only used by subprocess backends and may be nil.
func New(ctx context.Context, cfg Config, pm *ProcessManager) (Backend, error) {
	switch cfg.Type {
	case TypeGemini, "":
		return NewGeminiAdapter(ctx, cfg)
	case TypeClaude:
		return NewClaudeAdapter(cfg, pm)
	default:
		return nil, fmt.Errorf("unknown backend type: %s", cfg.Type)
	}
}

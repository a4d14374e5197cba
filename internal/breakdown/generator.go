package breakdown

import (
	"context"

	"go.uber.org/zap"

	"github.com/aristath/taskplanner/internal/backend"
)

// Generator owns the model session and produces Breakdowns.
type Generator struct {
	backend backend.Backend
	logger  *zap.Logger
}

// NewGenerator wraps an already-configured backend. Credential checks happen
// when the backend is constructed.
func NewGenerator(b backend.Backend, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{backend: b, logger: logger}
}

// GenerateTaskBreakdown sends exactly one request to the model and parses the
// reply. Backend and parse errors are returned as-is.
func (g *Generator) GenerateTaskBreakdown(ctx context.Context, title, description string, deadline *string) (*Breakdown, error) {
	prompt := BuildPrompt(title, description, deadline)

	resp, err := g.backend.Send(ctx, backend.Message{Content: prompt, Role: "user"})
	if err != nil {
		return nil, err
	}
	g.logger.Debug("model response received",
		zap.String("backend", g.backend.Name()),
		zap.Int("bytes", len(resp.Content)))

	b, err := Parse(resp.Content)
	if err != nil {
		return nil, err
	}
	g.logger.Info("task breakdown parsed", zap.Int("tasks", len(b.Tasks)))
	return b, nil
}

// Backend returns the name of the underlying model backend.
func (g *Generator) Backend() string {
	return g.backend.Name()
}

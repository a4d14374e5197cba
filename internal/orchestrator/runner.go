package orchestrator

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// GoalRequest is one goal to plan in a batch.
type GoalRequest struct {
	Title       string  `yaml:"title" json:"title"`
	Description string  `yaml:"description" json:"description"`
	Deadline    *string `yaml:"deadline,omitempty" json:"deadline,omitempty"`
}

// BatchResult pairs a request with its outcome.
type BatchResult struct {
	Request GoalRequest
	Result  *Result
	Err     error
}

// CreateGoals plans several independent goals with at most limit running at
// once (default 4). Each goal is created, generated, and compensated exactly
// as CreateGoalWithTasks does; one failure does not stop the others. Results
// are returned in request order.
func (o *Orchestrator) CreateGoals(ctx context.Context, reqs []GoalRequest, limit int) []BatchResult {
	if limit <= 0 {
		limit = 4
	}

	results := make([]BatchResult, len(reqs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, req := range reqs {
		g.Go(func() error {
			results[i].Request = req
			if err := gctx.Err(); err != nil {
				results[i].Err = err
				return nil
			}
			res, err := o.CreateGoalWithTasks(gctx, req.Title, req.Description, req.Deadline)
			results[i].Result = res
			results[i].Err = err
			if err != nil {
				o.logger.Warn("batch goal failed", zap.String("title", req.Title), zap.Error(err))
			}
			// Failures stay in results; returning them would cancel siblings.
			return nil
		})
	}
	_ = g.Wait()
	return results
}

package orchestrator

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/aristath/taskplanner/internal/breakdown"
	"github.com/aristath/taskplanner/internal/model"
	"github.com/aristath/taskplanner/internal/persistence"
)

// DefaultTaskTitle is used when the model omits a task's title.
const DefaultTaskTitle = "Untitled Task"

// Materializer turns a parsed Breakdown into stored tasks.
type Materializer struct {
	store  persistence.Store
	logger *zap.Logger
}

// NewMaterializer creates a Materializer writing to store.
func NewMaterializer(store persistence.Store, logger *zap.Logger) *Materializer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Materializer{store: store, logger: logger}
}

// Materialize stores the breakdown's tasks under goalID in two passes.
//
// The first pass inserts every task, in order and one at a time, with no
// dependencies, and records title -> id. The second pass resolves each
// task's dependency references against those records and saves the result.
// References that resolve to nothing are dropped. The returned slice is
// aligned with b.Tasks.
func (m *Materializer) Materialize(ctx context.Context, goalID string, b *breakdown.Breakdown) ([]*model.Task, error) {
	created := make([]*model.Task, 0, len(b.Tasks))
	titleToID := make(map[string]string, len(b.Tasks))

	for i, proposed := range b.Tasks {
		task := m.newTask(goalID, i, proposed)
		if err := m.store.InsertTask(ctx, task); err != nil {
			return created, fmt.Errorf("failed to insert task %d: %w", i, err)
		}
		if prev, dup := titleToID[task.Title]; dup {
			m.logger.Warn("duplicate task title, later task wins dependency lookups",
				zap.String("title", task.Title),
				zap.String("previous_id", prev),
				zap.String("id", task.ID))
		}
		titleToID[task.Title] = task.ID
		created = append(created, task)
	}

	for i, proposed := range b.Tasks {
		if len(proposed.Dependencies) == 0 {
			continue
		}
		task := created[i]
		task.Dependencies = m.resolve(task, proposed.Dependencies, titleToID, created)
		if err := m.store.SaveTask(ctx, task); err != nil {
			return created, fmt.Errorf("failed to save dependencies of task %s: %w", task.ID, err)
		}
	}

	return created, nil
}

func (m *Materializer) newTask(goalID string, index int, proposed breakdown.TaskSpec) *model.Task {
	title := DefaultTaskTitle
	if proposed.Title != nil {
		title = *proposed.Title
	}
	description := ""
	if proposed.Description != nil {
		description = *proposed.Description
	}

	return &model.Task{
		GoalID:         goalID,
		Title:          title,
		Description:    description,
		Status:         model.StatusPending,
		Priority:       model.ParsePriority(proposed.Priority),
		EstimatedHours: proposed.EstimatedHours,
		StartDate:      m.parseDate(index, "start_date", proposed.StartDate),
		EndDate:        m.parseDate(index, "end_date", proposed.EndDate),
		Dependencies:   []model.TaskDependency{},
	}
}

// parseDate returns nil for empty or unparseable input; the latter is logged.
func (m *Materializer) parseDate(index int, field, raw string) *time.Time {
	if raw == "" {
		return nil
	}
	t, err := model.ParseTimestamp(raw)
	if err != nil {
		m.logger.Warn("ignoring unparseable task date",
			zap.Int("task_index", index),
			zap.String("field", field),
			zap.String("value", raw),
			zap.Error(err))
		return nil
	}
	return &t
}

func (m *Materializer) resolve(task *model.Task, refs []breakdown.DependencyRef, titleToID map[string]string, created []*model.Task) []model.TaskDependency {
	deps := []model.TaskDependency{}
	for _, ref := range refs {
		switch ref.Kind {
		case breakdown.DependencyByTitle:
			if id, ok := titleToID[ref.Title]; ok {
				deps = append(deps, model.TaskDependency{TaskID: id, TaskTitle: ref.Title})
				continue
			}
		case breakdown.DependencyByIndex:
			if ref.Index >= 0 && ref.Index < len(created) {
				dep := created[ref.Index]
				deps = append(deps, model.TaskDependency{TaskID: dep.ID, TaskTitle: dep.Title})
				continue
			}
		}
		m.logger.Debug("dropping unresolvable dependency",
			zap.String("task_id", task.ID),
			zap.String("task_title", task.Title),
			zap.Any("reference", ref))
	}
	return deps
}

// Package orchestrator drives the goal lifecycle: it stores a goal, asks the
// model for a task breakdown, materializes the tasks, and rolls the goal back
// when any of that fails. It also serves the read and status-update paths.
package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/aristath/taskplanner/internal/breakdown"
	"github.com/aristath/taskplanner/internal/events"
	"github.com/aristath/taskplanner/internal/model"
	"github.com/aristath/taskplanner/internal/persistence"
	"github.com/aristath/taskplanner/internal/scheduler"
)

// Generator produces a task breakdown for a goal.
type Generator interface {
	GenerateTaskBreakdown(ctx context.Context, title, description string, deadline *string) (*breakdown.Breakdown, error)
}

// Config wires an Orchestrator's collaborators.
type Config struct {
	Store     persistence.Store
	Generator Generator
	Bus       *events.EventBus // optional
	Logger    *zap.Logger      // optional

	// GenerationTimeout bounds the model call. Zero means no limit.
	GenerationTimeout time.Duration
}

// Orchestrator holds the store and model session for all requests.
type Orchestrator struct {
	store        persistence.Store
	generator    Generator
	materializer *Materializer
	bus          *events.EventBus
	logger       *zap.Logger
	genTimeout   time.Duration
}

// New creates an Orchestrator.
func New(cfg Config) *Orchestrator {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		store:        cfg.Store,
		generator:    cfg.Generator,
		materializer: NewMaterializer(cfg.Store, logger),
		bus:          cfg.Bus,
		logger:       logger,
		genTimeout:   cfg.GenerationTimeout,
	}
}

// Insights carries the model's plan-level estimates.
type Insights struct {
	TotalEstimatedHours *float64
	SuggestedTimeline   string
}

// Result is the outcome of a successful CreateGoalWithTasks.
type Result struct {
	Goal     *model.Goal
	Tasks    []*model.Task
	Insights Insights
}

// GoalWithTasks is a goal and every task bound to it.
type GoalWithTasks struct {
	Goal  *model.Goal
	Tasks []*model.Task
}

// CreateGoalWithTasks stores a goal, generates its tasks, and stores them.
// If generation or materialization fails the goal and any tasks already
// written are deleted and an *model.OperationError is returned.
func (o *Orchestrator) CreateGoalWithTasks(ctx context.Context, title, description string, deadline *string) (*Result, error) {
	if strings.TrimSpace(title) == "" {
		return nil, fmt.Errorf("%w: title must not be empty", model.ErrValidation)
	}

	goal := &model.Goal{
		Title:       title,
		Description: description,
		Deadline:    o.parseDeadline(deadline),
	}
	if err := o.store.InsertGoal(ctx, goal); err != nil {
		return nil, &model.OperationError{Op: "create goal", Err: err}
	}
	o.publish(events.TopicGoal, events.GoalCreatedEvent{ID: goal.ID, Title: goal.Title, Timestamp: time.Now()})

	start := time.Now()
	result, err := o.generate(ctx, goal, deadline)
	if err != nil {
		o.compensate(ctx, goal.ID)
		o.publish(events.TopicGoal, events.GoalFailedEvent{
			ID:        goal.ID,
			Err:       err,
			Duration:  time.Since(start),
			Timestamp: time.Now(),
		})
		return nil, &model.OperationError{Op: "generate tasks", Err: err}
	}

	o.publish(events.TopicGoal, events.GoalGeneratedEvent{
		ID:                  goal.ID,
		TaskCount:           len(result.Tasks),
		TotalEstimatedHours: goal.TotalEstimatedHours,
		Duration:            time.Since(start),
		Timestamp:           time.Now(),
	})
	return result, nil
}

func (o *Orchestrator) generate(ctx context.Context, goal *model.Goal, deadline *string) (*Result, error) {
	genCtx := ctx
	if o.genTimeout > 0 {
		var cancel context.CancelFunc
		genCtx, cancel = context.WithTimeout(ctx, o.genTimeout)
		defer cancel()
	}

	b, err := o.generator.GenerateTaskBreakdown(genCtx, goal.Title, goal.Description, deadline)
	if err != nil {
		return nil, err
	}

	if b.HasTotalEstimate {
		goal.TotalEstimatedHours = b.TotalEstimatedHours
		if err := o.store.SaveGoal(ctx, goal); err != nil {
			return nil, fmt.Errorf("failed to save goal estimate: %w", err)
		}
	}

	tasks, err := o.materializer.Materialize(ctx, goal.ID, b)
	if err != nil {
		return nil, err
	}

	insights := Insights{SuggestedTimeline: b.SuggestedTimeline}
	if b.HasTotalEstimate {
		insights.TotalEstimatedHours = b.TotalEstimatedHours
	} else {
		zero := 0.0
		insights.TotalEstimatedHours = &zero
	}
	return &Result{Goal: goal, Tasks: tasks, Insights: insights}, nil
}

// compensate removes a goal whose generation failed, together with any tasks
// the materializer managed to write. Cleanup runs even if ctx is done.
func (o *Orchestrator) compensate(ctx context.Context, goalID string) {
	ctx = context.WithoutCancel(ctx)
	if err := o.store.DeleteTasksByGoal(ctx, goalID); err != nil {
		o.logger.Error("failed to delete partial tasks", zap.String("goal_id", goalID), zap.Error(err))
	}
	if err := o.store.DeleteGoal(ctx, goalID); err != nil {
		o.logger.Error("failed to delete goal after generation failure", zap.String("goal_id", goalID), zap.Error(err))
	}
}

func (o *Orchestrator) parseDeadline(deadline *string) *time.Time {
	if deadline == nil || *deadline == "" {
		return nil
	}
	t, err := model.ParseTimestamp(*deadline)
	if err != nil {
		o.logger.Warn("ignoring unparseable deadline", zap.String("value", *deadline), zap.Error(err))
		return nil
	}
	return &t
}

// GetGoalWithTasks returns a goal and its tasks, or model.ErrNotFound.
func (o *Orchestrator) GetGoalWithTasks(ctx context.Context, goalID string) (*GoalWithTasks, error) {
	goal, err := o.store.GetGoal(ctx, goalID)
	if err != nil {
		return nil, err
	}
	tasks, err := o.store.FindTasksByGoal(ctx, goalID)
	if err != nil {
		return nil, err
	}
	return &GoalWithTasks{Goal: goal, Tasks: tasks}, nil
}

// ListGoals returns every goal in creation order.
func (o *Orchestrator) ListGoals(ctx context.Context) ([]*model.Goal, error) {
	return o.store.ListGoals(ctx)
}

// GetTask returns one task, or model.ErrNotFound.
func (o *Orchestrator) GetTask(ctx context.Context, taskID string) (*model.Task, error) {
	return o.store.GetTask(ctx, taskID)
}

// UpdateTaskStatus validates status and stores it on the task. Strings
// outside the status enumeration fail with model.ErrValidation before the
// task is looked up.
func (o *Orchestrator) UpdateTaskStatus(ctx context.Context, taskID, status string) (*model.Task, error) {
	next, err := model.ParseStatus(status)
	if err != nil {
		return nil, err
	}

	task, err := o.store.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	prev := task.Status
	task.Status = next
	if err := o.store.SaveTask(ctx, task); err != nil {
		return nil, err
	}

	o.publish(events.TopicTask, events.TaskStatusChangedEvent{
		TaskID:    task.ID,
		Goal:      task.GoalID,
		Title:     task.Title,
		From:      prev,
		To:        next,
		Timestamp: time.Now(),
	})
	return task, nil
}

// GoalSchedule is a goal's read-only execution view.
type GoalSchedule struct {
	Goal *model.Goal
	scheduler.Schedule
}

// GetSchedule orders a goal's tasks by dependency and reports which can start.
func (o *Orchestrator) GetSchedule(ctx context.Context, goalID string) (*GoalSchedule, error) {
	gwt, err := o.GetGoalWithTasks(ctx, goalID)
	if err != nil {
		return nil, err
	}
	schedule := scheduler.FromTasks(gwt.Tasks).Schedule()
	if schedule.Cyclic {
		o.logger.Warn("goal has cyclic task dependencies", zap.String("goal_id", goalID))
	}
	return &GoalSchedule{Goal: gwt.Goal, Schedule: schedule}, nil
}

func (o *Orchestrator) publish(topic string, ev events.Event) {
	if o.bus != nil {
		o.bus.Publish(topic, ev)
	}
}

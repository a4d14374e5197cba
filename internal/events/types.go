package events

import (
	"time"

	"github.com/aristath/taskplanner/internal/model"
)

// Event is the base interface for all events. Every event belongs to a goal.
type Event interface {
	EventType() string
	GoalID() string
}

// Topic constants
const (
	TopicGoal = "goal"
	TopicTask = "task"
)

// Event type constants
const (
	EventTypeGoalCreated       = "goal.created"
	EventTypeGoalGenerated     = "goal.generated"
	EventTypeGoalFailed        = "goal.failed"
	EventTypeTaskStatusChanged = "task.status_changed"
)

// GoalCreatedEvent is published once a goal is stored, before generation.
type GoalCreatedEvent struct {
	ID        string
	Title     string
	Timestamp time.Time
}

func (e GoalCreatedEvent) EventType() string { return EventTypeGoalCreated }
func (e GoalCreatedEvent) GoalID() string    { return e.ID }

// GoalGeneratedEvent is published when a goal's tasks have been materialized.
type GoalGeneratedEvent struct {
	ID                  string
	TaskCount           int
	TotalEstimatedHours *float64
	Duration            time.Duration
	Timestamp           time.Time
}

func (e GoalGeneratedEvent) EventType() string { return EventTypeGoalGenerated }
func (e GoalGeneratedEvent) GoalID() string    { return e.ID }

// GoalFailedEvent is published when generation or materialization failed and
// the goal was rolled back.
type GoalFailedEvent struct {
	ID        string
	Err       error
	Duration  time.Duration
	Timestamp time.Time
}

func (e GoalFailedEvent) EventType() string { return EventTypeGoalFailed }
func (e GoalFailedEvent) GoalID() string    { return e.ID }

// TaskStatusChangedEvent is published after a status update is stored.
type TaskStatusChangedEvent struct {
	TaskID    string
	Goal      string
	Title     string
	From      model.TaskStatus
	To        model.TaskStatus
	Timestamp time.Time
}

func (e TaskStatusChangedEvent) EventType() string { return EventTypeTaskStatusChanged }
func (e TaskStatusChangedEvent) GoalID() string    { return e.Goal }

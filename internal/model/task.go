package model

import (
	"fmt"
	"strings"
	"time"
)

// TaskStatus is the lifecycle state of a task.
type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusInProgress TaskStatus = "in_progress"
	StatusCompleted  TaskStatus = "completed"
	StatusBlocked    TaskStatus = "blocked"
)

// Statuses lists every valid status in display order.
var Statuses = []TaskStatus{StatusPending, StatusInProgress, StatusCompleted, StatusBlocked}

// ParseStatus validates a caller-supplied status. The match is exact:
// "Completed" is rejected just like "archived".
func ParseStatus(s string) (TaskStatus, error) {
	for _, st := range Statuses {
		if string(st) == s {
			return st, nil
		}
	}
	names := make([]string, len(Statuses))
	for i, st := range Statuses {
		names[i] = string(st)
	}
	return "", fmt.Errorf("%w: invalid status %q, must be one of: %s", ErrValidation, s, strings.Join(names, ", "))
}

// Next returns the status that follows s in display order, wrapping around.
func (s TaskStatus) Next() TaskStatus {
	for i, st := range Statuses {
		if st == s {
			return Statuses[(i+1)%len(Statuses)]
		}
	}
	return StatusPending
}

// TaskPriority ranks how urgent a task is.
type TaskPriority string

const (
	PriorityLow      TaskPriority = "low"
	PriorityMedium   TaskPriority = "medium"
	PriorityHigh     TaskPriority = "high"
	PriorityCritical TaskPriority = "critical"
)

// ParsePriority maps free text onto a priority, ignoring case.
// Anything unrecognized falls back to PriorityMedium.
func ParsePriority(s string) TaskPriority {
	switch TaskPriority(strings.ToLower(s)) {
	case PriorityLow:
		return PriorityLow
	case PriorityHigh:
		return PriorityHigh
	case PriorityCritical:
		return PriorityCritical
	default:
		return PriorityMedium
	}
}

// TaskDependency is a denormalized reference to a sibling task.
// It only exists embedded in its owning Task.
type TaskDependency struct {
	TaskID    string
	TaskTitle string
}

// Task is one actionable unit derived from a Goal.
type Task struct {
	ID             string
	GoalID         string
	Title          string
	Description    string
	Status         TaskStatus
	Priority       TaskPriority
	EstimatedHours *float64
	StartDate      *time.Time
	EndDate        *time.Time
	Dependencies   []TaskDependency
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Clone returns a deep copy of t.
func (t *Task) Clone() *Task {
	if t == nil {
		return nil
	}
	cp := *t
	if t.Dependencies != nil {
		cp.Dependencies = append([]TaskDependency(nil), t.Dependencies...)
	}
	return &cp
}

// Package model defines the goal and task records shared by the planner's
// storage, service, and transport layers.
package model

import "time"

// Goal is a user-defined objective that tasks are generated under.
// A goal's tasks are exactly those whose GoalID equals its ID; no reverse
// pointer is stored.
type Goal struct {
	ID                  string
	Title               string
	Description         string
	Deadline            *time.Time
	TotalEstimatedHours *float64 // populated after generation
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

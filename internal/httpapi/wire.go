package httpapi

import (
	"time"

	"github.com/aristath/taskplanner/internal/model"
	"github.com/aristath/taskplanner/internal/orchestrator"
	"github.com/aristath/taskplanner/internal/scheduler"
)

// isoLayout renders timestamps as ISO-8601 with microsecond precision.
const isoLayout = "2006-01-02T15:04:05.999999Z07:00"

func isoTime(t time.Time) string {
	return t.UTC().Format(isoLayout)
}

func isoTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := isoTime(*t)
	return &s
}

type createGoalRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Deadline    *string `json:"deadline"`
}

type updateStatusRequest struct {
	Status *string `json:"status"`
}

type goalJSON struct {
	ID                  string   `json:"id"`
	Title               string   `json:"title"`
	Description         string   `json:"description"`
	Deadline            *string  `json:"deadline"`
	TotalEstimatedHours *float64 `json:"total_estimated_hours"`
	CreatedAt           string   `json:"created_at"`
}

type dependencyJSON struct {
	TaskID    string `json:"task_id"`
	TaskTitle string `json:"task_title"`
}

type taskJSON struct {
	ID             string           `json:"id"`
	Title          string           `json:"title"`
	Description    string           `json:"description"`
	Status         string           `json:"status"`
	Priority       string           `json:"priority"`
	EstimatedHours *float64         `json:"estimated_hours"`
	StartDate      *string          `json:"start_date"`
	EndDate        *string          `json:"end_date"`
	Dependencies   []dependencyJSON `json:"dependencies"`
}

type taskDetailJSON struct {
	taskJSON
	GoalID    string `json:"goal_id"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type taskStatusJSON struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Status    string `json:"status"`
	UpdatedAt string `json:"updated_at"`
}

type insightsJSON struct {
	TotalEstimatedHours *float64 `json:"total_estimated_hours"`
	SuggestedTimeline   string   `json:"suggested_timeline"`
}

type createGoalResponse struct {
	Success    bool         `json:"success"`
	Goal       goalJSON     `json:"goal"`
	Tasks      []taskJSON   `json:"tasks"`
	AIInsights insightsJSON `json:"ai_insights"`
}

type goalResponse struct {
	Success bool       `json:"success"`
	Goal    goalJSON   `json:"goal"`
	Tasks   []taskJSON `json:"tasks"`
}

type taskResponse struct {
	Success bool           `json:"success"`
	Task    taskDetailJSON `json:"task"`
}

type taskStatusResponse struct {
	Success bool           `json:"success"`
	Task    taskStatusJSON `json:"task"`
}

type scheduleNodeJSON struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Status    string   `json:"status"`
	DependsOn []string `json:"depends_on"`
}

type progressJSON struct {
	Total      int `json:"total"`
	Pending    int `json:"pending"`
	InProgress int `json:"in_progress"`
	Completed  int `json:"completed"`
	Blocked    int `json:"blocked"`
}

type scheduleResponse struct {
	Success  bool               `json:"success"`
	GoalID   string             `json:"goal_id"`
	Order    []scheduleNodeJSON `json:"order"`
	Ready    []scheduleNodeJSON `json:"ready"`
	Progress progressJSON       `json:"progress"`
	Cyclic   bool               `json:"cyclic"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

func toGoalJSON(g *model.Goal) goalJSON {
	return goalJSON{
		ID:                  g.ID,
		Title:               g.Title,
		Description:         g.Description,
		Deadline:            isoTimePtr(g.Deadline),
		TotalEstimatedHours: g.TotalEstimatedHours,
		CreatedAt:           isoTime(g.CreatedAt),
	}
}

func toTaskJSON(t *model.Task) taskJSON {
	deps := make([]dependencyJSON, 0, len(t.Dependencies))
	for _, d := range t.Dependencies {
		deps = append(deps, dependencyJSON{TaskID: d.TaskID, TaskTitle: d.TaskTitle})
	}
	return taskJSON{
		ID:             t.ID,
		Title:          t.Title,
		Description:    t.Description,
		Status:         string(t.Status),
		Priority:       string(t.Priority),
		EstimatedHours: t.EstimatedHours,
		StartDate:      isoTimePtr(t.StartDate),
		EndDate:        isoTimePtr(t.EndDate),
		Dependencies:   deps,
	}
}

func toTaskJSONs(tasks []*model.Task) []taskJSON {
	out := make([]taskJSON, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, toTaskJSON(t))
	}
	return out
}

func toTaskDetailJSON(t *model.Task) taskDetailJSON {
	return taskDetailJSON{
		taskJSON:  toTaskJSON(t),
		GoalID:    t.GoalID,
		CreatedAt: isoTime(t.CreatedAt),
		UpdatedAt: isoTime(t.UpdatedAt),
	}
}

func toNodeJSONs(nodes []*scheduler.Node) []scheduleNodeJSON {
	out := make([]scheduleNodeJSON, 0, len(nodes))
	for _, n := range nodes {
		deps := n.DependsOn
		if deps == nil {
			deps = []string{}
		}
		out = append(out, scheduleNodeJSON{ID: n.ID, Title: n.Title, Status: string(n.Status), DependsOn: deps})
	}
	return out
}

func toScheduleResponse(s *orchestrator.GoalSchedule) scheduleResponse {
	return scheduleResponse{
		Success: true,
		GoalID:  s.Goal.ID,
		Order:   toNodeJSONs(s.Order),
		Ready:   toNodeJSONs(s.Ready),
		Progress: progressJSON{
			Total:      s.Progress.Total,
			Pending:    s.Progress.Pending,
			InProgress: s.Progress.InProgress,
			Completed:  s.Progress.Completed,
			Blocked:    s.Progress.Blocked,
		},
		Cyclic: s.Cyclic,
	}
}

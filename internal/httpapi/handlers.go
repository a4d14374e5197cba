package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/aristath/taskplanner/internal/model"
)

const maxBodyBytes = 1 << 20

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Welcome to Smart Task Planner API",
		"version": APIVersion,
		"endpoints": map[string]string{
			"goals":    "/api/goals",
			"tasks":    "/tasks",
			"health":   "/health",
			"schedule": "/api/goals/{goal_id}/schedule",
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "smart-task-planner",
	})
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	var req createGoalRequest
	if err := decodeBody(r, w, &req); err != nil {
		s.writeError(w, err, "")
		return
	}
	if req.Title == nil || req.Description == nil {
		s.writeError(w, fmt.Errorf("%w: title and description are required", model.ErrValidation), "")
		return
	}

	// Generation keeps going if the client disconnects so the goal is
	// either fully materialized or rolled back.
	ctx := context.WithoutCancel(r.Context())
	result, err := s.svc.CreateGoalWithTasks(ctx, *req.Title, *req.Description, req.Deadline)
	if err != nil {
		s.writeError(w, err, "Failed to create goal")
		return
	}

	writeJSON(w, http.StatusOK, createGoalResponse{
		Success: true,
		Goal:    toGoalJSON(result.Goal),
		Tasks:   toTaskJSONs(result.Tasks),
		AIInsights: insightsJSON{
			TotalEstimatedHours: result.Insights.TotalEstimatedHours,
			SuggestedTimeline:   result.Insights.SuggestedTimeline,
		},
	})
}

// handleListGoals responds with a bare array of goals.
func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	goals, err := s.svc.ListGoals(r.Context())
	if err != nil {
		s.writeError(w, err, "Failed to list goals")
		return
	}
	out := make([]goalJSON, 0, len(goals))
	for _, g := range goals {
		out = append(out, toGoalJSON(g))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetGoal(w http.ResponseWriter, r *http.Request) {
	goalID := r.PathValue("goal_id")
	gwt, err := s.svc.GetGoalWithTasks(r.Context(), goalID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			writeDetail(w, http.StatusNotFound, "Goal not found: "+goalID)
			return
		}
		s.writeError(w, err, "Failed to retrieve goal")
		return
	}
	writeJSON(w, http.StatusOK, goalResponse{
		Success: true,
		Goal:    toGoalJSON(gwt.Goal),
		Tasks:   toTaskJSONs(gwt.Tasks),
	})
}

func (s *Server) handleGetSchedule(w http.ResponseWriter, r *http.Request) {
	goalID := r.PathValue("goal_id")
	schedule, err := s.svc.GetSchedule(r.Context(), goalID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			writeDetail(w, http.StatusNotFound, "Goal not found: "+goalID)
			return
		}
		s.writeError(w, err, "Failed to build schedule")
		return
	}
	writeJSON(w, http.StatusOK, toScheduleResponse(schedule))
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	task, err := s.svc.GetTask(r.Context(), r.PathValue("task_id"))
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			writeDetail(w, http.StatusNotFound, "Task not found")
			return
		}
		s.writeError(w, err, "Failed to retrieve task")
		return
	}
	writeJSON(w, http.StatusOK, taskResponse{Success: true, Task: toTaskDetailJSON(task)})
}

func (s *Server) handleUpdateTaskStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if err := decodeBody(r, w, &req); err != nil {
		s.writeError(w, err, "")
		return
	}
	if req.Status == nil {
		s.writeError(w, fmt.Errorf("%w: status is required", model.ErrValidation), "")
		return
	}

	task, err := s.svc.UpdateTaskStatus(r.Context(), r.PathValue("task_id"), *req.Status)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrValidation):
			writeDetail(w, http.StatusBadRequest, "Invalid status. Must be one of: pending, in_progress, completed, blocked")
		case errors.Is(err, model.ErrNotFound):
			writeDetail(w, http.StatusNotFound, "Task not found")
		default:
			s.writeError(w, err, "Failed to update task")
		}
		return
	}
	writeJSON(w, http.StatusOK, taskStatusResponse{
		Success: true,
		Task: taskStatusJSON{
			ID:        task.ID,
			Title:     task.Title,
			Status:    string(task.Status),
			UpdatedAt: isoTime(task.UpdatedAt),
		},
	})
}

func decodeBody(r *http.Request, w http.ResponseWriter, dst any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid request body: %v", model.ErrValidation, err)
	}
	return nil
}

// writeError maps err onto a status code. Unexpected failures are logged and
// reported as "<prefix>: <err>".
func (s *Server) writeError(w http.ResponseWriter, err error, prefix string) {
	switch {
	case errors.Is(err, model.ErrValidation):
		writeDetail(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, model.ErrNotFound):
		writeDetail(w, http.StatusNotFound, err.Error())
	default:
		s.logger.Error("request failed", zap.String("op", prefix), zap.Error(err))
		detail := err.Error()
		if prefix != "" {
			detail = prefix + ": " + detail
		}
		writeDetail(w, http.StatusInternalServerError, detail)
	}
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorResponse{Detail: detail})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Package httpapi exposes the planner over JSON/HTTP.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/aristath/taskplanner/internal/model"
	"github.com/aristath/taskplanner/internal/orchestrator"
)

// Service is the planner surface the HTTP layer needs.
type Service interface {
	CreateGoalWithTasks(ctx context.Context, title, description string, deadline *string) (*orchestrator.Result, error)
	GetGoalWithTasks(ctx context.Context, goalID string) (*orchestrator.GoalWithTasks, error)
	ListGoals(ctx context.Context) ([]*model.Goal, error)
	GetTask(ctx context.Context, taskID string) (*model.Task, error)
	UpdateTaskStatus(ctx context.Context, taskID, status string) (*model.Task, error)
	GetSchedule(ctx context.Context, goalID string) (*orchestrator.GoalSchedule, error)
}

// APIVersion is reported by the root endpoint.
const APIVersion = "1.0.0"

// Server routes requests to a Service.
type Server struct {
	svc     Service
	logger  *zap.Logger
	handler http.Handler
}

// NewServer builds the router. allowedOrigins feeds the CORS policy.
func NewServer(svc Service, allowedOrigins []string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{svc: svc, logger: logger}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("GET /api/goals", s.handleListGoals)
	mux.HandleFunc("GET /api/goals/{$}", s.handleListGoals)
	mux.HandleFunc("POST /api/goals", s.handleCreateGoal)
	mux.HandleFunc("POST /api/goals/{$}", s.handleCreateGoal)
	mux.HandleFunc("GET /api/goals/{goal_id}", s.handleGetGoal)
	mux.HandleFunc("GET /api/goals/{goal_id}/schedule", s.handleGetSchedule)

	mux.HandleFunc("GET /tasks/{task_id}", s.handleGetTask)
	mux.HandleFunc("PATCH /tasks/{task_id}/status", s.handleUpdateTaskStatus)

	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
	})
	s.handler = s.logRequests(c.Handler(mux))
	return s
}

// Handler returns the root handler, CORS and access logging included.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// NewHTTPServer wraps the handler in an http.Server with conservative
// header timeouts. Write timeouts are left unset: goal creation waits on
// the model.
func (s *Server) NewHTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)))
	})
}

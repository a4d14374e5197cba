// Package googletasks exports a goal's tasks to a Google Tasks list.
package googletasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	tasks "google.golang.org/api/tasks/v1"

	"github.com/aristath/taskplanner/internal/model"
	"github.com/aristath/taskplanner/internal/scheduler"
)

const (
	// OAuthClientFile and TokenFile live in the export credentials dir.
	OAuthClientFile = "oauth_client.json"
	TokenFile       = "token.json"

	// APITimeout bounds each API call.
	APITimeout = 10 * time.Second

	tasksScope = "https://www.googleapis.com/auth/tasks"
)

// Exporter writes goals to Google Tasks.
type Exporter struct {
	svc    *tasks.Service
	logger *zap.Logger
}

// ExportResult identifies what was created.
type ExportResult struct {
	ListID  string
	TaskIDs []string // in export order
}

// New creates an Exporter from oauth_client.json and token.json in dir.
func New(ctx context.Context, dir string, logger *zap.Logger) (*Exporter, error) {
	oauthConfig, err := loadOAuthConfig(dir)
	if err != nil {
		return nil, err
	}

	tokenData, err := os.ReadFile(filepath.Join(dir, TokenFile))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s (run: planner export login): %w", TokenFile, err)
	}
	var token oauth2.Token
	if err := json.Unmarshal(tokenData, &token); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", TokenFile, err)
	}

	httpClient := oauth2.NewClient(ctx, oauthConfig.TokenSource(ctx, &token))
	return NewWithHTTPClient(ctx, httpClient, logger)
}

// NewWithHTTPClient creates an Exporter over a caller-supplied HTTP client.
// Extra options (such as option.WithEndpoint) are passed to the API client.
func NewWithHTTPClient(ctx context.Context, httpClient *http.Client, logger *zap.Logger, opts ...option.ClientOption) (*Exporter, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts = append([]option.ClientOption{option.WithHTTPClient(httpClient)}, opts...)
	svc, err := tasks.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create tasks service: %w", err)
	}
	return &Exporter{svc: svc, logger: logger}, nil
}

func loadOAuthConfig(dir string) (*oauth2.Config, error) {
	clientJSON, err := os.ReadFile(filepath.Join(dir, OAuthClientFile))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", OAuthClientFile, err)
	}
	oauthConfig, err := google.ConfigFromJSON(clientJSON, tasksScope)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", OAuthClientFile, err)
	}
	return oauthConfig, nil
}

// Export creates a task list named after the goal and adds its tasks in
// dependency order. Google Tasks has no dependency model, so prerequisites
// are listed in each task's notes.
func (e *Exporter) Export(ctx context.Context, goal *model.Goal, goalTasks []*model.Task) (*ExportResult, error) {
	list, err := e.insertList(ctx, goal.Title)
	if err != nil {
		return nil, fmt.Errorf("failed to create task list: %w", err)
	}

	byID := make(map[string]*model.Task, len(goalTasks))
	for _, t := range goalTasks {
		byID[t.ID] = t
	}

	result := &ExportResult{ListID: list.Id}
	previous := ""
	for _, n := range scheduler.FromTasks(goalTasks).Schedule().Order {
		created, err := e.insertTask(ctx, list.Id, toRemote(byID[n.ID]), previous)
		if err != nil {
			return result, fmt.Errorf("failed to export task %q: %w", n.Title, err)
		}
		result.TaskIDs = append(result.TaskIDs, created.Id)
		previous = created.Id
	}

	e.logger.Info("exported goal to Google Tasks",
		zap.String("goal_id", goal.ID),
		zap.String("list_id", list.Id),
		zap.Int("tasks", len(result.TaskIDs)))
	return result, nil
}

func (e *Exporter) insertList(ctx context.Context, title string) (*tasks.TaskList, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	list, err := e.svc.Tasklists.Insert(&tasks.TaskList{Title: title}).Context(ctx).Do()
	return list, wrapError(err)
}

func (e *Exporter) insertTask(ctx context.Context, listID string, task *tasks.Task, previous string) (*tasks.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	call := e.svc.Tasks.Insert(listID, task).Context(ctx)
	if previous != "" {
		call = call.Previous(previous)
	}
	created, err := call.Do()
	return created, wrapError(err)
}

// toRemote maps a planner task onto the Google Tasks representation.
func toRemote(t *model.Task) *tasks.Task {
	remote := &tasks.Task{
		Title:  t.Title,
		Notes:  notes(t),
		Status: "needsAction",
	}
	if t.Status == model.StatusCompleted {
		remote.Status = "completed"
	}
	if t.EndDate != nil {
		remote.Due = t.EndDate.UTC().Format(time.RFC3339)
	}
	return remote
}

func notes(t *model.Task) string {
	var parts []string
	if t.Description != "" {
		parts = append(parts, t.Description)
	}

	var meta []string
	meta = append(meta, "Priority: "+string(t.Priority))
	if t.EstimatedHours != nil {
		meta = append(meta, fmt.Sprintf("Estimate: %gh", *t.EstimatedHours))
	}
	if t.Status != model.StatusPending && t.Status != model.StatusCompleted {
		meta = append(meta, "Status: "+string(t.Status))
	}
	parts = append(parts, strings.Join(meta, "\n"))

	if len(t.Dependencies) > 0 {
		titles := make([]string, len(t.Dependencies))
		for i, d := range t.Dependencies {
			titles[i] = d.TaskTitle
		}
		parts = append(parts, "Depends on: "+strings.Join(titles, ", "))
	}
	return strings.Join(parts, "\n\n")
}

// wrapError turns API errors into actionable messages.
func wrapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("request timed out: %w", err)
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("token expired or revoked (run: planner export login): %w", err)
		case http.StatusNotFound:
			return fmt.Errorf("%w: %v", model.ErrNotFound, err)
		}
	}
	return err
}

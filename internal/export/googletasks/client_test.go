package googletasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	"google.golang.org/api/option"
	tasks "google.golang.org/api/tasks/v1"

	"github.com/aristath/taskplanner/internal/model"
)

// fakeTasksAPI records inserted lists and tasks.
type fakeTasksAPI struct {
	mu        sync.Mutex
	lists     []string
	inserted  []*tasks.Task
	previous  []string
	failTasks bool
}

func (f *fakeTasksAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/users/@me/lists"):
		var list tasks.TaskList
		if err := json.NewDecoder(r.Body).Decode(&list); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.lists = append(f.lists, list.Title)
		list.Id = "list-1"
		json.NewEncoder(w).Encode(list)

	case r.Method == http.MethodPost && strings.HasPrefix(r.URL.Path, "/tasks/v1/lists/list-1/tasks"):
		if f.failTasks {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"error":{"code":401,"message":"invalid credentials"}}`)
			return
		}
		var task tasks.Task
		if err := json.NewDecoder(r.Body).Decode(&task); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		task.Id = fmt.Sprintf("remote-%d", len(f.inserted)+1)
		f.inserted = append(f.inserted, &task)
		f.previous = append(f.previous, r.URL.Query().Get("previous"))
		json.NewEncoder(w).Encode(task)

	default:
		http.NotFound(w, r)
	}
}

func newTestExporter(t *testing.T, api *fakeTasksAPI) *Exporter {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	e, err := NewWithHTTPClient(context.Background(), srv.Client(), nil, option.WithEndpoint(srv.URL+"/"))
	require.NoError(t, err)
	return e
}

func sampleGoal() (*model.Goal, []*model.Task) {
	hours := 6.0
	end := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	goal := &model.Goal{ID: "g1", Title: "Launch website"}
	build := &model.Task{
		ID: "t2", GoalID: "g1", Title: "Build", Description: "Implement pages",
		Status: model.StatusInProgress, Priority: model.PriorityMedium, EstimatedHours: &hours, EndDate: &end,
		Dependencies: []model.TaskDependency{{TaskID: "t1", TaskTitle: "Design"}},
	}
	design := &model.Task{ID: "t1", GoalID: "g1", Title: "Design", Status: model.StatusCompleted, Priority: model.PriorityHigh}
	return goal, []*model.Task{build, design}
}

func TestExportCreatesListInDependencyOrder(t *testing.T) {
	api := &fakeTasksAPI{}
	e := newTestExporter(t, api)
	goal, goalTasks := sampleGoal()

	result, err := e.Export(context.Background(), goal, goalTasks)
	require.NoError(t, err)

	assert.Equal(t, []string{"Launch website"}, api.lists)
	assert.Equal(t, "list-1", result.ListID)
	assert.Equal(t, []string{"remote-1", "remote-2"}, result.TaskIDs)

	require.Len(t, api.inserted, 2)
	assert.Equal(t, "Design", api.inserted[0].Title)
	assert.Equal(t, "completed", api.inserted[0].Status)
	assert.Equal(t, "Build", api.inserted[1].Title)
	assert.Equal(t, "needsAction", api.inserted[1].Status)
	assert.Equal(t, "2025-01-10T00:00:00Z", api.inserted[1].Due)
	assert.Contains(t, api.inserted[1].Notes, "Implement pages")
	assert.Contains(t, api.inserted[1].Notes, "Depends on: Design")
	assert.Contains(t, api.inserted[1].Notes, "Estimate: 6h")

	assert.Equal(t, []string{"", "remote-1"}, api.previous)
}

func TestExportUnauthorized(t *testing.T) {
	api := &fakeTasksAPI{failTasks: true}
	e := newTestExporter(t, api)
	goal, goalTasks := sampleGoal()

	result, err := e.Export(context.Background(), goal, goalTasks)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "planner export login")
	assert.Equal(t, "list-1", result.ListID)
	assert.Empty(t, result.TaskIDs)
}

func TestWrapError(t *testing.T) {
	assert.NoError(t, wrapError(nil))

	err := wrapError(context.DeadlineExceeded)
	assert.Contains(t, err.Error(), "timed out")

	plain := errors.New("boom")
	assert.Equal(t, plain, wrapError(plain))
}

func TestNewMissingFiles(t *testing.T) {
	dir := t.TempDir()
	_, err := New(context.Background(), dir, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), OAuthClientFile)

	client := `{"installed":{"client_id":"id","client_secret":"secret","auth_uri":"https://accounts.google.com/o/oauth2/auth","token_uri":"https://oauth2.googleapis.com/token","redirect_uris":["http://localhost"]}}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, OAuthClientFile), []byte(client), 0o600))

	_, err = New(context.Background(), dir, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), TokenFile)

	require.NoError(t, SaveToken(dir, &oauth2.Token{AccessToken: "a", RefreshToken: "r"}))
	e, err := New(context.Background(), dir, nil)
	require.NoError(t, err)
	assert.NotNil(t, e)
}

func TestSaveTokenPermissions(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "google")
	require.NoError(t, SaveToken(dir, &oauth2.Token{AccessToken: "a", RefreshToken: "r"}))

	info, err := os.Stat(filepath.Join(dir, TokenFile))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	data, err := os.ReadFile(filepath.Join(dir, TokenFile))
	require.NoError(t, err)
	var tok oauth2.Token
	require.NoError(t, json.Unmarshal(data, &tok))
	assert.Equal(t, "r", tok.RefreshToken)
}

package persistence

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/aristath/taskplanner/internal/model"
)

func TestOpenSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "planner.db")
	store, err := Open(context.Background(), Options{Path: path}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer store.Close()

	if _, ok := store.(*SQLiteStore); !ok {
		t.Errorf("expected *SQLiteStore for default driver, got %T", store)
	}
}

func TestOpenRejectsBadOptions(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want string
	}{
		{"sqlite without path", Options{Driver: DriverSQLite}, "database path"},
		{"mongo without url", Options{Driver: DriverMongo}, "connection URL"},
		{"unknown driver", Options{Driver: "postgres"}, "unknown store driver"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Open(context.Background(), tt.opts, nil)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

// unreachableStore fails pings a fixed number of times before succeeding.
type unreachableStore struct {
	*SQLiteStore
	failures int
	pings    int
}

func (u *unreachableStore) Ping(ctx context.Context) error {
	u.pings++
	if u.pings <= u.failures {
		return context.DeadlineExceeded
	}
	return nil
}

func TestWaitReadyRetriesUntilPingSucceeds(t *testing.T) {
	store := &unreachableStore{SQLiteStore: testStore(t), failures: 2}
	if err := waitReady(context.Background(), store, 10*time.Second, zaptest.NewLogger(t)); err != nil {
		t.Fatalf("waitReady failed: %v", err)
	}
	if store.pings != 3 {
		t.Errorf("expected 3 pings, got %d", store.pings)
	}
}

func TestWaitReadyGivesUp(t *testing.T) {
	store := &unreachableStore{SQLiteStore: testStore(t), failures: 1 << 30}
	err := waitReady(context.Background(), store, 500*time.Millisecond, zaptest.NewLogger(t))
	if err == nil {
		t.Fatal("expected waitReady to give up")
	}
}

// TestMongoStore exercises the document store against a live server when
// MONGODB_URL is set.
func TestMongoStore(t *testing.T) {
	url := os.Getenv("MONGODB_URL")
	if url == "" {
		t.Skip("MONGODB_URL not set")
	}
	ctx := context.Background()

	store, err := Open(ctx, Options{Driver: DriverMongo, URL: url, Database: "taskplanner_test", ConnectTimeout: 10 * time.Second}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer store.Close()

	goal := &model.Goal{Title: "mongo goal"}
	if err := store.InsertGoal(ctx, goal); err != nil {
		t.Fatalf("InsertGoal failed: %v", err)
	}
	defer store.DeleteGoal(ctx, goal.ID)
	defer store.DeleteTasksByGoal(ctx, goal.ID)

	a := &model.Task{GoalID: goal.ID, Title: "A", Status: model.StatusPending, Priority: model.PriorityLow}
	if err := store.InsertTask(ctx, a); err != nil {
		t.Fatalf("InsertTask failed: %v", err)
	}
	b := &model.Task{GoalID: goal.ID, Title: "B", Status: model.StatusPending, Priority: model.PriorityLow}
	if err := store.InsertTask(ctx, b); err != nil {
		t.Fatalf("InsertTask failed: %v", err)
	}
	b.Dependencies = []model.TaskDependency{{TaskID: a.ID, TaskTitle: "A"}}
	if err := store.SaveTask(ctx, b); err != nil {
		t.Fatalf("SaveTask failed: %v", err)
	}

	tasks, err := store.FindTasksByGoal(ctx, goal.ID)
	if err != nil {
		t.Fatalf("FindTasksByGoal failed: %v", err)
	}
	if len(tasks) != 2 || len(tasks[1].Dependencies) != 1 || tasks[1].Dependencies[0].TaskID != a.ID {
		t.Errorf("unexpected tasks: %+v", tasks)
	}

	if _, err := store.GetGoal(ctx, "not-an-object-id"); err == nil {
		t.Error("expected error for malformed id")
	}
}

package persistence

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/aristath/taskplanner/internal/model"
)

// testStore creates an in-memory store for testing and registers cleanup.
func testStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewMemoryStore(context.Background())
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

func ptr[T any](v T) *T { return &v }

func TestInsertAndGetGoal(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	deadline := time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)
	goal := &model.Goal{Title: "Launch website", Description: "Marketing site", Deadline: &deadline}
	if err := store.InsertGoal(ctx, goal); err != nil {
		t.Fatalf("failed to insert goal: %v", err)
	}
	if goal.ID == "" {
		t.Fatal("expected InsertGoal to assign an id")
	}
	if goal.CreatedAt.IsZero() || !goal.CreatedAt.Equal(goal.UpdatedAt) {
		t.Errorf("expected matching non-zero timestamps, got %v / %v", goal.CreatedAt, goal.UpdatedAt)
	}

	got, err := store.GetGoal(ctx, goal.ID)
	if err != nil {
		t.Fatalf("failed to get goal: %v", err)
	}
	if got.Title != goal.Title || got.Description != goal.Description {
		t.Errorf("goal mismatch: got %+v", got)
	}
	if got.Deadline == nil || !got.Deadline.Equal(deadline) {
		t.Errorf("Deadline mismatch: got %v, want %v", got.Deadline, deadline)
	}
	if got.TotalEstimatedHours != nil {
		t.Errorf("expected no total estimate, got %v", *got.TotalEstimatedHours)
	}
	if !got.CreatedAt.Equal(goal.CreatedAt) {
		t.Errorf("CreatedAt mismatch: got %v, want %v", got.CreatedAt, goal.CreatedAt)
	}
}

func TestInsertGoalAssignsNovelIDs(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	seen := map[string]bool{}
	for i := 0; i < 5; i++ {
		g := &model.Goal{Title: "same"}
		if err := store.InsertGoal(ctx, g); err != nil {
			t.Fatalf("insert %d: %v", i, err)
		}
		if seen[g.ID] {
			t.Fatalf("duplicate id %s", g.ID)
		}
		seen[g.ID] = true
	}
}

func TestSaveGoal(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	goal := &model.Goal{Title: "Learn Go"}
	if err := store.InsertGoal(ctx, goal); err != nil {
		t.Fatalf("failed to insert goal: %v", err)
	}
	created := goal.CreatedAt

	goal.TotalEstimatedHours = ptr(42.5)
	if err := store.SaveGoal(ctx, goal); err != nil {
		t.Fatalf("failed to save goal: %v", err)
	}

	got, err := store.GetGoal(ctx, goal.ID)
	if err != nil {
		t.Fatalf("failed to get goal: %v", err)
	}
	if got.TotalEstimatedHours == nil || *got.TotalEstimatedHours != 42.5 {
		t.Errorf("TotalEstimatedHours = %v, want 42.5", got.TotalEstimatedHours)
	}
	if !got.CreatedAt.Equal(created) {
		t.Errorf("CreatedAt changed on save: %v -> %v", created, got.CreatedAt)
	}
	if got.UpdatedAt.Before(created) {
		t.Errorf("UpdatedAt %v before CreatedAt %v", got.UpdatedAt, created)
	}
}

func TestSaveGoalNotFound(t *testing.T) {
	store := testStore(t)
	err := store.SaveGoal(context.Background(), &model.Goal{ID: "missing", Title: "x"})
	if !errors.Is(err, model.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestGetGoalNotFound(t *testing.T) {
	store := testStore(t)
	_, err := store.GetGoal(context.Background(), "nope")
	if !errors.Is(err, model.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListGoalsOrder(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	goals, err := store.ListGoals(ctx)
	if err != nil {
		t.Fatalf("failed to list goals: %v", err)
	}
	if len(goals) != 0 {
		t.Fatalf("expected empty list, got %d", len(goals))
	}

	for _, title := range []string{"first", "second", "third"} {
		if err := store.InsertGoal(ctx, &model.Goal{Title: title}); err != nil {
			t.Fatalf("failed to insert goal: %v", err)
		}
	}

	goals, err = store.ListGoals(ctx)
	if err != nil {
		t.Fatalf("failed to list goals: %v", err)
	}
	if len(goals) != 3 {
		t.Fatalf("expected 3 goals, got %d", len(goals))
	}
	for i, want := range []string{"first", "second", "third"} {
		if goals[i].Title != want {
			t.Errorf("goals[%d].Title = %q, want %q", i, goals[i].Title, want)
		}
	}
}

func TestDeleteGoal(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	goal := &model.Goal{Title: "temp"}
	if err := store.InsertGoal(ctx, goal); err != nil {
		t.Fatalf("failed to insert goal: %v", err)
	}
	if err := store.DeleteGoal(ctx, goal.ID); err != nil {
		t.Fatalf("failed to delete goal: %v", err)
	}
	if _, err := store.GetGoal(ctx, goal.ID); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := store.DeleteGoal(ctx, goal.ID); err != nil {
		t.Errorf("deleting a missing goal should be a no-op, got %v", err)
	}
}

func TestInsertAndGetTask(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	start := time.Date(2025, 10, 16, 0, 0, 0, 0, time.UTC)
	task := &model.Task{
		GoalID:         "goal-1",
		Title:          "Design",
		Description:    "Wireframes",
		Status:         model.StatusPending,
		Priority:       model.PriorityHigh,
		EstimatedHours: ptr(8.0),
		StartDate:      &start,
	}
	if err := store.InsertTask(ctx, task); err != nil {
		t.Fatalf("failed to insert task: %v", err)
	}

	got, err := store.GetTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("failed to get task: %v", err)
	}
	if got.GoalID != "goal-1" || got.Title != "Design" || got.Description != "Wireframes" {
		t.Errorf("task mismatch: %+v", got)
	}
	if got.Status != model.StatusPending {
		t.Errorf("Status = %s, want pending", got.Status)
	}
	if got.Priority != model.PriorityHigh {
		t.Errorf("Priority = %s, want high", got.Priority)
	}
	if got.EstimatedHours == nil || *got.EstimatedHours != 8 {
		t.Errorf("EstimatedHours = %v, want 8", got.EstimatedHours)
	}
	if got.StartDate == nil || !got.StartDate.Equal(start) {
		t.Errorf("StartDate = %v, want %v", got.StartDate, start)
	}
	if got.EndDate != nil {
		t.Errorf("EndDate = %v, want nil", got.EndDate)
	}
	if got.Dependencies == nil || len(got.Dependencies) != 0 {
		t.Errorf("expected empty non-nil dependencies, got %#v", got.Dependencies)
	}
}

func TestSaveTaskReplacesDependencies(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	a := &model.Task{GoalID: "g", Title: "A", Status: model.StatusPending, Priority: model.PriorityMedium}
	b := &model.Task{GoalID: "g", Title: "B", Status: model.StatusPending, Priority: model.PriorityMedium}
	c := &model.Task{GoalID: "g", Title: "C", Status: model.StatusPending, Priority: model.PriorityMedium}
	for _, task := range []*model.Task{a, b, c} {
		if err := store.InsertTask(ctx, task); err != nil {
			t.Fatalf("failed to insert task: %v", err)
		}
	}

	c.Dependencies = []model.TaskDependency{{TaskID: b.ID, TaskTitle: "B"}, {TaskID: a.ID, TaskTitle: "A"}}
	if err := store.SaveTask(ctx, c); err != nil {
		t.Fatalf("failed to save task: %v", err)
	}

	got, err := store.GetTask(ctx, c.ID)
	if err != nil {
		t.Fatalf("failed to get task: %v", err)
	}
	if len(got.Dependencies) != 2 || got.Dependencies[0].TaskID != b.ID || got.Dependencies[1].TaskID != a.ID {
		t.Fatalf("dependency order not preserved: %#v", got.Dependencies)
	}

	c.Dependencies = []model.TaskDependency{{TaskID: a.ID, TaskTitle: "A"}}
	c.Status = model.StatusCompleted
	if err := store.SaveTask(ctx, c); err != nil {
		t.Fatalf("failed to save task: %v", err)
	}
	got, err = store.GetTask(ctx, c.ID)
	if err != nil {
		t.Fatalf("failed to get task: %v", err)
	}
	if len(got.Dependencies) != 1 || got.Dependencies[0].TaskTitle != "A" {
		t.Errorf("expected dependencies to be replaced, got %#v", got.Dependencies)
	}
	if got.Status != model.StatusCompleted {
		t.Errorf("Status = %s, want completed", got.Status)
	}
}

func TestSaveTaskNotFound(t *testing.T) {
	store := testStore(t)
	err := store.SaveTask(context.Background(), &model.Task{ID: "missing", Status: model.StatusPending, Priority: model.PriorityLow})
	if !errors.Is(err, model.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestGetTaskNotFound(t *testing.T) {
	store := testStore(t)
	_, err := store.GetTask(context.Background(), "missing")
	if !errors.Is(err, model.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestFindAndDeleteTasksByGoal(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	for i, goalID := range []string{"g1", "g2", "g1", "g1"} {
		task := &model.Task{GoalID: goalID, Title: string(rune('A' + i)), Status: model.StatusPending, Priority: model.PriorityMedium}
		if err := store.InsertTask(ctx, task); err != nil {
			t.Fatalf("failed to insert task: %v", err)
		}
	}

	tasks, err := store.FindTasksByGoal(ctx, "g1")
	if err != nil {
		t.Fatalf("failed to find tasks: %v", err)
	}
	if len(tasks) != 3 {
		t.Fatalf("expected 3 tasks for g1, got %d", len(tasks))
	}
	for i, want := range []string{"A", "C", "D"} {
		if tasks[i].Title != want {
			t.Errorf("tasks[%d].Title = %q, want %q", i, tasks[i].Title, want)
		}
	}

	if err := store.DeleteTasksByGoal(ctx, "g1"); err != nil {
		t.Fatalf("failed to delete tasks: %v", err)
	}
	tasks, err = store.FindTasksByGoal(ctx, "g1")
	if err != nil {
		t.Fatalf("failed to find tasks: %v", err)
	}
	if len(tasks) != 0 {
		t.Errorf("expected no tasks after delete, got %d", len(tasks))
	}

	remaining, err := store.FindTasksByGoal(ctx, "g2")
	if err != nil {
		t.Fatalf("failed to find tasks: %v", err)
	}
	if len(remaining) != 1 {
		t.Errorf("expected g2 task to survive, got %d", len(remaining))
	}
}

func TestMemoryStoresAreIsolated(t *testing.T) {
	a := testStore(t)
	b := testStore(t)
	ctx := context.Background()

	if err := a.InsertGoal(ctx, &model.Goal{Title: "only in a"}); err != nil {
		t.Fatalf("failed to insert goal: %v", err)
	}
	goals, err := b.ListGoals(ctx)
	if err != nil {
		t.Fatalf("failed to list goals: %v", err)
	}
	if len(goals) != 0 {
		t.Errorf("expected second store to be empty, got %d goals", len(goals))
	}
}

func TestSQLiteStorePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "planner.db")

	store, err := NewSQLiteStore(ctx, path)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	goal := &model.Goal{Title: "durable"}
	if err := store.InsertGoal(ctx, goal); err != nil {
		t.Fatalf("failed to insert goal: %v", err)
	}
	store.Close()

	reopened, err := NewSQLiteStore(ctx, path)
	if err != nil {
		t.Fatalf("failed to reopen store: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.GetGoal(ctx, goal.ID)
	if err != nil {
		t.Fatalf("failed to get goal after reopen: %v", err)
	}
	if got.Title != "durable" {
		t.Errorf("Title = %q, want durable", got.Title)
	}
}

// TestSQLiteStorePragmas verifies the file store runs in WAL mode with a busy
// timeout and foreign keys on every pooled connection.
func TestSQLiteStorePragmas(t *testing.T) {
	ctx := context.Background()
	store, err := NewSQLiteStore(ctx, filepath.Join(t.TempDir(), "planner.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	defer store.Close()

	for i := 0; i < 2; i++ {
		conn, err := store.db.Conn(ctx)
		if err != nil {
			t.Fatalf("Conn failed: %v", err)
		}
		defer conn.Close()

		var journal string
		var busy, fk int
		if err := conn.QueryRowContext(ctx, "PRAGMA journal_mode").Scan(&journal); err != nil {
			t.Fatalf("journal_mode: %v", err)
		}
		if err := conn.QueryRowContext(ctx, "PRAGMA busy_timeout").Scan(&busy); err != nil {
			t.Fatalf("busy_timeout: %v", err)
		}
		if err := conn.QueryRowContext(ctx, "PRAGMA foreign_keys").Scan(&fk); err != nil {
			t.Fatalf("foreign_keys: %v", err)
		}
		if journal != "wal" {
			t.Errorf("conn %d: journal_mode = %q, want wal", i, journal)
		}
		if busy != 5000 {
			t.Errorf("conn %d: busy_timeout = %d, want 5000", i, busy)
		}
		if fk != 1 {
			t.Errorf("conn %d: foreign_keys = %d, want 1", i, fk)
		}
	}
}

// TestSQLiteStoreConcurrentWriters verifies overlapping writes wait for the
// lock instead of failing with SQLITE_BUSY.
func TestSQLiteStoreConcurrentWriters(t *testing.T) {
	ctx := context.Background()
	store, err := NewSQLiteStore(ctx, filepath.Join(t.TempDir(), "planner.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	defer store.Close()

	const writers = 8
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		go func() {
			goal := &model.Goal{Title: "Concurrent", Description: "writer"}
			if err := store.InsertGoal(ctx, goal); err != nil {
				errs <- err
				return
			}
			for j := 0; j < 5; j++ {
				task := &model.Task{GoalID: goal.ID, Title: "step", Status: model.StatusPending, Priority: model.PriorityMedium}
				if err := store.InsertTask(ctx, task); err != nil {
					errs <- err
					return
				}
				task.Dependencies = []model.TaskDependency{{TaskID: task.ID, TaskTitle: "self"}}
				if err := store.SaveTask(ctx, task); err != nil {
					errs <- err
					return
				}
			}
			errs <- nil
		}()
	}
	for i := 0; i < writers; i++ {
		if err := <-errs; err != nil {
			t.Errorf("writer failed: %v", err)
		}
	}

	goals, err := store.ListGoals(ctx)
	if err != nil {
		t.Fatalf("ListGoals failed: %v", err)
	}
	if len(goals) != writers {
		t.Errorf("got %d goals, want %d", len(goals), writers)
	}
}

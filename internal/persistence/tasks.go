package persistence

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/aristath/taskplanner/internal/model"
)

const taskColumns = `id, goal_id, title, description, status, priority, estimated_hours, start_date, end_date, created_at, updated_at`

// InsertTask assigns an id and timestamps and stores the task with its
// dependency list.
func (s *SQLiteStore) InsertTask(ctx context.Context, task *model.Task) error {
	ts := now()
	task.ID = uuid.NewString()
	task.CreatedAt = ts
	task.UpdatedAt = ts

	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO tasks (`+taskColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, task.ID, task.GoalID, task.Title, task.Description, string(task.Status), string(task.Priority),
			nullFloat(task.EstimatedHours), nullTime(task.StartDate), nullTime(task.EndDate),
			formatTime(task.CreatedAt), formatTime(task.UpdatedAt))
		if err != nil {
			return fmt.Errorf("failed to insert task: %w", err)
		}
		return replaceDependencies(ctx, tx, task)
	})
}

// SaveTask overwrites an existing task and its dependency list and refreshes
// UpdatedAt.
func (s *SQLiteStore) SaveTask(ctx context.Context, task *model.Task) error {
	task.UpdatedAt = now()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE tasks
			SET goal_id = ?, title = ?, description = ?, status = ?, priority = ?,
				estimated_hours = ?, start_date = ?, end_date = ?, updated_at = ?
			WHERE id = ?
		`, task.GoalID, task.Title, task.Description, string(task.Status), string(task.Priority),
			nullFloat(task.EstimatedHours), nullTime(task.StartDate), nullTime(task.EndDate),
			formatTime(task.UpdatedAt), task.ID)
		if err != nil {
			return fmt.Errorf("failed to update task: %w", err)
		}
		if err := requireAffected(res, "task", task.ID); err != nil {
			return err
		}
		return replaceDependencies(ctx, tx, task)
	})
}

// GetTask retrieves a task by ID, including its dependencies.
func (s *SQLiteStore) GetTask(ctx context.Context, id string) (*model.Task, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	task, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: task %s", model.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query task: %w", err)
	}

	if task.Dependencies, err = s.loadDependencies(ctx, task.ID); err != nil {
		return nil, err
	}
	return task, nil
}

// FindTasksByGoal returns the goal's tasks in insertion order. An unknown
// goal yields an empty slice.
func (s *SQLiteStore) FindTasksByGoal(ctx context.Context, goalID string) ([]*model.Task, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE goal_id = ?
		ORDER BY rowid
	`, goalID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}

	tasks := []*model.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, task)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tasks: %w", err)
	}

	for _, task := range tasks {
		if task.Dependencies, err = s.loadDependencies(ctx, task.ID); err != nil {
			return nil, err
		}
	}
	return tasks, nil
}

// DeleteTasksByGoal removes every task bound to goalID.
func (s *SQLiteStore) DeleteTasksByGoal(ctx context.Context, goalID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE goal_id = ?`, goalID); err != nil {
		return fmt.Errorf("failed to delete tasks for goal %s: %w", goalID, err)
	}
	return nil
}

func (s *SQLiteStore) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func replaceDependencies(ctx context.Context, tx *sql.Tx, task *model.Task) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM task_dependencies WHERE task_id = ?`, task.ID); err != nil {
		return fmt.Errorf("failed to delete old dependencies: %w", err)
	}
	for i, dep := range task.Dependencies {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO task_dependencies (task_id, position, depends_on_id, depends_on_title)
			VALUES (?, ?, ?, ?)
		`, task.ID, i, dep.TaskID, dep.TaskTitle)
		if err != nil {
			return fmt.Errorf("failed to insert dependency %s -> %s: %w", task.ID, dep.TaskID, err)
		}
	}
	return nil
}

func (s *SQLiteStore) loadDependencies(ctx context.Context, taskID string) ([]model.TaskDependency, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT depends_on_id, depends_on_title
		FROM task_dependencies
		WHERE task_id = ?
		ORDER BY position
	`, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to query dependencies: %w", err)
	}
	defer rows.Close()

	deps := []model.TaskDependency{}
	for rows.Next() {
		var dep model.TaskDependency
		if err := rows.Scan(&dep.TaskID, &dep.TaskTitle); err != nil {
			return nil, fmt.Errorf("failed to scan dependency: %w", err)
		}
		deps = append(deps, dep)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating dependencies: %w", err)
	}
	return deps, nil
}

func scanTask(row rowScanner) (*model.Task, error) {
	var (
		task             model.Task
		status, priority string
		hours            sql.NullFloat64
		start, end       sql.NullString
		created, updated string
	)
	if err := row.Scan(&task.ID, &task.GoalID, &task.Title, &task.Description, &status, &priority,
		&hours, &start, &end, &created, &updated); err != nil {
		return nil, err
	}

	task.Status = model.TaskStatus(status)
	task.Priority = model.TaskPriority(priority)
	task.EstimatedHours = floatPtr(hours)

	var err error
	if task.StartDate, err = parseNullTime(start); err != nil {
		return nil, err
	}
	if task.EndDate, err = parseNullTime(end); err != nil {
		return nil, err
	}
	if task.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	if task.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, err
	}
	return &task, nil
}

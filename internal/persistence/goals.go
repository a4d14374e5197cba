package persistence

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/aristath/taskplanner/internal/model"
)

const goalColumns = `id, title, description, deadline, total_estimated_hours, created_at, updated_at`

// InsertGoal assigns an id and timestamps and stores the goal.
func (s *SQLiteStore) InsertGoal(ctx context.Context, goal *model.Goal) error {
	ts := now()
	goal.ID = uuid.NewString()
	goal.CreatedAt = ts
	goal.UpdatedAt = ts

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO goals (`+goalColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, goal.ID, goal.Title, goal.Description, nullTime(goal.Deadline), nullFloat(goal.TotalEstimatedHours),
		formatTime(goal.CreatedAt), formatTime(goal.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to insert goal: %w", err)
	}
	return nil
}

// SaveGoal overwrites an existing goal and refreshes UpdatedAt.
func (s *SQLiteStore) SaveGoal(ctx context.Context, goal *model.Goal) error {
	goal.UpdatedAt = now()

	res, err := s.db.ExecContext(ctx, `
		UPDATE goals
		SET title = ?, description = ?, deadline = ?, total_estimated_hours = ?, updated_at = ?
		WHERE id = ?
	`, goal.Title, goal.Description, nullTime(goal.Deadline), nullFloat(goal.TotalEstimatedHours),
		formatTime(goal.UpdatedAt), goal.ID)
	if err != nil {
		return fmt.Errorf("failed to update goal: %w", err)
	}
	return requireAffected(res, "goal", goal.ID)
}

// GetGoal retrieves a goal by ID.
func (s *SQLiteStore) GetGoal(ctx context.Context, id string) (*model.Goal, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+goalColumns+` FROM goals WHERE id = ?`, id)
	goal, err := scanGoal(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: goal %s", model.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query goal: %w", err)
	}
	return goal, nil
}

// ListGoals returns every goal in creation order.
func (s *SQLiteStore) ListGoals(ctx context.Context) ([]*model.Goal, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+goalColumns+` FROM goals ORDER BY created_at, rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to query goals: %w", err)
	}
	defer rows.Close()

	goals := []*model.Goal{}
	for rows.Next() {
		goal, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan goal: %w", err)
		}
		goals = append(goals, goal)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating goals: %w", err)
	}
	return goals, nil
}

// DeleteGoal removes a goal. Deleting an unknown id is not an error. Tasks
// are left in place; see DeleteTasksByGoal.
func (s *SQLiteStore) DeleteGoal(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM goals WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete goal: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGoal(row rowScanner) (*model.Goal, error) {
	var (
		goal             model.Goal
		deadline         sql.NullString
		total            sql.NullFloat64
		created, updated string
	)
	if err := row.Scan(&goal.ID, &goal.Title, &goal.Description, &deadline, &total, &created, &updated); err != nil {
		return nil, err
	}

	var err error
	if goal.Deadline, err = parseNullTime(deadline); err != nil {
		return nil, err
	}
	goal.TotalEstimatedHours = floatPtr(total)
	if goal.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	if goal.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, err
	}
	return &goal, nil
}

func requireAffected(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s %s", model.ErrNotFound, kind, id)
	}
	return nil
}

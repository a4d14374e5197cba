// Package persistence stores goals and tasks. Two implementations share the
// Store contract: an embedded SQLite database and a MongoDB document store.
package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/aristath/taskplanner/internal/model"
)

// Store is a document-style repository for goals and tasks.
//
// Insert* assigns the record's ID and timestamps. Save* overwrites an
// existing record and refreshes UpdatedAt; it reports model.ErrNotFound when
// the record does not exist. Get* report model.ErrNotFound for unknown ids.
type Store interface {
	InsertGoal(ctx context.Context, goal *model.Goal) error
	SaveGoal(ctx context.Context, goal *model.Goal) error
	GetGoal(ctx context.Context, id string) (*model.Goal, error)
	ListGoals(ctx context.Context) ([]*model.Goal, error)
	DeleteGoal(ctx context.Context, id string) error

	InsertTask(ctx context.Context, task *model.Task) error
	SaveTask(ctx context.Context, task *model.Task) error
	GetTask(ctx context.Context, id string) (*model.Task, error)
	FindTasksByGoal(ctx context.Context, goalID string) ([]*model.Task, error)
	DeleteTasksByGoal(ctx context.Context, goalID string) error

	Ping(ctx context.Context) error
	Close() error
}

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite-backed store at the given path.
// Creates parent directories if needed. Enables WAL mode, foreign keys, and busy timeout.
func NewSQLiteStore(ctx context.Context, dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create parent directories: %w", err)
	}

	// modernc.org/sqlite only reads _pragma=name(value); each pooled
	// connection runs them on open. _txlock makes every BEGIN take the write
	// lock up front so concurrent writers wait on busy_timeout.
	connStr := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(1)&_txlock=immediate", dbPath)
	return openSQLite(ctx, connStr, 2)
}

// NewMemoryStore creates an in-memory SQLite store for testing. Each call gets
// its own named database so stores never see each other's rows.
func NewMemoryStore(ctx context.Context) (*SQLiteStore, error) {
	connStr := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", uuid.NewString())
	// Shared-cache connections report table locks instead of waiting on
	// busy_timeout, so the in-memory store is kept to a single connection.
	return openSQLite(ctx, connStr, 1)
}

func openSQLite(ctx context.Context, connStr string, maxConns int) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	db.SetMaxOpenConns(maxConns)

	store := &SQLiteStore{db: db}
	if err := store.initSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

// Ping verifies the database is reachable.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"

	"github.com/slok/scraperctl/internal/eventlog"
	"github.com/slok/scraperctl/internal/log"
	"github.com/slok/scraperctl/internal/model"
	"github.com/slok/scraperctl/internal/storage/sqlite/migrations"
)

// RepositoryConfig is the configuration for the SQLite repository.
type RepositoryConfig struct {
	DBPath string
	Logger log.Logger
}

func (c *RepositoryConfig) defaults() error {
	if c.DBPath == "" {
		return fmt.Errorf("db path is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "storage.SQLite"})
	return nil
}

// Repository is a SQLite implementation of storage.Repository.
type Repository struct {
	db     *sql.DB
	logger log.Logger
}

// NewRepository creates a new SQLite repository, running pending migrations.
func NewRepository(ctx context.Context, cfg RepositoryConfig) (*Repository, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	dir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("could not create db directory: %w", err)
	}

	dsn := fmt.Sprintf("%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)", cfg.DBPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("could not open database: %w", err)
	}

	migrator, err := migrations.NewMigrator(db, cfg.Logger)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("could not create migrator: %w", err)
	}
	if err := migrator.Up(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not run migrations: %w", err)
	}

	cfg.Logger.Debugf("SQLite repository initialized at %s", cfg.DBPath)

	return &Repository{db: db, logger: cfg.Logger}, nil
}

// Close closes the database connection.
func (r *Repository) Close() error { return r.db.Close() }

// AddSelection adds the ids to the persisted selection.
func (r *Repository) AddSelection(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	builder := sq.Insert("selection").Options("OR IGNORE").Columns("article_id")
	for _, id := range ids {
		builder = builder.Values(id)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("could not build query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("could not add selection: %w", err)
	}

	return nil
}

// RemoveSelection removes one id from the persisted selection.
func (r *Repository) RemoveSelection(ctx context.Context, id string) error {
	query, args, err := sq.Delete("selection").Where(sq.Eq{"article_id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("could not build query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("could not remove selection: %w", err)
	}

	return nil
}

// ClearSelection empties the persisted selection.
func (r *Repository) ClearSelection(ctx context.Context) error {
	query, args, err := sq.Delete("selection").ToSql()
	if err != nil {
		return fmt.Errorf("could not build query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("could not clear selection: %w", err)
	}

	return nil
}

// ListSelection returns all persisted selection ids.
func (r *Repository) ListSelection(ctx context.Context) ([]string, error) {
	query, args, err := sq.Select("article_id").From("selection").OrderBy("article_id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("could not build query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("could not list selection: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("could not scan selection row: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("could not iterate selection rows: %w", err)
	}

	return ids, nil
}

// RecordEvent appends an event to the history.
func (r *Repository) RecordEvent(ctx context.Context, e eventlog.Entry) error {
	query, args, err := sq.Insert("events").
		Options("OR IGNORE").
		Columns("id", "level", "message", "created_at").
		Values(e.ID, string(e.Level), e.Message, e.At.Unix()).
		ToSql()
	if err != nil {
		return fmt.Errorf("could not build query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("could not record event: %w", err)
	}

	return nil
}

// ListEvents returns the newest events first, up to limit (0 means all).
func (r *Repository) ListEvents(ctx context.Context, limit int) ([]eventlog.Entry, error) {
	builder := sq.Select("id", "level", "message", "created_at").
		From("events").
		OrderBy("created_at DESC", "id DESC")
	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("could not build query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("could not list events: %w", err)
	}
	defer rows.Close()

	events := []eventlog.Entry{}
	for rows.Next() {
		var entry eventlog.Entry
		var level string
		var createdAt int64
		if err := rows.Scan(&entry.ID, &level, &entry.Message, &createdAt); err != nil {
			return nil, fmt.Errorf("could not scan event row: %w", err)
		}
		entry.Level = model.EventLevel(level)
		entry.At = time.Unix(createdAt, 0).UTC()
		events = append(events, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("could not iterate event rows: %w", err)
	}

	return events, nil
}

// SaveTaskSnapshot replaces the stored snapshot atomically.
func (r *Repository) SaveTaskSnapshot(ctx context.Context, tasks []model.Task) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }() // Rollback is safe to call after Commit.

	query, args, err := sq.Delete("task_snapshot").ToSql()
	if err != nil {
		return fmt.Errorf("could not build query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("could not clear snapshot: %w", err)
	}

	for i, task := range tasks {
		data, err := json.Marshal(task)
		if err != nil {
			return fmt.Errorf("could not marshal task %s: %w", task.ID, err)
		}

		query, args, err := sq.Insert("task_snapshot").
			Columns("id", "position", "data").
			Values(task.ID, i, string(data)).
			ToSql()
		if err != nil {
			return fmt.Errorf("could not build query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("could not store task %s: %w", task.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("could not commit snapshot: %w", err)
	}

	return nil
}

// LoadTaskSnapshot returns the stored snapshot in its original order.
func (r *Repository) LoadTaskSnapshot(ctx context.Context) ([]model.Task, error) {
	query, args, err := sq.Select("data").From("task_snapshot").OrderBy("position").ToSql()
	if err != nil {
		return nil, fmt.Errorf("could not build query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("could not load snapshot: %w", err)
	}
	defer rows.Close()

	tasks := []model.Task{}
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("could not scan snapshot row: %w", err)
		}

		var task model.Task
		if err := json.Unmarshal([]byte(data), &task); err != nil {
			return nil, fmt.Errorf("could not unmarshal stored task: %w", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("could not iterate snapshot rows: %w", err)
	}

	return tasks, nil
}

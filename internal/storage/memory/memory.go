package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/slok/scraperctl/internal/eventlog"
	"github.com/slok/scraperctl/internal/log"
	"github.com/slok/scraperctl/internal/model"
)

// RepositoryConfig is the configuration for the memory repository.
type RepositoryConfig struct {
	Logger log.Logger
}

func (c *RepositoryConfig) defaults() error {
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "storage.Memory"})
	return nil
}

// Repository is an in-memory implementation of storage.Repository. Used by
// tests and when the console runs without a database path.
type Repository struct {
	selection map[string]struct{}
	events    []eventlog.Entry
	snapshot  []model.Task
	logger    log.Logger
	mu        sync.RWMutex
}

// NewRepository creates a new memory repository.
func NewRepository(cfg RepositoryConfig) (*Repository, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Repository{
		selection: map[string]struct{}{},
		logger:    cfg.Logger,
	}, nil
}

// AddSelection adds the ids to the persisted selection.
func (r *Repository) AddSelection(ctx context.Context, ids []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range ids {
		r.selection[id] = struct{}{}
	}
	return nil
}

// RemoveSelection removes one id from the persisted selection.
func (r *Repository) RemoveSelection(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.selection, id)
	return nil
}

// ClearSelection empties the persisted selection.
func (r *Repository) ClearSelection(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.selection = map[string]struct{}{}
	return nil
}

// ListSelection returns all persisted selection ids.
func (r *Repository) ListSelection(ctx context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.selection))
	for id := range r.selection {
		ids = append(ids, id)
	}
	return ids, nil
}

// RecordEvent appends an event to the history.
func (r *Repository) RecordEvent(ctx context.Context, e eventlog.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, e)
	return nil
}

// ListEvents returns the newest events first, up to limit (0 means all).
func (r *Repository) ListEvents(ctx context.Context, limit int) ([]eventlog.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	events := make([]eventlog.Entry, len(r.events))
	copy(events, r.events)
	for i, j := 0, len(events)-1; i < j; i, j = i+1, j-1 {
		events[i], events[j] = events[j], events[i]
	}
	if limit > 0 && len(events) > limit {
		events = events[:limit]
	}
	return events, nil
}

// SaveTaskSnapshot replaces the stored snapshot.
func (r *Repository) SaveTaskSnapshot(ctx context.Context, tasks []model.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.snapshot = make([]model.Task, len(tasks))
	copy(r.snapshot, tasks)
	return nil
}

// LoadTaskSnapshot returns the stored snapshot.
func (r *Repository) LoadTaskSnapshot(ctx context.Context) ([]model.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tasks := make([]model.Task, len(r.snapshot))
	copy(tasks, r.snapshot)
	return tasks, nil
}

// Package registry keeps the canonical in-memory model of all known tasks.
//
// Two channels feed it: authoritative full snapshots from polling (Ingest)
// and incremental patches from the push channel (ApplyEvent). Push delivery
// is unordered and may duplicate, so patches are idempotent and validated
// against the task state machine; whatever drift they introduce is bounded
// by the next snapshot, which always wins.
package registry

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/slok/scraperctl/internal/log"
	"github.com/slok/scraperctl/internal/model"
)

// RegistryConfig is the configuration for the task registry.
type RegistryConfig struct {
	Logger log.Logger
}

func (c *RegistryConfig) defaults() error {
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "registry.Registry"})
	return nil
}

// Registry owns all task records. Tasks are never deleted directly: a task
// disappears when a subsequent snapshot omits it.
type Registry struct {
	tasks  map[string]model.Task
	logger log.Logger
	nowFn  func() time.Time
	mu     sync.RWMutex
}

// NewRegistry creates a new task registry.
func NewRegistry(cfg RegistryConfig) (*Registry, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Registry{
		tasks:  map[string]model.Task{},
		logger: cfg.Logger,
		nowFn:  time.Now,
	}, nil
}

// Ingest replaces the whole task collection with an authoritative snapshot.
// It wins over any patch applied since the previous snapshot.
func (r *Registry) Ingest(tasks []model.Task) {
	next := make(map[string]model.Task, len(tasks))
	for _, t := range tasks {
		next[t.ID] = t
	}

	r.mu.Lock()
	r.tasks = next
	r.mu.Unlock()

	r.logger.Debugf("ingested snapshot with %d tasks", len(tasks))
}

// ApplyEvent applies a partial update to a single task. It is idempotent:
// applying the same patch twice leaves the same state as applying it once.
//
// Events referencing terminal tasks are dropped silently, they are assumed
// to be stale or duplicate deliveries. A patch attempting an illegal
// transition on a live task, or producing a record that fails
// model.Task.Validate, is rejected with model.ErrNotValid and leaves the
// task untouched.
func (r *Registry) ApplyEvent(patch model.TaskPatch) error {
	if patch.TaskID == "" {
		return fmt.Errorf("patch task id is required: %w", model.ErrNotValid)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	task, ok := r.tasks[patch.TaskID]
	if !ok {
		return fmt.Errorf("task %s: %w", patch.TaskID, model.ErrNotFound)
	}

	if task.Status.IsTerminal() {
		r.logger.Debugf("dropping event for terminal task %s (%s)", task.ID, task.Status)
		return nil
	}

	if patch.Status != nil && !task.Status.CanTransition(*patch.Status) {
		return fmt.Errorf("task %s cannot move from %s to %s: %w",
			task.ID, task.Status, *patch.Status, model.ErrNotValid)
	}

	if patch.Status != nil && *patch.Status != task.Status {
		task.Status = *patch.Status
		now := r.nowFn()
		switch task.Status {
		case model.TaskStatusRunning:
			if task.StartedAt == nil {
				task.StartedAt = &now
			}
		case model.TaskStatusCompleted, model.TaskStatusFailed:
			if task.CompletedAt == nil {
				task.CompletedAt = &now
			}
		}
	}
	if patch.ProcessedItems != nil {
		task.ProcessedItems = *patch.ProcessedItems
	}
	if patch.FailedItems != nil {
		task.FailedItems = *patch.FailedItems
	}
	if patch.Progress != nil {
		task.Progress = *patch.Progress
	}
	if patch.CurrentStep != nil {
		task.CurrentStep = *patch.CurrentStep
	}
	if patch.ErrorMessage != nil {
		task.ErrorMessage = *patch.ErrorMessage
	}

	// Patched records obey the same invariants as snapshot records.
	if err := task.Validate(); err != nil {
		return fmt.Errorf("patch for task %s rejected: %w", task.ID, err)
	}

	r.tasks[task.ID] = task
	return nil
}

// Get returns a copy of a task by id.
func (r *Registry) Get(id string) (*model.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	task, ok := r.tasks[id]
	if !ok {
		return nil, fmt.Errorf("task %s: %w", id, model.ErrNotFound)
	}

	taskCopy := task
	return &taskCopy, nil
}

// List returns a copy of all tasks, newest first.
func (r *Registry) List() []model.Task {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tasks := make([]model.Task, 0, len(r.tasks))
	for _, t := range r.tasks {
		tasks = append(tasks, t)
	}
	sort.Slice(tasks, func(i, j int) bool {
		if !tasks[i].CreatedAt.Equal(tasks[j].CreatedAt) {
			return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
		}
		return tasks[i].ID < tasks[j].ID
	})
	return tasks
}

// Aggregate returns the number of tasks per status in one pass over the
// current collection.
func (r *Registry) Aggregate() model.StatusCounts {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := model.StatusCounts{}
	for _, t := range r.tasks {
		counts[t.Status]++
	}
	return counts
}

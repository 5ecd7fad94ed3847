package listtasks

import (
	"context"
	"fmt"

	"github.com/slok/scraperctl/internal/log"
	"github.com/slok/scraperctl/internal/model"
	"github.com/slok/scraperctl/internal/registry"
	"github.com/slok/scraperctl/internal/remote"
	"github.com/slok/scraperctl/internal/storage"
)

// ServiceConfig is the configuration for the list tasks service.
type ServiceConfig struct {
	Client   remote.Client
	Registry *registry.Registry
	// Repository is optional. With one, fresh listings are persisted as the
	// task snapshot and cached listings become possible.
	Repository storage.Repository
	Logger     log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Client == nil {
		return fmt.Errorf("remote client is required")
	}

	if c.Registry == nil {
		return fmt.Errorf("registry is required")
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}

	return nil
}

// Service lists worker tasks with optional filtering.
type Service struct {
	client remote.Client
	reg    *registry.Registry
	repo   storage.Repository
	logger log.Logger
}

// NewService creates a new list tasks service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		client: cfg.Client,
		reg:    cfg.Registry,
		repo:   cfg.Repository,
		logger: cfg.Logger,
	}, nil
}

// Request represents the list request parameters.
type Request struct {
	// StatusFilter is an optional filter to only show tasks with this status.
	StatusFilter *model.TaskStatus
	// Cached lists the locally persisted snapshot instead of asking the
	// worker, e.g. when it is unreachable.
	Cached bool
}

// Run lists worker tasks sorted newest first, optionally filtered by status.
func (s *Service) Run(ctx context.Context, req Request) ([]model.Task, error) {
	if req.Cached {
		return s.runCached(ctx, req)
	}

	tasks, err := s.client.ListTasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not list tasks: %w", err)
	}
	s.reg.Ingest(tasks)

	if s.repo != nil {
		err := s.repo.SaveTaskSnapshot(ctx, tasks)
		if err != nil {
			s.logger.Warningf("could not persist task snapshot: %s", err)
		}
	}

	tasks = s.reg.List()
	tasks = filterTasks(tasks, req.StatusFilter)

	s.logger.Debugf("found %d tasks", len(tasks))
	return tasks, nil
}

func (s *Service) runCached(ctx context.Context, req Request) ([]model.Task, error) {
	if s.repo == nil {
		return nil, fmt.Errorf("no repository configured for cached listing: %w", model.ErrNotValid)
	}

	tasks, err := s.repo.LoadTaskSnapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not load task snapshot: %w", err)
	}

	return filterTasks(tasks, req.StatusFilter), nil
}

func filterTasks(tasks []model.Task, status *model.TaskStatus) []model.Task {
	if status == nil {
		return tasks
	}

	filtered := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.Status == *status {
			filtered = append(filtered, t)
		}
	}
	return filtered
}

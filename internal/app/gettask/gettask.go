package gettask

import (
	"context"
	"fmt"

	"github.com/slok/scraperctl/internal/log"
	"github.com/slok/scraperctl/internal/model"
	"github.com/slok/scraperctl/internal/registry"
	"github.com/slok/scraperctl/internal/remote"
)

// ServiceConfig is the configuration for the get task service.
type ServiceConfig struct {
	Client   remote.Client
	Registry *registry.Registry
	Logger   log.Logger
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

// Service gets the detail of a single worker task.
type Service struct {
	client remote.Client
	reg    *registry.Registry
	logger log.Logger
}

// NewService creates a new get task service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		client: cfg.Client,
		reg:    cfg.Registry,
		logger: cfg.Logger,
	}, nil
}

// Request represents the get task request parameters.
type Request struct {
	TaskID string
}

// Run asks the worker for the current state of a task. The fresh record is
// folded into the registry as well.
func (s *Service) Run(ctx context.Context, req Request) (*model.Task, error) {
	if req.TaskID == "" {
		return nil, fmt.Errorf("task id is required: %w", model.ErrNotValid)
	}

	task, err := s.client.GetTask(ctx, req.TaskID)
	if err != nil {
		return nil, fmt.Errorf("could not get task: %w", err)
	}

	s.reg.Ingest(append(s.reg.List(), *task))

	return task, nil
}

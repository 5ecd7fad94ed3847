// Package taskctl implements pause, resume and stop of worker tasks with
// local pre-validation against the known registry state.
package taskctl

import (
	"context"
	"fmt"

	"github.com/slok/scraperctl/internal/eventlog"
	"github.com/slok/scraperctl/internal/log"
	"github.com/slok/scraperctl/internal/model"
	"github.com/slok/scraperctl/internal/registry"
	"github.com/slok/scraperctl/internal/remote"
)

// ServiceConfig is the configuration for the task control service.
type ServiceConfig struct {
	Client   remote.Client
	Registry *registry.Registry
	Events   *eventlog.Log
	Logger   log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Client == nil {
		return fmt.Errorf("remote client is required")
	}
	if c.Registry == nil {
		return fmt.Errorf("registry is required")
	}
	if c.Events == nil {
		return fmt.Errorf("event log is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "taskctl.Service"})
	return nil
}

// Service sends control commands to the remote worker.
type Service struct {
	client   remote.Client
	registry *registry.Registry
	events   *eventlog.Log
	logger   log.Logger
}

// NewService creates a new task control service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		client:   cfg.Client,
		registry: cfg.Registry,
		events:   cfg.Events,
		logger:   cfg.Logger,
	}, nil
}

// Request is the request to control a task.
type Request struct {
	TaskID string
	Action model.TaskControlAction
}

// Run sends a control command for a task.
//
// The command is validated against the last known status before any network
// call: an impossible transition fails locally. A remote rejection leaves
// local state untouched. On acknowledgment the registry moves to the target
// status, the poller confirms shortly after either way.
func (s *Service) Run(ctx context.Context, req Request) error {
	if req.TaskID == "" {
		return fmt.Errorf("task id is required: %w", model.ErrNotValid)
	}

	target, err := req.Action.TargetStatus()
	if err != nil {
		return fmt.Errorf("invalid action: %w", err)
	}

	task, err := s.registry.Get(req.TaskID)
	if err != nil {
		s.events.Append(model.EventLevelError, "could not %s task %s: %s", req.Action, req.TaskID, err)
		return fmt.Errorf("could not get task: %w", err)
	}

	if !task.Status.CanTransition(target) {
		err := fmt.Errorf("cannot %s a %s task: %w", req.Action, task.Status, model.ErrNotValid)
		s.events.Append(model.EventLevelError, "could not %s task %s: %s", req.Action, req.TaskID, err)
		return err
	}

	err = s.client.TaskControl(ctx, req.TaskID, req.Action)
	if err != nil {
		s.events.Append(model.EventLevelError, "could not %s task %s: %s", req.Action, req.TaskID, err)
		return fmt.Errorf("could not %s task: %w", req.Action, err)
	}

	// The worker acknowledged, move the registry ahead of the next poll.
	err = s.registry.ApplyEvent(model.TaskPatch{TaskID: req.TaskID, Status: &target})
	if err != nil {
		s.logger.Warningf("could not apply acknowledged %s to task %s: %s", req.Action, req.TaskID, err)
	}

	s.events.Append(model.EventLevelInfo, "task %s %s requested", req.TaskID, req.Action)

	return nil
}

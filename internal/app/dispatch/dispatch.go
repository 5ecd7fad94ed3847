// Package dispatch implements the submit side of the console: bulk and
// single article downloads, keyword searches and journal crawls.
package dispatch

import (
	"context"
	"fmt"

	"github.com/slok/scraperctl/internal/eventlog"
	"github.com/slok/scraperctl/internal/log"
	"github.com/slok/scraperctl/internal/model"
	"github.com/slok/scraperctl/internal/registry"
	"github.com/slok/scraperctl/internal/remote"
	"github.com/slok/scraperctl/internal/selection"
)

// Refresher triggers an asynchronous registry refresh, e.g. through the
// sync scheduler's inbound queue.
type Refresher interface {
	RefreshNow(ctx context.Context)
}

// ServiceConfig is the configuration for the dispatch service.
type ServiceConfig struct {
	Client    remote.Client
	Registry  *registry.Registry
	Selection *selection.Set
	Events    *eventlog.Log
	// Refresher is optional. Without one, the service refreshes the
	// registry with a direct synchronous poll after each submit.
	Refresher Refresher
	Logger    log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Client == nil {
		return fmt.Errorf("remote client is required")
	}
	if c.Registry == nil {
		return fmt.Errorf("registry is required")
	}
	if c.Selection == nil {
		return fmt.Errorf("selection set is required")
	}
	if c.Events == nil {
		return fmt.Errorf("event log is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "dispatch.Service"})
	return nil
}

// Service dispatches work to the remote worker and correlates the created
// tasks back into the registry.
type Service struct {
	client    remote.Client
	registry  *registry.Registry
	selection *selection.Set
	events    *eventlog.Log
	refresher Refresher
	logger    log.Logger
}

// NewService creates a new dispatch service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		client:    cfg.Client,
		registry:  cfg.Registry,
		selection: cfg.Selection,
		events:    cfg.Events,
		refresher: cfg.Refresher,
		logger:    cfg.Logger,
	}, nil
}

// SubmitBulk dispatches a bulk download for the given article ids.
//
// An empty id list or an invalid worker count fails locally without any
// network call. Once the request has been issued the selection set is
// consumed and cleared, success or failure: a stale batch must never be
// resubmittable by accident.
func (s *Service) SubmitBulk(ctx context.Context, ids []string, maxWorkers int) (*model.TaskRef, error) {
	if len(ids) == 0 {
		err := fmt.Errorf("no articles selected: %w", model.ErrNotValid)
		s.events.Append(model.EventLevelError, "download not submitted: %s", err)
		return nil, err
	}
	if maxWorkers < 1 {
		err := fmt.Errorf("max workers must be >= 1: %w", model.ErrNotValid)
		s.events.Append(model.EventLevelError, "download not submitted: %s", err)
		return nil, err
	}

	ref, err := s.client.SubmitDownload(ctx, ids, maxWorkers)
	s.selection.Clear()
	if err != nil {
		s.events.Append(model.EventLevelError, "could not submit download of %d articles: %s", len(ids), err)
		return nil, fmt.Errorf("could not submit download: %w", err)
	}

	s.events.Append(model.EventLevelSuccess, "download task %s submitted (%d articles, %d workers)", ref.ID, len(ids), maxWorkers)
	s.refresh(ctx)

	return ref, nil
}

// SubmitSingle dispatches a download of one article with a single worker.
func (s *Service) SubmitSingle(ctx context.Context, id string) (*model.TaskRef, error) {
	return s.SubmitBulk(ctx, []string{id}, 1)
}

// SubmitSelection dispatches a bulk download of the current selection set.
func (s *Service) SubmitSelection(ctx context.Context, maxWorkers int) (*model.TaskRef, error) {
	return s.SubmitBulk(ctx, s.selection.IDs(), maxWorkers)
}

// KeywordSearchRequest are the parameters of a keyword search task.
type KeywordSearchRequest struct {
	Keywords       []string
	ResultCount    int
	LiteratureType string
}

// StartKeywordSearch starts a keyword search task on the worker.
func (s *Service) StartKeywordSearch(ctx context.Context, req KeywordSearchRequest) (*model.TaskRef, error) {
	if len(req.Keywords) == 0 {
		err := fmt.Errorf("at least one keyword is required: %w", model.ErrNotValid)
		s.events.Append(model.EventLevelError, "keyword search not started: %s", err)
		return nil, err
	}
	if req.ResultCount < 1 {
		err := fmt.Errorf("result count must be >= 1: %w", model.ErrNotValid)
		s.events.Append(model.EventLevelError, "keyword search not started: %s", err)
		return nil, err
	}

	ref, err := s.client.StartKeywordSearch(ctx, req.Keywords, req.ResultCount, req.LiteratureType)
	if err != nil {
		s.events.Append(model.EventLevelError, "could not start keyword search: %s", err)
		return nil, fmt.Errorf("could not start keyword search: %w", err)
	}

	s.events.Append(model.EventLevelSuccess, "keyword search task %s started (%d keywords)", ref.ID, len(req.Keywords))
	s.refresh(ctx)

	return ref, nil
}

// JournalCrawlRequest are the parameters of a journal crawl task.
type JournalCrawlRequest struct {
	JournalFile string
	StartYear   int
	EndYear     int
}

// StartJournalCrawl starts a journal crawl task on the worker.
func (s *Service) StartJournalCrawl(ctx context.Context, req JournalCrawlRequest) (*model.TaskRef, error) {
	if req.JournalFile == "" {
		err := fmt.Errorf("journal file is required: %w", model.ErrNotValid)
		s.events.Append(model.EventLevelError, "journal crawl not started: %s", err)
		return nil, err
	}
	if req.StartYear < 1 || req.EndYear < req.StartYear {
		err := fmt.Errorf("invalid year range %d-%d: %w", req.StartYear, req.EndYear, model.ErrNotValid)
		s.events.Append(model.EventLevelError, "journal crawl not started: %s", err)
		return nil, err
	}

	ref, err := s.client.StartJournalCrawl(ctx, req.JournalFile, req.StartYear, req.EndYear)
	if err != nil {
		s.events.Append(model.EventLevelError, "could not start journal crawl: %s", err)
		return nil, fmt.Errorf("could not start journal crawl: %w", err)
	}

	s.events.Append(model.EventLevelSuccess, "journal crawl task %s started (%d-%d)", ref.ID, req.StartYear, req.EndYear)
	s.refresh(ctx)

	return ref, nil
}

// refresh updates the registry with the authoritative state after a
// successful submit. Fire and forget: a refresh failure is transient, the
// created task shows up on the next poll anyway.
func (s *Service) refresh(ctx context.Context) {
	if s.refresher != nil {
		s.refresher.RefreshNow(ctx)
		return
	}

	tasks, err := s.client.ListTasks(ctx)
	if err != nil {
		s.logger.Warningf("could not refresh tasks after submit: %s", err)
		return
	}
	s.registry.Ingest(tasks)
}

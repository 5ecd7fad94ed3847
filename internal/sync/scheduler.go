// Package sync drives the reconciliation of the task registry from the two
// worker channels: periodic polling (authoritative snapshots) and the push
// feed (advisory incremental patches).
//
// Every inbound update flows through a single queue consumed by one
// goroutine, so state-update logic is decoupled from transport mechanics
// and fully testable without any transport present. Poll responses always
// win over push drift, bounding staleness to one poll interval.
package sync

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/slok/scraperctl/internal/eventlog"
	"github.com/slok/scraperctl/internal/log"
	"github.com/slok/scraperctl/internal/model"
	"github.com/slok/scraperctl/internal/registry"
	"github.com/slok/scraperctl/internal/remote"
)

// Snapshotter persists the last authoritative snapshot, best effort.
type Snapshotter interface {
	SaveTaskSnapshot(ctx context.Context, tasks []model.Task) error
}

// SchedulerConfig is the configuration for the sync scheduler.
type SchedulerConfig struct {
	Client   remote.Client
	Registry *registry.Registry
	Events   *eventlog.Log
	// Snapshots optionally persists every applied snapshot.
	Snapshots Snapshotter
	// OnUpdate is called after every applied state mutation, e.g. to
	// re-project the view model. Called from the consumer goroutine.
	OnUpdate func()
	Logger   log.Logger
}

func (c *SchedulerConfig) defaults() error {
	if c.Client == nil {
		return fmt.Errorf("remote client is required")
	}
	if c.Registry == nil {
		return fmt.Errorf("registry is required")
	}
	if c.Events == nil {
		return fmt.Errorf("event log is required")
	}
	if c.OnUpdate == nil {
		c.OnUpdate = func() {}
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "sync.Scheduler"})
	return nil
}

// inboundMsg is one unit of the single inbound queue. Exactly one of the
// fields is set.
type inboundMsg struct {
	poll *pollResult
	push *model.PushEvent
}

type pollResult struct {
	// viewID and gen identify the polling loop that produced the result.
	// An empty viewID marks a direct refresh, which is always current.
	viewID string
	gen    uint64
	tasks  []model.Task
	err    error
}

// viewState tracks the single active polling loop of a view.
type viewState struct {
	gen    uint64
	cancel context.CancelFunc
}

// Scheduler owns polling timers and the inbound queue.
type Scheduler struct {
	client    remote.Client
	registry  *registry.Registry
	events    *eventlog.Log
	snapshots Snapshotter
	onUpdate  func()
	logger    log.Logger

	inbox   chan inboundMsg
	views   map[string]*viewState
	nextGen uint64
	mu      sync.Mutex
}

// NewScheduler creates a new sync scheduler. Run must be called for any
// inbound update to be applied.
func NewScheduler(cfg SchedulerConfig) (*Scheduler, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Scheduler{
		client:    cfg.Client,
		registry:  cfg.Registry,
		events:    cfg.Events,
		snapshots: cfg.Snapshots,
		onUpdate:  cfg.OnUpdate,
		logger:    cfg.Logger,
		inbox:     make(chan inboundMsg, 64),
		views:     map[string]*viewState{},
	}, nil
}

// Run consumes the inbound queue until the context is canceled. No inbound
// failure ever terminates the loop.
func (s *Scheduler) Run(ctx context.Context) error {
	defer s.stopAll()

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg := <-s.inbox:
			switch {
			case msg.poll != nil:
				s.handlePoll(*msg.poll)
			case msg.push != nil:
				s.handlePush(*msg.push)
			}
		}
	}
}

// Start begins periodic polling for a view. At most one timer exists per
// view: starting an already started view first cancels the previous timer
// and bumps the generation, so results of the old loop are discarded.
func (s *Scheduler) Start(interval time.Duration, viewID string) error {
	if interval <= 0 {
		return fmt.Errorf("interval must be positive: %w", model.ErrNotValid)
	}
	if viewID == "" {
		return fmt.Errorf("view id is required: %w", model.ErrNotValid)
	}

	ctx, cancel := context.WithCancel(context.Background())

	s.mu.Lock()
	if prev, ok := s.views[viewID]; ok {
		prev.cancel()
	}
	s.nextGen++
	gen := s.nextGen
	s.views[viewID] = &viewState{gen: gen, cancel: cancel}
	s.mu.Unlock()

	s.logger.Debugf("started polling view %s (gen %d) every %s", viewID, gen, interval)
	go s.pollLoop(ctx, viewID, gen, interval)

	return nil
}

// Stop cancels the polling timer of a view. Idempotent: stopping a stopped
// view is a no-op. Any in-flight poll of the view resolves into a stale
// generation and is discarded.
func (s *Scheduler) Stop(viewID string) {
	s.mu.Lock()
	view, ok := s.views[viewID]
	if ok {
		view.cancel()
		delete(s.views, viewID)
	}
	s.mu.Unlock()

	if ok {
		s.logger.Debugf("stopped polling view %s", viewID)
	}
}

func (s *Scheduler) stopAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, view := range s.views {
		view.cancel()
		delete(s.views, id)
	}
}

// RefreshNow polls a snapshot immediately and routes it through the inbound
// queue, outside any view timer. Used after dispatching commands.
func (s *Scheduler) RefreshNow(ctx context.Context) {
	go s.pollOnce(ctx, "", 0)
}

// HandlePush routes a push event into the inbound queue. Safe to call from
// any goroutine, e.g. the feed transport.
func (s *Scheduler) HandlePush(event model.PushEvent) {
	select {
	case s.inbox <- inboundMsg{push: &event}:
	default:
		// The queue is advisory-lossy under pressure: the next poll
		// resynchronizes anything a dropped patch carried.
		s.logger.Warningf("inbound queue full, dropping %s push event", event.Type)
	}
}

func (s *Scheduler) pollLoop(ctx context.Context, viewID string, gen uint64, interval time.Duration) {
	s.pollOnce(ctx, viewID, gen)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.pollOnce(ctx, viewID, gen)
		}
	}
}

func (s *Scheduler) pollOnce(ctx context.Context, viewID string, gen uint64) {
	tasks, err := s.client.ListTasks(ctx)
	result := pollResult{viewID: viewID, gen: gen, tasks: tasks, err: err}

	// Non-blocking: a canceled or late result is discarded by the
	// generation check on the consumer side anyway.
	select {
	case s.inbox <- inboundMsg{poll: &result}:
	default:
		s.logger.Warningf("inbound queue full, dropping poll result")
	}
}

// current returns true when the poll result belongs to the live generation
// of its view. Direct refreshes (empty viewID) are always current.
func (s *Scheduler) current(r pollResult) bool {
	if r.viewID == "" {
		return true
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	view, ok := s.views[r.viewID]
	return ok && view.gen == r.gen
}

func (s *Scheduler) handlePoll(r pollResult) {
	if !s.current(r) {
		s.logger.Debugf("discarding stale poll result (view %s, gen %d)", r.viewID, r.gen)
		return
	}

	if r.err != nil {
		// Transient: the previous snapshot stays, the timer keeps ticking.
		s.events.Append(model.EventLevelWarning, "task poll failed: %s", r.err)
		return
	}

	s.registry.Ingest(r.tasks)

	if s.snapshots != nil {
		if err := s.snapshots.SaveTaskSnapshot(context.Background(), r.tasks); err != nil {
			s.logger.Warningf("could not persist task snapshot: %s", err)
		}
	}

	s.onUpdate()
}

func (s *Scheduler) handlePush(event model.PushEvent) {
	switch event.Type {
	case model.PushEventConnected:
		s.events.Append(model.EventLevelInfo, "push channel connected")

	case model.PushEventDisconnected:
		s.events.Append(model.EventLevelWarning, "push channel disconnected")

	case model.PushEventLog:
		s.events.Append(event.Level, "%s", event.Message)

	case model.PushEventProgress:
		if event.TaskID == "" {
			s.logger.Debugf("progress event without task correlation, ignored")
			return
		}
		patch := model.TaskPatch{TaskID: event.TaskID, Progress: &event.Progress}
		if event.Message != "" {
			patch.CurrentStep = &event.Message
		}
		if err := s.registry.ApplyEvent(patch); err != nil {
			// Unknown tasks settle on the next snapshot, anything else is
			// a patch the state machine refused.
			s.logger.Warningf("could not apply progress event for task %s: %s", event.TaskID, err)
			return
		}

	case model.PushEventTaskComplete:
		s.events.Append(model.EventLevelSuccess, "%s task finished", event.TaskType)
		// Advisory hint: fetch the authoritative state right away instead
		// of waiting for the next tick.
		s.refreshViews()

	default:
		s.logger.Warningf("unknown push event type %q", event.Type)
		return
	}

	s.onUpdate()
}

func (s *Scheduler) refreshViews() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for viewID, view := range s.views {
		go s.pollOnce(context.Background(), viewID, view.gen)
	}
}

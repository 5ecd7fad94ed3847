package sync_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/slok/scraperctl/internal/eventlog"
	"github.com/slok/scraperctl/internal/model"
	"github.com/slok/scraperctl/internal/registry"
	"github.com/slok/scraperctl/internal/remote/remotemock"
	appsync "github.com/slok/scraperctl/internal/sync"
)

type schedulerFixture struct {
	scheduler *appsync.Scheduler
	registry  *registry.Registry
	events    *eventlog.Log
	client    *remotemock.MockClient
	updates   chan struct{}
	cancel    context.CancelFunc
}

func newFixture(t *testing.T) *schedulerFixture {
	t.Helper()

	reg, err := registry.NewRegistry(registry.RegistryConfig{})
	require.NoError(t, err)

	events, err := eventlog.NewLog(eventlog.LogConfig{})
	require.NoError(t, err)

	client := &remotemock.MockClient{}
	updates := make(chan struct{}, 32)

	scheduler, err := appsync.NewScheduler(appsync.SchedulerConfig{
		Client:   client,
		Registry: reg,
		Events:   events,
		OnUpdate: func() { updates <- struct{}{} },
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = scheduler.Run(ctx) }()
	t.Cleanup(cancel)

	return &schedulerFixture{
		scheduler: scheduler,
		registry:  reg,
		events:    events,
		client:    client,
		updates:   updates,
		cancel:    cancel,
	}
}

func (f *schedulerFixture) waitUpdate(t *testing.T) {
	t.Helper()
	select {
	case <-f.updates:
	case <-time.After(5 * time.Second):
		t.Fatal("no state update arrived in time")
	}
}

func TestSchedulerPollAppliesSnapshot(t *testing.T) {
	f := newFixture(t)
	f.client.On("ListTasks", mock.Anything).Return([]model.Task{
		{ID: "t1", Status: model.TaskStatusRunning},
		{ID: "t2", Status: model.TaskStatusCompleted},
	}, nil)

	require.NoError(t, f.scheduler.Start(time.Hour, "tasks"))
	defer f.scheduler.Stop("tasks")
	f.waitUpdate(t)

	assert.Equal(t, model.StatusCounts{
		model.TaskStatusRunning:   1,
		model.TaskStatusCompleted: 1,
	}, f.registry.Aggregate())
}

func TestSchedulerStartValidation(t *testing.T) {
	f := newFixture(t)

	assert.ErrorIs(t, f.scheduler.Start(0, "tasks"), model.ErrNotValid)
	assert.ErrorIs(t, f.scheduler.Start(time.Second, ""), model.ErrNotValid)
}

func TestSchedulerFailedPollRetainsSnapshot(t *testing.T) {
	f := newFixture(t)
	f.client.On("ListTasks", mock.Anything).Once().Return([]model.Task{
		{ID: "t1", Status: model.TaskStatusRunning},
	}, nil)
	f.client.On("ListTasks", mock.Anything).Once().Return(nil,
		fmt.Errorf("connection refused: %w", model.ErrTransient))

	f.scheduler.RefreshNow(context.Background())
	f.waitUpdate(t)

	f.scheduler.RefreshNow(context.Background())

	// The failure surfaces as a warning event while the snapshot stays.
	require.Eventually(t, func() bool {
		for _, e := range f.events.Entries() {
			if e.Level == model.EventLevelWarning {
				return true
			}
		}
		return false
	}, 5*time.Second, 10*time.Millisecond)

	task, err := f.registry.Get("t1")
	require.NoError(t, err)
	assert.Equal(t, model.TaskStatusRunning, task.Status)
}

func TestSchedulerLatePollAfterStopIsDiscarded(t *testing.T) {
	f := newFixture(t)

	inFlight := make(chan struct{})
	release := make(chan struct{})
	f.client.On("ListTasks", mock.Anything).Once().Run(func(mock.Arguments) {
		close(inFlight)
		<-release
	}).Return([]model.Task{{ID: "stale", Status: model.TaskStatusRunning}}, nil)

	require.NoError(t, f.scheduler.Start(time.Hour, "tasks"))
	<-inFlight

	// Leaving the view cancels the timer while the poll is in flight.
	f.scheduler.Stop("tasks")
	close(release)

	// A later push event acts as a queue barrier: once it is consumed the
	// late poll result has already been processed (and discarded).
	f.scheduler.HandlePush(model.PushEvent{Type: model.PushEventLog, Level: model.EventLevelInfo, Message: "barrier"})
	f.waitUpdate(t)

	_, err := f.registry.Get("stale")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestSchedulerRestartDiscardsPreviousGeneration(t *testing.T) {
	f := newFixture(t)

	inFlight := make(chan struct{})
	release := make(chan struct{})
	f.client.On("ListTasks", mock.Anything).Once().Run(func(mock.Arguments) {
		close(inFlight)
		<-release
	}).Return([]model.Task{{ID: "old-gen", Status: model.TaskStatusRunning}}, nil)
	f.client.On("ListTasks", mock.Anything).Return([]model.Task{
		{ID: "new-gen", Status: model.TaskStatusRunning},
	}, nil)

	require.NoError(t, f.scheduler.Start(time.Hour, "tasks"))
	<-inFlight

	// Restarting the same view bumps the generation.
	require.NoError(t, f.scheduler.Start(time.Hour, "tasks"))
	defer f.scheduler.Stop("tasks")
	f.waitUpdate(t)

	// Now let the first generation's poll resolve: it must be dropped.
	close(release)
	f.scheduler.HandlePush(model.PushEvent{Type: model.PushEventLog, Level: model.EventLevelInfo, Message: "barrier"})
	f.waitUpdate(t)

	_, err := f.registry.Get("old-gen")
	assert.ErrorIs(t, err, model.ErrNotFound)
	_, err = f.registry.Get("new-gen")
	assert.NoError(t, err)
}

func TestSchedulerPushLogEvent(t *testing.T) {
	f := newFixture(t)

	f.scheduler.HandlePush(model.PushEvent{
		Type: model.PushEventLog, Level: model.EventLevelError, Message: "captcha wall",
	})
	f.waitUpdate(t)

	entries := f.events.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, model.EventLevelError, entries[0].Level)
	assert.Equal(t, "captcha wall", entries[0].Message)
}

func TestSchedulerPushProgressPatchesTask(t *testing.T) {
	f := newFixture(t)
	f.registry.Ingest([]model.Task{{ID: "t1", Status: model.TaskStatusRunning}})

	f.scheduler.HandlePush(model.PushEvent{
		Type: model.PushEventProgress, TaskID: "t1", Progress: 60, Message: "page 6/10",
	})
	f.waitUpdate(t)

	task, err := f.registry.Get("t1")
	require.NoError(t, err)
	assert.Equal(t, 60, task.Progress)
	assert.Equal(t, "page 6/10", task.CurrentStep)
}

func TestSchedulerPushProgressOnTerminalTaskIsIgnored(t *testing.T) {
	f := newFixture(t)
	f.registry.Ingest([]model.Task{{ID: "t1", Status: model.TaskStatusCompleted, Progress: 100}})

	f.scheduler.HandlePush(model.PushEvent{
		Type: model.PushEventProgress, TaskID: "t1", Progress: 10,
	})
	f.waitUpdate(t)

	task, err := f.registry.Get("t1")
	require.NoError(t, err)
	assert.Equal(t, 100, task.Progress)
}

func TestSchedulerPollWinsOverPushDrift(t *testing.T) {
	f := newFixture(t)
	f.registry.Ingest([]model.Task{{ID: "t1", Status: model.TaskStatusRunning, Progress: 10}})
	f.client.On("ListTasks", mock.Anything).Return([]model.Task{
		{ID: "t1", Status: model.TaskStatusRunning, Progress: 30},
	}, nil)

	// Push drift first, authoritative poll afterwards.
	f.scheduler.HandlePush(model.PushEvent{Type: model.PushEventProgress, TaskID: "t1", Progress: 99})
	f.waitUpdate(t)
	f.scheduler.RefreshNow(context.Background())
	f.waitUpdate(t)

	task, err := f.registry.Get("t1")
	require.NoError(t, err)
	assert.Equal(t, 30, task.Progress)
}

func TestSchedulerTaskCompleteLogsAndRefreshes(t *testing.T) {
	f := newFixture(t)
	f.client.On("ListTasks", mock.Anything).Return([]model.Task{
		{ID: "t1", Status: model.TaskStatusCompleted},
	}, nil)

	require.NoError(t, f.scheduler.Start(time.Hour, "tasks"))
	defer f.scheduler.Stop("tasks")
	f.waitUpdate(t) // Initial poll.

	f.scheduler.HandlePush(model.PushEvent{Type: model.PushEventTaskComplete, TaskType: model.TaskTypeDownload})
	f.waitUpdate(t) // Push handled.
	f.waitUpdate(t) // Triggered refresh applied.

	found := false
	for _, e := range f.events.Entries() {
		if e.Level == model.EventLevelSuccess {
			found = true
		}
	}
	assert.True(t, found, "a success event for the finished task is expected")
}

func TestSchedulerStopIsIdempotent(t *testing.T) {
	f := newFixture(t)

	assert.NotPanics(t, func() {
		f.scheduler.Stop("never-started")
		f.scheduler.Stop("never-started")
	})
}

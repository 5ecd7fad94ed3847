package registry_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/scraperctl/internal/model"
	"github.com/slok/scraperctl/internal/registry"
)

func newRegistry(t *testing.T, tasks ...model.Task) *registry.Registry {
	r, err := registry.NewRegistry(registry.RegistryConfig{})
	require.NoError(t, err)
	r.Ingest(tasks)
	return r
}

func statusPtr(s model.TaskStatus) *model.TaskStatus { return &s }
func intPtr(i int) *int                              { return &i }
func strPtr(s string) *string                        { return &s }

func TestRegistryIngestIsAuthoritative(t *testing.T) {
	r := newRegistry(t,
		model.Task{ID: "t1", Status: model.TaskStatusRunning},
		model.Task{ID: "t2", Status: model.TaskStatusPending},
	)

	// Drift the state with patches.
	require.NoError(t, r.ApplyEvent(model.TaskPatch{TaskID: "t1", Progress: intPtr(80)}))
	require.NoError(t, r.ApplyEvent(model.TaskPatch{TaskID: "t2", Status: statusPtr(model.TaskStatusRunning)}))

	// The next snapshot replaces everything, including tasks it omits.
	r.Ingest([]model.Task{
		{ID: "t1", Status: model.TaskStatusCompleted, Progress: 100},
	})

	tasks := r.List()
	require.Len(t, tasks, 1)
	assert.Equal(t, "t1", tasks[0].ID)
	assert.Equal(t, model.TaskStatusCompleted, tasks[0].Status)
	assert.Equal(t, 100, tasks[0].Progress)

	_, err := r.Get("t2")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestRegistryApplyEvent(t *testing.T) {
	tests := map[string]struct {
		initial   model.Task
		patch     model.TaskPatch
		expErr    error
		expStatus model.TaskStatus
		check     func(t *testing.T, task *model.Task)
	}{
		"Progress patch updates counters": {
			initial: model.Task{ID: "t1", Status: model.TaskStatusRunning, TotalItems: 10},
			patch: model.TaskPatch{
				TaskID:         "t1",
				ProcessedItems: intPtr(4),
				FailedItems:    intPtr(1),
				Progress:       intPtr(50),
				CurrentStep:    strPtr("downloading page 5"),
			},
			expStatus: model.TaskStatusRunning,
			check: func(t *testing.T, task *model.Task) {
				assert.Equal(t, 4, task.ProcessedItems)
				assert.Equal(t, 1, task.FailedItems)
				assert.Equal(t, 50, task.Progress)
				assert.Equal(t, "downloading page 5", task.CurrentStep)
			},
		},

		"Legal transition pending to running is applied": {
			initial:   model.Task{ID: "t1", Status: model.TaskStatusPending},
			patch:     model.TaskPatch{TaskID: "t1", Status: statusPtr(model.TaskStatusRunning)},
			expStatus: model.TaskStatusRunning,
			check: func(t *testing.T, task *model.Task) {
				assert.NotNil(t, task.StartedAt)
			},
		},

		"Illegal transition paused to completed is rejected": {
			initial:   model.Task{ID: "t1", Status: model.TaskStatusPaused},
			patch:     model.TaskPatch{TaskID: "t1", Status: statusPtr(model.TaskStatusCompleted)},
			expErr:    model.ErrNotValid,
			expStatus: model.TaskStatusPaused,
		},

		"Event on a completed task is dropped, not applied": {
			initial:   model.Task{ID: "t1", Status: model.TaskStatusCompleted, Progress: 100},
			patch:     model.TaskPatch{TaskID: "t1", Status: statusPtr(model.TaskStatusRunning), Progress: intPtr(10)},
			expStatus: model.TaskStatusCompleted,
			check: func(t *testing.T, task *model.Task) {
				assert.Equal(t, 100, task.Progress)
			},
		},

		"Counter patch exceeding the item total is rejected": {
			initial: model.Task{ID: "t1", Status: model.TaskStatusRunning, TotalItems: 5, ProcessedItems: 3},
			patch: model.TaskPatch{
				TaskID:         "t1",
				ProcessedItems: intPtr(4),
				FailedItems:    intPtr(2),
			},
			expErr:    model.ErrNotValid,
			expStatus: model.TaskStatusRunning,
			check: func(t *testing.T, task *model.Task) {
				assert.Equal(t, 3, task.ProcessedItems)
				assert.Equal(t, 0, task.FailedItems)
			},
		},

		"Progress patch outside 0-100 is rejected": {
			initial:   model.Task{ID: "t1", Status: model.TaskStatusRunning, Progress: 40},
			patch:     model.TaskPatch{TaskID: "t1", Progress: intPtr(140)},
			expErr:    model.ErrNotValid,
			expStatus: model.TaskStatusRunning,
			check: func(t *testing.T, task *model.Task) {
				assert.Equal(t, 40, task.Progress)
			},
		},

		"Unknown task yields not found": {
			initial: model.Task{ID: "t1", Status: model.TaskStatusRunning},
			patch:     model.TaskPatch{TaskID: "ghost", Status: statusPtr(model.TaskStatusRunning)},
			expErr:    model.ErrNotFound,
			expStatus: model.TaskStatusRunning,
		},

		"Missing task id is not valid": {
			initial: model.Task{ID: "t1", Status: model.TaskStatusRunning},
			patch:     model.TaskPatch{Progress: intPtr(10)},
			expErr:    model.ErrNotValid,
			expStatus: model.TaskStatusRunning,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			r := newRegistry(t, test.initial)

			err := r.ApplyEvent(test.patch)

			if test.expErr != nil {
				assert.ErrorIs(t, err, test.expErr)
			} else {
				assert.NoError(t, err)
			}

			task, getErr := r.Get(test.initial.ID)
			require.NoError(t, getErr)
			assert.Equal(t, test.expStatus, task.Status)
			if test.check != nil {
				test.check(t, task)
			}
		})
	}
}

func TestRegistryApplyEventIsIdempotent(t *testing.T) {
	r := newRegistry(t, model.Task{ID: "t1", Status: model.TaskStatusPending})

	patch := model.TaskPatch{
		TaskID:      "t1",
		Status:      statusPtr(model.TaskStatusRunning),
		Progress:    intPtr(30),
		CurrentStep: strPtr("searching"),
	}

	require.NoError(t, r.ApplyEvent(patch))
	first, err := r.Get("t1")
	require.NoError(t, err)

	require.NoError(t, r.ApplyEvent(patch))
	second, err := r.Get("t1")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestRegistryRejectedPatchLeavesStateUntouched(t *testing.T) {
	r := newRegistry(t, model.Task{ID: "t1", Status: model.TaskStatusPending, Progress: 0})

	err := r.ApplyEvent(model.TaskPatch{
		TaskID:   "t1",
		Status:   statusPtr(model.TaskStatusCompleted), // Illegal from pending.
		Progress: intPtr(99),
	})
	assert.ErrorIs(t, err, model.ErrNotValid)

	task, getErr := r.Get("t1")
	require.NoError(t, getErr)
	assert.Equal(t, model.TaskStatusPending, task.Status)
	assert.Equal(t, 0, task.Progress)
}

func TestRegistryAggregate(t *testing.T) {
	r := newRegistry(t,
		model.Task{ID: "t1", Status: model.TaskStatusRunning},
		model.Task{ID: "t2", Status: model.TaskStatusRunning},
		model.Task{ID: "t3", Status: model.TaskStatusPaused},
		model.Task{ID: "t4", Status: model.TaskStatusCompleted},
		model.Task{ID: "t5", Status: model.TaskStatusFailed},
		model.Task{ID: "t6", Status: model.TaskStatusCompleted},
	)

	assert.Equal(t, model.StatusCounts{
		model.TaskStatusRunning:   2,
		model.TaskStatusPaused:    1,
		model.TaskStatusCompleted: 2,
		model.TaskStatusFailed:    1,
	}, r.Aggregate())
}

func TestRegistryListOrder(t *testing.T) {
	older := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	newer := time.Date(2026, 8, 2, 10, 0, 0, 0, time.UTC)

	r := newRegistry(t,
		model.Task{ID: "t1", Status: model.TaskStatusRunning, CreatedAt: older},
		model.Task{ID: "t2", Status: model.TaskStatusRunning, CreatedAt: newer},
		model.Task{ID: "t3", Status: model.TaskStatusRunning, CreatedAt: older},
	)

	tasks := r.List()
	require.Len(t, tasks, 3)
	assert.Equal(t, "t2", tasks[0].ID)
	assert.Equal(t, "t1", tasks[1].ID)
	assert.Equal(t, "t3", tasks[2].ID)
}

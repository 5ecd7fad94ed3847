package taskctl_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/slok/scraperctl/internal/app/taskctl"
	"github.com/slok/scraperctl/internal/eventlog"
	"github.com/slok/scraperctl/internal/model"
	"github.com/slok/scraperctl/internal/registry"
	"github.com/slok/scraperctl/internal/remote/remotemock"
)

func TestServiceRun(t *testing.T) {
	tests := map[string]struct {
		tasks     []model.Task
		req       taskctl.Request
		mock      func(m *remotemock.MockClient)
		expErr    error
		expStatus model.TaskStatus
	}{
		"Pausing a running task should be acknowledged and applied locally.": {
			tasks: []model.Task{{ID: "t1", Type: model.TaskTypeDownload, Status: model.TaskStatusRunning}},
			req:   taskctl.Request{TaskID: "t1", Action: model.TaskControlPause},
			mock: func(m *remotemock.MockClient) {
				m.On("TaskControl", mock.Anything, "t1", model.TaskControlPause).Once().Return(nil)
			},
			expStatus: model.TaskStatusPaused,
		},

		"Resuming a paused task should be acknowledged and applied locally.": {
			tasks: []model.Task{{ID: "t1", Type: model.TaskTypeDownload, Status: model.TaskStatusPaused, CanResume: true}},
			req:   taskctl.Request{TaskID: "t1", Action: model.TaskControlResume},
			mock: func(m *remotemock.MockClient) {
				m.On("TaskControl", mock.Anything, "t1", model.TaskControlResume).Once().Return(nil)
			},
			expStatus: model.TaskStatusRunning,
		},

		"Pausing a completed task should fail locally without any remote call.": {
			tasks:     []model.Task{{ID: "t1", Type: model.TaskTypeDownload, Status: model.TaskStatusCompleted}},
			req:       taskctl.Request{TaskID: "t1", Action: model.TaskControlPause},
			mock:      func(m *remotemock.MockClient) {},
			expErr:    model.ErrNotValid,
			expStatus: model.TaskStatusCompleted,
		},

		"Resuming a failed task should fail locally without any remote call.": {
			tasks:     []model.Task{{ID: "t1", Type: model.TaskTypeDownload, Status: model.TaskStatusFailed}},
			req:       taskctl.Request{TaskID: "t1", Action: model.TaskControlResume},
			mock:      func(m *remotemock.MockClient) {},
			expErr:    model.ErrNotValid,
			expStatus: model.TaskStatusFailed,
		},

		"Controlling an unknown task should fail locally without any remote call.": {
			tasks:  []model.Task{},
			req:    taskctl.Request{TaskID: "missing", Action: model.TaskControlStop},
			mock:   func(m *remotemock.MockClient) {},
			expErr: model.ErrNotFound,
		},

		"A request without a task id should fail.": {
			tasks:  []model.Task{},
			req:    taskctl.Request{Action: model.TaskControlStop},
			mock:   func(m *remotemock.MockClient) {},
			expErr: model.ErrNotValid,
		},

		"A remote rejection should not mutate local state.": {
			tasks: []model.Task{{ID: "t1", Type: model.TaskTypeDownload, Status: model.TaskStatusPaused, CanResume: false}},
			req:   taskctl.Request{TaskID: "t1", Action: model.TaskControlResume},
			mock: func(m *remotemock.MockClient) {
				m.On("TaskControl", mock.Anything, "t1", model.TaskControlResume).Once().Return(fmt.Errorf("task cannot be resumed: %w", model.ErrRejected))
			},
			expErr:    model.ErrRejected,
			expStatus: model.TaskStatusPaused,
		},

		"Stopping a running task should move it to failed.": {
			tasks: []model.Task{{ID: "t1", Type: model.TaskTypeJournalScrape, Status: model.TaskStatusRunning}},
			req:   taskctl.Request{TaskID: "t1", Action: model.TaskControlStop},
			mock: func(m *remotemock.MockClient) {
				m.On("TaskControl", mock.Anything, "t1", model.TaskControlStop).Once().Return(nil)
			},
			expStatus: model.TaskStatusFailed,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			mc := &remotemock.MockClient{}
			test.mock(mc)

			reg, err := registry.NewRegistry(registry.RegistryConfig{})
			require.NoError(err)
			reg.Ingest(test.tasks)

			events, err := eventlog.NewLog(eventlog.LogConfig{})
			require.NoError(err)

			svc, err := taskctl.NewService(taskctl.ServiceConfig{
				Client:   mc,
				Registry: reg,
				Events:   events,
			})
			require.NoError(err)

			err = svc.Run(context.TODO(), test.req)

			if test.expErr != nil {
				assert.ErrorIs(err, test.expErr)
			} else {
				assert.NoError(err)
			}
			if test.expStatus != "" {
				task, err := reg.Get(test.req.TaskID)
				require.NoError(err)
				assert.Equal(test.expStatus, task.Status)
			}
			mc.AssertExpectations(t)
		})
	}
}

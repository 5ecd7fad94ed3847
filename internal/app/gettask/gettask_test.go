package gettask_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/slok/scraperctl/internal/app/gettask"
	"github.com/slok/scraperctl/internal/model"
	"github.com/slok/scraperctl/internal/registry"
	"github.com/slok/scraperctl/internal/remote/remotemock"
)

func TestServiceRun(t *testing.T) {
	tests := map[string]struct {
		req     gettask.Request
		mock    func(m *remotemock.MockClient)
		expTask *model.Task
		expErr  error
	}{
		"A request without a task id should fail without any remote call.": {
			req:    gettask.Request{},
			mock:   func(m *remotemock.MockClient) {},
			expErr: model.ErrNotValid,
		},

		"An unknown task should fail with not found.": {
			req: gettask.Request{TaskID: "missing"},
			mock: func(m *remotemock.MockClient) {
				m.On("GetTask", mock.Anything, "missing").Once().Return(nil, fmt.Errorf("no task: %w", model.ErrNotFound))
			},
			expErr: model.ErrNotFound,
		},

		"A known task should be returned and folded into the registry.": {
			req: gettask.Request{TaskID: "t1"},
			mock: func(m *remotemock.MockClient) {
				m.On("GetTask", mock.Anything, "t1").Once().Return(&model.Task{ID: "t1", Type: model.TaskTypeDownload, Status: model.TaskStatusRunning, Progress: 42}, nil)
			},
			expTask: &model.Task{ID: "t1", Type: model.TaskTypeDownload, Status: model.TaskStatusRunning, Progress: 42},
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

			svc, err := gettask.NewService(gettask.ServiceConfig{
				Client:   mc,
				Registry: reg,
			})
			require.NoError(err)

			task, err := svc.Run(context.TODO(), test.req)

			if test.expErr != nil {
				assert.ErrorIs(err, test.expErr)
			} else {
				require.NoError(err)
				assert.Equal(test.expTask, task)

				got, err := reg.Get(test.req.TaskID)
				require.NoError(err)
				assert.Equal(test.expTask.Progress, got.Progress)
			}
			mc.AssertExpectations(t)
		})
	}
}

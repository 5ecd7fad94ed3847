package listtasks_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/slok/scraperctl/internal/app/listtasks"
	"github.com/slok/scraperctl/internal/model"
	"github.com/slok/scraperctl/internal/registry"
	"github.com/slok/scraperctl/internal/remote/remotemock"
	"github.com/slok/scraperctl/internal/storage/memory"
)

func statusPtr(s model.TaskStatus) *model.TaskStatus { return &s }

func TestServiceRun(t *testing.T) {
	t0 := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	tests := map[string]struct {
		req      listtasks.Request
		preload  []model.Task
		mock     func(m *remotemock.MockClient)
		expTasks []string
		expErr   bool
	}{
		"Listing should return the worker tasks newest first.": {
			req: listtasks.Request{},
			mock: func(m *remotemock.MockClient) {
				m.On("ListTasks", mock.Anything).Once().Return([]model.Task{
					{ID: "t1", Type: model.TaskTypeDownload, Status: model.TaskStatusRunning, CreatedAt: t0},
					{ID: "t2", Type: model.TaskTypeKeywordSearch, Status: model.TaskStatusPending, CreatedAt: t0.Add(time.Hour)},
				}, nil)
			},
			expTasks: []string{"t2", "t1"},
		},

		"Listing with a status filter should only return matching tasks.": {
			req: listtasks.Request{StatusFilter: statusPtr(model.TaskStatusRunning)},
			mock: func(m *remotemock.MockClient) {
				m.On("ListTasks", mock.Anything).Once().Return([]model.Task{
					{ID: "t1", Type: model.TaskTypeDownload, Status: model.TaskStatusRunning, CreatedAt: t0},
					{ID: "t2", Type: model.TaskTypeKeywordSearch, Status: model.TaskStatusCompleted, CreatedAt: t0.Add(time.Hour)},
				}, nil)
			},
			expTasks: []string{"t1"},
		},

		"An unreachable worker should fail the listing.": {
			req: listtasks.Request{},
			mock: func(m *remotemock.MockClient) {
				m.On("ListTasks", mock.Anything).Once().Return(nil, fmt.Errorf("down: %w", model.ErrTransient))
			},
			expErr: true,
		},

		"Cached listing should serve the persisted snapshot without any remote call.": {
			req: listtasks.Request{Cached: true},
			preload: []model.Task{
				{ID: "t1", Type: model.TaskTypeDownload, Status: model.TaskStatusCompleted, CreatedAt: t0},
			},
			mock:     func(m *remotemock.MockClient) {},
			expTasks: []string{"t1"},
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

			repo, err := memory.NewRepository(memory.RepositoryConfig{})
			require.NoError(err)
			if test.preload != nil {
				require.NoError(repo.SaveTaskSnapshot(context.TODO(), test.preload))
			}

			svc, err := listtasks.NewService(listtasks.ServiceConfig{
				Client:     mc,
				Registry:   reg,
				Repository: repo,
			})
			require.NoError(err)

			tasks, err := svc.Run(context.TODO(), test.req)

			if test.expErr {
				assert.Error(err)
			} else {
				require.NoError(err)
				ids := make([]string, 0, len(tasks))
				for _, task := range tasks {
					ids = append(ids, task.ID)
				}
				assert.Equal(test.expTasks, ids)
			}
			mc.AssertExpectations(t)
		})
	}
}

func TestServiceRunPersistsSnapshot(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	mc := &remotemock.MockClient{}
	mc.On("ListTasks", mock.Anything).Once().Return([]model.Task{
		{ID: "t1", Type: model.TaskTypeDownload, Status: model.TaskStatusRunning},
	}, nil)

	reg, err := registry.NewRegistry(registry.RegistryConfig{})
	require.NoError(err)

	repo, err := memory.NewRepository(memory.RepositoryConfig{})
	require.NoError(err)

	svc, err := listtasks.NewService(listtasks.ServiceConfig{
		Client:     mc,
		Registry:   reg,
		Repository: repo,
	})
	require.NoError(err)

	_, err = svc.Run(context.TODO(), listtasks.Request{})
	require.NoError(err)

	saved, err := repo.LoadTaskSnapshot(context.TODO())
	require.NoError(err)
	assert.Len(saved, 1)
	assert.Equal("t1", saved[0].ID)
}

// Package remotemock contains testify mocks for the remote worker contract.
package remotemock

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/slok/scraperctl/internal/model"
)

// MockClient is a testify mock of remote.Client.
type MockClient struct {
	mock.Mock
}

func (m *MockClient) ListTasks(ctx context.Context) ([]model.Task, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Task), args.Error(1)
}

func (m *MockClient) GetTask(ctx context.Context, id string) (*model.Task, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Task), args.Error(1)
}

func (m *MockClient) TaskControl(ctx context.Context, id string, action model.TaskControlAction) error {
	args := m.Called(ctx, id, action)
	return args.Error(0)
}

func (m *MockClient) ListArticles(ctx context.Context, page, perPage int, filters model.ArticleFilters) (*model.ArticlePage, error) {
	args := m.Called(ctx, page, perPage, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ArticlePage), args.Error(1)
}

func (m *MockClient) SubmitDownload(ctx context.Context, articleIDs []string, maxWorkers int) (*model.TaskRef, error) {
	args := m.Called(ctx, articleIDs, maxWorkers)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TaskRef), args.Error(1)
}

func (m *MockClient) StartKeywordSearch(ctx context.Context, keywords []string, resultCount int, literatureType string) (*model.TaskRef, error) {
	args := m.Called(ctx, keywords, resultCount, literatureType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TaskRef), args.Error(1)
}

func (m *MockClient) StartJournalCrawl(ctx context.Context, journalFile string, startYear, endYear int) (*model.TaskRef, error) {
	args := m.Called(ctx, journalFile, startYear, endYear)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TaskRef), args.Error(1)
}

func (m *MockClient) ListFiles(ctx context.Context, category model.FileCategory) ([]model.ResourceFile, error) {
	args := m.Called(ctx, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ResourceFile), args.Error(1)
}

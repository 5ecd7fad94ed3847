// Package remote implements the client side of the worker's request/response
// and push contracts.
package remote

import (
	"context"

	"github.com/slok/scraperctl/internal/model"
)

// Client is the request/response contract exposed by the remote worker.
//
// All payloads are validated at this boundary: a response missing required
// fields fails closed with model.ErrNotValid instead of propagating zero
// values into the console state.
type Client interface {
	ListTasks(ctx context.Context) ([]model.Task, error)
	GetTask(ctx context.Context, id string) (*model.Task, error)
	TaskControl(ctx context.Context, id string, action model.TaskControlAction) error
	ListArticles(ctx context.Context, page, perPage int, filters model.ArticleFilters) (*model.ArticlePage, error)
	SubmitDownload(ctx context.Context, articleIDs []string, maxWorkers int) (*model.TaskRef, error)
	StartKeywordSearch(ctx context.Context, keywords []string, resultCount int, literatureType string) (*model.TaskRef, error)
	StartJournalCrawl(ctx context.Context, journalFile string, startYear, endYear int) (*model.TaskRef, error)
	ListFiles(ctx context.Context, category model.FileCategory) ([]model.ResourceFile, error)
}

// Feed is the asynchronous push channel. It is advisory: the console must
// remain fully correct if Run never delivers a single event.
type Feed interface {
	// Run connects and delivers events to the handler until the context is
	// canceled. Connection drops are retried, lifecycle events (connected,
	// disconnected) are synthesized locally.
	Run(ctx context.Context, handler func(model.PushEvent)) error
}

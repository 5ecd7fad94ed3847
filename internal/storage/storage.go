// Package storage holds the local console persistence: the pending
// selection, the operator event history and the last known task snapshot.
package storage

import (
	"context"

	"github.com/slok/scraperctl/internal/eventlog"
	"github.com/slok/scraperctl/internal/model"
)

// Repository is the interface for local console persistence.
type Repository interface {
	// Selection members for the pending bulk action.
	AddSelection(ctx context.Context, ids []string) error
	RemoveSelection(ctx context.Context, id string) error
	ClearSelection(ctx context.Context) error
	ListSelection(ctx context.Context) ([]string, error)

	// Operator event history.
	RecordEvent(ctx context.Context, e eventlog.Entry) error
	ListEvents(ctx context.Context, limit int) ([]eventlog.Entry, error)

	// Last authoritative task snapshot, for offline listing.
	SaveTaskSnapshot(ctx context.Context, tasks []model.Task) error
	LoadTaskSnapshot(ctx context.Context) ([]model.Task, error)
}

// Package console holds the shared state of an operator console session and
// projects it into a renderable view model.
package console

import (
	"fmt"

	"github.com/slok/scraperctl/internal/cursor"
	"github.com/slok/scraperctl/internal/eventlog"
	"github.com/slok/scraperctl/internal/model"
	"github.com/slok/scraperctl/internal/registry"
	"github.com/slok/scraperctl/internal/selection"
)

// Console is the explicit context of a console session. It is built once
// during command setup and passed by reference, there are no package
// globals.
type Console struct {
	Registry  *registry.Registry
	Selection *selection.Set
	Cursor    *cursor.Cursor
	Events    *eventlog.Log
}

func (c *Console) validate() error {
	if c.Registry == nil {
		return fmt.Errorf("registry is required")
	}
	if c.Selection == nil {
		return fmt.Errorf("selection set is required")
	}
	if c.Cursor == nil {
		return fmt.Errorf("article cursor is required")
	}
	if c.Events == nil {
		return fmt.Errorf("event log is required")
	}
	return nil
}

// NewConsole creates a console session context.
func NewConsole(reg *registry.Registry, sel *selection.Set, cur *cursor.Cursor, events *eventlog.Log) (*Console, error) {
	c := &Console{
		Registry:  reg,
		Selection: sel,
		Cursor:    cur,
		Events:    events,
	}
	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("invalid console: %w", err)
	}
	return c, nil
}

// TaskRow is one task as shown to the operator.
type TaskRow struct {
	ID       string
	Type     model.TaskType
	Status   model.TaskStatus
	Progress int
	Step     string
	Counts   string
	Error    string
}

// ArticleRow is one article of the loaded page as shown to the operator.
type ArticleRow struct {
	Selected    bool
	ID          string
	Title       string
	Authors     string
	Journal     string
	PublishDate string
	Keyword     string
	Status      model.ArticleStatus
}

// ViewModel is a point-in-time projection of the console state. It holds
// plain values only so rendering needs no further synchronization.
type ViewModel struct {
	StatusCounts  model.StatusCounts
	Tasks         []TaskRow
	Articles      []ArticleRow
	Page          int
	TotalPages    int
	TotalArticles int
	PageWindow    []int
	SelectedIDs   []string
	Events        []eventlog.Entry
}

// recentEvents caps how much event history a single projection carries.
const recentEvents = 10

// Project builds a view model from the current console state. It reads and
// never mutates, so it can run concurrently with the sync scheduler.
func (c *Console) Project() ViewModel {
	vm := ViewModel{
		StatusCounts:  c.Registry.Aggregate(),
		Page:          c.Cursor.Page(),
		TotalPages:    c.Cursor.TotalPages(),
		TotalArticles: c.Cursor.Total(),
		PageWindow:    c.Cursor.Window(),
		SelectedIDs:   c.Selection.IDs(),
		Events:        c.Events.Latest(recentEvents),
	}

	for _, t := range c.Registry.List() {
		vm.Tasks = append(vm.Tasks, TaskRow{
			ID:       t.ID,
			Type:     t.Type,
			Status:   t.Status,
			Progress: t.Progress,
			Step:     t.CurrentStep,
			Counts:   fmt.Sprintf("%d/%d (%d failed)", t.ProcessedItems, t.TotalItems, t.FailedItems),
			Error:    t.ErrorMessage,
		})
	}

	for _, a := range c.Cursor.Articles() {
		vm.Articles = append(vm.Articles, ArticleRow{
			Selected:    c.Selection.Has(a.ID),
			ID:          a.ID,
			Title:       a.Title,
			Authors:     a.Authors,
			Journal:     a.Journal,
			PublishDate: a.PublishDate,
			Keyword:     a.Keyword,
			Status:      a.Status,
		})
	}

	return vm
}

// Package cursor implements the paged, filtered view over the article
// collection. The cursor owns the currently loaded page exclusively and
// replaces it wholesale on every load.
package cursor

import (
	"context"
	"fmt"
	"sync"

	"github.com/slok/scraperctl/internal/log"
	"github.com/slok/scraperctl/internal/model"
	"github.com/slok/scraperctl/internal/remote"
)

const (
	// DefaultPerPage is the page size used when none is configured.
	DefaultPerPage = 20
	// windowSize is the maximum number of page indices exposed to the UI.
	windowSize = 5
)

// CursorConfig is the configuration for the article cursor.
type CursorConfig struct {
	Client  remote.Client
	PerPage int
	Logger  log.Logger
}

func (c *CursorConfig) defaults() error {
	if c.Client == nil {
		return fmt.Errorf("remote client is required")
	}
	if c.PerPage == 0 {
		c.PerPage = DefaultPerPage
	}
	if c.PerPage < 1 {
		return fmt.Errorf("per page must be positive")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "cursor.Cursor"})
	return nil
}

// Cursor is a paged, filtered view over the remote article collection.
type Cursor struct {
	client  remote.Client
	perPage int
	logger  log.Logger

	page       int
	filters    model.ArticleFilters
	articles   []model.Article
	total      int
	totalPages int
	mu         sync.RWMutex
}

// NewCursor creates a new article cursor.
func NewCursor(cfg CursorConfig) (*Cursor, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Cursor{
		client:  cfg.Client,
		perPage: cfg.PerPage,
		logger:  cfg.Logger,
		page:    1,
	}, nil
}

// Load fetches one page with the given filters and replaces the current
// page on success. Changing any filter resets the page to 1. On failure the
// previously loaded page is retained.
func (c *Cursor) Load(ctx context.Context, page int, filters model.ArticleFilters) error {
	if page < 1 {
		return fmt.Errorf("page must be >= 1: %w", model.ErrNotValid)
	}

	c.mu.RLock()
	if filters != c.filters {
		page = 1
	}
	c.mu.RUnlock()

	result, err := c.client.ListArticles(ctx, page, c.perPage, filters)
	if err != nil {
		return fmt.Errorf("could not load articles page %d: %w", page, err)
	}

	totalPages := (result.Total + c.perPage - 1) / c.perPage

	c.mu.Lock()
	c.page = page
	c.filters = filters
	c.articles = result.Articles
	c.total = result.Total
	c.totalPages = totalPages
	c.mu.Unlock()

	c.logger.Debugf("loaded page %d/%d (%d articles, %d total)", page, totalPages, len(result.Articles), result.Total)
	return nil
}

// Articles returns a copy of the currently loaded page.
func (c *Cursor) Articles() []model.Article {
	c.mu.RLock()
	defer c.mu.RUnlock()

	articles := make([]model.Article, len(c.articles))
	copy(articles, c.articles)
	return articles
}

// Page returns the current page number.
func (c *Cursor) Page() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.page
}

// Total returns the total number of articles matching the filters.
func (c *Cursor) Total() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.total
}

// TotalPages returns the number of pages matching the filters.
func (c *Cursor) TotalPages() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.totalPages
}

// Filters returns the filters of the loaded page.
func (c *Cursor) Filters() model.ArticleFilters {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.filters
}

// Window returns at most 5 page indices centered on the current page and
// clamped to [1, totalPages].
func (c *Cursor) Window() []int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.totalPages == 0 {
		return nil
	}

	start := c.page - windowSize/2
	if start < 1 {
		start = 1
	}
	end := start + windowSize - 1
	if end > c.totalPages {
		end = c.totalPages
		start = end - windowSize + 1
		if start < 1 {
			start = 1
		}
	}

	window := make([]int, 0, end-start+1)
	for p := start; p <= end; p++ {
		window = append(window, p)
	}
	return window
}

// Keywords returns the keyword facet list offered to the user. It is
// derived from the loaded page only, so it samples rather than enumerates
// the full filtered collection.
func (c *Cursor) Keywords() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	seen := map[string]struct{}{}
	keywords := []string{}
	for _, a := range c.articles {
		if a.Keyword == "" {
			continue
		}
		if _, ok := seen[a.Keyword]; ok {
			continue
		}
		seen[a.Keyword] = struct{}{}
		keywords = append(keywords, a.Keyword)
	}
	return keywords
}

// VisibleIDs returns the ids of the loaded page, e.g. for select-all.
func (c *Cursor) VisibleIDs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ids := make([]string, 0, len(c.articles))
	for _, a := range c.articles {
		ids = append(ids, a.ID)
	}
	return ids
}

// Package selection keeps the set of article ids queued for a pending bulk
// action. The set is decoupled from pagination: it holds ids only, never
// article copies, and survives page and filter changes until consumed.
package selection

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/slok/scraperctl/internal/log"
)

// Store persists selection members across console restarts. Persistence is
// best effort: store failures are logged and never surface to the user
// interaction that triggered them.
type Store interface {
	AddSelection(ctx context.Context, ids []string) error
	RemoveSelection(ctx context.Context, id string) error
	ClearSelection(ctx context.Context) error
	ListSelection(ctx context.Context) ([]string, error)
}

// SetConfig is the configuration for the selection set.
type SetConfig struct {
	// Store optionally persists the selection. Nil keeps it in memory only.
	Store  Store
	Logger log.Logger
}

func (c *SetConfig) defaults() error {
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "selection.Set"})
	return nil
}

// Set is the user-curated set of article ids for the next bulk dispatch.
type Set struct {
	ids    map[string]struct{}
	store  Store
	logger log.Logger
	mu     sync.RWMutex
}

// NewSet creates a new selection set, restoring persisted members when a
// store is configured.
func NewSet(ctx context.Context, cfg SetConfig) (*Set, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	s := &Set{
		ids:    map[string]struct{}{},
		store:  cfg.Store,
		logger: cfg.Logger,
	}

	if cfg.Store != nil {
		stored, err := cfg.Store.ListSelection(ctx)
		if err != nil {
			return nil, fmt.Errorf("could not restore selection: %w", err)
		}
		for _, id := range stored {
			s.ids[id] = struct{}{}
		}
	}

	return s, nil
}

// Toggle adds the id if absent, removes it if present. Returns true when
// the id ends up selected.
func (s *Set) Toggle(id string) bool {
	s.mu.Lock()
	_, selected := s.ids[id]
	if selected {
		delete(s.ids, id)
	} else {
		s.ids[id] = struct{}{}
	}
	s.mu.Unlock()

	if s.store != nil {
		var err error
		if selected {
			err = s.store.RemoveSelection(context.Background(), id)
		} else {
			err = s.store.AddSelection(context.Background(), []string{id})
		}
		if err != nil {
			s.logger.Warningf("could not persist selection change for %s: %s", id, err)
		}
	}

	return !selected
}

// SelectAll unions the given ids (the currently loaded page) into the set.
// Selection is scoped to loaded items, never to the server-side result set.
func (s *Set) SelectAll(ids []string) {
	s.mu.Lock()
	for _, id := range ids {
		s.ids[id] = struct{}{}
	}
	s.mu.Unlock()

	if s.store != nil && len(ids) > 0 {
		if err := s.store.AddSelection(context.Background(), ids); err != nil {
			s.logger.Warningf("could not persist selection: %s", err)
		}
	}
}

// Clear empties the set.
func (s *Set) Clear() {
	s.mu.Lock()
	s.ids = map[string]struct{}{}
	s.mu.Unlock()

	if s.store != nil {
		if err := s.store.ClearSelection(context.Background()); err != nil {
			s.logger.Warningf("could not persist selection clear: %s", err)
		}
	}
}

// Has returns true when the id is selected.
func (s *Set) Has(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.ids[id]
	return ok
}

// Len returns the number of selected ids.
func (s *Set) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.ids)
}

// IDs returns the selected ids in a stable order.
func (s *Set) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.ids))
	for id := range s.ids {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

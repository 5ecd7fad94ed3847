package selection_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/scraperctl/internal/selection"
)

func newSet(t *testing.T) *selection.Set {
	s, err := selection.NewSet(context.Background(), selection.SetConfig{})
	require.NoError(t, err)
	return s
}

func TestSetToggle(t *testing.T) {
	s := newSet(t)

	assert.True(t, s.Toggle("a3"))
	assert.True(t, s.Has("a3"))

	assert.False(t, s.Toggle("a3"))
	assert.False(t, s.Has("a3"))
	assert.Equal(t, 0, s.Len())
}

func TestSetSelectAll(t *testing.T) {
	s := newSet(t)
	s.Toggle("a1")

	s.SelectAll([]string{"a2", "a3", "a1"})

	assert.Equal(t, []string{"a1", "a2", "a3"}, s.IDs())
}

func TestSetSurvivesPageReload(t *testing.T) {
	s := newSet(t)

	// Select on page 1.
	s.Toggle("3")
	s.Toggle("7")

	// Loading another page and coming back does not touch the set: the
	// cursor owns article records, the set owns ids only.
	assert.Equal(t, []string{"3", "7"}, s.IDs())
}

func TestSetClear(t *testing.T) {
	s := newSet(t)
	s.SelectAll([]string{"a1", "a2"})

	s.Clear()

	assert.Equal(t, 0, s.Len())
	assert.Empty(t, s.IDs())
}

type memStore struct {
	ids map[string]struct{}
}

func (m *memStore) AddSelection(_ context.Context, ids []string) error {
	for _, id := range ids {
		m.ids[id] = struct{}{}
	}
	return nil
}
func (m *memStore) RemoveSelection(_ context.Context, id string) error {
	delete(m.ids, id)
	return nil
}
func (m *memStore) ClearSelection(_ context.Context) error {
	m.ids = map[string]struct{}{}
	return nil
}
func (m *memStore) ListSelection(_ context.Context) ([]string, error) {
	ids := make([]string, 0, len(m.ids))
	for id := range m.ids {
		ids = append(ids, id)
	}
	return ids, nil
}

func TestSetRestoresFromStore(t *testing.T) {
	store := &memStore{ids: map[string]struct{}{}}

	s1, err := selection.NewSet(context.Background(), selection.SetConfig{Store: store})
	require.NoError(t, err)
	s1.SelectAll([]string{"a1", "a2"})
	s1.Toggle("a2")

	// A new console process sees the surviving batch.
	s2, err := selection.NewSet(context.Background(), selection.SetConfig{Store: store})
	require.NoError(t, err)
	assert.Equal(t, []string{"a1"}, s2.IDs())
}

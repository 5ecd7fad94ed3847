// Package eventlog keeps the capped, ordered log of operator-visible events.
package eventlog

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/slok/scraperctl/internal/log"
	"github.com/slok/scraperctl/internal/model"
)

// DefaultCapacity is the number of entries kept when none is configured.
const DefaultCapacity = 100

// Entry is a single operator-visible event.
type Entry struct {
	ID      string
	Level   model.EventLevel
	Message string
	At      time.Time
}

// Recorder receives a copy of every appended entry, e.g. for persistence.
// Recording failures never propagate to the appender.
type Recorder interface {
	RecordEvent(ctx context.Context, e Entry) error
}

// LogConfig is the configuration for the event log.
type LogConfig struct {
	// Capacity is the maximum number of retained entries.
	Capacity int
	// Recorder optionally mirrors entries elsewhere.
	Recorder Recorder
	Logger   log.Logger
}

func (c *LogConfig) defaults() error {
	if c.Capacity == 0 {
		c.Capacity = DefaultCapacity
	}
	if c.Capacity < 1 {
		return fmt.Errorf("capacity must be positive")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "eventlog.Log"})
	return nil
}

// Log is a fixed-capacity, append-only event log. Oldest entries are
// evicted on overflow. Append never fails and never blocks on the recorder
// result being durable.
type Log struct {
	entries  []Entry
	capacity int
	recorder Recorder
	logger   log.Logger
	nowFn    func() time.Time
	mu       sync.RWMutex
}

// NewLog creates a new event log.
func NewLog(cfg LogConfig) (*Log, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Log{
		entries:  make([]Entry, 0, cfg.Capacity),
		capacity: cfg.Capacity,
		recorder: cfg.Recorder,
		logger:   cfg.Logger,
		nowFn:    time.Now,
	}, nil
}

// Append adds an entry, evicting the oldest one when full.
func (l *Log) Append(level model.EventLevel, format string, args ...any) {
	entry := Entry{
		ID:      ulid.Make().String(),
		Level:   level,
		Message: fmt.Sprintf(format, args...),
	}

	l.mu.Lock()
	entry.At = l.nowFn()
	if len(l.entries) == l.capacity {
		l.entries = append(l.entries[:0], l.entries[1:]...)
		l.entries = l.entries[:l.capacity-1]
	}
	l.entries = append(l.entries, entry)
	l.mu.Unlock()

	if l.recorder != nil {
		if err := l.recorder.RecordEvent(context.Background(), entry); err != nil {
			l.logger.Debugf("could not record event %s: %s", entry.ID, err)
		}
	}
}

// Entries returns a copy of all retained entries, oldest first.
func (l *Log) Entries() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	entries := make([]Entry, len(l.entries))
	copy(entries, l.entries)
	return entries
}

// Latest returns a copy of the newest n entries, oldest first.
func (l *Log) Latest(n int) []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if n > len(l.entries) {
		n = len(l.entries)
	}
	entries := make([]Entry, n)
	copy(entries, l.entries[len(l.entries)-n:])
	return entries
}

package eventlog_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/scraperctl/internal/eventlog"
	"github.com/slok/scraperctl/internal/model"
)

type failingRecorder struct{}

func (failingRecorder) RecordEvent(ctx context.Context, e eventlog.Entry) error {
	return fmt.Errorf("storage gone")
}

func TestLogAppend(t *testing.T) {
	tests := map[string]struct {
		capacity    int
		append      func(l *eventlog.Log)
		expMessages []string
	}{
		"Entries are kept in append order": {
			capacity: 10,
			append: func(l *eventlog.Log) {
				l.Append(model.EventLevelInfo, "first")
				l.Append(model.EventLevelSuccess, "second")
				l.Append(model.EventLevelError, "third")
			},
			expMessages: []string{"first", "second", "third"},
		},

		"Oldest entry is evicted on overflow": {
			capacity: 3,
			append: func(l *eventlog.Log) {
				for i := 1; i <= 5; i++ {
					l.Append(model.EventLevelInfo, "entry %d", i)
				}
			},
			expMessages: []string{"entry 3", "entry 4", "entry 5"},
		},

		"Capacity one keeps only the newest": {
			capacity: 1,
			append: func(l *eventlog.Log) {
				l.Append(model.EventLevelInfo, "a")
				l.Append(model.EventLevelInfo, "b")
			},
			expMessages: []string{"b"},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			l, err := eventlog.NewLog(eventlog.LogConfig{Capacity: test.capacity})
			require.NoError(t, err)

			test.append(l)

			entries := l.Entries()
			messages := make([]string, 0, len(entries))
			for _, e := range entries {
				messages = append(messages, e.Message)
			}
			assert.Equal(t, test.expMessages, messages)
		})
	}
}

func TestLogAppendNeverFailsOnRecorder(t *testing.T) {
	l, err := eventlog.NewLog(eventlog.LogConfig{Recorder: failingRecorder{}})
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		l.Append(model.EventLevelError, "boom")
	})
	assert.Len(t, l.Entries(), 1)
}

func TestLogLatest(t *testing.T) {
	l, err := eventlog.NewLog(eventlog.LogConfig{})
	require.NoError(t, err)

	for i := 1; i <= 5; i++ {
		l.Append(model.EventLevelInfo, "entry %d", i)
	}

	latest := l.Latest(2)
	require.Len(t, latest, 2)
	assert.Equal(t, "entry 4", latest[0].Message)
	assert.Equal(t, "entry 5", latest[1].Message)

	assert.Len(t, l.Latest(50), 5)
}

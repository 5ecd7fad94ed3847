package model

import "fmt"

// EventLevel is the severity of an operator-visible event.
type EventLevel string

const (
	EventLevelInfo    EventLevel = "info"
	EventLevelSuccess EventLevel = "success"
	EventLevelWarning EventLevel = "warning"
	EventLevelError   EventLevel = "error"
)

// PushEventType identifies the kind of message delivered by the push channel.
type PushEventType string

const (
	// PushEventConnected signals the push channel is established.
	PushEventConnected PushEventType = "connected"
	// PushEventDisconnected signals the push channel dropped.
	PushEventDisconnected PushEventType = "disconnected"
	// PushEventLog carries a worker log line.
	PushEventLog PushEventType = "log"
	// PushEventProgress carries incremental progress of a task.
	PushEventProgress PushEventType = "progress"
	// PushEventTaskComplete signals a task of the given type finished.
	PushEventTaskComplete PushEventType = "task_complete"
)

// PushEvent is a message received through the asynchronous push channel.
// The channel is advisory: the console stays correct if none ever arrives.
type PushEvent struct {
	Type PushEventType
	// TaskID correlates the event with a task when the worker provides it.
	TaskID   string
	Level    EventLevel
	Message  string
	Progress int
	TaskType TaskType
}

// Validate validates a push event received from the remote side.
func (e *PushEvent) Validate() error {
	switch e.Type {
	case PushEventConnected, PushEventDisconnected:
	case PushEventLog:
		switch e.Level {
		case EventLevelInfo, EventLevelSuccess, EventLevelWarning, EventLevelError:
		default:
			return fmt.Errorf("log event with unknown level %q: %w", e.Level, ErrNotValid)
		}
	case PushEventProgress:
		if e.Progress < 0 || e.Progress > 100 {
			return fmt.Errorf("progress event out of range (%d): %w", e.Progress, ErrNotValid)
		}
	case PushEventTaskComplete:
	default:
		return fmt.Errorf("unknown push event type %q: %w", e.Type, ErrNotValid)
	}

	return nil
}

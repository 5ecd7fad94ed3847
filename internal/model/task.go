package model

import (
	"fmt"
	"time"
)

// TaskType represents the kind of background work a task performs.
type TaskType string

const (
	TaskTypeKeywordSearch TaskType = "keyword_search"
	TaskTypeJournalScrape TaskType = "journal_scrape"
	TaskTypeDownload      TaskType = "download"
	TaskTypeTest          TaskType = "test"
)

// TaskStatus represents the lifecycle state of a task.
type TaskStatus string

const (
	// TaskStatusPending indicates the task has been created but not started.
	TaskStatusPending TaskStatus = "pending"
	// TaskStatusRunning indicates the task is being worked on.
	TaskStatusRunning TaskStatus = "running"
	// TaskStatusPaused indicates the task was interrupted and may resume.
	TaskStatusPaused TaskStatus = "paused"
	// TaskStatusCompleted indicates the task finished. Terminal.
	TaskStatusCompleted TaskStatus = "completed"
	// TaskStatusFailed indicates the task errored or was stopped. Terminal.
	TaskStatusFailed TaskStatus = "failed"
)

// IsTerminal returns true when no further transition is accepted from the status.
func (s TaskStatus) IsTerminal() bool {
	return s == TaskStatusCompleted || s == TaskStatusFailed
}

// legal transitions of the task state machine.
var taskTransitions = map[TaskStatus][]TaskStatus{
	TaskStatusPending: {TaskStatusRunning, TaskStatusFailed},
	TaskStatusRunning: {TaskStatusPaused, TaskStatusCompleted, TaskStatusFailed},
	TaskStatusPaused:  {TaskStatusRunning, TaskStatusFailed},
}

// CanTransition returns true when moving from the status to the given one is
// legal. Staying in the same status is always allowed (duplicate delivery).
func (s TaskStatus) CanTransition(to TaskStatus) bool {
	if s == to {
		return true
	}
	for _, next := range taskTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// Task represents a server-tracked unit of background work.
type Task struct {
	ID             string
	Type           TaskType
	Status         TaskStatus
	TotalItems     int
	ProcessedItems int
	FailedItems    int
	// Progress is a 0-100 percentage, only meaningful while running.
	Progress     int
	CurrentStep  string
	CreatedAt    time.Time
	StartedAt    *time.Time
	CompletedAt  *time.Time
	ErrorMessage string
	Parameters   map[string]string
	CanResume    bool
}

// Validate validates a task record received from the remote side.
func (t *Task) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("task id is required: %w", ErrNotValid)
	}

	switch t.Status {
	case TaskStatusPending, TaskStatusRunning, TaskStatusPaused, TaskStatusCompleted, TaskStatusFailed:
	default:
		return fmt.Errorf("unknown task status %q: %w", t.Status, ErrNotValid)
	}

	if t.TotalItems < 0 || t.ProcessedItems < 0 || t.FailedItems < 0 {
		return fmt.Errorf("item counts must be non-negative: %w", ErrNotValid)
	}
	if t.TotalItems > 0 && t.ProcessedItems+t.FailedItems > t.TotalItems {
		return fmt.Errorf("processed (%d) + failed (%d) exceed total (%d): %w",
			t.ProcessedItems, t.FailedItems, t.TotalItems, ErrNotValid)
	}
	if t.Progress < 0 || t.Progress > 100 {
		return fmt.Errorf("progress must be within 0-100: %w", ErrNotValid)
	}

	return nil
}

// TaskPatch is a partial task update delivered through the push channel.
// Nil fields mean "unchanged".
type TaskPatch struct {
	TaskID         string
	Status         *TaskStatus
	ProcessedItems *int
	FailedItems    *int
	Progress       *int
	CurrentStep    *string
	ErrorMessage   *string
}

// TaskControlAction is a control command against a task.
type TaskControlAction string

const (
	TaskControlPause  TaskControlAction = "pause"
	TaskControlResume TaskControlAction = "resume"
	TaskControlStop   TaskControlAction = "stop"
)

// TargetStatus returns the status the action tries to move a task into.
func (a TaskControlAction) TargetStatus() (TaskStatus, error) {
	switch a {
	case TaskControlPause:
		return TaskStatusPaused, nil
	case TaskControlResume:
		return TaskStatusRunning, nil
	case TaskControlStop:
		return TaskStatusFailed, nil
	}
	return "", fmt.Errorf("unknown control action %q: %w", a, ErrNotValid)
}

// TaskRef is the reference to a created task returned by submit operations.
type TaskRef struct {
	ID   string
	Type TaskType
}

// StatusCounts holds the number of tasks per status.
type StatusCounts map[TaskStatus]int

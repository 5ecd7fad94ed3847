package printer

import (
	"encoding/json"
	"io"
	"time"

	"github.com/slok/scraperctl/internal/console"
	"github.com/slok/scraperctl/internal/eventlog"
	"github.com/slok/scraperctl/internal/model"
)

// JSONPrinter prints console information in JSON format.
type JSONPrinter struct {
	writer io.Writer
}

// NewJSONPrinter creates a new JSON printer.
func NewJSONPrinter(w io.Writer) *JSONPrinter {
	return &JSONPrinter{writer: w}
}

// taskListItem represents a task in the list output (subset of fields).
type taskListItem struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Status    string    `json:"status"`
	Progress  int       `json:"progress"`
	CreatedAt time.Time `json:"created_at"`
}

// taskOutput represents the full task detail output.
type taskOutput struct {
	ID             string            `json:"id"`
	Type           string            `json:"type"`
	Status         string            `json:"status"`
	Progress       int               `json:"progress"`
	TotalItems     int               `json:"total_items"`
	ProcessedItems int               `json:"processed_items"`
	FailedItems    int               `json:"failed_items"`
	CurrentStep    string            `json:"current_step,omitempty"`
	Parameters     map[string]string `json:"parameters,omitempty"`
	CanResume      bool              `json:"can_resume"`
	ErrorMessage   string            `json:"error_message,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	StartedAt      *time.Time        `json:"started_at"`
	CompletedAt    *time.Time        `json:"completed_at"`
}

// articlesOutput represents the loaded article page output.
type articlesOutput struct {
	Articles   []articleItem `json:"articles"`
	Page       int           `json:"page"`
	TotalPages int           `json:"total_pages"`
	Total      int           `json:"total"`
	Selected   []string      `json:"selected"`
}

type articleItem struct {
	ID          string `json:"id"`
	Selected    bool   `json:"selected"`
	Title       string `json:"title"`
	Authors     string `json:"authors,omitempty"`
	Journal     string `json:"journal,omitempty"`
	PublishDate string `json:"publish_date,omitempty"`
	Keyword     string `json:"keyword,omitempty"`
	Status      string `json:"status"`
}

// viewOutput represents the watch dashboard output.
type viewOutput struct {
	StatusCounts map[string]int `json:"status_counts"`
	Tasks        []taskRowItem  `json:"tasks"`
	Events       []eventItem    `json:"events"`
}

type taskRowItem struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Status   string `json:"status"`
	Progress int    `json:"progress"`
	Step     string `json:"step,omitempty"`
	Error    string `json:"error,omitempty"`
}

type fileItem struct {
	Name     string    `json:"name"`
	Path     string    `json:"path"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
}

type eventItem struct {
	Level   string    `json:"level"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// messageOutput represents a simple message output.
type messageOutput struct {
	Message string `json:"message"`
}

func (j *JSONPrinter) encode(v any) error {
	enc := json.NewEncoder(j.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// PrintTaskList prints tasks in JSON format with a subset of fields.
func (j *JSONPrinter) PrintTaskList(tasks []model.Task) error {
	items := make([]taskListItem, len(tasks))
	for i, t := range tasks {
		items[i] = taskListItem{
			ID:        t.ID,
			Type:      string(t.Type),
			Status:    string(t.Status),
			Progress:  t.Progress,
			CreatedAt: t.CreatedAt.UTC(),
		}
	}

	return j.encode(items)
}

// PrintTask prints detailed task status in JSON format.
func (j *JSONPrinter) PrintTask(task model.Task) error {
	output := taskOutput{
		ID:             task.ID,
		Type:           string(task.Type),
		Status:         string(task.Status),
		Progress:       task.Progress,
		TotalItems:     task.TotalItems,
		ProcessedItems: task.ProcessedItems,
		FailedItems:    task.FailedItems,
		CurrentStep:    task.CurrentStep,
		Parameters:     task.Parameters,
		CanResume:      task.CanResume,
		ErrorMessage:   task.ErrorMessage,
		CreatedAt:      task.CreatedAt.UTC(),
	}

	if task.StartedAt != nil {
		utcTime := task.StartedAt.UTC()
		output.StartedAt = &utcTime
	}

	if task.CompletedAt != nil {
		utcTime := task.CompletedAt.UTC()
		output.CompletedAt = &utcTime
	}

	return j.encode(output)
}

// PrintArticles prints the loaded article page in JSON format.
func (j *JSONPrinter) PrintArticles(vm console.ViewModel) error {
	output := articlesOutput{
		Articles:   make([]articleItem, len(vm.Articles)),
		Page:       vm.Page,
		TotalPages: vm.TotalPages,
		Total:      vm.TotalArticles,
		Selected:   vm.SelectedIDs,
	}
	for i, a := range vm.Articles {
		output.Articles[i] = articleItem{
			ID:          a.ID,
			Selected:    a.Selected,
			Title:       a.Title,
			Authors:     a.Authors,
			Journal:     a.Journal,
			PublishDate: a.PublishDate,
			Keyword:     a.Keyword,
			Status:      string(a.Status),
		}
	}

	return j.encode(output)
}

// PrintView prints the watch dashboard in JSON format.
func (j *JSONPrinter) PrintView(vm console.ViewModel) error {
	output := viewOutput{
		StatusCounts: map[string]int{},
		Tasks:        make([]taskRowItem, len(vm.Tasks)),
		Events:       make([]eventItem, len(vm.Events)),
	}
	for status, n := range vm.StatusCounts {
		output.StatusCounts[string(status)] = n
	}
	for i, t := range vm.Tasks {
		output.Tasks[i] = taskRowItem{
			ID:       t.ID,
			Type:     string(t.Type),
			Status:   string(t.Status),
			Progress: t.Progress,
			Step:     t.Step,
			Error:    t.Error,
		}
	}
	for i, e := range vm.Events {
		output.Events[i] = eventItem{
			Level:   string(e.Level),
			Message: e.Message,
			At:      e.At.UTC(),
		}
	}

	return j.encode(output)
}

// PrintFileList prints worker resource files in JSON format.
func (j *JSONPrinter) PrintFileList(files []model.ResourceFile) error {
	items := make([]fileItem, len(files))
	for i, f := range files {
		items[i] = fileItem{
			Name:     f.Name,
			Path:     f.RelativePath,
			Size:     f.Size,
			Modified: f.Modified.UTC(),
		}
	}

	return j.encode(items)
}

// PrintSelection prints the pending selection ids in JSON format.
func (j *JSONPrinter) PrintSelection(ids []string) error {
	if ids == nil {
		ids = []string{}
	}
	return j.encode(ids)
}

// PrintEvents prints operator event history in JSON format.
func (j *JSONPrinter) PrintEvents(entries []eventlog.Entry) error {
	items := make([]eventItem, len(entries))
	for i, e := range entries {
		items[i] = eventItem{
			Level:   string(e.Level),
			Message: e.Message,
			At:      e.At.UTC(),
		}
	}

	return j.encode(items)
}

// PrintMessage prints a simple message in JSON format.
func (j *JSONPrinter) PrintMessage(msg string) error {
	output := messageOutput{Message: msg}
	return j.encode(output)
}

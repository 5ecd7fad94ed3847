package remote

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/slok/scraperctl/internal/model"
)

// Wire timestamp layouts the worker is known to emit.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
}

func parseTime(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	for _, layout := range timeLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return &ts, nil
		}
	}
	return nil, fmt.Errorf("unparseable timestamp %q: %w", s, model.ErrNotValid)
}

type taskDTO struct {
	ID             string            `json:"id"`
	TaskType       string            `json:"task_type"`
	Status         string            `json:"status"`
	TotalItems     int               `json:"total_items"`
	ProcessedItems int               `json:"processed_items"`
	FailedItems    int               `json:"failed_items"`
	Progress       int               `json:"progress"`
	CurrentStep    string            `json:"current_step"`
	CreatedAt      string            `json:"created_at"`
	StartedAt      string            `json:"started_at"`
	CompletedAt    string            `json:"completed_at"`
	ErrorMessage   string            `json:"error_message"`
	Parameters     map[string]string `json:"parameters"`
	CanResume      bool              `json:"can_resume"`
}

func (d taskDTO) toModel() (*model.Task, error) {
	createdAt, err := parseTime(d.CreatedAt)
	if err != nil {
		return nil, err
	}
	startedAt, err := parseTime(d.StartedAt)
	if err != nil {
		return nil, err
	}
	completedAt, err := parseTime(d.CompletedAt)
	if err != nil {
		return nil, err
	}

	task := model.Task{
		ID:             d.ID,
		Type:           model.TaskType(d.TaskType),
		Status:         model.TaskStatus(d.Status),
		TotalItems:     d.TotalItems,
		ProcessedItems: d.ProcessedItems,
		FailedItems:    d.FailedItems,
		Progress:       d.Progress,
		CurrentStep:    d.CurrentStep,
		StartedAt:      startedAt,
		CompletedAt:    completedAt,
		ErrorMessage:   d.ErrorMessage,
		Parameters:     d.Parameters,
		CanResume:      d.CanResume,
	}
	if createdAt != nil {
		task.CreatedAt = *createdAt
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return &task, nil
}

type articleDTO struct {
	ID             json.Number `json:"id"`
	Title          string      `json:"title"`
	Authors        string      `json:"authors"`
	Journal        string      `json:"journal"`
	PublishDate    string      `json:"publish_date"`
	Abstract       string      `json:"abstract"`
	URL            string      `json:"url"`
	Keyword        string      `json:"keyword"`
	LiteratureType string      `json:"literature_type"`
	Status         string      `json:"status"`
}

func (d articleDTO) toModel() (*model.Article, error) {
	status := model.ArticleStatus(d.Status)
	if status == "" {
		status = model.ArticleStatusNormal
	}

	article := model.Article{
		ID:             d.ID.String(),
		Title:          d.Title,
		Authors:        d.Authors,
		Journal:        d.Journal,
		PublishDate:    d.PublishDate,
		Abstract:       d.Abstract,
		URL:            d.URL,
		Keyword:        d.Keyword,
		LiteratureType: d.LiteratureType,
		Status:         status,
	}

	if err := article.Validate(); err != nil {
		return nil, err
	}

	return &article, nil
}

type articlePageDTO struct {
	Articles []articleDTO `json:"articles"`
	Page     int          `json:"page"`
	PerPage  int          `json:"per_page"`
	Total    int          `json:"total"`
}

func (d articlePageDTO) toModel() (*model.ArticlePage, error) {
	if d.Page < 1 || d.PerPage < 1 || d.Total < 0 {
		return nil, fmt.Errorf("invalid page envelope (page=%d, per_page=%d, total=%d): %w",
			d.Page, d.PerPage, d.Total, model.ErrNotValid)
	}

	articles := make([]model.Article, 0, len(d.Articles))
	for _, dto := range d.Articles {
		article, err := dto.toModel()
		if err != nil {
			return nil, fmt.Errorf("invalid article in response: %w", err)
		}
		articles = append(articles, *article)
	}

	return &model.ArticlePage{
		Articles: articles,
		Page:     d.Page,
		PerPage:  d.PerPage,
		Total:    d.Total,
	}, nil
}

type taskRefDTO struct {
	TaskID   json.Number `json:"task_id"`
	TaskType string      `json:"task_type"`
}

func (d taskRefDTO) toModel() (*model.TaskRef, error) {
	if d.TaskID.String() == "" {
		return nil, fmt.Errorf("task id is missing in response: %w", model.ErrNotValid)
	}

	return &model.TaskRef{
		ID:   d.TaskID.String(),
		Type: model.TaskType(d.TaskType),
	}, nil
}

type resourceFileDTO struct {
	Name         string `json:"name"`
	Path         string `json:"path"`
	RelativePath string `json:"relative_path"`
	Size         int64  `json:"size"`
	Modified     string `json:"modified"`
}

func (d resourceFileDTO) toModel() (*model.ResourceFile, error) {
	if d.Name == "" {
		return nil, fmt.Errorf("file name is missing in response: %w", model.ErrNotValid)
	}

	modified, err := parseTime(d.Modified)
	if err != nil {
		return nil, err
	}

	file := model.ResourceFile{
		Name:         d.Name,
		Path:         d.Path,
		RelativePath: d.RelativePath,
		Size:         d.Size,
	}
	if modified != nil {
		file.Modified = *modified
	}

	return &file, nil
}

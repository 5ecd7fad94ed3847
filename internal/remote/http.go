package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/slok/scraperctl/internal/log"
	"github.com/slok/scraperctl/internal/model"
)

// HTTPClientConfig configures the HTTP worker client.
type HTTPClientConfig struct {
	// BaseURL is the worker API base (e.g. "http://localhost:5001").
	BaseURL string
	// HTTPClient is the HTTP client used for every request.
	HTTPClient *http.Client
	Logger     log.Logger
}

func (c *HTTPClientConfig) defaults() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base url is required")
	}
	if _, err := url.Parse(c.BaseURL); err != nil {
		return fmt.Errorf("invalid base url: %w", err)
	}
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "remote.HTTPClient"})
	return nil
}

// HTTPClient implements Client over the worker's JSON HTTP API.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	logger     log.Logger
}

// NewHTTPClient creates a new HTTP worker client.
func NewHTTPClient(cfg HTTPClientConfig) (*HTTPClient, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &HTTPClient{
		baseURL:    cfg.BaseURL,
		httpClient: cfg.HTTPClient,
		logger:     cfg.Logger,
	}, nil
}

var _ Client = &HTTPClient{}

// envelope is the uniform response wrapper of every endpoint.
type envelope struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// do executes a request and decodes the envelope into out (when non nil).
func (c *HTTPClient) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("could not marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return fmt.Errorf("could not create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %s: %w", method, path, err, model.ErrTransient)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%s %s: %w", method, path, model.ErrNotFound)
	case resp.StatusCode >= 500:
		return fmt.Errorf("%s %s: status %d: %w", method, path, resp.StatusCode, model.ErrTransient)
	case resp.StatusCode >= 400:
		return fmt.Errorf("%s %s: status %d: %w", method, path, resp.StatusCode, model.ErrRejected)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("could not decode response: %s: %w", err, model.ErrNotValid)
	}

	if !env.Success {
		msg := env.Error
		if msg == "" {
			msg = "remote error without message"
		}
		return fmt.Errorf("%s: %w", msg, model.ErrRejected)
	}

	if out != nil {
		if env.Data == nil {
			return fmt.Errorf("response data is missing: %w", model.ErrNotValid)
		}
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("could not decode response data: %s: %w", err, model.ErrNotValid)
		}
	}

	return nil
}

// ListTasks returns all known tasks, as an authoritative snapshot.
func (c *HTTPClient) ListTasks(ctx context.Context) ([]model.Task, error) {
	var dtos []taskDTO
	if err := c.do(ctx, http.MethodGet, "/api/tasks", nil, nil, &dtos); err != nil {
		return nil, fmt.Errorf("could not list tasks: %w", err)
	}

	tasks := make([]model.Task, 0, len(dtos))
	for _, dto := range dtos {
		task, err := dto.toModel()
		if err != nil {
			return nil, fmt.Errorf("invalid task in response: %w", err)
		}
		tasks = append(tasks, *task)
	}

	return tasks, nil
}

// GetTask returns a single task by id.
func (c *HTTPClient) GetTask(ctx context.Context, id string) (*model.Task, error) {
	if id == "" {
		return nil, fmt.Errorf("task id is required: %w", model.ErrNotValid)
	}

	var dto taskDTO
	if err := c.do(ctx, http.MethodGet, "/api/tasks/"+url.PathEscape(id), nil, nil, &dto); err != nil {
		return nil, fmt.Errorf("could not get task %s: %w", id, err)
	}

	return dto.toModel()
}

// TaskControl asks the worker to pause, resume or stop a task.
func (c *HTTPClient) TaskControl(ctx context.Context, id string, action model.TaskControlAction) error {
	if id == "" {
		return fmt.Errorf("task id is required: %w", model.ErrNotValid)
	}
	if _, err := action.TargetStatus(); err != nil {
		return err
	}

	path := fmt.Sprintf("/api/tasks/%s/%s", url.PathEscape(id), action)
	if err := c.do(ctx, http.MethodPost, path, nil, nil, nil); err != nil {
		return fmt.Errorf("could not %s task %s: %w", action, id, err)
	}

	return nil
}

// ListArticles returns one page of the filtered article collection.
func (c *HTTPClient) ListArticles(ctx context.Context, page, perPage int, filters model.ArticleFilters) (*model.ArticlePage, error) {
	if page < 1 {
		return nil, fmt.Errorf("page must be >= 1: %w", model.ErrNotValid)
	}
	if perPage < 1 {
		return nil, fmt.Errorf("per page must be >= 1: %w", model.ErrNotValid)
	}

	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("per_page", strconv.Itoa(perPage))
	if filters.Text != "" {
		query.Set("search", filters.Text)
	}
	if filters.Keyword != "" {
		query.Set("keyword", filters.Keyword)
	}
	if filters.LiteratureType != "" {
		query.Set("literature_type", filters.LiteratureType)
	}

	var dto articlePageDTO
	if err := c.do(ctx, http.MethodGet, "/api/articles", query, nil, &dto); err != nil {
		return nil, fmt.Errorf("could not list articles: %w", err)
	}

	return dto.toModel()
}

// SubmitDownload dispatches a bulk download of the given article ids.
func (c *HTTPClient) SubmitDownload(ctx context.Context, articleIDs []string, maxWorkers int) (*model.TaskRef, error) {
	body := map[string]any{
		"article_ids": articleIDs,
		"max_workers": maxWorkers,
	}

	var dto taskRefDTO
	if err := c.do(ctx, http.MethodPost, "/api/articles/download", nil, body, &dto); err != nil {
		return nil, fmt.Errorf("could not submit download: %w", err)
	}

	return dto.toModel()
}

// StartKeywordSearch starts a keyword search task.
func (c *HTTPClient) StartKeywordSearch(ctx context.Context, keywords []string, resultCount int, literatureType string) (*model.TaskRef, error) {
	body := map[string]any{
		"keywords":        keywords,
		"result_count":    resultCount,
		"literature_type": literatureType,
	}

	var dto taskRefDTO
	if err := c.do(ctx, http.MethodPost, "/api/keyword/scrape", nil, body, &dto); err != nil {
		return nil, fmt.Errorf("could not start keyword search: %w", err)
	}

	return dto.toModel()
}

// StartJournalCrawl starts a journal crawl task over a year range.
func (c *HTTPClient) StartJournalCrawl(ctx context.Context, journalFile string, startYear, endYear int) (*model.TaskRef, error) {
	body := map[string]any{
		"journal_file": journalFile,
		"start_year":   startYear,
		"end_year":     endYear,
	}

	var dto taskRefDTO
	if err := c.do(ctx, http.MethodPost, "/api/journal/scrape", nil, body, &dto); err != nil {
		return nil, fmt.Errorf("could not start journal crawl: %w", err)
	}

	return dto.toModel()
}

// ListFiles returns the files of a worker resource directory.
func (c *HTTPClient) ListFiles(ctx context.Context, category model.FileCategory) ([]model.ResourceFile, error) {
	if _, err := model.ParseFileCategory(string(category)); err != nil {
		return nil, err
	}

	var dtos []resourceFileDTO
	if err := c.do(ctx, http.MethodGet, "/api/files/"+string(category), nil, nil, &dtos); err != nil {
		return nil, fmt.Errorf("could not list %s files: %w", category, err)
	}

	files := make([]model.ResourceFile, 0, len(dtos))
	for _, dto := range dtos {
		file, err := dto.toModel()
		if err != nil {
			return nil, fmt.Errorf("invalid file in response: %w", err)
		}
		files = append(files, *file)
	}

	return files, nil
}

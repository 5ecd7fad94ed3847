package remote

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/slok/scraperctl/internal/log"
	"github.com/slok/scraperctl/internal/model"
)

// SSEFeedConfig configures the server-sent-events push feed.
type SSEFeedConfig struct {
	// BaseURL is the worker API base, the stream lives at /api/events.
	BaseURL string
	// HTTPClient is the client used for the stream request. It must not
	// carry a global timeout, the stream is long lived.
	HTTPClient *http.Client
	// ReconnectWait is the delay between reconnection attempts.
	ReconnectWait time.Duration
	Logger        log.Logger
}

func (c *SSEFeedConfig) defaults() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base url is required")
	}
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{}
	}
	if c.ReconnectWait == 0 {
		c.ReconnectWait = 5 * time.Second
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "remote.SSEFeed"})
	return nil
}

// SSEFeed consumes the worker's push channel as a server-sent-events stream.
type SSEFeed struct {
	baseURL       string
	httpClient    *http.Client
	reconnectWait time.Duration
	logger        log.Logger
}

// NewSSEFeed creates a new SSE push feed.
func NewSSEFeed(cfg SSEFeedConfig) (*SSEFeed, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &SSEFeed{
		baseURL:       cfg.BaseURL,
		httpClient:    cfg.HTTPClient,
		reconnectWait: cfg.ReconnectWait,
		logger:        cfg.Logger,
	}, nil
}

var _ Feed = &SSEFeed{}

// Run connects to the push stream and delivers events to the handler until
// the context is canceled. Dropped connections are retried forever: the
// feed is advisory and must never take the console down with it.
func (f *SSEFeed) Run(ctx context.Context, handler func(model.PushEvent)) error {
	for {
		connected, err := f.consumeStream(ctx, handler)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		f.logger.Warningf("push stream dropped: %s, reconnecting in %s", err, f.reconnectWait)
		// Only an established stream gets a disconnected event, a failed
		// connect never was part of the channel.
		if connected {
			handler(model.PushEvent{Type: model.PushEventDisconnected})
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(f.reconnectWait):
		}
	}
}

func (f *SSEFeed) consumeStream(ctx context.Context, handler func(model.PushEvent)) (connected bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.baseURL+"/api/events", nil)
	if err != nil {
		return false, fmt.Errorf("could not create stream request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("could not connect stream: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("stream returned status %d", resp.StatusCode)
	}

	f.logger.Debugf("push stream connected")
	handler(model.PushEvent{Type: model.PushEventConnected})

	var eventName, eventData string
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "event:"):
			eventName = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			eventData = strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		case line == "":
			if eventName != "" {
				f.dispatch(eventName, eventData, handler)
			}
			eventName, eventData = "", ""
		}
	}

	if err := scanner.Err(); err != nil {
		return true, fmt.Errorf("stream read failed: %w", err)
	}
	return true, fmt.Errorf("stream closed by server")
}

// pushPayloadDTO covers the payload fields of all push event kinds.
type pushPayloadDTO struct {
	TaskID   json.Number `json:"task_id"`
	Level    string      `json:"level"`
	Message  string      `json:"message"`
	Progress int         `json:"progress"`
	TaskType string      `json:"task_type"`
}

func (f *SSEFeed) dispatch(name, data string, handler func(model.PushEvent)) {
	var payload pushPayloadDTO
	if data != "" {
		if err := json.Unmarshal([]byte(data), &payload); err != nil {
			f.logger.Warningf("dropping malformed %q push event: %s", name, err)
			return
		}
	}

	event := model.PushEvent{
		Type:     model.PushEventType(name),
		TaskID:   payload.TaskID.String(),
		Level:    model.EventLevel(payload.Level),
		Message:  payload.Message,
		Progress: payload.Progress,
		TaskType: model.TaskType(payload.TaskType),
	}

	if err := event.Validate(); err != nil {
		f.logger.Warningf("dropping invalid push event: %s", err)
		return
	}

	handler(event)
}

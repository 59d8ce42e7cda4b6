package tracking

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

const (
	// DefaultAPIURL is the hosted LangSmith API endpoint.
	DefaultAPIURL = "https://api.smith.langchain.com"

	// DefaultProject is the tracking project evaluation runs are filed under.
	DefaultProject = "outreach-gpt-eval"

	// DefaultDataset is the annotation queue dataset for manual review examples.
	DefaultDataset = "outreach_evaluation_queue"

	defaultRequestTimeout = 30 * time.Second
)

// ErrNotConfigured is returned when the tracking API key is missing. The
// evaluator treats this as fatal at construction.
var ErrNotConfigured = errors.New("tracking API key not configured")

// Config holds LangSmith connection settings.
type Config struct {
	APIKey  string
	APIURL  string
	Project string
	Dataset string
}

// ConfigFromEnv builds a Config from LANGSMITH_* environment variables.
func ConfigFromEnv() Config {
	cfg := Config{
		APIKey:  os.Getenv("LANGSMITH_API_KEY"),
		APIURL:  os.Getenv("LANGSMITH_API_URL"),
		Project: os.Getenv("LANGSMITH_PROJECT"),
	}
	return cfg
}

// Configured reports whether the config carries a usable credential.
func (c Config) Configured() bool {
	return c.APIKey != ""
}

// Client is a LangSmith REST API client implementing Sink.
type Client struct {
	apiURL     string
	apiKey     string
	project    string
	dataset    string
	httpClient *http.Client
}

// NewClient creates a LangSmith client. A missing API key is a configuration
// error, not a per-call condition.
func NewClient(cfg Config) (*Client, error) {
	if !cfg.Configured() {
		return nil, ErrNotConfigured
	}
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}
	if cfg.Project == "" {
		cfg.Project = DefaultProject
	}
	if cfg.Dataset == "" {
		cfg.Dataset = DefaultDataset
	}
	return &Client{
		apiURL:     cfg.APIURL,
		apiKey:     cfg.APIKey,
		project:    cfg.Project,
		dataset:    cfg.Dataset,
		httpClient: &http.Client{Timeout: defaultRequestTimeout},
	}, nil
}

// CreateRun registers a new run.
func (c *Client) CreateRun(ctx context.Context, run RunPayload) error {
	if run.Project == "" {
		run.Project = c.project
	}
	return c.do(ctx, http.MethodPost, "/runs", run, nil)
}

// UpdateRun patches an existing run with outputs, an end time, or an error.
func (c *Client) UpdateRun(ctx context.Context, runID string, patch RunPatch) error {
	return c.do(ctx, http.MethodPatch, "/runs/"+runID, patch, nil)
}

// CreateExample adds an example to the annotation-queue dataset and returns
// its identity.
func (c *Client) CreateExample(ctx context.Context, ex Example) (string, error) {
	if ex.DatasetName == "" {
		ex.DatasetName = c.dataset
	}
	var resp struct {
		ID string `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, "/examples", ex, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

// CreateFeedback records a score or value against an example or run.
func (c *Client) CreateFeedback(ctx context.Context, fb Feedback) error {
	return c.do(ctx, http.MethodPost, "/feedback", fb, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal %s request: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.apiURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("tracking request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("tracking API returned %d for %s %s: %s", resp.StatusCode, method, path, string(data))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode %s response: %w", path, err)
		}
	}
	return nil
}

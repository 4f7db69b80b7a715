package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/terra-clan/explorers-hub/internal/models"
)

// ErrNotFound is returned when the API reports a missing project
var ErrNotFound = errors.New("not found")

// Client is a Go SDK for the explorers-hub API
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures the client
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the client timeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new explorers-hub client
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError is an error reported in the response envelope
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error: %s - %s", e.Code, e.Message)
}

// Is lets errors.Is(err, ErrNotFound) match 404 responses
func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.Status == http.StatusNotFound
}

// Tier is a difficulty tier with its aggregate progress
type Tier struct {
	models.TierSummary
	Progress models.TierProgress `json:"progress"`
}

// ListTiers retrieves all tiers in display order
func (c *Client) ListTiers(ctx context.Context) ([]Tier, error) {
	var data struct {
		Tiers []Tier `json:"tiers"`
		Total int    `json:"total"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/tiers", &data); err != nil {
		return nil, err
	}
	return data.Tiers, nil
}

// ListProjects retrieves projects of a tier filtered by query.
// An empty tier lists every tier.
func (c *Client) ListProjects(ctx context.Context, tier models.Difficulty, query string) ([]models.ProjectView, error) {
	path := "/api/v1/projects"
	if tier != "" {
		path = fmt.Sprintf("/api/v1/tiers/%s/projects", url.PathEscape(string(tier)))
	}
	if query != "" {
		path += "?q=" + url.QueryEscape(query)
	}

	var data struct {
		Projects []models.ProjectView `json:"projects"`
		Total    int                  `json:"total"`
	}
	if err := c.do(ctx, http.MethodGet, path, &data); err != nil {
		return nil, err
	}
	return data.Projects, nil
}

// GetProject retrieves a project with its detail and completion flag
func (c *Client) GetProject(ctx context.Context, id string) (*models.ProjectView, error) {
	var view models.ProjectView
	if err := c.do(ctx, http.MethodGet, "/api/v1/projects/"+url.PathEscape(id), &view); err != nil {
		return nil, err
	}
	return &view, nil
}

// IsCompleted retrieves the completion flag of a project
func (c *Client) IsCompleted(ctx context.Context, id string) (bool, error) {
	var completion models.Completion
	if err := c.do(ctx, http.MethodGet, "/api/v1/projects/"+url.PathEscape(id)+"/completion", &completion); err != nil {
		return false, err
	}
	return completion.Completed, nil
}

// ToggleCompletion flips a project's completion flag and returns the new state
func (c *Client) ToggleCompletion(ctx context.Context, id string) (bool, error) {
	var completion models.Completion
	if err := c.do(ctx, http.MethodPost, "/api/v1/projects/"+url.PathEscape(id)+"/completion/toggle", &completion); err != nil {
		return false, err
	}
	return completion.Completed, nil
}

// Summary retrieves the global progress aggregate
func (c *Client) Summary(ctx context.Context) (*models.Summary, error) {
	var summary models.Summary
	if err := c.do(ctx, http.MethodGet, "/api/v1/progress", &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

// ResetProgress clears every completion flag
func (c *Client) ResetProgress(ctx context.Context) (*models.Summary, error) {
	var summary models.Summary
	if err := c.do(ctx, http.MethodDelete, "/api/v1/progress", &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

// TierProgress retrieves the aggregate of a single tier
func (c *Client) TierProgress(ctx context.Context, tier models.Difficulty) (*models.TierProgress, error) {
	var tp models.TierProgress
	if err := c.do(ctx, http.MethodGet, "/api/v1/progress/tiers/"+url.PathEscape(string(tier)), &tp); err != nil {
		return nil, err
	}
	return &tp, nil
}

// LevelStanding retrieves the standing for completed projects at level
func (c *Client) LevelStanding(ctx context.Context, completed int, level models.Level) (*models.LevelStanding, error) {
	q := url.Values{}
	q.Set("completed", strconv.Itoa(completed))
	q.Set("level", string(level))

	var standing models.LevelStanding
	if err := c.do(ctx, http.MethodGet, "/api/v1/progress/level?"+q.Encode(), &standing); err != nil {
		return nil, err
	}
	return &standing, nil
}

// Health checks if the service is healthy
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil)
}

// do performs an HTTP request and decodes the envelope's data into out
func (c *Client) do(ctx context.Context, method, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	var result struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Error   *APIError       `json:"error"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("HTTP %d: failed to unmarshal response: %w", resp.StatusCode, err)
	}

	if !result.Success {
		if result.Error == nil {
			result.Error = &APIError{Code: "unknown", Message: http.StatusText(resp.StatusCode)}
		}
		result.Error.Status = resp.StatusCode
		return result.Error
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(result.Data, out); err != nil {
		return fmt.Errorf("failed to unmarshal data: %w", err)
	}
	return nil
}

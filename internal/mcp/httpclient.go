package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/claude/mapty/internal/app"
	"github.com/claude/mapty/internal/models"
)

// HTTPClient implements DataSource by calling the Mapty REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but
// data lives on the remote server (accessed over Tailscale).
type HTTPClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Compile-time check: HTTPClient satisfies DataSource.
var _ DataSource = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// WithAPIKey sets the X-API-Key header sent with every request.
func (c *HTTPClient) WithAPIKey(key string) *HTTPClient {
	c.apiKey = key
	return c
}

// statusError is a non-2xx response.
type statusError struct {
	path   string
	status int
	body   []byte
}

func (e *statusError) Error() string {
	return fmt.Sprintf("httpclient: %s returned %d: %s", e.path, e.status, bytes.TrimSpace(e.body))
}

func (c *HTTPClient) do(ctx context.Context, method, path string, params url.Values, in any) ([]byte, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("httpclient: encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &statusError{path: path, status: resp.StatusCode, body: data}
	}

	return data, nil
}

func (c *HTTPClient) ListWorkouts(ctx context.Context, start, end time.Time, kind models.Kind) ([]*models.Workout, error) {
	params := url.Values{}
	if kind != "" {
		params.Set("type", string(kind))
	}

	body, err := c.do(ctx, http.MethodGet, "/api/v1/workouts", params, nil)
	if err != nil {
		return nil, err
	}

	var workouts []*models.Workout
	if err := json.Unmarshal(body, &workouts); err != nil {
		return nil, fmt.Errorf("httpclient: decode workouts: %w", err)
	}
	return filterWorkouts(workouts, start, end, kind), nil
}

func (c *HTTPClient) GetWorkout(ctx context.Context, id string) (*models.Workout, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/v1/workouts/"+url.PathEscape(id), nil, nil)
	var se *statusError
	if errors.As(err, &se) && se.status == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", app.ErrWorkoutNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	var w models.Workout
	if err := json.Unmarshal(body, &w); err != nil {
		return nil, fmt.Errorf("httpclient: decode workout: %w", err)
	}
	return &w, nil
}

func (c *HTTPClient) LogWorkout(ctx context.Context, req LogRequest) (*models.Workout, error) {
	raw := req.raw()
	payload := map[string]any{
		"type":      string(req.Kind),
		"distance":  raw.Distance,
		"duration":  raw.Duration,
		"cadence":   raw.Cadence,
		"elevation": raw.Elevation,
		"lat":       req.At.Lat,
		"lng":       req.At.Lng,
	}

	body, err := c.do(ctx, http.MethodPost, "/api/v1/workouts", nil, payload)
	var se *statusError
	if errors.As(err, &se) && se.status == http.StatusUnprocessableEntity {
		var rejected struct {
			Error   string `json:"error"`
			Warning string `json:"warning"`
		}
		if json.Unmarshal(se.body, &rejected) == nil && rejected.Error != "" {
			return nil, fmt.Errorf("%s (%s)", rejected.Warning, rejected.Error)
		}
	}
	if err != nil {
		return nil, err
	}

	var created struct {
		Workout *models.Workout `json:"workout"`
	}
	if err := json.Unmarshal(body, &created); err != nil {
		return nil, fmt.Errorf("httpclient: decode created workout: %w", err)
	}
	if created.Workout == nil {
		return nil, errors.New("httpclient: response has no workout")
	}
	return created.Workout, nil
}

package sonar

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mx51/sonar-results-action/internal/apierr"
)

const defaultTimeout = 30 * time.Second

// Client handles SonarQube Web API operations
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

// NewClient creates a new SonarQube client for the given host
func NewClient(baseURL, token string) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
	}
}

// FetchMeasures queries the current values of the given metric keys for a
// project's pull request and merges them into a snapshot preserving the
// caller's key order. Keys the service has no data for are included with
// Available set to false.
func (c *Client) FetchMeasures(ctx context.Context, projectKey string, prNumber int, metricKeys []string) (Snapshot, error) {
	if len(metricKeys) == 0 {
		return Snapshot{}, fmt.Errorf("no metric keys requested: %w", apierr.ErrService)
	}

	q := url.Values{}
	q.Set("component", projectKey)
	q.Set("pullRequest", strconv.Itoa(prNumber))
	q.Set("metricKeys", strings.Join(metricKeys, ","))

	var response ComponentResponse
	if err := c.get(ctx, "/api/measures/component", q, &response); err != nil {
		return Snapshot{}, fmt.Errorf("failed to fetch measures for project %s: %w", projectKey, err)
	}

	byKey := make(map[string]string, len(response.Component.Measures))
	for _, m := range response.Component.Measures {
		byKey[m.Metric] = m.ResultValue()
	}

	snapshot := Snapshot{Results: make([]Result, 0, len(metricKeys))}
	for _, key := range metricKeys {
		value, ok := byKey[key]
		snapshot.Results = append(snapshot.Results, Result{Key: key, Value: value, Available: ok})
	}

	return snapshot, nil
}

// FetchQualityGateStatus reports whether the project's quality gate passed
// for the pull request.
func (c *Client) FetchQualityGateStatus(ctx context.Context, projectKey string, prNumber int) (bool, error) {
	q := url.Values{}
	q.Set("projectKey", projectKey)
	q.Set("pullRequest", strconv.Itoa(prNumber))

	var response QualityGateResponse
	if err := c.get(ctx, "/api/qualitygates/project_status", q, &response); err != nil {
		return false, fmt.Errorf("failed to fetch quality gate status for project %s: %w", projectKey, err)
	}

	return response.ProjectStatus.Status == "OK", nil
}

// get performs a single authenticated GET against the SonarQube Web API.
// There are no retries: a failed call fails the run and the next CI
// trigger starts over.
func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	endpoint := c.baseURL + path + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %v: %w", path, err, apierr.ErrService)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("sonar %s: %w", path, apierr.FromStatus(resp.StatusCode))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %v: %w", path, err, apierr.ErrService)
	}

	return nil
}

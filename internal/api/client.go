package api

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"showscout/internal/progress"
)

// Client talks to a running daemon over its HTTP API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// ClientOption customizes the client.
type ClientOption func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// NewClient constructs a daemon client. Discovery runs stream for as long
// as the run takes, so the default client carries no overall timeout.
func NewClient(bind, token string, opts ...ClientOption) *Client {
	base := strings.TrimSpace(bind)
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "http://" + base
	}
	client := &Client{
		baseURL:    strings.TrimRight(base, "/"),
		token:      strings.TrimSpace(token),
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// QuotaExceededError is returned when the daemon rejects a run for quota.
type QuotaExceededError struct {
	Message string
	ResetAt time.Time
}

func (e *QuotaExceededError) Error() string { return e.Message }

// Discover starts a run and invokes onEvent for every NDJSON progress
// line until the stream ends.
func (c *Client) Discover(ctx context.Context, request DiscoverRequest, onEvent func(progress.Event)) error {
	body, err := json.Marshal(request)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	req, err := c.newRequest(ctx, http.MethodPost, "/api/discover", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("daemon unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decodeError(resp)
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var event progress.Event
		if err := json.Unmarshal([]byte(line), &event); err != nil {
			return fmt.Errorf("decode progress event: %w", err)
		}
		if onEvent != nil {
			onEvent(event)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read progress stream: %w", err)
	}
	return nil
}

// DiscoverBatch runs several topic sets and returns aggregate results.
func (c *Client) DiscoverBatch(ctx context.Context, request BatchDiscoverRequest) (*BatchDiscoverResponse, error) {
	var response BatchDiscoverResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/discover/batch", request, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// Shows lists persisted shows for the caller's active profile.
func (c *Client) Shows(ctx context.Context, platform string, hasEmail *bool, withStats bool) (*ShowListResponse, error) {
	params := url.Values{}
	if platform != "" {
		params.Set("platform", platform)
	}
	if hasEmail != nil {
		params.Set("has_email", strconv.FormatBool(*hasEmail))
	}
	if withStats {
		params.Set("stats", "true")
	}
	path := "/api/shows"
	if encoded := params.Encode(); encoded != "" {
		path += "?" + encoded
	}
	var response ShowListResponse
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// Profile fetches the caller's active profile.
func (c *Client) Profile(ctx context.Context) (*Profile, error) {
	var profile Profile
	if err := c.doJSON(ctx, http.MethodGet, "/api/profile", nil, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// UpdateProfile replaces the caller's active profile settings.
func (c *Client) UpdateProfile(ctx context.Context, profile Profile) (*Profile, error) {
	var updated Profile
	if err := c.doJSON(ctx, http.MethodPut, "/api/profile", profile, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// Quota fetches the caller's monthly usage.
func (c *Client) Quota(ctx context.Context) (*Quota, error) {
	var quota Quota
	if err := c.doJSON(ctx, http.MethodGet, "/api/quota", nil, &quota); err != nil {
		return nil, err
	}
	return &quota, nil
}

// Status fetches daemon runtime information.
func (c *Client) Status(ctx context.Context) (*DaemonStatus, error) {
	var status DaemonStatus
	if err := c.doJSON(ctx, http.MethodGet, "/api/status", nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, payload, target any) error {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(encoded)
	}
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("daemon unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decodeError(resp)
	}
	if target == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	var envelope ErrorResponse
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error != "" {
		if resp.StatusCode == http.StatusTooManyRequests && envelope.ResetAt != nil {
			return &QuotaExceededError{Message: envelope.Error, ResetAt: *envelope.ResetAt}
		}
		return fmt.Errorf("%s", envelope.Error)
	}
	return fmt.Errorf("daemon returned status %d", resp.StatusCode)
}

// Package youtube implements the video-catalog adapter over the YouTube
// Data API v3.
package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"showscout/internal/config"
	"showscout/internal/services"
	"showscout/internal/sources"
)

const searchPageSize = 10

// Client talks to the YouTube Data API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// NewClient constructs a client from configuration.
func NewClient(cfg config.YouTube, opts ...Option) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, services.Wrap(services.ErrConfiguration, "youtube", "new client", "api key required", nil)
	}
	client := &Client{
		apiKey:     strings.TrimSpace(cfg.APIKey),
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Platform implements sources.Adapter.
func (c *Client) Platform() string { return "video" }

// Search returns channel stubs matching the query.
func (c *Client) Search(ctx context.Context, query string) ([]sources.Stub, error) {
	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("type", "channel")
	params.Set("q", query)
	params.Set("maxResults", strconv.Itoa(searchPageSize))

	var payload searchResponse
	if err := c.get(ctx, "/search", params, &payload); err != nil {
		return nil, err
	}

	stubs := make([]sources.Stub, 0, len(payload.Items))
	for _, item := range payload.Items {
		channelID := item.ID.ChannelID
		if channelID == "" {
			channelID = item.Snippet.ChannelID
		}
		if channelID == "" {
			continue
		}
		stubs = append(stubs, sources.Stub{
			SourceID:    channelID,
			Name:        item.Snippet.ChannelTitle,
			Description: item.Snippet.Description,
			PlatformURL: "https://www.youtube.com/channel/" + channelID,
		})
	}
	return stubs, nil
}

// Details fetches audience size and channel metadata.
func (c *Client) Details(ctx context.Context, sourceID string) (*sources.Details, error) {
	params := url.Values{}
	params.Set("part", "snippet,statistics")
	params.Set("id", sourceID)

	var payload channelsResponse
	if err := c.get(ctx, "/channels", params, &payload); err != nil {
		return nil, err
	}
	if len(payload.Items) == 0 {
		return nil, services.Wrap(services.ErrNotFound, "youtube", "details", "channel "+sourceID, nil)
	}

	item := payload.Items[0]
	subscribers, _ := strconv.ParseInt(item.Statistics.SubscriberCount, 10, 64)
	return &sources.Details{
		Audience:    subscribers,
		Description: item.Snippet.Description,
		Host:        item.Snippet.Title,
		PlatformURL: "https://www.youtube.com/channel/" + sourceID,
	}, nil
}

// RecentContent returns the channel's most recent uploads with view counts.
func (c *Client) RecentContent(ctx context.Context, sourceID string, limit int) ([]sources.ContentSample, error) {
	if limit <= 0 {
		return nil, nil
	}

	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("channelId", sourceID)
	params.Set("type", "video")
	params.Set("order", "date")
	params.Set("maxResults", strconv.Itoa(limit))

	var searchPayload searchResponse
	if err := c.get(ctx, "/search", params, &searchPayload); err != nil {
		return nil, err
	}

	videoIDs := make([]string, 0, len(searchPayload.Items))
	samples := make([]sources.ContentSample, 0, len(searchPayload.Items))
	for _, item := range searchPayload.Items {
		if item.ID.VideoID == "" {
			continue
		}
		videoIDs = append(videoIDs, item.ID.VideoID)
		samples = append(samples, sources.ContentSample{
			Title:       item.Snippet.Title,
			Description: item.Snippet.Description,
		})
	}
	if len(videoIDs) == 0 {
		return nil, nil
	}

	statsParams := url.Values{}
	statsParams.Set("part", "statistics")
	statsParams.Set("id", strings.Join(videoIDs, ","))

	var videosPayload videosResponse
	if err := c.get(ctx, "/videos", statsParams, &videosPayload); err != nil {
		// Scoring can proceed on titles alone; view counts stay zero.
		return samples, nil
	}
	viewsByID := make(map[string]int64, len(videosPayload.Items))
	for _, item := range videosPayload.Items {
		views, _ := strconv.ParseInt(item.Statistics.ViewCount, 10, 64)
		viewsByID[item.ID] = views
	}
	for i, id := range videoIDs {
		samples[i].Views = viewsByID[id]
	}
	return samples, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, target any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return services.Wrap(services.ErrTransient, "youtube", "rate wait", "", err)
	}

	params.Set("key", c.apiKey)
	endpoint := c.baseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return services.Wrap(services.ErrExternalSource, "youtube", "new request", "", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return services.Wrap(services.ErrExternalSource, "youtube", "http", "", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return services.Wrap(services.ErrExternalSource, "youtube", "read body", "", err)
	}
	if resp.StatusCode != http.StatusOK {
		return services.Wrap(
			services.ErrExternalSource,
			"youtube",
			"http",
			fmt.Sprintf("status %d: %s", resp.StatusCode, summarizeBody(body)),
			nil,
		)
	}
	if err := json.Unmarshal(body, target); err != nil {
		return services.Wrap(services.ErrExternalSource, "youtube", "decode response", "", err)
	}
	return nil
}

func summarizeBody(body []byte) string {
	text := strings.Join(strings.Fields(string(body)), " ")
	const limit = 160
	if len(text) > limit {
		return text[:limit] + "..."
	}
	if text == "" {
		return "<empty>"
	}
	return text
}

var _ sources.Adapter = (*Client)(nil)

// Package podcastindex implements the audio-catalog adapter over the
// Podcast Index API. Feed records frequently carry a publisher-supplied
// contact email, so candidates from this source often skip LLM extraction
// entirely.
package podcastindex

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/mmcdole/gofeed"
	"golang.org/x/time/rate"

	"showscout/internal/config"
	"showscout/internal/services"
	"showscout/internal/sources"
)

const searchPageSize = 10

// Client talks to the Podcast Index API.
type Client struct {
	apiKey     string
	apiSecret  string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	now        func() time.Time

	mu    sync.Mutex
	cache map[string]feedRecord
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client. The feed parser shares it
// so tests can intercept feed fetches too.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithClock overrides the auth-timestamp source.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// NewClient constructs a client from configuration.
func NewClient(cfg config.PodcastIndex, opts ...Option) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" || strings.TrimSpace(cfg.APISecret) == "" {
		return nil, services.Wrap(services.ErrConfiguration, "podcastindex", "new client", "api key and secret required", nil)
	}
	client := &Client{
		apiKey:     strings.TrimSpace(cfg.APIKey),
		apiSecret:  strings.TrimSpace(cfg.APISecret),
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		now:        time.Now,
		cache:      make(map[string]feedRecord),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Platform implements sources.Adapter.
func (c *Client) Platform() string { return "audio" }

// Search returns feed stubs matching the query.
func (c *Client) Search(ctx context.Context, query string) ([]sources.Stub, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("max", strconv.Itoa(searchPageSize))

	var payload searchResponse
	if err := c.get(ctx, "/search/byterm", params, &payload); err != nil {
		return nil, err
	}

	stubs := make([]sources.Stub, 0, len(payload.Feeds))
	for _, feed := range payload.Feeds {
		if feed.ID == 0 {
			continue
		}
		c.remember(feed)
		stubs = append(stubs, sources.Stub{
			SourceID:    feed.sourceID(),
			Name:        feed.Title,
			Host:        feed.host(),
			Description: feed.Description,
			PlatformURL: feed.Link,
			FeedURL:     feed.URL,
			WebsiteURL:  feed.Link,
			Email:       strings.TrimSpace(feed.OwnerEmail),
		})
	}
	return stubs, nil
}

// Details resolves a feed record, preferring the in-run search cache over a
// second API round trip.
func (c *Client) Details(ctx context.Context, sourceID string) (*sources.Details, error) {
	feed, ok := c.recall(sourceID)
	if !ok {
		fetched, err := c.feedByID(ctx, sourceID)
		if err != nil {
			return nil, err
		}
		feed = fetched
	}
	return &sources.Details{
		Audience:    feed.Popularity,
		Description: feed.Description,
		Host:        feed.host(),
		PlatformURL: feed.Link,
		FeedURL:     feed.URL,
		WebsiteURL:  feed.Link,
		Email:       strings.TrimSpace(feed.OwnerEmail),
	}, nil
}

// RecentContent parses the feed itself for the latest episodes.
func (c *Client) RecentContent(ctx context.Context, sourceID string, limit int) ([]sources.ContentSample, error) {
	if limit <= 0 {
		return nil, nil
	}
	feed, ok := c.recall(sourceID)
	if !ok {
		fetched, err := c.feedByID(ctx, sourceID)
		if err != nil {
			return nil, err
		}
		feed = fetched
	}
	if strings.TrimSpace(feed.URL) == "" {
		return nil, nil
	}

	parser := gofeed.NewParser()
	parser.Client = c.httpClient
	parsed, err := parser.ParseURLWithContext(feed.URL, ctx)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalSource, "podcastindex", "parse feed", feed.URL, err)
	}

	samples := make([]sources.ContentSample, 0, limit)
	for _, item := range parsed.Items {
		if len(samples) >= limit {
			break
		}
		samples = append(samples, sources.ContentSample{
			Title:       strings.TrimSpace(item.Title),
			Description: strings.TrimSpace(item.Description),
		})
	}
	return samples, nil
}

func (c *Client) feedByID(ctx context.Context, sourceID string) (feedRecord, error) {
	params := url.Values{}
	params.Set("id", sourceID)

	var payload feedResponse
	if err := c.get(ctx, "/podcasts/byfeedid", params, &payload); err != nil {
		return feedRecord{}, err
	}
	if payload.Feed.ID == 0 {
		return feedRecord{}, services.Wrap(services.ErrNotFound, "podcastindex", "details", "feed "+sourceID, nil)
	}
	c.remember(payload.Feed)
	return payload.Feed, nil
}

func (c *Client) remember(feed feedRecord) {
	c.mu.Lock()
	c.cache[feed.sourceID()] = feed
	c.mu.Unlock()
}

func (c *Client) recall(sourceID string) (feedRecord, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	feed, ok := c.cache[sourceID]
	return feed, ok
}

func (c *Client) get(ctx context.Context, path string, params url.Values, target any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return services.Wrap(services.ErrTransient, "podcastindex", "rate wait", "", err)
	}

	endpoint := c.baseURL + path + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return services.Wrap(services.ErrExternalSource, "podcastindex", "new request", "", err)
	}

	// The index authenticates with a sha1 over key+secret+timestamp.
	authDate := strconv.FormatInt(c.now().Unix(), 10)
	hash := sha1.Sum([]byte(c.apiKey + c.apiSecret + authDate))
	req.Header.Set("X-Auth-Key", c.apiKey)
	req.Header.Set("X-Auth-Date", authDate)
	req.Header.Set("Authorization", hex.EncodeToString(hash[:]))
	req.Header.Set("User-Agent", "showscout")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return services.Wrap(services.ErrExternalSource, "podcastindex", "http", "", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return services.Wrap(services.ErrExternalSource, "podcastindex", "read body", "", err)
	}
	if resp.StatusCode != http.StatusOK {
		return services.Wrap(
			services.ErrExternalSource,
			"podcastindex",
			"http",
			fmt.Sprintf("status %d", resp.StatusCode),
			nil,
		)
	}
	if err := json.Unmarshal(body, target); err != nil {
		return services.Wrap(services.ErrExternalSource, "podcastindex", "decode response", "", err)
	}
	return nil
}

var _ sources.Adapter = (*Client)(nil)

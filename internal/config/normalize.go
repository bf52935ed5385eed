package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeYouTube()
	c.normalizePodcastIndex()
	c.normalizeLLM()
	c.normalizeDiscovery()
	c.normalizeScrape()
	c.normalizeQuota()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.APIBind) == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	c.Paths.APIToken = strings.TrimSpace(c.Paths.APIToken)
	return nil
}

func (c *Config) normalizeYouTube() {
	c.YouTube.APIKey = strings.TrimSpace(c.YouTube.APIKey)
	if c.YouTube.APIKey == "" {
		c.YouTube.APIKey = strings.TrimSpace(os.Getenv("YOUTUBE_API_KEY"))
	}
	if strings.TrimSpace(c.YouTube.BaseURL) == "" {
		c.YouTube.BaseURL = defaultYouTubeBaseURL
	}
	c.YouTube.BaseURL = strings.TrimRight(strings.TrimSpace(c.YouTube.BaseURL), "/")
	if c.YouTube.TimeoutSeconds <= 0 {
		c.YouTube.TimeoutSeconds = defaultYouTubeTimeout
	}
	if c.YouTube.RequestsPerSecond <= 0 {
		c.YouTube.RequestsPerSecond = defaultYouTubeRate
	}
}

func (c *Config) normalizePodcastIndex() {
	c.PodcastIndex.APIKey = strings.TrimSpace(c.PodcastIndex.APIKey)
	if c.PodcastIndex.APIKey == "" {
		c.PodcastIndex.APIKey = strings.TrimSpace(os.Getenv("PODCASTINDEX_API_KEY"))
	}
	c.PodcastIndex.APISecret = strings.TrimSpace(c.PodcastIndex.APISecret)
	if c.PodcastIndex.APISecret == "" {
		c.PodcastIndex.APISecret = strings.TrimSpace(os.Getenv("PODCASTINDEX_API_SECRET"))
	}
	if strings.TrimSpace(c.PodcastIndex.BaseURL) == "" {
		c.PodcastIndex.BaseURL = defaultPodcastIndexBaseURL
	}
	c.PodcastIndex.BaseURL = strings.TrimRight(strings.TrimSpace(c.PodcastIndex.BaseURL), "/")
	if c.PodcastIndex.TimeoutSeconds <= 0 {
		c.PodcastIndex.TimeoutSeconds = defaultPodcastIndexTimeout
	}
	if c.PodcastIndex.RequestsPerSecond <= 0 {
		c.PodcastIndex.RequestsPerSecond = defaultPodcastIndexRate
	}
}

func (c *Config) normalizeLLM() {
	c.LLM.APIKey = strings.TrimSpace(c.LLM.APIKey)
	if c.LLM.APIKey == "" {
		c.LLM.APIKey = strings.TrimSpace(os.Getenv("OPENROUTER_API_KEY"))
	}
	if strings.TrimSpace(c.LLM.BaseURL) == "" {
		c.LLM.BaseURL = defaultLLMBaseURL
	}
	if strings.TrimSpace(c.LLM.Model) == "" {
		c.LLM.Model = defaultLLMModel
	}
	if strings.TrimSpace(c.LLM.Referer) == "" {
		c.LLM.Referer = defaultLLMReferer
	}
	if strings.TrimSpace(c.LLM.Title) == "" {
		c.LLM.Title = defaultLLMTitle
	}
	if c.LLM.TimeoutSeconds <= 0 {
		c.LLM.TimeoutSeconds = defaultLLMTimeoutSeconds
	}
}

func (c *Config) normalizeDiscovery() {
	if c.Discovery.TargetCount <= 0 {
		c.Discovery.TargetCount = defaultTargetCount
	}
	if c.Discovery.MaxQueries <= 0 {
		c.Discovery.MaxQueries = defaultMaxQueries
	}
	if c.Discovery.ExtractionConcurrency <= 0 {
		c.Discovery.ExtractionConcurrency = defaultExtractConcurrency
	}
	if c.Discovery.RecentContentLimit <= 0 {
		c.Discovery.RecentContentLimit = defaultRecentContentLimit
	}
	if c.Discovery.DeepContentLimit < c.Discovery.RecentContentLimit {
		c.Discovery.DeepContentLimit = defaultDeepContentLimit
	}
	if c.Discovery.GuestScoreThreshold <= 0 {
		c.Discovery.GuestScoreThreshold = defaultGuestScoreThreshold
	}
}

func (c *Config) normalizeScrape() {
	if c.Scrape.TimeoutSeconds <= 0 {
		c.Scrape.TimeoutSeconds = defaultScrapeTimeoutSeconds
	}
	if c.Scrape.MaxBytes <= 0 {
		c.Scrape.MaxBytes = defaultScrapeMaxBytes
	}
}

func (c *Config) normalizeQuota() {
	if c.Quota.MonthlyLimit <= 0 {
		c.Quota.MonthlyLimit = defaultMonthlyLimit
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable. Catalog and LLM credentials
// are deliberately not required here: the daemon can serve read endpoints
// without them, and discovery reports a precondition failure when a run
// actually needs a missing key.
func (c *Config) Validate() error {
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateDiscovery(); err != nil {
		return err
	}
	if err := c.validateScrape(); err != nil {
		return err
	}
	if err := c.validatePodcastIndex(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}

func (c *Config) validateDiscovery() error {
	if c.Discovery.ExtractionConcurrency > 16 {
		return errors.New("discovery.extraction_concurrency must be 16 or less")
	}
	if c.Discovery.GuestScoreThreshold > 100 {
		return errors.New("discovery.guest_score_threshold must be 100 or less")
	}
	return nil
}

func (c *Config) validateScrape() error {
	if c.Scrape.MaxBytes > 8*1024*1024 {
		return errors.New("scrape.max_bytes must be 8 MiB or less")
	}
	return nil
}

func (c *Config) validatePodcastIndex() error {
	// The index API signs requests with key+secret together; one without the
	// other is always a misconfiguration.
	hasKey := strings.TrimSpace(c.PodcastIndex.APIKey) != ""
	hasSecret := strings.TrimSpace(c.PodcastIndex.APISecret) != ""
	if hasKey != hasSecret {
		return errors.New("podcastindex.api_key and podcastindex.api_secret must be set together")
	}
	return nil
}

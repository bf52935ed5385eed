package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and bind address configuration.
type Paths struct {
	DataDir  string `toml:"data_dir"`
	LogDir   string `toml:"log_dir"`
	APIBind  string `toml:"api_bind"`
	APIToken string `toml:"api_token"`
}

// YouTube contains configuration for the video-catalog client.
type YouTube struct {
	APIKey            string  `toml:"api_key"`
	BaseURL           string  `toml:"base_url"`
	TimeoutSeconds    int     `toml:"timeout_seconds"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

// PodcastIndex contains configuration for the podcast-index client.
type PodcastIndex struct {
	APIKey            string  `toml:"api_key"`
	APISecret         string  `toml:"api_secret"`
	BaseURL           string  `toml:"base_url"`
	TimeoutSeconds    int     `toml:"timeout_seconds"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

// LLM contains connection settings for the contact-extraction service.
type LLM struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	Referer        string `toml:"referer"`
	Title          string `toml:"title"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Discovery contains pipeline tuning knobs.
type Discovery struct {
	// TargetCount is the default number of shows a run tries to persist
	// when the caller's profile does not override it.
	TargetCount int `toml:"target_count"`
	// MaxQueries caps the expanded query list per run (the search budget).
	MaxQueries int `toml:"max_queries"`
	// ExtractionConcurrency bounds in-flight contact extractions.
	ExtractionConcurrency int `toml:"extraction_concurrency"`
	// RecentContentLimit is the per-candidate content sample size.
	RecentContentLimit int `toml:"recent_content_limit"`
	// DeepContentLimit replaces RecentContentLimit when deep research is requested.
	DeepContentLimit int `toml:"deep_content_limit"`
	// GuestScoreThreshold is the minimum suitability score when a profile
	// enables the guest-only filter.
	GuestScoreThreshold int `toml:"guest_score_threshold"`
}

// Scrape contains limits for the page-scrape contact fallback.
type Scrape struct {
	TimeoutSeconds int   `toml:"timeout_seconds"`
	MaxBytes       int64 `toml:"max_bytes"`
}

// Quota contains monthly usage limits.
type Quota struct {
	MonthlyLimit int `toml:"monthly_limit"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for showscout.
//
// Configuration sections by subsystem:
//   - Paths: data/log directories, API bind address and token
//   - YouTube: video-catalog search client
//   - PodcastIndex: podcast-index search client
//   - LLM: contact-extraction service connection
//   - Discovery: pipeline targets, budgets, and concurrency
//   - Scrape: page-scrape fallback limits
//   - Quota: per-user monthly run limits
//   - Logging: log format and level
type Config struct {
	Paths        Paths        `toml:"paths"`
	YouTube      YouTube      `toml:"youtube"`
	PodcastIndex PodcastIndex `toml:"podcastindex"`
	LLM          LLM          `toml:"llm"`
	Discovery    Discovery    `toml:"discovery"`
	Scrape       Scrape       `toml:"scrape"`
	Quota        Quota        `toml:"quota"`
	Logging      Logging      `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/showscout/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config
// has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("showscout.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for daemon operation.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// DatabasePath returns the sqlite database location under the data directory.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Paths.DataDir, "showscout.db")
}

// LockFilePath returns the daemon lock file location.
func (c *Config) LockFilePath() string {
	return filepath.Join(c.Paths.DataDir, "showscoutd.lock")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// Sample returns the embedded sample configuration text.
func Sample() string {
	return sampleConfig
}

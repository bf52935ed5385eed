package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"showscout/internal/config"
)

func TestLoadDefaultsExpandPathsAndReadEnvKeys(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("YOUTUBE_API_KEY", "yt-test-key")
	t.Setenv("PODCASTINDEX_API_KEY", "pi-key")
	t.Setenv("PODCASTINDEX_API_SECRET", "pi-secret")
	t.Setenv("OPENROUTER_API_KEY", "or-key")

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantData := filepath.Join(tempHome, ".local", "share", "showscout")
	if cfg.Paths.DataDir != wantData {
		t.Fatalf("unexpected data dir: got %q want %q", cfg.Paths.DataDir, wantData)
	}
	if cfg.Paths.APIBind != "127.0.0.1:7319" {
		t.Fatalf("unexpected api bind: %q", cfg.Paths.APIBind)
	}
	if cfg.YouTube.APIKey != "yt-test-key" {
		t.Fatalf("expected youtube key from env, got %q", cfg.YouTube.APIKey)
	}
	if cfg.PodcastIndex.APISecret != "pi-secret" {
		t.Fatalf("expected podcastindex secret from env, got %q", cfg.PodcastIndex.APISecret)
	}
	if cfg.LLM.APIKey != "or-key" {
		t.Fatalf("expected llm key from env, got %q", cfg.LLM.APIKey)
	}
	if cfg.Discovery.ExtractionConcurrency != 3 {
		t.Fatalf("unexpected extraction concurrency: %d", cfg.Discovery.ExtractionConcurrency)
	}
	if cfg.DatabasePath() != filepath.Join(wantData, "showscout.db") {
		t.Fatalf("unexpected db path: %q", cfg.DatabasePath())
	}
}

func TestLoadParsesFileOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := strings.Join([]string{
		"[paths]",
		`data_dir = "` + filepath.Join(dir, "data") + `"`,
		`api_token = "secret-token"`,
		"",
		"[discovery]",
		"target_count = 3",
		"extraction_concurrency = 2",
		"",
		"[quota]",
		"monthly_limit = 5",
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to exist")
	}
	if cfg.Paths.APIToken != "secret-token" {
		t.Fatalf("unexpected token: %q", cfg.Paths.APIToken)
	}
	if cfg.Discovery.TargetCount != 3 {
		t.Fatalf("unexpected target count: %d", cfg.Discovery.TargetCount)
	}
	if cfg.Quota.MonthlyLimit != 5 {
		t.Fatalf("unexpected monthly limit: %d", cfg.Quota.MonthlyLimit)
	}
}

func TestValidateRejectsMismatchedPodcastIndexCredentials(t *testing.T) {
	t.Setenv("PODCASTINDEX_API_KEY", "")
	t.Setenv("PODCASTINDEX_API_SECRET", "")
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := "[podcastindex]\napi_key = \"only-key\"\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected validation error for key without secret")
	}
}

func TestValidateRejectsBadLogFormat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("[logging]\nformat = \"xml\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected error for unsupported log format")
	}
}

func TestCreateSampleWritesEmbeddedConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[discovery]") {
		t.Fatal("sample config missing discovery section")
	}
}

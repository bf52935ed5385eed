package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"showscout/internal/config"
	"showscout/internal/daemon"
	"showscout/internal/discovery"
	"showscout/internal/extractor"
	"showscout/internal/logging"
	"showscout/internal/quota"
	"showscout/internal/services/llm"
	"showscout/internal/sources"
	"showscout/internal/store"
	"showscout/internal/testsupport"
)

type cliTestEnv struct {
	addr       string
	configPath string
	store      *store.Store
}

type stubAdapter struct{}

func (stubAdapter) Platform() string { return store.PlatformVideo }

func (stubAdapter) Search(context.Context, string) ([]sources.Stub, error) {
	return []sources.Stub{{SourceID: "UC-gardenhour", Name: "Garden Hour", PlatformURL: "https://www.youtube.com/channel/UC-gardenhour"}}, nil
}

func (stubAdapter) Details(context.Context, string) (*sources.Details, error) {
	return &sources.Details{Audience: 9000, Host: "Rosa"}, nil
}

func (stubAdapter) RecentContent(_ context.Context, _ string, limit int) ([]sources.ContentSample, error) {
	samples := []sources.ContentSample{{Title: "Interview with a rose breeder", Views: 1200}}
	if len(samples) > limit {
		samples = samples[:limit]
	}
	return samples, nil
}

type stubContact struct{}

func (stubContact) Extract(context.Context, extractor.Input) extractor.Contact {
	return extractor.Contact{Method: extractor.MethodNone}
}

// setupCLITestEnv boots a daemon on an ephemeral port and writes a config
// file pointing the CLI at it.
func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)

	cfg := testsupport.NewConfig(t)
	cfg.Paths.APIBind = "127.0.0.1:0"
	cfg.Paths.APIToken = "cli-token"
	st := testsupport.MustOpenStore(t, cfg)
	testsupport.SeedUser(t, st, "cli-token", 50)

	adapters := []sources.Adapter{stubAdapter{}}
	engine := discovery.NewEngine(st, adapters, stubContact{}, cfg.Discovery, nil)
	gatekeeper := quota.New(st, nil)
	llmClient := llm.NewClient(config.LLM{})

	d, err := daemon.New(cfg, st, engine, gatekeeper, llmClient, adapters, logging.NewNop())
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("daemon.Start: %v", err)
	}
	t.Cleanup(d.Stop)

	configPath := filepath.Join(homeDir, ".config", "showscout", "config.toml")
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	writeTestConfig(t, configPath, cfg, d.APIAddr())

	return &cliTestEnv{addr: d.APIAddr(), configPath: configPath, store: st}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config, addr string) {
	t.Helper()
	content := fmt.Sprintf(
		"[paths]\ndata_dir = %q\nlog_dir = %q\napi_bind = %q\napi_token = %q\n",
		cfg.Paths.DataDir,
		cfg.Paths.LogDir,
		addr,
		cfg.Paths.APIToken,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write test config: %v", err)
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

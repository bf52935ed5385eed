package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"showscout/internal/config"
	"showscout/internal/daemon"
	"showscout/internal/discovery"
	"showscout/internal/extractor"
	"showscout/internal/logging"
	"showscout/internal/quota"
	"showscout/internal/services/llm"
	"showscout/internal/sources"
	"showscout/internal/sources/podcastindex"
	"showscout/internal/sources/youtube"
	"showscout/internal/store"
)

func newLogger(cfg *config.Config) (*slog.Logger, error) {
	return logging.New(logging.Options{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		OutputPaths: []string{"stdout", filepath.Join(cfg.Paths.LogDir, "showscoutd.log")},
	})
}

// bootstrap opens the store, seeds the default user, and wires the
// discovery pipeline into a daemon ready to start.
func bootstrap(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*daemon.Daemon, error) {
	st, err := store.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	token := strings.TrimSpace(cfg.Paths.APIToken)
	if token == "" {
		token = uuid.NewString()
	}
	user, _, err := st.EnsureDefaultUser(ctx, token, cfg.Quota.MonthlyLimit, cfg.Discovery.TargetCount)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("ensure default user: %w", err)
	}
	if strings.TrimSpace(cfg.Paths.APIToken) == "" {
		logger.Warn("paths.api_token is not set; the CLI authenticates with the stored token",
			logging.String("api_token", user.APIToken))
	}

	adapters := buildAdapters(cfg, logger)
	if len(adapters) == 0 {
		logger.Warn("no catalog credentials configured; discovery runs will find nothing")
	}

	llmClient := llm.NewClient(cfg.LLM)
	if !llmClient.Configured() {
		logger.Info("llm credentials not configured; contact-dependent run modes are unavailable")
	}

	ex := extractor.New(llmClient, cfg.Scrape, logger)
	engine := discovery.NewEngine(st, adapters, ex, cfg.Discovery, logger)
	gatekeeper := quota.New(st, logger)

	d, err := daemon.New(cfg, st, engine, gatekeeper, llmClient, adapters, logger)
	if err != nil {
		st.Close()
		return nil, err
	}
	return d, nil
}

func buildAdapters(cfg *config.Config, logger *slog.Logger) []sources.Adapter {
	var adapters []sources.Adapter

	if strings.TrimSpace(cfg.YouTube.APIKey) != "" {
		client, err := youtube.NewClient(cfg.YouTube)
		if err != nil {
			logger.Warn("video catalog unavailable", logging.Error(err))
		} else {
			adapters = append(adapters, client)
		}
	} else {
		logger.Info("youtube.api_key not set; skipping video catalog")
	}

	if strings.TrimSpace(cfg.PodcastIndex.APIKey) != "" {
		client, err := podcastindex.NewClient(cfg.PodcastIndex)
		if err != nil {
			logger.Warn("audio catalog unavailable", logging.Error(err))
		} else {
			adapters = append(adapters, client)
		}
	} else {
		logger.Info("podcastindex.api_key not set; skipping audio catalog")
	}

	return adapters
}

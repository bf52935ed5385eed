// Package discovery runs the end-to-end show discovery pipeline: query
// expansion, catalog search, dedup, scoring, contact extraction, and
// persistence, with live progress events along the way.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"showscout/internal/config"
	"showscout/internal/extractor"
	"showscout/internal/logging"
	"showscout/internal/progress"
	"showscout/internal/queryplan"
	"showscout/internal/registry"
	"showscout/internal/scoring"
	"showscout/internal/sources"
	"showscout/internal/store"
	"showscout/internal/workpool"
)

// ContactExtractor is the slice of the extractor the engine needs.
type ContactExtractor interface {
	Extract(ctx context.Context, input extractor.Input) extractor.Contact
}

// RunRequest describes one discovery run.
type RunRequest struct {
	Profile *store.Profile
	Topics  []string
	// RequireEmail drops candidates without a verified contact instead of
	// persisting them contactless.
	RequireEmail bool
	// DeepResearch widens the content sample and enables the website
	// scrape fallback in the extractor.
	DeepResearch bool
	// TargetOverride replaces the profile's target count when positive.
	TargetOverride int
}

// Summary is the aggregate outcome of a completed run.
type Summary struct {
	Discovered   int
	Target       int
	QueriesRun   int
	QueriesTotal int
	// Shows lists the persisted results in discovery order.
	Shows []*store.Show
}

// Engine wires the pipeline stages together. One engine serves many runs.
type Engine struct {
	store     *store.Store
	adapters  []sources.Adapter
	extractor ContactExtractor
	cfg       config.Discovery
	logger    *slog.Logger
}

// NewEngine constructs a discovery engine.
func NewEngine(st *store.Store, adapters []sources.Adapter, ex ContactExtractor, cfg config.Discovery, logger *slog.Logger) *Engine {
	return &Engine{
		store:     st,
		adapters:  adapters,
		extractor: ex,
		cfg:       cfg,
		logger:    logging.WithComponent(logger, "discovery"),
	}
}

// candidate is one admitted search hit awaiting the per-candidate stages.
type candidate struct {
	stub    sources.Stub
	adapter sources.Adapter
}

// Run executes the pipeline to natural termination: target reached,
// search budget exhausted, or context cancelled. Per-query and
// per-candidate failures are absorbed; only planner and persistence-layer
// failures surface as errors.
func (e *Engine) Run(ctx context.Context, request RunRequest, reporter progress.Reporter) (*Summary, error) {
	if request.Profile == nil {
		return nil, errors.New("discovery run requires a profile")
	}
	if reporter == nil {
		reporter = progress.Nop{}
	}

	queries, err := queryplan.Expand(request.Topics)
	if err != nil {
		return nil, err
	}
	if e.cfg.MaxQueries > 0 && len(queries) > e.cfg.MaxQueries {
		queries = queries[:e.cfg.MaxQueries]
	}

	target := e.resolveTarget(request)
	summary := &Summary{Target: target, QueriesTotal: len(queries)}
	reg := registry.New(e.store, request.Profile.ID)

	reporter.Publish(progress.Event{
		Type:         progress.EventStart,
		Message:      fmt.Sprintf("discovering shows for %s", strings.Join(request.Topics, ", ")),
		Target:       target,
		QueriesTotal: len(queries),
	})

	for i, query := range queries {
		if summary.Discovered >= target || ctx.Err() != nil {
			break
		}
		summary.QueriesRun = i + 1

		reporter.Publish(progress.Event{
			Type:         progress.EventSearching,
			Message:      query.Text,
			Discovered:   summary.Discovered,
			Target:       target,
			QueriesRun:   summary.QueriesRun,
			QueriesTotal: len(queries),
		})

		batch, err := e.collectCandidates(ctx, reg, query.Text)
		if err != nil {
			return nil, err
		}
		if len(batch) == 0 {
			continue
		}

		reporter.Publish(progress.Event{
			Type:       progress.EventAnalyzing,
			Message:    fmt.Sprintf("analyzing %d candidates", len(batch)),
			Discovered: summary.Discovered,
			Target:     target,
		})

		shows, _ := workpool.Run(ctx, e.cfg.ExtractionConcurrency, batch, func(ctx context.Context, cand candidate) (*store.Show, error) {
			return e.processCandidate(ctx, request, cand), nil
		})

		for _, show := range shows {
			if show == nil {
				continue
			}
			if summary.Discovered >= target {
				break
			}
			if err := e.store.CreateShow(ctx, show); err != nil {
				if errors.Is(err, store.ErrDuplicateShow) {
					continue
				}
				return nil, err
			}
			summary.Discovered++
			summary.Shows = append(summary.Shows, show)
			reporter.Publish(progress.Event{
				Type:       progress.EventFound,
				Discovered: summary.Discovered,
				Target:     target,
				Candidate: &progress.FoundCandidate{
					Name:     show.Name,
					Host:     show.Host,
					Platform: show.Platform,
					Audience: show.Audience,
					Score:    show.Score,
					Email:    progress.MaskEmail(show.Email),
				},
			})
		}
	}

	reporter.Publish(progress.Event{
		Type:         progress.EventComplete,
		Message:      fmt.Sprintf("discovered %d of %d shows", summary.Discovered, target),
		Discovered:   summary.Discovered,
		Target:       target,
		QueriesRun:   summary.QueriesRun,
		QueriesTotal: len(queries),
	})
	return summary, nil
}

func (e *Engine) resolveTarget(request RunRequest) int {
	if request.TargetOverride > 0 {
		return request.TargetOverride
	}
	if request.Profile.TargetCount > 0 {
		return request.Profile.TargetCount
	}
	if e.cfg.TargetCount > 0 {
		return e.cfg.TargetCount
	}
	return 10
}

// collectCandidates searches every adapter for one query and filters the
// hits through the registry. Adapter failures are logged and absorbed.
func (e *Engine) collectCandidates(ctx context.Context, reg *registry.Registry, query string) ([]candidate, error) {
	var batch []candidate
	for _, adapter := range e.adapters {
		stubs, err := adapter.Search(ctx, query)
		if err != nil {
			e.logger.Warn("catalog search failed",
				logging.String("platform", adapter.Platform()),
				logging.String("query", query),
				logging.Error(err),
			)
			continue
		}
		for _, stub := range stubs {
			admitted, err := reg.Admit(ctx, stub.SourceID, stub.PlatformURL, stub.FeedURL)
			if err != nil {
				return nil, err
			}
			if admitted {
				batch = append(batch, candidate{stub: stub, adapter: adapter})
			}
		}
	}
	return batch, nil
}

// processCandidate runs the per-candidate stages and returns a show ready
// to persist, or nil when any filter discards the candidate. All failures
// are absorbed at candidate granularity.
func (e *Engine) processCandidate(ctx context.Context, request RunRequest, cand candidate) *store.Show {
	stub := cand.stub
	details, err := cand.adapter.Details(ctx, stub.SourceID)
	if err != nil {
		e.logger.Debug("candidate details failed", logging.String("show", stub.Name), logging.Error(err))
		return nil
	}

	// Cheapest filter first: the audience floor runs before any content
	// is fetched.
	if request.Profile.MinAudience > 0 && details.Audience < int64(request.Profile.MinAudience) {
		return nil
	}

	limit := e.cfg.RecentContentLimit
	if request.DeepResearch && e.cfg.DeepContentLimit > limit {
		limit = e.cfg.DeepContentLimit
	}
	samples, err := cand.adapter.RecentContent(ctx, stub.SourceID, limit)
	if err != nil {
		e.logger.Debug("candidate content fetch failed", logging.String("show", stub.Name), logging.Error(err))
		return nil
	}

	result := scoring.Evaluate(samples)
	if request.Profile.GuestOnly && result.Score < e.cfg.GuestScoreThreshold {
		return nil
	}

	contact := e.extractor.Extract(ctx, extractor.Input{
		ShowName:     firstNonEmpty(stub.Name, details.Host),
		Host:         firstNonEmpty(details.Host, stub.Host),
		Description:  firstNonEmpty(details.Description, stub.Description),
		Samples:      samples,
		DirectEmail:  firstNonEmpty(details.Email, stub.Email),
		WebsiteURL:   firstNonEmpty(details.WebsiteURL, stub.WebsiteURL),
		DeepResearch: request.DeepResearch,
	})
	if request.RequireEmail && contact.Email == "" {
		return nil
	}

	return &store.Show{
		ProfileID:   request.Profile.ID,
		SourceID:    stub.SourceID,
		Platform:    cand.adapter.Platform(),
		Name:        stub.Name,
		Host:        firstNonEmpty(details.Host, stub.Host),
		Description: firstNonEmpty(details.Description, stub.Description),
		PlatformURL: firstNonEmpty(details.PlatformURL, stub.PlatformURL),
		FeedURL:     firstNonEmpty(details.FeedURL, stub.FeedURL),
		Email:       contact.Email,
		Audience:    details.Audience,
		Score:       result.Score,
		AvgViews:    result.AvgViews,
		Status:      store.StatusNew,
	}
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

package daemon_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"showscout/internal/api"
	"showscout/internal/config"
	"showscout/internal/daemon"
	"showscout/internal/discovery"
	"showscout/internal/extractor"
	"showscout/internal/logging"
	"showscout/internal/progress"
	"showscout/internal/quota"
	"showscout/internal/services/llm"
	"showscout/internal/sources"
	"showscout/internal/store"
	"showscout/internal/testsupport"
)

type fakeAdapter struct {
	stubs   []sources.Stub
	details map[string]*sources.Details
	content map[string][]sources.ContentSample
}

func (f *fakeAdapter) Platform() string { return store.PlatformVideo }

func (f *fakeAdapter) Search(context.Context, string) ([]sources.Stub, error) {
	return f.stubs, nil
}

func (f *fakeAdapter) Details(_ context.Context, sourceID string) (*sources.Details, error) {
	if details, ok := f.details[sourceID]; ok {
		return details, nil
	}
	return nil, errors.New("no details")
}

func (f *fakeAdapter) RecentContent(_ context.Context, sourceID string, limit int) ([]sources.ContentSample, error) {
	samples := f.content[sourceID]
	if len(samples) > limit {
		samples = samples[:limit]
	}
	return samples, nil
}

type noContact struct{}

func (noContact) Extract(context.Context, extractor.Input) extractor.Contact {
	return extractor.Contact{Method: extractor.MethodNone}
}

type fixture struct {
	client  *api.Client
	addr    string
	store   *store.Store
	profile *store.Profile
}

func testLogger() *slog.Logger { return logging.NewNop() }

// startDaemon brings up a full daemon on an ephemeral port and returns a
// client authenticated as the seeded user.
func startDaemon(t *testing.T, seedQuota int) fixture {
	t.Helper()

	cfg := testsupport.NewConfig(t)
	cfg.Paths.APIBind = "127.0.0.1:0"
	st := testsupport.MustOpenStore(t, cfg)
	_, profile := testsupport.SeedUser(t, st, "test-token", seedQuota)

	adapter := &fakeAdapter{
		stubs: []sources.Stub{{SourceID: "UC-beecast", Name: "BeeCast", PlatformURL: "https://www.youtube.com/channel/UC-beecast"}},
		details: map[string]*sources.Details{
			"UC-beecast": {Audience: 4200, Host: "Maya"},
		},
		content: map[string][]sources.ContentSample{
			"UC-beecast": {{Title: "Interview with a beekeeper", Views: 900}},
		},
	}
	engine := discovery.NewEngine(st, []sources.Adapter{adapter}, noContact{}, cfg.Discovery, nil)
	gatekeeper := quota.New(st, nil)
	llmClient := llm.NewClient(config.LLM{})

	d, err := daemon.New(cfg, st, engine, gatekeeper, llmClient, []sources.Adapter{adapter}, testLogger())
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("daemon.Start: %v", err)
	}
	t.Cleanup(d.Stop)

	addr := d.APIAddr()
	return fixture{
		client:  api.NewClient(addr, "test-token"),
		addr:    addr,
		store:   st,
		profile: profile,
	}
}

func TestDiscoverEndToEnd(t *testing.T) {
	fx := startDaemon(t, 50)

	var events []progress.Event
	err := fx.client.Discover(context.Background(), api.DiscoverRequest{Topics: []string{"beekeeping"}}, func(event progress.Event) {
		events = append(events, event)
	})
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(events) == 0 || events[0].Type != progress.EventStart {
		t.Fatalf("expected start event first, got %+v", events)
	}
	last := events[len(events)-1]
	if last.Type != progress.EventComplete || last.Discovered != 1 {
		t.Fatalf("unexpected final event: %+v", last)
	}

	shows, err := fx.store.ListShows(context.Background(), fx.profile.ID, store.ShowFilter{})
	if err != nil {
		t.Fatalf("ListShows: %v", err)
	}
	if len(shows) != 1 {
		t.Fatalf("expected 1 persisted show, got %d", len(shows))
	}
}

func TestDiscoverRejectsBadToken(t *testing.T) {
	fx := startDaemon(t, 50)
	bad := api.NewClient(fx.addr, "wrong-token")
	if err := bad.Discover(context.Background(), api.DiscoverRequest{Topics: []string{"x"}}, nil); err == nil {
		t.Fatal("expected unauthorized error")
	}
}

func TestDiscoverQuotaExhaustion(t *testing.T) {
	fx := startDaemon(t, 1)

	if err := fx.client.Discover(context.Background(), api.DiscoverRequest{Topics: []string{"beekeeping"}}, nil); err != nil {
		t.Fatalf("first run should be admitted: %v", err)
	}
	err := fx.client.Discover(context.Background(), api.DiscoverRequest{Topics: []string{"beekeeping"}}, nil)
	var quotaErr *api.QuotaExceededError
	if !errors.As(err, &quotaErr) {
		t.Fatalf("expected quota rejection, got %v", err)
	}
	if quotaErr.ResetAt.IsZero() {
		t.Fatal("quota rejection must carry a reset time")
	}
}

func TestDiscoverRequiresLLMForContactModes(t *testing.T) {
	fx := startDaemon(t, 50)
	err := fx.client.Discover(context.Background(), api.DiscoverRequest{
		Topics:       []string{"beekeeping"},
		RequireEmail: true,
	}, nil)
	if err == nil {
		t.Fatal("expected precondition failure without llm credentials")
	}
	// The rejection must not have consumed quota.
	state, err := fx.client.Quota(context.Background())
	if err != nil {
		t.Fatalf("Quota: %v", err)
	}
	if state.Used != 0 {
		t.Fatalf("config failure must not consume quota, used=%d", state.Used)
	}
}

func TestDiscoverRequiresTopics(t *testing.T) {
	fx := startDaemon(t, 50)
	if err := fx.client.Discover(context.Background(), api.DiscoverRequest{}, nil); err == nil {
		t.Fatal("expected validation error for empty topics")
	}
}

func TestQuotaEndpoint(t *testing.T) {
	fx := startDaemon(t, 50)

	before, err := fx.client.Quota(context.Background())
	if err != nil {
		t.Fatalf("Quota: %v", err)
	}
	if before.Used != 0 || before.Limit != 50 {
		t.Fatalf("unexpected quota: %+v", before)
	}

	if err := fx.client.Discover(context.Background(), api.DiscoverRequest{Topics: []string{"beekeeping"}}, nil); err != nil {
		t.Fatalf("Discover: %v", err)
	}
	after, err := fx.client.Quota(context.Background())
	if err != nil {
		t.Fatalf("Quota: %v", err)
	}
	if after.Used != 1 {
		t.Fatalf("expected used=1 after a run, got %d", after.Used)
	}
}

func TestProfileRoundTrip(t *testing.T) {
	fx := startDaemon(t, 50)

	updated, err := fx.client.UpdateProfile(context.Background(), api.Profile{
		Name:        "outreach",
		MinAudience: 1000,
		GuestOnly:   true,
		TargetCount: 5,
	})
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if updated.MinAudience != 1000 || !updated.GuestOnly || updated.TargetCount != 5 {
		t.Fatalf("unexpected updated profile: %+v", updated)
	}

	fetched, err := fx.client.Profile(context.Background())
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	if fetched.Name != "outreach" || fetched.MinAudience != 1000 {
		t.Fatalf("update not persisted: %+v", fetched)
	}
}

func TestShowsEndpointWithStats(t *testing.T) {
	fx := startDaemon(t, 50)

	if err := fx.client.Discover(context.Background(), api.DiscoverRequest{Topics: []string{"beekeeping"}}, nil); err != nil {
		t.Fatalf("Discover: %v", err)
	}
	response, err := fx.client.Shows(context.Background(), "", nil, true)
	if err != nil {
		t.Fatalf("Shows: %v", err)
	}
	if len(response.Shows) != 1 {
		t.Fatalf("expected 1 show, got %d", len(response.Shows))
	}
	if response.Stats == nil || response.Stats.Total != 1 {
		t.Fatalf("expected stats total 1, got %+v", response.Stats)
	}
}

func TestBatchDiscover(t *testing.T) {
	fx := startDaemon(t, 50)

	response, err := fx.client.DiscoverBatch(context.Background(), api.BatchDiscoverRequest{
		Runs: []api.DiscoverRequest{
			{Topics: []string{"beekeeping"}},
			{Topics: []string{"beekeeping"}},
		},
	})
	if err != nil {
		t.Fatalf("DiscoverBatch: %v", err)
	}
	if len(response.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(response.Results))
	}
	if response.Results[0].Discovered != 1 {
		t.Fatalf("first run should discover the show: %+v", response.Results[0])
	}
	// The second run hits the dedup check against persisted shows.
	if response.Results[1].Discovered != 0 {
		t.Fatalf("second run should discover nothing new: %+v", response.Results[1])
	}
}

func TestStatusEndpoint(t *testing.T) {
	fx := startDaemon(t, 50)

	status, err := fx.client.Status(context.Background())
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if !status.Running {
		t.Fatal("expected running daemon")
	}
	if len(status.Catalogs) != 1 || status.Catalogs[0] != store.PlatformVideo {
		t.Fatalf("unexpected catalogs: %v", status.Catalogs)
	}
	if status.LLMConfigured {
		t.Fatal("llm should be unconfigured in this fixture")
	}
}

func TestSecondInstanceRefused(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Paths.APIBind = "127.0.0.1:0"
	st := testsupport.MustOpenStore(t, cfg)
	testsupport.SeedUser(t, st, "test-token", 50)

	engine := discovery.NewEngine(st, nil, noContact{}, cfg.Discovery, nil)
	gatekeeper := quota.New(st, nil)
	llmClient := llm.NewClient(config.LLM{})

	first, err := daemon.New(cfg, st, engine, gatekeeper, llmClient, nil, testLogger())
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	if err := first.Start(context.Background()); err != nil {
		t.Fatalf("first Start: %v", err)
	}
	t.Cleanup(first.Stop)

	second, err := daemon.New(cfg, st, engine, gatekeeper, llmClient, nil, testLogger())
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	if err := second.Start(context.Background()); err == nil {
		second.Stop()
		t.Fatal("second instance must fail to start")
	}
}

package registry_test

import (
	"context"
	"testing"

	"showscout/internal/registry"
	"showscout/internal/store"
)

type fakeLookup struct {
	persisted map[string]*store.Show
	calls     int
}

func (f *fakeLookup) FindShowByKeys(ctx context.Context, profileID, sourceID, platformURL, feedURL string) (*store.Show, error) {
	f.calls++
	if show, ok := f.persisted[sourceID]; ok {
		return show, nil
	}
	for _, show := range f.persisted {
		if platformURL != "" && show.PlatformURL == platformURL {
			return show, nil
		}
		if feedURL != "" && show.FeedURL == feedURL {
			return show, nil
		}
	}
	return nil, nil
}

func TestAdmitFirstSightingWins(t *testing.T) {
	reg := registry.New(&fakeLookup{}, "profile-1")

	ok, err := reg.Admit(context.Background(), "UC1", "", "")
	if err != nil || !ok {
		t.Fatalf("first sighting should be admitted, got ok=%v err=%v", ok, err)
	}
	ok, err = reg.Admit(context.Background(), "UC1", "", "")
	if err != nil || ok {
		t.Fatalf("repeat sighting should be rejected, got ok=%v err=%v", ok, err)
	}
}

func TestAdmitRejectsPersistedShows(t *testing.T) {
	lookup := &fakeLookup{persisted: map[string]*store.Show{
		"UC1": {SourceID: "UC1"},
	}}
	reg := registry.New(lookup, "profile-1")

	ok, err := reg.Admit(context.Background(), "UC1", "", "")
	if err != nil {
		t.Fatalf("Admit: %v", err)
	}
	if ok {
		t.Fatal("persisted show must not be admitted")
	}
}

func TestAdmitRejectsPersistedByURL(t *testing.T) {
	lookup := &fakeLookup{persisted: map[string]*store.Show{
		"old-id": {SourceID: "old-id", FeedURL: "https://feeds.example.com/hive.xml"},
	}}
	reg := registry.New(lookup, "profile-1")

	ok, err := reg.Admit(context.Background(), "new-id", "", "https://feeds.example.com/hive.xml")
	if err != nil {
		t.Fatalf("Admit: %v", err)
	}
	if ok {
		t.Fatal("candidate sharing a persisted feed url must not be admitted")
	}
}

func TestAdmitSkipsLookupForRepeatSightings(t *testing.T) {
	lookup := &fakeLookup{}
	reg := registry.New(lookup, "profile-1")

	for range 3 {
		if _, err := reg.Admit(context.Background(), "UC1", "", ""); err != nil {
			t.Fatalf("Admit: %v", err)
		}
	}
	if lookup.calls != 1 {
		t.Fatalf("expected a single persisted lookup, got %d", lookup.calls)
	}
}

func TestAdmitEmptySourceID(t *testing.T) {
	reg := registry.New(&fakeLookup{}, "profile-1")
	ok, err := reg.Admit(context.Background(), "  ", "", "")
	if err != nil {
		t.Fatalf("Admit: %v", err)
	}
	if ok {
		t.Fatal("candidates without a source id are unidentifiable and must be rejected")
	}
}

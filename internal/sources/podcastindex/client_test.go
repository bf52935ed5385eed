package podcastindex_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"showscout/internal/config"
	"showscout/internal/sources/podcastindex"
)

func newTestClient(t *testing.T, handler http.Handler) *podcastindex.Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := podcastindex.NewClient(config.PodcastIndex{
		APIKey:            "key",
		APISecret:         "secret",
		BaseURL:           server.URL,
		TimeoutSeconds:    5,
		RequestsPerSecond: 1000,
	}, podcastindex.WithClock(func() time.Time { return time.Unix(1700000000, 0) }))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client
}

func TestNewClientRequiresCredentials(t *testing.T) {
	if _, err := podcastindex.NewClient(config.PodcastIndex{APIKey: "key"}); err == nil {
		t.Fatal("expected configuration error without secret")
	}
}

func TestSearchSetsAuthHeaders(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Auth-Key") != "key" {
			t.Errorf("missing X-Auth-Key header")
		}
		if r.Header.Get("X-Auth-Date") != "1700000000" {
			t.Errorf("unexpected X-Auth-Date %q", r.Header.Get("X-Auth-Date"))
		}
		// sha1("key" + "secret" + "1700000000")
		if r.Header.Get("Authorization") == "" {
			t.Errorf("missing Authorization header")
		}
		w.Write([]byte(`{"status":"true","feeds":[],"count":0}`))
	}))

	if _, err := client.Search(context.Background(), "beekeeping"); err != nil {
		t.Fatalf("Search: %v", err)
	}
}

func TestSearchReturnsFeedStubs(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search/byterm" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Write([]byte(`{"status":"true","count":2,"feeds":[
			{"id":42,"title":"Hive Talk","url":"https://feeds.example.com/hive.xml","link":"https://hivetalk.example.com","description":"Beekeeping interviews","ownerName":"May Berenbaum","ownerEmail":"may@hivetalk.example.com"},
			{"id":0,"title":"broken"}
		]}`))
	}))

	stubs, err := client.Search(context.Background(), "beekeeping podcast")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(stubs) != 1 {
		t.Fatalf("expected 1 stub, got %d", len(stubs))
	}
	stub := stubs[0]
	if stub.SourceID != "42" || stub.Name != "Hive Talk" {
		t.Fatalf("unexpected stub: %+v", stub)
	}
	if stub.FeedURL != "https://feeds.example.com/hive.xml" {
		t.Fatalf("unexpected feed url: %q", stub.FeedURL)
	}
	if stub.Email != "may@hivetalk.example.com" {
		t.Fatalf("unexpected email: %q", stub.Email)
	}
	if stub.Host != "May Berenbaum" {
		t.Fatalf("unexpected host: %q", stub.Host)
	}
}

func TestDetailsUsesSearchCache(t *testing.T) {
	var byFeedIDCalls int
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/search/byterm":
			w.Write([]byte(`{"status":"true","count":1,"feeds":[{"id":42,"title":"Hive Talk","url":"https://feeds.example.com/hive.xml","popularity":87,"ownerEmail":"may@hivetalk.example.com"}]}`))
		case "/podcasts/byfeedid":
			byFeedIDCalls++
			w.Write([]byte(`{"status":"true","feed":{"id":42,"title":"Hive Talk"}}`))
		default:
			t.Errorf("unexpected path %q", r.URL.Path)
		}
	}))

	if _, err := client.Search(context.Background(), "beekeeping"); err != nil {
		t.Fatalf("Search: %v", err)
	}
	details, err := client.Details(context.Background(), "42")
	if err != nil {
		t.Fatalf("Details: %v", err)
	}
	if byFeedIDCalls != 0 {
		t.Fatalf("expected cached lookup, got %d byfeedid calls", byFeedIDCalls)
	}
	if details.Audience != 87 {
		t.Fatalf("unexpected audience: %d", details.Audience)
	}
	if details.Email != "may@hivetalk.example.com" {
		t.Fatalf("unexpected email: %q", details.Email)
	}
}

func TestDetailsFallsBackToFeedLookup(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/podcasts/byfeedid" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if r.URL.Query().Get("id") != "99" {
			t.Errorf("unexpected id %q", r.URL.Query().Get("id"))
		}
		w.Write([]byte(`{"status":"true","feed":{"id":99,"title":"Cold Start","author":"Ada"}}`))
	}))

	details, err := client.Details(context.Background(), "99")
	if err != nil {
		t.Fatalf("Details: %v", err)
	}
	if details.Host != "Ada" {
		t.Fatalf("unexpected host: %q", details.Host)
	}
}

func TestDetailsNotFound(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"true","feed":{}}`))
	}))
	if _, err := client.Details(context.Background(), "404"); err == nil {
		t.Fatal("expected error for unknown feed")
	}
}

func TestRecentContentParsesFeed(t *testing.T) {
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	mux.HandleFunc("/podcasts/byfeedid", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"status":"true","feed":{"id":7,"title":"Hive Talk","url":"%s/feed.xml"}}`, server.URL)
	})
	mux.HandleFunc("/feed.xml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(`<?xml version="1.0"?>
<rss version="2.0"><channel><title>Hive Talk</title>
<item><title>Interview with a queen breeder</title><description>Guest episode</description></item>
<item><title>Winter prep</title><description>Solo episode</description></item>
<item><title>Swarm season</title><description>Solo episode</description></item>
</channel></rss>`))
	})

	client, err := podcastindex.NewClient(config.PodcastIndex{
		APIKey:            "key",
		APISecret:         "secret",
		BaseURL:           server.URL,
		TimeoutSeconds:    5,
		RequestsPerSecond: 1000,
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	samples, err := client.RecentContent(context.Background(), "7", 2)
	if err != nil {
		t.Fatalf("RecentContent: %v", err)
	}
	if len(samples) != 2 {
		t.Fatalf("expected limit to cap samples at 2, got %d", len(samples))
	}
	if samples[0].Title != "Interview with a queen breeder" {
		t.Fatalf("unexpected first sample: %+v", samples[0])
	}
}

func TestSearchSurfacesHTTPErrors(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	if _, err := client.Search(context.Background(), "anything"); err == nil {
		t.Fatal("expected error for non-200 response")
	}
}

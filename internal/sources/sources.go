package sources

import "context"

// Stub is the raw result of a catalog search, before detail enrichment.
// Podcast-index records often arrive with the publisher email and feed URL
// already attached; video-catalog stubs need a follow-up details call.
type Stub struct {
	SourceID    string
	Name        string
	Host        string
	Description string
	PlatformURL string
	FeedURL     string
	WebsiteURL  string
	Email       string
}

// Details carries the enrichment fetched per candidate.
type Details struct {
	Audience    int64
	Description string
	Host        string
	PlatformURL string
	FeedURL     string
	WebsiteURL  string
	Email       string
}

// ContentSample is one recent piece of content used for scoring and
// contact extraction.
type ContentSample struct {
	Title       string
	Description string
	Views       int64
}

// Adapter is the common capability both external catalogs are normalized
// behind. Implementations keep source-specific quirks out of the pipeline.
type Adapter interface {
	// Platform tags candidates from this adapter ("video" or "audio").
	Platform() string
	// Search returns raw candidate stubs for one expanded query.
	Search(ctx context.Context, query string) ([]Stub, error)
	// Details fetches full metadata for a stub.
	Details(ctx context.Context, sourceID string) (*Details, error)
	// RecentContent returns up to limit recent content samples.
	RecentContent(ctx context.Context, sourceID string, limit int) ([]ContentSample, error)
}

// Package api defines the transport payloads shared by the daemon's HTTP
// surface and the CLI client, plus the client itself.
package api

import "time"

// DiscoverRequest starts a discovery run.
type DiscoverRequest struct {
	Topics []string `json:"topics"`
	// RequireEmail drops candidates without a verified contact.
	RequireEmail bool `json:"requireEmail,omitempty"`
	// DeepResearch widens content sampling and enables the website
	// scrape fallback.
	DeepResearch bool `json:"deepResearch,omitempty"`
	// TargetCount overrides the profile's target for this run.
	TargetCount int `json:"targetCount,omitempty"`
}

// BatchDiscoverRequest runs several topic sets back to back.
type BatchDiscoverRequest struct {
	Runs []DiscoverRequest `json:"runs"`
}

// BatchRunResult is the aggregate outcome of one run within a batch.
type BatchRunResult struct {
	Topics     []string `json:"topics"`
	Discovered int      `json:"discovered"`
	Target     int      `json:"target"`
	QueriesRun int      `json:"queriesRun"`
	Error      string   `json:"error,omitempty"`
	Shows      []Show   `json:"shows,omitempty"`
}

// BatchDiscoverResponse wraps the batch results.
type BatchDiscoverResponse struct {
	Results []BatchRunResult `json:"results"`
}

// Show describes a persisted show in a transport-friendly format.
type Show struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Host        string   `json:"host,omitempty"`
	Platform    string   `json:"platform"`
	Description string   `json:"description,omitempty"`
	PlatformURL string   `json:"platformUrl,omitempty"`
	FeedURL     string   `json:"feedUrl,omitempty"`
	Email       string   `json:"email,omitempty"`
	Audience    int64    `json:"audience"`
	Score       int      `json:"score"`
	AvgViews    *float64 `json:"avgViews,omitempty"`
	Status      string   `json:"status"`
	CreatedAt   string   `json:"createdAt,omitempty"`
}

// ShowListResponse wraps a collection of shows.
type ShowListResponse struct {
	Shows []Show `json:"shows"`
	Stats *Stats `json:"stats,omitempty"`
}

// Stats aggregates persisted shows for one profile.
type Stats struct {
	Total        int            `json:"total"`
	ByPlatform   map[string]int `json:"byPlatform"`
	WithEmail    int            `json:"withEmail"`
	WithoutEmail int            `json:"withoutEmail"`
}

// Profile is the discovery configuration for a user.
type Profile struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name"`
	MinAudience int    `json:"minAudience"`
	GuestOnly   bool   `json:"guestOnly"`
	TargetCount int    `json:"targetCount"`
}

// Quota reports monthly usage for a user.
type Quota struct {
	Used    int       `json:"used"`
	Limit   int       `json:"limit"`
	ResetAt time.Time `json:"resetAt"`
}

// DaemonStatus aggregates daemon runtime information for API consumers.
type DaemonStatus struct {
	Running      bool   `json:"running"`
	PID          int    `json:"pid"`
	DatabasePath string `json:"databasePath"`
	LockFilePath string `json:"lockFilePath"`
	// Catalogs lists each configured source adapter platform.
	Catalogs []string `json:"catalogs"`
	// LLMConfigured reports whether contact extraction is available.
	LLMConfigured bool `json:"llmConfigured"`
}

// ErrorResponse is the uniform error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
	// ResetAt is set on quota rejections.
	ResetAt *time.Time `json:"resetAt,omitempty"`
}

package store

import "time"

// ShowStatus tracks what has happened to a persisted show after discovery.
type ShowStatus string

const (
	StatusNew       ShowStatus = "new"
	StatusContacted ShowStatus = "contacted"
	StatusArchived  ShowStatus = "archived"
)

// Platform identifies the catalog a show was discovered on.
const (
	PlatformVideo = "video"
	PlatformAudio = "audio"
)

// User is an account that owns profiles and a quota record.
type User struct {
	ID        string
	APIToken  string
	CreatedAt time.Time
}

// Profile holds the discovery configuration a run is scoped to.
type Profile struct {
	ID          string
	UserID      string
	Name        string
	MinAudience int
	GuestOnly   bool
	TargetCount int
	Active      bool
	CreatedAt   time.Time
}

// Show is a persisted discovery result.
type Show struct {
	ID          string
	ProfileID   string
	SourceID    string
	Platform    string
	Name        string
	Host        string
	Description string
	PlatformURL string
	FeedURL     string
	Email       string
	Audience    int64
	Score       int
	AvgViews    *float64
	Status      ShowStatus
	CreatedAt   time.Time
}

// QuotaState is the per-user monthly usage record.
type QuotaState struct {
	UserID       string
	Used         int
	MonthlyLimit int
	LastReset    time.Time
}

// ShowStats aggregates persisted shows for one profile.
type ShowStats struct {
	Total        int
	ByPlatform   map[string]int
	WithEmail    int
	WithoutEmail int
}

package api

import (
	"time"

	"showscout/internal/store"
)

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// FromShow converts a persisted show into its transport form.
func FromShow(show *store.Show) Show {
	if show == nil {
		return Show{}
	}
	return Show{
		ID:          show.ID,
		Name:        show.Name,
		Host:        show.Host,
		Platform:    show.Platform,
		Description: show.Description,
		PlatformURL: show.PlatformURL,
		FeedURL:     show.FeedURL,
		Email:       show.Email,
		Audience:    show.Audience,
		Score:       show.Score,
		AvgViews:    show.AvgViews,
		Status:      string(show.Status),
		CreatedAt:   formatTime(show.CreatedAt),
	}
}

// FromShows converts a slice of persisted shows.
func FromShows(shows []*store.Show) []Show {
	out := make([]Show, 0, len(shows))
	for _, show := range shows {
		out = append(out, FromShow(show))
	}
	return out
}

// FromStats converts persisted show statistics.
func FromStats(stats store.ShowStats) *Stats {
	return &Stats{
		Total:        stats.Total,
		ByPlatform:   stats.ByPlatform,
		WithEmail:    stats.WithEmail,
		WithoutEmail: stats.WithoutEmail,
	}
}

// FromProfile converts a persisted profile into its transport form.
func FromProfile(profile *store.Profile) Profile {
	if profile == nil {
		return Profile{}
	}
	return Profile{
		ID:          profile.ID,
		Name:        profile.Name,
		MinAudience: profile.MinAudience,
		GuestOnly:   profile.GuestOnly,
		TargetCount: profile.TargetCount,
	}
}

func formatTime(value time.Time) string {
	if value.IsZero() {
		return ""
	}
	return value.UTC().Format(dateTimeFormat)
}

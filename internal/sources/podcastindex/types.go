package podcastindex

import (
	"strconv"
	"strings"
)

type searchResponse struct {
	Status string       `json:"status"`
	Feeds  []feedRecord `json:"feeds"`
	Count  int          `json:"count"`
}

type feedResponse struct {
	Status string     `json:"status"`
	Feed   feedRecord `json:"feed"`
}

type feedRecord struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	Link        string `json:"link"`
	Description string `json:"description"`
	Author      string `json:"author"`
	OwnerName   string `json:"ownerName"`
	OwnerEmail  string `json:"ownerEmail"`
	Popularity  int64  `json:"popularity"`
	EpisodeCnt  int    `json:"episodeCount"`
}

func (f feedRecord) sourceID() string {
	return strconv.FormatInt(f.ID, 10)
}

func (f feedRecord) host() string {
	if owner := strings.TrimSpace(f.OwnerName); owner != "" {
		return owner
	}
	return strings.TrimSpace(f.Author)
}

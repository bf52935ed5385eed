// Package scoring derives a guest-likelihood score and an average
// engagement figure from a candidate's recent content samples.
package scoring

import (
	"math"
	"strings"

	"showscout/internal/sources"
)

// guestTerms are scanned against lowercased title+description text. A
// sample matches when any term appears; padded-space terms require word
// boundaries so "with" does not match "without".
var guestTerms = []string{
	"interview",
	"guest",
	"feat.",
	"featuring",
	"in conversation",
	" chat with ",
	" talks with ",
	" sits down with ",
	" with ",
	"q&a",
}

// minScoreWithContent is the floor applied whenever a candidate has any
// recent content at all, so active shows are never scored identically to
// shows we know nothing about.
const minScoreWithContent = 5

// Result carries the scorer's output for one candidate.
type Result struct {
	// Score is the guest-likelihood estimate in [0, 100]. Zero means no
	// content samples were available.
	Score int
	// AvgViews is the mean view count over samples with nonzero views,
	// or nil when no sample carried view data.
	AvgViews *float64
}

// Evaluate scores the given content samples. Callers pass the samples
// most-recent first; every sample provided participates in the score.
func Evaluate(samples []sources.ContentSample) Result {
	if len(samples) == 0 {
		return Result{}
	}

	matches := 0
	for _, sample := range samples {
		if sampleMatches(sample) {
			matches++
		}
	}

	score := int(math.Round(float64(matches) / float64(len(samples)) * 100))
	if score < minScoreWithContent {
		score = minScoreWithContent
	}

	return Result{
		Score:    score,
		AvgViews: averageViews(samples),
	}
}

func sampleMatches(sample sources.ContentSample) bool {
	text := " " + strings.ToLower(sample.Title+" "+sample.Description) + " "
	for _, term := range guestTerms {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}

func averageViews(samples []sources.ContentSample) *float64 {
	var sum, count int64
	for _, sample := range samples {
		if sample.Views > 0 {
			sum += sample.Views
			count++
		}
	}
	if count == 0 {
		return nil
	}
	avg := float64(sum) / float64(count)
	return &avg
}

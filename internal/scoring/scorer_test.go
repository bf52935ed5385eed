package scoring_test

import (
	"testing"

	"showscout/internal/scoring"
	"showscout/internal/sources"
)

func TestEvaluateNoContent(t *testing.T) {
	result := scoring.Evaluate(nil)
	if result.Score != 0 {
		t.Fatalf("expected zero score without content, got %d", result.Score)
	}
	if result.AvgViews != nil {
		t.Fatalf("expected nil average without content, got %v", *result.AvgViews)
	}
}

func TestEvaluateScoreIsMatchRatio(t *testing.T) {
	samples := []sources.ContentSample{
		{Title: "Interview with a master beekeeper"},
		{Title: "Guest episode: queen rearing"},
		{Title: "Hive inspection walkthrough"},
		{Title: "Winter feeding tips"},
	}
	result := scoring.Evaluate(samples)
	if result.Score != 50 {
		t.Fatalf("expected score 50, got %d", result.Score)
	}
}

func TestEvaluateFloorWithContent(t *testing.T) {
	samples := []sources.ContentSample{
		{Title: "Hive inspection walkthrough"},
		{Title: "Winter feeding tips"},
	}
	result := scoring.Evaluate(samples)
	if result.Score <= 0 {
		t.Fatalf("expected positive floor for active show, got %d", result.Score)
	}
	if result.Score >= 50 {
		t.Fatalf("floor should stay small, got %d", result.Score)
	}
}

func TestEvaluateWithRequiresWordBoundary(t *testing.T) {
	samples := []sources.ContentSample{
		{Title: "Beekeeping without gloves"},
	}
	result := scoring.Evaluate(samples)
	if result.Score != 5 {
		t.Fatalf("'without' must not count as a guest marker, got score %d", result.Score)
	}
}

func TestEvaluateMatchesDescriptions(t *testing.T) {
	samples := []sources.ContentSample{
		{Title: "Episode 12", Description: "Featuring Dr. May Berenbaum"},
	}
	result := scoring.Evaluate(samples)
	if result.Score != 100 {
		t.Fatalf("expected description match, got score %d", result.Score)
	}
}

func TestAverageViewsSkipsZeroes(t *testing.T) {
	samples := []sources.ContentSample{
		{Title: "a", Views: 1200},
		{Title: "b", Views: 0},
		{Title: "c", Views: 300},
	}
	result := scoring.Evaluate(samples)
	if result.AvgViews == nil {
		t.Fatal("expected average views")
	}
	if *result.AvgViews != 750 {
		t.Fatalf("expected average 750, got %v", *result.AvgViews)
	}
}

func TestAverageViewsNilWhenAllZero(t *testing.T) {
	samples := []sources.ContentSample{{Title: "a"}, {Title: "b"}}
	if result := scoring.Evaluate(samples); result.AvgViews != nil {
		t.Fatalf("expected nil average, got %v", *result.AvgViews)
	}
}

package main

import (
	"strings"
	"testing"

	"showscout/internal/progress"
)

func TestRenderDiscoverEvent(t *testing.T) {
	found := progress.Event{
		Type:       progress.EventFound,
		Discovered: 2,
		Target:     10,
		Candidate: &progress.FoundCandidate{
			Name:     "Garden Hour",
			Host:     "Rosa",
			Platform: "video",
			Audience: 9000,
			Score:    60,
			Email:    "r***@gardenhour.example",
		},
	}
	line := renderDiscoverEvent(found, false)
	for _, want := range []string{"Garden Hour", "host Rosa", "audience 9000", "score 60", "r***@gardenhour.example", "[2/10]"} {
		requireContains(t, line, want)
	}
	if strings.Contains(line, ansiGreen) {
		t.Fatal("colorize disabled must not emit ANSI codes")
	}

	complete := progress.Event{Type: progress.EventComplete, Message: "discovered 2 of 10 shows"}
	requireContains(t, renderDiscoverEvent(complete, false), "discovered 2 of 10 shows")

	failure := progress.Event{Type: progress.EventError, Err: "catalog unavailable"}
	requireContains(t, renderDiscoverEvent(failure, false), "catalog unavailable")
}

func TestDiscoverStreamsProgress(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"discover", "gardening"}, env.configPath)
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	requireContains(t, out, "start")
	requireContains(t, out, "Garden Hour")
	requireContains(t, out, "done")
}

func TestDiscoverJSONOutput(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"discover", "gardening", "--json", "-n", "1"}, env.configPath)
	if err != nil {
		t.Fatalf("discover --json: %v", err)
	}
	requireContains(t, out, `"type":"start"`)
	requireContains(t, out, `"type":"complete"`)
}

func TestDiscoverRequiresTopic(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, _, err := runCLI(t, []string{"discover"}, env.configPath); err == nil {
		t.Fatal("expected usage error without topics")
	}
}

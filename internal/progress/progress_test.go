package progress_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"showscout/internal/progress"
)

func TestMaskEmail(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"may@example.com", "m***@example.com"},
		{"j@example.com", "j***@example.com"},
		{"", ""},
		{"no-at-sign", "***"},
		{"@example.com", "***"},
	}
	for _, tc := range cases {
		if got := progress.MaskEmail(tc.in); got != tc.want {
			t.Errorf("MaskEmail(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNDJSONReporterWritesOneLinePerEvent(t *testing.T) {
	var buf bytes.Buffer
	reporter := progress.NewNDJSONReporter(&buf)

	reporter.Publish(progress.Event{Type: progress.EventStart, Target: 10})
	reporter.Publish(progress.Event{Type: progress.EventFound, Discovered: 1, Candidate: &progress.FoundCandidate{
		Name:  "Hive Talk",
		Email: "m***@hivetalk.example.com",
	}})

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), buf.String())
	}
	var first progress.Event
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("line 0 is not valid JSON: %v", err)
	}
	if first.Type != progress.EventStart || first.Target != 10 {
		t.Fatalf("unexpected first event: %+v", first)
	}
	var second progress.Event
	if err := json.Unmarshal([]byte(lines[1]), &second); err != nil {
		t.Fatalf("line 1 is not valid JSON: %v", err)
	}
	if second.Candidate == nil || second.Candidate.Name != "Hive Talk" {
		t.Fatalf("unexpected second event: %+v", second)
	}
}

type failingWriter struct {
	writes int
}

func (w *failingWriter) Write(p []byte) (int, error) {
	w.writes++
	return 0, errors.New("connection reset")
}

func TestNDJSONReporterSwallowsWriteErrors(t *testing.T) {
	writer := &failingWriter{}
	reporter := progress.NewNDJSONReporter(writer)

	reporter.Publish(progress.Event{Type: progress.EventStart})
	reporter.Publish(progress.Event{Type: progress.EventSearching})
	reporter.Publish(progress.Event{Type: progress.EventComplete})

	if !reporter.Failed() {
		t.Fatal("expected reporter to record the failure")
	}
	if writer.writes != 1 {
		t.Fatalf("expected writes to stop after the first failure, got %d", writer.writes)
	}
}

func TestCollectorFound(t *testing.T) {
	var collector progress.Collector
	collector.Publish(progress.Event{Type: progress.EventStart})
	collector.Publish(progress.Event{Type: progress.EventFound, Discovered: 1})
	collector.Publish(progress.Event{Type: progress.EventFound, Discovered: 2})
	collector.Publish(progress.Event{Type: progress.EventComplete, Discovered: 2})

	if got := len(collector.Found()); got != 2 {
		t.Fatalf("expected 2 found events, got %d", got)
	}
}

// Package progress defines the event stream a discovery run emits and
// the reporters that carry it to callers.
package progress

import (
	"strings"
	"time"
)

// EventType enumerates the run lifecycle events.
type EventType string

const (
	EventStart     EventType = "start"
	EventSearching EventType = "searching"
	EventAnalyzing EventType = "analyzing"
	EventFound     EventType = "found"
	EventComplete  EventType = "complete"
	EventError     EventType = "error"
)

// FoundCandidate is the per-show payload on a found event. Email is
// already masked; the full address only lives in the store.
type FoundCandidate struct {
	Name     string `json:"name"`
	Host     string `json:"host,omitempty"`
	Platform string `json:"platform"`
	Audience int64  `json:"audience"`
	Score    int    `json:"score"`
	Email    string `json:"email,omitempty"`
}

// Event is one NDJSON line on the progress stream.
type Event struct {
	Type         EventType       `json:"type"`
	Message      string          `json:"message,omitempty"`
	Discovered   int             `json:"discovered"`
	Target       int             `json:"target,omitempty"`
	QueriesRun   int             `json:"queries_run,omitempty"`
	QueriesTotal int             `json:"queries_total,omitempty"`
	Candidate    *FoundCandidate `json:"candidate,omitempty"`
	ResetAt      *time.Time      `json:"reset_at,omitempty"`
	Err          string          `json:"error,omitempty"`
}

// Reporter receives run events. Implementations must tolerate being
// called after the caller has gone away; a run never depends on its
// reporter succeeding.
type Reporter interface {
	Publish(event Event)
}

// Nop discards all events.
type Nop struct{}

func (Nop) Publish(Event) {}

// Collector accumulates events in memory for tests and batch runs.
type Collector struct {
	Events []Event
}

func (c *Collector) Publish(event Event) {
	c.Events = append(c.Events, event)
}

// Found returns the collected found events.
func (c *Collector) Found() []Event {
	var found []Event
	for _, event := range c.Events {
		if event.Type == EventFound {
			found = append(found, event)
		}
	}
	return found
}

// MaskEmail hides the local part of an address for display on the
// progress stream: "may@example.com" becomes "m***@example.com". Empty
// input stays empty.
func MaskEmail(email string) string {
	email = strings.TrimSpace(email)
	if email == "" {
		return ""
	}
	at := strings.Index(email, "@")
	if at <= 0 {
		return "***"
	}
	return email[:1] + "***" + email[at:]
}

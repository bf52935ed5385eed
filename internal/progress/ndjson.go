package progress

import (
	"encoding/json"
	"io"
	"net/http"
	"sync"
)

// NDJSONReporter writes one JSON object per line to an io.Writer,
// flushing after every event when the writer supports it. Write errors
// are recorded and all later events are dropped silently; a closed
// connection must never disturb the run that feeds it.
type NDJSONReporter struct {
	mu      sync.Mutex
	writer  io.Writer
	flusher http.Flusher
	failed  bool
}

// NewNDJSONReporter wraps the writer. If it also implements
// http.Flusher, each event is flushed to the client immediately.
func NewNDJSONReporter(writer io.Writer) *NDJSONReporter {
	reporter := &NDJSONReporter{writer: writer}
	if flusher, ok := writer.(http.Flusher); ok {
		reporter.flusher = flusher
	}
	return reporter
}

// Publish implements Reporter.
func (r *NDJSONReporter) Publish(event Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failed {
		return
	}
	line, err := json.Marshal(event)
	if err != nil {
		return
	}
	line = append(line, '\n')
	if _, err := r.writer.Write(line); err != nil {
		r.failed = true
		return
	}
	if r.flusher != nil {
		r.flusher.Flush()
	}
}

// Failed reports whether a write error has been observed.
func (r *NDJSONReporter) Failed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.failed
}

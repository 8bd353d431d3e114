package audit

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"sync"
	"time"
)

// Record is one command audit entry.
type Record struct {
	Timestamp time.Time `json:"ts"`
	Username  string    `json:"user"`
	Command   string    `json:"command"`
	Outcome   string    `json:"outcome"`
	Detail    string    `json:"detail,omitempty"`
}

// Trail is the in-memory command audit record with an optional JSONL mirror.
type Trail struct {
	mu      sync.Mutex
	records []Record
	mirror  io.Writer
	logger  *log.Logger
}

// NewTrail creates an empty trail. mirror may be nil.
func NewTrail(mirror io.Writer, logger *log.Logger) *Trail {
	if logger == nil {
		logger = log.Default()
	}
	return &Trail{mirror: mirror, logger: logger}
}

// Append adds a record to the trail.
func (t *Trail) Append(rec Record) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.records = append(t.records, rec)
	t.writeMirror(rec)
}

// Records returns a copy of the trail in append order.
func (t *Trail) Records() []Record {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]Record, len(t.records))
	copy(out, t.records)
	return out
}

// RecordsFor returns the records of one user.
func (t *Trail) RecordsFor(username string) []Record {
	t.mu.Lock()
	defer t.mu.Unlock()

	var out []Record
	for _, r := range t.records {
		if r.Username == username {
			out = append(out, r)
		}
	}
	return out
}

// Purge removes every in-memory record of username and returns how many were
// removed. The mirror is append-only and keeps them.
func (t *Trail) Purge(username string) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	kept := t.records[:0]
	removed := 0
	for _, r := range t.records {
		if r.Username == username {
			removed++
			continue
		}
		kept = append(kept, r)
	}
	for i := len(kept); i < len(t.records); i++ {
		t.records[i] = Record{}
	}
	t.records = kept
	return removed
}

// Len returns the number of records held.
func (t *Trail) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.records)
}

// writeMirror writes rec as one JSON line; caller holds t.mu
func (t *Trail) writeMirror(rec Record) {
	if t.mirror == nil {
		return
	}

	data, err := json.Marshal(rec)
	if err != nil {
		t.logger.Printf("audit: failed to marshal record: %v", err)
		return
	}
	if _, err := t.mirror.Write(append(data, '\n')); err != nil {
		t.logger.Printf("audit: failed to write record: %v", err)
	}
}

// String renders a record for status output.
func (r Record) String() string {
	return fmt.Sprintf("%s %s %s %s", r.Timestamp.Format(time.RFC3339), r.Username, r.Command, r.Outcome)
}

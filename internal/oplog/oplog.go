// Package oplog journals every deletion attempt to a JSONL file and
// keeps an in-memory tail of recent entries for the UI.
package oplog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"macsweep/internal/safety"
)

// Outcome describes how a single journal entry ended.
type Outcome string

const (
	// OutcomeDeleted means the path was removed from disk.
	OutcomeDeleted Outcome = "deleted"
	// OutcomeDryRun means the path would have been removed.
	OutcomeDryRun Outcome = "dry-run"
	// OutcomeSkipped means the policy gate held the path back.
	OutcomeSkipped Outcome = "skipped"
	// OutcomeFailed means the OS refused the removal.
	OutcomeFailed Outcome = "failed"
)

// Record is one journal line.
type Record struct {
	Time     time.Time       `json:"time"`
	Path     string          `json:"path"`
	Size     int64           `json:"size_bytes"`
	Level    safety.Level    `json:"level"`
	Category safety.Category `json:"category"`
	Outcome  Outcome         `json:"outcome"`
	DryRun   bool            `json:"dry_run,omitempty"`
	Detail   string          `json:"detail,omitempty"`
}

const (
	// maxJournalBytes triggers rotation of the journal file.
	maxJournalBytes = 10 << 20
	// tailCapacity bounds the in-memory record tail.
	tailCapacity = 512
)

var timeNow = time.Now

// Journal appends deletion records to a JSONL file. All methods are
// nil-safe so callers can run without a journal.
type Journal struct {
	mu   sync.Mutex
	file *os.File
	enc  *json.Encoder
	path string
	tail *RingBuffer[Record]
}

// DefaultPath returns the journal location under the user's config
// directory.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "macsweep", "deletions.jsonl")
}

// Open creates or appends to the journal at path, rotating first when
// the existing file is over the size limit.
func Open(path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create journal dir: %w", err)
	}

	if info, err := os.Stat(path); err == nil && info.Size() > maxJournalBytes {
		if err := os.Rename(path, path+".1"); err != nil {
			return nil, fmt.Errorf("rotate journal: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}

	return &Journal{
		file: f,
		enc:  json.NewEncoder(f),
		path: path,
		tail: NewRingBuffer[Record](tailCapacity),
	}, nil
}

// Path returns the journal file location.
func (j *Journal) Path() string {
	if j == nil {
		return ""
	}
	return j.path
}

// Record appends one entry. A zero Time is stamped with the current
// time. Write failures are swallowed; journaling never blocks cleanup.
func (j *Journal) Record(r Record) {
	if j == nil {
		return
	}
	if r.Time.IsZero() {
		r.Time = timeNow()
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	j.tail.Push(r)
	if j.enc != nil {
		_ = j.enc.Encode(r)
	}
}

// Recent returns up to n of the newest records from this session,
// oldest first.
func (j *Journal) Recent(n int) []Record {
	if j == nil {
		return nil
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.tail.Tail(n)
}

// Close flushes and closes the journal file.
func (j *Journal) Close() error {
	if j == nil {
		return nil
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.file == nil {
		return nil
	}
	err := j.file.Close()
	j.file = nil
	j.enc = nil
	return err
}

// ReadRecords loads the newest limit records from a journal file,
// oldest first. Lines that fail to decode are skipped. A limit <= 0
// loads everything.
func ReadRecords(path string, limit int) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var records []Record
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 1<<20)
	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		var r Record
		if err := json.Unmarshal(line, &r); err != nil {
			continue
		}
		records = append(records, r)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	if limit > 0 && len(records) > limit {
		records = records[len(records)-limit:]
	}
	return records, nil
}

// Stats aggregates journal records for reporting.
type Stats struct {
	Total      int
	Deleted    int
	DryRun     int
	Skipped    int
	Failed     int
	FreedBytes int64
}

// Summarize tallies records into Stats. FreedBytes counts deleted
// entries only; dry-run sizes are estimates, not reclaimed space.
func Summarize(records []Record) Stats {
	var s Stats
	s.Total = len(records)
	for _, r := range records {
		switch r.Outcome {
		case OutcomeDeleted:
			s.Deleted++
			s.FreedBytes += r.Size
		case OutcomeDryRun:
			s.DryRun++
		case OutcomeSkipped:
			s.Skipped++
		case OutcomeFailed:
			s.Failed++
		}
	}
	return s
}

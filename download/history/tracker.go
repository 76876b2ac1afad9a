// Package history records download runs as JSON files so past runs can be
// inspected after the fact.
package history

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultRetention is how many run records are kept on disk.
const DefaultRetention = 50

// Tracker persists run records under a history directory, one JSON file
// per run, pruning the oldest records beyond the retention limit.
type Tracker struct {
	dir       string
	retention int

	mu      sync.Mutex
	current *RunRecord
}

// NewTracker creates a tracker rooted at dir. A retention of zero or less
// disables pruning.
func NewTracker(dir string, retention int) (*Tracker, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory %s: %w", dir, err)
	}
	return &Tracker{dir: dir, retention: retention}, nil
}

// DefaultDir returns the history directory under the user's home, or one
// relative to the working directory when home cannot be determined.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".ytmusic-dl-history"
	}
	return filepath.Join(home, ".ytmusic-dl-history")
}

// StartRun begins a new run record and returns its id.
func (t *Tracker) StartRun(outputBase string) string {
	t.mu.Lock()
	defer t.mu.Unlock()

	runID := uuid.New().String()
	t.current = &RunRecord{
		RunID:      runID,
		StartedAt:  time.Now(),
		OutputBase: outputBase,
		State:      "running",
	}
	return runID
}

// RecordPlaylist appends a playlist outcome to the current run.
func (t *Tracker) RecordPlaylist(outcome PlaylistOutcome) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.current == nil {
		return
	}
	t.current.Playlists = append(t.current.Playlists, outcome)
}

// CompleteRun finalizes and saves the current run. State is one of
// completed, interrupted or error.
func (t *Tracker) CompleteRun(state, errMsg string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.current == nil {
		return nil
	}

	now := time.Now()
	t.current.CompletedAt = &now
	t.current.State = state
	t.current.Error = errMsg

	if err := t.save(t.current); err != nil {
		t.current = nil
		return err
	}
	t.current = nil

	if t.retention > 0 {
		if err := t.prune(); err != nil {
			log.Printf("WARN: history_prune_failed error=%v", err)
		}
	}
	return nil
}

// Get loads one run record by id.
func (t *Tracker) Get(runID string) (*RunRecord, error) {
	data, err := os.ReadFile(t.recordPath(runID))
	if err != nil {
		return nil, err
	}
	var record RunRecord
	if err := record.FromJSON(data); err != nil {
		return nil, fmt.Errorf("corrupt run record %s: %w", runID, err)
	}
	return &record, nil
}

// List returns all run records sorted newest first. Unreadable records are
// skipped.
func (t *Tracker) List() ([]*RunRecord, error) {
	entries, err := os.ReadDir(t.dir)
	if err != nil {
		return nil, err
	}

	var records []*RunRecord
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, "run_") || !strings.HasSuffix(name, ".json") {
			continue
		}
		record, err := t.Get(strings.TrimSuffix(strings.TrimPrefix(name, "run_"), ".json"))
		if err != nil {
			continue
		}
		records = append(records, record)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].StartedAt.After(records[j].StartedAt)
	})
	return records, nil
}

func (t *Tracker) recordPath(runID string) string {
	return filepath.Join(t.dir, fmt.Sprintf("run_%s.json", runID))
}

func (t *Tracker) save(record *RunRecord) error {
	data, err := record.ToJSON()
	if err != nil {
		return err
	}
	return os.WriteFile(t.recordPath(record.RunID), data, 0644)
}

func (t *Tracker) prune() error {
	records, err := t.List()
	if err != nil {
		return err
	}
	for _, record := range records[min(t.retention, len(records)):] {
		if err := os.Remove(t.recordPath(record.RunID)); err != nil {
			log.Printf("WARN: history_remove_failed run_id=%s error=%v", record.RunID, err)
		}
	}
	return nil
}

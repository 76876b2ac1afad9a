package history

import (
	"encoding/json"
	"time"
)

// PlaylistOutcome is the recorded result for one playlist in a run.
type PlaylistOutcome struct {
	URL        string `json:"url"`
	Title      string `json:"title"`
	Total      int    `json:"total"`
	Downloaded int    `json:"downloaded"`
	Skipped    int    `json:"skipped"`
	Errored    int    `json:"errored"`
}

// RunRecord is one completed download run.
type RunRecord struct {
	RunID       string            `json:"run_id"`
	StartedAt   time.Time         `json:"started_at"`
	CompletedAt *time.Time        `json:"completed_at,omitempty"`
	OutputBase  string            `json:"output_base"`
	State       string            `json:"state"` // completed, interrupted, error
	Playlists   []PlaylistOutcome `json:"playlists"`
	Error       string            `json:"error,omitempty"`
}

// Totals sums the per-playlist counters.
func (r *RunRecord) Totals() (downloaded, skipped, errored int) {
	for _, p := range r.Playlists {
		downloaded += p.Downloaded
		skipped += p.Skipped
		errored += p.Errored
	}
	return downloaded, skipped, errored
}

// ToJSON converts the record to indented JSON.
func (r *RunRecord) ToJSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// FromJSON fills the record from JSON bytes.
func (r *RunRecord) FromJSON(data []byte) error {
	return json.Unmarshal(data, r)
}

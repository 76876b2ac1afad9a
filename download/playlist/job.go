package playlist

import (
	"sync"
	"time"

	"github.com/rmedina/ytmusic-dl/download/audio"
)

// TrackStatus represents the processing state of a track entry.
type TrackStatus string

const (
	TrackStatusPending     TrackStatus = "pending"
	TrackStatusDownloading TrackStatus = "downloading"
	TrackStatusDownloaded  TrackStatus = "downloaded"
	TrackStatusSkipped     TrackStatus = "skipped"
	TrackStatusErrored     TrackStatus = "errored"
)

// Terminal reports whether the status is final.
func (s TrackStatus) Terminal() bool {
	switch s {
	case TrackStatusDownloaded, TrackStatusSkipped, TrackStatusErrored:
		return true
	default:
		return false
	}
}

// TrackEntry is one track in a playlist job. The terminal status is set
// exactly once; later transitions are ignored.
type TrackEntry struct {
	Index    int
	VideoID  string
	Title    string
	URL      string
	Status   TrackStatus
	Reason   audio.FailureClass
	FilePath string
	Attempts int

	mu sync.Mutex
}

func (e *TrackEntry) markDownloading() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.Status.Terminal() {
		e.Status = TrackStatusDownloading
	}
}

func (e *TrackEntry) markDownloaded(filePath string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.Status.Terminal() {
		return
	}
	e.Status = TrackStatusDownloaded
	e.FilePath = filePath
}

func (e *TrackEntry) markSkipped(reason audio.FailureClass) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.Status.Terminal() {
		return
	}
	e.Status = TrackStatusSkipped
	e.Reason = reason
}

func (e *TrackEntry) markErrored(reason audio.FailureClass) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.Status.Terminal() {
		return
	}
	e.Status = TrackStatusErrored
	e.Reason = reason
}

// GetStatus returns the current status.
func (e *TrackEntry) GetStatus() TrackStatus {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.Status
}

// Job is one playlist download request: source URL, derived destination
// folder, and the ordered track entries. Created per run, discarded after.
type Job struct {
	SourceURL   string
	Title       string
	FolderName  string
	OutputDir   string
	Entries     []*TrackEntry
	Unavailable int
}

// Summary holds the aggregate outcome of a playlist run.
// Downloaded + Skipped + Errored always equals Total.
type Summary struct {
	PlaylistTitle string        `json:"playlist_title"`
	Total         int           `json:"total"`
	Downloaded    int           `json:"downloaded"`
	Skipped       int           `json:"skipped"`
	Errored       int           `json:"errored"`
	Unavailable   int           `json:"unavailable"`
	BytesWritten  int64         `json:"bytes_written"`
	Elapsed       time.Duration `json:"elapsed"`

	// SkipReasons counts skips and errors per failure reason.
	SkipReasons map[string]int `json:"skip_reasons,omitempty"`
}

// Summarize computes the summary from the job's terminal entry states.
func (j *Job) Summarize(elapsed time.Duration, bytesWritten int64) Summary {
	s := Summary{
		PlaylistTitle: j.Title,
		Total:         len(j.Entries),
		Unavailable:   j.Unavailable,
		BytesWritten:  bytesWritten,
		Elapsed:       elapsed,
		SkipReasons:   make(map[string]int),
	}
	for _, entry := range j.Entries {
		switch entry.GetStatus() {
		case TrackStatusDownloaded:
			s.Downloaded++
		case TrackStatusSkipped:
			s.Skipped++
			s.SkipReasons[entry.Reason.Reason()]++
		case TrackStatusErrored:
			s.Errored++
			s.SkipReasons[entry.Reason.Reason()]++
		default:
			// Interrupted before a terminal state: counted as errored so
			// the summary still sums to the total entry count.
			s.Errored++
			s.SkipReasons["interrupted"]++
		}
	}
	return s
}

package playlist

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rmedina/ytmusic-dl/download/audio"
)

// Retry defaults. Transient failures are retried with exponential backoff;
// permanent failures are never retried.
const (
	DefaultMaxAttempts = 3
	DefaultRetryBase   = time.Second
	retryMultiplier    = 2
)

// Fetcher is the slice of the audio provider the orchestrator needs.
type Fetcher interface {
	FetchPlaylist(ctx context.Context, playlistURL string) (*audio.PlaylistInfo, error)
	DownloadTrack(ctx context.Context, trackURL, outputDir string) (string, error)
}

// Event is a progress notification for one track.
type Event struct {
	Index   int // 1-based track index
	Total   int
	Title   string
	Status  TrackStatus
	Attempt int
	Reason  audio.FailureClass
}

// ProgressFunc receives progress events during a playlist run.
type ProgressFunc func(Event)

// Orchestrator processes playlists sequentially, one track at a time.
// A single track's failure never aborts the playlist; only filesystem
// errors on the playlist folder do.
type Orchestrator struct {
	provider    Fetcher
	maxAttempts int
	retryBase   time.Duration
	progress    ProgressFunc
	preflight   func(trackCount int) error

	// wait is context-aware sleep, replaceable in tests.
	wait func(ctx context.Context, d time.Duration) error
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithProgress sets the progress callback.
func WithProgress(fn ProgressFunc) Option {
	return func(o *Orchestrator) { o.progress = fn }
}

// WithRetryPolicy overrides the retry attempt count and base delay.
func WithRetryPolicy(maxAttempts int, base time.Duration) Option {
	return func(o *Orchestrator) {
		if maxAttempts > 0 {
			o.maxAttempts = maxAttempts
		}
		if base > 0 {
			o.retryBase = base
		}
	}
}

// WithPreflight sets a check run after extraction, before any download.
// It receives the track count; a non-nil result aborts the playlist.
func WithPreflight(fn func(trackCount int) error) Option {
	return func(o *Orchestrator) { o.preflight = fn }
}

// NewOrchestrator creates a playlist orchestrator.
func NewOrchestrator(provider Fetcher, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		provider:    provider,
		maxAttempts: DefaultMaxAttempts,
		retryBase:   DefaultRetryBase,
		wait:        waitContext,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run downloads one playlist into a folder under baseDir named after the
// playlist title. It returns the job with terminal per-track states and the
// aggregate summary. The error is non-nil only for whole-playlist failures:
// extraction failure, filesystem errors on the folder, or cancellation.
func (o *Orchestrator) Run(ctx context.Context, playlistURL, baseDir string) (*Job, Summary, error) {
	start := time.Now()

	info, err := o.provider.FetchPlaylist(ctx, playlistURL)
	if err != nil {
		return nil, Summary{}, fmt.Errorf("failed to read playlist: %w", err)
	}

	job, err := buildJob(playlistURL, info, baseDir)
	if err != nil {
		return nil, Summary{}, err
	}

	if o.preflight != nil {
		if err := o.preflight(len(job.Entries)); err != nil {
			return nil, Summary{}, err
		}
	}

	if err := os.MkdirAll(job.OutputDir, 0755); err != nil {
		return nil, Summary{}, fmt.Errorf("failed to create playlist folder %s: %w", job.OutputDir, err)
	}

	log.Printf("INFO: playlist_start title=%q tracks=%d unavailable=%d dir=%s",
		job.Title, len(job.Entries), job.Unavailable, job.OutputDir)

	total := len(job.Entries)
	for _, entry := range job.Entries {
		// Cancellation stops before the next track's external invocation;
		// already-completed tracks stay on disk.
		if err := ctx.Err(); err != nil {
			summary := job.Summarize(time.Since(start), bytesWritten(job))
			return job, summary, err
		}

		entry.markDownloading()
		o.notify(Event{Index: entry.Index, Total: total, Title: entry.Title, Status: TrackStatusDownloading, Attempt: entry.Attempts + 1})

		if err := o.processEntry(ctx, entry, job.OutputDir); err != nil {
			// Only cancellation propagates from a single entry.
			summary := job.Summarize(time.Since(start), bytesWritten(job))
			return job, summary, err
		}

		o.notify(Event{Index: entry.Index, Total: total, Title: entry.Title, Status: entry.GetStatus(), Attempt: entry.Attempts, Reason: entry.Reason})
	}

	summary := job.Summarize(time.Since(start), bytesWritten(job))
	log.Printf("INFO: playlist_complete title=%q downloaded=%d skipped=%d errored=%d elapsed=%s",
		job.Title, summary.Downloaded, summary.Skipped, summary.Errored, summary.Elapsed.Round(time.Second))
	return job, summary, nil
}

// processEntry downloads one track with bounded retries. Returns an error
// only when the context is cancelled.
func (o *Orchestrator) processEntry(ctx context.Context, entry *TrackEntry, outputDir string) error {
	delay := o.retryBase
	for attempt := 1; attempt <= o.maxAttempts; attempt++ {
		entry.Attempts = attempt

		path, err := o.provider.DownloadTrack(ctx, entry.URL, outputDir)
		if err == nil {
			entry.markDownloaded(path)
			log.Printf("INFO: track_downloaded index=%d title=%q path=%s attempts=%d", entry.Index, entry.Title, path, attempt)
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		class := audio.ClassifyError(err)
		if !class.Transient() {
			entry.markSkipped(class)
			log.Printf("INFO: track_skipped index=%d title=%q reason=%s", entry.Index, entry.Title, class)
			return nil
		}

		if attempt < o.maxAttempts {
			log.Printf("WARN: track_retry index=%d title=%q attempt=%d max=%d wait=%s error=%v",
				entry.Index, entry.Title, attempt, o.maxAttempts, delay, err)
			if waitErr := o.wait(ctx, delay); waitErr != nil {
				return waitErr
			}
			delay *= retryMultiplier
			continue
		}

		entry.markErrored(class)
		log.Printf("ERROR: track_failed index=%d title=%q attempts=%d reason=%s error=%v",
			entry.Index, entry.Title, attempt, class, err)
	}
	return nil
}

func (o *Orchestrator) notify(ev Event) {
	if o.progress != nil {
		o.progress(ev)
	}
}

// buildJob converts extracted playlist metadata into a Job rooted under
// baseDir, rejecting folder names that would escape it.
func buildJob(playlistURL string, info *audio.PlaylistInfo, baseDir string) (*Job, error) {
	title := info.Title
	if title == "" {
		title = info.ID
	}
	folder := SafeFolderName(title, "Playlist")

	outputDir := filepath.Join(baseDir, folder)
	cleanBase := filepath.Clean(baseDir)
	if rel, err := filepath.Rel(cleanBase, outputDir); err != nil || strings.HasPrefix(rel, "..") {
		return nil, fmt.Errorf("unsafe playlist folder name %q", folder)
	}

	job := &Job{
		SourceURL:   playlistURL,
		Title:       title,
		FolderName:  folder,
		OutputDir:   outputDir,
		Unavailable: info.Unavailable,
	}
	for i, entry := range info.Entries {
		title := entry.Title
		if title == "" {
			title = entry.ID
		}
		job.Entries = append(job.Entries, &TrackEntry{
			Index:   i + 1,
			VideoID: entry.ID,
			Title:   title,
			URL:     entry.WatchURL(),
			Status:  TrackStatusPending,
		})
	}
	return job, nil
}

// bytesWritten sums file sizes of downloaded entries.
func bytesWritten(job *Job) int64 {
	var total int64
	for _, entry := range job.Entries {
		if entry.GetStatus() != TrackStatusDownloaded || entry.FilePath == "" {
			continue
		}
		if fi, err := os.Stat(entry.FilePath); err == nil {
			total += fi.Size()
		}
	}
	return total
}

func waitContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Package download orchestrates full download runs: playlist extraction,
// sequential track downloads, playlist files, and run history.
package download

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/rmedina/ytmusic-dl/download/config"
	"github.com/rmedina/ytmusic-dl/download/history"
	"github.com/rmedina/ytmusic-dl/download/logging"
	"github.com/rmedina/ytmusic-dl/download/platform"
	"github.com/rmedina/ytmusic-dl/download/playlist"
)

// Target is one playlist to download. M3U overrides the configured
// generate_m3u flag for this playlist when non-nil.
type Target struct {
	URL string
	M3U *bool
}

// TargetsFromURLs wraps plain URLs as targets with no per-playlist overrides.
func TargetsFromURLs(urls []string) []Target {
	targets := make([]Target, len(urls))
	for i, url := range urls {
		targets[i] = Target{URL: url}
	}
	return targets
}

// PlaylistResult is the outcome of one playlist within a run.
type PlaylistResult struct {
	URL     string
	Summary playlist.Summary
	M3UPath string
	Err     error // playlist-level failure (extraction, filesystem)
}

// RunSummary aggregates a whole download run.
type RunSummary struct {
	RunID       string
	OutputBase  string
	Playlists   []PlaylistResult
	Downloaded  int
	Skipped     int
	Errored     int
	Failed      int // playlists that failed before any track was processed
	Elapsed     time.Duration
	Interrupted bool
}

// Service runs download requests end to end. It processes playlists
// strictly one at a time.
type Service struct {
	cfg          *config.Config
	base         string
	orchestrator *playlist.Orchestrator
	tracker      *history.Tracker
	runLog       *logging.Logger
}

// NewService creates the run service. tracker and runLog may be nil, which
// disables history and file logging respectively.
func NewService(cfg *config.Config, provider playlist.Fetcher, tracker *history.Tracker, runLog *logging.Logger, progress playlist.ProgressFunc) (*Service, error) {
	base, err := config.ExpandPath(cfg.OutputBase)
	if err != nil {
		return nil, fmt.Errorf("invalid output base %q: %w", cfg.OutputBase, err)
	}
	opts := []playlist.Option{
		playlist.WithPreflight(func(trackCount int) error {
			return platform.EnsureSpace(base, trackCount)
		}),
	}
	if progress != nil {
		opts = append(opts, playlist.WithProgress(progress))
	}
	return &Service{
		cfg:          cfg,
		base:         base,
		orchestrator: playlist.NewOrchestrator(provider, opts...),
		tracker:      tracker,
		runLog:       runLog,
	}, nil
}

// Base returns the expanded output base directory.
func (s *Service) Base() string {
	return s.base
}

// Run downloads every target playlist into the configured output base.
// Target URLs must already be normalized. A playlist failure is recorded
// and the run moves on; only cancellation stops the run early.
func (s *Service) Run(ctx context.Context, targets []Target) (*RunSummary, error) {
	if len(targets) == 0 {
		return nil, fmt.Errorf("no playlists to download")
	}

	base := s.base
	start := time.Now()

	summary := &RunSummary{OutputBase: base}
	if s.tracker != nil {
		summary.RunID = s.tracker.StartRun(base)
	}
	s.logInfo(fmt.Sprintf("run started: %d playlists into %s", len(targets), base))

	for _, target := range targets {
		if ctx.Err() != nil {
			summary.Interrupted = true
			break
		}

		result := s.runPlaylist(ctx, target, base)
		summary.Playlists = append(summary.Playlists, result)
		s.record(result)

		if result.Err != nil {
			if errors.Is(result.Err, context.Canceled) || errors.Is(result.Err, context.DeadlineExceeded) {
				// Tracks finished before the interrupt still count.
				summary.Downloaded += result.Summary.Downloaded
				summary.Skipped += result.Summary.Skipped
				summary.Errored += result.Summary.Errored
				summary.Interrupted = true
				break
			}
			summary.Failed++
			continue
		}
		summary.Downloaded += result.Summary.Downloaded
		summary.Skipped += result.Summary.Skipped
		summary.Errored += result.Summary.Errored
	}

	summary.Elapsed = time.Since(start)
	s.finish(summary)
	return summary, nil
}

func (s *Service) runPlaylist(ctx context.Context, target Target, base string) PlaylistResult {
	url := target.URL
	result := PlaylistResult{URL: url}

	job, sum, err := s.orchestrator.Run(ctx, url, base)
	result.Summary = sum
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		result.Err = err
		log.Printf("ERROR: playlist_failed url=%s error=%v", url, err)
		if s.runLog != nil {
			s.runLog.ErrorWithFields("playlist failed", map[string]any{"url": url}, err)
		}
		return result
	}
	if err != nil {
		// Cancelled mid-playlist: keep the partial summary.
		result.Err = err
	}

	wantM3U := s.cfg.GenerateM3U
	if target.M3U != nil {
		wantM3U = *target.M3U
	}
	if job != nil && wantM3U && sum.Downloaded > 0 {
		m3uPath, m3uErr := playlist.WriteM3U(job.OutputDir)
		if m3uErr != nil {
			log.Printf("WARN: m3u_failed dir=%s error=%v", job.OutputDir, m3uErr)
		} else {
			result.M3UPath = m3uPath
		}
	}

	if s.runLog != nil {
		s.runLog.InfoWithFields("playlist complete", map[string]any{
			"url":        url,
			"title":      sum.PlaylistTitle,
			"downloaded": sum.Downloaded,
			"skipped":    sum.Skipped,
			"errored":    sum.Errored,
		})
	}
	return result
}

func (s *Service) record(result PlaylistResult) {
	if s.tracker == nil {
		return
	}
	s.tracker.RecordPlaylist(history.PlaylistOutcome{
		URL:        result.URL,
		Title:      result.Summary.PlaylistTitle,
		Total:      result.Summary.Total,
		Downloaded: result.Summary.Downloaded,
		Skipped:    result.Summary.Skipped,
		Errored:    result.Summary.Errored,
	})
}

func (s *Service) finish(summary *RunSummary) {
	state := "completed"
	switch {
	case summary.Interrupted:
		state = "interrupted"
	case summary.Failed == len(summary.Playlists) && summary.Failed > 0:
		state = "error"
	}

	log.Printf("INFO: run_complete state=%s downloaded=%d skipped=%d errored=%d failed_playlists=%d elapsed=%s",
		state, summary.Downloaded, summary.Skipped, summary.Errored, summary.Failed, summary.Elapsed.Round(time.Second))
	s.logInfo(fmt.Sprintf("run %s: %d downloaded, %d skipped, %d errored", state, summary.Downloaded, summary.Skipped, summary.Errored))

	if s.tracker != nil {
		if err := s.tracker.CompleteRun(state, ""); err != nil {
			log.Printf("WARN: history_save_failed error=%v", err)
		}
	}
}

func (s *Service) logInfo(message string) {
	if s.runLog != nil {
		s.runLog.Info(message)
	}
}

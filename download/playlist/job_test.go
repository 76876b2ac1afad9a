package playlist

import (
	"testing"
	"time"

	"github.com/rmedina/ytmusic-dl/download/audio"
)

func TestTrackStatusTerminal(t *testing.T) {
	terminal := []TrackStatus{TrackStatusDownloaded, TrackStatusSkipped, TrackStatusErrored}
	for _, s := range terminal {
		if !s.Terminal() {
			t.Errorf("status %s should be terminal", s)
		}
	}
	for _, s := range []TrackStatus{TrackStatusPending, TrackStatusDownloading} {
		if s.Terminal() {
			t.Errorf("status %s should not be terminal", s)
		}
	}
}

func TestTrackEntryTerminalStateSetOnce(t *testing.T) {
	entry := &TrackEntry{Index: 1, Title: "Track", Status: TrackStatusPending}

	entry.markDownloading()
	entry.markSkipped(audio.FailurePrivate)
	if entry.GetStatus() != TrackStatusSkipped {
		t.Fatalf("status = %s, expected skipped", entry.GetStatus())
	}

	// Later transitions must not overwrite the terminal state.
	entry.markDownloaded("/tmp/track.mp3")
	entry.markErrored(audio.FailureNetwork)
	entry.markDownloading()
	if entry.GetStatus() != TrackStatusSkipped {
		t.Errorf("status = %s, terminal state was overwritten", entry.GetStatus())
	}
	if entry.Reason != audio.FailurePrivate {
		t.Errorf("reason = %s, expected %s", entry.Reason, audio.FailurePrivate)
	}
	if entry.FilePath != "" {
		t.Errorf("file path = %q, expected empty for a skipped track", entry.FilePath)
	}
}

func TestSummarizeCountsSumToTotal(t *testing.T) {
	job := &Job{
		Title:       "Mix",
		Unavailable: 2,
		Entries: []*TrackEntry{
			{Index: 1, Status: TrackStatusDownloaded},
			{Index: 2, Status: TrackStatusDownloaded},
			{Index: 3, Status: TrackStatusSkipped, Reason: audio.FailurePrivate},
			{Index: 4, Status: TrackStatusErrored, Reason: audio.FailureNetwork},
			{Index: 5, Status: TrackStatusPending}, // interrupted mid-run
		},
	}

	s := job.Summarize(90*time.Second, 1024)

	if s.Total != 5 {
		t.Errorf("total = %d, expected 5", s.Total)
	}
	if got := s.Downloaded + s.Skipped + s.Errored; got != s.Total {
		t.Errorf("downloaded+skipped+errored = %d, expected %d", got, s.Total)
	}
	if s.Downloaded != 2 || s.Skipped != 1 || s.Errored != 2 {
		t.Errorf("counts = %d/%d/%d, expected 2/1/2", s.Downloaded, s.Skipped, s.Errored)
	}
	if s.Unavailable != 2 {
		t.Errorf("unavailable = %d, expected 2", s.Unavailable)
	}
	if s.SkipReasons["private video"] != 1 {
		t.Errorf("private skip reason count = %d, expected 1", s.SkipReasons["private video"])
	}
	if s.SkipReasons["interrupted"] != 1 {
		t.Errorf("interrupted count = %d, expected 1", s.SkipReasons["interrupted"])
	}
	if s.BytesWritten != 1024 {
		t.Errorf("bytes written = %d, expected 1024", s.BytesWritten)
	}
}

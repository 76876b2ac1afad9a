package audio

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// writeFakeTool writes an executable shell script standing in for yt-dlp.
func writeFakeTool(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake tool scripts require a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "yt-dlp")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0755); err != nil {
		t.Fatalf("failed to write fake tool: %v", err)
	}
	return path
}

func newTestProvider(t *testing.T, script string) *Provider {
	t.Helper()
	provider, err := NewProvider(&Config{
		OutputFormat: "mp3",
		Bitrate:      "192",
		BinaryPath:   writeFakeTool(t, script),
	})
	if err != nil {
		t.Fatalf("NewProvider failed: %v", err)
	}
	return provider
}

func TestFetchPlaylist(t *testing.T) {
	script := `cat <<'EOF'
{"id":"PLabc","title":"Road Trip","uploader":"Me","entries":[
 {"id":"aaaaaaaaaaa","title":"First Song","url":"https://www.youtube.com/watch?v=aaaaaaaaaaa"},
 {"id":"bbbbbbbbbbb","title":"Second Song"},
 null,
 {"title":""}
]}
EOF`
	provider := newTestProvider(t, script)

	info, err := provider.FetchPlaylist(context.Background(), "https://www.youtube.com/playlist?list=PLabc")
	if err != nil {
		t.Fatalf("FetchPlaylist failed: %v", err)
	}
	if info.Title != "Road Trip" {
		t.Errorf("Expected title Road Trip, got %s", info.Title)
	}
	if len(info.Entries) != 2 {
		t.Fatalf("Expected 2 usable entries, got %d", len(info.Entries))
	}
	if info.Unavailable != 2 {
		t.Errorf("Expected 2 unavailable entries, got %d", info.Unavailable)
	}
	if got := info.Entries[1].WatchURL(); got != "https://www.youtube.com/watch?v=bbbbbbbbbbb" {
		t.Errorf("WatchURL built from id = %s", got)
	}
}

func TestFetchPlaylist_ToolFailure(t *testing.T) {
	provider := newTestProvider(t, `echo "ERROR: Unsupported URL" >&2; exit 1`)

	_, err := provider.FetchPlaylist(context.Background(), "https://example.com/nope")
	if err == nil {
		t.Fatal("Expected error from failing tool")
	}
	var extractErr *ExtractError
	if !errors.As(err, &extractErr) {
		t.Errorf("Expected *ExtractError, got %T", err)
	}
}

func TestDownloadTrack(t *testing.T) {
	outDir := t.TempDir()
	target := filepath.Join(outDir, "First_Song.mp3")
	script := fmt.Sprintf("printf 'audio' > %s\necho %s\n", target, target)
	provider := newTestProvider(t, script)

	path, err := provider.DownloadTrack(context.Background(), "https://www.youtube.com/watch?v=aaaaaaaaaaa", outDir)
	if err != nil {
		t.Fatalf("DownloadTrack failed: %v", err)
	}
	if path != target {
		t.Errorf("Expected path %s, got %s", target, path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("Downloaded file missing: %v", err)
	}
}

func TestDownloadTrack_FailureCarriesOutput(t *testing.T) {
	provider := newTestProvider(t, `echo "ERROR: Private video. Sign in if you've been granted access" >&2; exit 1`)

	_, err := provider.DownloadTrack(context.Background(), "https://www.youtube.com/watch?v=ccccccccccc", t.TempDir())
	if err == nil {
		t.Fatal("Expected error from failing tool")
	}
	var dlErr *DownloadError
	if !errors.As(err, &dlErr) {
		t.Fatalf("Expected *DownloadError, got %T", err)
	}
	if ClassifyError(err) != FailurePrivate {
		t.Errorf("Expected failure classified as private, got %s", ClassifyError(err))
	}
}

func TestDownloadTrack_Cancelled(t *testing.T) {
	provider := newTestProvider(t, `sleep 5`)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := provider.DownloadTrack(ctx, "https://www.youtube.com/watch?v=ddddddddddd", t.TempDir())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestLastNonEmptyLine(t *testing.T) {
	cases := map[string]string{
		"one\ntwo\n":        "two",
		"one\n\n  \n":       "one",
		"":                  "",
		"  /a/b.mp3  \n\n":  "/a/b.mp3",
		"warn\n/a/b.mp3\n ": "/a/b.mp3",
	}
	for input, want := range cases {
		if got := lastNonEmptyLine(input); got != want {
			t.Errorf("lastNonEmptyLine(%q) = %q, want %q", input, got, want)
		}
	}
}

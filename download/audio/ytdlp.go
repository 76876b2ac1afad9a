package audio

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// PlaylistEntry is one track reference inside a playlist, as reported by the
// external tool's flat extraction.
type PlaylistEntry struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	URL      string  `json:"url"`
	Duration float64 `json:"duration"`
	Uploader string  `json:"uploader"`
}

// WatchURL returns a canonical watch URL for the entry. Flat extraction may
// report a URL directly; otherwise one is built from the 11-character video
// id the same way the site does.
func (e PlaylistEntry) WatchURL() string {
	if e.URL != "" {
		return e.URL
	}
	if len(e.ID) == 11 {
		return fmt.Sprintf("https://www.youtube.com/watch?v=%s", e.ID)
	}
	return e.ID
}

// Usable reports whether the entry carries enough information to attempt a
// download. Deleted and terminated-account entries come back hollow.
func (e PlaylistEntry) Usable() bool {
	return e.ID != "" || e.URL != ""
}

// PlaylistInfo is playlist-level metadata plus the usable entries.
type PlaylistInfo struct {
	ID          string
	Title       string
	Uploader    string
	Entries     []PlaylistEntry
	Unavailable int // entries dropped because they carried no id/title/url
}

// rawPlaylist mirrors the tool's --dump-single-json output.
type rawPlaylist struct {
	ID       string           `json:"id"`
	Title    string           `json:"title"`
	Uploader string           `json:"uploader"`
	Entries  []*PlaylistEntry `json:"entries"`
}

// FetchPlaylist extracts playlist metadata without downloading anything.
// Entries the extractor could not resolve are counted, not fatal.
func (p *Provider) FetchPlaylist(ctx context.Context, playlistURL string) (*PlaylistInfo, error) {
	args := []string{
		"--quiet",
		"--no-warnings",
		"--ignore-errors",
		"--flat-playlist",
		"--dump-single-json",
		playlistURL,
	}

	cmd := exec.CommandContext(ctx, p.binary, args...)
	output, err := cmd.Output()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &ExtractError{
			Message:  fmt.Sprintf("yt-dlp playlist extraction failed: %s", toolStderr(err)),
			Original: err,
		}
	}

	var raw rawPlaylist
	if err := json.Unmarshal(output, &raw); err != nil {
		return nil, &ExtractError{Message: "failed to parse yt-dlp playlist output", Original: err}
	}

	info := &PlaylistInfo{
		ID:       raw.ID,
		Title:    raw.Title,
		Uploader: raw.Uploader,
	}
	for _, entry := range raw.Entries {
		if entry == nil || !entry.Usable() {
			info.Unavailable++
			continue
		}
		info.Entries = append(info.Entries, *entry)
	}
	return info, nil
}

// DownloadTrack fetches and transcodes a single track into outputDir,
// returning the final file path. The tool performs extraction, transcoding
// (via ffmpeg) and metadata/thumbnail embedding; this wrapper only shapes
// arguments and interprets the outcome.
func (p *Provider) DownloadTrack(ctx context.Context, trackURL, outputDir string) (string, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", &DownloadError{
			Message:  fmt.Sprintf("failed to create output directory %s", outputDir),
			Original: err,
		}
	}

	args := []string{
		"--quiet",
		"--no-warnings",
		"--no-playlist",
		"--format", "bestaudio/best",
		"--extract-audio",
		"--audio-format", p.config.OutputFormat,
		"--audio-quality", p.config.Bitrate + "K",
		"--embed-metadata",
		"--embed-thumbnail",

		// FAT/car-stereo friendly names.
		"--restrict-filenames",
		"--windows-filenames",
		"--trim-filenames", fmt.Sprintf("%d", p.config.MaxNameLength),

		// Fragment-level robustness; whole-track retries are handled by
		// the orchestrator so failures can be classified between attempts.
		"--retries", "1",
		"--fragment-retries", "5",

		"--paths", "home:" + outputDir,
		"--output", "%(title)s.%(ext)s",
		"--print", "after_move:filepath",
		"--no-simulate",
		trackURL,
	}

	cmd := exec.CommandContext(ctx, p.binary, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", &DownloadError{
			Message:  fmt.Sprintf("yt-dlp download failed for %s", trackURL),
			Output:   string(output),
			Original: err,
		}
	}

	// --print after_move:filepath emits the final path as the last line.
	path := lastNonEmptyLine(string(output))
	if path == "" {
		return "", &DownloadError{
			Message: fmt.Sprintf("yt-dlp reported no output file for %s", trackURL),
			Output:  string(output),
		}
	}
	if _, err := os.Stat(path); err != nil {
		return "", &DownloadError{
			Message:  fmt.Sprintf("downloaded file not found at %s", path),
			Original: err,
		}
	}
	return path, nil
}

// toolStderr extracts captured stderr from an exec error, for messages.
func toolStderr(err error) string {
	if exitErr, ok := err.(*exec.ExitError); ok && len(exitErr.Stderr) > 0 {
		return lastNonEmptyLine(string(exitErr.Stderr))
	}
	return err.Error()
}

func lastNonEmptyLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}

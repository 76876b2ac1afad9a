// Package stats gathers library statistics: per-playlist file counts and
// sizes plus tag-derived totals, for the stats command.
package stats

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bogem/id3v2/v2"
)

// PlaylistStats summarizes one playlist folder.
type PlaylistStats struct {
	Name       string `json:"name"`
	TrackCount int    `json:"track_count"`
	TotalBytes int64  `json:"total_bytes"`
	HasM3U     bool   `json:"has_m3u"`
}

// LibraryStats summarizes the whole library under the output base.
type LibraryStats struct {
	BasePath        string          `json:"base_path"`
	TotalFiles      int             `json:"total_files"`
	TotalBytes      int64           `json:"total_bytes"`
	PlaylistCount   int             `json:"playlist_count"`
	DistinctArtists int             `json:"distinct_artists"`
	Playlists       []PlaylistStats `json:"playlists"`
}

// AverageBytes returns the mean file size, zero for an empty library.
func (s LibraryStats) AverageBytes() int64 {
	if s.TotalFiles == 0 {
		return 0
	}
	return s.TotalBytes / int64(s.TotalFiles)
}

// audioExtensions mirrors the formats the downloader produces.
var audioExtensions = map[string]bool{
	".mp3":  true,
	".m4a":  true,
	".opus": true,
}

// Collect walks playlist folders one level under base. Folders whose name
// starts with "_" are internal (duplicates, logs) and are excluded.
func Collect(base string) (LibraryStats, error) {
	entries, err := os.ReadDir(base)
	if err != nil {
		return LibraryStats{}, fmt.Errorf("failed to read library folder %s: %w", base, err)
	}

	stats := LibraryStats{BasePath: base}
	artists := make(map[string]bool)

	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), "_") {
			continue
		}
		dir := filepath.Join(base, entry.Name())
		ps := PlaylistStats{Name: entry.Name()}

		files, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, file := range files {
			if file.IsDir() {
				continue
			}
			ext := strings.ToLower(filepath.Ext(file.Name()))
			if ext == ".m3u" {
				ps.HasM3U = true
				continue
			}
			if !audioExtensions[ext] {
				continue
			}
			ps.TrackCount++
			if fi, err := file.Info(); err == nil {
				ps.TotalBytes += fi.Size()
			}
			if ext == ".mp3" {
				if artist := readArtist(filepath.Join(dir, file.Name())); artist != "" {
					artists[strings.ToLower(artist)] = true
				}
			}
		}

		stats.Playlists = append(stats.Playlists, ps)
		stats.TotalFiles += ps.TrackCount
		stats.TotalBytes += ps.TotalBytes
	}

	sort.Slice(stats.Playlists, func(i, j int) bool {
		return strings.ToLower(stats.Playlists[i].Name) < strings.ToLower(stats.Playlists[j].Name)
	})
	stats.PlaylistCount = len(stats.Playlists)
	stats.DistinctArtists = len(artists)
	return stats, nil
}

// readArtist extracts the artist tag from an MP3 file, empty on any
// failure. Stats never fail on a single unreadable file.
func readArtist(path string) string {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return ""
	}
	defer tag.Close()
	return strings.TrimSpace(tag.Artist())
}

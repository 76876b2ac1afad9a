package playlist

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// audioExtensions are the file types included in generated playlists.
var audioExtensions = map[string]bool{
	".mp3":  true,
	".m4a":  true,
	".opus": true,
	".ogg":  true,
	".flac": true,
	".wav":  true,
}

// WriteM3U regenerates <folder>.m3u inside dir from the audio files present
// on disk. Entries are relative file names in sorted order, so repeated runs
// over an unchanged folder produce identical output. An empty folder yields
// no playlist file, and a stale one is removed.
func WriteM3U(dir string) (string, error) {
	names, err := audioFiles(dir)
	if err != nil {
		return "", err
	}

	m3uPath := filepath.Join(dir, filepath.Base(dir)+".m3u")
	if len(names) == 0 {
		if err := os.Remove(m3uPath); err != nil && !os.IsNotExist(err) {
			return "", fmt.Errorf("failed to remove empty playlist file %s: %w", m3uPath, err)
		}
		return "", nil
	}

	var sb strings.Builder
	sb.WriteString("#EXTM3U\n")
	for _, name := range names {
		sb.WriteString(name)
		sb.WriteByte('\n')
	}

	if err := os.WriteFile(m3uPath, []byte(sb.String()), 0644); err != nil {
		return "", fmt.Errorf("failed to write playlist file %s: %w", m3uPath, err)
	}
	log.Printf("INFO: m3u_written path=%s entries=%d", m3uPath, len(names))
	return m3uPath, nil
}

// audioFiles lists audio file names directly inside dir, sorted.
func audioFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read folder %s: %w", dir, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if audioExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

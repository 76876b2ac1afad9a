package dedupe

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rmedina/ytmusic-dl/download/cache"
)

// DuplicatesFolder is where duplicate files are moved, directly under the
// library base. It is excluded from scans so repeated passes are stable.
const DuplicatesFolder = "_duplicates"

// Group is one set of identical files: the copy to keep plus the extras.
type Group struct {
	Keep   string
	Extras []string
}

// ScanResult is the outcome of a duplicate scan.
type ScanResult struct {
	Scanned int
	Groups  []Group
}

// Duplicates reports the total number of extra files across all groups.
func (r ScanResult) Duplicates() int {
	n := 0
	for _, g := range r.Groups {
		n += len(g.Extras)
	}
	return n
}

// Scan finds duplicate MP3 files one folder level under base, grouped by
// audio-stream hash. Within each group the earliest-modified file is kept;
// equal timestamps tie-break on shortest path so the original beats a copy
// in a deeper folder.
func Scan(base string) (ScanResult, error) {
	return ScanWithCache(base, nil)
}

// ScanWithCache is Scan with a persistent hash cache: unchanged files take
// their hash from hc instead of being re-read. A nil cache hashes everything.
func ScanWithCache(base string, hc *cache.HashCache) (ScanResult, error) {
	paths, err := libraryFiles(base)
	if err != nil {
		return ScanResult{}, err
	}

	byKey := make(map[string][]string)
	for _, path := range paths {
		key := fileKeyCached(path, hc)
		byKey[key] = append(byKey[key], path)
	}

	result := ScanResult{Scanned: len(paths)}
	for _, group := range byKey {
		if len(group) < 2 {
			continue
		}
		sort.Slice(group, func(i, j int) bool {
			mi, mj := mtime(group[i]), mtime(group[j])
			if !mi.Equal(mj) {
				return mi.Before(mj)
			}
			return len(group[i]) < len(group[j])
		})
		result.Groups = append(result.Groups, Group{Keep: group[0], Extras: group[1:]})
	}

	// Stable group order for display and repeatable runs.
	sort.Slice(result.Groups, func(i, j int) bool {
		return result.Groups[i].Keep < result.Groups[j].Keep
	})
	return result, nil
}

// MoveResult is the outcome of moving duplicate files out of the library.
// Folders lists each playlist folder that lost at least one file, so the
// caller can refresh its playlist file.
type MoveResult struct {
	Moved   int
	Errors  int
	Target  string
	Folders []string
}

// MoveDuplicates moves every extra file from the scan into base/_duplicates,
// numbering the destination name when it collides. Kept files are never
// touched, so running the pass again finds nothing to move.
func MoveDuplicates(base string, result ScanResult) (MoveResult, error) {
	return MoveDuplicatesTo(base, DuplicatesFolder, result)
}

// MoveDuplicatesTo is MoveDuplicates with a custom destination folder name
// under base. The name must start with an underscore so scans skip it.
func MoveDuplicatesTo(base, folder string, result ScanResult) (MoveResult, error) {
	if !strings.HasPrefix(folder, "_") || strings.ContainsRune(folder, os.PathSeparator) {
		return MoveResult{}, fmt.Errorf("invalid duplicates folder name %q: must start with _ and contain no path separators", folder)
	}
	target := filepath.Join(base, folder)
	if len(result.Groups) == 0 {
		return MoveResult{Target: target}, nil
	}
	if err := os.MkdirAll(target, 0755); err != nil {
		return MoveResult{Target: target}, fmt.Errorf("failed to create %s: %w", target, err)
	}

	mr := MoveResult{Target: target}
	touched := make(map[string]bool)
	for _, group := range result.Groups {
		for _, extra := range group.Extras {
			dest, err := availableName(target, filepath.Base(extra))
			if err == nil {
				err = os.Rename(extra, dest)
			}
			if err != nil {
				mr.Errors++
				log.Printf("ERROR: duplicate_move_failed src=%s error=%v", extra, err)
				continue
			}
			mr.Moved++
			if dir := filepath.Dir(extra); !touched[dir] {
				touched[dir] = true
				mr.Folders = append(mr.Folders, dir)
			}
			log.Printf("INFO: duplicate_moved src=%s dest=%s keep=%s", extra, dest, group.Keep)
		}
	}
	sort.Strings(mr.Folders)
	return mr, nil
}

// audioExtensions are the file types included in a duplicate scan. AudioHash
// skips ID3 tags on MP3 files and hashes other formats whole.
var audioExtensions = map[string]bool{
	".mp3":  true,
	".m4a":  true,
	".opus": true,
	".ogg":  true,
	".flac": true,
	".wav":  true,
}

// libraryFiles lists the audio files one folder level under base.
// Underscore-prefixed folders hold moved duplicates and other non-playlist
// data, so they are skipped.
func libraryFiles(base string) ([]string, error) {
	folders, err := os.ReadDir(base)
	if err != nil {
		return nil, fmt.Errorf("failed to read library folder %s: %w", base, err)
	}

	var paths []string
	for _, folder := range folders {
		if !folder.IsDir() || strings.HasPrefix(folder.Name(), "_") {
			continue
		}
		files, err := os.ReadDir(filepath.Join(base, folder.Name()))
		if err != nil {
			continue
		}
		for _, file := range files {
			if file.IsDir() || !audioExtensions[strings.ToLower(filepath.Ext(file.Name()))] {
				continue
			}
			paths = append(paths, filepath.Join(base, folder.Name(), file.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// availableName returns a path in dir for name that does not exist yet,
// appending " (N)" before the extension on collision.
func availableName(dir, name string) (string, error) {
	dest := filepath.Join(dir, name)
	if _, err := os.Stat(dest); os.IsNotExist(err) {
		return dest, nil
	}
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for i := 1; i < 1000; i++ {
		dest = filepath.Join(dir, fmt.Sprintf("%s (%d)%s", stem, i, ext))
		if _, err := os.Stat(dest); os.IsNotExist(err) {
			return dest, nil
		}
	}
	return "", fmt.Errorf("no available name for %s in %s", name, dir)
}

// fileKeyCached resolves a file's dedup key through the hash cache when one
// is supplied, falling back to FileKey otherwise.
func fileKeyCached(path string, hc *cache.HashCache) string {
	if hc == nil {
		return FileKey(path)
	}
	fi, err := os.Stat(path)
	if err != nil {
		return FileKey(path)
	}
	if hash, ok := hc.Lookup(path, fi); ok {
		return hash
	}
	hash, err := AudioHash(path)
	if err != nil {
		return "NAME::" + strings.ToLower(filepath.Base(path))
	}
	hc.Store(path, fi, hash)
	return hash
}

func mtime(path string) time.Time {
	fi, err := os.Stat(path)
	if err != nil {
		return time.Time{}
	}
	return fi.ModTime()
}

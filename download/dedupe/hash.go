package dedupe

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const (
	id3v2HeaderSize  = 10
	id3v1TrailerSize = 128
)

// synchsafeToInt decodes the 28-bit synchsafe integer used for ID3v2 tag
// sizes: four bytes, high bit of each always zero.
func synchsafeToInt(b []byte) int64 {
	return int64(b[0]&0x7F)<<21 | int64(b[1]&0x7F)<<14 | int64(b[2]&0x7F)<<7 | int64(b[3]&0x7F)
}

// AudioHash computes an identity hash of an MP3 file's audio stream,
// ignoring ID3v2 and ID3v1 tags. Two downloads of the same track hash
// identically even when their embedded metadata differs.
func AudioHash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("failed to stat %s: %w", path, err)
	}
	size := fi.Size()
	if size <= 0 {
		return "", fmt.Errorf("empty file %s", path)
	}

	var start, end int64 = 0, size

	header := make([]byte, id3v2HeaderSize)
	if n, _ := io.ReadFull(f, header); n == id3v2HeaderSize && string(header[:3]) == "ID3" {
		start = id3v2HeaderSize + synchsafeToInt(header[6:10])
	}

	if size >= id3v1TrailerSize {
		trailer := make([]byte, 3)
		if _, err := f.ReadAt(trailer, size-id3v1TrailerSize); err == nil && string(trailer) == "TAG" {
			end = size - id3v1TrailerSize
		}
	}

	if start >= end {
		return "", fmt.Errorf("no audio data in %s", path)
	}

	if _, err := f.Seek(start, io.SeekStart); err != nil {
		return "", fmt.Errorf("failed to seek in %s: %w", path, err)
	}
	hasher := md5.New()
	if _, err := io.CopyN(hasher, f, end-start); err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to hash %s: %w", path, err)
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// FileKey returns the dedup identity key for a file: the audio-stream hash
// when one can be computed, otherwise a name-based key so unreadable files
// still group by filename instead of being skipped.
func FileKey(path string) string {
	if hash, err := AudioHash(path); err == nil {
		return hash
	}
	return "NAME::" + strings.ToLower(filepath.Base(path))
}

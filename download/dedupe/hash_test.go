package dedupe

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

// buildMP3 assembles a minimal MP3 byte layout: optional ID3v2 tag, the
// audio payload, and an optional ID3v1 trailer.
func buildMP3(id3v2Payload, audio []byte, id3v1 bool) []byte {
	var buf bytes.Buffer
	if id3v2Payload != nil {
		size := len(id3v2Payload)
		header := []byte{'I', 'D', '3', 3, 0, 0,
			byte(size >> 21 & 0x7F), byte(size >> 14 & 0x7F), byte(size >> 7 & 0x7F), byte(size & 0x7F)}
		buf.Write(header)
		buf.Write(id3v2Payload)
	}
	buf.Write(audio)
	if id3v1 {
		trailer := make([]byte, 128)
		copy(trailer, "TAG")
		buf.Write(trailer)
	}
	return buf.Bytes()
}

func writeMP3(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func TestAudioHashIgnoresTags(t *testing.T) {
	dir := t.TempDir()
	audio := bytes.Repeat([]byte{0xFF, 0xFB, 0x90, 0x44}, 256)

	plain := filepath.Join(dir, "plain.mp3")
	tagged := filepath.Join(dir, "tagged.mp3")
	trailed := filepath.Join(dir, "trailed.mp3")
	writeMP3(t, plain, buildMP3(nil, audio, false))
	writeMP3(t, tagged, buildMP3(bytes.Repeat([]byte{0xAB}, 300), audio, false))
	writeMP3(t, trailed, buildMP3(bytes.Repeat([]byte{0xCD}, 50), audio, true))

	h1, err := AudioHash(plain)
	if err != nil {
		t.Fatalf("AudioHash(plain) error: %v", err)
	}
	h2, err := AudioHash(tagged)
	if err != nil {
		t.Fatalf("AudioHash(tagged) error: %v", err)
	}
	h3, err := AudioHash(trailed)
	if err != nil {
		t.Fatalf("AudioHash(trailed) error: %v", err)
	}

	if h1 != h2 || h1 != h3 {
		t.Errorf("hashes differ across tag layouts: %s / %s / %s", h1, h2, h3)
	}
}

func TestAudioHashDistinguishesContent(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.mp3")
	b := filepath.Join(dir, "b.mp3")
	writeMP3(t, a, buildMP3(nil, bytes.Repeat([]byte{0x01}, 512), false))
	writeMP3(t, b, buildMP3(nil, bytes.Repeat([]byte{0x02}, 512), false))

	h1, _ := AudioHash(a)
	h2, _ := AudioHash(b)
	if h1 == h2 {
		t.Error("different audio content produced the same hash")
	}
}

func TestAudioHashEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.mp3")
	writeMP3(t, path, nil)
	if _, err := AudioHash(path); err == nil {
		t.Error("expected error for empty file")
	}
}

func TestFileKeyFallsBackToName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Broken Track.mp3")
	writeMP3(t, path, nil)

	key := FileKey(path)
	if key != "NAME::broken track.mp3" {
		t.Errorf("key = %q, expected name fallback", key)
	}
}

func TestFileKeyMissingFile(t *testing.T) {
	key := FileKey(filepath.Join(t.TempDir(), "Missing.mp3"))
	if key != "NAME::missing.mp3" {
		t.Errorf("key = %q, expected name fallback for missing file", key)
	}
}

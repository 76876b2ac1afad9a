package playlist

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("data"), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func TestWriteM3U(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "Road Trip Mix")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	writeFile(t, filepath.Join(dir, "b_track.mp3"))
	writeFile(t, filepath.Join(dir, "a_track.mp3"))
	writeFile(t, filepath.Join(dir, "c_track.m4a"))
	writeFile(t, filepath.Join(dir, "cover.jpg"))
	writeFile(t, filepath.Join(dir, "notes.txt"))

	m3uPath, err := WriteM3U(dir)
	if err != nil {
		t.Fatalf("WriteM3U returned error: %v", err)
	}
	if filepath.Base(m3uPath) != "Road Trip Mix.m3u" {
		t.Errorf("m3u name = %s, expected Road Trip Mix.m3u", filepath.Base(m3uPath))
	}

	content, err := os.ReadFile(m3uPath)
	if err != nil {
		t.Fatalf("failed to read m3u: %v", err)
	}
	expected := "#EXTM3U\na_track.mp3\nb_track.mp3\nc_track.m4a\n"
	if string(content) != expected {
		t.Errorf("m3u content = %q, expected %q", string(content), expected)
	}
}

func TestWriteM3UIdempotent(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "Mix")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	writeFile(t, filepath.Join(dir, "track.mp3"))

	path, err := WriteM3U(dir)
	if err != nil {
		t.Fatalf("first WriteM3U returned error: %v", err)
	}
	first, _ := os.ReadFile(path)

	if _, err := WriteM3U(dir); err != nil {
		t.Fatalf("second WriteM3U returned error: %v", err)
	}
	second, _ := os.ReadFile(path)

	if string(first) != string(second) {
		t.Errorf("repeated runs changed m3u content: %q vs %q", first, second)
	}
}

func TestWriteM3UEmptyFolder(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "Empty")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	writeFile(t, filepath.Join(dir, "cover.jpg"))

	path, err := WriteM3U(dir)
	if err != nil {
		t.Fatalf("WriteM3U returned error: %v", err)
	}
	if path != "" {
		t.Errorf("path = %q, expected empty for folder without audio", path)
	}
	if _, err := os.Stat(filepath.Join(dir, "Empty.m3u")); !os.IsNotExist(err) {
		t.Errorf("m3u file should not exist in a folder without audio files")
	}
}

func TestWriteM3URemovesStaleFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "Mix")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	stale := filepath.Join(dir, "Mix.m3u")
	writeFile(t, stale)

	if _, err := WriteM3U(dir); err != nil {
		t.Fatalf("WriteM3U returned error: %v", err)
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Errorf("stale m3u file should have been removed")
	}
}

func TestWriteM3UMissingFolder(t *testing.T) {
	if _, err := WriteM3U(filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Errorf("expected error for missing folder")
	}
}

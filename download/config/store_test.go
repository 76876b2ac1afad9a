package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	cfg := Load(path)
	if cfg == nil {
		t.Fatal("Load returned nil for missing file")
	}
	if cfg.AudioFormat != FormatMP3 {
		t.Errorf("Expected default format, got %s", cfg.AudioFormat)
	}
}

func TestLoad_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, []byte{}, 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	cfg := Load(path)
	if cfg.AudioQuality != "192" {
		t.Errorf("Expected defaults for empty file, got quality %s", cfg.AudioQuality)
	}
}

func TestLoad_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	cfg := Load(path)
	if cfg.AudioFormat != FormatMP3 {
		t.Errorf("Expected defaults for corrupt file, got %s", cfg.AudioFormat)
	}
	if _, err := os.Stat(path + ".corrupt"); err != nil {
		t.Errorf("Expected corrupt file to be preserved: %v", err)
	}
}

func TestLoad_PartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	// Old settings file without generate_m3u keeps the default (true).
	if err := os.WriteFile(path, []byte(`{"audio_quality":"320"}`), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	cfg := Load(path)
	if cfg.AudioQuality != "320" {
		t.Errorf("Expected quality 320, got %s", cfg.AudioQuality)
	}
	if !cfg.GenerateM3U {
		t.Error("Expected generate_m3u default true for partial file")
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")

	cfg := Default()
	if err := cfg.Set("quality", "256"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := cfg.Set("format", "opus"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := cfg.Set("m3u", "false"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded := Load(path)
	if loaded.AudioQuality != "256" {
		t.Errorf("Expected quality 256, got %s", loaded.AudioQuality)
	}
	if loaded.AudioFormat != FormatOpus {
		t.Errorf("Expected format opus, got %s", loaded.AudioFormat)
	}
	if loaded.GenerateM3U {
		t.Error("Expected generate_m3u false after round trip")
	}
}

func TestSave_RejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	cfg := Default()
	cfg.AudioQuality = "64"
	if err := Save(path, cfg); err == nil {
		t.Fatal("Expected Save to reject invalid config")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("Invalid config must not be written")
	}
}

func TestSave_KeepsBackup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	cfg := Default()
	if err := Save(path, cfg); err != nil {
		t.Fatalf("First save failed: %v", err)
	}
	if err := cfg.Set("quality", "320"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Second save failed: %v", err)
	}
	if _, err := os.Stat(path + ".backup"); err != nil {
		t.Errorf("Expected backup file after second save: %v", err)
	}
}

func TestLoadSources(t *testing.T) {
	path := filepath.Join(t.TempDir(), "playlists.yaml")
	data := `playlists:
  - name: Road Trip
    url: https://music.youtube.com/playlist?list=PLabc123
    create_m3u: true
  - url: https://www.youtube.com/playlist?list=PLdef456
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	sources, err := LoadSources(path)
	if err != nil {
		t.Fatalf("LoadSources failed: %v", err)
	}
	if len(sources) != 2 {
		t.Fatalf("Expected 2 sources, got %d", len(sources))
	}
	if sources[0].Name != "Road Trip" {
		t.Errorf("Expected name Road Trip, got %s", sources[0].Name)
	}
	if sources[0].CreateM3U == nil || !*sources[0].CreateM3U {
		t.Error("Expected create_m3u true for first source")
	}
	if sources[1].CreateM3U != nil {
		t.Error("Expected create_m3u unset for second source")
	}
}

func TestLoadSources_BareList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "playlists.yaml")
	data := `- url: https://www.youtube.com/playlist?list=PLxyz
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	sources, err := LoadSources(path)
	if err != nil {
		t.Fatalf("LoadSources failed: %v", err)
	}
	if len(sources) != 1 {
		t.Fatalf("Expected 1 source, got %d", len(sources))
	}
}

func TestLoadSources_MissingURL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "playlists.yaml")
	data := `playlists:
  - name: No URL here
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if _, err := LoadSources(path); err == nil {
		t.Fatal("Expected error for source without url")
	}
}

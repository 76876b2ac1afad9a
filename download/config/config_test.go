package config

import (
	"strings"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.AudioFormat != FormatMP3 {
		t.Errorf("Expected default format mp3, got %s", cfg.AudioFormat)
	}
	if cfg.AudioQuality != "192" {
		t.Errorf("Expected default quality 192, got %s", cfg.AudioQuality)
	}
	if !cfg.GenerateM3U {
		t.Error("Expected M3U generation enabled by default")
	}
	if cfg.OutputBase == "" {
		t.Error("Expected non-empty default output base")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config should validate, got: %v", err)
	}
}

func TestValidate_InvalidFormat(t *testing.T) {
	cfg := Default()
	cfg.AudioFormat = "wav"
	err := cfg.Validate()
	if err == nil {
		t.Fatal("Expected error for invalid format")
	}
	if _, ok := err.(*ConfigError); !ok {
		t.Errorf("Expected *ConfigError, got %T", err)
	}
}

func TestValidate_InvalidQuality(t *testing.T) {
	cfg := Default()
	cfg.AudioQuality = "300"
	if err := cfg.Validate(); err == nil {
		t.Fatal("Expected error for invalid quality")
	}
}

func TestSet_Quality(t *testing.T) {
	for _, q := range ValidQualities {
		cfg := Default()
		if err := cfg.Set("quality", q); err != nil {
			t.Errorf("Set(quality, %s) failed: %v", q, err)
		}
		if cfg.AudioQuality != q {
			t.Errorf("Expected quality %s, got %s", q, cfg.AudioQuality)
		}
	}

	cfg := Default()
	if err := cfg.Set("quality", "999"); err == nil {
		t.Error("Expected error for quality 999")
	}
	if cfg.AudioQuality != "192" {
		t.Errorf("Rejected Set must not mutate, got %s", cfg.AudioQuality)
	}
}

func TestSet_Format(t *testing.T) {
	cfg := Default()
	if err := cfg.Set("format", "M4A"); err != nil {
		t.Fatalf("Set(format, M4A) failed: %v", err)
	}
	if cfg.AudioFormat != FormatM4A {
		t.Errorf("Expected m4a, got %s", cfg.AudioFormat)
	}

	if err := cfg.Set("format", "flac"); err == nil {
		t.Error("Expected error for unsupported format flac")
	}
}

func TestSet_M3U(t *testing.T) {
	cases := map[string]bool{
		"true": true, "yes": true, "on": true,
		"false": false, "no": false, "off": false,
	}
	for value, want := range cases {
		cfg := Default()
		if err := cfg.Set("m3u", value); err != nil {
			t.Errorf("Set(m3u, %s) failed: %v", value, err)
		}
		if cfg.GenerateM3U != want {
			t.Errorf("Set(m3u, %s): expected %v, got %v", value, want, cfg.GenerateM3U)
		}
	}

	cfg := Default()
	if err := cfg.Set("m3u", "maybe"); err == nil {
		t.Error("Expected error for m3u value maybe")
	}
}

func TestSet_Output(t *testing.T) {
	cfg := Default()
	if err := cfg.Set("output", "  "); err == nil {
		t.Error("Expected error for blank output path")
	}
	if err := cfg.Set("output", "/mnt/usb/music"); err != nil {
		t.Fatalf("Set(output) failed: %v", err)
	}
	if cfg.OutputBase != "/mnt/usb/music" {
		t.Errorf("Expected /mnt/usb/music, got %s", cfg.OutputBase)
	}
}

func TestSet_UnknownField(t *testing.T) {
	cfg := Default()
	err := cfg.Set("bitrate", "192")
	if err == nil {
		t.Fatal("Expected error for unknown field")
	}
	if !strings.Contains(err.Error(), "Unknown configuration field") {
		t.Errorf("Unexpected message: %v", err)
	}
}

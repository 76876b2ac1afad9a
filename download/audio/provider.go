package audio

import (
	"context"
	"os/exec"
	"strings"
)

// DefaultBinary is the external extraction/transcode tool.
const DefaultBinary = "yt-dlp"

// Config holds configuration for the audio provider.
type Config struct {
	// Output settings
	OutputFormat string
	Bitrate      string // kbps, e.g. "192"

	// BinaryPath overrides the yt-dlp binary on PATH. Used by tests.
	BinaryPath string

	// MaxNameLength caps produced file names for FAT/car-stereo targets.
	MaxNameLength int
}

// Provider invokes the external yt-dlp tool for playlist extraction and
// per-track download+transcode.
type Provider struct {
	config *Config
	binary string
}

// NewProvider creates a new audio provider.
func NewProvider(config *Config) (*Provider, error) {
	if config == nil {
		config = &Config{}
	}
	if config.OutputFormat == "" {
		config.OutputFormat = "mp3"
	}
	if config.Bitrate == "" {
		config.Bitrate = "192"
	}
	if config.MaxNameLength <= 0 {
		config.MaxNameLength = 60
	}
	binary := config.BinaryPath
	if binary == "" {
		binary = DefaultBinary
	}
	return &Provider{config: config, binary: binary}, nil
}

// Version returns the external tool's reported version.
func (p *Provider) Version(ctx context.Context) (string, error) {
	cmd := exec.CommandContext(ctx, p.binary, "--version")
	output, err := cmd.Output()
	if err != nil {
		return "", &ExtractError{Message: "cannot determine yt-dlp version", Original: err}
	}
	return strings.TrimSpace(string(output)), nil
}

// ToolPath reports where the external tool resolves on PATH, or "" if absent.
func (p *Provider) ToolPath() string {
	path, err := exec.LookPath(p.binary)
	if err != nil {
		return ""
	}
	return path
}

// FFmpegPath reports where ffmpeg resolves on PATH, or "" if absent.
// ffmpeg performs the actual transcoding and is required for downloads.
func FFmpegPath() string {
	path, err := exec.LookPath("ffmpeg")
	if err != nil {
		return ""
	}
	return path
}

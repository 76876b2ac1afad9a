package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ConfigError represents a configuration error.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return e.Message
}

// ConfigVersion is the settings document version written by this build.
const ConfigVersion = "1"

// AudioFormat represents the target audio container/codec.
type AudioFormat string

const (
	FormatMP3  AudioFormat = "mp3"
	FormatM4A  AudioFormat = "m4a"
	FormatOpus AudioFormat = "opus"
)

// ValidFormats lists the accepted audio formats in display order.
var ValidFormats = []AudioFormat{FormatMP3, FormatM4A, FormatOpus}

// ValidQualities lists the accepted audio bitrates (kbps) in display order.
var ValidQualities = []string{"128", "192", "256", "320"}

// Config is the persisted application configuration.
type Config struct {
	Version      string      `json:"version"`
	OutputBase   string      `json:"output_base"`
	AudioFormat  AudioFormat `json:"audio_format"`
	AudioQuality string      `json:"audio_quality"`
	GenerateM3U  bool        `json:"generate_m3u"`
}

// Default returns a configuration populated with default values.
// The default output base is a "downloads" folder under the working directory.
func Default() *Config {
	base := "downloads"
	if cwd, err := os.Getwd(); err == nil {
		base = filepath.Join(cwd, "downloads")
	}
	return &Config{
		Version:      ConfigVersion,
		OutputBase:   base,
		AudioFormat:  FormatMP3,
		AudioQuality: "192",
		GenerateM3U:  true,
	}
}

// SetDefaults fills empty fields with default values.
func (c *Config) SetDefaults() {
	def := Default()
	if c.Version == "" {
		c.Version = def.Version
	}
	if c.OutputBase == "" {
		c.OutputBase = def.OutputBase
	}
	if c.AudioFormat == "" {
		c.AudioFormat = def.AudioFormat
	}
	if c.AudioQuality == "" {
		c.AudioQuality = def.AudioQuality
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.OutputBase == "" {
		return &ConfigError{Message: "output_base must not be empty"}
	}
	if !isValidFormat(c.AudioFormat) {
		return &ConfigError{
			Message: fmt.Sprintf("Invalid audio_format: %s. Must be one of: %s", c.AudioFormat, formatList()),
		}
	}
	if !isValidQuality(c.AudioQuality) {
		return &ConfigError{
			Message: fmt.Sprintf("Invalid audio_quality: %s. Must be one of: %s", c.AudioQuality, strings.Join(ValidQualities, ", ")),
		}
	}
	return nil
}

// Set updates a single field after validating the value against the field's
// allowed enum or range. Recognized fields: output, format, quality, m3u.
func (c *Config) Set(field, value string) error {
	switch field {
	case "output":
		path := strings.TrimSpace(value)
		if path == "" {
			return &ConfigError{Message: "output path must not be empty"}
		}
		expanded, err := ExpandPath(path)
		if err != nil {
			return &ConfigError{Message: fmt.Sprintf("Invalid output path: %v", err)}
		}
		c.OutputBase = expanded
	case "format":
		format := AudioFormat(strings.ToLower(strings.TrimSpace(value)))
		if !isValidFormat(format) {
			return &ConfigError{
				Message: fmt.Sprintf("Invalid format: %s. Must be one of: %s", value, formatList()),
			}
		}
		c.AudioFormat = format
	case "quality":
		quality := strings.TrimSpace(value)
		if !isValidQuality(quality) {
			return &ConfigError{
				Message: fmt.Sprintf("Invalid quality: %s. Must be one of: %s", value, strings.Join(ValidQualities, ", ")),
			}
		}
		c.AudioQuality = quality
	case "m3u":
		switch strings.ToLower(strings.TrimSpace(value)) {
		case "true", "yes", "on":
			c.GenerateM3U = true
		case "false", "no", "off":
			c.GenerateM3U = false
		default:
			return &ConfigError{Message: fmt.Sprintf("Invalid m3u value: %s. Must be true or false", value)}
		}
	default:
		return &ConfigError{Message: fmt.Sprintf("Unknown configuration field: %s", field)}
	}
	return nil
}

// ExpandPath expands a leading ~ and cleans the path.
func ExpandPath(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") || strings.HasPrefix(path, `~\`) {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot resolve home directory: %w", err)
		}
		path = filepath.Join(home, path[1:])
	}
	return filepath.Clean(path), nil
}

func isValidFormat(f AudioFormat) bool {
	for _, v := range ValidFormats {
		if f == v {
			return true
		}
	}
	return false
}

func isValidQuality(q string) bool {
	for _, v := range ValidQualities {
		if q == v {
			return true
		}
	}
	return false
}

func formatList() string {
	parts := make([]string, len(ValidFormats))
	for i, f := range ValidFormats {
		parts[i] = string(f)
	}
	return strings.Join(parts, ", ")
}

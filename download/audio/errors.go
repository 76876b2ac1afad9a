package audio

import "fmt"

// DownloadError represents a per-track download error. Output carries the
// tool's combined output so the failure can be classified.
type DownloadError struct {
	Message  string
	Output   string
	Original error
}

func (e *DownloadError) Error() string {
	if e.Original != nil {
		return fmt.Sprintf("Audio download error: %s: %v", e.Message, e.Original)
	}
	return fmt.Sprintf("Audio download error: %s", e.Message)
}

func (e *DownloadError) Unwrap() error {
	return e.Original
}

// ExtractError represents a playlist metadata extraction error.
type ExtractError struct {
	Message  string
	Original error
}

func (e *ExtractError) Error() string {
	if e.Original != nil {
		return fmt.Sprintf("Playlist extraction error: %s: %v", e.Message, e.Original)
	}
	return fmt.Sprintf("Playlist extraction error: %s", e.Message)
}

func (e *ExtractError) Unwrap() error {
	return e.Original
}

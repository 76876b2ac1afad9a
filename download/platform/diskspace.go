package platform

import "fmt"

// estimatedTrackBytes is the average size assumed per track for the
// preflight space check, with a 20% margin on top.
const (
	estimatedTrackBytes = 5 * 1024 * 1024
	spaceMarginPercent  = 20
)

// SpaceError reports insufficient disk space before a run starts.
type SpaceError struct {
	Path     string
	Free     uint64
	Required uint64
}

func (e *SpaceError) Error() string {
	return fmt.Sprintf("not enough disk space on %s: %d MB free, %d MB required",
		e.Path, e.Free/(1024*1024), e.Required/(1024*1024))
}

// FreeSpace returns the bytes available to the current user on the
// filesystem holding path.
func FreeSpace(path string) (uint64, error) {
	return freeSpace(path)
}

// EnsureSpace verifies that path has room for the given number of tracks.
// When free space cannot be determined the check passes, matching the
// preference for attempting the download over refusing on a stat failure.
func EnsureSpace(path string, trackCount int) error {
	if trackCount <= 0 {
		return nil
	}
	free, err := freeSpace(path)
	if err != nil {
		return nil
	}
	required := uint64(trackCount) * estimatedTrackBytes
	required += required * spaceMarginPercent / 100
	if free < required {
		return &SpaceError{Path: path, Free: free, Required: required}
	}
	return nil
}

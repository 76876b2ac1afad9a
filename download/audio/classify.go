package audio

import (
	"errors"
	"strings"
)

// FailureClass categorizes a per-track download failure based on the
// external tool's reported error text.
type FailureClass string

const (
	FailureUnavailable FailureClass = "unavailable"
	FailurePrivate     FailureClass = "private"
	FailureCopyright   FailureClass = "copyright"
	FailureGeoBlocked  FailureClass = "geo_blocked"
	FailurePremium     FailureClass = "premium"
	FailureNetwork     FailureClass = "network"
	FailureUnknown     FailureClass = "unknown"
)

// Transient reports whether a failure of this class is expected to resolve
// on retry. Unknown failures are treated as transient so a one-off tool
// hiccup gets another attempt before the track is written off.
func (c FailureClass) Transient() bool {
	switch c {
	case FailureNetwork, FailureUnknown:
		return true
	default:
		return false
	}
}

// Reason returns a short human-readable reason for summaries.
func (c FailureClass) Reason() string {
	switch c {
	case FailureUnavailable:
		return "video unavailable"
	case FailurePrivate:
		return "private video"
	case FailureCopyright:
		return "copyright claim"
	case FailureGeoBlocked:
		return "geo-blocked"
	case FailurePremium:
		return "premium required"
	case FailureNetwork:
		return "network error"
	default:
		return "unknown error"
	}
}

// permanent failure markers, matched against the lowercased tool output.
// Order matters: copyright before unavailable, since copyright takedown
// messages usually also say "no longer available".
var permanentMarkers = []struct {
	class   FailureClass
	markers []string
}{
	{FailureCopyright, []string{"copyright claim", "copyright infringement", "copyright grounds"}},
	{FailurePrivate, []string{"private video", "this video is private"}},
	{FailureGeoBlocked, []string{"geo restriction", "not available in your country", "blocked it in your country", "geo-blocked"}},
	{FailurePremium, []string{"premium members", "requires premium", "music premium"}},
	{FailureUnavailable, []string{"video unavailable", "no longer available", "not available", "has been removed", "account associated with this video has been terminated"}},
}

var networkMarkers = []string{
	"timed out", "timeout", "connection reset", "connection refused",
	"temporary failure", "network is unreachable", "http error 429",
	"http error 5", "rate limit", "unable to download webpage",
	"incomplete read", "eof occurred",
}

// Classify maps the external tool's error text to a failure class.
func Classify(errText string) FailureClass {
	text := strings.ToLower(errText)
	for _, group := range permanentMarkers {
		for _, marker := range group.markers {
			if strings.Contains(text, marker) {
				return group.class
			}
		}
	}
	for _, marker := range networkMarkers {
		if strings.Contains(text, marker) {
			return FailureNetwork
		}
	}
	return FailureUnknown
}

// ClassifyError classifies an error returned by the provider. Download
// errors are classified from their captured tool output; anything else is
// classified from the error message itself.
func ClassifyError(err error) FailureClass {
	if err == nil {
		return FailureUnknown
	}
	var dlErr *DownloadError
	if errors.As(err, &dlErr) && dlErr.Output != "" {
		return Classify(dlErr.Output)
	}
	return Classify(err.Error())
}

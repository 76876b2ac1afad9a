package playlist

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// URLError is a playlist URL validation error, raised before any network
// call is made.
type URLError struct {
	URL     string
	Message string
}

func (e *URLError) Error() string {
	return fmt.Sprintf("invalid playlist URL %q: %s", e.URL, e.Message)
}

var playlistIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// NormalizeURL validates a playlist URL and returns its canonical form,
// stripping tracking parameters. Only YouTube / YouTube Music playlist URLs
// with a list= parameter are accepted.
func NormalizeURL(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", &URLError{URL: raw, Message: "empty URL"}
	}

	parsed, err := url.Parse(trimmed)
	if err != nil {
		return "", &URLError{URL: raw, Message: "not a parsable URL"}
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", &URLError{URL: raw, Message: "URL must start with http:// or https://"}
	}

	host := strings.ToLower(parsed.Hostname())
	var canonicalHost string
	switch host {
	case "music.youtube.com":
		canonicalHost = "music.youtube.com"
	case "youtube.com", "www.youtube.com", "m.youtube.com":
		canonicalHost = "www.youtube.com"
	default:
		return "", &URLError{URL: raw, Message: "only YouTube / YouTube Music URLs are supported"}
	}

	listID := parsed.Query().Get("list")
	if listID == "" {
		return "", &URLError{URL: raw, Message: "URL must contain a list= playlist parameter"}
	}
	if !playlistIDPattern.MatchString(listID) {
		return "", &URLError{URL: raw, Message: "playlist id contains invalid characters"}
	}

	return fmt.Sprintf("https://%s/playlist?list=%s", canonicalHost, listID), nil
}

// NormalizeURLs validates a batch of URLs, returning the canonical valid
// ones and one error per rejected input.
func NormalizeURLs(raw []string) (valid []string, errs []error) {
	for _, u := range raw {
		normalized, err := NormalizeURL(u)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		valid = append(valid, normalized)
	}
	return valid, errs
}

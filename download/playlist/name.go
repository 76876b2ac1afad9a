package playlist

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// MaxNameLength caps folder and file names. Short names keep FAT volumes
// and car stereos happy.
const MaxNameLength = 60

// stripAccents decomposes to NFKD and drops combining marks, so "Canción"
// becomes "Cancion".
func stripAccents(s string) string {
	decomposed := norm.NFKD.String(s)
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// SafeFolderName converts a playlist title into a name safe for FAT and
// Windows filesystems. Returns fallback when nothing usable remains.
func SafeFolderName(title, fallback string) string {
	s := stripAccents(strings.TrimSpace(title))

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			b.WriteRune('_')
		case '“', '”': // curly double quotes
			// dropped
		case '’': // curly apostrophe
			b.WriteRune('\'')
		default:
			if unicode.IsControl(r) {
				continue
			}
			b.WriteRune(r)
		}
	}

	s = strings.Join(strings.Fields(b.String()), " ")
	s = strings.Trim(s, ". ")
	s = strings.ReplaceAll(s, "..", "_")
	if runes := []rune(s); len(runes) > MaxNameLength {
		s = strings.TrimSpace(string(runes[:MaxNameLength]))
	}
	s = strings.Trim(s, ". ")
	if s == "" {
		return fallback
	}
	return s
}

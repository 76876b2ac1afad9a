package playlist

import (
	"errors"
	"testing"
)

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			"music playlist",
			"https://music.youtube.com/playlist?list=PLabc_123-XYZ",
			"https://music.youtube.com/playlist?list=PLabc_123-XYZ",
		},
		{
			"www host kept canonical",
			"https://www.youtube.com/playlist?list=PL123",
			"https://www.youtube.com/playlist?list=PL123",
		},
		{
			"bare host canonicalized",
			"https://youtube.com/playlist?list=PL123",
			"https://www.youtube.com/playlist?list=PL123",
		},
		{
			"mobile host canonicalized",
			"http://m.youtube.com/playlist?list=PL123",
			"https://www.youtube.com/playlist?list=PL123",
		},
		{
			"tracking parameters stripped",
			"https://music.youtube.com/playlist?list=PL123&si=AbCd&feature=share",
			"https://music.youtube.com/playlist?list=PL123",
		},
		{
			"watch url with list",
			"https://www.youtube.com/watch?v=dQw4w9WgXcQ&list=PL123",
			"https://www.youtube.com/playlist?list=PL123",
		},
		{
			"surrounding whitespace",
			"  https://music.youtube.com/playlist?list=PL123  ",
			"https://music.youtube.com/playlist?list=PL123",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NormalizeURL(tc.input)
			if err != nil {
				t.Fatalf("NormalizeURL(%q) returned error: %v", tc.input, err)
			}
			if got != tc.expected {
				t.Errorf("NormalizeURL(%q) = %q, expected %q", tc.input, got, tc.expected)
			}
		})
	}
}

func TestNormalizeURLRejects(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"not a url",
		"ftp://youtube.com/playlist?list=PL123",
		"https://vimeo.com/playlist?list=PL123",
		"https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		"https://music.youtube.com/playlist?list=PL123%0A",
		"https://music.youtube.com/playlist?list=PL<script>",
	}

	for _, input := range inputs {
		_, err := NormalizeURL(input)
		if err == nil {
			t.Errorf("NormalizeURL(%q) succeeded, expected error", input)
			continue
		}
		var urlErr *URLError
		if !errors.As(err, &urlErr) {
			t.Errorf("NormalizeURL(%q) error type = %T, expected *URLError", input, err)
		}
	}
}

func TestNormalizeURLs(t *testing.T) {
	valid, errs := NormalizeURLs([]string{
		"https://music.youtube.com/playlist?list=PL1",
		"https://example.com/nope",
		"https://www.youtube.com/playlist?list=PL2",
	})
	if len(valid) != 2 {
		t.Errorf("valid count = %d, expected 2", len(valid))
	}
	if len(errs) != 1 {
		t.Errorf("error count = %d, expected 1", len(errs))
	}
}

package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Source is one playlist entry in a batch file.
type Source struct {
	Name      string `yaml:"name"`
	URL       string `yaml:"url"`
	CreateM3U *bool  `yaml:"create_m3u"` // nil means inherit the global flag
}

// batchFile is the on-disk batch document. A bare list of sources is also
// accepted for convenience.
type batchFile struct {
	Playlists []Source `yaml:"playlists"`
}

// LoadSources reads a YAML batch file listing playlists to download.
// Accepted layouts:
//
//	playlists:
//	  - name: Road trip
//	    url: https://music.youtube.com/playlist?list=...
//	    create_m3u: true
//
// or a bare top-level list of the same entries.
func LoadSources(path string) ([]Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigError{Message: fmt.Sprintf("Cannot read batch file: %v", err)}
	}

	var doc batchFile
	if err := yaml.Unmarshal(data, &doc); err == nil && len(doc.Playlists) > 0 {
		return validateSources(doc.Playlists)
	}

	var list []Source
	if err := yaml.Unmarshal(data, &list); err != nil {
		return nil, &ConfigError{Message: fmt.Sprintf("Invalid batch file %s: %v", path, err)}
	}
	return validateSources(list)
}

func validateSources(sources []Source) ([]Source, error) {
	if len(sources) == 0 {
		return nil, &ConfigError{Message: "Batch file contains no playlists"}
	}
	for i, s := range sources {
		if s.URL == "" {
			return nil, &ConfigError{Message: fmt.Sprintf("Batch entry %d is missing a url", i+1)}
		}
	}
	return sources, nil
}

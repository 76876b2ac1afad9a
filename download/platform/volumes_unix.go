//go:build !windows

package platform

import (
	"os"
	"path/filepath"
)

// mountRoots are where Linux and macOS mount removable media.
var mountRoots = []string{"/media", "/mnt", "/run/media", "/Volumes"}

func removableVolumes() []Volume {
	seen := make(map[string]bool)
	var volumes []Volume

	for _, root := range mountRoots {
		entries, err := os.ReadDir(root)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			path := filepath.Join(root, entry.Name())

			// /run/media nests mounts under the user name.
			if root == "/run/media" {
				nested, err := os.ReadDir(path)
				if err != nil {
					continue
				}
				for _, n := range nested {
					if !n.IsDir() {
						continue
					}
					nestedPath := filepath.Join(path, n.Name())
					if !seen[nestedPath] {
						seen[nestedPath] = true
						volumes = append(volumes, Volume{Path: nestedPath, Label: n.Name()})
					}
				}
				continue
			}

			if !seen[path] {
				seen[path] = true
				volumes = append(volumes, Volume{Path: path, Label: entry.Name()})
			}
		}
	}
	return volumes
}

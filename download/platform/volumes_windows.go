//go:build windows

package platform

import (
	"fmt"
	"os"

	"golang.org/x/sys/windows"
)

func removableVolumes() []Volume {
	var volumes []Volume
	for letter := 'A'; letter <= 'Z'; letter++ {
		root := fmt.Sprintf(`%c:\`, letter)
		rootPtr, err := windows.UTF16PtrFromString(root)
		if err != nil {
			continue
		}
		if windows.GetDriveType(rootPtr) != windows.DRIVE_REMOVABLE {
			continue
		}
		if _, err := os.Stat(root); err != nil {
			continue
		}
		volumes = append(volumes, Volume{Path: root, Label: fmt.Sprintf("%c:", letter)})
	}
	return volumes
}

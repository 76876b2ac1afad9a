// Package platform detects removable volumes and checks free disk space,
// so downloads can land directly on a USB stick with enough room.
package platform

// Volume is a mounted filesystem that looks removable.
type Volume struct {
	Path  string
	Label string
}

// RemovableVolumes lists candidate removable volumes in discovery order.
// The list is best-effort: an empty result means none were detected, not
// that detection failed.
func RemovableVolumes() []Volume {
	return removableVolumes()
}

package platform

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestFreeSpace(t *testing.T) {
	free, err := FreeSpace(t.TempDir())
	if err != nil {
		t.Fatalf("FreeSpace returned error: %v", err)
	}
	if free == 0 {
		t.Error("free space = 0, expected positive on a writable temp dir")
	}
}

func TestEnsureSpace(t *testing.T) {
	dir := t.TempDir()

	if err := EnsureSpace(dir, 0); err != nil {
		t.Errorf("EnsureSpace with zero tracks returned error: %v", err)
	}
	if err := EnsureSpace(dir, 1); err != nil {
		t.Errorf("EnsureSpace for one track returned error: %v", err)
	}

	// A missing path passes rather than blocking the run.
	if err := EnsureSpace(filepath.Join(dir, "absent"), 10); err != nil {
		t.Errorf("EnsureSpace on missing path returned error: %v", err)
	}
}

func TestEnsureSpaceImpossibleRequirement(t *testing.T) {
	// Petabytes of estimated tracks exceed any test machine's disk.
	err := EnsureSpace(t.TempDir(), 1<<30)
	if err == nil {
		t.Fatal("expected space error for an absurd track count")
	}
	var spaceErr *SpaceError
	if !errors.As(err, &spaceErr) {
		t.Fatalf("error type = %T, expected *SpaceError", err)
	}
	if spaceErr.Required == 0 {
		t.Error("required bytes = 0, expected positive")
	}
}

package core

import (
	"os"
	"path/filepath"
	"testing"
)

func TestReadPairingCode(t *testing.T) {
	dir := t.TempDir()

	if got := ReadPairingCode(dir); got != "" {
		t.Errorf("missing file: got %q, want empty", got)
	}

	if err := os.WriteFile(PairingCodePath(dir), []byte("  ABC-123\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if got := ReadPairingCode(dir); got != "ABC-123" {
		t.Errorf("got %q, want trimmed code", got)
	}

	// Re-read every call.
	if err := os.WriteFile(PairingCodePath(dir), []byte("XYZ"), 0o644); err != nil {
		t.Fatal(err)
	}
	if got := ReadPairingCode(dir); got != "XYZ" {
		t.Errorf("got %q after rewrite, want XYZ", got)
	}

	if got := ReadPairingCode(""); got != "" {
		t.Errorf("empty dir: got %q", got)
	}
}

func TestPairingCodePath(t *testing.T) {
	got := PairingCodePath("/agent")
	if got != filepath.Join("/agent", "pairing-code.txt") {
		t.Errorf("got %q", got)
	}
}

func TestClearPairingCode_EmptiesWithoutDeleting(t *testing.T) {
	dir := t.TempDir()
	path := PairingCodePath(dir)
	if err := os.WriteFile(path, []byte("SECRET"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := ClearPairingCode(dir); err != nil {
		t.Fatalf("ClearPairingCode() error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("file should still exist: %v", err)
	}
	if len(data) != 0 {
		t.Errorf("content = %q, want empty", data)
	}
}

func TestClearPairingCode_MissingFileIsNotAnError(t *testing.T) {
	dir := t.TempDir()

	if err := ClearPairingCode(dir); err != nil {
		t.Fatalf("ClearPairingCode() error: %v", err)
	}
	if FileExists(PairingCodePath(dir)) {
		t.Error("ClearPairingCode should not create the file")
	}
}

package core

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// PairingCodeFileName is the file the agent writes its pairing code to.
const PairingCodeFileName = "pairing-code.txt"

// PairingCodePath returns the pairing artifact path inside agentDir.
func PairingCodePath(agentDir string) string {
	return filepath.Join(agentDir, PairingCodeFileName)
}

// ReadPairingCode returns the trimmed pairing code, or "" if the file is
// missing, unreadable or empty. The file is read fresh on every call.
func ReadPairingCode(agentDir string) string {
	if agentDir == "" {
		return ""
	}
	data, err := os.ReadFile(PairingCodePath(agentDir))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// ClearPairingCode empties the pairing artifact. The file itself is kept so
// the agent can write to the same path on its next run. A missing file is
// not an error.
func ClearPairingCode(agentDir string) error {
	if agentDir == "" {
		return nil
	}
	path := PairingCodePath(agentDir)
	if !FileExists(path) {
		return nil
	}
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		return fmt.Errorf("clearing pairing code: %w", err)
	}
	return nil
}

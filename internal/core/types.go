// Package core provides the business logic for agentlauncher.
// It has zero UI dependencies and is independently testable.
package core

// Config represents the launcher configuration stored at ~/.agentlauncher/config.json.
type Config struct {
	AgentDir string   `json:"agentDir,omitempty"` // Selected agent working directory
	MediaDir string   `json:"mediaDir,omitempty"` // Media folder written into the agent's .env
	Settings Settings `json:"settings"`
}

// Settings holds user preferences.
type Settings struct {
	AgentPort       int  `json:"agentPort"`       // Port the agent binds; cleaned up on shutdown
	ClearCodeOnExit bool `json:"clearCodeOnExit"` // Empty pairing-code.txt on shutdown
}

// FolderCheck is the result of validating an agent working directory.
type FolderCheck struct {
	Path            string `json:"path"`
	Name            string `json:"name,omitempty"`    // package.json name
	Version         string `json:"version,omitempty"` // package.json version
	HasManifest     bool   `json:"hasManifest"`       // package.json present
	HasEntryPoint   bool   `json:"hasEntryPoint"`     // src/index.js present
	HasPairingFile  bool   `json:"hasPairingFile"`    // pairing-code.txt present
	HasDependencies bool   `json:"hasDependencies"`   // node_modules present
	HasProdScript   bool   `json:"hasProdScript"`     // package.json declares scripts.prod
	ManifestError   string `json:"manifestError,omitempty"`
}

// State is the lifecycle state of the supervised agent process.
type State int

const (
	StateIdle     State = iota // No process has been started
	StateStarting              // Spawned, waiting for the pairing code
	StateRunning               // Spawned and past the readiness poll
	StateStopped               // Stopped explicitly or exited on its own
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

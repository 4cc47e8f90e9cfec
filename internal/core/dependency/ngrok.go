package dependency

import (
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// NewNgrok creates the tunneling client dependency.
func NewNgrok() *BaseDependency {
	return &BaseDependency{
		name:        Ngrok,
		displayName: "ngrok",
		downloads: map[string]Download{
			"darwin": {
				URL:      "https://bin.equinox.io/c/4VmDzA7iaHb/ngrok-stable-darwin-arm64.zip",
				FileName: "ngrok.zip",
				Kind:     ArchiveZip,
				Binary:   "ngrok",
			},
		},
	}
}

func init() { Register(NewNgrok(), 3) }

// ngrokConfig covers both config layouts: v2 keeps authtoken at the top
// level, v3 nests it under agent.
type ngrokConfig struct {
	AuthToken string `yaml:"authtoken"`
	Agent     struct {
		AuthToken string `yaml:"authtoken"`
	} `yaml:"agent"`
}

// NgrokConfigPaths returns the locations ngrok reads its config from,
// most specific first.
func NgrokConfigPaths(home string) []string {
	return []string{
		filepath.Join(home, ".config", "ngrok", "ngrok.yml"),
		filepath.Join(home, "Library", "Application Support", "ngrok", "ngrok.yml"),
		filepath.Join(home, "AppData", "Local", "ngrok", "ngrok.yml"),
		filepath.Join(home, ".ngrok2", "ngrok.yml"),
	}
}

// NgrokAuthConfigured reports whether any ngrok config under home sets an
// authtoken, and the path of the first config file that does. Unreadable
// or malformed files are skipped.
func NgrokAuthConfigured(home string) (bool, string) {
	for _, p := range NgrokConfigPaths(home) {
		data, err := os.ReadFile(p)
		if err != nil {
			continue
		}
		var cfg ngrokConfig
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			continue
		}
		if strings.TrimSpace(cfg.AuthToken) != "" || strings.TrimSpace(cfg.Agent.AuthToken) != "" {
			return true, p
		}
	}
	return false, ""
}

package core

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/joho/godotenv"
)

const agentEnvFileName = ".env"

// MediaPathKeys are the .env keys pointed at the media folder.
var MediaPathKeys = []string{"VIDEO_ROOT_DIR", "WATCH_PATH"}

// mediaKeyPatterns match a whole KEY=value line, stopping before \r so
// CRLF files keep their line endings.
var mediaKeyPatterns = func() map[string]*regexp.Regexp {
	m := make(map[string]*regexp.Regexp, len(MediaPathKeys))
	for _, k := range MediaPathKeys {
		m[k] = regexp.MustCompile(`(?m)^` + regexp.QuoteMeta(k) + `=[^\r\n]*`)
	}
	return m
}()

// AgentEnvPath returns the path of the agent's .env file.
func AgentEnvPath(agentDir string) string {
	return filepath.Join(agentDir, agentEnvFileName)
}

// WriteMediaPaths rewrites every VIDEO_ROOT_DIR and WATCH_PATH assignment in
// the agent's .env to mediaDir. All other lines are kept verbatim. Keys that
// do not appear in the file are not added.
func WriteMediaPaths(agentDir, mediaDir string) error {
	if agentDir == "" {
		return &ConfigWriteError{Err: ErrAgentDirNotSelected}
	}

	path := AgentEnvPath(agentDir)
	data, err := os.ReadFile(path)
	if err != nil {
		return &ConfigWriteError{Path: path, Err: err}
	}

	content := string(data)
	for _, k := range MediaPathKeys {
		content = mediaKeyPatterns[k].ReplaceAllLiteralString(content, k+"="+mediaDir)
	}

	info, err := os.Stat(path)
	if err != nil {
		return &ConfigWriteError{Path: path, Err: err}
	}
	if err := os.WriteFile(path, []byte(content), info.Mode().Perm()); err != nil {
		return &ConfigWriteError{Path: path, Err: err}
	}
	return nil
}

// ReadAgentEnv parses the agent's .env file.
func ReadAgentEnv(agentDir string) (map[string]string, error) {
	if agentDir == "" {
		return nil, ErrAgentDirNotSelected
	}
	env, err := godotenv.Read(AgentEnvPath(agentDir))
	if err != nil {
		return nil, fmt.Errorf("reading agent env: %w", err)
	}
	return env, nil
}

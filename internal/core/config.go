package core

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

const (
	configDirName  = ".agentlauncher"
	configFileName = "config.json"

	// DefaultAgentPort is the port the agent binds when running in production mode.
	DefaultAgentPort = 3001
)

// ConfigManager handles reading and writing the launcher configuration.
type ConfigManager struct {
	configDir string
	mu        sync.RWMutex
}

// NewConfigManager creates a ConfigManager using the default config path (~/.agentlauncher/).
func NewConfigManager() (*ConfigManager, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("getting home directory: %w", err)
	}
	return &ConfigManager{
		configDir: filepath.Join(home, configDirName),
	}, nil
}

// NewConfigManagerWithDir creates a ConfigManager using a custom config directory.
// Useful for testing.
func NewConfigManagerWithDir(dir string) *ConfigManager {
	return &ConfigManager{configDir: dir}
}

// ConfigDir returns the configuration directory path.
func (cm *ConfigManager) ConfigDir() string {
	return cm.configDir
}

// ConfigPath returns the full path to the config file.
func (cm *ConfigManager) ConfigPath() string {
	return filepath.Join(cm.configDir, configFileName)
}

// LogsDir returns the directory holding launcher and agent logs.
func (cm *ConfigManager) LogsDir() string {
	return filepath.Join(cm.configDir, "logs")
}

// Load reads the config from disk. Returns default config if file doesn't exist.
func (cm *ConfigManager) Load() (*Config, error) {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	data, err := os.ReadFile(cm.ConfigPath())
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.Settings.AgentPort <= 0 {
		cfg.Settings.AgentPort = DefaultAgentPort
	}
	return cfg, nil
}

// Save writes the config to disk, creating the directory if needed.
func (cm *ConfigManager) Save(cfg *Config) error {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if err := os.MkdirAll(cm.configDir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	// Write atomically: write to temp file then rename
	tmpPath := cm.ConfigPath() + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	if err := os.Rename(tmpPath, cm.ConfigPath()); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("saving config: %w", err)
	}

	return nil
}

// Update loads the config, applies fn and saves the result.
func (cm *ConfigManager) Update(fn func(cfg *Config)) (*Config, error) {
	cfg, err := cm.Load()
	if err != nil {
		return nil, err
	}
	fn(cfg)
	if err := cm.Save(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ConfigKeys lists the JSON paths accepted by Get and Set.
var ConfigKeys = []string{"agentDir", "mediaDir", "settings.agentPort", "settings.clearCodeOnExit"}

// Get returns the value stored at a JSON path such as "settings.agentPort".
func (cm *ConfigManager) Get(key string) (string, error) {
	if err := checkConfigKey(key); err != nil {
		return "", err
	}
	cfg, err := cm.Load()
	if err != nil {
		return "", err
	}
	data, err := json.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("marshaling config: %w", err)
	}
	return gjson.GetBytes(data, key).String(), nil
}

// Set stores value at a JSON path. JSON literals (numbers, booleans) are
// stored as such; anything else is stored as a string.
func (cm *ConfigManager) Set(key, value string) (*Config, error) {
	if err := checkConfigKey(key); err != nil {
		return nil, err
	}
	cfg, err := cm.Load()
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("marshaling config: %w", err)
	}

	var updated *Config
	if json.Valid([]byte(value)) {
		if raw, err := sjson.SetRawBytes(data, key, []byte(value)); err == nil {
			updated, _ = decodeConfig(raw)
		}
	}
	if updated == nil {
		raw, err := sjson.SetBytes(data, key, value)
		if err != nil {
			return nil, fmt.Errorf("setting %s: %w", key, err)
		}
		if updated, err = decodeConfig(raw); err != nil {
			return nil, fmt.Errorf("invalid value for %s: %q", key, value)
		}
	}

	if err := cm.Save(updated); err != nil {
		return nil, err
	}
	return updated, nil
}

func decodeConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func checkConfigKey(key string) error {
	for _, k := range ConfigKeys {
		if k == key {
			return nil
		}
	}
	return fmt.Errorf("unknown config key %q; available: %s", key, strings.Join(ConfigKeys, ", "))
}

// DefaultConfig returns the configuration used when none is saved.
func DefaultConfig() *Config {
	return &Config{
		Settings: Settings{
			AgentPort:       DefaultAgentPort,
			ClearCodeOnExit: true,
		},
	}
}

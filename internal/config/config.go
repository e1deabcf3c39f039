package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/OggyMishra/claude-compte/internal/optimizer"
)

// DefaultPort is used when neither the config file nor flags set one.
const DefaultPort = 3456

// Config holds user settings. All fields are optional; flags override them.
type Config struct {
	Port        int                   `yaml:"port"`
	NoOpen      bool                  `yaml:"no_open"`
	ProjectsDir string                `yaml:"projects_dir"`
	CachePath   string                `yaml:"cache_path"`
	Thresholds  *optimizer.Thresholds `yaml:"thresholds"`
}

// configPath returns the path to the config file
func configPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".claude-compte.yaml"), nil
}

// Load loads the configuration from disk. A missing file yields defaults.
func Load() (*Config, error) {
	path, err := configPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{Port: DefaultPort}, nil
		}
		return nil, err
	}

	cfg := Config{Port: DefaultPort}
	// Seed the full default thresholds before decoding so a partial
	// thresholds block overrides only the keys it names; absent keys keep
	// their defaults instead of zeroing.
	defaults := optimizer.DefaultThresholds()
	cfg.Thresholds = &defaults
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if cfg.Port == 0 {
		cfg.Port = DefaultPort
	}

	return &cfg, nil
}

// Save saves the configuration to disk.
func Save(cfg *Config) error {
	path, err := configPath()
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}

// OptimizerThresholds resolves the effective tip thresholds.
func (c *Config) OptimizerThresholds() optimizer.Thresholds {
	if c.Thresholds != nil {
		return *c.Thresholds
	}
	return optimizer.DefaultThresholds()
}

// Package config holds scriptpack configuration. Everything has a
// conventional default so running the tool with no flags and no config
// file packages ./*.py into BrowserBox_with_scripts.html.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the conventional config file location.
const DefaultPath = "scriptpack.yaml"

// Config holds all scriptpack configuration.
type Config struct {
	Scripts  ScriptsConfig  `yaml:"scripts"`
	Document DocumentConfig `yaml:"document"`
	Watch    WatchConfig    `yaml:"watch"`
	Serve    ServeConfig    `yaml:"serve"`
}

// ScriptsConfig controls script discovery.
type ScriptsConfig struct {
	// Dir is scanned non-recursively for scripts.
	Dir string `yaml:"dir"`

	// Extension filter, including the dot.
	Extension string `yaml:"extension"`

	// Exclude lists base names never embedded. The default keeps a
	// leftover copy of the legacy embedder out of its own output.
	Exclude []string `yaml:"exclude"`
}

// DocumentConfig names the host document and the output file.
type DocumentConfig struct {
	Target string `yaml:"target"`
	Output string `yaml:"output"`
}

// WatchConfig configures the rebuild watcher.
type WatchConfig struct {
	Debounce string `yaml:"debounce"`
}

// ServeConfig configures the preview server.
type ServeConfig struct {
	Addr string `yaml:"addr"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Scripts: ScriptsConfig{
			Dir:       ".",
			Extension: ".py",
			Exclude:   []string{"embed_scripts.py"},
		},
		Document: DocumentConfig{
			Target: "BrowserBox.html",
			Output: "BrowserBox_with_scripts.html",
		},
		Watch: WatchConfig{
			Debounce: "500ms",
		},
		Serve: ServeConfig{
			Addr: ":7777",
		},
	}
}

// Load loads configuration from a YAML file, returning defaults when the
// file does not exist. Environment variables override file values.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if dir := os.Getenv("SCRIPTPACK_DIR"); dir != "" {
		c.Scripts.Dir = dir
	}
	if target := os.Getenv("SCRIPTPACK_TARGET"); target != "" {
		c.Document.Target = target
	}
	if out := os.Getenv("SCRIPTPACK_OUTPUT"); out != "" {
		c.Document.Output = out
	}
	if addr := os.Getenv("SCRIPTPACK_ADDR"); addr != "" {
		c.Serve.Addr = addr
	}
}

// GetDebounce returns the watch debounce as a duration.
func (c *Config) GetDebounce() time.Duration {
	d, err := time.ParseDuration(c.Watch.Debounce)
	if err != nil {
		return 500 * time.Millisecond
	}
	return d
}

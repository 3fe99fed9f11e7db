// internal/config/config.go
//
// This package handles configuration and the ~/.lonboard directory structure.
// Every machine that runs lonboard gets a data directory holding the config
// file, the stored credentials and the activity log.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// DataDirName is the directory we create under the user's home.
	DataDirName = ".lonboard"

	defaultBaseURL = "http://localhost:8000"

	// Environment overrides, applied after the YAML file is read.
	envBaseURL = "LONBOARD_BASE_URL"
	envDataDir = "LONBOARD_DATA_DIR"
)

const defaultConfigYAML = `# lonboard configuration
version: 1

# Base URL of the Lon backend API.
backend:
  base_url: http://localhost:8000

# Views shown in the projects menu. Remove entries to hide a view.
views:
  default: table
  available:
    - table
    - kanban
    - calendar
`

// BackendConfig holds connection settings for the Lon API.
type BackendConfig struct {
	BaseURL string `yaml:"base_url"`
}

// ViewsConfig captures which project views are enabled and which one opens first.
type ViewsConfig struct {
	Default   string   `yaml:"default"`
	Available []string `yaml:"available,omitempty"`
}

// FileConfig models ~/.lonboard/config.yaml.
type FileConfig struct {
	Version int           `yaml:"version"`
	Backend BackendConfig `yaml:"backend"`
	Views   ViewsConfig   `yaml:"views"`
}

// Config holds the runtime configuration for lonboard.
type Config struct {
	// DataDir is where config, credentials and logs live (~/.lonboard).
	DataDir string

	File FileConfig
}

// InitDataDir creates the data directory structure and a default config file.
// Called on startup before anything else touches the directory.
func InitDataDir(dataDir string) error {
	dirs := []string{
		dataDir,
		filepath.Join(dataDir, "logs"),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return ensureConfigFile(filepath.Join(dataDir, "config.yaml"))
}

// DefaultDataDir resolves the data directory: LONBOARD_DATA_DIR wins,
// otherwise ~/.lonboard.
func DefaultDataDir() (string, error) {
	if dir := strings.TrimSpace(os.Getenv(envDataDir)); dir != "" {
		return filepath.Clean(dir), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("config: resolve home dir: %w", err)
	}
	return filepath.Join(home, DataDirName), nil
}

// NewConfig creates a Config populated from the YAML file and environment.
func NewConfig(dataDir string) (*Config, error) {
	cfg := &Config{
		DataDir: dataDir,
		File:    defaultFileConfig(),
	}
	if err := cfg.loadFileConfig(); err != nil {
		return nil, err
	}
	cfg.applyEnvOverrides()
	return cfg, nil
}

// ConfigPath returns the on-disk location of the config file.
func (c *Config) ConfigPath() string {
	return filepath.Join(c.DataDir, "config.yaml")
}

// CredentialsPath returns where the token store persists credentials.
func (c *Config) CredentialsPath() string {
	return filepath.Join(c.DataDir, "credentials.json")
}

// LogPath returns the activity log location.
func (c *Config) LogPath() string {
	return filepath.Join(c.DataDir, "logs", "lonboard.log")
}

// BaseURL returns the backend base URL.
func (c *Config) BaseURL() string {
	return c.File.Backend.BaseURL
}

// DefaultView returns the configured initial project view.
func (c *Config) DefaultView() string {
	return c.File.Views.Default
}

// AvailableViews returns the enabled project views.
func (c *Config) AvailableViews() []string {
	return c.File.Views.Available
}

// SetDefaultView updates the initial view and persists the value back to
// config.yaml so the preference survives restarts.
func (c *Config) SetDefaultView(view string) error {
	view = strings.ToLower(strings.TrimSpace(view))
	if view == "" {
		return fmt.Errorf("config: view name is required")
	}
	if !contains(c.File.Views.Available, view) {
		c.File.Views.Available = append(c.File.Views.Available, view)
	}
	c.File.Views.Default = view
	return c.saveFileConfig()
}

func (c *Config) loadFileConfig() error {
	path := c.ConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	var parsed FileConfig
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}

	parsed.applyDefaults()
	parsed.normalize()
	if err := parsed.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	c.File = parsed
	return nil
}

func (c *Config) applyEnvOverrides() {
	if url := strings.TrimSpace(os.Getenv(envBaseURL)); url != "" {
		c.File.Backend.BaseURL = strings.TrimRight(url, "/")
	}
}

func defaultFileConfig() FileConfig {
	return FileConfig{
		Version: 1,
		Backend: BackendConfig{BaseURL: defaultBaseURL},
		Views: ViewsConfig{
			Default:   "table",
			Available: []string{"table", "kanban", "calendar"},
		},
	}
}

func (fc *FileConfig) applyDefaults() {
	if fc.Version == 0 {
		fc.Version = 1
	}
	if strings.TrimSpace(fc.Backend.BaseURL) == "" {
		fc.Backend.BaseURL = defaultBaseURL
	}
	if strings.TrimSpace(fc.Views.Default) == "" {
		fc.Views.Default = "table"
	}
	if len(fc.Views.Available) == 0 {
		fc.Views.Available = []string{"table", "kanban", "calendar"}
	}
}

func (fc *FileConfig) normalize() {
	fc.Backend.BaseURL = strings.TrimRight(strings.TrimSpace(fc.Backend.BaseURL), "/")
	fc.Views.Default = strings.ToLower(strings.TrimSpace(fc.Views.Default))
	for i := range fc.Views.Available {
		fc.Views.Available[i] = strings.ToLower(strings.TrimSpace(fc.Views.Available[i]))
	}
	if fc.Views.Default != "" && !contains(fc.Views.Available, fc.Views.Default) {
		fc.Views.Available = append(fc.Views.Available, fc.Views.Default)
	}
}

func (fc *FileConfig) validate() error {
	if fc.Version < 1 {
		return fmt.Errorf("config version must be >= 1")
	}
	if !strings.HasPrefix(fc.Backend.BaseURL, "http://") && !strings.HasPrefix(fc.Backend.BaseURL, "https://") {
		return fmt.Errorf("backend.base_url must start with http:// or https://")
	}
	for _, view := range fc.Views.Available {
		switch view {
		case "table", "kanban", "calendar":
		default:
			return fmt.Errorf("views.available contains unknown view %q", view)
		}
	}
	return nil
}

func (c *Config) saveFileConfig() error {
	if c == nil {
		return fmt.Errorf("config: nil receiver")
	}
	c.File.applyDefaults()
	c.File.normalize()
	if err := c.File.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := os.MkdirAll(c.DataDir, 0o755); err != nil {
		return fmt.Errorf("config: ensure data dir: %w", err)
	}
	data, err := yaml.Marshal(c.File)
	if err != nil {
		return fmt.Errorf("config: encode config: %w", err)
	}
	if err := os.WriteFile(c.ConfigPath(), data, 0o644); err != nil {
		return fmt.Errorf("config: write config: %w", err)
	}
	return nil
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if strings.EqualFold(strings.TrimSpace(v), target) {
			return true
		}
	}
	return false
}

func ensureConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
}

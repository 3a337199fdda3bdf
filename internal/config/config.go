// Package config provides configuration management for cursorrules.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"
)

// ProjectFile is the optional per-project configuration file, read from the
// project root.
const ProjectFile = ".cursorrules.yaml"

const currentVersion = 1

// ProjectConfig supplies defaults for command line flags. Flags always win.
type ProjectConfig struct {
	Version int      `yaml:"version"`
	Output  string   `yaml:"output,omitempty"`
	Source  string   `yaml:"source,omitempty"`
	Flat    bool     `yaml:"flat,omitempty"`
	Only    []string `yaml:"only,omitempty"`

	path string
}

// Path returns the file the config was loaded from, or "" when the project
// has none.
func (c *ProjectConfig) Path() string {
	return c.path
}

// LoadProject reads <root>/.cursorrules.yaml. A missing file yields an empty
// config.
func LoadProject(root string) (*ProjectConfig, error) {
	path := filepath.Join(root, ProjectFile)

	data, err := os.ReadFile(path) //nolint:gosec // path is inside the project root
	if errors.Is(err, os.ErrNotExist) {
		return &ProjectConfig{Version: currentVersion}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	return Parse(path, data)
}

// Parse decodes and validates a project config. path is used in error messages.
func Parse(path string, data []byte) (*ProjectConfig, error) {
	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	cfg.path = path

	if cfg.Version == 0 {
		cfg.Version = currentVersion
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks every field and reports all problems at once.
func (c *ProjectConfig) Validate() error {
	errs := &ValidationErrors{}

	if c.Version != currentVersion {
		errs.Add(NewFieldError(c.path, "version", fmt.Sprint(c.Version),
			fmt.Errorf("%w (expected %d)", ErrUnsupportedVersion, currentVersion)))
	}

	if c.Output != "" && strings.TrimSpace(c.Output) == "" {
		errs.Add(NewFieldError(c.path, "output", c.Output, fmt.Errorf("%w: blank path", ErrInvalidConfig)))
	}

	for _, pattern := range c.Only {
		if !doublestar.ValidatePattern(pattern) {
			errs.Add(NewFieldError(c.path, "only", pattern, fmt.Errorf("%w: bad glob", ErrInvalidConfig)))
		}
	}

	if errs.HasErrors() {
		return errs
	}

	return nil
}

// SourceDir resolves Source against root, expanding a leading ~.
// Returns "" when no source is configured.
func (c *ProjectConfig) SourceDir(root string) string {
	if c.Source == "" {
		return ""
	}

	source := ExpandPath(c.Source)
	if filepath.IsAbs(source) {
		return filepath.Clean(source)
	}

	return filepath.Join(root, source)
}

// ExpandPath expands ~ to the user's home directory.
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[2:])
		}
	} else if path == "~" {
		home, err := os.UserHomeDir()
		if err == nil {
			path = home
		}
	}

	return path
}

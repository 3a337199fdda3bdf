package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/AntoineGS/cursorrules/internal/platform"
)

// DefaultDestinationDir is where rules go when no output is given.
const DefaultDestinationDir = ".cursor"

const (
	appDataDir  = ".config/cursorrules"
	historyFile = "history.db"
)

// Context is the explicit environment of one invocation. It is built once
// from flags; nothing downstream reads the working directory or environment.
type Context struct {
	ProjectRoot        string
	DefaultDestination string
	Platform           *platform.Platform
}

// NewContext creates a Context rooted at projectRoot, which must be absolute.
func NewContext(projectRoot string, plat *platform.Platform) (*Context, error) {
	if strings.TrimSpace(projectRoot) == "" {
		return nil, fmt.Errorf("%w: project root is required", ErrInvalidConfig)
	}
	if !filepath.IsAbs(projectRoot) {
		return nil, fmt.Errorf("%w: project root must be absolute: %s", ErrInvalidConfig, projectRoot)
	}

	info, err := os.Stat(projectRoot)
	if err != nil {
		return nil, fmt.Errorf("reading project root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: project root is not a directory: %s", ErrInvalidConfig, projectRoot)
	}

	if plat == nil {
		plat = platform.Detect()
	}

	root := filepath.Clean(projectRoot)

	return &Context{
		ProjectRoot:        root,
		DefaultDestination: filepath.Join(root, DefaultDestinationDir),
		Platform:           plat,
	}, nil
}

// HistoryPath returns where the install history database lives.
// Returns an empty string if the home directory cannot be determined.
func HistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	return filepath.Join(home, appDataDir, historyFile)
}

// Package platform provides OS detection for destination path handling.
package platform

import (
	"fmt"
	"log/slog"
	"runtime"
	"strings"
)

// Supported operating system identifiers.
const (
	// OSLinux represents Linux and other POSIX systems
	OSLinux = "linux"
	// OSWindows represents Windows operating systems
	OSWindows = "windows"
	// OSDarwin represents macOS
	OSDarwin = "darwin"
)

// Platform describes the target filesystem that rules are written to.
type Platform struct {
	OS string
}

// Detect reports the platform the binary was built for.
func Detect() *Platform {
	osType := detectOS()
	slog.Debug("detected platform", slog.String("os", osType))

	return &Platform{OS: osType}
}

func detectOS() string {
	switch runtime.GOOS {
	case "windows":
		return OSWindows
	case "darwin":
		return OSDarwin
	}

	return OSLinux
}

// Parse validates an OS name given on the command line.
func Parse(osType string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(osType)) {
	case OSLinux:
		return OSLinux, nil
	case OSWindows:
		return OSWindows, nil
	case OSDarwin, "macos":
		return OSDarwin, nil
	}

	return "", fmt.Errorf("invalid OS override: %s (must be 'linux', 'darwin' or 'windows')", osType)
}

// IsWindows reports whether the target is Windows.
func (p *Platform) IsWindows() bool {
	return p.OS == OSWindows
}

// CaseInsensitive reports whether the target filesystem compares names
// without regard to case. Windows and macOS default volumes do.
func (p *Platform) CaseInsensitive() bool {
	return p.OS == OSWindows || p.OS == OSDarwin
}

// WithOS returns a copy of the Platform with the OS field overridden.
func (p *Platform) WithOS(osType string) *Platform {
	newP := *p
	newP.OS = osType

	return &newP
}

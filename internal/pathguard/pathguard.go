// Package pathguard validates user supplied destination directories before
// anything is written to them.
//
// Input may use POSIX or Windows separators regardless of the host. Windows
// roots (drive letters and UNC shares) are recognised on every host, but only
// a Windows host can resolve them, so elsewhere they are reported as outside
// the project root.
package pathguard

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/AntoineGS/cursorrules/internal/platform"
)

// forbiddenChars are rejected in every non-root segment, on every platform.
// Control characters 0x00-0x1F are rejected separately.
const forbiddenChars = `<>:"|?*\#$%&@!{}`

var (
	separatorRun = regexp.MustCompile(`[\\/]+`)
	driveSegment = regexp.MustCompile(`^[A-Za-z]:$`)
)

var reservedNames = map[string]bool{
	"con": true, "prn": true, "aux": true, "nul": true,
	"com1": true, "com2": true, "com3": true, "com4": true, "com5": true,
	"com6": true, "com7": true, "com8": true, "com9": true,
	"lpt1": true, "lpt2": true, "lpt3": true, "lpt4": true, "lpt5": true,
	"lpt6": true, "lpt7": true, "lpt8": true, "lpt9": true,
}

type rootKind int

const (
	rootNone  rootKind = iota // relative path
	rootSlash                 // "/x" or "\x"
	rootDrive                 // "C:\x" or "C:/x"
	rootUNC                   // "\\server\share\x"
)

// Validator checks destinations against a project root boundary.
type Validator struct {
	platform *platform.Platform
	root     string
}

// New creates a Validator confined to projectRoot. Relative roots are made
// absolute against the host working directory once, here.
func New(projectRoot string, plat *platform.Platform) (*Validator, error) {
	if strings.TrimSpace(projectRoot) == "" {
		return nil, fmt.Errorf("project root is required")
	}

	root, err := filepath.Abs(projectRoot)
	if err != nil {
		return nil, fmt.Errorf("resolving project root: %w", err)
	}

	if plat == nil {
		plat = platform.Detect()
	}

	return &Validator{
		platform: plat,
		root:     filepath.Clean(root),
	}, nil
}

// Root returns the absolute project root.
func (v *Validator) Root() string {
	return v.root
}

// Validate returns the absolute, project-confined form of raw or a
// *SegmentError naming the rejected segment.
func (v *Validator) Validate(raw string) (string, error) {
	attempted := raw

	if strings.TrimSpace(raw) == "" {
		return "", reject(ErrEmptyDestination, "", attempted)
	}

	// Legacy "--output=value" leftovers arrive as "=value".
	path := raw
	if strings.HasPrefix(path, "=") {
		path = strings.TrimSpace(strings.TrimPrefix(path, "="))
		if path == "" {
			return "", reject(ErrEmptyDestination, "", attempted)
		}
	}

	segments := separatorRun.Split(path, -1)

	kind, start, badRoot := classifyRoot(path, segments)
	if badRoot != "" {
		return "", reject(ErrInvalidCharacter, badRoot, attempted)
	}

	clean := make([]string, 0, len(segments))
	for i := start; i < len(segments); i++ {
		segment := segments[i]
		if segment == "" {
			continue
		}

		switch {
		case segment == "..":
			return "", reject(ErrPathTraversal, segment, attempted)
		case segment == ".":
			if i == 0 && kind == rootNone {
				continue
			}
			return "", reject(ErrInvalidCharacter, segment, attempted)
		case hasForbiddenChars(segment), isReservedName(segment):
			return "", reject(ErrInvalidCharacter, segment, attempted)
		}

		clean = append(clean, segment)
	}

	if kind == rootNone {
		return filepath.Join(append([]string{v.root}, clean...)...), nil
	}

	resolved, ok := v.resolveRooted(kind, segments, clean)
	if !ok || !v.within(resolved) {
		if resolved == "" {
			resolved = path
		}
		return "", reject(ErrOutsideRoot, resolved, attempted)
	}

	return resolved, nil
}

// classifyRoot reports the root shape of path and the index of the first
// content segment. A non-empty badRoot is a root that is not a valid drive or
// UNC share.
func classifyRoot(path string, segments []string) (kind rootKind, start int, badRoot string) {
	switch {
	case strings.HasPrefix(path, `\\`):
		if len(segments) < 3 || segments[1] == "" || segments[2] == "" {
			return rootNone, 0, path
		}
		return rootUNC, 3, ""

	case driveSegment.MatchString(segments[0]):
		if len(path) < 3 || (path[2] != '\\' && path[2] != '/') {
			return rootNone, 0, segments[0]
		}
		return rootDrive, 1, ""

	case path[0] == '/' || path[0] == '\\':
		return rootSlash, 1, ""
	}

	return rootNone, 0, ""
}

// resolveRooted builds an absolute host path for an absolute input. Windows
// roots resolve only on a Windows host.
func (v *Validator) resolveRooted(kind rootKind, segments, clean []string) (string, bool) {
	hostWindows := filepath.Separator == '\\'
	sep := string(filepath.Separator)

	var base string
	switch kind {
	case rootSlash:
		base = filepath.VolumeName(v.root) + sep
	case rootDrive:
		if !hostWindows {
			return "", false
		}
		base = strings.ToUpper(segments[0][:1]) + ":" + sep
	case rootUNC:
		if !hostWindows {
			return "", false
		}
		base = sep + sep + segments[1] + sep + segments[2] + sep
	}

	return filepath.Clean(base + strings.Join(clean, sep)), true
}

// within reports whether path equals the root or descends from it.
func (v *Validator) within(path string) bool {
	root := v.root
	if v.platform.CaseInsensitive() {
		path = strings.ToLower(path)
		root = strings.ToLower(root)
	}

	if path == root {
		return true
	}

	prefix := root
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}

	return strings.HasPrefix(path, prefix)
}

func hasForbiddenChars(segment string) bool {
	for i := 0; i < len(segment); i++ {
		if segment[i] < 0x20 {
			return true
		}
	}

	return strings.ContainsAny(segment, forbiddenChars)
}

func isReservedName(segment string) bool {
	return reservedNames[strings.ToLower(segment)]
}

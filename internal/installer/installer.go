// Package installer copies rule files from a rules tree into a destination
// directory.
package installer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"

	"github.com/AntoineGS/cursorrules/internal/catalog"
	"github.com/AntoineGS/cursorrules/internal/state"
)

// File permissions constants
const (
	// DirPerms are the default permissions for created directories (rwxr-x---)
	DirPerms os.FileMode = 0750

	// FilePerms are the permissions of installed rules (rw-r--r--); editors
	// and other tools in the project read them.
	FilePerms os.FileMode = 0644
)

// RulesDir is the parent directory of installed rules unless Flat is set.
const RulesDir = "rules"

// History records installs. *state.Store satisfies it.
type History interface {
	RecordInstall(destination, relativePath, contentHash, platformOS string) error
	LatestInstall(destination, relativePath string) (*state.InstallRecord, error)
}

// Installer copies rules from source into validated destinations. The
// destination passed to its methods must already be absolute and confined.
type Installer struct {
	source     fs.FS
	out        io.Writer
	logger     *slog.Logger
	history    History
	platformOS string
	DryRun     bool
	Flat       bool
}

// New creates an Installer reading rules from source and reporting progress to out.
func New(source fs.FS, out io.Writer) *Installer {
	if out == nil {
		out = io.Discard
	}

	return &Installer{
		source: source,
		out:    out,
		logger: slog.Default(),
	}
}

// WithLogger sets a custom logger
func (i *Installer) WithLogger(logger *slog.Logger) *Installer {
	i2 := *i
	i2.logger = logger

	return &i2
}

// WithHistory returns an Installer that records every copied file.
func (i *Installer) WithHistory(h History, platformOS string) *Installer {
	i2 := *i
	i2.history = h
	i2.platformOS = platformOS

	return &i2
}

// CopyAll copies every file of the rules tree into dest.
func (i *Installer) CopyAll(ctx context.Context, dest string) error {
	var rels []string

	err := fs.WalkDir(i.source, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			rels = append(rels, p)
		}
		return nil
	})
	if err != nil {
		return NewPathError("reading", "rules tree", err)
	}

	return i.copyFiles(ctx, dest, rels)
}

// CopySelected copies only the given items into dest, in order.
func (i *Installer) CopySelected(ctx context.Context, dest string, items []catalog.Item) error {
	rels := make([]string, 0, len(items))
	for _, item := range items {
		rels = append(rels, item.RelativePath)
	}

	return i.copyFiles(ctx, dest, rels)
}

// TargetPath returns where the rule at rel is installed under dest.
func (i *Installer) TargetPath(dest, rel string) string {
	return filepath.Join(dest, filepath.FromSlash(i.installedPath(rel)))
}

func (i *Installer) installedPath(rel string) string {
	if i.Flat {
		return rel
	}
	return path.Join(RulesDir, rel)
}

func (i *Installer) copyFiles(ctx context.Context, dest string, rels []string) error {
	i.logger.Debug("copying rules",
		slog.String("destination", dest),
		slog.Int("count", len(rels)),
		slog.Bool("dry_run", i.DryRun))

	for _, rel := range rels {
		if err := ctx.Err(); err != nil {
			return err
		}

		var err error
		if i.DryRun {
			err = i.preview(dest, rel)
		} else {
			err = i.install(dest, rel)
		}
		if err != nil {
			i.logger.Error("copy failed",
				slog.String("rule", rel),
				slog.String("error", err.Error()))
			return err
		}
	}

	if i.DryRun {
		fmt.Fprintf(i.out, "Would copy %d rule(s) to %s\n", len(rels), dest)
	} else {
		fmt.Fprintf(i.out, "Copied %d rule(s) to %s\n", len(rels), dest)
	}

	return nil
}

func (i *Installer) install(dest, rel string) error {
	target := i.TargetPath(dest, rel)

	hash, err := i.copyFile(rel, target)
	if err != nil {
		return NewPathError("copy", target, err)
	}

	if i.record(dest, rel, hash) {
		fmt.Fprintf(i.out, "  %s (unchanged since last install)\n", i.installedPath(rel))
	} else {
		fmt.Fprintf(i.out, "  %s\n", i.installedPath(rel))
	}

	return nil
}

func (i *Installer) preview(dest, rel string) error {
	target := i.TargetPath(dest, rel)

	incoming, err := fs.ReadFile(i.source, rel)
	if err != nil {
		return NewPathError("read", rel, err)
	}

	installed, err := os.ReadFile(target) //nolint:gosec // target is a validated destination
	switch {
	case errors.Is(err, fs.ErrNotExist):
		fmt.Fprintf(i.out, "  would copy %s\n", i.installedPath(rel))
	case err != nil:
		return NewPathError("read", target, err)
	default:
		diff := unifiedDiff(installed, incoming, target)
		if diff == "" {
			fmt.Fprintf(i.out, "  unchanged %s\n", i.installedPath(rel))
			return nil
		}
		fmt.Fprintf(i.out, "  would overwrite %s\n%s", i.installedPath(rel), diff)
	}

	return nil
}

// record writes the install to history and reports whether the previous
// install of the same rule at dest had identical content. History is best
// effort.
func (i *Installer) record(dest, rel, hash string) (unchanged bool) {
	if i.history == nil {
		return false
	}

	installed := i.installedPath(rel)

	prev, err := i.history.LatestInstall(dest, installed)
	if err != nil {
		i.logger.Debug("could not read install history",
			slog.String("rule", installed),
			slog.String("error", err.Error()))
	}
	unchanged = prev != nil && prev.ContentHash == hash

	if err := i.history.RecordInstall(dest, installed, hash, i.platformOS); err != nil {
		i.logger.Warn("could not record install",
			slog.String("rule", installed),
			slog.String("error", err.Error()))
	}

	return unchanged
}

// copyFile copies rel from the rules tree to dst and returns the sha256 of
// the copied content. An existing dst is overwritten.
func (i *Installer) copyFile(rel, dst string) (hash string, err error) {
	srcFile, openErr := i.source.Open(rel)
	if openErr != nil {
		return "", fmt.Errorf("opening source: %w", openErr)
	}

	defer func() {
		if closeErr := srcFile.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing source file: %w", closeErr)
		}
	}()

	if mkdirErr := os.MkdirAll(filepath.Dir(dst), DirPerms); mkdirErr != nil {
		return "", fmt.Errorf("creating destination directory: %w", mkdirErr)
	}

	dstFile, createErr := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, FilePerms) //nolint:gosec // validated destination
	if createErr != nil {
		return "", fmt.Errorf("creating destination: %w", createErr)
	}

	defer func() {
		if cerr := dstFile.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing destination: %w", cerr)
		}
	}()

	h := sha256.New()
	if _, err = io.Copy(io.MultiWriter(dstFile, h), srcFile); err != nil {
		return "", fmt.Errorf("copying data: %w", err)
	}

	if err = dstFile.Sync(); err != nil {
		return "", fmt.Errorf("syncing destination: %w", err)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

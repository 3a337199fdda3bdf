// Package catalog discovers the rule files available for distribution.
package catalog

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Extension is the file extension of a rule.
const Extension = ".mdc"

// Category groups rules in the source tree. The set is closed.
type Category string

// Rule categories, in display order.
const (
	CategoryStandards Category = "standards"
	CategoryTest      Category = "test"
	CategoryUtils     Category = "utils"
)

// Categories lists every known category in display order.
var Categories = []Category{CategoryStandards, CategoryTest, CategoryUtils}

// ParseCategory returns the Category named s.
func ParseCategory(s string) (Category, bool) {
	for _, c := range Categories {
		if string(c) == strings.ToLower(strings.TrimSpace(s)) {
			return c, true
		}
	}

	return "", false
}

// Entry is one rule file found by Scan.
type Entry struct {
	// Name is the file name without the rule extension.
	Name string
	// RelativePath is slash separated and relative to the rules root.
	RelativePath string
	// AbsolutePathHint is the on-disk location when scanning a directory,
	// empty for the bundled tree.
	AbsolutePathHint string
}

// Index maps each category to its rules in scan order.
type Index map[Category][]Entry

// Categories returns the categories that have at least one rule.
func (idx Index) Categories() []Category {
	var cats []Category
	for _, c := range Categories {
		if len(idx[c]) > 0 {
			cats = append(cats, c)
		}
	}

	return cats
}

// Len returns the number of rules across all categories.
func (idx Index) Len() int {
	n := 0
	for _, entries := range idx {
		n += len(entries)
	}

	return n
}

// Items flattens the index into unselected items, category by category.
func (idx Index) Items() []Item {
	var items []Item
	for _, c := range idx.Categories() {
		items = append(items, NewItems(c, idx[c])...)
	}

	return items
}

// Catalog scans a rule tree laid out as <category>/<name>.mdc.
type Catalog struct {
	fsys   fs.FS
	logger *slog.Logger
	dir    string
}

// New creates a Catalog over fsys, for example the bundled assets.
func New(fsys fs.FS) *Catalog {
	return &Catalog{
		fsys:   fsys,
		logger: slog.Default(),
	}
}

// FromDir creates a Catalog over a rule tree on disk.
func FromDir(dir string) (*Catalog, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving rules directory: %w", err)
	}

	info, err := os.Stat(absDir)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("rules directory does not exist: %s", absDir)
	}
	if err != nil {
		return nil, fmt.Errorf("reading rules directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", absDir)
	}

	c := New(os.DirFS(absDir))
	c.dir = absDir

	return c, nil
}

// WithLogger returns a copy of the Catalog that logs to logger.
func (c *Catalog) WithLogger(logger *slog.Logger) *Catalog {
	c2 := *c
	c2.logger = logger

	return &c2
}

// FS returns the rule tree the catalog reads from.
func (c *Catalog) FS() fs.FS {
	return c.fsys
}

// Scan lists the rules of every category. A category directory that is
// missing or unreadable yields no rules.
func (c *Catalog) Scan() (Index, error) {
	if _, err := fs.Stat(c.fsys, "."); err != nil {
		return nil, fmt.Errorf("reading rules root: %w", err)
	}

	idx := make(Index, len(Categories))

	for _, category := range Categories {
		dirEntries, err := fs.ReadDir(c.fsys, string(category))
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				c.logger.Debug("skipping unreadable category",
					slog.String("category", string(category)),
					slog.String("error", err.Error()))
			}
			idx[category] = nil
			continue
		}

		var entries []Entry
		for _, de := range dirEntries {
			if de.IsDir() || !strings.HasSuffix(de.Name(), Extension) {
				continue
			}

			rel := path.Join(string(category), de.Name())
			entry := Entry{
				Name:         strings.TrimSuffix(de.Name(), Extension),
				RelativePath: rel,
			}
			if c.dir != "" {
				entry.AbsolutePathHint = filepath.Join(c.dir, filepath.FromSlash(rel))
			}

			entries = append(entries, entry)
		}

		c.logger.Debug("scanned category",
			slog.String("category", string(category)),
			slog.Int("rules", len(entries)))

		idx[category] = entries
	}

	return idx, nil
}

// Package assets bundles the rule tree shipped with the binary.
package assets

import (
	"embed"
	"io/fs"
)

//go:embed rules
var bundled embed.FS

// Rules returns the bundled rule tree rooted at the category directories.
func Rules() fs.FS {
	sub, err := fs.Sub(bundled, "rules")
	if err != nil {
		// "rules" is embedded at build time; Sub only fails on an invalid name.
		panic(err)
	}

	return sub
}

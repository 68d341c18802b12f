// Package assets ships the default images and stylesheets the site components import.
package assets

import (
	"embed"
	"io/fs"
)

//go:embed defaults
var defaults embed.FS

// Defaults returns the built-in asset tree rooted at its top directory
// (images/..., styles/...).
func Defaults() fs.FS {
	sub, err := fs.Sub(defaults, "defaults")
	if err != nil {
		panic(err) // embedded path is fixed at compile time
	}
	return sub
}

package assets

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/grapesite/internal/foundation/errors"
)

// Resolver resolves root-relative asset imports ("images/grapejuice.svg")
// against a user asset root, falling back to the built-in defaults.
type Resolver struct {
	root     string
	defaults fs.FS
}

// NewResolver creates a Resolver. root may be empty or missing.
func NewResolver(root string, defaults fs.FS) *Resolver {
	return &Resolver{root: root, defaults: defaults}
}

// ReadFile returns the contents of the named asset.
func (r *Resolver) ReadFile(name string) ([]byte, error) {
	clean, err := cleanName(name)
	if err != nil {
		return nil, err
	}

	if r.root != "" {
		data, err := os.ReadFile(filepath.Join(r.root, filepath.FromSlash(clean)))
		if err == nil {
			return data, nil
		}
		if !os.IsNotExist(err) {
			return nil, errors.WrapError(err, errors.CategoryAsset, "failed to read asset").
				WithContext("asset", clean).
				Build()
		}
	}
	if r.defaults != nil {
		if data, err := fs.ReadFile(r.defaults, clean); err == nil {
			return data, nil
		}
	}
	return nil, errors.AssetError("asset not found").
		WithContext("asset", clean).
		WithContext("root", r.root).
		Build()
}

// Publish copies each named asset to the same relative path under outDir.
func (r *Resolver) Publish(names []string, outDir string) error {
	for _, name := range names {
		data, err := r.ReadFile(name)
		if err != nil {
			return err
		}
		clean, _ := cleanName(name)
		dst := filepath.Join(outDir, filepath.FromSlash(clean))
		if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
			return errors.WrapError(err, errors.CategoryFileSystem, "failed to create asset directory").
				WithContext("path", dst).
				Build()
		}
		if err := os.WriteFile(dst, data, 0o644); err != nil { // #nosec G306 - public site asset
			return errors.WrapError(err, errors.CategoryFileSystem, "failed to write asset").
				WithContext("path", dst).
				Build()
		}
	}
	return nil
}

// cleanName rejects paths escaping the asset root.
func cleanName(name string) (string, error) {
	clean := path.Clean("/" + strings.ReplaceAll(name, "\\", "/"))[1:]
	if clean == "" || clean == "." {
		return "", errors.ValidationError("empty asset path").Build()
	}
	if !fs.ValidPath(clean) {
		return "", errors.ValidationError("invalid asset path").WithContext("asset", name).Build()
	}
	return clean, nil
}

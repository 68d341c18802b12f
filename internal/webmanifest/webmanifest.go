// Package webmanifest writes the web app manifest and the resized icon set
// derived from a single square source image.
package webmanifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	// Register decoders for source icons.
	_ "image/gif"
	_ "image/jpeg"

	"golang.org/x/image/draw"

	"git.home.luguber.info/inful/grapesite/internal/config"
	"git.home.luguber.info/inful/grapesite/internal/foundation/errors"
)

const (
	// File is the manifest file name at the site root.
	File = "manifest.webmanifest"
	// IconDir holds the generated icons.
	IconDir = "icons"
	// Favicon is the small icon linked from every page.
	Favicon     = "favicon-32x32.png"
	faviconSize = 32
)

// Manifest is the JSON document served as manifest.webmanifest.
type Manifest struct {
	Name            string `json:"name"`
	ShortName       string `json:"short_name"`
	StartURL        string `json:"start_url"`
	Display         string `json:"display"`
	ThemeColor      string `json:"theme_color"`
	BackgroundColor string `json:"background_color"`
	Icons           []Icon `json:"icons,omitempty"`
}

// Icon is a manifest icon entry.
type Icon struct {
	Src   string `json:"src"`
	Sizes string `json:"sizes"`
	Type  string `json:"type"`
}

// Result describes what Generate wrote.
type Result struct {
	Manifest *Manifest
	// Favicon is the site-relative favicon path, empty when no icon was given.
	Favicon string
	Files   []string
}

// Generate writes the manifest and icons into outDir. A nil icon produces a
// manifest without icons.
func Generate(cfg config.ManifestPlugin, icon []byte, outDir string) (*Result, error) {
	m := &Manifest{
		Name:            cfg.Name,
		ShortName:       cfg.ShortName,
		StartURL:        cfg.StartURL,
		Display:         cfg.Display,
		ThemeColor:      cfg.ThemeColor,
		BackgroundColor: cfg.BackgroundColor,
	}
	res := &Result{Manifest: m}

	if icon != nil {
		src, _, err := image.Decode(bytes.NewReader(icon))
		if err != nil {
			return nil, errors.WrapError(err, errors.CategoryAsset, "failed to decode manifest icon").
				WithContext("icon", cfg.Icon).
				Build()
		}
		if b := src.Bounds(); b.Dx() != b.Dy() {
			return nil, errors.AssetError("manifest icon must be square").
				WithContext("icon", cfg.Icon).
				WithContext("width", b.Dx()).
				WithContext("height", b.Dy()).
				Build()
		}

		for _, size := range cfg.Sizes {
			name := fmt.Sprintf("%s/icon-%dx%d.png", IconDir, size, size)
			if err := writePNG(filepath.Join(outDir, filepath.FromSlash(name)), Resize(src, size)); err != nil {
				return nil, err
			}
			m.Icons = append(m.Icons, Icon{Src: "/" + name, Sizes: fmt.Sprintf("%dx%d", size, size), Type: "image/png"})
			res.Files = append(res.Files, name)
		}

		if err := writePNG(filepath.Join(outDir, Favicon), Resize(src, faviconSize)); err != nil {
			return nil, err
		}
		res.Favicon = Favicon
		res.Files = append(res.Files, Favicon)
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryInternal, "failed to encode manifest").Build()
	}
	if err := os.WriteFile(filepath.Join(outDir, File), append(data, '\n'), 0o644); err != nil { // #nosec G306 - public site asset
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to write manifest").Build()
	}
	res.Files = append(res.Files, File)
	return res, nil
}

// Resize scales src to a size×size image.
func Resize(src image.Image, size int) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
	return dst
}

func writePNG(path string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to create icon directory").
			WithContext("path", path).
			Build()
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return errors.WrapError(err, errors.CategoryAsset, "failed to encode icon").Build()
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil { // #nosec G306 - public site asset
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to write icon").
			WithContext("path", path).
			Build()
	}
	return nil
}

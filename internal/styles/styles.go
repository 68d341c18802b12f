// Package styles publishes the site stylesheets: built-in CSS, user CSS
// overrides and user Sass sources compiled with an external sass binary.
package styles

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"git.home.luguber.info/inful/grapesite/internal/foundation/errors"
	"git.home.luguber.info/inful/grapesite/internal/logfields"
)

// OutputDir is the directory stylesheets are published to, relative to the site root.
const OutputDir = "styles"

// SassCompiler compiles a single Sass source to a CSS file.
type SassCompiler interface {
	Compile(ctx context.Context, src, dst string) error
}

// BinarySass runs the dart-sass command line compiler.
type BinarySass struct {
	Binary string
}

// Compile implements SassCompiler.
func (b BinarySass) Compile(ctx context.Context, src, dst string) error {
	bin := b.Binary
	if bin == "" {
		bin = "sass"
	}
	path, err := exec.LookPath(bin)
	if err != nil {
		return errors.WrapError(err, errors.CategoryAsset, "sass compiler not found").
			WithContext("binary", bin).
			Build()
	}
	// #nosec G204 - binary comes from configuration, arguments are file paths
	cmd := exec.CommandContext(ctx, path, "--no-source-map", "--style=compressed", src, dst)
	if out, err := cmd.CombinedOutput(); err != nil {
		return errors.WrapError(err, errors.CategoryAsset, "sass compilation failed").
			WithContext("source", src).
			WithContext("output", strings.TrimSpace(string(out))).
			Build()
	}
	return nil
}

// Publisher writes stylesheets into a site output directory.
type Publisher struct {
	defaults fs.FS
	userDir  string
	sass     SassCompiler
}

// NewPublisher creates a Publisher. defaults holds the built-in tree (styles/...);
// userDir may be empty or missing.
func NewPublisher(defaults fs.FS, userDir string, sass SassCompiler) *Publisher {
	return &Publisher{defaults: defaults, userDir: userDir, sass: sass}
}

// Publish writes every stylesheet under outDir/styles and returns their
// site-relative paths, sorted. User files override built-ins of the same name.
func (p *Publisher) Publish(ctx context.Context, outDir string) ([]string, error) {
	written := make(map[string]struct{})
	dest := filepath.Join(outDir, OutputDir)

	if p.defaults != nil {
		err := fs.WalkDir(p.defaults, OutputDir, func(name string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() || filepath.Ext(name) != ".css" {
				return err
			}
			data, err := fs.ReadFile(p.defaults, name)
			if err != nil {
				return err
			}
			if err := writeFile(filepath.Join(outDir, filepath.FromSlash(name)), data); err != nil {
				return err
			}
			written[name] = struct{}{}
			return nil
		})
		if err != nil {
			return nil, wrap(err, "failed to publish built-in stylesheets")
		}
	}

	if p.userDir != "" {
		if st, err := os.Stat(p.userDir); err == nil && st.IsDir() {
			if err := p.publishUser(ctx, dest, written); err != nil {
				return nil, wrap(err, "failed to publish stylesheets")
			}
		}
	}

	out := make([]string, 0, len(written))
	for name := range written {
		out = append(out, name)
	}
	sort.Strings(out)
	return out, nil
}

func (p *Publisher) publishUser(ctx context.Context, dest string, written map[string]struct{}) error {
	return filepath.WalkDir(p.userDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(p.userDir, path)
		if err != nil {
			return err
		}
		ext := filepath.Ext(rel)
		switch ext {
		case ".css":
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			if err := writeFile(filepath.Join(dest, rel), data); err != nil {
				return err
			}
		case ".scss", ".sass":
			if strings.HasPrefix(d.Name(), "_") {
				return nil // partial, only reachable through @use/@import
			}
			rel = strings.TrimSuffix(rel, ext) + ".css"
			target := filepath.Join(dest, rel)
			if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
				return err
			}
			if p.sass == nil {
				return errors.AssetError("sass sources present but no compiler configured").
					WithContext("source", path).
					Build()
			}
			if err := p.sass.Compile(ctx, path, target); err != nil {
				return err
			}
			slog.Debug("Compiled stylesheet", logfields.Path(rel))
		default:
			return nil
		}
		written[OutputDir+"/"+filepath.ToSlash(rel)] = struct{}{}
		return nil
	})
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to create stylesheet directory").
			WithContext("path", path).
			Build()
	}
	if err := os.WriteFile(path, data, 0o644); err != nil { // #nosec G306 - public site asset
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to write stylesheet").
			WithContext("path", path).
			Build()
	}
	return nil
}

func wrap(err error, msg string) error {
	if errors.IsClassified(err) {
		return err
	}
	return errors.WrapError(err, errors.CategoryAsset, msg).Build()
}

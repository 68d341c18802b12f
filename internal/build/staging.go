package build

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/grapesite/internal/foundation/errors"
	"git.home.luguber.info/inful/grapesite/internal/logfields"
)

// Sibling directories used while a build is in flight:
//
//	<out>.staging-XXXX  stages write here until the build succeeds
//	<out>.prev          the previous site, removed once the new one is promoted
const (
	stagingInfix = ".staging-"
	prevSuffix   = ".prev"
)

// IsOutputPath reports whether path lies in the output directory or in one of
// its staging or backup siblings.
func IsOutputPath(path, outDir string) bool {
	if outDir == "" {
		return false
	}
	rel, err := filepath.Rel(filepath.Dir(outDir), path)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return false
	}
	first, _, _ := strings.Cut(rel, string(filepath.Separator))
	base := filepath.Base(outDir)
	return first == base || first == base+prevSuffix || strings.HasPrefix(first, base+stagingInfix)
}

// beginStaging creates an empty staging directory next to finalDir. Without
// clean, the current site is copied in first so the build overlays it.
func (bs *buildState) beginStaging(finalDir string, clean bool) error {
	st, statErr := os.Stat(finalDir)
	if statErr == nil && !st.IsDir() {
		return errors.FileSystemError("output path is not a directory").
			WithContext("path", finalDir).
			Build()
	}
	parent := filepath.Dir(finalDir)
	if err := os.MkdirAll(parent, 0o750); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to create output parent directory").
			WithContext("path", parent).
			Build()
	}
	stage, err := os.MkdirTemp(parent, filepath.Base(finalDir)+stagingInfix)
	if err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to create staging directory").
			WithContext("path", parent).
			Build()
	}
	bs.finalDir = finalDir
	bs.outDir = stage
	slog.Debug("Initialized staging directory", slog.String("staging", stage), logfields.Path(finalDir))

	if clean || statErr != nil {
		return nil
	}
	if err := os.CopyFS(stage, os.DirFS(finalDir)); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to seed staging directory").
			WithContext("path", finalDir).
			Build()
	}
	return nil
}

// finalizeStaging promotes the staging directory to the final output. The
// previous site is moved aside first and restored if the promotion fails.
func (bs *buildState) finalizeStaging() error {
	if bs.finalDir == "" {
		return nil
	}
	stage, final := bs.outDir, bs.finalDir
	prev := final + prevSuffix

	if err := os.RemoveAll(prev); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to remove previous backup").
			WithContext("path", prev).
			Build()
	}
	hadPrev := false
	if _, err := os.Stat(final); err == nil {
		if err := os.Rename(final, prev); err != nil {
			return errors.WrapError(err, errors.CategoryFileSystem, "failed to back up existing output").
				WithContext("path", final).
				Build()
		}
		hadPrev = true
	}
	if err := os.Rename(stage, final); err != nil {
		if hadPrev {
			_ = os.Rename(prev, final)
		}
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to promote staging directory").
			WithContext("path", final).
			Build()
	}
	bs.outDir = final
	bs.finalDir = ""

	if hadPrev {
		if err := os.RemoveAll(prev); err != nil {
			slog.Warn("Failed to remove previous output", logfields.Path(prev), logfields.Error(err))
		}
	}
	slog.Debug("Promoted staging directory", logfields.Path(final))
	return nil
}

// abortStaging removes the staging directory of a failed build. The final
// output is left untouched.
func (bs *buildState) abortStaging() {
	if bs.finalDir == "" {
		return
	}
	stage := bs.outDir
	bs.outDir = bs.finalDir
	bs.finalDir = ""
	if err := os.RemoveAll(stage); err != nil {
		slog.Warn("Failed to remove staging directory", slog.String("staging", stage), logfields.Error(err))
	}
}

// protectedDirs lists directories the output may neither equal nor contain.
func (g *Generator) protectedDirs() []string {
	var dirs []string
	if wd, err := os.Getwd(); err == nil {
		dirs = append(dirs, wd)
	}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, home)
	}
	for _, src := range g.cfg.Plugins.Filesystem {
		dirs = append(dirs, src.Path)
	}
	dirs = append(dirs, g.cfg.Plugins.RootImport.Root, g.cfg.Plugins.Styles.Dir)
	return dirs
}

// checkOutputDir refuses an output directory that is the filesystem root or
// equals or contains a protected directory, since building replaces it.
func checkOutputDir(abs string, protected []string) error {
	out := realPath(abs)
	if out == filepath.VolumeName(out)+string(filepath.Separator) {
		return errors.ValidationError("refusing to use filesystem root as build output").
			WithContext("path", abs).
			Build()
	}
	for _, p := range protected {
		if p == "" {
			continue
		}
		pa, err := filepath.Abs(p)
		if err != nil {
			continue
		}
		if contains(out, realPath(pa)) {
			return errors.ValidationError("refusing to use directory as build output").
				WithContext("path", abs).
				WithContext("protected", pa).
				Build()
		}
	}
	return nil
}

// contains reports whether dir equals p or is one of its ancestors.
func contains(dir, p string) bool {
	rel, err := filepath.Rel(dir, p)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// realPath resolves symlinks in the longest existing prefix of abs.
func realPath(abs string) string {
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved
	}
	parent := filepath.Dir(abs)
	if parent == abs {
		return abs
	}
	return filepath.Join(realPath(parent), filepath.Base(abs))
}

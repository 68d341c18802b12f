package build

import (
	"context"
	"path/filepath"

	"git.home.luguber.info/inful/grapesite/internal/foundation/errors"
)

// stagePrepareOutput validates the output directory and opens a staging
// directory beside it. Later stages write into the staging directory; the
// site is promoted only when every stage succeeds.
func stagePrepareOutput(_ context.Context, bs *buildState) error {
	abs, err := filepath.Abs(bs.outDir)
	if err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to resolve output directory").Build()
	}
	if err := checkOutputDir(abs, bs.gen.protectedDirs()); err != nil {
		return err
	}
	return bs.beginStaging(abs, bs.gen.cfg.Output.Clean)
}

package build

import "context"

// stageWriteReport writes build-report.json into the output root.
func stageWriteReport(_ context.Context, bs *buildState) error {
	bs.report.End = bs.gen.now()
	bs.report.deriveOutcome(nil)
	return bs.report.write(bs.outDir)
}

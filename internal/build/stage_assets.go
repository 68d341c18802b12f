package build

import (
	"context"
)

// stageCopyAssets publishes every root-relative asset referenced while rendering.
func stageCopyAssets(_ context.Context, bs *buildState) error {
	names := bs.assetRefs.Values()
	if err := bs.resolver.Publish(names, bs.outDir); err != nil {
		return err
	}
	bs.report.Assets = names
	return nil
}

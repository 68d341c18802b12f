package build

import (
	"context"
	stderrors "errors"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/grapesite/internal/foundation/errors"
	"git.home.luguber.info/inful/grapesite/internal/logfields"
	"git.home.luguber.info/inful/grapesite/internal/metrics"
)

// StageName is a strongly-typed identifier for a build stage.
type StageName string

// Canonical stage names.
const (
	StagePrepareOutput    StageName = "prepare_output"
	StageDiscoverContent  StageName = "discover_content"
	StageGenerateManifest StageName = "generate_manifest"
	StageCompileStyles    StageName = "compile_styles"
	StageRenderPages      StageName = "render_pages"
	StageCopyAssets       StageName = "copy_assets"
	StageVerifyLinks      StageName = "verify_links"
	StageWriteReport      StageName = "write_report"
)

// stageFunc is a discrete unit of work in the site build.
type stageFunc func(ctx context.Context, bs *buildState) error

type stageDef struct {
	Name StageName
	Fn   stageFunc
}

func defaultStages() []stageDef {
	return []stageDef{
		{StagePrepareOutput, stagePrepareOutput},
		{StageDiscoverContent, stageDiscoverContent},
		{StageGenerateManifest, stageGenerateManifest},
		{StageCompileStyles, stageCompileStyles},
		{StageRenderPages, stageRenderPages},
		{StageCopyAssets, stageCopyAssets},
		{StageVerifyLinks, stageVerifyLinks},
		{StageWriteReport, stageWriteReport},
	}
}

// runStages executes stages in order, recording timing and stopping on the first error.
func runStages(ctx context.Context, bs *buildState, stages []stageDef) error {
	rec := bs.gen.recorder
	for _, st := range stages {
		if ctxErr := ctx.Err(); ctxErr != nil {
			rec.IncStageResult(string(st.Name), metrics.ResultCanceled)
			return canceledError(st.Name, ctxErr)
		}

		t0 := time.Now()
		err := st.Fn(ctx, bs)
		dur := time.Since(t0)

		bs.report.recordStage(st.Name, dur)
		rec.ObserveStageDuration(string(st.Name), dur)

		if err != nil {
			if isCanceled(err) {
				rec.IncStageResult(string(st.Name), metrics.ResultCanceled)
				return canceledError(st.Name, err)
			}
			rec.IncStageResult(string(st.Name), metrics.ResultFailed)
			slog.Error("Build stage failed", logfields.Stage(string(st.Name)), logfields.Error(err))
			if ce, ok := errors.AsClassified(err); ok {
				return ce.WithContext("stage", string(st.Name))
			}
			return errors.WrapError(err, errors.CategoryBuild, "build stage failed").
				WithContext("stage", string(st.Name)).
				Build()
		}

		rec.IncStageResult(string(st.Name), metrics.ResultSuccess)
		slog.Debug("Build stage completed", logfields.Stage(string(st.Name)), logfields.Duration(dur))
	}
	return nil
}

func canceledError(stage StageName, cause error) error {
	return errors.WrapError(cause, errors.CategoryRuntime, "build canceled").
		WithContext("stage", string(stage)).
		Build()
}

func isCanceled(err error) bool {
	return stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded)
}

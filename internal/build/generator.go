package build

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/grapesite/internal/assets"
	"git.home.luguber.info/inful/grapesite/internal/config"
	"git.home.luguber.info/inful/grapesite/internal/logfields"
	"git.home.luguber.info/inful/grapesite/internal/metrics"
	"git.home.luguber.info/inful/grapesite/internal/source"
	"git.home.luguber.info/inful/grapesite/internal/styles"
	"git.home.luguber.info/inful/grapesite/internal/util/sets"
)

// Generator builds the static site described by a Config.
type Generator struct {
	cfg      *config.Config
	recorder metrics.Recorder
	sass     styles.SassCompiler
	now      func() time.Time
}

// Option customizes a Generator.
type Option func(*Generator)

// WithRecorder injects a metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(g *Generator) {
		if r != nil {
			g.recorder = r
		}
	}
}

// WithSassCompiler replaces the external sass binary.
func WithSassCompiler(c styles.SassCompiler) Option {
	return func(g *Generator) { g.sass = c }
}

// NewGenerator creates a Generator for cfg.
func NewGenerator(cfg *config.Config, opts ...Option) *Generator {
	g := &Generator{
		cfg:      cfg,
		recorder: metrics.NoopRecorder{},
		sass:     styles.BinarySass{Binary: cfg.Plugins.Styles.SassBinary},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Config returns the generator configuration.
func (g *Generator) Config() *config.Config { return g.cfg }

// buildState is shared by all stages of one build.
type buildState struct {
	gen       *Generator
	outDir    string // where stages write: the staging directory once prepared
	finalDir  string // output directory awaiting promotion, empty when not staging
	report    *Report
	pages     []*source.Page
	resolver  *assets.Resolver
	favicon   string
	manifest  bool
	assetRefs sets.Ordered[string]
}

// Generate runs every stage and returns the build report. The report is
// returned even when the build fails. The output directory is replaced only
// after every stage succeeds; a failed build leaves the previous site intact.
func (g *Generator) Generate(ctx context.Context) (*Report, error) {
	id := uuid.NewString()
	bs := &buildState{
		gen:      g,
		outDir:   g.cfg.Output.Directory,
		report:   newReport(id, g.now()),
		resolver: assets.NewResolver(g.cfg.Plugins.RootImport.Root, assets.Defaults()),
	}
	log := slog.With(logfields.BuildID(id))
	log.Info("Starting site build", logfields.Path(bs.outDir))

	err := runStages(ctx, bs, defaultStages())
	if err == nil {
		err = bs.finalizeStaging()
	}
	if err != nil {
		bs.abortStaging()
	}

	bs.report.End = g.now()
	bs.report.deriveOutcome(err)
	g.recorder.ObserveBuildDuration(bs.report.Duration())
	g.recorder.IncBuildOutcome(bs.report.Outcome)

	if err != nil {
		log.Error("Site build failed", logfields.Error(err), slog.String("outcome", string(bs.report.Outcome)))
		return bs.report, err
	}
	log.Info("Site build completed",
		logfields.Count(len(bs.report.Pages)),
		logfields.Duration(bs.report.Duration()),
		slog.String("outcome", string(bs.report.Outcome)))
	return bs.report, nil
}

// Routes returns every route the next build would render, without writing
// anything. Draft pages are excluded.
func (g *Generator) Routes(ctx context.Context) ([]Route, error) {
	bs := &buildState{gen: g, report: newReport("", g.now())}
	if err := stageDiscoverContent(ctx, bs); err != nil {
		return nil, err
	}
	return g.routes(bs.pages)
}

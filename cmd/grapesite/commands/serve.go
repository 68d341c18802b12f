package commands

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	promcollect "github.com/prometheus/client_golang/prometheus/collectors"

	"git.home.luguber.info/inful/grapesite/internal/build"
	"git.home.luguber.info/inful/grapesite/internal/metrics"
	"git.home.luguber.info/inful/grapesite/internal/preview"
)

// ServeCmd builds the site, serves it and rebuilds on changes.
type ServeCmd struct {
	Output          string        `short:"o" help:"Output directory for the generated site (overrides output.directory)"`
	Host            string        `help:"Listen host (overrides serve.host)"`
	Port            int           `short:"p" help:"Listen port (overrides serve.port)"`
	RebuildInterval time.Duration `name:"rebuild-interval" help:"Also rebuild periodically (e.g. 10m)"`
	NoLiveReload    bool          `name:"no-live-reload" help:"Do not reload open pages after a rebuild"`
}

func (s *ServeCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root.Config, s.Output)
	if err != nil {
		return err
	}
	if s.Host != "" {
		cfg.Serve.Host = s.Host
	}
	if s.Port != 0 {
		cfg.Serve.Port = s.Port
	}
	if s.RebuildInterval > 0 {
		cfg.Serve.RebuildInterval = s.RebuildInterval
	}
	if s.NoLiveReload {
		cfg.Serve.LiveReload = false
	}

	reg := prom.NewRegistry()
	reg.MustRegister(promcollect.NewGoCollector(), promcollect.NewProcessCollector(promcollect.ProcessCollectorOpts{}))
	gen := build.NewGenerator(cfg, build.WithRecorder(metrics.NewPrometheusRecorder(reg)))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	return preview.NewServer(cfg, gen, reg).Run(ctx)
}

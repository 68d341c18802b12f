// Package preview serves a generated site locally and rebuilds it when
// content, assets or stylesheets change.
package preview

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/grapesite/internal/build"
	"git.home.luguber.info/inful/grapesite/internal/config"
	"git.home.luguber.info/inful/grapesite/internal/foundation/errors"
	"git.home.luguber.info/inful/grapesite/internal/logfields"
	"git.home.luguber.info/inful/grapesite/internal/metrics"
	"git.home.luguber.info/inful/grapesite/internal/version"
)

const shutdownTimeout = 5 * time.Second

// Server is the local preview server.
type Server struct {
	cfg       *config.Config
	outDir    string
	status    *buildStatus
	rebuilder *rebuilder
	hub       *liveReloadHub
	registry  *prom.Registry
	started   time.Time
}

// NewServer creates a preview server for the site built by b. reg may be nil,
// in which case /metrics is not served.
func NewServer(cfg *config.Config, b Builder, reg *prom.Registry) *Server {
	outDir, err := filepath.Abs(cfg.Output.Directory)
	if err != nil {
		outDir = cfg.Output.Directory
	}
	status := &buildStatus{}
	s := &Server{
		cfg:       cfg,
		outDir:    outDir,
		status:    status,
		rebuilder: newRebuilder(b, status, cfg.Serve.Debounce),
		registry:  reg,
		started:   time.Now(),
	}
	if cfg.Serve.LiveReload {
		s.hub = newLiveReloadHub()
		s.rebuilder.built = func(r *build.Report) { s.hub.Broadcast(r.BuildID) }
	}
	return s
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return net.JoinHostPort(s.cfg.Serve.Host, strconv.Itoa(s.cfg.Serve.Port))
}

// Run listens on the configured address and serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.Addr())
	if err != nil {
		return errors.WrapError(err, errors.CategoryServer, "failed to listen").
			WithContext("addr", s.Addr()).
			Build()
	}
	return s.Serve(ctx, ln)
}

// Serve performs the initial build, then serves on ln while watching for
// changes. It returns after a graceful shutdown once ctx is done.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.rebuilder.Build(ctx)

	watcher, err := setupFileWatcher(watchDirs(s.cfg))
	if err != nil {
		_ = ln.Close()
		return errors.WrapError(err, errors.CategoryServer, "failed to start file watcher").Build()
	}
	defer func() { _ = watcher.Close() }()

	workerCtx, stopWorker := context.WithCancel(ctx)
	defer stopWorker()
	go s.rebuilder.Run(workerCtx)
	defer s.rebuilder.Stop()

	if interval := s.cfg.Serve.RebuildInterval; interval > 0 {
		sched, err := NewScheduler()
		if err != nil {
			_ = ln.Close()
			return errors.WrapError(err, errors.CategoryServer, "failed to start scheduler").Build()
		}
		if _, err := sched.ScheduleEvery("periodic-rebuild", interval, s.rebuilder.Request); err != nil {
			_ = ln.Close()
			return errors.WrapError(err, errors.CategoryServer, "failed to schedule periodic rebuild").Build()
		}
		sched.Start()
		defer func() { _ = sched.Stop() }()
	}

	srv := &http.Server{Handler: s.Handler(), ReadHeaderTimeout: 10 * time.Second}
	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.Serve(ln) }()
	slog.Info("Preview server listening", slog.String("addr", ln.Addr().String()), logfields.Path(s.outDir))

	for {
		select {
		case <-ctx.Done():
			slog.Info("Shutting down preview server")
			if s.hub != nil {
				s.hub.Shutdown()
			}
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				slog.Warn("HTTP server shutdown error", logfields.Error(err))
			}
			return nil
		case err := <-serveErr:
			if stderrors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return errors.WrapError(err, errors.CategoryServer, "preview server failed").Build()
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			handleFileEvent(watcher, ev, s.outDir, s.rebuilder.Trigger)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("Watcher error", logfields.Error(err))
		}
	}
}

// Handler returns the preview HTTP handler: /health, /metrics, the live reload
// endpoints when enabled, and the site itself. Until the first good build the
// site answers 503 with the build error; afterwards the last promoted site is
// served even while later rebuilds fail.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	if s.registry != nil {
		mux.Handle("/metrics", metrics.HTTPHandler(s.registry))
	}

	var site http.Handler = http.FileServer(http.Dir(s.outDir))
	if s.hub != nil {
		mux.Handle(liveReloadPath, s.hub)
		mux.HandleFunc(liveReloadScript, serveLiveReloadJS)
		site = injectLiveReload(site)
	}
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		_, err, good, _ := s.status.snapshot()
		switch {
		case !good && err != nil:
			http.Error(w, fmt.Sprintf("build failed: %v", err), http.StatusServiceUnavailable)
			return
		case !good:
			http.Error(w, "site not built yet", http.StatusServiceUnavailable)
			return
		}
		site.ServeHTTP(w, r)
	})
	return mux
}

// HealthResponse is served by /health.
type HealthResponse struct {
	Status      string `json:"status"`
	Version     string `json:"version"`
	Uptime      string `json:"uptime"`
	Builds      int    `json:"builds"`
	LastBuildID string `json:"last_build_id,omitempty"`
	LastOutcome string `json:"last_outcome,omitempty"`
	LastError   string `json:"last_error,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	report, err, good, builds := s.status.snapshot()
	resp := HealthResponse{
		Status:  "healthy",
		Version: version.Version,
		Uptime:  time.Since(s.started).Truncate(time.Second).String(),
		Builds:  builds,
	}
	if report != nil {
		resp.LastBuildID = report.BuildID
		resp.LastOutcome = string(report.Outcome)
	}
	code := http.StatusOK
	if err != nil {
		resp.LastError = err.Error()
		resp.Status = "degraded"
		if !good {
			resp.Status = "unhealthy"
			code = http.StatusServiceUnavailable
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(resp)
}

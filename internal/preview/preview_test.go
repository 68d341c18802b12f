package preview

import (
	"bufio"
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"git.home.luguber.info/inful/grapesite/internal/build"
	"git.home.luguber.info/inful/grapesite/internal/config"
	"git.home.luguber.info/inful/grapesite/internal/metrics"
	"git.home.luguber.info/inful/grapesite/internal/testutil"
)

// fakeBuilder writes a fixed index page and counts builds.
type fakeBuilder struct {
	outDir string
	calls  atomic.Int32
	err    error
	block  chan struct{}
}

func (f *fakeBuilder) Generate(ctx context.Context) (*build.Report, error) {
	n := f.calls.Add(1)
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
		}
	}
	if f.err != nil {
		return &build.Report{BuildID: "failed", Outcome: metrics.ResultFailed}, f.err
	}
	if f.outDir != "" {
		if err := os.MkdirAll(f.outDir, 0o750); err != nil {
			return nil, err
		}
		if err := os.WriteFile(filepath.Join(f.outDir, "index.html"), []byte("<h1>Grapejuice</h1>"), 0o600); err != nil {
			return nil, err
		}
	}
	return &build.Report{BuildID: "build-" + strconv.Itoa(int(n)), Outcome: metrics.ResultSuccess}, nil
}

func previewConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, root := testutil.SiteConfig(t)
	cfg.Serve.Debounce = 20 * time.Millisecond
	require.NoError(t, os.MkdirAll(filepath.Join(root, "content"), 0o750))
	return cfg
}

func TestHandler_ServesSiteAfterBuild(t *testing.T) {
	cfg := previewConfig(t)
	fb := &fakeBuilder{outDir: cfg.Output.Directory}
	s := NewServer(cfg, fb, nil)
	s.rebuilder.Build(context.Background())

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Grapejuice")
}

func TestHandler_UnavailableUntilFirstGoodBuild(t *testing.T) {
	cfg := previewConfig(t)
	fb := &fakeBuilder{err: stderrors.New("boom")}
	s := NewServer(cfg, fb, nil)
	s.rebuilder.Build(context.Background())

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.Contains(t, rec.Body.String(), "boom")

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var health HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	require.Equal(t, "unhealthy", health.Status)
	require.Equal(t, "boom", health.LastError)
}

func TestHandler_ServesPreviousSiteAfterFailedRebuild(t *testing.T) {
	cfg, root := testutil.SiteConfig(t)
	cfg.Verify.Enabled = false
	testutil.WriteFile(t, filepath.Join(root, "content", "docs", "faq.md"), "# FAQ\n")
	s := NewServer(cfg, build.NewGenerator(cfg), nil)
	s.rebuilder.Build(context.Background())

	testutil.WriteFile(t, filepath.Join(root, "content", "docs", "index.md"), "# Clash\n")
	s.rebuilder.Build(context.Background())
	_, err, good, builds := s.status.snapshot()
	require.Error(t, err)
	require.True(t, good)
	require.Equal(t, 2, builds)

	h := s.Handler()
	for _, path := range []string{"/", "/docs/", "/docs/faq/"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusOK, rec.Code, path)
		require.Contains(t, rec.Body.String(), "<!DOCTYPE html>", path)
		require.Contains(t, rec.Body.String(), "Grapejuice", path)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var health HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	require.Equal(t, "degraded", health.Status)
	require.Contains(t, health.LastError, "duplicate route")
}

func TestHandler_UnavailableBeforeFirstBuild(t *testing.T) {
	cfg := previewConfig(t)
	s := NewServer(cfg, &fakeBuilder{outDir: cfg.Output.Directory}, nil)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.Contains(t, rec.Body.String(), "not built yet")
}

func TestHandler_InjectsLiveReloadScript(t *testing.T) {
	cfg := previewConfig(t)
	s := NewServer(cfg, &fakeBuilder{outDir: cfg.Output.Directory}, nil)
	s.rebuilder.Build(context.Background())
	testutil.WriteFile(t, filepath.Join(cfg.Output.Directory, "page.html"), "<html><body><p>x</p></body></html>")
	testutil.WriteFile(t, filepath.Join(cfg.Output.Directory, "site.css"), "body{}")
	h := s.Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/page.html", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `<p>x</p><script src="/livereload.js"></script></body>`)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/site.css", nil))
	require.Equal(t, "body{}", rec.Body.String())

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/livereload.js", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "EventSource('/livereload')")

	cfg.Serve.LiveReload = false
	plain := NewServer(cfg, &fakeBuilder{outDir: cfg.Output.Directory}, nil)
	plain.rebuilder.Build(context.Background())
	rec = httptest.NewRecorder()
	plain.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, "<h1>Grapejuice</h1>", rec.Body.String())
}

func TestServer_BroadcastsSuccessfulBuildsOnly(t *testing.T) {
	cfg := previewConfig(t)
	fb := &fakeBuilder{outDir: cfg.Output.Directory}
	s := NewServer(cfg, fb, nil)
	require.NotNil(t, s.hub)

	s.rebuilder.Build(context.Background())
	require.Equal(t, "build-1", s.hub.lastID)

	fb.err = stderrors.New("boom")
	s.rebuilder.Build(context.Background())
	require.Equal(t, "build-1", s.hub.lastID)
}

func TestLiveReloadHub_StreamsBuildIDs(t *testing.T) {
	hub := newLiveReloadHub()
	hub.Broadcast("first")
	srv := httptest.NewServer(hub)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	nextEvent := func() string {
		for {
			line, err := reader.ReadString('\n')
			require.NoError(t, err)
			if strings.HasPrefix(line, "data: ") {
				return strings.TrimSpace(strings.TrimPrefix(line, "data: "))
			}
		}
	}
	require.JSONEq(t, `{"build":"first"}`, nextEvent())

	require.Eventually(t, func() bool {
		hub.mu.Lock()
		defer hub.mu.Unlock()
		return len(hub.clients) == 1
	}, 2*time.Second, 5*time.Millisecond)
	hub.Broadcast("first")
	hub.Broadcast("second")
	require.JSONEq(t, `{"build":"second"}`, nextEvent())

	hub.Shutdown()
	_, err = io.ReadAll(reader)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	hub.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/livereload", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHandler_HealthReportsLastBuild(t *testing.T) {
	cfg := previewConfig(t)
	s := NewServer(cfg, &fakeBuilder{outDir: cfg.Output.Directory}, nil)
	s.rebuilder.Build(context.Background())

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var health HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	require.Equal(t, "healthy", health.Status)
	require.Equal(t, 1, health.Builds)
	require.Equal(t, "build-1", health.LastBuildID)
	require.Equal(t, string(metrics.ResultSuccess), health.LastOutcome)
}

func TestHandler_Metrics(t *testing.T) {
	cfg := previewConfig(t)
	reg := prom.NewRegistry()
	rec := metrics.NewPrometheusRecorder(reg)
	rec.IncBuildOutcome(metrics.ResultSuccess)

	s := NewServer(cfg, &fakeBuilder{}, reg)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "grapesite_")
}

func TestRebuilder_DebouncesTriggers(t *testing.T) {
	fb := &fakeBuilder{}
	r := newRebuilder(fb, &buildStatus{}, 30*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go r.Run(ctx)

	for range 5 {
		r.Trigger()
	}
	require.Eventually(t, func() bool { return fb.calls.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(100 * time.Millisecond)
	require.Equal(t, int32(1), fb.calls.Load())
}

func TestRebuilder_CoalescesRequestsDuringBuild(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	fb := &fakeBuilder{block: make(chan struct{})}
	r := newRebuilder(fb, &buildStatus{}, time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go r.Run(ctx)

	r.Request()
	require.Eventually(t, func() bool { return fb.calls.Load() == 1 }, 2*time.Second, 5*time.Millisecond)
	for range 5 {
		r.Request()
	}
	close(fb.block)

	require.Eventually(t, func() bool { return fb.calls.Load() == 2 }, 2*time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	require.Equal(t, int32(2), fb.calls.Load())
}

func TestServe_RebuildsOnContentChange(t *testing.T) {
	cfg := previewConfig(t)
	fb := &fakeBuilder{outDir: cfg.Output.Directory}
	s := NewServer(cfg, fb, nil)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	var serveErr error
	go func() {
		defer wg.Done()
		serveErr = s.Serve(ctx, ln)
	}()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/")
		if err != nil {
			return false
		}
		defer func() { _ = resp.Body.Close() }()
		body, _ := io.ReadAll(resp.Body)
		return resp.StatusCode == http.StatusOK && strings.HasPrefix(string(body), "<h1>Grapejuice</h1>")
	}, 5*time.Second, 20*time.Millisecond)

	page := filepath.Join(cfg.Plugins.Filesystem[0].Path, "faq.md")
	require.NoError(t, os.WriteFile(page, []byte("# FAQ\n"), 0o600))
	require.Eventually(t, func() bool { return fb.calls.Load() >= 2 }, 5*time.Second, 20*time.Millisecond)

	cancel()
	wg.Wait()
	require.NoError(t, serveErr)
}

func TestShouldIgnoreEvent(t *testing.T) {
	require.True(t, shouldIgnoreEvent("/tmp/.hidden.md"))
	require.True(t, shouldIgnoreEvent("/tmp/#foo#"))
	require.True(t, shouldIgnoreEvent("/tmp/foo.swp"))
	require.True(t, shouldIgnoreEvent("/tmp/foo.md~"))
	require.False(t, shouldIgnoreEvent("/tmp/visible.md"))
}

func TestWatchDirs_OnlyExistingDeduplicated(t *testing.T) {
	cfg := previewConfig(t)
	cfg.Plugins.Filesystem = append(cfg.Plugins.Filesystem, cfg.Plugins.Filesystem[0])

	dirs := watchDirs(cfg)
	require.Len(t, dirs, 1)
	require.True(t, filepath.IsAbs(dirs[0]))
}

func TestScheduler_ScheduleEvery(t *testing.T) {
	t.Run("returns job id for valid interval", func(t *testing.T) {
		s, err := NewScheduler()
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Stop() })

		id, err := s.ScheduleEvery("test", 10*time.Second, func() {})
		require.NoError(t, err)
		require.NotEmpty(t, id)
	})

	t.Run("rejects non-positive interval", func(t *testing.T) {
		s, err := NewScheduler()
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Stop() })

		_, err = s.ScheduleEvery("test", 0, func() {})
		require.Error(t, err)
	})
}

package preview

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"git.home.luguber.info/inful/grapesite/internal/build"
	"git.home.luguber.info/inful/grapesite/internal/foundation/errors"
	"git.home.luguber.info/inful/grapesite/internal/logfields"
)

// Builder produces the site. *build.Generator satisfies it.
type Builder interface {
	Generate(ctx context.Context) (*build.Report, error)
}

// rebuilder runs builds on a single worker. Requests arriving while a build
// runs collapse into one follow-up build.
type rebuilder struct {
	builder  Builder
	status   *buildStatus
	debounce time.Duration
	requests chan struct{}
	built    func(*build.Report) // called after every successful build, if set

	mu    sync.Mutex
	timer *time.Timer
}

func newRebuilder(b Builder, status *buildStatus, debounce time.Duration) *rebuilder {
	return &rebuilder{
		builder:  b,
		status:   status,
		debounce: debounce,
		requests: make(chan struct{}, 1),
	}
}

// Request queues a build without waiting.
func (r *rebuilder) Request() {
	select {
	case r.requests <- struct{}{}:
	default:
	}
}

// Trigger queues a build once no further Trigger call arrives within the debounce window.
func (r *rebuilder) Trigger() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.timer != nil {
		r.timer.Stop()
	}
	r.timer = time.AfterFunc(r.debounce, r.Request)
}

// Stop cancels a pending debounced trigger.
func (r *rebuilder) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.timer != nil {
		r.timer.Stop()
	}
}

// Run processes build requests until ctx is done.
func (r *rebuilder) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-r.requests:
			r.Build(ctx)
		}
	}
}

// Build runs one build synchronously and records its outcome.
func (r *rebuilder) Build(ctx context.Context) {
	report, err := r.builder.Generate(ctx)
	r.status.record(report, err)
	if err != nil {
		// The previous site keeps being served; only fatal errors need attention.
		if ce, ok := errors.AsClassified(err); ok && ce.IsFatal() {
			slog.Error("Rebuild failed", logfields.Error(err))
		} else {
			slog.Warn("Rebuild failed", logfields.Error(err))
		}
		return
	}
	slog.Info("Site rebuilt", logfields.BuildID(report.BuildID), logfields.Count(len(report.Pages)))
	if r.built != nil {
		r.built(report)
	}
}

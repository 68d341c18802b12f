package preview

import (
	"sync"

	"git.home.luguber.info/inful/grapesite/internal/build"
)

// buildStatus tracks the most recent build for the health endpoint and error display.
type buildStatus struct {
	mu           sync.RWMutex
	lastError    error
	lastReport   *build.Report
	builds       int
	hasGoodBuild bool
}

func (bs *buildStatus) record(report *build.Report, err error) {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	bs.builds++
	bs.lastReport = report
	bs.lastError = err
	if err == nil {
		bs.hasGoodBuild = true
	}
}

func (bs *buildStatus) snapshot() (report *build.Report, err error, hasGoodBuild bool, builds int) {
	bs.mu.RLock()
	defer bs.mu.RUnlock()
	return bs.lastReport, bs.lastError, bs.hasGoodBuild, bs.builds
}

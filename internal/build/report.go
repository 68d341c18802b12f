package build

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/grapesite/internal/foundation/errors"
	"git.home.luguber.info/inful/grapesite/internal/linkverify"
	"git.home.luguber.info/inful/grapesite/internal/metrics"
	"git.home.luguber.info/inful/grapesite/internal/version"
)

// ReportFile is written to the output root after every successful build.
const ReportFile = "build-report.json"

// PageEntry describes one written page.
type PageEntry struct {
	Route       string `json:"route"`
	File        string `json:"file"`
	Source      string `json:"source"`
	Title       string `json:"title"`
	Fingerprint string `json:"fingerprint,omitempty"`
}

// Report captures what a build did.
type Report struct {
	BuildID        string                  `json:"build_id"`
	Version        string                  `json:"version"`
	Start          time.Time               `json:"start"`
	End            time.Time               `json:"end"`
	Outcome        metrics.ResultLabel     `json:"outcome"`
	StageDurations map[string]float64      `json:"stage_durations_ms"`
	Pages          []PageEntry             `json:"pages"`
	Stylesheets    []string                `json:"stylesheets,omitempty"`
	Assets         []string                `json:"assets,omitempty"`
	ManifestFiles  []string                `json:"manifest_files,omitempty"`
	SkippedDrafts  []string                `json:"skipped_drafts,omitempty"`
	BrokenLinks    []linkverify.BrokenLink `json:"broken_links,omitempty"`
	Warnings       []string                `json:"warnings,omitempty"`
	Error          string                  `json:"error,omitempty"`
}

func newReport(id string, now time.Time) *Report {
	return &Report{
		BuildID:        id,
		Version:        version.Version,
		Start:          now,
		StageDurations: make(map[string]float64),
	}
}

// Duration is the wall time of the build.
func (r *Report) Duration() time.Duration {
	return r.End.Sub(r.Start)
}

func (r *Report) recordStage(name StageName, d time.Duration) {
	r.StageDurations[string(name)] = float64(d.Microseconds()) / 1000
}

func (r *Report) warn(msg string) {
	r.Warnings = append(r.Warnings, msg)
}

// deriveOutcome sets Outcome from err and collected warnings.
func (r *Report) deriveOutcome(err error) {
	switch {
	case err == nil && len(r.Warnings) == 0:
		r.Outcome = metrics.ResultSuccess
	case err == nil:
		r.Outcome = metrics.ResultWarning
	case isCanceled(err):
		r.Outcome = metrics.ResultCanceled
	default:
		r.Outcome = metrics.ResultFailed
	}
	if err != nil {
		r.Error = err.Error()
	}
}

func (r *Report) write(outDir string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "failed to encode build report").Build()
	}
	if err := os.WriteFile(filepath.Join(outDir, ReportFile), append(data, '\n'), 0o644); err != nil { // #nosec G306 - public site artifact
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to write build report").Build()
	}
	return nil
}

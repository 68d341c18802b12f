package logfields

import (
	"log/slog"
	"time"
)

// Canonical log field name constants to avoid drift across packages.
const (
	KeyBuildID    = "build_id"
	KeyStage      = "stage"
	KeyDurationMS = "duration_ms"
	KeyRoute      = "route"
	KeyPage       = "page"
	KeyPath       = "path"
	KeySource     = "source"
	KeyCount      = "count"
	KeyURL        = "url"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func BuildID(id string) slog.Attr  { return slog.String(KeyBuildID, id) }
func Stage(name string) slog.Attr  { return slog.String(KeyStage, name) }
func Route(r string) slog.Attr     { return slog.String(KeyRoute, r) }
func Page(p string) slog.Attr      { return slog.String(KeyPage, p) }
func Path(p string) slog.Attr      { return slog.String(KeyPath, p) }
func Source(name string) slog.Attr { return slog.String(KeySource, name) }
func Count(n int) slog.Attr        { return slog.Int(KeyCount, n) }
func URL(u string) slog.Attr       { return slog.String(KeyURL, u) }

func Duration(d time.Duration) slog.Attr {
	return slog.Float64(KeyDurationMS, float64(d.Microseconds())/1000)
}

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}

// Package metrics provides build observability hooks for grapesite.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so metrics collection never needs nil checks. The preview
// server swaps in a PrometheusRecorder and exposes it over HTTP.
package metrics

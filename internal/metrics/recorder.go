// Package metrics provides observability hooks for build and gate metrics.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so one-shot CLI builds carry zero metrics overhead. The
// preview server swaps in the Prometheus implementation and exposes it for
// scraping.
package metrics

import "time"

// TargetResult enumerates target evaluation outcomes for counters.
type TargetResult string

const (
	TargetRebuilt TargetResult = "rebuilt"
	TargetFresh   TargetResult = "fresh"
	TargetFailed  TargetResult = "failed"
)

// Recorder defines observability hooks for build and gate metrics.
type Recorder interface {
	ObserveTargetDuration(target string, d time.Duration)
	IncTargetResult(target string, result TargetResult)
	ObserveBuildDuration(d time.Duration)
	IncLinkChecked(broken bool)
	IncLinkCacheHit()
}

// NoopRecorder is a Recorder that does nothing (default when metrics are not
// configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveTargetDuration(string, time.Duration) {}
func (NoopRecorder) IncTargetResult(string, TargetResult)        {}
func (NoopRecorder) ObserveBuildDuration(time.Duration)          {}
func (NoopRecorder) IncLinkChecked(bool)                         {}
func (NoopRecorder) IncLinkCacheHit()                            {}

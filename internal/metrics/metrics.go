// Package metrics provides Prometheus metrics for the hlscheck test run.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// StreamsTestedTotal counts completed stream tests by verdict.
	StreamsTestedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hlscheck_streams_tested_total",
		Help: "Total number of completed stream tests, by verdict.",
	}, []string{"verdict"})

	// AnalyzerRunsTotal counts external analyzer invocations by detection
	// mode and outcome (detected/clean/error).
	AnalyzerRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hlscheck_analyzer_runs_total",
		Help: "Total number of ffmpeg/ffprobe analyzer invocations, by mode and outcome.",
	}, []string{"mode", "outcome"})

	// ManifestFetchTotal counts playlist fetches by result (ok/error).
	ManifestFetchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hlscheck_manifest_fetch_total",
		Help: "Total number of playlist fetches, by result.",
	}, []string{"result"})

	// MSNReadingsTotal counts media-sequence-number samples collected.
	MSNReadingsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hlscheck_msn_readings_total",
		Help: "Total number of media sequence number readings collected.",
	})
)

// RecordVerdict increments the stream test counter for the given verdict.
func RecordVerdict(verdict string) {
	StreamsTestedTotal.WithLabelValues(verdict).Inc()
}

// RecordAnalyzerRun increments the analyzer invocation counter.
func RecordAnalyzerRun(mode, outcome string) {
	AnalyzerRunsTotal.WithLabelValues(mode, outcome).Inc()
}

// RecordManifestFetch increments the playlist fetch counter.
func RecordManifestFetch(ok bool) {
	if ok {
		ManifestFetchTotal.WithLabelValues("ok").Inc()
	} else {
		ManifestFetchTotal.WithLabelValues("error").Inc()
	}
}

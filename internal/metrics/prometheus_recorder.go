package metrics

import (
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	registry       *prom.Registry
	targetDuration *prom.HistogramVec
	targetResults  *prom.CounterVec
	buildDuration  prom.Histogram
	linksChecked   *prom.CounterVec
	linkCacheHits  prom.Counter
}

// NewPrometheusRecorder constructs a recorder with its own registry,
// including the standard Go and process collectors.
func NewPrometheusRecorder() *PrometheusRecorder {
	reg := prom.NewRegistry()
	pr := &PrometheusRecorder{
		registry: reg,
		targetDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "bookbuilder",
			Name:      "target_duration_seconds",
			Help:      "Duration of individual target conversions",
			Buckets:   prom.DefBuckets,
		}, []string{"target"}),
		targetResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "bookbuilder",
			Name:      "target_results_total",
			Help:      "Target evaluation outcomes (rebuilt, fresh, failed)",
		}, []string{"target", "result"}),
		buildDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: "bookbuilder",
			Name:      "build_duration_seconds",
			Help:      "Total duration of an aggregate build",
			Buckets:   prom.DefBuckets,
		}),
		linksChecked: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "bookbuilder",
			Name:      "links_checked_total",
			Help:      "Link checks by verdict",
		}, []string{"verdict"}),
		linkCacheHits: prom.NewCounter(prom.CounterOpts{
			Namespace: "bookbuilder",
			Name:      "link_cache_hits_total",
			Help:      "Link checks answered from the cache",
		}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		pr.targetDuration, pr.targetResults, pr.buildDuration, pr.linksChecked, pr.linkCacheHits,
	)
	return pr
}

func (pr *PrometheusRecorder) ObserveTargetDuration(target string, d time.Duration) {
	pr.targetDuration.WithLabelValues(target).Observe(d.Seconds())
}

func (pr *PrometheusRecorder) IncTargetResult(target string, result TargetResult) {
	pr.targetResults.WithLabelValues(target, string(result)).Inc()
}

func (pr *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	pr.buildDuration.Observe(d.Seconds())
}

func (pr *PrometheusRecorder) IncLinkChecked(broken bool) {
	verdict := "ok"
	if broken {
		verdict = "broken"
	}
	pr.linksChecked.WithLabelValues(verdict).Inc()
}

func (pr *PrometheusRecorder) IncLinkCacheHit() {
	pr.linkCacheHits.Inc()
}

// Handler returns an HTTP handler serving this recorder's registry.
func (pr *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(pr.registry, promhttp.HandlerOpts{})
}

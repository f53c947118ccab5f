package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// DashboardMetrics records composition latency and cache behavior for the
// KPI dashboard pipeline.
type DashboardMetrics struct {
	composeDuration *prometheus.HistogramVec
	cacheHits       *prometheus.CounterVec
	cacheMisses     *prometheus.CounterVec
	staleDiscards   prometheus.Counter
	sourceFailures  *prometheus.CounterVec
}

// NewDashboardMetrics registers the dashboard metrics on the provided registerer.
func NewDashboardMetrics(reg prometheus.Registerer) *DashboardMetrics {
	if reg == nil {
		return &DashboardMetrics{}
	}
	composeDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dashboard_compose_duration_seconds",
		Help:    "Duration of KPI dashboard composition in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"source"})
	cacheHits := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dashboard_cache_hits",
		Help: "Dashboard snapshot cache hits.",
	}, []string{"mode"})
	cacheMisses := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dashboard_cache_misses",
		Help: "Dashboard snapshot cache misses.",
	}, []string{"mode"})
	staleDiscards := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dashboard_stale_discards",
		Help: "Composed payloads discarded because the cache key moved on.",
	})
	sourceFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dashboard_source_failures",
		Help: "KPI source fetch failures by source.",
	}, []string{"source"})
	reg.MustRegister(composeDuration, cacheHits, cacheMisses, staleDiscards, sourceFailures)
	return &DashboardMetrics{
		composeDuration: composeDuration,
		cacheHits:       cacheHits,
		cacheMisses:     cacheMisses,
		staleDiscards:   staleDiscards,
		sourceFailures:  sourceFailures,
	}
}

// ObserveCompose records the duration of a source composition.
func (d *DashboardMetrics) ObserveCompose(source string, duration time.Duration) {
	if d == nil || d.composeDuration == nil {
		return
	}
	d.composeDuration.WithLabelValues(normalizeLabel(source)).Observe(duration.Seconds())
}

// IncCacheHit increments the cache-hit counter for the given mode.
func (d *DashboardMetrics) IncCacheHit(mode string) {
	if d == nil || d.cacheHits == nil {
		return
	}
	d.cacheHits.WithLabelValues(normalizeLabel(mode)).Inc()
}

// IncCacheMiss increments the cache-miss counter for the given mode.
func (d *DashboardMetrics) IncCacheMiss(mode string) {
	if d == nil || d.cacheMisses == nil {
		return
	}
	d.cacheMisses.WithLabelValues(normalizeLabel(mode)).Inc()
}

// IncStaleDiscard counts a payload thrown away under last-cache-key-wins.
func (d *DashboardMetrics) IncStaleDiscard() {
	if d == nil || d.staleDiscards == nil {
		return
	}
	d.staleDiscards.Inc()
}

// IncSourceFailure counts a KPI source fetch failure.
func (d *DashboardMetrics) IncSourceFailure(source string) {
	if d == nil || d.sourceFailures == nil {
		return
	}
	d.sourceFailures.WithLabelValues(normalizeLabel(source)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	GroupingsTotal       *prometheus.CounterVec
	GroupingFailures     prometheus.Counter
	GroupingDuration     prometheus.Histogram
	PagesFetchedTotal    prometheus.Counter
	FetchFailuresTotal   prometheus.Counter
	RateLimitHitsTotal   prometheus.Counter
	RecordsAccumulated   prometheus.Gauge
	SearchesTotal        prometheus.Counter
	PageCacheHitsTotal   prometheus.Counter
	PageCacheMissesTotal prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		GroupingsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "directory_groupings_total",
			Help: "Total number of grouping requests by criterion and backend",
		}, []string{"criterion", "backend"}),
		GroupingFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "directory_grouping_failures_total",
			Help: "Total number of grouping requests that failed in the backend",
		}),
		GroupingDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "directory_grouping_duration_seconds",
			Help:    "Latency from grouping request submission to result delivery",
			Buckets: prometheus.DefBuckets,
		}),
		PagesFetchedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "directory_pages_fetched_total",
			Help: "Total number of upstream pages fetched successfully",
		}),
		FetchFailuresTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "directory_fetch_failures_total",
			Help: "Total number of upstream page fetches that failed",
		}),
		RateLimitHitsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "directory_rate_limit_hits_total",
			Help: "Total number of upstream rate limit responses",
		}),
		RecordsAccumulated: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "directory_records_accumulated",
			Help: "Current size of the accumulated working set",
		}),
		SearchesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "directory_searches_total",
			Help: "Total number of stable (debounced) search term changes",
		}),
		PageCacheHitsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "directory_page_cache_hits_total",
			Help: "Total number of upstream pages served from the cache",
		}),
		PageCacheMissesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "directory_page_cache_misses_total",
			Help: "Total number of page cache misses",
		}),
	}
}

func (m *Metrics) ObserveGrouping(criterion, backend string, d time.Duration) {
	if m == nil {
		return
	}
	m.GroupingsTotal.WithLabelValues(criterion, backend).Inc()
	m.GroupingDuration.Observe(d.Seconds())
}

func (m *Metrics) IncrementGroupingFailures() {
	if m == nil {
		return
	}
	m.GroupingFailures.Inc()
}

func (m *Metrics) IncrementPagesFetched() {
	if m == nil {
		return
	}
	m.PagesFetchedTotal.Inc()
}

func (m *Metrics) IncrementFetchFailures() {
	if m == nil {
		return
	}
	m.FetchFailuresTotal.Inc()
}

func (m *Metrics) IncrementRateLimitHits() {
	if m == nil {
		return
	}
	m.RateLimitHitsTotal.Inc()
}

func (m *Metrics) SetRecordsAccumulated(n int) {
	if m == nil {
		return
	}
	m.RecordsAccumulated.Set(float64(n))
}

func (m *Metrics) IncrementSearches() {
	if m == nil {
		return
	}
	m.SearchesTotal.Inc()
}

func (m *Metrics) IncrementPageCacheHits() {
	if m == nil {
		return
	}
	m.PageCacheHitsTotal.Inc()
}

func (m *Metrics) IncrementPageCacheMisses() {
	if m == nil {
		return
	}
	m.PageCacheMissesTotal.Inc()
}

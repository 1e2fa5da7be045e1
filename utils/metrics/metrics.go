package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// SearchMetrics instruments the quoting and cycle-search pipeline.
type SearchMetrics struct {
	QuotesComputed     prometheus.Counter
	QuoteCacheHits     prometheus.Counter
	QuoteErrors        prometheus.Counter
	CyclesClosed       prometheus.Counter
	OpportunitiesFound prometheus.Counter
	SearchDuration     prometheus.Histogram
}

// NewSearchMetrics registers search metrics on reg under the namespace.
func NewSearchMetrics(namespace string, reg prometheus.Registerer) *SearchMetrics {
	factory := promauto.With(reg)
	return &SearchMetrics{
		QuotesComputed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quotes_computed_total",
			Help:      "Total number of pool quotes computed",
		}),
		QuoteCacheHits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quote_cache_hits_total",
			Help:      "Total number of quotes served from the memoization cache",
		}),
		QuoteErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quote_errors_total",
			Help:      "Total number of quoting errors that pruned a branch",
		}),
		CyclesClosed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cycles_closed_total",
			Help:      "Total number of cycles closed during search, profitable or not",
		}),
		OpportunitiesFound: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "opportunities_found_total",
			Help:      "Total number of profitable, deduplicated opportunities emitted",
		}),
		SearchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_duration_seconds",
			Help:      "Duration of one cycle-search invocation",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 12),
		}),
	}
}

// RefreshMetrics instruments the account refresh path.
type RefreshMetrics struct {
	BatchesFetched prometheus.Counter
	AccountsLoaded prometheus.Counter
	PoolFailures   prometheus.Counter
	PoolsLive      prometheus.Gauge
}

// NewRefreshMetrics registers refresh metrics on reg under the namespace.
func NewRefreshMetrics(namespace string, reg prometheus.Registerer) *RefreshMetrics {
	factory := promauto.With(reg)
	return &RefreshMetrics{
		BatchesFetched: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refresh_batches_total",
			Help:      "Total number of account batches fetched",
		}),
		AccountsLoaded: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refresh_accounts_total",
			Help:      "Total number of account payloads received",
		}),
		PoolFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refresh_pool_failures_total",
			Help:      "Total number of pools whose refresh failed",
		}),
		PoolsLive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pools_live",
			Help:      "Number of pools live after the last refresh",
		}),
	}
}

package catalog

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "linkshelf",
		Subsystem: "catalog_cache",
		Name:      "lookups_total",
		Help:      "Public catalog cache lookups by result.",
	}, []string{"result"})

	cacheRemovals = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "linkshelf",
		Subsystem: "catalog_cache",
		Name:      "removals_total",
		Help:      "Public catalog cache entries removed by reason.",
	}, []string{"reason"})

	fetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "linkshelf",
		Subsystem: "catalog",
		Name:      "fetch_duration_seconds",
		Help:      "Time spent building a public catalog page on cache miss.",
		Buckets:   prometheus.DefBuckets,
	})
)

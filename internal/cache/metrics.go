package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "loser_pays_cache_hits_total",
		Help: "Cache reads served from Redis.",
	})
	metricCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "loser_pays_cache_misses_total",
		Help: "Cache reads that fell back to the store.",
	})
)

package store

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	loadsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "newsdesk_store_loads_total",
		Help: "The total number of catalog fetches started",
	})

	loadFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "newsdesk_store_load_failures_total",
		Help: "Catalog fetches that failed and left an empty catalog",
	})

	loadsCoalesced = promauto.NewCounter(prometheus.CounterOpts{
		Name: "newsdesk_store_loads_coalesced_total",
		Help: "Load calls that attached to a fetch already in flight",
	})

	catalogSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "newsdesk_store_catalog_items",
		Help: "The number of items in the current catalog",
	})

	loadDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "newsdesk_store_load_duration_seconds",
		Help:    "Duration of catalog fetches including retries",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 14), // Start at 1ms, double each bucket
	})
)

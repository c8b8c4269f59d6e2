package bot

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// UpdatesTotal counts processed Telegram updates by kind and result.
	UpdatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_bot_updates_total",
			Help: "Total number of Telegram updates processed, by kind and status",
		},
		[]string{"kind", "status"},
	)

	// UpdateDuration tracks how long each update took to handle.
	UpdateDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storefront_bot_update_duration_seconds",
			Help:    "Time spent handling a Telegram update",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind"},
	)
)

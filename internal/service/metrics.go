package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ScreensResolved counts rendered screens by navigation level.
	ScreensResolved = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_screens_resolved_total",
			Help: "Total number of menu screens resolved, by level and result",
		},
		[]string{"level", "status"},
	)

	// CartMutations counts cart changes by action.
	CartMutations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_cart_mutations_total",
			Help: "Total number of cart mutations, by action",
		},
		[]string{"action"},
	)

	// BroadcastDeliveries counts payment confirmation sends per recipient.
	BroadcastDeliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_broadcast_deliveries_total",
			Help: "Total number of payment confirmation deliveries, by role, kind and status",
		},
		[]string{"role", "kind", "status"},
	)

	// PaymentConfirmations counts /confirm_payment outcomes.
	PaymentConfirmations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_payment_confirmations_total",
			Help: "Total number of payment confirmation requests, by outcome",
		},
		[]string{"outcome"},
	)
)

// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "catalog"

var (
	// SplitRecomputes counts receipts whose splits were regenerated.
	SplitRecomputes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "split_recomputes_total",
		Help:      "Group receipt split recomputations by trigger.",
	}, []string{"trigger"})

	// InsightRefreshes counts spending snapshot refreshes by outcome.
	InsightRefreshes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "insight_refreshes_total",
		Help:      "Spending snapshot refreshes by outcome.",
	}, []string{"outcome"})

	// InsightRefreshDuration observes full refresh latency.
	InsightRefreshDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "insight_refresh_duration_seconds",
		Help:      "Time spent recomputing all spending periods for a user.",
		Buckets:   prometheus.DefBuckets,
	})

	// RateFallbacks counts exchange-rate lookups that fell back to 1.
	RateFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "exchange_rate_fallbacks_total",
		Help:      "Exchange rate lookups that failed and defaulted to 1.",
	})

	// GeoFallbacks counts display currency resolutions that fell back to USD.
	GeoFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "geolocation_fallbacks_total",
		Help:      "Display currency lookups that defaulted to USD.",
	})

	// NotificationsPublished counts events handed to the publisher.
	NotificationsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_published_total",
		Help:      "Notification events published by type and outcome.",
	}, []string{"type", "outcome"})

	// RPCRequests counts handled RPCs by procedure and Connect code.
	RPCRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rpc_requests_total",
		Help:      "Connect RPCs handled, by procedure and result code.",
	}, []string{"procedure", "code"})

	// RPCDuration observes handler latency per procedure.
	RPCDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "rpc_duration_seconds",
		Help:      "Connect RPC handler latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"procedure"})
)

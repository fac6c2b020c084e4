package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Total number of orders created",
	})

	OrdersFulfilledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_fulfilled_total",
		Help: "Total number of orders fulfilled by payment",
	})

	OrdersRefundedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_refunded_total",
		Help: "Total number of orders refunded",
	})

	OrdersCancelledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_cancelled_total",
		Help: "Total number of cancelled orders",
	})

	OrdersFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_failed_total",
		Help: "Total number of rejected order creations",
	}, []string{"reason"})

	PaymentEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_events_total",
		Help: "Total number of payment webhook events received",
	}, []string{"status"})

	PaymentEventsDroppedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_events_dropped_total",
		Help: "Total number of webhook events dropped as replays or stale",
	}, []string{"reason"})

	PaymentEventLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "payment_event_latency_seconds",
		Help:    "Latency of payment event application",
		Buckets: prometheus.DefBuckets,
	})

	AccessResolutionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "access_resolutions_total",
		Help: "Total number of entitlement resolutions by resulting level",
	}, []string{"level"})

	AccessFailClosedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "access_fail_closed_total",
		Help: "Total number of resolutions degraded to preview-only on error",
	})

	PreviewsRenderedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "previews_rendered_total",
		Help: "Total number of views rendered",
	}, []string{"protected"})

	PayoutRecordsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "payout_records_total",
		Help: "Total number of payout records created",
	})

	PayoutAmountTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "payout_amount_total",
		Help: "Total payout amount in minor currency units",
	})

	PayoutComputeLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "payout_compute_latency_seconds",
		Help:    "Latency of payout batch computation",
		Buckets: prometheus.DefBuckets,
	})

	PrintJobsDispatchedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "print_jobs_dispatched_total",
		Help: "Total number of print jobs handed to the fulfillment partner",
	})

	PrintJobsFailedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "print_jobs_failed_total",
		Help: "Total number of print jobs reported failed by the partner",
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)

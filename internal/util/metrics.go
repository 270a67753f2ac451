package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SalesCommittedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sales_committed_total",
		Help: "Total number of sales committed",
	})

	SalesAmendedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sales_amended_total",
		Help: "Total number of sales amended",
	})

	SalesDeletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sales_deleted_total",
		Help: "Total number of sales deleted",
	})

	SalesFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sales_failed_total",
		Help: "Total number of failed sale commits",
	}, []string{"reason"})

	StockDecrementsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stock_decrements_total",
		Help: "Total number of stock decrement operations applied",
	})

	StockReturnsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stock_returns_total",
		Help: "Total number of stock return operations applied",
	})

	StockDecrementsFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_decrements_failed_total",
		Help: "Total number of failed stock decrements",
	}, []string{"reason"})

	ReconciliationLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "stock_reconciliation_latency_seconds",
		Help:    "Latency of stock reconciliation passes",
		Buckets: prometheus.DefBuckets,
	})

	ReconciliationCompensations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_reconciliation_compensations_total",
		Help: "Total number of compensation passes after a failed reconciliation",
	}, []string{"outcome"})

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

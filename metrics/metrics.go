package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AccountsRegisteredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ewaste_accounts_registered_total",
		Help: "Total number of accounts successfully registered.",
	})

	LoginsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ewaste_logins_total",
		Help: "Login attempts by result.",
	},
		[]string{"result"},
	)

	OrdersPlacedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ewaste_orders_placed_total",
		Help: "Total number of pickup orders placed.",
	})

	OrdersCancelledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ewaste_orders_cancelled_total",
		Help: "Total number of pickup orders cancelled.",
	})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ewaste_http_requests_total",
		Help: "HTTP requests by method, route template and status code.",
	},
		[]string{"method", "route", "code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ewaste_http_request_duration_seconds",
		Help:    "HTTP request latency by method and route template.",
		Buckets: prometheus.DefBuckets,
	},
		[]string{"method", "route"},
	)
)

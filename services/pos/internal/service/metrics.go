package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Checkout results recorded in CheckoutTotal.
const (
	resultSucceeded = "succeeded"
	resultFailed    = "failed"
	resultRejected  = "rejected"
	resultDiscarded = "discarded"
)

var (
	// CheckoutTotal counts submissions by outcome.
	CheckoutTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pos_checkout_total",
			Help: "Total number of checkout submissions by result",
		},
		[]string{"result"},
	)

	// CheckoutDuration observes the time spent waiting on the sales service.
	CheckoutDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pos_checkout_duration_seconds",
			Help:    "Duration of sale submissions in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"result"},
	)

	// CartMutations counts successful cart changes by operation.
	CartMutations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pos_cart_mutations_total",
			Help: "Total number of cart mutations by operation",
		},
		[]string{"operation"},
	)
)

// Package metrics defines Prometheus instrumentation for the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TransitionsTotal counts lifecycle transitions by entity kind and the
	// status they landed on.
	TransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "obranet",
		Name:      "transitions_total",
		Help:      "Lifecycle transitions by entity and resulting status.",
	}, []string{"entity", "status"})

	// DecisionsTotal counts approval flow decisions by outcome.
	DecisionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "obranet",
		Name:      "approval_decisions_total",
		Help:      "Approval flow decisions by outcome.",
	}, []string{"outcome"})

	// NotificationsCreated counts notifications written by lifecycle events.
	NotificationsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "obranet",
		Name:      "notifications_created_total",
		Help:      "Notifications created by lifecycle events.",
	})

	// HTTPRequestsTotal counts API requests by method, route and status code.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "obranet",
		Name:      "http_requests_total",
		Help:      "API requests by method, route pattern and status code.",
	}, []string{"method", "route", "code"})

	// HTTPRequestDuration observes API request latency by route.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "obranet",
		Name:      "http_request_duration_seconds",
		Help:      "API request latency by route pattern.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	// LoginAttempts counts login attempts by result.
	LoginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "obranet",
		Name:      "login_attempts_total",
		Help:      "Login attempts by result.",
	}, []string{"result"})
)

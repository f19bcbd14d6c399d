// Package metrics declares the prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal counts handled requests by method, route and status.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "daily_diet_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "route", "status"})

	// HTTPRequestDuration records request latency by method and route.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "daily_diet_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	// LoginAttempts counts login attempts by result (success, failure).
	LoginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "daily_diet_login_attempts_total",
		Help: "Total number of login attempts",
	}, []string{"result"})

	// RateLimitHits counts requests rejected by the rate limiter.
	RateLimitHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "daily_diet_rate_limit_hits_total",
		Help: "Total number of requests rejected by rate limiting",
	}, []string{"route"})

	// MealsCreated counts meals registered through the API.
	MealsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "daily_diet_meals_created_total",
		Help: "Total number of meals created",
	})
)

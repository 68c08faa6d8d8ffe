package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// UpstreamRequests counts calls made to the marketplace API by outcome (ok, error, status_4xx, status_5xx).
	UpstreamRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agrimarket_upstream_requests_total",
		Help: "Requests sent to the marketplace API.",
	}, []string{"method", "outcome"})

	// FallbackSubstitutions counts responses served from fallback data.
	FallbackSubstitutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agrimarket_fallback_total",
		Help: "Responses served from fallback data because the marketplace API failed.",
	}, []string{"source"})

	CheckoutOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agrimarket_checkout_total",
		Help: "Checkout attempts by outcome.",
	}, []string{"outcome"})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agrimarket_http_requests_total",
		Help: "HTTP requests served by route and status.",
	}, []string{"method", "route", "status"})
)

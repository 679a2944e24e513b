package metrics

import (
    "sync"

    "github.com/prometheus/client_golang/prometheus"
    "github.com/prometheus/client_golang/prometheus/collectors"
)

var (
    // Registry is the dedicated Prometheus registry for the API
    Registry = prometheus.NewRegistry()
    // HTTPRequests counts requests by method, path, and status
    HTTPRequests = prometheus.NewCounterVec(
        prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests."},
        []string{"method", "path", "status"},
    )
    // HTTPDuration records request durations in seconds
    HTTPDuration = prometheus.NewHistogramVec(
        prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request duration in seconds.", Buckets: prometheus.DefBuckets},
        []string{"method", "path", "status"},
    )

    // RouteQueries counts routing queries by terminal reason
    RouteQueries = prometheus.NewCounterVec(
        prometheus.CounterOpts{Name: "route_queries_total", Help: "Routing queries by outcome reason."},
        []string{"reason"},
    )
    // RouteDuration tracks end-to-end engine latency in seconds
    RouteDuration = prometheus.NewHistogram(
        prometheus.HistogramOpts{Name: "route_query_duration_seconds", Help: "Routing engine latency in seconds.", Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5}},
    )
    // CandidateCount tracks how many candidates the fallback search produced
    CandidateCount = prometheus.NewHistogram(
        prometheus.HistogramOpts{Name: "route_candidates", Help: "Candidate routes generated per fallback search.", Buckets: []float64{1, 2, 3, 5, 8, 10, 15}},
    )
    // SolarSamples counts irradiance fetches by source (api, cache)
    SolarSamples = prometheus.NewCounterVec(
        prometheus.CounterOpts{Name: "solar_samples_total", Help: "Irradiance samples by source."},
        []string{"source"},
    )

    // WebhookDeliveries counts webhook delivery outcomes by event type and status
    WebhookDeliveries = prometheus.NewCounterVec(
        prometheus.CounterOpts{Name: "webhook_deliveries_total", Help: "Webhook deliveries by event type and status."},
        []string{"event_type", "status"},
    )
    // WebhookLatency tracks webhook delivery latencies in milliseconds
    WebhookLatency = prometheus.NewHistogramVec(
        prometheus.HistogramOpts{Name: "webhook_delivery_latency_ms", Help: "Webhook delivery latency in ms.", Buckets: []float64{10, 50, 100, 200, 500, 1000, 2000, 5000}},
        []string{"event_type", "status"},
    )
)

// RegisterDefault registers collectors to the dedicated registry.
func RegisterDefault() {
    regOnce.Do(func() {
        Registry.MustRegister(HTTPRequests)
        Registry.MustRegister(HTTPDuration)
        Registry.MustRegister(RouteQueries)
        Registry.MustRegister(RouteDuration)
        Registry.MustRegister(CandidateCount)
        Registry.MustRegister(SolarSamples)
        Registry.MustRegister(WebhookDeliveries)
        Registry.MustRegister(WebhookLatency)
        // Go/process collectors on our registry
        Registry.MustRegister(collectors.NewGoCollector())
        Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
    })
}

var regOnce sync.Once

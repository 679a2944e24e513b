package main

import (
    "context"
    "log"
    "net/http"
    "os"
    "strconv"
    "strings"
    "time"

    "github.com/prometheus/client_golang/prometheus/promhttp"

    "github.com/stitch0212/CS5800-FinalProject/internal/api"
    "github.com/stitch0212/CS5800-FinalProject/internal/cache"
    "github.com/stitch0212/CS5800-FinalProject/internal/config"
    "github.com/stitch0212/CS5800-FinalProject/internal/enrich"
    "github.com/stitch0212/CS5800-FinalProject/internal/graph"
    "github.com/stitch0212/CS5800-FinalProject/internal/metrics"
)

func main() {
    cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
    if err != nil {
        log.Fatalf("failed to load config: %v", err)
    }
    metrics.RegisterDefault()

    g := loadNetwork(cfg)
    if n := enrich.AnnotateTravelTimes(g); n > 0 {
        log.Printf("annotated travel time on %d edges", n)
    }
    maybeAnnotateSolar(cfg, g)

    srvDeps, err := api.NewServer(cfg, g)
    if err != nil {
        log.Fatalf("failed to init server: %v", err)
    }

    mux := http.NewServeMux()

    // Routing
    mux.HandleFunc("/v1/route", srvDeps.RouteHandler)
    mux.HandleFunc("/v1/queries", srvDeps.QueriesHandler)
    mux.HandleFunc("/v1/queries/", srvDeps.QueryByIDHandler) // includes /export, /events/stream
    mux.HandleFunc("/v1/profiles", srvDeps.ProfilesHandler)

    // Network
    mux.HandleFunc("/v1/network", srvDeps.NetworkHandler)
    mux.HandleFunc("/v1/network/nearest", srvDeps.NearestHandler)

    // Subscriptions
    mux.HandleFunc("/v1/subscriptions", srvDeps.SubscriptionsHandler)
    mux.HandleFunc("/v1/subscriptions/", srvDeps.SubscriptionByIDHandler)

    // Admin
    mux.HandleFunc("/v1/admin/webhook-deliveries", srvDeps.WebhookDeliveriesHandler)
    mux.HandleFunc("/v1/admin/webhook-deliveries/", srvDeps.WebhookDeliveryRetryHandler)
    mux.HandleFunc("/v1/admin/search-metrics", srvDeps.SearchMetricsHandler)

    // WebSocket subscriptions endpoint
    mux.HandleFunc("/ws/queries", srvDeps.QueriesWSHandler)

    // Health, debug, metrics
    mux.HandleFunc("/healthz", srvDeps.HealthHandler)
    mux.HandleFunc("/readyz", srvDeps.ReadyHandler)
    mux.HandleFunc("/debug/info", srvDeps.DebugJSON)
    mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

    addr := ":" + cfg.Port

    srv := &http.Server{
        Addr:              addr,
        Handler:           logMiddleware(metricsMiddleware(mux)),
        ReadHeaderTimeout: 5 * time.Second,
    }

    log.Printf("API listening on %s (%d nodes, %d edges)", addr, g.NodeCount(), g.EdgeCount())
    // Start webhook worker
    if srvDeps.Pub != nil {
        worker := srvDeps.NewWebhookWorker()
        worker.Start()
    }
    if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
        log.Fatalf("server error: %v", err)
    }
}

// loadNetwork prefers the gob snapshot, falls back to node-link JSON, and
// starts empty when neither is configured so readiness can report it.
func loadNetwork(cfg config.Config) *graph.Graph {
    if cfg.SnapshotPath != "" {
        if g, err := graph.LoadGob(cfg.SnapshotPath); err == nil {
            log.Printf("loaded network snapshot from %s", cfg.SnapshotPath)
            return g
        } else {
            log.Printf("snapshot load failed (%v), falling back", err)
        }
    }
    if cfg.GraphPath != "" {
        g, err := graph.LoadJSONFile(cfg.GraphPath)
        if err != nil {
            log.Fatalf("failed to load network from %s: %v", cfg.GraphPath, err)
        }
        log.Printf("loaded network from %s", cfg.GraphPath)
        if cfg.SnapshotPath != "" {
            if err := g.SaveGob(cfg.SnapshotPath); err != nil {
                log.Printf("snapshot write failed: %v", err)
            }
        }
        return g
    }
    log.Printf("no GRAPH_PATH configured, starting with an empty network")
    return graph.New()
}

// maybeAnnotateSolar refreshes edge irradiance from the external API when
// SOLAR_ANNOTATE=1. Samples go through Redis when available so repeated
// startups inside the cache TTL skip the API entirely.
func maybeAnnotateSolar(cfg config.Config, g *graph.Graph) {
    if v, _ := strconv.ParseBool(os.Getenv("SOLAR_ANNOTATE")); !v {
        return
    }
    if g.NodeCount() == 0 || cfg.Solar.BaseURL == "" {
        return
    }
    var sc cache.SampleCache = cache.NewMemory()
    if cfg.RedisURL != "" {
        if rc, err := cache.NewRedis(cfg.RedisURL); err == nil {
            sc = rc
        } else {
            log.Printf("redis cache unavailable (%v), using in-memory cache", err)
        }
    }
    client := enrich.NewSolarClient(cfg.Solar.BaseURL, cfg.Solar.RatePerSec, cfg.Solar.Burst, sc, cfg.Solar.CacheTTL)
    client.APIKey = cfg.Solar.APIKey
    ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
    defer cancel()
    samples, err := enrich.SampleGrid(ctx, g, cfg.Solar.GridStepDeg, client.Sample)
    if err != nil {
        log.Printf("solar annotation skipped: %v", err)
        return
    }
    n := enrich.AnnotateSolar(g, samples)
    log.Printf("annotated solar exposure on %d edges from %d samples", n, len(samples))
}

func logMiddleware(next http.Handler) http.Handler {
    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        start := time.Now()
        next.ServeHTTP(w, r)
        dur := time.Since(start)
        log.Printf("%s %s %s %v", r.RemoteAddr, r.Method, r.URL.Path, dur)
    })
}

// statusRecorder captures the response code for request metrics.
type statusRecorder struct {
    http.ResponseWriter
    status int
}

func (sr *statusRecorder) WriteHeader(code int) {
    sr.status = code
    sr.ResponseWriter.WriteHeader(code)
}

func metricsMiddleware(next http.Handler) http.Handler {
    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        // SSE and WebSocket responses need the raw writer (Flusher/Hijacker)
        if r.URL.Path == "/ws/queries" || strings.HasSuffix(r.URL.Path, "/events/stream") {
            next.ServeHTTP(w, r)
            return
        }
        sr := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
        start := time.Now()
        next.ServeHTTP(sr, r)
        status := strconv.Itoa(sr.status)
        metrics.HTTPRequests.WithLabelValues(r.Method, r.URL.Path, status).Inc()
        metrics.HTTPDuration.WithLabelValues(r.Method, r.URL.Path, status).Observe(time.Since(start).Seconds())
    })
}

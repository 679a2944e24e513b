package api

import (
    "net/http"

    "github.com/stitch0212/CS5800-FinalProject/internal/config"
    "github.com/stitch0212/CS5800-FinalProject/internal/graph"
    "github.com/stitch0212/CS5800-FinalProject/internal/notify"
    "github.com/stitch0212/CS5800-FinalProject/internal/routing"
    "github.com/stitch0212/CS5800-FinalProject/internal/store"
)

type Server struct {
    Cfg    config.Config
    Store  store.Store
    Graph  *graph.Graph
    Engine *routing.Engine
    Pub    *notify.Publisher
    Broker EventBroker
}

// NewServer wires the server's dependencies from config. With no DATABASE_URL
// it runs on the in-memory store; with no REDIS_URL events fan out in-process.
func NewServer(cfg config.Config, g *graph.Graph) (*Server, error) {
    var s store.Store
    if cfg.DatabaseURL == "" {
        s = store.NewMemory()
    } else {
        sp, err := store.NewPostgres(cfg.DatabaseURL)
        if err != nil {
            return nil, err
        }
        // Dev helper; production would run migrations out of band.
        _ = sp.MigrateDir("db/migrations")
        s = sp
    }
    var broker EventBroker
    if cfg.RedisURL != "" {
        if rb, err := NewRedisBroker(cfg.RedisURL); err == nil { broker = rb } else { broker = NewBroker() }
    } else {
        broker = NewBroker()
    }
    return &Server{
        Cfg:    cfg,
        Store:  s,
        Graph:  g,
        Engine: routing.NewEngine(g),
        Pub:    notify.NewPublisher(s),
        Broker: broker,
    }, nil
}

// tenant resolves the caller's tenant from the X-Tenant-Id header, falling
// back to the demo tenant.
func (s *Server) tenant(r *http.Request) string {
    if t := r.Header.Get("X-Tenant-Id"); t != "" { return t }
    return "t_demo"
}

// NewWebhookWorker creates a background worker for webhook deliveries.
func (s *Server) NewWebhookWorker() *notify.Worker {
    return notify.NewWorker(s.Store, s.Cfg.WebhookMaxAttempts)
}

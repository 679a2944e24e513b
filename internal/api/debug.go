package api

import (
    "encoding/json"
    "net/http"
    "time"

    "github.com/stitch0212/CS5800-FinalProject/internal/buildinfo"
)

func (s *Server) DebugJSON(w http.ResponseWriter, r *http.Request) {
    info := map[string]any{
        "build": buildinfo.Info(),
        "time":  time.Now().UTC().Format(time.RFC3339),
        "config": map[string]any{
            "PORT":             s.Cfg.Port,
            "GRAPH_PATH":       s.Cfg.GraphPath,
            "HAS_DATABASE_URL": s.Cfg.DatabaseURL != "",
            "HAS_REDIS_URL":    s.Cfg.RedisURL != "",
            "HAS_API_TOKEN":    s.Cfg.APIToken != "",
        },
        "network": map[string]any{
            "nodes": s.Graph.NodeCount(),
            "edges": s.Graph.EdgeCount(),
        },
    }
    w.Header().Set("Content-Type", "application/json")
    _ = json.NewEncoder(w).Encode(info)
}

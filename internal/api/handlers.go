package api

import (
    "context"
    "encoding/json"
    "fmt"
    "net/http"
    "strings"
    "time"

    "github.com/google/uuid"

    "github.com/stitch0212/CS5800-FinalProject/internal/export"
    "github.com/stitch0212/CS5800-FinalProject/internal/graph"
    "github.com/stitch0212/CS5800-FinalProject/internal/metrics"
    "github.com/stitch0212/CS5800-FinalProject/internal/model"
    "github.com/stitch0212/CS5800-FinalProject/internal/notify"
    "github.com/stitch0212/CS5800-FinalProject/internal/routing"
    "github.com/stitch0212/CS5800-FinalProject/internal/store"
)

// RouteHandler handles POST /v1/route
func (s *Server) RouteHandler(w http.ResponseWriter, r *http.Request) {
    if r.Method != http.MethodPost {
        w.WriteHeader(http.StatusMethodNotAllowed)
        return
    }
    if !s.requireAuth(w, r) { return }
    var req model.RouteRequest
    if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
        writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
        return
    }
    if err := validateRouteRequest(&req); err != nil {
        writeProblem(w, http.StatusBadRequest, "Invalid route request", err.Error(), r.URL.Path)
        return
    }
    start, end, err := s.resolveEndpoints(&req)
    if err != nil {
        writeProblem(w, http.StatusBadRequest, "Unknown endpoint", err.Error(), r.URL.Path)
        return
    }
    profile := model.StandardProfile()
    if req.Profile == "enhanced" { profile = model.EnhancedProfile() }

    tenant := s.tenant(r)
    queryID := uuid.New().String()
    s.Broker.Publish(queryID, SSEEvent{Type: "query.started", Data: map[string]any{"queryId": queryID}})

    began := time.Now()
    res, err := s.Engine.Route(routing.Query{
        Start:         start,
        End:           end,
        Budget:        req.Budget,
        Profile:       profile,
        MaxCandidates: req.MaxCandidates,
        OnCandidate: func(route []graph.NodeID, m model.PathMetrics) {
            s.Broker.Publish(queryID, SSEEvent{Type: "candidate.found", Data: map[string]any{
                "queryId":           queryID,
                "nodes":             len(route),
                "travelTimeMinutes": m.TravelTimeMinutes,
                "finalEnergyKwh":    m.FinalEnergyKwh,
            }})
        },
    })
    elapsed := time.Since(began)
    if err != nil {
        writeProblem(w, http.StatusBadRequest, "Route failed", err.Error(), r.URL.Path)
        return
    }
    metrics.RouteQueries.WithLabelValues(string(res.Reason)).Inc()
    metrics.RouteDuration.Observe(elapsed.Seconds())
    if !res.Stats.ShortestFeasible {
        metrics.CandidateCount.Observe(float64(res.Stats.Candidates))
    }

    out := model.RouteResult{
        QueryID:        queryID,
        Metrics:        res.Metrics,
        Reason:         string(res.Reason),
        Feasible:       res.Feasible,
        SolarGainedKwh: res.Metrics.SolarGainedKwh,
        DistanceKm:     res.Metrics.DistanceKm,
        FinalEnergyKwh: res.Metrics.FinalEnergyKwh,
    }
    if res.Feasible {
        out.Route = make([]int64, len(res.Route))
        for i, n := range res.Route { out.Route[i] = int64(n) }
        out.Polyline = s.Engine.Polyline(res.Route)
    } else {
        // failure sentinel: sums already zero, final energy untouched
        out.SolarGainedKwh = 0
        out.DistanceKm = 0
    }

    rec := model.QueryRecord{
        ID: queryID, TenantID: tenant,
        StartNode: int64(start), EndNode: int64(end),
        Budget: req.Budget, Profile: req.Profile,
        Result: out, CreatedAt: time.Now().UTC().Format(time.RFC3339),
    }
    if err := s.Store.SaveQuery(r.Context(), rec); err != nil {
        writeProblem(w, http.StatusInternalServerError, "Save query failed", err.Error(), r.URL.Path)
        return
    }
    _ = s.Store.SaveSearchMetrics(r.Context(), tenant, model.SearchMetrics{
        QueryID:          queryID,
        ShortestFeasible: res.Stats.ShortestFeasible,
        Candidates:       res.Stats.Candidates,
        ParetoSize:       res.Stats.ParetoSize,
        Expanded:         res.Stats.Expanded,
        Outcome:          string(res.Reason),
        ElapsedMs:        float64(elapsed.Milliseconds()),
    })

    evtType := notify.EventRouteComputed
    if !res.Feasible { evtType = notify.EventRouteFailed }
    s.Pub.Emit(r.Context(), tenant, evtType, out)
    s.Broker.Publish(queryID, SSEEvent{Type: "query.completed", Data: map[string]any{
        "queryId": queryID, "reason": out.Reason, "feasible": out.Feasible,
        "finalEnergyKwh": out.FinalEnergyKwh,
    }})

    writeJSON(w, http.StatusOK, out)
}

// resolveEndpoints maps the request to graph node ids, via nearest-node
// lookup when coordinates were supplied.
func (s *Server) resolveEndpoints(req *model.RouteRequest) (graph.NodeID, graph.NodeID, error) {
    if req.StartNode != 0 && req.EndNode != 0 {
        return graph.NodeID(req.StartNode), graph.NodeID(req.EndNode), nil
    }
    sn, err := s.Graph.NearestNode(req.Start.Lat, req.Start.Lng)
    if err != nil { return 0, 0, fmt.Errorf("resolve start: %w", err) }
    en, err := s.Graph.NearestNode(req.End.Lat, req.End.Lng)
    if err != nil { return 0, 0, fmt.Errorf("resolve end: %w", err) }
    return sn.ID, en.ID, nil
}

// QueriesHandler handles GET /v1/queries
func (s *Server) QueriesHandler(w http.ResponseWriter, r *http.Request) {
    if r.Method != http.MethodGet {
        w.WriteHeader(http.StatusMethodNotAllowed)
        return
    }
    if !s.requireAuth(w, r) { return }
    tenant := s.tenant(r)
    cursor := r.URL.Query().Get("cursor")
    limit := 100
    if v := r.URL.Query().Get("limit"); v != "" { fmt.Sscanf(v, "%d", &limit) }
    items, next, err := s.Store.ListQueries(r.Context(), tenant, cursor, limit)
    if err != nil {
        writeProblem(w, http.StatusInternalServerError, "List queries failed", err.Error(), r.URL.Path)
        return
    }
    writeJSON(w, http.StatusOK, map[string]any{"items": items, "nextCursor": next})
}

// QueryByIDHandler handles /v1/queries/{id}[/export|/events/stream]
func (s *Server) QueryByIDHandler(w http.ResponseWriter, r *http.Request) {
    if !s.requireAuth(w, r) { return }
    rest := strings.TrimPrefix(r.URL.Path, "/v1/queries/")
    parts := strings.Split(strings.Trim(rest, "/"), "/")
    if len(parts) == 0 || parts[0] == "" {
        writeProblem(w, http.StatusNotFound, "Not Found", "", r.URL.Path)
        return
    }
    id := parts[0]
    tenant := s.tenant(r)

    if len(parts) >= 3 && parts[1] == "events" && parts[2] == "stream" {
        s.streamQueryEvents(w, r, id)
        return
    }
    if len(parts) == 2 && parts[1] == "export" {
        rec, err := s.Store.GetQuery(r.Context(), tenant, id)
        if err != nil {
            writeProblem(w, http.StatusNotFound, "Query not found", "", r.URL.Path)
            return
        }
        w.Header().Set("Content-Type", "text/csv")
        w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "query_"+id+".csv"))
        _ = export.WriteQueryCSV(w, []model.QueryRecord{rec})
        return
    }
    if r.Method != http.MethodGet {
        w.WriteHeader(http.StatusMethodNotAllowed)
        return
    }
    rec, err := s.Store.GetQuery(r.Context(), tenant, id)
    if err != nil {
        writeProblem(w, http.StatusNotFound, "Query not found", "", r.URL.Path)
        return
    }
    writeJSON(w, http.StatusOK, rec)
}

func (s *Server) streamQueryEvents(w http.ResponseWriter, r *http.Request, id string) {
    flusher, ok := w.(http.Flusher)
    if !ok { writeProblem(w, 500, "Streaming unsupported", "", r.URL.Path); return }
    w.Header().Set("Content-Type", "text/event-stream")
    w.Header().Set("Cache-Control", "no-cache")
    w.Header().Set("Connection", "keep-alive")
    ch := s.Broker.Subscribe(id)
    defer s.Broker.Unsubscribe(id, ch)
    // initial heartbeat
    fmt.Fprintf(w, "event: heartbeat\n")
    fmt.Fprintf(w, "data: {\"queryId\":\"%s\",\"ts\":\"%s\"}\n\n", id, time.Now().Format(time.RFC3339))
    flusher.Flush()
    done := r.Context().Done()
    for {
        select {
        case <-done:
            return
        case evt := <-ch:
            b, _ := json.Marshal(evt.Data)
            fmt.Fprintf(w, "event: %s\n", evt.Type)
            fmt.Fprintf(w, "data: %s\n\n", string(b))
            flusher.Flush()
        case <-time.After(15 * time.Second):
            fmt.Fprintf(w, "event: heartbeat\n")
            fmt.Fprintf(w, "data: {\"queryId\":\"%s\",\"ts\":\"%s\"}\n\n", id, time.Now().Format(time.RFC3339))
            flusher.Flush()
        }
    }
}

// NetworkHandler handles GET /v1/network
func (s *Server) NetworkHandler(w http.ResponseWriter, r *http.Request) {
    if r.Method != http.MethodGet {
        w.WriteHeader(http.StatusMethodNotAllowed)
        return
    }
    minLat, minLon, maxLat, maxLon := s.Graph.Bounds()
    writeJSON(w, http.StatusOK, map[string]any{
        "nodes": s.Graph.NodeCount(),
        "edges": s.Graph.EdgeCount(),
        "bounds": map[string]float64{
            "minLat": minLat, "minLng": minLon, "maxLat": maxLat, "maxLng": maxLon,
        },
        "maxSolarExposure": s.Graph.MaxSolarExposure(),
    })
}

// NearestHandler handles GET /v1/network/nearest?lat=..&lng=..
func (s *Server) NearestHandler(w http.ResponseWriter, r *http.Request) {
    if r.Method != http.MethodGet {
        w.WriteHeader(http.StatusMethodNotAllowed)
        return
    }
    var lat, lng float64
    if _, err := fmt.Sscanf(r.URL.Query().Get("lat"), "%f", &lat); err != nil {
        writeProblem(w, http.StatusBadRequest, "Invalid lat", "", r.URL.Path)
        return
    }
    if _, err := fmt.Sscanf(r.URL.Query().Get("lng"), "%f", &lng); err != nil {
        writeProblem(w, http.StatusBadRequest, "Invalid lng", "", r.URL.Path)
        return
    }
    n, err := s.Graph.NearestNode(lat, lng)
    if err != nil {
        writeProblem(w, http.StatusNotFound, "No nodes loaded", "", r.URL.Path)
        return
    }
    writeJSON(w, http.StatusOK, map[string]any{
        "nodeId": int64(n.ID), "lat": n.Lat, "lng": n.Lon,
        "distanceMeters": graph.HaversineMeters(lat, lng, n.Lat, n.Lon),
    })
}

// ProfilesHandler handles GET /v1/profiles
func (s *Server) ProfilesHandler(w http.ResponseWriter, r *http.Request) {
    if r.Method != http.MethodGet {
        w.WriteHeader(http.StatusMethodNotAllowed)
        return
    }
    writeJSON(w, http.StatusOK, map[string]any{
        "profiles": []model.SolarProfile{model.StandardProfile(), model.EnhancedProfile()},
    })
}

// SubscriptionsHandler handles POST/GET /v1/subscriptions
func (s *Server) SubscriptionsHandler(w http.ResponseWriter, r *http.Request) {
    if !s.requireAuth(w, r) { return }
    switch r.Method {
    case http.MethodPost:
        var req model.SubscriptionRequest
        if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
            writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
            return
        }
        if req.URL == "" || len(req.Events) == 0 {
            writeProblem(w, http.StatusBadRequest, "Invalid subscription", "url and events required", r.URL.Path)
            return
        }
        for _, e := range req.Events {
            if e != notify.EventRouteComputed && e != notify.EventRouteFailed {
                writeProblem(w, http.StatusBadRequest, "Invalid subscription", "unknown event type: "+e, r.URL.Path)
                return
            }
        }
        if req.TenantID == "" { req.TenantID = s.tenant(r) }
        sub, err := s.Store.CreateSubscription(r.Context(), req)
        if err != nil {
            writeProblem(w, http.StatusInternalServerError, "Create subscription failed", err.Error(), r.URL.Path)
            return
        }
        sub.Secret = ""
        writeJSON(w, http.StatusCreated, sub)
    case http.MethodGet:
        tenant := s.tenant(r)
        items, next, err := s.Store.ListSubscriptions(r.Context(), tenant, r.URL.Query().Get("cursor"), 100)
        if err != nil {
            writeProblem(w, http.StatusInternalServerError, "List subscriptions failed", err.Error(), r.URL.Path)
            return
        }
        for i := range items { items[i].Secret = "" }
        writeJSON(w, http.StatusOK, map[string]any{"items": items, "nextCursor": next})
    default:
        w.WriteHeader(http.StatusMethodNotAllowed)
    }
}

// SubscriptionByIDHandler handles DELETE /v1/subscriptions/{id}
func (s *Server) SubscriptionByIDHandler(w http.ResponseWriter, r *http.Request) {
    if !s.requireAuth(w, r) { return }
    id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/subscriptions/"), "/")
    if id == "" || r.Method != http.MethodDelete {
        w.WriteHeader(http.StatusMethodNotAllowed)
        return
    }
    tenant := s.tenant(r)
    if err := s.Store.DeleteSubscription(r.Context(), tenant, id); err != nil {
        writeProblem(w, http.StatusNotFound, "Subscription not found", "", r.URL.Path)
        return
    }
    w.WriteHeader(http.StatusNoContent)
}

// WebhookDeliveriesHandler handles GET /v1/admin/webhook-deliveries
func (s *Server) WebhookDeliveriesHandler(w http.ResponseWriter, r *http.Request) {
    if r.Method != http.MethodGet {
        w.WriteHeader(http.StatusMethodNotAllowed)
        return
    }
    if !s.requireAuth(w, r) { return }
    tenant := s.tenant(r)
    items, next, err := s.Store.ListWebhookDeliveries(r.Context(), tenant, r.URL.Query().Get("status"), r.URL.Query().Get("cursor"), 100)
    if err != nil {
        writeProblem(w, http.StatusInternalServerError, "List deliveries failed", err.Error(), r.URL.Path)
        return
    }
    writeJSON(w, http.StatusOK, map[string]any{"items": items, "nextCursor": next})
}

// WebhookDeliveryRetryHandler handles POST /v1/admin/webhook-deliveries/{id}/retry
func (s *Server) WebhookDeliveryRetryHandler(w http.ResponseWriter, r *http.Request) {
    if !s.requireAuth(w, r) { return }
    rest := strings.TrimPrefix(r.URL.Path, "/v1/admin/webhook-deliveries/")
    parts := strings.Split(strings.Trim(rest, "/"), "/")
    if len(parts) != 2 || parts[1] != "retry" || r.Method != http.MethodPost {
        w.WriteHeader(http.StatusMethodNotAllowed)
        return
    }
    tenant := s.tenant(r)
    if err := s.Store.RetryWebhookDelivery(r.Context(), tenant, parts[0]); err != nil {
        if err == store.ErrNotFound {
            writeProblem(w, http.StatusNotFound, "Delivery not found", "", r.URL.Path)
            return
        }
        writeProblem(w, http.StatusInternalServerError, "Retry failed", err.Error(), r.URL.Path)
        return
    }
    writeJSON(w, http.StatusOK, map[string]string{"status": "requeued"})
}

// SearchMetricsHandler handles GET /v1/admin/search-metrics
func (s *Server) SearchMetricsHandler(w http.ResponseWriter, r *http.Request) {
    if r.Method != http.MethodGet {
        w.WriteHeader(http.StatusMethodNotAllowed)
        return
    }
    if !s.requireAuth(w, r) { return }
    tenant := s.tenant(r)
    limit := 100
    if v := r.URL.Query().Get("limit"); v != "" { fmt.Sscanf(v, "%d", &limit) }
    items, err := s.Store.ListSearchMetrics(r.Context(), tenant, r.URL.Query().Get("date"), limit)
    if err != nil {
        writeProblem(w, http.StatusInternalServerError, "List search metrics failed", err.Error(), r.URL.Path)
        return
    }
    writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
    writeJSON(w, 200, map[string]string{"status": "ok"})
}

func (s *Server) ReadyHandler(w http.ResponseWriter, r *http.Request) {
    // Check DB connectivity when using Postgres store
    type pinger interface{ Ping(ctx context.Context) error }
    if pg, ok := s.Store.(pinger); ok {
        ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
        defer cancel()
        if err := pg.Ping(ctx); err != nil { writeProblem(w, 503, "Not Ready", err.Error(), r.URL.Path); return }
    }
    if s.Graph == nil || s.Graph.NodeCount() == 0 {
        writeProblem(w, 503, "Not Ready", "network not loaded", r.URL.Path)
        return
    }
    writeJSON(w, 200, map[string]string{"status": "ready"})
}

package store

import (
    "context"
    "strings"
    "sync"
    "time"

    "github.com/google/uuid"
    "github.com/stitch0212/CS5800-FinalProject/internal/model"
)

// Memory is a simple in-memory store used when no DATABASE_URL is set.
type Memory struct {
    mu      sync.Mutex
    queries map[string]model.QueryRecord    // id -> record
    byTen   map[string][]string             // tenant -> query ids, insertion order
    subs    map[string][]model.Subscription // tenant -> subscriptions
    // Webhooks queue state
    deliveries         map[string]*memDelivery
    deliveriesByTenant map[string][]string
    searchMx           map[string][]model.SearchMetrics // tenant -> metrics, newest last
}

func NewMemory() *Memory {
    return &Memory{
        queries:            map[string]model.QueryRecord{},
        byTen:              map[string][]string{},
        subs:               map[string][]model.Subscription{},
        deliveries:         map[string]*memDelivery{},
        deliveriesByTenant: map[string][]string{},
        searchMx:           map[string][]model.SearchMetrics{},
    }
}

// memDelivery augments WebhookDelivery with scheduling/metrics
type memDelivery struct {
    WebhookDelivery
    NextAttemptAt time.Time
    LastError     string
    ResponseCode  int
    LatencyMs     int
    DeliveredAt   *time.Time
}

func (m *Memory) SaveQuery(ctx context.Context, rec model.QueryRecord) error {
    m.mu.Lock(); defer m.mu.Unlock()
    if _, ok := m.queries[rec.ID]; !ok {
        m.byTen[rec.TenantID] = append(m.byTen[rec.TenantID], rec.ID)
    }
    m.queries[rec.ID] = rec
    return nil
}

func (m *Memory) GetQuery(ctx context.Context, tenantID, id string) (model.QueryRecord, error) {
    m.mu.Lock(); defer m.mu.Unlock()
    rec, ok := m.queries[id]
    if !ok || rec.TenantID != tenantID { return model.QueryRecord{}, ErrNotFound }
    return rec, nil
}

func (m *Memory) ListQueries(ctx context.Context, tenantID, cursor string, limit int) ([]model.QueryRecord, string, error) {
    m.mu.Lock(); defer m.mu.Unlock()
    ids := m.byTen[tenantID]
    start := 0
    if cursor != "" {
        for i, id := range ids {
            if id == cursor { start = i + 1; break }
        }
    }
    if limit <= 0 { limit = 100 }
    out := []model.QueryRecord{}
    next := ""
    for i := start; i < len(ids) && len(out) < limit; i++ {
        out = append(out, m.queries[ids[i]])
        next = ids[i]
    }
    if start+len(out) >= len(ids) { next = "" }
    return out, next, nil
}

func (m *Memory) CreateSubscription(ctx context.Context, req model.SubscriptionRequest) (model.Subscription, error) {
    m.mu.Lock(); defer m.mu.Unlock()
    s := model.Subscription{ID: uuid.New().String(), TenantID: req.TenantID, URL: req.URL, Events: req.Events, Secret: req.Secret}
    m.subs[req.TenantID] = append(m.subs[req.TenantID], s)
    return s, nil
}

func (m *Memory) GetSubscriptionsForEvent(ctx context.Context, tenantID, eventType string) ([]model.Subscription, error) {
    m.mu.Lock(); defer m.mu.Unlock()
    var out []model.Subscription
    for _, s := range m.subs[tenantID] {
        for _, e := range s.Events { if e == eventType { out = append(out, s); break } }
    }
    return out, nil
}

func (m *Memory) ListSubscriptions(ctx context.Context, tenantID, cursor string, limit int) ([]model.Subscription, string, error) {
    m.mu.Lock(); defer m.mu.Unlock()
    list := m.subs[tenantID]
    start := 0
    if cursor != "" {
        for i := range list { if list[i].ID == cursor { start = i + 1; break } }
    }
    if limit <= 0 { limit = 100 }
    end := start + limit
    if end > len(list) { end = len(list) }
    items := append([]model.Subscription(nil), list[start:end]...)
    next := ""
    if end < len(list) { next = list[end-1].ID }
    return items, next, nil
}

func (m *Memory) DeleteSubscription(ctx context.Context, tenantID, id string) error {
    m.mu.Lock(); defer m.mu.Unlock()
    arr := m.subs[tenantID]
    out := make([]model.Subscription, 0, len(arr))
    for _, s := range arr { if s.ID != id { out = append(out, s) } }
    m.subs[tenantID] = out
    return nil
}

func (m *Memory) EnqueueWebhook(ctx context.Context, tenantID, subscriptionID, eventType, url, secret string, payload []byte) (string, error) {
    m.mu.Lock(); defer m.mu.Unlock()
    id := uuid.New().String()
    m.deliveries[id] = &memDelivery{WebhookDelivery: WebhookDelivery{
        ID: id, TenantID: tenantID, SubscriptionID: subscriptionID, EventType: eventType,
        URL: url, Secret: secret, Payload: payload, Status: "pending",
    }}
    m.deliveriesByTenant[tenantID] = append(m.deliveriesByTenant[tenantID], id)
    return id, nil
}

func (m *Memory) FetchDueWebhookDeliveries(ctx context.Context, limit int) ([]WebhookDelivery, error) {
    m.mu.Lock(); defer m.mu.Unlock()
    now := time.Now()
    out := []WebhookDelivery{}
    for _, d := range m.deliveries {
        if d.Status != "pending" { continue }
        if d.NextAttemptAt.After(now) { continue }
        out = append(out, d.WebhookDelivery)
        if len(out) >= limit { break }
    }
    return out, nil
}

func (m *Memory) MarkWebhookDelivery(ctx context.Context, id string, success bool, nextAttemptAt *time.Time, lastError string, responseCode int, latencyMs int) error {
    m.mu.Lock(); defer m.mu.Unlock()
    d, ok := m.deliveries[id]
    if !ok { return ErrNotFound }
    d.Attempts++
    d.LastError = lastError
    d.ResponseCode = responseCode
    d.LatencyMs = latencyMs
    if success {
        d.Status = "delivered"
        now := time.Now()
        d.DeliveredAt = &now
    } else if nextAttemptAt != nil {
        d.NextAttemptAt = *nextAttemptAt
    }
    return nil
}

func (m *Memory) FailWebhookDelivery(ctx context.Context, id string, lastError string, responseCode int, latencyMs int) error {
    m.mu.Lock(); defer m.mu.Unlock()
    d, ok := m.deliveries[id]
    if !ok { return ErrNotFound }
    d.Attempts++
    d.Status = "failed"
    d.LastError = lastError
    d.ResponseCode = responseCode
    d.LatencyMs = latencyMs
    return nil
}

func (m *Memory) ListWebhookDeliveries(ctx context.Context, tenantID, status, cursor string, limit int) ([]map[string]any, string, error) {
    m.mu.Lock(); defer m.mu.Unlock()
    ids := m.deliveriesByTenant[tenantID]
    start := 0
    if cursor != "" {
        for i, id := range ids { if id == cursor { start = i + 1; break } }
    }
    if limit <= 0 { limit = 100 }
    out := []map[string]any{}
    next := ""
    // i ends one past the last scanned id; filtered-out rows still count as
    // scanned, so the cursor clears exactly when the list is exhausted.
    i := start
    for ; i < len(ids) && len(out) < limit; i++ {
        d := m.deliveries[ids[i]]
        if status != "" && d.Status != status { continue }
        out = append(out, map[string]any{
            "id": d.ID, "eventType": d.EventType, "url": d.URL, "status": d.Status,
            "attempts": d.Attempts, "lastError": d.LastError, "responseCode": d.ResponseCode,
            "latencyMs": d.LatencyMs,
        })
        next = ids[i]
    }
    if i >= len(ids) { next = "" }
    return out, next, nil
}

func (m *Memory) RetryWebhookDelivery(ctx context.Context, tenantID, id string) error {
    m.mu.Lock(); defer m.mu.Unlock()
    d, ok := m.deliveries[id]
    if !ok || d.TenantID != tenantID { return ErrNotFound }
    d.Status = "pending"
    d.NextAttemptAt = time.Now()
    return nil
}

func (m *Memory) SaveSearchMetrics(ctx context.Context, tenantID string, sm model.SearchMetrics) error {
    m.mu.Lock(); defer m.mu.Unlock()
    if sm.CreatedAt == "" { sm.CreatedAt = time.Now().UTC().Format(time.RFC3339) }
    m.searchMx[tenantID] = append(m.searchMx[tenantID], sm)
    return nil
}

func (m *Memory) ListSearchMetrics(ctx context.Context, tenantID, date string, limit int) ([]model.SearchMetrics, error) {
    m.mu.Lock(); defer m.mu.Unlock()
    list := m.searchMx[tenantID]
    if limit <= 0 { limit = len(list) }
    // newest first, optionally scoped to one day (YYYY-MM-DD)
    out := []model.SearchMetrics{}
    for i := len(list) - 1; i >= 0 && len(out) < limit; i-- {
        if date != "" && !strings.HasPrefix(list[i].CreatedAt, date) { continue }
        out = append(out, list[i])
    }
    return out, nil
}

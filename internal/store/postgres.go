package store

import (
    "context"
    "database/sql"
    "encoding/json"
    "errors"
    "fmt"
    "os"
    "path/filepath"
    "sort"
    "strings"
    "time"

    "github.com/google/uuid"
    _ "github.com/jackc/pgx/v5/stdlib"

    "github.com/stitch0212/CS5800-FinalProject/internal/model"
)

type Postgres struct {
    db *sql.DB
}

func NewPostgres(dsn string) (*Postgres, error) {
    db, err := sql.Open("pgx", dsn)
    if err != nil {
        return nil, err
    }
    if err := db.Ping(); err != nil {
        return nil, err
    }
    return &Postgres{db: db}, nil
}

// Ping reports database connectivity for readiness checks.
func (p *Postgres) Ping(ctx context.Context) error {
    return p.db.PingContext(ctx)
}

// MigrateDir applies every .sql file in dir in lexical order. Dev helper; a
// real deployment would use a migration tool with version tracking.
func (p *Postgres) MigrateDir(dir string) error {
    entries, err := os.ReadDir(dir)
    if err != nil { return err }
    names := []string{}
    for _, e := range entries {
        if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") { names = append(names, e.Name()) }
    }
    sort.Strings(names)
    for _, n := range names {
        sqlBytes, err := os.ReadFile(filepath.Join(dir, n))
        if err != nil { return err }
        if _, err := p.db.Exec(string(sqlBytes)); err != nil {
            return fmt.Errorf("migrate %s: %w", n, err)
        }
    }
    return nil
}

func (p *Postgres) SaveQuery(ctx context.Context, rec model.QueryRecord) error {
    result, err := json.Marshal(rec.Result)
    if err != nil { return err }
    budget, _ := json.Marshal(rec.Budget)
    _, err = p.db.ExecContext(ctx, `
        INSERT INTO route_queries (id, tenant_id, start_node, end_node, budget, profile, result, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,now())
        ON CONFLICT (id) DO UPDATE SET result = EXCLUDED.result`,
        rec.ID, rec.TenantID, rec.StartNode, rec.EndNode, budget, nullIfEmpty(rec.Profile), result)
    return err
}

func (p *Postgres) GetQuery(ctx context.Context, tenantID, id string) (model.QueryRecord, error) {
    var rec model.QueryRecord
    var budget, result []byte
    var profile sql.NullString
    var created time.Time
    err := p.db.QueryRowContext(ctx, `
        SELECT id::text, tenant_id, start_node, end_node, budget, profile, result, created_at
        FROM route_queries WHERE tenant_id=$1 AND id=$2`, tenantID, id).
        Scan(&rec.ID, &rec.TenantID, &rec.StartNode, &rec.EndNode, &budget, &profile, &result, &created)
    if errors.Is(err, sql.ErrNoRows) { return model.QueryRecord{}, ErrNotFound }
    if err != nil { return model.QueryRecord{}, err }
    _ = json.Unmarshal(budget, &rec.Budget)
    _ = json.Unmarshal(result, &rec.Result)
    rec.Profile = profile.String
    rec.CreatedAt = created.UTC().Format(time.RFC3339)
    return rec, nil
}

func (p *Postgres) ListQueries(ctx context.Context, tenantID, cursor string, limit int) ([]model.QueryRecord, string, error) {
    if limit <= 0 { limit = 100 }
    q := `SELECT id::text, tenant_id, start_node, end_node, budget, profile, result, created_at
          FROM route_queries WHERE tenant_id=$1`
    args := []any{tenantID}
    if cursor != "" {
        q += ` AND created_at < (SELECT created_at FROM route_queries WHERE id=$2)`
        args = append(args, cursor)
    }
    q += fmt.Sprintf(` ORDER BY created_at DESC LIMIT %d`, limit)
    rows, err := p.db.QueryContext(ctx, q, args...)
    if err != nil { return nil, "", err }
    defer rows.Close()
    out := []model.QueryRecord{}
    for rows.Next() {
        var rec model.QueryRecord
        var budget, result []byte
        var profile sql.NullString
        var created time.Time
        if err := rows.Scan(&rec.ID, &rec.TenantID, &rec.StartNode, &rec.EndNode, &budget, &profile, &result, &created); err != nil {
            return nil, "", err
        }
        _ = json.Unmarshal(budget, &rec.Budget)
        _ = json.Unmarshal(result, &rec.Result)
        rec.Profile = profile.String
        rec.CreatedAt = created.UTC().Format(time.RFC3339)
        out = append(out, rec)
    }
    next := ""
    if len(out) == limit { next = out[len(out)-1].ID }
    return out, next, rows.Err()
}

func (p *Postgres) CreateSubscription(ctx context.Context, req model.SubscriptionRequest) (model.Subscription, error) {
    id := uuid.New()
    _, err := p.db.ExecContext(ctx, `
        INSERT INTO subscriptions (id, tenant_id, url, events, secret) VALUES ($1,$2,$3,$4,$5)`,
        id, req.TenantID, req.URL, pqStringArray(req.Events), nullIfEmpty(req.Secret))
    if err != nil { return model.Subscription{}, err }
    return model.Subscription{ID: id.String(), TenantID: req.TenantID, URL: req.URL, Events: req.Events}, nil
}

func (p *Postgres) GetSubscriptionsForEvent(ctx context.Context, tenantID, eventType string) ([]model.Subscription, error) {
    rows, err := p.db.QueryContext(ctx, `
        SELECT id::text, url, COALESCE(secret,''), events FROM subscriptions
        WHERE tenant_id=$1 AND $2 = ANY(events)`, tenantID, eventType)
    if err != nil { return nil, err }
    defer rows.Close()
    var out []model.Subscription
    for rows.Next() {
        var s model.Subscription
        var events []byte
        if err := rows.Scan(&s.ID, &s.URL, &s.Secret, &events); err != nil { return nil, err }
        s.TenantID = tenantID
        s.Events = parsePGTextArray(events)
        out = append(out, s)
    }
    return out, rows.Err()
}

func (p *Postgres) ListSubscriptions(ctx context.Context, tenantID, cursor string, limit int) ([]model.Subscription, string, error) {
    if limit <= 0 { limit = 100 }
    rows, err := p.db.QueryContext(ctx, `
        SELECT id::text, url, events FROM subscriptions WHERE tenant_id=$1 ORDER BY created_at LIMIT $2`,
        tenantID, limit)
    if err != nil { return nil, "", err }
    defer rows.Close()
    out := []model.Subscription{}
    for rows.Next() {
        var s model.Subscription
        var events []byte
        if err := rows.Scan(&s.ID, &s.URL, &events); err != nil { return nil, "", err }
        s.TenantID = tenantID
        s.Events = parsePGTextArray(events)
        out = append(out, s)
    }
    return out, "", rows.Err()
}

func (p *Postgres) DeleteSubscription(ctx context.Context, tenantID, id string) error {
    res, err := p.db.ExecContext(ctx, `DELETE FROM subscriptions WHERE tenant_id=$1 AND id=$2`, tenantID, id)
    if err != nil { return err }
    if n, _ := res.RowsAffected(); n == 0 { return ErrNotFound }
    return nil
}

func (p *Postgres) EnqueueWebhook(ctx context.Context, tenantID, subscriptionID, eventType, url, secret string, payload []byte) (string, error) {
    id := uuid.New()
    _, err := p.db.ExecContext(ctx, `
        INSERT INTO webhook_deliveries (id, tenant_id, subscription_id, event_type, url, secret, payload, status, attempts, next_attempt_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,'pending',0,now())`,
        id, tenantID, nullIfEmpty(subscriptionID), eventType, url, nullIfEmpty(secret), payload)
    if err != nil { return "", err }
    return id.String(), nil
}

func (p *Postgres) FetchDueWebhookDeliveries(ctx context.Context, limit int) ([]WebhookDelivery, error) {
    rows, err := p.db.QueryContext(ctx, `
        SELECT id::text, tenant_id, COALESCE(subscription_id::text,''), event_type, url, COALESCE(secret,''), payload, status, attempts
        FROM webhook_deliveries
        WHERE status='pending' AND next_attempt_at <= now()
        ORDER BY next_attempt_at LIMIT $1`, limit)
    if err != nil { return nil, err }
    defer rows.Close()
    var out []WebhookDelivery
    for rows.Next() {
        var d WebhookDelivery
        if err := rows.Scan(&d.ID, &d.TenantID, &d.SubscriptionID, &d.EventType, &d.URL, &d.Secret, &d.Payload, &d.Status, &d.Attempts); err != nil {
            return nil, err
        }
        out = append(out, d)
    }
    return out, rows.Err()
}

func (p *Postgres) MarkWebhookDelivery(ctx context.Context, id string, success bool, nextAttemptAt *time.Time, lastError string, responseCode int, latencyMs int) error {
    if success {
        _, err := p.db.ExecContext(ctx, `
            UPDATE webhook_deliveries
            SET status='delivered', attempts=attempts+1, delivered_at=now(), last_error=NULL, response_code=$2, latency_ms=$3
            WHERE id=$1`, id, responseCode, latencyMs)
        return err
    }
    _, err := p.db.ExecContext(ctx, `
        UPDATE webhook_deliveries
        SET attempts=attempts+1, next_attempt_at=$2, last_error=$3, response_code=$4, latency_ms=$5
        WHERE id=$1`, id, nextAttemptAt, nullIfEmpty(lastError), responseCode, latencyMs)
    return err
}

func (p *Postgres) FailWebhookDelivery(ctx context.Context, id string, lastError string, responseCode int, latencyMs int) error {
    _, err := p.db.ExecContext(ctx, `
        UPDATE webhook_deliveries
        SET status='failed', attempts=attempts+1, last_error=$2, response_code=$3, latency_ms=$4
        WHERE id=$1`, id, nullIfEmpty(lastError), responseCode, latencyMs)
    return err
}

func (p *Postgres) ListWebhookDeliveries(ctx context.Context, tenantID, status, cursor string, limit int) ([]map[string]any, string, error) {
    if limit <= 0 { limit = 100 }
    q := `SELECT id::text, event_type, url, status, attempts, COALESCE(last_error,''), COALESCE(response_code,0), COALESCE(latency_ms,0)
          FROM webhook_deliveries WHERE tenant_id=$1`
    args := []any{tenantID}
    if status != "" {
        q += ` AND status=$2`
        args = append(args, status)
    }
    q += fmt.Sprintf(` ORDER BY created_at DESC LIMIT %d`, limit)
    rows, err := p.db.QueryContext(ctx, q, args...)
    if err != nil { return nil, "", err }
    defer rows.Close()
    out := []map[string]any{}
    for rows.Next() {
        var id, eventType, url, st, lastErr string
        var attempts, code, latency int
        if err := rows.Scan(&id, &eventType, &url, &st, &attempts, &lastErr, &code, &latency); err != nil {
            return nil, "", err
        }
        out = append(out, map[string]any{
            "id": id, "eventType": eventType, "url": url, "status": st,
            "attempts": attempts, "lastError": lastErr, "responseCode": code, "latencyMs": latency,
        })
    }
    return out, "", rows.Err()
}

func (p *Postgres) RetryWebhookDelivery(ctx context.Context, tenantID, id string) error {
    res, err := p.db.ExecContext(ctx, `
        UPDATE webhook_deliveries SET status='pending', next_attempt_at=now()
        WHERE tenant_id=$1 AND id=$2`, tenantID, id)
    if err != nil { return err }
    if n, _ := res.RowsAffected(); n == 0 { return ErrNotFound }
    return nil
}

func (p *Postgres) SaveSearchMetrics(ctx context.Context, tenantID string, sm model.SearchMetrics) error {
    _, err := p.db.ExecContext(ctx, `
        INSERT INTO search_metrics (id, tenant_id, query_id, shortest_feasible, candidates, pareto_size, expanded, outcome, elapsed_ms)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
        uuid.New(), tenantID, sm.QueryID, sm.ShortestFeasible, sm.Candidates, sm.ParetoSize, sm.Expanded, sm.Outcome, sm.ElapsedMs)
    return err
}

func (p *Postgres) ListSearchMetrics(ctx context.Context, tenantID, date string, limit int) ([]model.SearchMetrics, error) {
    if limit <= 0 { limit = 100 }
    rows, err := p.db.QueryContext(ctx, `
        SELECT query_id::text, shortest_feasible, candidates, pareto_size, expanded, outcome, elapsed_ms, to_char(created_at, 'YYYY-MM-DD"T"HH24:MI:SS"Z"')
        FROM search_metrics
        WHERE tenant_id=$1 AND ($2 = '' OR to_char(created_at, 'YYYY-MM-DD') = $2)
        ORDER BY created_at DESC LIMIT $3`, tenantID, date, limit)
    if err != nil { return nil, err }
    defer rows.Close()
    out := []model.SearchMetrics{}
    for rows.Next() {
        var sm model.SearchMetrics
        if err := rows.Scan(&sm.QueryID, &sm.ShortestFeasible, &sm.Candidates, &sm.ParetoSize, &sm.Expanded, &sm.Outcome, &sm.ElapsedMs, &sm.CreatedAt); err != nil {
            return nil, err
        }
        out = append(out, sm)
    }
    return out, rows.Err()
}

func nullIfEmpty(s string) any {
    if strings.TrimSpace(s) == "" { return nil }
    return s
}

// pqStringArray renders a []string as a Postgres text[] literal; nil for empty.
func pqStringArray(ss []string) any {
    if len(ss) == 0 { return nil }
    esc := make([]string, len(ss))
    for i, s := range ss {
        esc[i] = `"` + strings.ReplaceAll(strings.ReplaceAll(s, `\`, `\\`), `"`, `\"`) + `"`
    }
    return "{" + strings.Join(esc, ",") + "}"
}

// parsePGTextArray decodes the common single-level text[] wire form.
func parsePGTextArray(b []byte) []string {
    s := strings.Trim(string(b), "{}")
    if s == "" { return nil }
    parts := strings.Split(s, ",")
    out := make([]string, 0, len(parts))
    for _, p := range parts {
        out = append(out, strings.Trim(strings.TrimSpace(p), `"`))
    }
    return out
}

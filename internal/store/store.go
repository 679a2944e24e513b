package store

import (
    "context"
    "errors"
    "time"

    "github.com/stitch0212/CS5800-FinalProject/internal/model"
)

// Store is the persistence interface used by the API server.
type Store interface {
    // Query history
    SaveQuery(ctx context.Context, rec model.QueryRecord) error
    GetQuery(ctx context.Context, tenantID, id string) (model.QueryRecord, error)
    ListQueries(ctx context.Context, tenantID, cursor string, limit int) (items []model.QueryRecord, nextCursor string, err error)

    // Subscriptions
    CreateSubscription(ctx context.Context, req model.SubscriptionRequest) (model.Subscription, error)
    GetSubscriptionsForEvent(ctx context.Context, tenantID, eventType string) ([]model.Subscription, error)
    ListSubscriptions(ctx context.Context, tenantID, cursor string, limit int) ([]model.Subscription, string, error)
    DeleteSubscription(ctx context.Context, tenantID, id string) error

    // Webhook deliveries
    EnqueueWebhook(ctx context.Context, tenantID, subscriptionID, eventType, url, secret string, payload []byte) (string, error)
    FetchDueWebhookDeliveries(ctx context.Context, limit int) ([]WebhookDelivery, error)
    MarkWebhookDelivery(ctx context.Context, id string, success bool, nextAttemptAt *time.Time, lastError string, responseCode int, latencyMs int) error
    FailWebhookDelivery(ctx context.Context, id string, lastError string, responseCode int, latencyMs int) error
    ListWebhookDeliveries(ctx context.Context, tenantID, status, cursor string, limit int) ([]map[string]any, string, error)
    RetryWebhookDelivery(ctx context.Context, tenantID, id string) error

    // Engine behavior metrics, for admin views
    SaveSearchMetrics(ctx context.Context, tenantID string, sm model.SearchMetrics) error
    ListSearchMetrics(ctx context.Context, tenantID, date string, limit int) ([]model.SearchMetrics, error)
}

var ErrNotFound = errors.New("not found")

package cache

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// SampleCache stores raw irradiance samples keyed by grid coordinate so that
// repeated enrichment runs over the same area skip the upstream API.
type SampleCache interface {
	Get(ctx context.Context, lat, lon float64) (float64, bool, error)
	Set(ctx context.Context, lat, lon, ghi float64, ttl time.Duration) error
}

// Key rounds a coordinate pair to ~100 m so nearby lookups share an entry.
func Key(lat, lon float64) string {
	return fmt.Sprintf("ghi:%.3f:%.3f", lat, lon)
}

type memEntry struct {
	ghi     float64
	expires time.Time
}

// Memory is the in-process cache used when no REDIS_URL is configured.
type Memory struct {
	mu      sync.Mutex
	entries map[string]memEntry
}

func NewMemory() *Memory {
	return &Memory{entries: map[string]memEntry{}}
}

func (m *Memory) Get(ctx context.Context, lat, lon float64) (float64, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[Key(lat, lon)]
	if !ok || time.Now().After(e.expires) {
		delete(m.entries, Key(lat, lon))
		return 0, false, nil
	}
	return e.ghi, true, nil
}

func (m *Memory) Set(ctx context.Context, lat, lon, ghi float64, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[Key(lat, lon)] = memEntry{ghi: ghi, expires: time.Now().Add(ttl)}
	return nil
}

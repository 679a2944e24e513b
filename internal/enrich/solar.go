package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/stitch0212/CS5800-FinalProject/internal/cache"
	"github.com/stitch0212/CS5800-FinalProject/internal/graph"
	"github.com/stitch0212/CS5800-FinalProject/internal/metrics"
)

// SolarClient fetches hourly-normalized GHI samples from an external API,
// rate-limited so batch enrichment cannot trip upstream throttling.
type SolarClient struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
	Cache   cache.SampleCache
	TTL     time.Duration

	limiter *rate.Limiter
}

func NewSolarClient(baseURL string, perSec float64, burst int, c cache.SampleCache, ttl time.Duration) *SolarClient {
	if perSec <= 0 {
		perSec = 2
	}
	if burst <= 0 {
		burst = 1
	}
	return &SolarClient{
		BaseURL: baseURL,
		HTTP:    &http.Client{Timeout: 15 * time.Second},
		Cache:   c,
		TTL:     ttl,
		limiter: rate.NewLimiter(rate.Limit(perSec), burst),
	}
}

type ghiResponse struct {
	GHI *float64 `json:"ghi"`
}

// Sample returns the irradiance at a coordinate, consulting the cache first.
func (c *SolarClient) Sample(ctx context.Context, lat, lon float64) (float64, error) {
	if c.Cache != nil {
		if ghi, ok, err := c.Cache.Get(ctx, lat, lon); err == nil && ok {
			metrics.SolarSamples.WithLabelValues("cache").Inc()
			return ghi, nil
		}
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, err
	}
	q := url.Values{}
	q.Set("lat", fmt.Sprintf("%.5f", lat))
	q.Set("lon", fmt.Sprintf("%.5f", lon))
	if c.APIKey != "" {
		q.Set("api_key", c.APIKey)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"?"+q.Encode(), nil)
	if err != nil {
		return 0, err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return 0, err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("solar api status %d", resp.StatusCode)
	}
	var body ghiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("solar api decode: %w", err)
	}
	if body.GHI == nil || math.IsNaN(*body.GHI) || *body.GHI < 0 {
		return 0, fmt.Errorf("solar api returned no usable ghi")
	}
	metrics.SolarSamples.WithLabelValues("api").Inc()
	if c.Cache != nil {
		_ = c.Cache.Set(ctx, lat, lon, *body.GHI, c.TTL)
	}
	return *body.GHI, nil
}

// Sampler is the irradiance lookup used during annotation. SolarClient.Sample
// satisfies it; tests supply synthetic fields.
type Sampler func(ctx context.Context, lat, lon float64) (float64, error)

// GridSample holds one irradiance measurement at a grid point.
type GridSample struct {
	Lat float64
	Lon float64
	GHI float64
}

// SampleGrid fetches samples over the graph's bounding box at stepDeg spacing.
func SampleGrid(ctx context.Context, g *graph.Graph, stepDeg float64, sample Sampler) ([]GridSample, error) {
	if stepDeg <= 0 {
		stepDeg = 0.05
	}
	minLat, minLon, maxLat, maxLon := g.Bounds()
	var out []GridSample
	for lat := minLat; lat <= maxLat+stepDeg; lat += stepDeg {
		for lon := minLon; lon <= maxLon+stepDeg; lon += stepDeg {
			ghi, err := sample(ctx, lat, lon)
			if err != nil {
				return nil, fmt.Errorf("sample (%.4f, %.4f): %w", lat, lon, err)
			}
			out = append(out, GridSample{Lat: lat, Lon: lon, GHI: ghi})
		}
	}
	return out, nil
}

const interpolationNeighbors = 4

// AnnotateSolar assigns each edge the inverse-distance-squared interpolation
// of the nearest grid samples at its midpoint. Edges whose endpoints have no
// position keep their exposure.
func AnnotateSolar(g *graph.Graph, samples []GridSample) (annotated int) {
	if len(samples) == 0 {
		return 0
	}
	g.UpdateEdges(func(e *graph.Edge) {
		a, okA := g.Node(e.From)
		b, okB := g.Node(e.To)
		if !okA || !okB {
			return
		}
		midLat := (a.Lat + b.Lat) / 2
		midLon := (a.Lon + b.Lon) / 2
		e.Attrs.SolarExposure = interpolate(midLat, midLon, samples)
		annotated++
	})
	return annotated
}

// interpolate computes the inverse-distance-squared weighted mean of the k
// nearest samples. A sample closer than ~1 m wins outright.
func interpolate(lat, lon float64, samples []GridSample) float64 {
	type scored struct {
		d2  float64
		ghi float64
	}
	nearest := make([]scored, 0, interpolationNeighbors)
	for _, s := range samples {
		dLat := s.Lat - lat
		dLon := s.Lon - lon
		d2 := dLat*dLat + dLon*dLon
		if d2 < 1e-10 {
			return s.GHI
		}
		if len(nearest) < interpolationNeighbors {
			nearest = append(nearest, scored{d2, s.GHI})
			continue
		}
		worst := 0
		for i := 1; i < len(nearest); i++ {
			if nearest[i].d2 > nearest[worst].d2 {
				worst = i
			}
		}
		if d2 < nearest[worst].d2 {
			nearest[worst] = scored{d2, s.GHI}
		}
	}
	var num, den float64
	for _, s := range nearest {
		w := 1 / s.d2
		num += w * s.ghi
		den += w
	}
	if den == 0 {
		return math.NaN()
	}
	return num / den
}

package routing

import (
	"math"
	"testing"

	"github.com/stitch0212/CS5800-FinalProject/internal/model"
)

func m(tt, gain, consumed float64) model.PathMetrics {
	return model.PathMetrics{TravelTimeMinutes: tt, SolarGainedKwh: gain, EnergyConsumedKwh: consumed}
}

func TestDominates(t *testing.T) {
	if !dominates(m(10, 2, 1), m(12, 1, 2)) {
		t.Fatal("strictly better on all objectives should dominate")
	}
	if dominates(m(10, 2, 1), m(10, 2, 1)) {
		t.Fatal("equal metrics must not dominate (needs one strict inequality)")
	}
	if dominates(m(10, 2, 1), m(8, 1, 2)) {
		t.Fatal("worse travel time cannot dominate")
	}
	if !dominates(m(10, 2, 1), m(10, 2, 1.5)) {
		t.Fatal("equal on two objectives, strictly better on one, should dominate")
	}
}

func TestParetoFrontDropsDominated(t *testing.T) {
	cands := []candidate{
		{Metrics: m(10, 1, 1.0)}, // fast, low solar
		{Metrics: m(20, 5, 1.2)}, // slow, high solar
		{Metrics: m(25, 4, 1.5)}, // dominated by the second
	}
	front := paretoFront(cands)
	if len(front) != 2 {
		t.Fatalf("front size = %d, want 2", len(front))
	}
	// Soundness: nothing in the front is dominated by any candidate.
	for _, f := range front {
		for _, c := range cands {
			if dominates(c.Metrics, f.Metrics) {
				t.Fatalf("front member %+v dominated by %+v", f.Metrics, c.Metrics)
			}
		}
	}
}

func TestParetoFrontAllIncomparable(t *testing.T) {
	cands := []candidate{
		{Metrics: m(10, 1, 1)},
		{Metrics: m(8, 0.5, 2)},
		{Metrics: m(15, 3, 0.5)},
	}
	if got := len(paretoFront(cands)); got != 3 {
		t.Fatalf("incomparable candidates should all survive, got %d", got)
	}
}

func TestCompositeScore(t *testing.T) {
	a := model.PathMetrics{FinalEnergyKwh: 1.0, DistanceKm: 10, AvgSolarExposure: 500}
	want := (1.0 / 10) * (1 + 500.0/1000)
	if got := compositeScore(a); math.Abs(got-want) > 1e-12 {
		t.Fatalf("compositeScore = %v, want %v", got, want)
	}
}

func TestSelectBestFirstMaximalWins(t *testing.T) {
	tied := model.PathMetrics{FinalEnergyKwh: 1, DistanceKm: 1}
	front := []candidate{
		{Route: nil, Metrics: tied},
		{Route: nil, Metrics: tied},
	}
	best, ok := selectBest(front)
	if !ok {
		t.Fatal("non-empty front must select")
	}
	if compositeScore(best.Metrics) != compositeScore(tied) {
		t.Fatal("unexpected selection")
	}
	if _, ok := selectBest(nil); ok {
		t.Fatal("empty front must not select")
	}
}

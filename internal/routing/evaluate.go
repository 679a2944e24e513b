package routing

import (
	"fmt"
	"math"

	"github.com/stitch0212/CS5800-FinalProject/internal/graph"
	"github.com/stitch0212/CS5800-FinalProject/internal/model"
)

// EvaluatePath computes the immutable metrics for one route under a budget
// and panel profile. The primary (first inserted) edge between consecutive
// nodes is the one evaluated, matching the auxiliary-graph convention.
// A single-node route yields all-zero sums with final energy untouched.
func EvaluatePath(g *graph.Graph, route []graph.NodeID, budget model.EnergyBudget, profile model.SolarProfile) (model.PathMetrics, error) {
	var distMeters, ttMin, gained, solarSum float64
	edges := 0
	for i := 0; i+1 < len(route); i++ {
		e, ok := g.EdgeBetween(route[i], route[i+1])
		if !ok {
			return model.PathMetrics{}, fmt.Errorf("route has no edge %d -> %d", route[i], route[i+1])
		}
		distMeters += e.Attrs.Length
		ttMin += e.Attrs.TravelTime
		gained += SolarGain(e.Attrs.TravelTime, e.Attrs.SolarExposure, profile)
		if !math.IsNaN(e.Attrs.SolarExposure) {
			solarSum += e.Attrs.SolarExposure
		}
		edges++
	}
	distKm := distMeters / 1000
	consumed := EnergyCost(distKm, budget.ConsumptionRateKwhPerKm)
	m := model.PathMetrics{
		DistanceKm:        distKm,
		EnergyConsumedKwh: consumed,
		SolarGainedKwh:    gained,
		FinalEnergyKwh:    budget.InitialEnergyKwh - consumed + gained,
		TravelTimeMinutes: ttMin,
	}
	if edges > 0 {
		m.AvgSolarExposure = solarSum / float64(edges)
	}
	return m, nil
}

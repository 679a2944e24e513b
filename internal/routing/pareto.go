package routing

import (
	"github.com/stitch0212/CS5800-FinalProject/internal/graph"
	"github.com/stitch0212/CS5800-FinalProject/internal/model"
)

// candidate pairs an evaluated route with its metrics.
type candidate struct {
	Route   []graph.NodeID
	Metrics model.PathMetrics
}

// dominates reports whether a beats b on every objective with at least one
// strict improvement: faster or equal, more or equal solar gain, less or
// equal energy consumed.
func dominates(a, b model.PathMetrics) bool {
	if a.TravelTimeMinutes > b.TravelTimeMinutes {
		return false
	}
	if a.SolarGainedKwh < b.SolarGainedKwh {
		return false
	}
	if a.EnergyConsumedKwh > b.EnergyConsumedKwh {
		return false
	}
	return a.TravelTimeMinutes < b.TravelTimeMinutes ||
		a.SolarGainedKwh > b.SolarGainedKwh ||
		a.EnergyConsumedKwh < b.EnergyConsumedKwh
}

// paretoFront filters candidates to the non-dominated set, preserving input
// order so downstream tie-breaks stay deterministic.
func paretoFront(cands []candidate) []candidate {
	var front []candidate
	for i, c := range cands {
		dominated := false
		for j, other := range cands {
			if i == j {
				continue
			}
			if dominates(other.Metrics, c.Metrics) {
				dominated = true
				break
			}
		}
		if !dominated {
			front = append(front, c)
		}
	}
	return front
}

// compositeScore ranks Pareto-optimal candidates by energy retained per km,
// scaled up for solar-rich routes. Zero-distance routes score their final
// energy directly to avoid division blowup.
func compositeScore(m model.PathMetrics) float64 {
	solarBoost := 1 + m.AvgSolarExposure/1000
	if m.DistanceKm == 0 {
		return m.FinalEnergyKwh * solarBoost
	}
	return (m.FinalEnergyKwh / m.DistanceKm) * solarBoost
}

// selectBest returns the first maximal candidate by composite score.
func selectBest(front []candidate) (candidate, bool) {
	if len(front) == 0 {
		return candidate{}, false
	}
	best := front[0]
	bestScore := compositeScore(best.Metrics)
	for _, c := range front[1:] {
		if s := compositeScore(c.Metrics); s > bestScore {
			best, bestScore = c, s
		}
	}
	return best, true
}

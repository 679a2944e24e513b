package routing

import (
	"math"

	"github.com/stitch0212/CS5800-FinalProject/internal/model"
)

// minGainDurationMinutes is the cutoff below which a segment is too short to
// credit any solar harvest. Keeps near-zero-length connector edges from
// injecting noise.
const minGainDurationMinutes = 0.06

// SolarGain returns the kWh harvested while traversing a segment for
// durationMinutes under the given hourly-normalized irradiance. Malformed
// irradiance (NaN or negative) yields zero gain rather than an error so that
// dirty network data degrades routing instead of breaking it.
func SolarGain(durationMinutes, irradiance float64, p model.SolarProfile) float64 {
	if durationMinutes < minGainDurationMinutes {
		return 0
	}
	if math.IsNaN(irradiance) || irradiance < 0 {
		return 0
	}
	hours := durationMinutes / 60
	return irradiance * hours * p.PanelAreaM2 * p.PanelEfficiency * p.SystemLosses
}

// EnergyCost is the kWh consumed driving distanceKm at the given rate.
func EnergyCost(distanceKm, ratePerKm float64) float64 {
	return distanceKm * ratePerKm
}

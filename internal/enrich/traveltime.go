package enrich

import (
	"github.com/stitch0212/CS5800-FinalProject/internal/graph"
)

// Travel-time estimation from road class, speed limits, and intersection
// delays. Runs over an imported network before it is handed to the engine;
// edges that already carry a travel time are left alone.

// defaultSpeeds is the fallback km/h per road class when no maxspeed parsed.
var defaultSpeeds = map[string]float64{
	"motorway":     100,
	"trunk":        80,
	"primary":      60,
	"secondary":    50,
	"tertiary":     40,
	"residential":  30,
	"service":      20,
	"unclassified": 30,
}

const defaultSpeed = 30

// signalDelays holds per-control delays in minutes.
var signalDelays = map[string]float64{
	"traffic_signals": 1.0,
	"stop_sign":       0.5,
	"crossing":        0.3,
	"yield":           0.2,
}

const defaultIntersectionDelay = 0.2

// peakFactors scale congestion by road class.
var peakFactors = map[string]float64{
	"motorway":    1.3,
	"trunk":       1.4,
	"primary":     1.5,
	"secondary":   1.4,
	"tertiary":    1.3,
	"residential": 1.2,
}

const defaultPeakFactor = 1.3

// SpeedFor picks the edge speed: parsed limit first, then road-class default.
func SpeedFor(roadType string, parsedLimit float64) float64 {
	if parsedLimit > 0 {
		return parsedLimit
	}
	if s, ok := defaultSpeeds[roadType]; ok {
		return s
	}
	return defaultSpeed
}

// DelayFor returns the control delay in minutes. busyJunction adds the
// generic intersection delay on top of any signal delay.
func DelayFor(roadType string, busyJunction bool) float64 {
	d := 0.0
	if v, ok := signalDelays[roadType]; ok {
		d += v
	}
	if busyJunction {
		d += defaultIntersectionDelay
	}
	return d
}

// PeakFor returns the congestion multiplier for the road class.
func PeakFor(roadType string) float64 {
	if f, ok := peakFactors[roadType]; ok {
		return f
	}
	return defaultPeakFactor
}

// EstimateMinutes computes (base + delay) * peak for one edge.
func EstimateMinutes(lengthMeters, speedKmh, delayMinutes, peakFactor float64) float64 {
	if speedKmh <= 0 {
		speedKmh = defaultSpeed
	}
	base := (lengthMeters / 1000) / (speedKmh / 60)
	return (base + delayMinutes) * peakFactor
}

// AnnotateTravelTimes fills in TravelTime, BaseTime, DelayTime and PeakFactor
// for edges that lack a travel time. A node with more than two outgoing
// edges counts as a busy junction.
func AnnotateTravelTimes(g *graph.Graph) (annotated int) {
	g.UpdateEdges(func(e *graph.Edge) {
		if e.Attrs.TravelTime > 0 {
			return
		}
		speed := SpeedFor(e.Attrs.RoadType, e.Attrs.SpeedLimit)
		busy := g.OutDegree(e.From) > 2 || g.OutDegree(e.To) > 2
		delay := DelayFor(e.Attrs.RoadType, busy)
		peak := PeakFor(e.Attrs.RoadType)
		base := (e.Attrs.Length / 1000) / (speed / 60)

		e.Attrs.SpeedLimit = speed
		e.Attrs.BaseTime = base
		e.Attrs.DelayTime = delay
		e.Attrs.PeakFactor = peak
		e.Attrs.TravelTime = (base + delay) * peak
		annotated++
	})
	return annotated
}

package enrich

import (
	"math"
	"testing"

	"github.com/stitch0212/CS5800-FinalProject/internal/graph"
)

func TestSpeedFor(t *testing.T) {
	if got := SpeedFor("motorway", 0); got != 100 {
		t.Fatalf("motorway default = %v", got)
	}
	if got := SpeedFor("primary", 40); got != 40 {
		t.Fatalf("parsed limit should win: %v", got)
	}
	if got := SpeedFor("weird_road", 0); got != 30 {
		t.Fatalf("unknown class default = %v", got)
	}
}

func TestDelayFor(t *testing.T) {
	if got := DelayFor("traffic_signals", false); got != 1.0 {
		t.Fatalf("signal delay = %v", got)
	}
	if got := DelayFor("traffic_signals", true); got != 1.2 {
		t.Fatalf("signal + junction = %v", got)
	}
	if got := DelayFor("residential", false); got != 0 {
		t.Fatalf("plain segment delay = %v", got)
	}
}

func TestEstimateMinutes(t *testing.T) {
	// 1 km on a primary road: 1 minute base at 60 km/h, plus signal delay,
	// times the primary peak factor.
	got := EstimateMinutes(1000, 60, 1.0, 1.5)
	if math.Abs(got-3.0) > 1e-9 {
		t.Fatalf("EstimateMinutes = %v, want 3.0", got)
	}
}

func TestAnnotateTravelTimes(t *testing.T) {
	g := graph.New()
	g.AddNode(graph.Node{ID: 1})
	g.AddNode(graph.Node{ID: 2})
	g.AddNode(graph.Node{ID: 3})
	g.AddEdge(1, 2, graph.EdgeAttrs{Length: 2000, RoadType: "residential"})
	g.AddEdge(2, 3, graph.EdgeAttrs{Length: 1000, TravelTime: 7.5})

	n := AnnotateTravelTimes(g)
	if n != 1 {
		t.Fatalf("annotated = %d, want 1 (pre-set travel time untouched)", n)
	}
	e, _ := g.EdgeBetween(1, 2)
	// 2 km at 30 km/h = 4 min base, no delays, residential peak 1.2.
	if math.Abs(e.Attrs.TravelTime-4.8) > 1e-9 {
		t.Fatalf("travel time = %v, want 4.8", e.Attrs.TravelTime)
	}
	if e.Attrs.SpeedLimit != 30 || e.Attrs.PeakFactor != 1.2 {
		t.Fatalf("attrs = %+v", e.Attrs)
	}
	kept, _ := g.EdgeBetween(2, 3)
	if kept.Attrs.TravelTime != 7.5 {
		t.Fatalf("existing travel time overwritten: %v", kept.Attrs.TravelTime)
	}
}

package routing

import (
	"errors"
	"math"
	"testing"

	"github.com/stitch0212/CS5800-FinalProject/internal/graph"
	"github.com/stitch0212/CS5800-FinalProject/internal/model"
)

// singleEdgeGraph is the canonical fixture: one direct edge start -> end,
// 10 km, 10 minutes, solar exposure 500.
func singleEdgeGraph() *graph.Graph {
	g := graph.New()
	g.AddNode(graph.Node{ID: 1, Lat: 33.77, Lon: -84.39})
	g.AddNode(graph.Node{ID: 2, Lat: 33.80, Lon: -84.42})
	g.AddEdge(1, 2, graph.EdgeAttrs{Length: 10000, TravelTime: 10, SolarExposure: 500})
	return g
}

// forkGraph offers two disjoint routes under one start/end pair:
// route A (1->2->4) fast with little sun, route B (1->3->4) slower but
// through high-exposure segments.
func forkGraph() *graph.Graph {
	g := graph.New()
	g.AddNode(graph.Node{ID: 1, Lat: 33.70, Lon: -84.40})
	g.AddNode(graph.Node{ID: 2, Lat: 33.72, Lon: -84.40})
	g.AddNode(graph.Node{ID: 3, Lat: 33.70, Lon: -84.36})
	g.AddNode(graph.Node{ID: 4, Lat: 33.74, Lon: -84.38})
	g.AddEdge(1, 2, graph.EdgeAttrs{Length: 5000, TravelTime: 5, SolarExposure: 10})
	g.AddEdge(2, 4, graph.EdgeAttrs{Length: 5000, TravelTime: 5, SolarExposure: 10})
	g.AddEdge(1, 3, graph.EdgeAttrs{Length: 6000, TravelTime: 8, SolarExposure: 800})
	g.AddEdge(3, 4, graph.EdgeAttrs{Length: 6000, TravelTime: 8, SolarExposure: 800})
	return g
}

func TestShortestPathFeasibleShortCircuits(t *testing.T) {
	e := NewEngine(singleEdgeGraph())
	res, err := e.Route(Query{
		Start:   1,
		End:     2,
		Budget:  model.EnergyBudget{InitialEnergyKwh: 2.0, ConsumptionRateKwhPerKm: 0.17, MinEnergyBufferKwh: 0.1},
		Profile: model.StandardProfile(),
	})
	if err != nil {
		t.Fatalf("Route: %v", err)
	}
	if !res.Feasible || res.Reason != ReasonShortestFeasible {
		t.Fatalf("reason = %q, feasible = %v", res.Reason, res.Feasible)
	}
	if len(res.Route) != 2 || res.Route[0] != 1 || res.Route[1] != 2 {
		t.Fatalf("route = %v", res.Route)
	}
	if res.Metrics.DistanceKm != 10.0 {
		t.Fatalf("distance = %v, want 10.0", res.Metrics.DistanceKm)
	}
	if math.Abs(res.Metrics.EnergyConsumedKwh-1.7) > 1e-9 {
		t.Fatalf("consumed = %v, want 1.7", res.Metrics.EnergyConsumedKwh)
	}
	if res.Metrics.FinalEnergyKwh < 0.1 {
		t.Fatalf("final energy = %v, want >= buffer", res.Metrics.FinalEnergyKwh)
	}
	// The candidate search must never run when the shortest path clears the buffer.
	if res.Stats.Expanded != 0 {
		t.Fatalf("candidate search expanded %d nodes on the feasible fast path", res.Stats.Expanded)
	}
}

func TestSinglePathInfeasibleIsFailureSentinel(t *testing.T) {
	// One route only, dim segment: the generator runs but can only re-find
	// the shortest path, which misses the buffer.
	g := graph.New()
	g.AddNode(graph.Node{ID: 1, Lat: 33.77, Lon: -84.39})
	g.AddNode(graph.Node{ID: 2, Lat: 33.80, Lon: -84.42})
	g.AddEdge(1, 2, graph.EdgeAttrs{Length: 10000, TravelTime: 10, SolarExposure: 5})

	e := NewEngine(g)
	budget := model.EnergyBudget{InitialEnergyKwh: 0.5, ConsumptionRateKwhPerKm: 0.17, MinEnergyBufferKwh: 0.1}
	res, err := e.Route(Query{Start: 1, End: 2, Budget: budget, Profile: model.StandardProfile()})
	if err != nil {
		t.Fatalf("Route: %v", err)
	}
	if res.Feasible || res.Reason != ReasonInfeasibleBudget {
		t.Fatalf("reason = %q, feasible = %v", res.Reason, res.Feasible)
	}
	if res.Route != nil {
		t.Fatalf("failure must carry no route, got %v", res.Route)
	}
	if res.Metrics.DistanceKm != 0 || res.Metrics.SolarGainedKwh != 0 {
		t.Fatalf("failure sums must be zero: %+v", res.Metrics)
	}
	if res.Metrics.FinalEnergyKwh != budget.InitialEnergyKwh {
		t.Fatalf("failure must leave energy unchanged: %v", res.Metrics.FinalEnergyKwh)
	}
	if res.Stats.Candidates != 1 || res.Stats.ParetoSize != 1 {
		t.Fatalf("stats = %+v, want single-candidate set", res.Stats)
	}
}

func TestDisconnectedGraphIsNoPath(t *testing.T) {
	g := graph.New()
	g.AddNode(graph.Node{ID: 1})
	g.AddNode(graph.Node{ID: 2})

	e := NewEngine(g)
	budget := model.EnergyBudget{InitialEnergyKwh: 1, ConsumptionRateKwhPerKm: 0.2}
	res, err := e.Route(Query{Start: 1, End: 2, Budget: budget, Profile: model.StandardProfile()})
	if err != nil {
		t.Fatalf("no-path must not surface an error, got %v", err)
	}
	if res.Feasible || res.Reason != ReasonNoPath {
		t.Fatalf("reason = %q, feasible = %v", res.Reason, res.Feasible)
	}
	if res.Metrics.FinalEnergyKwh != 1 {
		t.Fatalf("energy changed on no-path: %v", res.Metrics.FinalEnergyKwh)
	}
}

func TestUnknownNodeIsAnError(t *testing.T) {
	e := NewEngine(singleEdgeGraph())
	_, err := e.Route(Query{Start: 99, End: 2, Profile: model.StandardProfile()})
	if !errors.Is(err, ErrUnknownNode) {
		t.Fatalf("expected ErrUnknownNode, got %v", err)
	}
	_, err = e.Route(Query{Start: 1, End: 99, Profile: model.StandardProfile()})
	if !errors.Is(err, ErrUnknownNode) {
		t.Fatalf("expected ErrUnknownNode, got %v", err)
	}
}

func TestScarcitySelectsSolarRichRoute(t *testing.T) {
	e := NewEngine(forkGraph())
	budget := model.EnergyBudget{InitialEnergyKwh: 1.0, ConsumptionRateKwhPerKm: 0.2, MinEnergyBufferKwh: 0.1}
	res, err := e.Route(Query{Start: 1, End: 4, Budget: budget, Profile: model.StandardProfile()})
	if err != nil {
		t.Fatalf("Route: %v", err)
	}
	// The fast route consumes 2.0 kWh against 1.0 initial: infeasible, so
	// the engine must fall through to the sunny detour.
	if !res.Feasible || res.Reason != ReasonSolarOptimized {
		t.Fatalf("reason = %q, feasible = %v", res.Reason, res.Feasible)
	}
	want := []graph.NodeID{1, 3, 4}
	if len(res.Route) != len(want) {
		t.Fatalf("route = %v, want %v", res.Route, want)
	}
	for i := range want {
		if res.Route[i] != want[i] {
			t.Fatalf("route = %v, want %v", res.Route, want)
		}
	}
	if res.Metrics.FinalEnergyKwh < budget.MinEnergyBufferKwh {
		t.Fatalf("selected route misses buffer: %v", res.Metrics.FinalEnergyKwh)
	}
	if res.Stats.Candidates < 2 {
		t.Fatalf("expected the search to add the detour, stats = %+v", res.Stats)
	}
	// Verify the composite ordering directly on the fixture numbers.
	a, _ := EvaluatePath(e.g, []graph.NodeID{1, 2, 4}, budget, model.StandardProfile())
	b, _ := EvaluatePath(e.g, []graph.NodeID{1, 3, 4}, budget, model.StandardProfile())
	if compositeScore(b) <= compositeScore(a) {
		t.Fatalf("fixture broken: composite(B)=%v should exceed composite(A)=%v", compositeScore(b), compositeScore(a))
	}
}

func TestEnergyConservation(t *testing.T) {
	g := forkGraph()
	budget := model.EnergyBudget{InitialEnergyKwh: 3.0, ConsumptionRateKwhPerKm: 0.15, MinEnergyBufferKwh: 0}
	m, err := EvaluatePath(g, []graph.NodeID{1, 3, 4}, budget, model.EnhancedProfile())
	if err != nil {
		t.Fatalf("EvaluatePath: %v", err)
	}
	want := budget.InitialEnergyKwh - m.EnergyConsumedKwh + m.SolarGainedKwh
	if math.Abs(m.FinalEnergyKwh-want) > 1e-9 {
		t.Fatalf("conservation violated: final=%v, want %v", m.FinalEnergyKwh, want)
	}
}

func TestMonotonicInInitialEnergy(t *testing.T) {
	g := forkGraph()
	profile := model.StandardProfile()
	route := []graph.NodeID{1, 2, 4}
	lo, _ := EvaluatePath(g, route, model.EnergyBudget{InitialEnergyKwh: 0.5, ConsumptionRateKwhPerKm: 0.2}, profile)
	hi, _ := EvaluatePath(g, route, model.EnergyBudget{InitialEnergyKwh: 2.5, ConsumptionRateKwhPerKm: 0.2}, profile)
	if hi.FinalEnergyKwh <= lo.FinalEnergyKwh {
		t.Fatalf("more initial energy must not end lower: %v <= %v", hi.FinalEnergyKwh, lo.FinalEnergyKwh)
	}
}

func TestStartEqualsEndIsTrivialFeasible(t *testing.T) {
	e := NewEngine(singleEdgeGraph())
	budget := model.EnergyBudget{InitialEnergyKwh: 0.4, ConsumptionRateKwhPerKm: 0.17, MinEnergyBufferKwh: 0.1}
	res, err := e.Route(Query{Start: 1, End: 1, Budget: budget, Profile: model.StandardProfile()})
	if err != nil {
		t.Fatalf("Route: %v", err)
	}
	if !res.Feasible || res.Reason != ReasonShortestFeasible {
		t.Fatalf("reason = %q", res.Reason)
	}
	if res.Metrics.DistanceKm != 0 || res.Metrics.FinalEnergyKwh != budget.InitialEnergyKwh {
		t.Fatalf("trivial route metrics = %+v", res.Metrics)
	}
}

func TestZeroConsumptionRate(t *testing.T) {
	e := NewEngine(singleEdgeGraph())
	res, err := e.Route(Query{
		Start:   1,
		End:     2,
		Budget:  model.EnergyBudget{InitialEnergyKwh: 0, ConsumptionRateKwhPerKm: 0},
		Profile: model.StandardProfile(),
	})
	if err != nil {
		t.Fatalf("Route: %v", err)
	}
	if !res.Feasible {
		t.Fatalf("zero rate, zero buffer must be feasible: %+v", res)
	}
}

func TestUnknownSolarEdgesStillRoutable(t *testing.T) {
	g := graph.New()
	g.AddNode(graph.Node{ID: 1, Lat: 33.70, Lon: -84.40})
	g.AddNode(graph.Node{ID: 2, Lat: 33.71, Lon: -84.40})
	g.AddEdge(1, 2, graph.EdgeAttrs{Length: 1000, TravelTime: 2, SolarExposure: math.NaN()})

	e := NewEngine(g)
	budget := model.EnergyBudget{InitialEnergyKwh: 1, ConsumptionRateKwhPerKm: 0.2}
	res, err := e.Route(Query{Start: 1, End: 2, Budget: budget, Profile: model.StandardProfile()})
	if err != nil {
		t.Fatalf("Route: %v", err)
	}
	if !res.Feasible {
		t.Fatalf("NaN exposure should not break routing: %+v", res)
	}
	if res.Metrics.SolarGainedKwh != 0 {
		t.Fatalf("unknown exposure must credit no gain, got %v", res.Metrics.SolarGainedKwh)
	}
}

func TestAuxGraphFirstParallelEdgeWins(t *testing.T) {
	g := graph.New()
	g.AddNode(graph.Node{ID: 1})
	g.AddNode(graph.Node{ID: 2})
	g.AddEdge(1, 2, graph.EdgeAttrs{Length: 1000, TravelTime: 4, SolarExposure: 100})
	g.AddEdge(1, 2, graph.EdgeAttrs{Length: 500, TravelTime: 1, SolarExposure: 900})

	budget := model.EnergyBudget{InitialEnergyKwh: 1, ConsumptionRateKwhPerKm: 0.2}
	aux := buildAuxGraph(g, budget, model.StandardProfile(), false)
	if len(aux.out[1]) != 1 {
		t.Fatalf("parallel edges must collapse to one aux edge, got %d", len(aux.out[1]))
	}
	primary, _ := g.EdgeBetween(1, 2)
	want := auxWeight(primary.Attrs, budget, model.StandardProfile(), g.MaxSolarExposure(), normalTimeWeight, normalSolarWeight)
	if aux.out[1][0].weight != want {
		t.Fatalf("aux weight = %v, want primary edge weight %v", aux.out[1][0].weight, want)
	}
}

func TestAuxWeightUnknownSolarPenalty(t *testing.T) {
	budget := model.EnergyBudget{InitialEnergyKwh: 1, ConsumptionRateKwhPerKm: 0.2}
	a := graph.EdgeAttrs{Length: 1000, TravelTime: 3, SolarExposure: math.NaN()}
	got := auxWeight(a, budget, model.StandardProfile(), 900, scarceTimeWeight, scarceSolarWeight)
	if got != 6 {
		t.Fatalf("unknown solar weight = %v, want travel_time*2 = 6", got)
	}
}

func TestAuxWeightEnergyFactorBranches(t *testing.T) {
	budget := model.EnergyBudget{InitialEnergyKwh: 1, ConsumptionRateKwhPerKm: 0.5}
	profile := model.StandardProfile()

	// Long dim edge: cost dwarfs gain, balance > 0 branch.
	lossy := graph.EdgeAttrs{Length: 20000, TravelTime: 20, SolarExposure: 1}
	// Short bright edge: gain dwarfs cost, reciprocal branch.
	sunny := graph.EdgeAttrs{Length: 100, TravelTime: 20, SolarExposure: 1000}

	wLossy := auxWeight(lossy, budget, profile, 1000, normalTimeWeight, normalSolarWeight)
	wSunny := auxWeight(sunny, budget, profile, 1000, normalTimeWeight, normalSolarWeight)
	if wLossy <= 0 || wSunny <= 0 {
		t.Fatalf("aux weights must stay positive: %v, %v", wLossy, wSunny)
	}
	if wSunny >= wLossy {
		t.Fatalf("net-gain sunny edge should be cheaper: %v >= %v", wSunny, wLossy)
	}
}

func TestCandidateCapRespected(t *testing.T) {
	// A small grid with enough path diversity to exceed a cap of 2.
	g := graph.New()
	for i := 1; i <= 6; i++ {
		g.AddNode(graph.Node{ID: graph.NodeID(i), Lat: 33.7 + float64(i)*0.001, Lon: -84.4})
	}
	attrs := graph.EdgeAttrs{Length: 1000, TravelTime: 2, SolarExposure: 300}
	g.AddEdge(1, 2, attrs)
	g.AddEdge(1, 3, attrs)
	g.AddEdge(2, 4, attrs)
	g.AddEdge(3, 4, attrs)
	g.AddEdge(4, 5, attrs)
	g.AddEdge(2, 5, attrs)
	g.AddEdge(3, 5, attrs)

	// Force the fallback search with an impossible buffer, then confirm the
	// candidate list never exceeds the cap.
	budget := model.EnergyBudget{InitialEnergyKwh: 0.1, ConsumptionRateKwhPerKm: 5, MinEnergyBufferKwh: 50}
	e := NewEngine(g)
	res, err := e.Route(Query{Start: 1, End: 5, Budget: budget, Profile: model.StandardProfile(), MaxCandidates: 2})
	if err != nil {
		t.Fatalf("Route: %v", err)
	}
	if res.Stats.Candidates > 2 {
		t.Fatalf("candidate cap ignored: %+v", res.Stats)
	}
	if res.Feasible {
		t.Fatalf("impossible buffer should fail, got %+v", res)
	}
}

func TestOnCandidateFiresDuringFallback(t *testing.T) {
	e := NewEngine(forkGraph())
	budget := model.EnergyBudget{InitialEnergyKwh: 1.0, ConsumptionRateKwhPerKm: 0.2, MinEnergyBufferKwh: 0.1}
	found := 0
	res, err := e.Route(Query{
		Start: 1, End: 4, Budget: budget, Profile: model.StandardProfile(),
		OnCandidate: func(route []graph.NodeID, m model.PathMetrics) {
			found++
			if m.FinalEnergyKwh < budget.MinEnergyBufferKwh {
				t.Errorf("callback got infeasible candidate: %+v", m)
			}
		},
	})
	if err != nil {
		t.Fatalf("Route: %v", err)
	}
	if found == 0 {
		t.Fatal("fallback search found candidates but the callback never fired")
	}
	if !res.Feasible {
		t.Fatalf("fixture should resolve to the sunny detour: %+v", res)
	}
}

func TestPolyline(t *testing.T) {
	e := NewEngine(singleEdgeGraph())
	pts := e.Polyline([]graph.NodeID{1, 2})
	if len(pts) != 2 || pts[0].Lat != 33.77 {
		t.Fatalf("polyline = %v", pts)
	}
}

package routing

import (
	"errors"
	"fmt"

	"github.com/stitch0212/CS5800-FinalProject/internal/graph"
	"github.com/stitch0212/CS5800-FinalProject/internal/model"
)

// DefaultMaxCandidates bounds the fallback search when the caller does not
// set a cap.
const DefaultMaxCandidates = 10

// Reason tags the outcome of a query so callers can tell the four terminal
// states apart without inspecting metrics.
type Reason string

const (
	ReasonShortestFeasible Reason = "shortest_feasible"
	ReasonSolarOptimized   Reason = "solar_optimized"
	ReasonNoPath           Reason = "no_path"
	ReasonInfeasibleBudget Reason = "infeasible_energy_budget"
)

// SearchStats records engine behavior for one query; surfaced through the
// admin API and exercised directly by tests.
type SearchStats struct {
	ShortestFeasible bool
	Candidates       int
	ParetoSize       int
	Expanded         int
}

// Result is the engine's answer to one query. On failure Route is nil, the
// distance and solar sums are zero, and FinalEnergyKwh echoes the initial
// energy untouched.
type Result struct {
	Route    []graph.NodeID
	Metrics  model.PathMetrics
	Reason   Reason
	Feasible bool
	Stats    SearchStats
}

// Query is one routing request against a fixed graph.
type Query struct {
	Start         graph.NodeID
	End           graph.NodeID
	Budget        model.EnergyBudget
	Profile       model.SolarProfile
	MaxCandidates int

	// OnCandidate, when set, is called synchronously for each feasible
	// candidate the fallback search finds.
	OnCandidate func(route []graph.NodeID, m model.PathMetrics)
}

// Engine runs energy-aware routing queries over a read-only graph. A single
// query is synchronous and single-threaded; concurrent queries are safe as
// long as nobody mutates the graph underneath them.
type Engine struct {
	g *graph.Graph
}

func NewEngine(g *graph.Graph) *Engine {
	return &Engine{g: g}
}

var ErrUnknownNode = graph.ErrUnknownNode

// Route answers a query in two phases. Phase one: if the time-shortest path
// already clears the energy buffer, return it and never search further.
// Phase two: explore the solar-biased auxiliary graph for up to MaxCandidates
// feasible alternatives, keep the Pareto-optimal set over (time, solar gain,
// energy consumed), and pick the composite-score winner. A winner that still
// misses the buffer means no viable route exists.
func (e *Engine) Route(q Query) (Result, error) {
	if !e.g.HasNode(q.Start) {
		return Result{}, fmt.Errorf("start node %d: %w", q.Start, ErrUnknownNode)
	}
	if !e.g.HasNode(q.End) {
		return Result{}, fmt.Errorf("end node %d: %w", q.End, ErrUnknownNode)
	}
	maxCandidates := q.MaxCandidates
	if maxCandidates <= 0 {
		maxCandidates = DefaultMaxCandidates
	}

	shortestRoute, err := e.g.ShortestPath(q.Start, q.End, graph.TravelTimeWeight)
	if err != nil {
		if errors.Is(err, graph.ErrNoPath) {
			return e.failure(q, ReasonNoPath, SearchStats{}), nil
		}
		return Result{}, err
	}
	shortestMetrics, err := EvaluatePath(e.g, shortestRoute, q.Budget, q.Profile)
	if err != nil {
		return Result{}, err
	}
	if shortestMetrics.FinalEnergyKwh >= q.Budget.MinEnergyBufferKwh {
		return Result{
			Route:    shortestRoute,
			Metrics:  shortestMetrics,
			Reason:   ReasonShortestFeasible,
			Feasible: true,
			Stats:    SearchStats{ShortestFeasible: true, Candidates: 1, ParetoSize: 1},
		}, nil
	}

	energyScarce := q.Budget.InitialEnergyKwh < shortestMetrics.EnergyConsumedKwh
	aux := buildAuxGraph(e.g, q.Budget, q.Profile, energyScarce)
	shortest := candidate{Route: shortestRoute, Metrics: shortestMetrics}
	cands, expanded := collectCandidates(e.g, aux, q.Start, q.End, shortest, q.Budget, q.Profile, maxCandidates, q.OnCandidate)

	front := paretoFront(cands)
	stats := SearchStats{Candidates: len(cands), ParetoSize: len(front), Expanded: expanded}

	best, ok := selectBest(front)
	if !ok {
		return e.failure(q, ReasonInfeasibleBudget, stats), nil
	}
	if best.Metrics.FinalEnergyKwh < q.Budget.MinEnergyBufferKwh {
		return e.failure(q, ReasonInfeasibleBudget, stats), nil
	}
	return Result{
		Route:    best.Route,
		Metrics:  best.Metrics,
		Reason:   ReasonSolarOptimized,
		Feasible: true,
		Stats:    stats,
	}, nil
}

// failure is the sentinel outcome: no route, zero sums, energy unchanged.
func (e *Engine) failure(q Query, reason Reason, stats SearchStats) Result {
	return Result{
		Metrics: model.PathMetrics{FinalEnergyKwh: q.Budget.InitialEnergyKwh},
		Reason:  reason,
		Stats:   stats,
	}
}

// Polyline maps a route to node coordinates for rendering. Nodes without a
// stored position are skipped.
func (e *Engine) Polyline(route []graph.NodeID) []model.GeoPoint {
	pts := make([]model.GeoPoint, 0, len(route))
	for _, id := range route {
		if n, ok := e.g.Node(id); ok {
			pts = append(pts, model.GeoPoint{Lat: n.Lat, Lng: n.Lon})
		}
	}
	return pts
}

package routing

import (
	"container/heap"
	"math"

	"github.com/stitch0212/CS5800-FinalProject/internal/graph"
	"github.com/stitch0212/CS5800-FinalProject/internal/model"
)

// Auxiliary cost graph and the bounded best-first explorer that walks it.
// The explorer trades exactness for a bounded runtime: a closed set prevents
// re-expansion, so it is a candidate generator, not a shortest-path solver.

const (
	scarceTimeWeight  = 0.2
	scarceSolarWeight = 0.8
	normalTimeWeight  = 0.3
	normalSolarWeight = 0.7

	// unknownSolarPenalty doubles the travel time of edges whose solar
	// exposure could not be parsed, keeping them usable but unattractive.
	unknownSolarPenalty = 2.0

	// heuristicSolarWeight inflates the great-circle estimate so the frontier
	// leans toward the target without claiming admissibility.
	heuristicSolarWeight = 1.0
)

type auxEdge struct {
	to     graph.NodeID
	weight float64
}

type auxGraph struct {
	out map[graph.NodeID][]auxEdge
}

// buildAuxGraph blends travel time with an energy-balance-adjusted solar term
// into a single per-edge weight. Built once per query; energyScarce switches
// the blend toward solar. Only the first parallel edge per node pair counts.
func buildAuxGraph(g *graph.Graph, budget model.EnergyBudget, profile model.SolarProfile, energyScarce bool) *auxGraph {
	timeW, solarW := normalTimeWeight, normalSolarWeight
	if energyScarce {
		timeW, solarW = scarceTimeWeight, scarceSolarWeight
	}
	maxSolar := g.MaxSolarExposure()

	aux := &auxGraph{out: map[graph.NodeID][]auxEdge{}}
	seen := map[[2]graph.NodeID]bool{}
	g.ForEachEdge(func(e graph.Edge) {
		key := [2]graph.NodeID{e.From, e.To}
		if seen[key] {
			return
		}
		seen[key] = true
		aux.out[e.From] = append(aux.out[e.From], auxEdge{to: e.To, weight: auxWeight(e.Attrs, budget, profile, maxSolar, timeW, solarW)})
	})
	return aux
}

func auxWeight(a graph.EdgeAttrs, budget model.EnergyBudget, profile model.SolarProfile, maxSolar, timeW, solarW float64) float64 {
	tt := a.TravelTime
	if math.IsNaN(a.SolarExposure) {
		return tt * unknownSolarPenalty
	}
	solarFactor := 0.0
	if maxSolar > 0 {
		solarFactor = a.SolarExposure / maxSolar
	}
	cost := EnergyCost(a.Length/1000, budget.ConsumptionRateKwhPerKm)
	gain := SolarGain(tt, a.SolarExposure, profile)
	balance := cost - gain
	var energyFactor float64
	if balance > 0 {
		energyFactor = 1 + balance
	} else {
		energyFactor = 1 / (1 - balance)
	}
	return timeW*tt + solarW*(tt*energyFactor*(1-solarFactor))
}

// heuristic estimates remaining cost as an inflated great-circle distance in
// kilometers. Zero when either node lacks a position.
func heuristic(g *graph.Graph, from, to graph.NodeID) float64 {
	a, okA := g.Node(from)
	b, okB := g.Node(to)
	if !okA || !okB {
		return 0
	}
	km := graph.HaversineMeters(a.Lat, a.Lon, b.Lat, b.Lon) / 1000
	return km + km*heuristicSolarWeight
}

type frontierEntry struct {
	path     []graph.NodeID
	cost     float64 // cumulative auxiliary weight
	priority float64 // cost + heuristic to target
}

type frontier []*frontierEntry

func (f frontier) Len() int            { return len(f) }
func (f frontier) Less(i, j int) bool  { return f[i].priority < f[j].priority }
func (f frontier) Swap(i, j int)       { f[i], f[j] = f[j], f[i] }
func (f *frontier) Push(x interface{}) { *f = append(*f, x.(*frontierEntry)) }
func (f *frontier) Pop() interface{} {
	old := *f
	n := len(old)
	e := old[n-1]
	*f = old[:n-1]
	return e
}

// collectCandidates explores the auxiliary graph best-first and returns the
// evaluated routes found, seeded with the time-shortest route (feasible or
// not). It stops once maxCandidates routes that clear the energy buffer are
// in hand or the frontier is exhausted. expanded counts closed-set pops.
func collectCandidates(g *graph.Graph, aux *auxGraph, start, end graph.NodeID, shortest candidate, budget model.EnergyBudget, profile model.SolarProfile, maxCandidates int, onFound func(route []graph.NodeID, m model.PathMetrics)) (cands []candidate, expanded int) {
	cands = []candidate{shortest}

	visited := map[graph.NodeID]bool{}
	f := &frontier{}
	heap.Init(f)
	heap.Push(f, &frontierEntry{path: []graph.NodeID{start}, cost: 0, priority: heuristic(g, start, end)})

	for f.Len() > 0 && len(cands) < maxCandidates {
		entry := heap.Pop(f).(*frontierEntry)
		node := entry.path[len(entry.path)-1]

		if node == end {
			m, err := EvaluatePath(g, entry.path, budget, profile)
			if err == nil && m.FinalEnergyKwh >= budget.MinEnergyBufferKwh && !containsRoute(cands, entry.path) {
				cands = append(cands, candidate{Route: entry.path, Metrics: m})
				if onFound != nil {
					onFound(entry.path, m)
				}
			}
			continue
		}
		if visited[node] {
			continue
		}
		visited[node] = true
		expanded++

		for _, ae := range aux.out[node] {
			if visited[ae.to] {
				continue
			}
			next := make([]graph.NodeID, len(entry.path)+1)
			copy(next, entry.path)
			next[len(entry.path)] = ae.to
			cost := entry.cost + ae.weight
			heap.Push(f, &frontierEntry{path: next, cost: cost, priority: cost + heuristic(g, ae.to, end)})
		}
	}
	return cands, expanded
}

func containsRoute(cands []candidate, route []graph.NodeID) bool {
	for _, c := range cands {
		if sameRoute(c.Route, route) {
			return true
		}
	}
	return false
}

func sameRoute(a, b []graph.NodeID) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

package graph

import (
	"errors"
	"math"
)

// NodeID is the graph-assigned opaque node identifier (OSM ids fit in int64).
type NodeID int64

// Node is an intersection with a geographic position.
type Node struct {
	ID  NodeID
	Lat float64
	Lon float64
}

// EdgeAttrs carries the per-segment attributes. SolarExposure is NaN when the
// source attribute could not be parsed as a non-negative number; consumers
// must treat NaN as "unknown", not zero.
type EdgeAttrs struct {
	Length        float64 // meters
	TravelTime    float64 // minutes
	SolarExposure float64 // irradiance proxy, NaN if malformed
	BaseTime      float64 // minutes, before delays and peak factor
	DelayTime     float64 // minutes of signal/intersection delay
	PeakFactor    float64
	SpeedLimit    float64 // km/h
	RoadType      string
}

// Edge is a directed segment. Parallel edges between the same node pair are
// kept in insertion order; the first one is the primary edge for lookups.
type Edge struct {
	From  NodeID
	To    NodeID
	Attrs EdgeAttrs
}

// Graph is a directed multigraph. It is not safe for concurrent mutation;
// queries treat a built graph as read-only.
type Graph struct {
	nodes map[NodeID]Node
	out   map[NodeID][]Edge
	edges int
}

var (
	ErrNoPath      = errors.New("no path between nodes")
	ErrUnknownNode = errors.New("unknown node")
)

func New() *Graph {
	return &Graph{nodes: map[NodeID]Node{}, out: map[NodeID][]Edge{}}
}

func (g *Graph) AddNode(n Node) {
	g.nodes[n.ID] = n
}

// AddEdge appends a directed edge. Endpoints need not be added first, but a
// node without a position breaks nearest-node and heuristic lookups.
func (g *Graph) AddEdge(from, to NodeID, attrs EdgeAttrs) {
	g.out[from] = append(g.out[from], Edge{From: from, To: to, Attrs: attrs})
	g.edges++
}

func (g *Graph) Node(id NodeID) (Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

func (g *Graph) HasNode(id NodeID) bool {
	_, ok := g.nodes[id]
	return ok
}

// Out returns all directed edges leaving u, parallel edges included.
func (g *Graph) Out(u NodeID) []Edge {
	return g.out[u]
}

// EdgeBetween returns the primary (first inserted) edge u->v.
func (g *Graph) EdgeBetween(u, v NodeID) (Edge, bool) {
	for _, e := range g.out[u] {
		if e.To == v {
			return e, true
		}
	}
	return Edge{}, false
}

func (g *Graph) NodeCount() int { return len(g.nodes) }
func (g *Graph) EdgeCount() int { return g.edges }

// ForEachEdge visits every directed edge, parallel edges included.
func (g *Graph) ForEachEdge(fn func(Edge)) {
	for _, es := range g.out {
		for _, e := range es {
			fn(e)
		}
	}
}

// UpdateEdges lets enrichment passes rewrite edge attributes in place.
func (g *Graph) UpdateEdges(fn func(*Edge)) {
	for _, es := range g.out {
		for i := range es {
			fn(&es[i])
		}
	}
}

// OutDegree is the number of directed edges leaving u.
func (g *Graph) OutDegree(u NodeID) int { return len(g.out[u]) }

// MaxSolarExposure returns the maximum parseable solar exposure over all
// edges, or 0 when no edge carries a usable value.
func (g *Graph) MaxSolarExposure() float64 {
	max := 0.0
	g.ForEachEdge(func(e Edge) {
		if s := e.Attrs.SolarExposure; !math.IsNaN(s) && s > max {
			max = s
		}
	})
	return max
}

// Bounds returns the bounding box of all node positions (minLat, minLon,
// maxLat, maxLon). Zeroes when the graph has no nodes.
func (g *Graph) Bounds() (float64, float64, float64, float64) {
	if len(g.nodes) == 0 {
		return 0, 0, 0, 0
	}
	minLat, minLon := math.Inf(1), math.Inf(1)
	maxLat, maxLon := math.Inf(-1), math.Inf(-1)
	for _, n := range g.nodes {
		minLat = math.Min(minLat, n.Lat)
		minLon = math.Min(minLon, n.Lon)
		maxLat = math.Max(maxLat, n.Lat)
		maxLon = math.Max(maxLon, n.Lon)
	}
	return minLat, minLon, maxLat, maxLon
}

// NearestNode returns the node closest to (lat, lon) by great-circle
// distance. Linear scan; the graphs we load stay in the tens of thousands of
// nodes.
func (g *Graph) NearestNode(lat, lon float64) (Node, error) {
	var best Node
	bestDist := math.Inf(1)
	found := false
	for _, n := range g.nodes {
		d := HaversineMeters(lat, lon, n.Lat, n.Lon)
		if d < bestDist {
			best = n
			bestDist = d
			found = true
		}
	}
	if !found {
		return Node{}, ErrUnknownNode
	}
	return best, nil
}

// HaversineMeters is the great-circle distance between two coordinates.
func HaversineMeters(lat1, lon1, lat2, lon2 float64) float64 {
	const R = 6371000.0
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180
	a := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return R * c
}

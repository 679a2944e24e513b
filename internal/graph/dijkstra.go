package graph

import (
	"container/heap"
	"fmt"
	"math"
)

// WeightFunc maps edge attributes to a non-negative cost. Returning NaN or a
// negative value poisons the search; callers own that contract.
type WeightFunc func(EdgeAttrs) float64

// TravelTimeWeight is the standard weight for time-shortest paths.
func TravelTimeWeight(a EdgeAttrs) float64 { return a.TravelTime }

// ShortestPath runs Dijkstra from start to end over the given weight.
// Edge weights are non-negative in this domain, so no negative-cycle handling
// is needed. Among parallel edges the cheapest one is relaxed, which for the
// primary-edge evaluation convention is a lower bound, never an overestimate.
func (g *Graph) ShortestPath(start, end NodeID, weight WeightFunc) ([]NodeID, error) {
	if !g.HasNode(start) {
		return nil, fmt.Errorf("start %d: %w", start, ErrUnknownNode)
	}
	if !g.HasNode(end) {
		return nil, fmt.Errorf("end %d: %w", end, ErrUnknownNode)
	}
	if start == end {
		return []NodeID{start}, nil
	}

	dist := map[NodeID]float64{start: 0}
	prev := map[NodeID]NodeID{}
	done := map[NodeID]bool{}

	pq := &nodeQueue{}
	heap.Init(pq)
	heap.Push(pq, &queueItem{node: start, priority: 0})

	for pq.Len() > 0 {
		item := heap.Pop(pq).(*queueItem)
		u := item.node
		if done[u] {
			continue
		}
		if u == end {
			return rebuildPath(prev, start, end), nil
		}
		done[u] = true
		for _, e := range g.out[u] {
			if done[e.To] {
				continue
			}
			w := weight(e.Attrs)
			if math.IsNaN(w) || w < 0 {
				continue
			}
			alt := dist[u] + w
			if old, ok := dist[e.To]; !ok || alt < old {
				dist[e.To] = alt
				prev[e.To] = u
				heap.Push(pq, &queueItem{node: e.To, priority: alt})
			}
		}
	}
	return nil, fmt.Errorf("%w: %d -> %d", ErrNoPath, start, end)
}

func rebuildPath(prev map[NodeID]NodeID, start, end NodeID) []NodeID {
	path := []NodeID{end}
	for cur := end; cur != start; {
		cur = prev[cur]
		path = append(path, cur)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

type queueItem struct {
	node     NodeID
	priority float64
}

type nodeQueue []*queueItem

func (pq nodeQueue) Len() int            { return len(pq) }
func (pq nodeQueue) Less(i, j int) bool  { return pq[i].priority < pq[j].priority }
func (pq nodeQueue) Swap(i, j int)       { pq[i], pq[j] = pq[j], pq[i] }
func (pq *nodeQueue) Push(x interface{}) { *pq = append(*pq, x.(*queueItem)) }
func (pq *nodeQueue) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[:n-1]
	return item
}

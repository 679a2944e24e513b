package graph

import (
	"encoding/gob"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
)

// The loader accepts the node-link JSON shape produced by exporting an osmnx
// road network (graph.nodes[].id/x/y, graph.links[].source/target/...).
// Attribute values arrive as numbers, numeric strings, multi-value strings
// like "30;50", or lists; parsing is deliberately lenient because upstream
// OSM data is messy.

type nodeLinkFile struct {
	Graph struct {
		Nodes []struct {
			ID any     `json:"id"`
			X  float64 `json:"x"`
			Y  float64 `json:"y"`
		} `json:"nodes"`
		Links []struct {
			Source        any    `json:"source"`
			Target        any    `json:"target"`
			Length        any    `json:"length"`
			TravelTime    any    `json:"travel_time"`
			SolarExposure any    `json:"solar_exposure"`
			BaseTime      any    `json:"base_time"`
			DelayTime     any    `json:"delay_time"`
			PeakFactor    any    `json:"peak_factor"`
			MaxSpeed      any    `json:"maxspeed"`
			Highway       any    `json:"highway"`
		} `json:"links"`
	} `json:"graph"`
}

// LoadJSON builds a Graph from node-link JSON bytes.
func LoadJSON(data []byte) (*Graph, error) {
	var f nodeLinkFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse graph JSON: %w", err)
	}
	g := New()
	for _, n := range f.Graph.Nodes {
		id, ok := ParseID(n.ID)
		if !ok {
			continue
		}
		g.AddNode(Node{ID: id, Lat: n.Y, Lon: n.X})
	}
	for _, l := range f.Graph.Links {
		src, okS := ParseID(l.Source)
		dst, okT := ParseID(l.Target)
		if !okS || !okT {
			continue
		}
		attrs := EdgeAttrs{
			Length:        numberOr(l.Length, 0),
			TravelTime:    numberOr(l.TravelTime, 0),
			SolarExposure: numberOrNaN(l.SolarExposure),
			BaseTime:      numberOr(l.BaseTime, 0),
			DelayTime:     numberOr(l.DelayTime, 0),
			PeakFactor:    numberOr(l.PeakFactor, 1),
			SpeedLimit:    numberOr(l.MaxSpeed, 0),
			RoadType:      stringOr(l.Highway),
		}
		g.AddEdge(src, dst, attrs)
	}
	return g, nil
}

// LoadJSONFile reads a node-link JSON file from disk.
func LoadJSONFile(path string) (*Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return LoadJSON(data)
}

// ParseID converts the id formats seen in exported graphs to NodeID.
func ParseID(v any) (NodeID, bool) {
	switch x := v.(type) {
	case float64:
		return NodeID(x), true
	case int64:
		return NodeID(x), true
	case int:
		return NodeID(x), true
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return NodeID(n), true
		}
	case string:
		if n, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64); err == nil {
			return NodeID(n), true
		}
	}
	return 0, false
}

// ParseNumber interprets a loosely typed attribute value. Multi-value strings
// ("30;50") average their parseable parts; lists use their first element.
func ParseNumber(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		if math.IsNaN(x) {
			return 0, false
		}
		return x, true
	case int:
		return float64(x), true
	case json.Number:
		if f, err := x.Float64(); err == nil {
			return f, true
		}
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0, false
		}
		if strings.Contains(s, ";") {
			sum, n := 0.0, 0
			for _, part := range strings.Split(s, ";") {
				if f, err := strconv.ParseFloat(strings.TrimSpace(part), 64); err == nil {
					sum += f
					n++
				}
			}
			if n > 0 {
				return sum / float64(n), true
			}
			return 0, false
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f, true
		}
	case []any:
		if len(x) > 0 {
			return ParseNumber(x[0])
		}
	}
	return 0, false
}

func numberOr(v any, fallback float64) float64 {
	if f, ok := ParseNumber(v); ok {
		return f
	}
	return fallback
}

// numberOrNaN keeps "unparseable" distinguishable from zero.
func numberOrNaN(v any) float64 {
	if f, ok := ParseNumber(v); ok {
		return f
	}
	return math.NaN()
}

func stringOr(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case []any:
		if len(x) > 0 {
			if s, ok := x[0].(string); ok {
				return s
			}
		}
	}
	return ""
}

// gobGraph is the snapshot wire shape; the live Graph keeps its maps private.
type gobGraph struct {
	Nodes []Node
	Edges []Edge
}

// SaveGob writes a binary snapshot, cheaper to reload than re-parsing JSON.
func (g *Graph) SaveGob(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	snap := gobGraph{Nodes: make([]Node, 0, len(g.nodes))}
	for _, n := range g.nodes {
		snap.Nodes = append(snap.Nodes, n)
	}
	g.ForEachEdge(func(e Edge) { snap.Edges = append(snap.Edges, e) })
	return gob.NewEncoder(f).Encode(snap)
}

// LoadGob reads a snapshot written by SaveGob.
func LoadGob(path string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var snap gobGraph
	if err := gob.NewDecoder(f).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decode graph snapshot: %w", err)
	}
	g := New()
	for _, n := range snap.Nodes {
		g.AddNode(n)
	}
	for _, e := range snap.Edges {
		g.AddEdge(e.From, e.To, e.Attrs)
	}
	return g, nil
}

package graph

import "sort"

// Hub is a high-degree node in the metrics summary.
type Hub struct {
	Name   string `json:"name"`
	Degree int    `json:"degree"`
}

// Metrics summarizes graph shape for reports and CLI output.
type Metrics struct {
	Nodes          int     `json:"nodes"`
	Edges          int     `json:"edges"`
	ObservedEdges  int     `json:"observed_edges"`
	PredictedEdges int     `json:"predicted_edges"`
	TotalWeight    float64 `json:"total_weight"`
	Density        float64 `json:"density"`
	AvgDegree      float64 `json:"avg_degree"`
	Hubs           []Hub   `json:"hubs,omitempty"`
}

// OriginCounts tallies edges per origin.
func (g *Graph) OriginCounts() map[Origin]int {
	counts := make(map[Origin]int)
	if g == nil {
		return counts
	}
	for _, e := range g.edges {
		origin := e.Origin
		if origin == "" {
			origin = OriginObserved
		}
		counts[origin]++
	}
	return counts
}

// ComputeMetrics derives the summary metrics, listing at most topHubs
// highest-degree nodes.
func (g *Graph) ComputeMetrics(topHubs int) Metrics {
	m := Metrics{Nodes: g.NodeCount(), Edges: g.EdgeCount()}

	origins := g.OriginCounts()
	m.ObservedEdges = origins[OriginObserved]
	m.PredictedEdges = origins[OriginPredicted]

	for _, e := range g.edges {
		m.TotalWeight += e.Weight
	}

	if m.Nodes > 1 {
		m.Density = float64(2*m.Edges) / float64(m.Nodes*(m.Nodes-1))
		m.AvgDegree = float64(2*m.Edges) / float64(m.Nodes)
	}

	if topHubs > 0 && m.Nodes > 0 {
		hubs := make([]Hub, 0, m.Nodes)
		for _, n := range g.Nodes() {
			hubs = append(hubs, Hub{Name: n, Degree: g.Degree(n)})
		}
		sort.SliceStable(hubs, func(i, j int) bool { return hubs[i].Degree > hubs[j].Degree })
		if len(hubs) > topHubs {
			hubs = hubs[:topHubs]
		}
		m.Hubs = hubs
	}
	return m
}

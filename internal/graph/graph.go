package graph

import (
	"sort"
)

// Origin marks how an edge entered the graph.
type Origin string

const (
	// OriginObserved edges come from entity co-occurrence in source texts.
	OriginObserved Origin = "observed"
	// OriginPredicted edges were proposed by a link prediction strategy.
	OriginPredicted Origin = "predicted"
)

// Edge is an undirected weighted relation between two entity nodes. Source
// and Target are stored in lexicographic order so each pair has one
// canonical orientation.
type Edge struct {
	Source string  `json:"source"`
	Target string  `json:"target"`
	Weight float64 `json:"weight"`
	Origin Origin  `json:"origin"`
}

// Graph is an undirected co-occurrence graph. Node identity is the
// normalized entity string; observed edge weights count how many entity
// sets produced the pair.
type Graph struct {
	Name string

	nodes     map[string]struct{}
	edges     map[[2]string]*Edge
	adjacency map[string]map[string]*Edge
}

// NewGraph creates an empty graph.
func NewGraph(name string) *Graph {
	return &Graph{
		Name:      name,
		nodes:     make(map[string]struct{}),
		edges:     make(map[[2]string]*Edge),
		adjacency: make(map[string]map[string]*Edge),
	}
}

func pairKey(a, b string) [2]string {
	if a > b {
		a, b = b, a
	}
	return [2]string{a, b}
}

// AddNode registers a node without touching edges. Empty names are ignored.
func (g *Graph) AddNode(name string) {
	if name == "" {
		return
	}
	g.nodes[name] = struct{}{}
	if g.adjacency[name] == nil {
		g.adjacency[name] = make(map[string]*Edge)
	}
}

// AddEdge records one co-occurrence of the pair. A new pair gets an observed
// edge with weight 1; an existing edge has its weight incremented, whatever
// its origin. Self pairs and empty names are no-ops.
func (g *Graph) AddEdge(source, target string) {
	if source == "" || target == "" || source == target {
		return
	}
	key := pairKey(source, target)
	if e, ok := g.edges[key]; ok {
		e.Weight++
		return
	}
	g.insertEdge(&Edge{Source: key[0], Target: key[1], Weight: 1, Origin: OriginObserved})
}

// AddPredicted inserts a predicted edge carrying the strategy score as its
// weight. Existing pairs are left untouched; the return value reports
// whether the edge was added.
func (g *Graph) AddPredicted(source, target string, score float64) bool {
	if source == "" || target == "" || source == target {
		return false
	}
	key := pairKey(source, target)
	if _, ok := g.edges[key]; ok {
		return false
	}
	g.insertEdge(&Edge{Source: key[0], Target: key[1], Weight: score, Origin: OriginPredicted})
	return true
}

// PutEdge inserts or replaces the canonical edge record for a pair, keeping
// whatever weight and origin it carries. Used when restoring persisted
// graphs.
func (g *Graph) PutEdge(e Edge) {
	if e.Source == "" || e.Target == "" || e.Source == e.Target {
		return
	}
	key := pairKey(e.Source, e.Target)
	e.Source, e.Target = key[0], key[1]
	if e.Origin == "" {
		e.Origin = OriginObserved
	}
	g.insertEdge(&e)
}

func (g *Graph) insertEdge(e *Edge) {
	g.AddNode(e.Source)
	g.AddNode(e.Target)
	g.edges[[2]string{e.Source, e.Target}] = e
	g.adjacency[e.Source][e.Target] = e
	g.adjacency[e.Target][e.Source] = e
}

// BuildFromEntitySet links every unordered pair of a deduplicated entity
// set. Sets with fewer than two distinct non-empty names produce no edges.
func (g *Graph) BuildFromEntitySet(names []string) {
	distinct := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		distinct = append(distinct, n)
	}
	if len(distinct) < 2 {
		return
	}
	for i := 0; i < len(distinct); i++ {
		for j := i + 1; j < len(distinct); j++ {
			g.AddEdge(distinct[i], distinct[j])
		}
	}
}

// HasNode reports whether the node exists.
func (g *Graph) HasNode(name string) bool {
	_, ok := g.nodes[name]
	return ok
}

// HasEdge reports whether the unordered pair is connected.
func (g *Graph) HasEdge(a, b string) bool {
	_, ok := g.edges[pairKey(a, b)]
	return ok
}

// EdgeBetween returns the edge for the unordered pair, or nil.
func (g *Graph) EdgeBetween(a, b string) *Edge {
	return g.edges[pairKey(a, b)]
}

// Weight returns the edge weight for the unordered pair, if present.
func (g *Graph) Weight(a, b string) (float64, bool) {
	e, ok := g.edges[pairKey(a, b)]
	if !ok {
		return 0, false
	}
	return e.Weight, true
}

// Nodes returns all node names in lexicographic order.
func (g *Graph) Nodes() []string {
	out := make([]string, 0, len(g.nodes))
	for n := range g.nodes {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Edges returns copies of all edges ordered by source then target.
func (g *Graph) Edges() []Edge {
	out := make([]Edge, 0, len(g.edges))
	for _, e := range g.edges {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Source == out[j].Source {
			return out[i].Target < out[j].Target
		}
		return out[i].Source < out[j].Source
	})
	return out
}

// Neighbors returns the adjacent node names in lexicographic order.
func (g *Graph) Neighbors(name string) []string {
	adj := g.adjacency[name]
	if len(adj) == 0 {
		return nil
	}
	out := make([]string, 0, len(adj))
	for n := range adj {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Degree returns the number of neighbors of the node.
func (g *Graph) Degree(name string) int {
	return len(g.adjacency[name])
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int {
	return len(g.edges)
}

// Clone returns a deep copy of the graph under the given name.
func (g *Graph) Clone(name string) *Graph {
	out := NewGraph(name)
	for n := range g.nodes {
		out.AddNode(n)
	}
	for _, e := range g.edges {
		copied := *e
		out.insertEdge(&copied)
	}
	return out
}

// PredictedOnly returns the subgraph holding only predicted edges and their
// endpoints.
func (g *Graph) PredictedOnly() *Graph {
	out := NewGraph(g.Name + "-predicted")
	for _, e := range g.edges {
		if e.Origin != OriginPredicted {
			continue
		}
		copied := *e
		out.insertEdge(&copied)
	}
	return out
}

// Package predict ranks candidate edges of a co-occurrence graph with
// structural link-prediction heuristics chosen by name from a registry.
package predict

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"litkg/internal/graph"
)

// Scorer assigns a plausibility score to a non-adjacent node pair using
// only the graph's topology.
type Scorer func(g *graph.Graph, a, b string) float64

// registry maps strategy names to scorers. Resolution happens once, at
// predictor construction.
var registry = map[string]Scorer{
	"common_neighbors":        commonNeighborsScore,
	"jaccard":                 jaccardScore,
	"adamic_adar":             adamicAdarScore,
	"resource_allocation":     resourceAllocationScore,
	"preferential_attachment": preferentialAttachmentScore,
}

// Strategies lists the registered strategy names, sorted.
func Strategies() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Prediction is one ranked candidate edge.
type Prediction struct {
	Source string  `json:"source"`
	Target string  `json:"target"`
	Score  float64 `json:"score"`
}

// Predictor scores candidate edges with one fixed strategy.
type Predictor struct {
	strategy string
	scorer   Scorer
}

// NewPredictor resolves the strategy by name. Unknown names are an error
// listing the registered set.
func NewPredictor(strategy string) (*Predictor, error) {
	scorer, ok := registry[strategy]
	if !ok {
		return nil, fmt.Errorf("unknown prediction strategy %q (known: %s)",
			strategy, strings.Join(Strategies(), ", "))
	}
	return &Predictor{strategy: strategy, scorer: scorer}, nil
}

// Strategy returns the predictor's strategy name.
func (p *Predictor) Strategy() string {
	return p.strategy
}

// TopK scores every non-adjacent unordered node pair and returns the k
// highest, best first. Candidates are enumerated over the sorted node list,
// and equal scores keep that enumeration order, so the ranking is
// deterministic. The graph is never mutated.
func (p *Predictor) TopK(g *graph.Graph, k int) []Prediction {
	if g == nil || k <= 0 {
		return nil
	}

	nodes := g.Nodes()
	var candidates []Prediction
	for i := 0; i < len(nodes); i++ {
		for j := i + 1; j < len(nodes); j++ {
			if g.HasEdge(nodes[i], nodes[j]) {
				continue
			}
			candidates = append(candidates, Prediction{
				Source: nodes[i],
				Target: nodes[j],
				Score:  p.scorer(g, nodes[i], nodes[j]),
			})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	if len(candidates) > k {
		candidates = candidates[:k]
	}
	return candidates
}

func commonNeighbors(g *graph.Graph, a, b string) []string {
	bAdj := make(map[string]struct{})
	for _, n := range g.Neighbors(b) {
		bAdj[n] = struct{}{}
	}
	var shared []string
	for _, n := range g.Neighbors(a) {
		if _, ok := bAdj[n]; ok {
			shared = append(shared, n)
		}
	}
	return shared
}

func commonNeighborsScore(g *graph.Graph, a, b string) float64 {
	return float64(len(commonNeighbors(g, a, b)))
}

func jaccardScore(g *graph.Graph, a, b string) float64 {
	shared := len(commonNeighbors(g, a, b))
	union := g.Degree(a) + g.Degree(b) - shared
	if union == 0 {
		return 0
	}
	return float64(shared) / float64(union)
}

// adamicAdarScore weights each common neighbor by 1/log(degree), so rare
// shared neighbors count more than hubs. Degree-1 neighbors are skipped to
// keep the logarithm away from zero.
func adamicAdarScore(g *graph.Graph, a, b string) float64 {
	var sum float64
	for _, n := range commonNeighbors(g, a, b) {
		if d := g.Degree(n); d > 1 {
			sum += 1 / math.Log(float64(d))
		}
	}
	return sum
}

func resourceAllocationScore(g *graph.Graph, a, b string) float64 {
	var sum float64
	for _, n := range commonNeighbors(g, a, b) {
		if d := g.Degree(n); d > 0 {
			sum += 1 / float64(d)
		}
	}
	return sum
}

func preferentialAttachmentScore(g *graph.Graph, a, b string) float64 {
	return float64(g.Degree(a) * g.Degree(b))
}

// Package validate checks co-occurrence graphs against loaded ontologies:
// nodes through exact/fuzzy label matching, edges through is-a hierarchy
// distance between the resolved concepts.
package validate

import (
	"fmt"

	"litkg/internal/graph"
	"litkg/internal/logging"
	"litkg/internal/match"
	"litkg/internal/ontology"
	"litkg/internal/resolver"
)

// DefaultStrongDistance separates taxonomically close pairs from distant
// ones. Tunable, but the default is fixed for report compatibility.
const DefaultStrongDistance = 5

// EdgeStatus classifies one validated edge.
type EdgeStatus string

const (
	// EdgeStrong: both endpoints resolved, hierarchy distance below the
	// strong threshold.
	EdgeStrong EdgeStatus = "strong"
	// EdgeWeak: both endpoints resolved, finite but distant.
	EdgeWeak EdgeStatus = "weak"
	// EdgeDisconnected: both endpoints resolved but share no ancestor.
	EdgeDisconnected EdgeStatus = "disconnected"
	// EdgeUnknownNodes: at least one endpoint resolved to no concept.
	EdgeUnknownNodes EdgeStatus = "unknown_nodes"
)

// EdgeDetail is the per-edge outcome. Distance is present only when
// finite; the status alone carries disconnection.
type EdgeDetail struct {
	Status   EdgeStatus `json:"status"`
	Distance *int       `json:"distance,omitempty"`
}

// EdgeReport summarizes edge validation. The distance average covers only
// edges with a finite distance and is 0.0 when none qualify.
type EdgeReport struct {
	TotalEdges  int                   `json:"total_edges"`
	ValidRels   int                   `json:"valid_rels"`
	WeakRels    int                   `json:"weak_rels"`
	AvgDistance float64               `json:"avg_distance"`
	Details     map[string]EdgeDetail `json:"details"`
}

// Report is the full validation output. EdgeReport is nil when no ontology
// was loaded: "not attempted" is distinct from zero valid edges.
type Report struct {
	TotalNodes   int                     `json:"total_nodes"`
	ValidNodes   int                     `json:"valid_nodes"`
	InvalidNodes int                     `json:"invalid_nodes"`
	Precision    float64                 `json:"precision"`
	NodeDetails  map[string]match.Result `json:"node_details"`
	TotalEdges   int                     `json:"total_edges"`
	EdgeReport   *EdgeReport             `json:"edge_report,omitempty"`
}

// Validator orchestrates matcher, resolver chain, and distance calculator
// over a graph. Each validator owns its caches, so instances are
// independent.
type Validator struct {
	index     *ontology.Index
	matcher   *match.Matcher
	chain     *resolver.Chain
	distances *ontology.Distances
	log       *logging.Logger

	// StrongDistance is the strong/weak boundary for edge classification.
	StrongDistance int
}

// NewValidator wires a validator over the index with default policy.
func NewValidator(idx *ontology.Index, log *logging.Logger) *Validator {
	matcher := match.NewMatcher(idx)
	return &Validator{
		index:          idx,
		matcher:        matcher,
		chain:          resolver.NewChain(idx, matcher),
		distances:      ontology.NewDistances(),
		log:            logging.OrNop(log),
		StrongDistance: DefaultStrongDistance,
	}
}

// Matcher exposes the validator's matcher, mainly so callers can adjust
// cutoff policy before validating.
func (v *Validator) Matcher() *match.Matcher {
	return v.matcher
}

// ValidateGraph classifies every node and, when at least one ontology is
// loaded, every edge. An empty graph yields precision 0.0 and no error.
func (v *Validator) ValidateGraph(g *graph.Graph) *Report {
	report := &Report{
		TotalNodes:  g.NodeCount(),
		TotalEdges:  g.EdgeCount(),
		NodeDetails: make(map[string]match.Result, g.NodeCount()),
	}

	for _, node := range g.Nodes() {
		result := v.matcher.Match(node)
		report.NodeDetails[node] = result
		if result.Status == match.StatusValid {
			report.ValidNodes++
		} else {
			report.InvalidNodes++
		}
	}
	if report.TotalNodes > 0 {
		report.Precision = float64(report.ValidNodes) / float64(report.TotalNodes)
	}

	v.log.Info("node validation done",
		"nodes", report.TotalNodes, "valid", report.ValidNodes, "precision", report.Precision)

	if v.index.SourceCount() > 0 {
		report.EdgeReport = v.ValidateEdges(g)
	}
	return report
}

// ValidateEdges resolves both endpoints of every edge and classifies the
// pair by hierarchy distance.
func (v *Validator) ValidateEdges(g *graph.Graph) *EdgeReport {
	report := &EdgeReport{
		TotalEdges: g.EdgeCount(),
		Details:    make(map[string]EdgeDetail, g.EdgeCount()),
	}

	var distanceSum, finite int
	for _, edge := range g.Edges() {
		key := fmt.Sprintf("%s--%s", edge.Source, edge.Target)

		a := v.chain.Resolve(edge.Source)
		b := v.chain.Resolve(edge.Target)
		if a == nil || b == nil {
			report.Details[key] = EdgeDetail{Status: EdgeUnknownNodes}
			continue
		}

		hops, connected := v.distances.Distance(a, b)
		if !connected {
			report.Details[key] = EdgeDetail{Status: EdgeDisconnected}
			continue
		}

		distanceSum += hops
		finite++
		d := hops
		detail := EdgeDetail{Status: EdgeWeak, Distance: &d}
		if hops < v.StrongDistance {
			detail.Status = EdgeStrong
			report.ValidRels++
		} else {
			report.WeakRels++
		}
		report.Details[key] = detail
	}

	if finite > 0 {
		report.AvgDistance = float64(distanceSum) / float64(finite)
	}

	v.log.Info("edge validation done",
		"edges", report.TotalEdges, "strong", report.ValidRels,
		"weak", report.WeakRels, "avg_distance", report.AvgDistance)
	return report
}

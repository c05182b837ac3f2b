package pipeline

import (
	"context"

	"litkg/internal/graph"
	"litkg/internal/ontology"
	"litkg/internal/validate"
)

// BenchmarkRow is the outcome of validating one graph against one ontology
// source in isolation. A source that fails to load still produces a row,
// carrying the error.
type BenchmarkRow struct {
	Source       string  `json:"source"`
	Concepts     int     `json:"concepts"`
	Labels       int     `json:"labels"`
	ValidNodes   int     `json:"valid_nodes"`
	InvalidNodes int     `json:"invalid_nodes"`
	Precision    float64 `json:"precision"`
	AvgDistance  float64 `json:"avg_distance"`
	StrongRels   int     `json:"strong_rels"`
	WeakRels     int     `json:"weak_rels"`
	Error        string  `json:"error,omitempty"`
}

// Benchmark validates the graph against every source separately, each with
// a fresh index and validator so the sources do not contaminate each
// other. The sweep never aborts on a failing source.
func (r *Runner) Benchmark(ctx context.Context, g *graph.Graph, refs []ontology.SourceRef) ([]BenchmarkRow, error) {
	if len(refs) == 0 {
		refs = r.configuredSources()
	}

	loader, err := r.newLoader()
	if err != nil {
		return nil, err
	}

	rows := make([]BenchmarkRow, 0, len(refs))
	for _, ref := range refs {
		row := BenchmarkRow{Source: displayName(ref)}

		src, err := loader.Load(ctx, ref)
		if err != nil {
			r.log.Warn("benchmark source failed", "source", row.Source, "error", err)
			row.Error = err.Error()
			rows = append(rows, row)
			continue
		}

		idx := ontology.NewIndex()
		idx.AddSource(src)
		row.Concepts = idx.ConceptCount()
		row.Labels = idx.VocabularySize()

		validator := validate.NewValidator(idx, r.log)
		validator.StrongDistance = r.cfg.Validation.StrongDistance
		r.applyCutoffPolicy(validator)

		report := validator.ValidateGraph(g)
		row.ValidNodes = report.ValidNodes
		row.InvalidNodes = report.InvalidNodes
		row.Precision = report.Precision
		if report.EdgeReport != nil {
			row.AvgDistance = report.EdgeReport.AvgDistance
			row.StrongRels = report.EdgeReport.ValidRels
			row.WeakRels = report.EdgeReport.WeakRels
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func displayName(ref ontology.SourceRef) string {
	if ref.Name != "" {
		return ref.Name
	}
	return ref.URL
}

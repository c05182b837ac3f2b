// Package pipeline orchestrates the batch flows: ingest records into a
// graph, predict candidate edges, validate against ontologies, persist the
// results, and benchmark ontology sources against a fixed graph.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"litkg/internal/config"
	"litkg/internal/corpus"
	"litkg/internal/graph"
	"litkg/internal/logging"
	"litkg/internal/ontology"
	"litkg/internal/predict"
	"litkg/internal/storage"
	"litkg/internal/validate"
)

// Runner executes pipeline flows against one store and configuration.
type Runner struct {
	cfg   *config.Config
	store storage.Store
	log   *logging.Logger
}

// NewRunner wires a runner. The store may be nil for flows that do not
// persist.
func NewRunner(cfg *config.Config, store storage.Store, log *logging.Logger) *Runner {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Runner{cfg: cfg, store: store, log: logging.OrNop(log)}
}

// RunOptions select the stages of one full run.
type RunOptions struct {
	RecordsPath  string
	GraphName    string
	SnapshotPath string

	Predict        bool
	Strategy       string
	TopK           int
	MergePredicted bool

	// Sources overrides the configured ontology list when non-empty.
	Sources []ontology.SourceRef
}

// RunResult reports what one full run produced.
type RunResult struct {
	Graph       *graph.Graph
	Stats       graph.IngestStats
	Predictions []predict.Prediction
	Extended    *graph.Graph
	Report      *validate.Report
	RunID       string
}

// Run executes ingest → store → optional predict/merge → validate →
// persist run.
func (r *Runner) Run(ctx context.Context, opts RunOptions) (*RunResult, error) {
	g, stats, err := r.Ingest(ctx, opts.RecordsPath, opts.GraphName)
	if err != nil {
		return nil, err
	}
	result := &RunResult{Graph: g, Stats: stats}

	if opts.SnapshotPath != "" {
		if err := graph.SaveSnapshot(g, opts.SnapshotPath); err != nil {
			return nil, err
		}
	}

	if opts.Predict {
		predictions, extended, err := r.Predict(ctx, g, opts.Strategy, opts.TopK, opts.MergePredicted)
		if err != nil {
			return nil, err
		}
		result.Predictions = predictions
		result.Extended = extended
	}

	target := result.Graph
	if result.Extended != nil {
		target = result.Extended
	}
	report, runID, err := r.Validate(ctx, target, opts.Sources)
	if err != nil {
		return nil, err
	}
	result.Report = report
	result.RunID = runID
	return result, nil
}

// Ingest reads entity records, builds the co-occurrence graph, and stores
// it when a store is present.
func (r *Runner) Ingest(ctx context.Context, recordsPath, graphName string) (*graph.Graph, graph.IngestStats, error) {
	records, err := corpus.ReadRecords(recordsPath)
	if err != nil {
		return nil, graph.IngestStats{}, err
	}

	if graphName == "" {
		graphName = "default"
	}
	g := graph.NewGraph(graphName)
	stats := g.Ingest(records)
	r.log.Info("records ingested",
		"records", stats.Records, "skipped", stats.Skipped,
		"nodes", g.NodeCount(), "edges", g.EdgeCount())

	if r.store != nil {
		if err := r.store.SaveGraph(ctx, g); err != nil {
			return nil, stats, fmt.Errorf("failed to save graph: %w", err)
		}
	}
	return g, stats, nil
}

// Predict ranks candidate edges of the graph, records them in the
// prediction history, and optionally merges them into a "-extended" clone,
// which is stored alongside the base graph.
func (r *Runner) Predict(ctx context.Context, g *graph.Graph, strategy string, topK int, merge bool) ([]predict.Prediction, *graph.Graph, error) {
	if strategy == "" {
		strategy = r.cfg.Prediction.Strategy
	}
	if topK <= 0 {
		topK = r.cfg.Prediction.TopK
	}

	predictor, err := predict.NewPredictor(strategy)
	if err != nil {
		return nil, nil, err
	}
	predictions := predictor.TopK(g, topK)
	r.log.Info("candidate edges predicted", "strategy", strategy, "count", len(predictions))

	if r.store != nil && len(predictions) > 0 {
		rows := make([]storage.PredictionRow, 0, len(predictions))
		for _, p := range predictions {
			rows = append(rows, storage.PredictionRow{
				GraphName: g.Name,
				Strategy:  strategy,
				Source:    p.Source,
				Target:    p.Target,
				Score:     p.Score,
			})
		}
		if err := r.store.SavePredictions(ctx, rows); err != nil {
			return nil, nil, fmt.Errorf("failed to save predictions: %w", err)
		}
	}

	if !merge {
		return predictions, nil, nil
	}

	extended := g.Clone(g.Name + "-extended")
	for _, p := range predictions {
		extended.AddPredicted(p.Source, p.Target, p.Score)
	}
	if r.store != nil {
		if err := r.store.SaveGraph(ctx, extended); err != nil {
			return nil, nil, fmt.Errorf("failed to save extended graph: %w", err)
		}
	}
	return predictions, extended, nil
}

// Validate loads ontology sources (the configured list when refs is empty)
// and validates the graph against them, persisting a run record when a
// store is present. The returned string is the stored run id, empty
// without a store.
func (r *Runner) Validate(ctx context.Context, g *graph.Graph, refs []ontology.SourceRef) (*validate.Report, string, error) {
	idx, err := r.LoadOntologies(ctx, refs)
	if err != nil {
		return nil, "", err
	}

	validator := validate.NewValidator(idx, r.log)
	validator.StrongDistance = r.cfg.Validation.StrongDistance
	r.applyCutoffPolicy(validator)
	report := validator.ValidateGraph(g)

	if r.store == nil {
		return report, "", nil
	}
	raw, err := json.Marshal(report)
	if err != nil {
		return nil, "", fmt.Errorf("failed to encode report: %w", err)
	}
	run := &storage.Run{
		GraphName:    g.Name,
		TotalNodes:   report.TotalNodes,
		ValidNodes:   report.ValidNodes,
		InvalidNodes: report.InvalidNodes,
		Precision:    report.Precision,
		Report:       raw,
	}
	if err := r.store.SaveRun(ctx, run); err != nil {
		return nil, "", fmt.Errorf("failed to save run: %w", err)
	}
	return report, run.ID, nil
}

// LoadOntologies loads the requested sources into a fresh index.
// Individual source failures are logged and skipped; an empty index is a
// legal outcome that limits validation to the node report.
func (r *Runner) LoadOntologies(ctx context.Context, refs []ontology.SourceRef) (*ontology.Index, error) {
	if len(refs) == 0 {
		refs = r.configuredSources()
	}

	idx := ontology.NewIndex()
	if len(refs) == 0 {
		return idx, nil
	}

	loader, err := r.newLoader()
	if err != nil {
		return nil, err
	}
	loader.LoadAll(ctx, refs, idx)
	r.log.Info("ontologies loaded",
		"sources", idx.SourceCount(), "requested", len(refs),
		"labels", idx.VocabularySize())
	return idx, nil
}

func (r *Runner) applyCutoffPolicy(v *validate.Validator) {
	m := v.Matcher()
	m.BaseCutoff = float64(r.cfg.Fuzzy.BaseCutoff)
	m.MinCutoff = float64(r.cfg.Fuzzy.MinCutoff)
	m.MaxCutoff = float64(r.cfg.Fuzzy.MaxCutoff)
}

func (r *Runner) configuredSources() []ontology.SourceRef {
	refs := make([]ontology.SourceRef, 0, len(r.cfg.Ontology.Sources))
	for _, s := range r.cfg.Ontology.Sources {
		refs = append(refs, ontology.SourceRef{Name: s.Name, URL: s.URL})
	}
	return refs
}

func (r *Runner) newLoader() (*ontology.Loader, error) {
	timeout := time.Duration(r.cfg.Cache.HTTPTimeoutSeconds) * time.Second
	return ontology.NewLoader(r.cfg.Cache.Dir, timeout, r.log)
}

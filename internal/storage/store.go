// Package storage persists named co-occurrence graphs, validation runs,
// and prediction history.
package storage

import (
	"context"
	"encoding/json"
	"time"

	"litkg/internal/graph"
)

// GraphInfo is one row of a graph listing.
type GraphInfo struct {
	Name      string
	Nodes     int
	Edges     int
	UpdatedAt time.Time
}

// Run records one validation run over a stored graph, with the full report
// kept as JSON.
type Run struct {
	ID           string
	GraphName    string
	TotalNodes   int
	ValidNodes   int
	InvalidNodes int
	Precision    float64
	Report       json.RawMessage
	CreatedAt    time.Time
}

// PredictionRow is one persisted candidate edge from a prediction run.
type PredictionRow struct {
	GraphName string
	Strategy  string
	Source    string
	Target    string
	Score     float64
	CreatedAt time.Time
}

// Store combines graph, run, and prediction persistence.
type Store interface {
	GraphStore
	RunStore
	PredictionStore
	Close() error
}

// GraphStore defines operations for persisting co-occurrence graphs.
type GraphStore interface {
	// SaveGraph persists the graph under its name, replacing any prior
	// contents stored under that name.
	SaveGraph(ctx context.Context, g *graph.Graph) error

	// LoadGraph restores a graph by name.
	LoadGraph(ctx context.Context, name string) (*graph.Graph, error)

	// ListGraphs lists stored graphs with their sizes.
	ListGraphs(ctx context.Context) ([]GraphInfo, error)
}

// RunStore defines operations for persisting validation runs.
type RunStore interface {
	// SaveRun records one validation run.
	SaveRun(ctx context.Context, run *Run) error

	// ListRuns lists runs of a graph, newest first.
	ListRuns(ctx context.Context, graphName string) ([]Run, error)
}

// PredictionStore defines operations for the prediction history.
type PredictionStore interface {
	// SavePredictions appends the ranked candidate edges of one
	// prediction run.
	SavePredictions(ctx context.Context, rows []PredictionRow) error

	// ListPredictions lists the stored history of a graph, newest first.
	ListPredictions(ctx context.Context, graphName string) ([]PredictionRow, error)
}

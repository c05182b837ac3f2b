package storage

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"litkg/internal/graph"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "litkg.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteStore_GraphRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	g := graph.NewGraph("neuro")
	g.AddEdge("neuron", "cortex")
	g.AddEdge("neuron", "cortex")
	g.AddPredicted("cortex", "synapse", 0.42)
	g.AddNode("isolated")

	require.NoError(t, s.SaveGraph(ctx, g))

	loaded, err := s.LoadGraph(ctx, "neuro")
	require.NoError(t, err)
	assert.Equal(t, g.Nodes(), loaded.Nodes())
	assert.Equal(t, g.Edges(), loaded.Edges())

	w, ok := loaded.Weight("neuron", "cortex")
	require.True(t, ok)
	assert.Equal(t, 2.0, w)
	assert.Equal(t, graph.OriginPredicted, loaded.EdgeBetween("cortex", "synapse").Origin)

	t.Run("resave replaces prior contents", func(t *testing.T) {
		smaller := graph.NewGraph("neuro")
		smaller.AddEdge("neuron", "cortex")
		require.NoError(t, s.SaveGraph(ctx, smaller))

		loaded, err := s.LoadGraph(ctx, "neuro")
		require.NoError(t, err)
		assert.Equal(t, 2, loaded.NodeCount())
		assert.Equal(t, 1, loaded.EdgeCount())
	})

	t.Run("unknown name", func(t *testing.T) {
		_, err := s.LoadGraph(ctx, "nope")
		assert.ErrorIs(t, err, ErrGraphNotFound)
	})

	t.Run("unnamed graph is rejected", func(t *testing.T) {
		assert.Error(t, s.SaveGraph(ctx, graph.NewGraph("")))
	})
}

func TestSQLiteStore_ListGraphs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"beta", "alpha"} {
		g := graph.NewGraph(name)
		g.AddEdge("neuron", "cortex")
		require.NoError(t, s.SaveGraph(ctx, g))
	}

	infos, err := s.ListGraphs(ctx)
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, "alpha", infos[0].Name)
	assert.Equal(t, 2, infos[0].Nodes)
	assert.Equal(t, 1, infos[0].Edges)
	assert.False(t, infos[0].UpdatedAt.IsZero())
}

func TestSQLiteStore_Runs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	report, _ := json.Marshal(map[string]any{"total_nodes": 3, "precision": 0.667})
	run := &Run{
		GraphName:    "neuro",
		TotalNodes:   3,
		ValidNodes:   2,
		InvalidNodes: 1,
		Precision:    0.667,
		Report:       report,
	}
	require.NoError(t, s.SaveRun(ctx, run))
	assert.NotEmpty(t, run.ID, "an id is assigned on save")

	runs, err := s.ListRuns(ctx, "neuro")
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, run.ID, runs[0].ID)
	assert.Equal(t, 0.667, runs[0].Precision)
	assert.JSONEq(t, string(report), string(runs[0].Report))

	empty, err := s.ListRuns(ctx, "other")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestSQLiteStore_Predictions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rows := []PredictionRow{
		{GraphName: "neuro", Strategy: "common_neighbors", Source: "neuron", Target: "brain", Score: 3},
		{GraphName: "neuro", Strategy: "common_neighbors", Source: "cortex", Target: "synapse", Score: 1},
	}
	require.NoError(t, s.SavePredictions(ctx, rows))
	require.NoError(t, s.SavePredictions(ctx, nil))

	stored, err := s.ListPredictions(ctx, "neuro")
	require.NoError(t, err)
	require.Len(t, stored, 2)
	for _, row := range stored {
		assert.Equal(t, "common_neighbors", row.Strategy)
		assert.False(t, row.CreatedAt.IsZero())
	}
}

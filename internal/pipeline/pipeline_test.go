package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"litkg/internal/config"
	"litkg/internal/graph"
	"litkg/internal/ontology"
	"litkg/internal/storage"
)

const testOWL = `<?xml version="1.0"?>
<rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#"
         xmlns:rdfs="http://www.w3.org/2000/01/rdf-schema#"
         xmlns:owl="http://www.w3.org/2002/07/owl#">
  <owl:Class rdf:about="http://example.org/onto#Neuron">
    <rdfs:label>neuron</rdfs:label>
    <rdfs:subClassOf rdf:resource="http://example.org/onto#Cell"/>
  </owl:Class>
  <owl:Class rdf:about="http://example.org/onto#Glia">
    <rdfs:label>glia</rdfs:label>
    <rdfs:subClassOf rdf:resource="http://example.org/onto#Cell"/>
  </owl:Class>
</rdf:RDF>`

const testRecords = `[
  {"text": "t1", "text_sha256": "a", "entities": [
    {"entity_id": "1", "entity_type": "cell", "entity": "Neuron"},
    {"entity_id": "2", "entity_type": "cell", "entity": "Glia"},
    {"entity_id": "3", "entity_type": "thing", "entity": "Asdfhjkl"}
  ]},
  {"text": "no entities here", "text_sha256": "b"}
]`

func testFixtures(t *testing.T) (cfg *config.Config, records, owl string) {
	t.Helper()
	dir := t.TempDir()

	records = filepath.Join(dir, "records.json")
	require.NoError(t, os.WriteFile(records, []byte(testRecords), 0644))

	owl = filepath.Join(dir, "neuro.owl")
	require.NoError(t, os.WriteFile(owl, []byte(testOWL), 0644))

	cfg = config.DefaultConfig()
	cfg.Cache.Dir = filepath.Join(dir, "cache")
	return cfg, records, owl
}

func TestRunner_Run(t *testing.T) {
	cfg, records, owl := testFixtures(t)

	store, err := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "litkg.db"))
	require.NoError(t, err)
	defer store.Close()

	runner := NewRunner(cfg, store, nil)
	ctx := context.Background()

	result, err := runner.Run(ctx, RunOptions{
		RecordsPath:    records,
		GraphName:      "neuro",
		Predict:        true,
		Strategy:       "common_neighbors",
		TopK:           5,
		MergePredicted: true,
		Sources:        []ontology.SourceRef{{Name: "test", URL: owl}},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Stats.Records)
	assert.Equal(t, 1, result.Stats.Skipped)
	assert.Equal(t, 3, result.Graph.NodeCount())
	assert.Equal(t, 3, result.Graph.EdgeCount())

	require.NotNil(t, result.Report)
	assert.Equal(t, 2, result.Report.ValidNodes)
	assert.Equal(t, 1, result.Report.InvalidNodes)
	require.NotNil(t, result.Report.EdgeReport, "ontology was loaded")
	assert.NotEmpty(t, result.RunID)

	t.Run("graph and run are persisted", func(t *testing.T) {
		loaded, err := store.LoadGraph(ctx, "neuro")
		require.NoError(t, err)
		assert.Equal(t, 3, loaded.NodeCount())

		runs, err := store.ListRuns(ctx, "neuro-extended")
		require.NoError(t, err)
		require.Len(t, runs, 1)
		assert.Equal(t, result.RunID, runs[0].ID)
	})

	t.Run("predicted merge validated instead of the base graph", func(t *testing.T) {
		require.NotNil(t, result.Extended)
		assert.Equal(t, "neuro-extended", result.Extended.Name)
	})
}

func TestRunner_Run_NoOntology(t *testing.T) {
	cfg, records, _ := testFixtures(t)
	runner := NewRunner(cfg, nil, nil)

	result, err := runner.Run(context.Background(), RunOptions{RecordsPath: records, GraphName: "neuro"})
	require.NoError(t, err)
	assert.Nil(t, result.Report.EdgeReport, "no sources configured, edge report absent")
	assert.Equal(t, 3, result.Report.InvalidNodes, "empty vocabulary validates nothing")
}

func TestRunner_Benchmark(t *testing.T) {
	cfg, _, owl := testFixtures(t)
	runner := NewRunner(cfg, nil, nil)

	g := graph.NewGraph("bench")
	g.AddEdge("neuron", "glia")
	g.AddNode("asdfhjkl")

	rows, err := runner.Benchmark(context.Background(), g, []ontology.SourceRef{
		{Name: "neuro", URL: owl},
		{Name: "missing", URL: filepath.Join(t.TempDir(), "absent.owl")},
	})
	require.NoError(t, err)
	require.Len(t, rows, 2, "one row per source, failures included")

	assert.Equal(t, "neuro", rows[0].Source)
	assert.Empty(t, rows[0].Error)
	assert.Equal(t, 2, rows[0].ValidNodes)
	assert.Equal(t, 1, rows[0].InvalidNodes)
	assert.Equal(t, 1, rows[0].StrongRels, "siblings two hops apart are strong")
	assert.Equal(t, 2.0, rows[0].AvgDistance)

	assert.Equal(t, "missing", rows[1].Source)
	assert.NotEmpty(t, rows[1].Error)
	assert.Equal(t, 0, rows[1].ValidNodes)
}

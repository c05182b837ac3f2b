package ontology

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleOWL = `<?xml version="1.0"?>
<rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#"
         xmlns:rdfs="http://www.w3.org/2000/01/rdf-schema#"
         xmlns:owl="http://www.w3.org/2002/07/owl#"
         xmlns:oboInOwl="http://www.geneontology.org/formats/oboInOwl#">
  <owl:Class rdf:about="http://example.org/onto#Neuron">
    <rdfs:label>neuron</rdfs:label>
    <oboInOwl:hasExactSynonym>nerve cell</oboInOwl:hasExactSynonym>
    <rdfs:subClassOf rdf:resource="http://example.org/onto#Cell"/>
    <rdfs:comment>An electrically excitable cell.</rdfs:comment>
  </owl:Class>
  <owl:Class rdf:about="http://example.org/onto#Cortex">
    <rdfs:label>cortex</rdfs:label>
    <rdfs:subClassOf rdf:resource="http://example.org/onto#BrainRegion"/>
  </owl:Class>
</rdf:RDF>`

func parseSample(t *testing.T) *Source {
	t.Helper()
	concepts, err := ParseOWL(strings.NewReader(sampleOWL))
	require.NoError(t, err)
	return &Source{Name: "sample", Concepts: concepts}
}

func TestParseOWL(t *testing.T) {
	src := parseSample(t)
	require.Len(t, src.Concepts, 2)

	neuron := src.Concepts[0]
	assert.Equal(t, "http://example.org/onto#Neuron", neuron.IRI)
	assert.Equal(t, "Neuron", neuron.Name)
	assert.Contains(t, neuron.Labels, "neuron")
	assert.Contains(t, neuron.Labels, "nerve cell")
	assert.Equal(t, []string{"http://example.org/onto#Cell"}, neuron.ParentIRIs)
	assert.Equal(t, "An electrically excitable cell.", neuron.Description)
}

func TestIndex_AddSource(t *testing.T) {
	idx := NewIndex()
	idx.AddSource(parseSample(t))

	t.Run("every concept appears under its labels", func(t *testing.T) {
		require.Len(t, idx.ConceptsByLabel("neuron"), 1)
		require.Len(t, idx.ConceptsByLabel("nerve cell"), 1)
		assert.Same(t, idx.ConceptsByLabel("neuron")[0], idx.ConceptsByLabel("nerve cell")[0])
		assert.True(t, idx.HasLabel("Cortex"), "lookup is normalized")
	})

	t.Run("undeclared parents become placeholders", func(t *testing.T) {
		cell := idx.ByIRI("http://example.org/onto#Cell")
		require.NotNil(t, cell)
		assert.True(t, cell.Placeholder)
		assert.Equal(t, "Cell", cell.Name)
		assert.True(t, idx.HasLabel("cell"), "placeholders index under their fragment")

		neuron := idx.ConceptsByLabel("neuron")[0]
		require.Len(t, neuron.Parents, 1)
		assert.Same(t, cell, neuron.Parents[0])
	})

	t.Run("second source merges additively", func(t *testing.T) {
		second := &Source{Name: "second", Concepts: []*Concept{
			{
				IRI:    "http://example.org/onto#Cell",
				Name:   "Cell",
				Labels: []string{"cell", "cellula"},
			},
			{
				IRI:    "http://example.org/onto#Neuron",
				Labels: []string{"neurone"},
			},
		}}
		idx.AddSource(second)

		cell := idx.ByIRI("http://example.org/onto#Cell")
		assert.False(t, cell.Placeholder, "declaring source promotes the placeholder")
		assert.True(t, idx.HasLabel("cellula"))

		neuron := idx.ConceptsByLabel("neurone")
		require.Len(t, neuron, 1)
		assert.Same(t, idx.ConceptsByLabel("neuron")[0], neuron[0], "IRI merge across sources")
		assert.Equal(t, 2, idx.SourceCount())
	})
}

func TestIndex_Search(t *testing.T) {
	idx := NewIndex()
	idx.AddSource(parseSample(t))

	t.Run("label equality wins", func(t *testing.T) {
		c := idx.Search("Neuron")
		require.NotNil(t, c)
		assert.Equal(t, "http://example.org/onto#Neuron", c.IRI)
	})

	t.Run("falls back to IRI substring", func(t *testing.T) {
		c := idx.Search("onto#cortex")
		require.NotNil(t, c)
		assert.Equal(t, "http://example.org/onto#Cortex", c.IRI)
	})

	t.Run("miss returns nil", func(t *testing.T) {
		assert.Nil(t, idx.Search("astrocyte"))
		assert.Nil(t, idx.Search("   "))
	})
}

func TestIndex_AllLabels(t *testing.T) {
	idx := NewIndex()
	assert.Empty(t, idx.AllLabels())

	idx.AddSource(parseSample(t))
	labels := idx.AllLabels()
	assert.Equal(t, idx.VocabularySize(), len(labels))
	assert.Contains(t, labels, "neuron")
	assert.Contains(t, labels, "nerve cell")
	assert.IsIncreasing(t, labels)
}

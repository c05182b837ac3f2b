package ontology

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testHierarchy builds: entity ← cell ← {neuron, glia}; entity ← structure
// ← cortex; island has no parents.
func testHierarchy() map[string]*Concept {
	entity := &Concept{IRI: "ex#entity", Name: "entity"}
	cell := &Concept{IRI: "ex#cell", Name: "cell", Parents: []*Concept{entity}}
	structure := &Concept{IRI: "ex#structure", Name: "structure", Parents: []*Concept{entity}}
	return map[string]*Concept{
		"entity":    entity,
		"cell":      cell,
		"structure": structure,
		"neuron":    {IRI: "ex#neuron", Name: "neuron", Parents: []*Concept{cell}},
		"glia":      {IRI: "ex#glia", Name: "glia", Parents: []*Concept{cell}},
		"cortex":    {IRI: "ex#cortex", Name: "cortex", Parents: []*Concept{structure}},
		"island":    {IRI: "ex#island", Name: "island"},
	}
}

func TestDistances_Distance(t *testing.T) {
	h := testHierarchy()
	d := NewDistances()

	t.Run("identical concept is zero", func(t *testing.T) {
		hops, ok := d.Distance(h["neuron"], h["neuron"])
		require.True(t, ok)
		assert.Equal(t, 0, hops)
	})

	t.Run("siblings meet at their parent", func(t *testing.T) {
		hops, ok := d.Distance(h["neuron"], h["glia"])
		require.True(t, ok)
		assert.Equal(t, 2, hops)
	})

	t.Run("cousins meet at the root", func(t *testing.T) {
		hops, ok := d.Distance(h["neuron"], h["cortex"])
		require.True(t, ok)
		assert.Equal(t, 4, hops)
	})

	t.Run("ancestor and descendant", func(t *testing.T) {
		hops, ok := d.Distance(h["neuron"], h["cell"])
		require.True(t, ok)
		assert.Equal(t, 1, hops)
	})

	t.Run("symmetry", func(t *testing.T) {
		ab, okAB := d.Distance(h["glia"], h["cortex"])
		ba, okBA := d.Distance(h["cortex"], h["glia"])
		assert.Equal(t, okAB, okBA)
		assert.Equal(t, ab, ba)
	})

	t.Run("no common ancestor", func(t *testing.T) {
		_, ok := d.Distance(h["island"], h["neuron"])
		assert.False(t, ok)

		// The negative outcome is memoized too.
		_, ok = d.Distance(h["neuron"], h["island"])
		assert.False(t, ok)
	})
}

func TestDistances_CyclicHierarchyTerminates(t *testing.T) {
	a := &Concept{IRI: "ex#a", Name: "a"}
	b := &Concept{IRI: "ex#b", Name: "b"}
	a.Parents = []*Concept{b}
	b.Parents = []*Concept{a}

	d := NewDistances()
	hops, ok := d.Distance(a, b)
	require.True(t, ok)
	assert.Equal(t, 1, hops)

	lone := &Concept{IRI: "ex#lone", Name: "lone"}
	_, ok = d.Distance(a, lone)
	assert.False(t, ok)
}

func TestDistances_AncestorMapIsMemoized(t *testing.T) {
	h := testHierarchy()
	d := NewDistances()

	first := d.ancestorHops(h["neuron"])
	second := d.ancestorHops(h["neuron"])
	assert.Equal(t, 3, len(first), "neuron, cell, entity")

	// Same map value, not a recomputation.
	first[h["island"]] = 99
	assert.Equal(t, 99, second[h["island"]])
}

// Package resolver maps free-text entity terms to ontology concepts through
// a layered fallback chain: exact label lookup, structural index search,
// then fuzzy matching with a margin-based acceptance rule.
package resolver

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"litkg/internal/corpus"
	"litkg/internal/match"
	"litkg/internal/ontology"
)

// Stage is one resolution strategy. A nil result means the stage passed on
// the term; a miss is not an error.
type Stage interface {
	Name() string
	Resolve(term string) *ontology.Concept
}

// Stats counts per-stage outcomes across a chain's lifetime.
type Stats struct {
	Attempted int
	Hits      map[string]int
	Misses    int
	MemoHits  int
}

// memoSize bounds the term-resolution memo. Concept space is fixed per
// load, but term space is open-ended, so this is the one bounded cache.
const memoSize = 4096

// Chain runs stages in order and memoizes the outcome per normalized term,
// misses included, so repeated graph nodes skip the vocabulary scan.
type Chain struct {
	stages []Stage
	memo   *lru.Cache[string, *ontology.Concept]
	stats  Stats
}

// NewChain builds the default three-stage chain over the index.
func NewChain(idx *ontology.Index, matcher *match.Matcher) *Chain {
	return NewChainWith(
		&labelStage{idx: idx},
		&searchStage{idx: idx},
		&fuzzyStage{idx: idx, matcher: matcher, MarginGap: 10, MarginRelax: 5},
	)
}

// NewChainWith builds a chain from explicit stages.
func NewChainWith(stages ...Stage) *Chain {
	memo, _ := lru.New[string, *ontology.Concept](memoSize)
	return &Chain{
		stages: stages,
		memo:   memo,
		stats:  Stats{Hits: make(map[string]int)},
	}
}

// Resolve maps the term to a concept, or nil when every stage misses.
func (c *Chain) Resolve(term string) *ontology.Concept {
	normalized := corpus.Normalize(term)
	if normalized == "" {
		return nil
	}

	if cached, ok := c.memo.Get(normalized); ok {
		c.stats.MemoHits++
		return cached
	}

	c.stats.Attempted++
	for _, stage := range c.stages {
		if concept := stage.Resolve(normalized); concept != nil {
			c.stats.Hits[stage.Name()]++
			c.memo.Add(normalized, concept)
			return concept
		}
	}

	c.stats.Misses++
	c.memo.Add(normalized, nil)
	return nil
}

// Stats returns the chain's counters.
func (c *Chain) Stats() Stats {
	return c.stats
}

// labelStage resolves through the exact label index.
type labelStage struct {
	idx *ontology.Index
}

func (s *labelStage) Name() string { return "label" }

func (s *labelStage) Resolve(term string) *ontology.Concept {
	if concepts := s.idx.ConceptsByLabel(term); len(concepts) > 0 {
		return concepts[0]
	}
	return nil
}

// searchStage resolves through the index's structural search: label
// equality, then IRI substring.
type searchStage struct {
	idx *ontology.Index
}

func (s *searchStage) Name() string { return "search" }

func (s *searchStage) Resolve(term string) *ontology.Concept {
	return s.idx.Search(term)
}

// fuzzyStage resolves through best-match fuzzy search. Besides a plain
// cutoff hit, a best candidate that beats the runner-up by MarginGap while
// landing within MarginRelax below the cutoff is accepted too; the wide gap
// means there is no plausible competing reading of the term.
type fuzzyStage struct {
	idx     *ontology.Index
	matcher *match.Matcher

	MarginGap   float64
	MarginRelax float64
}

func (s *fuzzyStage) Name() string { return "fuzzy" }

func (s *fuzzyStage) Resolve(term string) *ontology.Concept {
	top := s.matcher.BestN(term, 2)
	if len(top) == 0 {
		return nil
	}

	cutoff := s.matcher.Cutoff(term)
	accepted := top[0].Score >= cutoff
	if !accepted && len(top) == 2 {
		accepted = top[0].Score-top[1].Score >= s.MarginGap &&
			top[0].Score >= cutoff-s.MarginRelax
	}
	if !accepted {
		return nil
	}

	if concepts := s.idx.ConceptsByLabel(top[0].Label); len(concepts) > 0 {
		return concepts[0]
	}
	return s.idx.Search(top[0].Label)
}

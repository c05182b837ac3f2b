// Package match implements exact and fuzzy lookup of entity terms against
// the loaded ontology vocabulary, with a cutoff that adapts to term length
// and vocabulary size.
package match

import (
	"sort"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"

	"litkg/internal/corpus"
)

// Status classifies a term lookup.
type Status string

const (
	StatusValid   Status = "valid"
	StatusInvalid Status = "invalid"
)

// Type records how a valid term was matched.
type Type string

const (
	TypeExact Type = "exact"
	TypeFuzzy Type = "fuzzy"
	TypeNone  Type = "none"
)

// Result is the outcome of one term lookup. Match and Score are only set
// for accepted matches; Score stays 0 for exact hits.
type Result struct {
	Status Status  `json:"status"`
	Type   Type    `json:"match_type"`
	Match  string  `json:"matched_label,omitempty"`
	Score  float64 `json:"fuzzy_score,omitempty"`
}

// Candidate is one scored vocabulary label.
type Candidate struct {
	Label string
	Score float64
}

// Vocabulary is the label universe the matcher searches. *ontology.Index
// satisfies it.
type Vocabulary interface {
	HasLabel(label string) bool
	AllLabels() []string
	VocabularySize() int
}

// Matcher performs exact-then-fuzzy term lookup with an adaptive cutoff.
type Matcher struct {
	vocab Vocabulary

	// Cutoff policy. Short terms collide with unrelated labels far too
	// easily, so they get a stricter bar; big vocabularies raise the odds
	// of an accidental near-miss, so the bar scales up slightly with size.
	BaseCutoff float64
	MinCutoff  float64
	MaxCutoff  float64
}

// NewMatcher creates a matcher with the default cutoff policy.
func NewMatcher(vocab Vocabulary) *Matcher {
	return &Matcher{
		vocab:      vocab,
		BaseCutoff: 85,
		MinCutoff:  50,
		MaxCutoff:  98,
	}
}

// Cutoff computes the minimum similarity an accepted fuzzy match needs for
// the given term, clamped to [MinCutoff, MaxCutoff].
func (m *Matcher) Cutoff(term string) float64 {
	cutoff := m.BaseCutoff

	length := utf8.RuneCountInString(term)
	switch {
	case length <= 3:
		cutoff += 10
	case length <= 6:
		cutoff += 5
	}
	if length >= 20 {
		cutoff -= 10
	}

	switch size := m.vocab.VocabularySize(); {
	case size > 10000:
		cutoff += 5
	case size > 1000:
		cutoff += 2
	}

	return clamp(cutoff, m.MinCutoff, m.MaxCutoff)
}

// Similarity scores two strings in [0,100] as normalized edit similarity:
// 100 × (1 − d/(|a|+|b|)) over runes. Two empty strings are identical.
func Similarity(a, b string) float64 {
	la := utf8.RuneCountInString(a)
	lb := utf8.RuneCountInString(b)
	if la+lb == 0 {
		return 100
	}
	d := levenshtein.ComputeDistance(a, b)
	return 100 * (1 - float64(d)/float64(la+lb))
}

// Match looks the term up in the vocabulary: exact hit first, then the best
// fuzzy candidate against the adaptive cutoff.
func (m *Matcher) Match(term string) Result {
	normalized := corpus.Normalize(term)
	if normalized == "" {
		return Result{Status: StatusInvalid, Type: TypeNone}
	}
	if m.vocab.HasLabel(normalized) {
		return Result{Status: StatusValid, Type: TypeExact, Match: normalized}
	}

	best := m.BestN(normalized, 1)
	if len(best) == 0 || best[0].Score < m.Cutoff(normalized) {
		return Result{Status: StatusInvalid, Type: TypeNone}
	}
	return Result{
		Status: StatusValid,
		Type:   TypeFuzzy,
		Match:  best[0].Label,
		Score:  best[0].Score,
	}
}

// BestN scans the whole vocabulary and returns the n highest-scoring labels,
// best first. Ties keep the vocabulary's sorted label order.
func (m *Matcher) BestN(term string, n int) []Candidate {
	if n <= 0 {
		return nil
	}
	normalized := corpus.Normalize(term)
	if normalized == "" {
		return nil
	}

	candidates := make([]Candidate, 0, len(m.vocab.AllLabels()))
	for _, label := range m.vocab.AllLabels() {
		candidates = append(candidates, Candidate{Label: label, Score: Similarity(normalized, label)})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	if len(candidates) > n {
		candidates = candidates[:n]
	}
	return candidates
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

package ontology

import (
	"sort"
	"strings"

	"litkg/internal/corpus"
)

// Index is the merged view over all loaded ontology sources. It owns the
// shared label index used for exact lookup and fuzzy vocabulary scans.
type Index struct {
	byIRI   map[string]*Concept
	byLabel map[string][]*Concept
	sources []*Source

	labelList   []string
	labelsDirty bool
}

// NewIndex creates an empty index.
func NewIndex() *Index {
	return &Index{
		byIRI:   make(map[string]*Concept),
		byLabel: make(map[string][]*Concept),
	}
}

// AddSource merges a parsed source into the index. Concepts sharing an IRI
// across sources are unified; their label sets are combined additively.
// Parent IRIs never declared as classes become placeholder concepts indexed
// under their IRI fragment.
func (idx *Index) AddSource(src *Source) {
	if src == nil {
		return
	}
	merged := make([]*Concept, 0, len(src.Concepts))
	for _, c := range src.Concepts {
		if c == nil || c.IRI == "" {
			continue
		}
		merged = append(merged, idx.mergeConcept(c))
	}

	// Link is-a parents after every class of the source is registered.
	for _, c := range merged {
		idx.linkParents(c)
	}

	idx.sources = append(idx.sources, &Source{
		Name:     src.Name,
		URL:      src.URL,
		Path:     src.Path,
		Concepts: merged,
	})
}

func (idx *Index) mergeConcept(c *Concept) *Concept {
	existing, ok := idx.byIRI[c.IRI]
	if !ok {
		registered := &Concept{
			IRI:         c.IRI,
			Name:        c.Name,
			Labels:      append([]string(nil), c.Labels...),
			Description: c.Description,
			ParentIRIs:  append([]string(nil), c.ParentIRIs...),
		}
		if registered.Name == "" {
			registered.Name = FragmentOf(c.IRI)
		}
		idx.byIRI[c.IRI] = registered
		idx.indexLabel(registered.Name, registered)
		for _, l := range registered.Labels {
			idx.indexLabel(l, registered)
		}
		return registered
	}

	// A placeholder seen earlier is promoted by the declaring source.
	existing.Placeholder = false
	if existing.Description == "" {
		existing.Description = c.Description
	}
	for _, l := range c.Labels {
		if !containsString(existing.Labels, l) {
			existing.Labels = append(existing.Labels, l)
			idx.indexLabel(l, existing)
		}
	}
	for _, p := range c.ParentIRIs {
		if !containsString(existing.ParentIRIs, p) {
			existing.ParentIRIs = append(existing.ParentIRIs, p)
		}
	}
	return existing
}

func (idx *Index) linkParents(c *Concept) {
	for _, iri := range c.ParentIRIs {
		parent, ok := idx.byIRI[iri]
		if !ok {
			parent = &Concept{IRI: iri, Name: FragmentOf(iri), Placeholder: true}
			idx.byIRI[iri] = parent
			idx.indexLabel(parent.Name, parent)
		}
		if !containsConcept(c.Parents, parent) {
			c.Parents = append(c.Parents, parent)
		}
	}
}

func (idx *Index) indexLabel(label string, c *Concept) {
	key := corpus.Normalize(label)
	if key == "" {
		return
	}
	if _, ok := idx.byLabel[key]; !ok {
		idx.labelsDirty = true
	}
	if !containsConcept(idx.byLabel[key], c) {
		idx.byLabel[key] = append(idx.byLabel[key], c)
	}
}

// ConceptsByLabel returns the concepts indexed under the normalized label,
// in registration order.
func (idx *Index) ConceptsByLabel(label string) []*Concept {
	return idx.byLabel[corpus.Normalize(label)]
}

// ByIRI returns the concept with the exact IRI, or nil.
func (idx *Index) ByIRI(iri string) *Concept {
	return idx.byIRI[iri]
}

// HasLabel reports whether the normalized label is in the vocabulary.
func (idx *Index) HasLabel(label string) bool {
	_, ok := idx.byLabel[corpus.Normalize(label)]
	return ok
}

// Search finds a concept by normalized label equality first, then by
// case-insensitive IRI substring. IRIs are scanned in sorted order so ties
// resolve the same way every run.
func (idx *Index) Search(term string) *Concept {
	if cs := idx.ConceptsByLabel(term); len(cs) > 0 {
		return cs[0]
	}

	needle := strings.ToLower(strings.TrimSpace(term))
	if needle == "" {
		return nil
	}
	iris := make([]string, 0, len(idx.byIRI))
	for iri := range idx.byIRI {
		iris = append(iris, iri)
	}
	sort.Strings(iris)
	for _, iri := range iris {
		if strings.Contains(strings.ToLower(iri), needle) {
			return idx.byIRI[iri]
		}
	}
	return nil
}

// AllLabels returns the sorted normalized vocabulary.
func (idx *Index) AllLabels() []string {
	if idx.labelsDirty || idx.labelList == nil {
		idx.labelList = make([]string, 0, len(idx.byLabel))
		for l := range idx.byLabel {
			idx.labelList = append(idx.labelList, l)
		}
		sort.Strings(idx.labelList)
		idx.labelsDirty = false
	}
	return idx.labelList
}

// VocabularySize returns the number of distinct normalized labels.
func (idx *Index) VocabularySize() int {
	return len(idx.byLabel)
}

// SourceCount returns how many sources merged successfully.
func (idx *Index) SourceCount() int {
	return len(idx.sources)
}

// Sources returns the merged sources in load order.
func (idx *Index) Sources() []*Source {
	return idx.sources
}

// ConceptCount returns the number of distinct concepts, placeholders
// included.
func (idx *Index) ConceptCount() int {
	return len(idx.byIRI)
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func containsConcept(list []*Concept, c *Concept) bool {
	for _, v := range list {
		if v == c {
			return true
		}
	}
	return false
}

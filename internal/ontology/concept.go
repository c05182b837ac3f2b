package ontology

import "strings"

// Concept is one ontology class together with the labels it is known by.
// Concepts are immutable once their source has been merged into an Index.
type Concept struct {
	IRI         string
	Name        string
	Labels      []string
	Description string

	// ParentIRIs holds the declared is-a superclass IRIs from the source
	// document. Parents is the linked form, filled during index merge.
	ParentIRIs []string
	Parents    []*Concept

	// Placeholder concepts stand in for parent IRIs that were referenced
	// but never declared as classes.
	Placeholder bool
}

// Source is one parsed ontology document.
type Source struct {
	Name     string
	URL      string
	Path     string
	Concepts []*Concept
}

// FragmentOf extracts the local name of an IRI: the part after '#', or
// after the last '/'.
func FragmentOf(iri string) string {
	if i := strings.LastIndex(iri, "#"); i >= 0 {
		return iri[i+1:]
	}
	if i := strings.LastIndex(iri, "/"); i >= 0 {
		return iri[i+1:]
	}
	return iri
}

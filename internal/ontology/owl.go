package ontology

import (
	"encoding/xml"
	"io"
	"strings"
)

const (
	nsRDF  = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	nsRDFS = "http://www.w3.org/2000/01/rdf-schema#"
	nsOWL  = "http://www.w3.org/2002/07/owl#"
	nsSKOS = "http://www.w3.org/2004/02/skos/core#"
	nsOBO  = "http://www.geneontology.org/formats/oboInOwl#"
	nsPURL = "http://purl.obolibrary.org/obo/"
)

type rdfResource struct {
	Resource string `xml:"http://www.w3.org/1999/02/22-rdf-syntax-ns# resource,attr"`
}

// rdfClass captures the subset of a class description this engine uses.
// Unmapped children (restrictions, axiom annotations) are ignored by the
// decoder.
type rdfClass struct {
	About       string        `xml:"http://www.w3.org/1999/02/22-rdf-syntax-ns# about,attr"`
	Types       []rdfResource `xml:"http://www.w3.org/1999/02/22-rdf-syntax-ns# type"`
	Labels      []string      `xml:"http://www.w3.org/2000/01/rdf-schema# label"`
	PrefLabels  []string      `xml:"http://www.w3.org/2004/02/skos/core# prefLabel"`
	AltLabels   []string      `xml:"http://www.w3.org/2004/02/skos/core# altLabel"`
	ExactSyns   []string      `xml:"http://www.geneontology.org/formats/oboInOwl# hasExactSynonym"`
	RelatedSyns []string      `xml:"http://www.geneontology.org/formats/oboInOwl# hasRelatedSynonym"`
	SubClassOf  []rdfResource `xml:"http://www.w3.org/2000/01/rdf-schema# subClassOf"`
	Definitions []string      `xml:"http://purl.obolibrary.org/obo/ IAO_0000115"`
	Comments    []string      `xml:"http://www.w3.org/2000/01/rdf-schema# comment"`
}

func (n *rdfClass) typedAsClass() bool {
	for _, t := range n.Types {
		if t.Resource == nsOWL+"Class" {
			return true
		}
	}
	return false
}

func (n *rdfClass) mergeInto(c *Concept) {
	for _, group := range [][]string{n.Labels, n.PrefLabels, n.ExactSyns, n.AltLabels, n.RelatedSyns} {
		for _, l := range group {
			l = strings.TrimSpace(l)
			if l == "" || containsString(c.Labels, l) {
				continue
			}
			c.Labels = append(c.Labels, l)
		}
	}
	for _, p := range n.SubClassOf {
		iri := strings.TrimSpace(p.Resource)
		if iri == "" || containsString(c.ParentIRIs, iri) {
			continue
		}
		c.ParentIRIs = append(c.ParentIRIs, iri)
	}
	if c.Description == "" {
		c.Description = firstNonEmpty(n.Definitions)
	}
	if c.Description == "" {
		c.Description = firstNonEmpty(n.Comments)
	}
}

// ParseOWL reads an RDF/XML ontology document and returns its classes in
// document order. Class descriptions split over several blocks are merged
// by IRI. Anything that is not an owl:Class, or an rdf:Description typed as
// one, is skipped.
func ParseOWL(r io.Reader) ([]*Concept, error) {
	dec := xml.NewDecoder(r)
	byIRI := make(map[string]*Concept)
	var order []*Concept

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		// Descend into the document root; everything below is handled
		// one node element at a time.
		if start.Name.Space == nsRDF && start.Name.Local == "RDF" {
			continue
		}

		isClass := start.Name.Space == nsOWL && start.Name.Local == "Class"
		isDescription := start.Name.Space == nsRDF && start.Name.Local == "Description"
		if !isClass && !isDescription {
			if err := dec.Skip(); err != nil {
				return nil, err
			}
			continue
		}

		var node rdfClass
		if err := dec.DecodeElement(&node, &start); err != nil {
			return nil, err
		}
		if node.About == "" {
			continue
		}
		if isDescription && !node.typedAsClass() {
			continue
		}

		concept := byIRI[node.About]
		if concept == nil {
			concept = &Concept{IRI: node.About, Name: FragmentOf(node.About)}
			byIRI[node.About] = concept
			order = append(order, concept)
		}
		node.mergeInto(concept)
	}

	return order, nil
}

func firstNonEmpty(values []string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}

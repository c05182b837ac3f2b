package ontology

import (
	"encoding/xml"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/knakk/rdf"
)

// ConvertTurtle rewrites a Turtle document as RDF/XML so the shared class
// parser can read it. The conversion is best-effort: triples involving blank
// nodes (restrictions, collection scaffolding) or predicates that cannot
// form an XML name are dropped rather than failing the whole document.
func ConvertTurtle(r io.Reader, w io.Writer) error {
	decoded, err := rdf.NewTripleDecoder(r, rdf.Turtle).DecodeAll()
	if err != nil {
		return fmt.Errorf("turtle: %w", err)
	}

	triples := make([]ttlTriple, 0, len(decoded))
	for _, t := range decoded {
		if t.Subj.Type() != rdf.TermIRI || t.Obj.Type() == rdf.TermBlank {
			continue
		}
		triples = append(triples, ttlTriple{
			Subject:   t.Subj.String(),
			Predicate: t.Pred.String(),
			Object:    ttlObject{IsIRI: t.Obj.Type() == rdf.TermIRI, Value: t.Obj.String()},
		})
	}
	return writeRDFXML(w, triples)
}

type ttlObject struct {
	IsIRI bool
	Value string
}

type ttlTriple struct {
	Subject   string
	Predicate string
	Object    ttlObject
}

var xmlLocalName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.-]*$`)

func splitPredicate(iri string) (ns, local string, ok bool) {
	cut := strings.LastIndex(iri, "#")
	if cut < 0 {
		cut = strings.LastIndex(iri, "/")
	}
	if cut < 0 || cut == len(iri)-1 {
		return "", "", false
	}
	ns, local = iri[:cut+1], iri[cut+1:]
	if !xmlLocalName.MatchString(local) {
		return "", "", false
	}
	return ns, local, true
}

func writeRDFXML(w io.Writer, triples []ttlTriple) error {
	wellKnown := map[string]string{
		nsRDF:  "rdf",
		nsRDFS: "rdfs",
		nsOWL:  "owl",
		nsSKOS: "skos",
		nsOBO:  "oboInOwl",
		nsPURL: "obo",
	}

	prefixes := map[string]string{nsRDF: "rdf"}
	var nsOrder []string
	nsOrder = append(nsOrder, nsRDF)
	nextGenerated := 1

	type emitTriple struct {
		qname string
		obj   ttlObject
	}
	subjects := []string{}
	bySubject := map[string][]emitTriple{}

	for _, t := range triples {
		ns, local, ok := splitPredicate(t.Predicate)
		if !ok {
			continue
		}
		prefix, known := prefixes[ns]
		if !known {
			if wk, isWK := wellKnown[ns]; isWK {
				prefix = wk
			} else {
				prefix = fmt.Sprintf("ns%d", nextGenerated)
				nextGenerated++
			}
			prefixes[ns] = prefix
			nsOrder = append(nsOrder, ns)
		}
		if _, seen := bySubject[t.Subject]; !seen {
			subjects = append(subjects, t.Subject)
		}
		bySubject[t.Subject] = append(bySubject[t.Subject], emitTriple{qname: prefix + ":" + local, obj: t.Object})
	}

	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")

	rootAttrs := make([]xml.Attr, 0, len(nsOrder))
	for _, ns := range nsOrder {
		rootAttrs = append(rootAttrs, xml.Attr{Name: xml.Name{Local: "xmlns:" + prefixes[ns]}, Value: ns})
	}
	root := xml.StartElement{Name: xml.Name{Local: "rdf:RDF"}, Attr: rootAttrs}
	if err := enc.EncodeToken(root); err != nil {
		return err
	}

	for _, subject := range subjects {
		desc := xml.StartElement{
			Name: xml.Name{Local: "rdf:Description"},
			Attr: []xml.Attr{{Name: xml.Name{Local: "rdf:about"}, Value: subject}},
		}
		if err := enc.EncodeToken(desc); err != nil {
			return err
		}
		for _, t := range bySubject[subject] {
			el := xml.StartElement{Name: xml.Name{Local: t.qname}}
			if t.obj.IsIRI {
				el.Attr = []xml.Attr{{Name: xml.Name{Local: "rdf:resource"}, Value: t.obj.Value}}
				if err := enc.EncodeToken(el); err != nil {
					return err
				}
			} else {
				if err := enc.EncodeToken(el); err != nil {
					return err
				}
				if err := enc.EncodeToken(xml.CharData(t.obj.Value)); err != nil {
					return err
				}
			}
			if err := enc.EncodeToken(xml.EndElement{Name: el.Name}); err != nil {
				return err
			}
		}
		if err := enc.EncodeToken(xml.EndElement{Name: desc.Name}); err != nil {
			return err
		}
	}

	if err := enc.EncodeToken(xml.EndElement{Name: root.Name}); err != nil {
		return err
	}
	return enc.Flush()
}

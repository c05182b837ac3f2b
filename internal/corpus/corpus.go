package corpus

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Entity is one mention extracted from a text span by the upstream NER stage.
type Entity struct {
	EntityID   string   `json:"entity_id"`
	OtherIDs   []string `json:"other_ids,omitempty"`
	EntityType string   `json:"entity_type"`
	Name       string   `json:"entity"`
}

// Record pairs a source text with the entities recognized in it. Records
// without entities are legal; they carry provenance only.
type Record struct {
	Entities   []Entity `json:"entities,omitempty"`
	Text       string   `json:"text"`
	TextSHA256 string   `json:"text_sha256"`
}

// EntityNames returns the normalized entity strings of the record, in order,
// duplicates included.
func (r Record) EntityNames() []string {
	if len(r.Entities) == 0 {
		return nil
	}
	names := make([]string, 0, len(r.Entities))
	for _, e := range r.Entities {
		names = append(names, Normalize(e.Name))
	}
	return names
}

// Normalize maps an entity string to its canonical graph identity:
// diacritics folded, lower-cased, surrounding whitespace removed.
func Normalize(term string) string {
	folded, _, err := transform.String(foldTransformer(), term)
	if err != nil {
		folded = term
	}
	return strings.ToLower(strings.TrimSpace(folded))
}

// foldTransformer decomposes and drops combining marks. Built per call;
// chained transformers carry state and are not safe to share.
func foldTransformer() transform.Transformer {
	return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}

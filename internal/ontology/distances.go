package ontology

// Distances computes taxonomic distance between concepts through shared
// is-a ancestors. Both caches are append-only and live as long as the
// calculator; concept-pair space is bounded by the loaded ontologies, so
// nothing is ever evicted.
type Distances struct {
	ancestors map[*Concept]map[*Concept]int
	pairs     map[[2]string]int
}

// disconnected marks a cached pair with no common ancestor.
const disconnected = -1

// NewDistances creates a calculator with empty caches.
func NewDistances() *Distances {
	return &Distances{
		ancestors: make(map[*Concept]map[*Concept]int),
		pairs:     make(map[[2]string]int),
	}
}

// Distance returns the minimum hop count between the two concepts through a
// common is-a ancestor, and whether such an ancestor exists. Identical
// concepts are at distance 0.
func (d *Distances) Distance(a, b *Concept) (int, bool) {
	if a == nil || b == nil {
		return 0, false
	}
	if a == b || a.IRI == b.IRI {
		return 0, true
	}

	key := pairIRIs(a.IRI, b.IRI)
	if hops, ok := d.pairs[key]; ok {
		if hops == disconnected {
			return 0, false
		}
		return hops, true
	}

	fromA := d.ancestorHops(a)
	fromB := d.ancestorHops(b)

	best := disconnected
	for ancestor, ha := range fromA {
		hb, shared := fromB[ancestor]
		if !shared {
			continue
		}
		if best == disconnected || ha+hb < best {
			best = ha + hb
		}
	}

	d.pairs[key] = best
	if best == disconnected {
		return 0, false
	}
	return best, true
}

// ancestorHops returns the memoized map of every ancestor of c (c included
// at hop 0) to its minimum is-a hop count. Breadth-first, so the first
// visit of an ancestor is already at its minimum depth; visited tracking
// keeps cyclic hierarchies from looping.
func (d *Distances) ancestorHops(c *Concept) map[*Concept]int {
	if hops, ok := d.ancestors[c]; ok {
		return hops
	}

	hops := map[*Concept]int{c: 0}
	queue := []*Concept{c}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, parent := range current.Parents {
			if parent == nil {
				continue
			}
			if _, seen := hops[parent]; seen {
				continue
			}
			hops[parent] = hops[current] + 1
			queue = append(queue, parent)
		}
	}

	d.ancestors[c] = hops
	return hops
}

// pairIRIs orders the two identifiers so both argument orders hit the same
// cache entry.
func pairIRIs(a, b string) [2]string {
	if a > b {
		a, b = b, a
	}
	return [2]string{a, b}
}

package corpus

import "sort"

// buildIndices builds all four attribute indexes by stable-sorting
// [0..N) against each attribute's Id. Stability preserves corpus order
// within equal-value runs, which the set algebra (internal/set) relies on
// to treat an Indexed slice as if it were sorted by Pos.
func (c *Corpus) buildIndices() {
	n := len(c.tokens)
	for a := attrIndex(0); a < numAttrs; a++ {
		idx := make([]Pos, n)
		for i := range idx {
			idx[i] = Pos(i)
		}
		attr := a
		sort.SliceStable(idx, func(i, j int) bool {
			return c.tokens[idx[i]].attrId(attr) < c.tokens[idx[j]].attrId(attr)
		})
		c.indexes[a] = idx
	}
}

// IndexLookup returns the maximal contiguous sub-range of the attribute
// index for attr whose tokens carry value id. The returned slice borrows
// directly into the corpus's attribute index; callers must not retain it
// past the corpus's lifetime.
func (c *Corpus) IndexLookup(attr Attr, id Id) ([]Pos, bool) {
	a, ok := attrIndexOf(attr)
	if !ok {
		return nil, false
	}
	idx := c.indexes[a]
	lower := sort.Search(len(idx), func(i int) bool {
		return c.tokens[idx[i]].attrId(a) >= id
	})
	upper := sort.Search(len(idx), func(i int) bool {
		return c.tokens[idx[i]].attrId(a) > id
	})
	return idx[lower:upper], true
}

// Package set implements the three concrete position-set shapes (Dense,
// Indexed, Explicit), the MatchSet complement wrapper, and the size-aware
// algebra of intersection and difference between every pair of shapes.
package set

import "github.com/corpusql/corpusql/internal/corpus"

// Pos is re-exported for callers that only import this package.
type Pos = corpus.Pos

// GallopThreshold (T) governs the intersection/difference dispatch: when
// one operand is at least this many times larger than the other, the
// galloping/binary-search variant is used instead of the linear merge.
// Treated as configuration — see pkg/config.SetConfig.
var GallopThreshold = 10

// Dense is an inclusive range [First, Last] of positions, used for the
// universe and for contiguous intervals. An empty Dense has First > Last;
// implementations must never rely on the degenerate {0,0} encoding.
type Dense struct {
	First, Last Pos
}

// Empty reports whether d represents the empty set.
func (d Dense) Empty() bool { return d.First > d.Last }

// Len returns the number of positions in d, or 0 if empty.
func (d Dense) Len() int {
	if d.Empty() {
		return 0
	}
	return int(d.Last - d.First + 1)
}

// EmptyDense is the canonical empty Dense set.
var EmptyDense = Dense{First: 0, Last: -1}

// Indexed is a borrowed, contiguous sub-slice of an attribute index — the
// equal-value run produced by corpus.IndexLookup — together with a shift.
// Its logical elements are Slice[i] - Shift; it must not outlive the
// Corpus it was built from.
type Indexed struct {
	Slice []Pos
	Shift int
}

func (ix Indexed) Len() int { return len(ix.Slice) }

// at returns the i'th logical (de-shifted) element.
func (ix Indexed) at(i int) Pos { return ix.Slice[i] - Pos(ix.Shift) }

// Explicit is an owned, sorted, duplicate-free vector of positions — the
// materialized result of any non-trivial algebraic operation.
type Explicit struct {
	Elems []Pos
}

func (e Explicit) Len() int { return len(e.Elems) }

// MatchSet is a concrete set shape tagged with a complement flag: its
// logical content is Set itself, or universe \ Set when Complement is true.
type MatchSet struct {
	Set        any // Dense | Indexed | Explicit
	Complement bool
}

// Size returns the logical cardinality of a concrete set value, used by the
// planner to order operands from smallest to largest.
func Size(s any) int {
	switch v := s.(type) {
	case Dense:
		return v.Len()
	case Indexed:
		return v.Len()
	case Explicit:
		return v.Len()
	default:
		panic("set: unknown shape")
	}
}

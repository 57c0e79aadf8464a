package set

// sparse is satisfied by Indexed and Explicit: any set shape whose logical
// elements are enumerable in ascending order by index, already de-shifted.
type sparse interface {
	Len() int
	At(i int) Pos
}

func (ix Indexed) At(i int) Pos { return ix.at(i) }
func (e Explicit) At(i int) Pos { return e.Elems[i] }

// Intersect computes the intersection of two concrete sets, dispatching on
// their dynamic shapes. Symmetric: Intersect(a, b) and Intersect(b, a)
// yield logically equal results.
func Intersect(a, b any) any {
	switch av := a.(type) {
	case Dense:
		switch bv := b.(type) {
		case Dense:
			return intersectDenseDense(av, bv)
		case Indexed:
			return intersectDenseSparse(av, bv)
		case Explicit:
			return intersectDenseSparse(av, bv)
		}
	case Indexed:
		switch bv := b.(type) {
		case Dense:
			return intersectDenseSparse(bv, av)
		case Indexed:
			return intersectSparseSparse(av, bv)
		case Explicit:
			return intersectSparseSparse(av, bv)
		}
	case Explicit:
		switch bv := b.(type) {
		case Dense:
			return intersectDenseSparse(bv, av)
		case Indexed:
			return intersectSparseSparse(av, bv)
		case Explicit:
			return intersectSparseSparse(av, bv)
		}
	}
	panic("set: unknown shape in Intersect")
}

// Difference computes A \ B, dispatching on their dynamic shapes.
func Difference(a, b any) any {
	switch av := a.(type) {
	case Dense:
		switch bv := b.(type) {
		case Dense:
			return differenceDenseDense(av, bv)
		case Indexed:
			return differenceDenseSparse(av, bv)
		case Explicit:
			return differenceDenseSparse(av, bv)
		}
	case Indexed:
		switch bv := b.(type) {
		case Dense:
			return differenceSparseDense(av, bv)
		case Indexed:
			return differenceSparseSparse(av, bv)
		case Explicit:
			return differenceSparseSparse(av, bv)
		}
	case Explicit:
		switch bv := b.(type) {
		case Dense:
			return differenceSparseDense(av, bv)
		case Indexed:
			return differenceSparseSparse(av, bv)
		case Explicit:
			return differenceSparseSparse(av, bv)
		}
	}
	panic("set: unknown shape in Difference")
}

// ---- Dense / Dense ----------------------------------------------------

func intersectDenseDense(a, b Dense) Dense {
	first := a.First
	if b.First > first {
		first = b.First
	}
	last := a.Last
	if b.Last < last {
		last = b.Last
	}
	if first > last {
		return EmptyDense
	}
	return Dense{First: first, Last: last}
}

// differenceDenseDense returns A \ B. A split (B strictly inside A with
// room on both sides) cannot be expressed as one Dense range and is
// returned as an Explicit; this only happens when the subtrahend is a
// proper sub-interval of the minuend, which the planner rarely produces
// since dense operands are usually the universe or sentence-wide spans.
func differenceDenseDense(a, b Dense) any {
	if b.Empty() || a.Empty() || b.Last < a.First || b.First > a.Last {
		return a
	}
	if b.First <= a.First && b.Last >= a.Last {
		return EmptyDense
	}
	if b.First <= a.First {
		return Dense{First: b.Last + 1, Last: a.Last}
	}
	if b.Last >= a.Last {
		return Dense{First: a.First, Last: b.First - 1}
	}
	elems := make([]Pos, 0, a.Len())
	for p := a.First; p < b.First; p++ {
		elems = append(elems, p)
	}
	for p := b.Last + 1; p <= a.Last; p++ {
		elems = append(elems, p)
	}
	return Explicit{Elems: elems}
}

// ---- Dense / sparse -----------------------------------------------------

func intersectDenseSparse(a Dense, b sparse) Explicit {
	elems := make([]Pos, 0, minInt(a.Len(), b.Len()))
	for i := 0; i < b.Len(); i++ {
		v := b.At(i)
		if v >= a.First && v <= a.Last {
			elems = append(elems, v)
		}
	}
	return Explicit{Elems: elems}
}

// differenceDenseSparse computes A \ B for dense A and sparse B: walk p
// from A.First to A.Last, advancing the sparse pointer, emitting p whenever
// it precedes the current sparse key.
func differenceDenseSparse(a Dense, b sparse) Explicit {
	elems := make([]Pos, 0, a.Len())
	q := 0
	for p := a.First; p <= a.Last; p++ {
		for q < b.Len() && b.At(q) < p {
			q++
		}
		if q >= b.Len() || b.At(q) != p {
			elems = append(elems, p)
		}
	}
	return Explicit{Elems: elems}
}

// differenceSparseDense computes A \ B for sparse A and dense B: emit every
// sparse element lying outside the dense interval.
func differenceSparseDense(a sparse, b Dense) Explicit {
	elems := make([]Pos, 0, a.Len())
	for i := 0; i < a.Len(); i++ {
		v := a.At(i)
		if v < b.First || v > b.Last {
			elems = append(elems, v)
		}
	}
	return Explicit{Elems: elems}
}

// ---- sparse / sparse ----------------------------------------------------

// OnDispatch, if non-nil, is called with "gallop" or "linear" every time
// intersectSparseSparse/differenceSparseSparse pick a strategy. It lets a
// caller (e.g. cmd/queryserver) observe the dispatch decision without this
// package depending on a metrics library.
var OnDispatch func(strategy string)

func reportDispatch(strategy string) {
	if OnDispatch != nil {
		OnDispatch(strategy)
	}
}

func intersectSparseSparse(a, b sparse) Explicit {
	if a.Len()*GallopThreshold <= b.Len() {
		reportDispatch("gallop")
		return gallopIntersect(a, b)
	}
	if b.Len()*GallopThreshold <= a.Len() {
		reportDispatch("gallop")
		return gallopIntersect(b, a)
	}
	reportDispatch("linear")
	return linearIntersect(a, b)
}

func differenceSparseSparse(a, b sparse) Explicit {
	if a.Len() >= b.Len()*GallopThreshold {
		reportDispatch("gallop")
		return gallopDifference(a, b)
	}
	reportDispatch("linear")
	return linearDifference(a, b)
}

// linearIntersect is a two-pointer sorted merge. Output carries no shift:
// every emitted element is already A's de-shifted value.
func linearIntersect(a, b sparse) Explicit {
	elems := make([]Pos, 0, minInt(a.Len(), b.Len()))
	p, q := 0, 0
	for p < a.Len() && q < b.Len() {
		av, bv := a.At(p), b.At(q)
		switch {
		case av < bv:
			p++
		case bv < av:
			q++
		default:
			elems = append(elems, av)
			p++
			q++
		}
	}
	return Explicit{Elems: elems}
}

// linearDifference is a two-pointer A \ B merge: emit A's element when
// strictly less than B's current key, drain the remainder of A once B is
// exhausted.
func linearDifference(a, b sparse) Explicit {
	elems := make([]Pos, 0, a.Len())
	p, q := 0, 0
	for p < a.Len() && q < b.Len() {
		av, bv := a.At(p), b.At(q)
		switch {
		case av < bv:
			elems = append(elems, av)
			p++
		case bv < av:
			q++
		default:
			p++
			q++
		}
	}
	for p < a.Len() {
		elems = append(elems, a.At(p))
		p++
	}
	return Explicit{Elems: elems}
}

// gallopIntersect binary-searches the larger side b for every element of
// the smaller side a. Used when |a|*T <= |b|.
func gallopIntersect(a, b sparse) Explicit {
	elems := make([]Pos, 0, a.Len())
	for i := 0; i < a.Len(); i++ {
		v := a.At(i)
		if sparseBinarySearch(b, v) {
			elems = append(elems, v)
		}
	}
	return Explicit{Elems: elems}
}

// gallopDifference binary-searches B for every element of A. The outer
// loop is always over A — never the smaller operand — so correctness does
// not depend on which side is larger; only the decision to use this form
// (vs. linearDifference) does.
func gallopDifference(a, b sparse) Explicit {
	elems := make([]Pos, 0, a.Len())
	for i := 0; i < a.Len(); i++ {
		v := a.At(i)
		if !sparseBinarySearch(b, v) {
			elems = append(elems, v)
		}
	}
	return Explicit{Elems: elems}
}

func sparseBinarySearch(s sparse, target Pos) bool {
	lo, hi := 0, s.Len()
	for lo < hi {
		mid := (lo + hi) / 2
		if s.At(mid) < target {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo < s.Len() && s.At(lo) == target
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

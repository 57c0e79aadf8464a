// Package planner turns a compiled query.Query into a set.MatchSet via a
// cost-aware intersection planner, and materializes a MatchSet into an
// ordered sequence of Match records.
package planner

import (
	"sort"

	"github.com/corpusql/corpusql/internal/corpus"
	"github.com/corpusql/corpusql/internal/query"
	"github.com/corpusql/corpusql/internal/set"
)

// Match is a single result: a starting position, the sentence it falls in,
// and the window length (number of clauses) that matched.
type Match struct {
	Sentence int
	Pos      corpus.Pos
	Len      int
}

// literalToMatchSet builds the MatchSet for one literal in clause k: an
// Indexed view into the attribute index for (attr, value), shifted by k,
// complemented when the literal is an inequality.
func literalToMatchSet(c *corpus.Corpus, lit query.Literal, shift int) set.MatchSet {
	slice, _ := c.IndexLookup(lit.Attr, lit.Value)
	ix := set.Indexed{Slice: slice, Shift: shift}
	return set.MatchSet{Set: ix, Complement: !lit.IsEquality}
}

// clauseToMatchSet builds the MatchSet for clause at shift k: the universe
// if the clause has no literals, otherwise the planned intersection of
// every literal's MatchSet.
//
// The empty clause's universe is shifted by -k: a start position p is only
// valid for clause k if p+k names a real token, i.e. p ranges over
// [-k, N-1-k]. Equality literals get this bound for free because their
// elements are real token positions minus k; the Dense universe used for an
// empty clause has no such elements to bound it, so it is shifted
// explicitly, e.g. for a trailing "[word=\"the\"] [] []" query. Complemented
// literals are not bounded here; Evaluate's final intersection with the
// valid window starts covers them, and also drops negative starts.
func clauseToMatchSet(c *corpus.Corpus, clause query.Clause, shift int) set.MatchSet {
	if len(clause) == 0 {
		return set.MatchSet{Set: shiftedUniverse(c, shift), Complement: false}
	}
	sets := make([]set.MatchSet, len(clause))
	for i, lit := range clause {
		sets[i] = literalToMatchSet(c, lit, shift)
	}
	return IntersectWithPlan(sets)
}

// Evaluate builds the MatchSet for a whole compiled query: each clause's
// MatchSet (shifted by its 0-based clause index), folded by the
// intersection planner, then intersected with the valid window starts
// [0, N-len(q)], which also materializes a still-pending complement.
func Evaluate(c *corpus.Corpus, q query.Query) set.MatchSet {
	sets := make([]set.MatchSet, len(q))
	for k, clause := range q {
		sets[k] = clauseToMatchSet(c, clause, k)
	}
	result := IntersectWithPlan(sets)
	starts := set.Intersect(universe(c), shiftedUniverse(c, len(q)-1))
	return set.IntersectMatchSets(set.MatchSet{Set: starts, Complement: false}, result)
}

func universe(c *corpus.Corpus) set.Dense {
	if c.Len() == 0 {
		return set.EmptyDense
	}
	return set.Dense{First: 0, Last: corpus.Pos(c.Len() - 1)}
}

func shiftedUniverse(c *corpus.Corpus, shift int) set.Dense {
	if c.Len() == 0 {
		return set.EmptyDense
	}
	return set.Dense{First: corpus.Pos(-shift), Last: corpus.Pos(c.Len()-1-shift)}
}

// IntersectWithPlan folds a bag of MatchSets:
//  1. all Dense operands are collapsed into at most one residual Dense;
//  2. the rest are sorted ascending by logical size and folded left;
//  3. the dense residual, if any, is intersected in last.
//
// The result does not depend on the input order.
func IntersectWithPlan(sets []set.MatchSet) set.MatchSet {
	var dense set.MatchSet
	denseFound := false
	others := make([]set.MatchSet, 0, len(sets))

	for _, s := range sets {
		if _, ok := s.Set.(set.Dense); ok {
			if !denseFound {
				dense = s
				denseFound = true
			} else {
				dense = set.IntersectMatchSets(dense, s)
			}
			continue
		}
		others = append(others, s)
	}

	sort.SliceStable(others, func(i, j int) bool {
		return set.Size(others[i].Set) < set.Size(others[j].Set)
	})

	if len(others) == 0 {
		if denseFound {
			return dense
		}
		return set.MatchSet{Set: set.EmptyDense, Complement: false}
	}

	result := others[0]
	for _, s := range others[1:] {
		result = set.IntersectMatchSets(result, s)
	}
	if denseFound {
		result = set.IntersectMatchSets(result, dense)
	}
	return result
}

// Enumerate walks a MatchSet's logical positions in ascending order and
// emits one Match per position, with the given window length. The
// MatchSet's Complement must already be resolved (Evaluate guarantees
// this) — Enumerate does not materialize a universe itself.
func Enumerate(c *corpus.Corpus, ms set.MatchSet, length int) []Match {
	positions := logicalPositions(ms.Set)
	matches := make([]Match, 0, len(positions))
	for _, p := range positions {
		matches = append(matches, Match{
			Sentence: c.SentenceOf(p),
			Pos:      p,
			Len:      length,
		})
	}
	return matches
}

func logicalPositions(s any) []corpus.Pos {
	switch v := s.(type) {
	case set.Dense:
		if v.Empty() {
			return nil
		}
		out := make([]corpus.Pos, 0, v.Len())
		for p := v.First; p <= v.Last; p++ {
			out = append(out, p)
		}
		return out
	case set.Indexed:
		out := make([]corpus.Pos, v.Len())
		for i := range out {
			out[i] = v.At(i)
		}
		return out
	case set.Explicit:
		return v.Elems
	default:
		panic("planner: unknown shape")
	}
}

// MatchQuery evaluates and enumerates q against c in one call.
func MatchQuery(c *corpus.Corpus, q query.Query) []Match {
	ms := Evaluate(c, q)
	return Enumerate(c, ms, len(q))
}

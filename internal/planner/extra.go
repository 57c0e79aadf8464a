package planner

import (
	"github.com/corpusql/corpusql/internal/corpus"
	"github.com/corpusql/corpusql/internal/query"
)

// MatchSingleID is the single-literal fast path: it converts an attribute
// index range directly into matches without going through the planner.
// It takes an already-resolved Id so it can be used both by the lenient
// string-based entry point below and by tests that want to bypass
// interning.
func MatchSingleID(c *corpus.Corpus, attr corpus.Attr, id corpus.Id) []Match {
	slice, ok := c.IndexLookup(attr, id)
	if !ok {
		return nil
	}
	matches := make([]Match, 0, len(slice))
	for _, p := range slice {
		matches = append(matches, Match{Sentence: c.SentenceOf(p), Pos: p, Len: 1})
	}
	return matches
}

// MatchSingleValue resolves value against the corpus and returns its
// matches, or zero matches if the value was never interned — a lenient
// lookup applied to the single-literal fast path.
func MatchSingleValue(c *corpus.Corpus, attr corpus.Attr, value string) []Match {
	id, ok := c.Interner().Lookup(attr, value)
	if !ok {
		return nil
	}
	return MatchSingleID(c, attr, id)
}

// EnforceSentenceBoundary drops matches whose window [Pos, Pos+Len-1]
// spans more than one sentence. The default planner (MatchQuery/Evaluate)
// is boundary-agnostic; this is an explicit opt-in post-filter for callers
// that need windows confined to a single sentence.
func EnforceSentenceBoundary(c *corpus.Corpus, matches []Match) []Match {
	out := make([]Match, 0, len(matches))
	for _, m := range matches {
		if m.Len <= 1 {
			out = append(out, m)
			continue
		}
		end := m.Pos + corpus.Pos(m.Len) - 1
		if int(end) >= c.Len() {
			continue
		}
		if c.SentenceOf(end) == m.Sentence {
			out = append(out, m)
		}
	}
	return out
}

// MatchBruteForce is a naive oracle: for every starting position p and
// every clause k it checks p+k is in range and satisfies the clause, with
// no use of indexes or set algebra. It exists only to validate
// Evaluate/Enumerate in tests — never a production path.
// It does not apply a sentence-boundary constraint, matching the set
// algebra's behaviour (see EnforceSentenceBoundary for the opt-in filter).
func MatchBruteForce(c *corpus.Corpus, q query.Query) []Match {
	var matches []Match
	n := c.Len()
	for p := 0; p < n; p++ {
		ok := true
		for k, clause := range q {
			pos := p + k
			if pos >= n || !clauseMatchesToken(c, clause, corpus.Pos(pos)) {
				ok = false
				break
			}
		}
		if ok {
			matches = append(matches, Match{
				Sentence: c.SentenceOf(corpus.Pos(p)),
				Pos:      corpus.Pos(p),
				Len:      len(q),
			})
		}
	}
	return matches
}

func clauseMatchesToken(c *corpus.Corpus, clause query.Clause, p corpus.Pos) bool {
	if len(clause) == 0 {
		return true
	}
	tok := c.Token(p)
	for _, lit := range clause {
		if !literalMatchesToken(tok, lit) {
			return false
		}
	}
	return true
}

func literalMatchesToken(tok corpus.Token, lit query.Literal) bool {
	var v corpus.Id
	switch lit.Attr {
	case corpus.Word:
		v = tok.Word
	case corpus.C5:
		v = tok.C5
	case corpus.Lemma:
		v = tok.Lemma
	case corpus.POS:
		v = tok.Pos
	}
	if lit.IsEquality {
		return v == lit.Value
	}
	return v != lit.Value
}

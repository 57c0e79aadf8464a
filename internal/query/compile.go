package query

import (
	"fmt"

	"github.com/corpusql/corpusql/internal/corpus"
	cqerrors "github.com/corpusql/corpusql/pkg/errors"
)

// ParsedLiteral is a literal whose value is still a raw string — the
// output of the text parser, before Id resolution.
type ParsedLiteral struct {
	Attr       corpus.Attr
	Value      string
	IsEquality bool
}

type ParsedClause []ParsedLiteral
type ParsedQuery []ParsedClause

// LookupOrFail resolves value under attr to an Id, returning
// ErrUnknownValue if it was never interned. Used by strict compilation.
func LookupOrFail(c *corpus.Corpus, attr corpus.Attr, value string) (corpus.Id, error) {
	id, ok := c.Interner().Lookup(attr, value)
	if !ok {
		return 0, fmt.Errorf("%s=%q: %w", attr, value, cqerrors.ErrUnknownValue)
	}
	return id, nil
}

// LookupOrEmpty resolves value under attr to an Id, reporting ok=false
// (never an error) if it was never interned. Used by lenient compilation,
// where a miss legitimately means "zero matches" rather than a failure.
func LookupOrEmpty(c *corpus.Corpus, attr corpus.Attr, value string) (id corpus.Id, ok bool) {
	return c.Interner().Lookup(attr, value)
}

// Compile resolves a ParsedQuery's value strings to corpus Ids.
//
// In strict mode an unresolved value is fatal (ErrUnknownValue). In lenient
// mode an unresolved value is not an error: Compile returns ok=false and
// the caller must treat the query as having zero matches without
// constructing any set.
//
// An unknown attribute name is always fatal, in both modes.
func Compile(pq ParsedQuery, c *corpus.Corpus, strict bool) (q Query, ok bool, err error) {
	if len(pq) == 0 {
		return nil, false, cqerrors.ErrEmptyQuery
	}
	out := make(Query, len(pq))
	for ci, pc := range pq {
		clause := make(Clause, len(pc))
		for li, pl := range pc {
			if _, known := attrKnown(pl.Attr); !known {
				return nil, false, fmt.Errorf("%q: %w", pl.Attr, cqerrors.ErrUnknownAttribute)
			}
			if strict {
				id, err := LookupOrFail(c, pl.Attr, pl.Value)
				if err != nil {
					return nil, false, err
				}
				clause[li] = Literal{Attr: pl.Attr, Value: id, IsEquality: pl.IsEquality}
			} else {
				id, found := LookupOrEmpty(c, pl.Attr, pl.Value)
				if !found {
					return nil, false, nil
				}
				clause[li] = Literal{Attr: pl.Attr, Value: id, IsEquality: pl.IsEquality}
			}
		}
		out[ci] = clause
	}
	return out, true, nil
}

func attrKnown(a corpus.Attr) (corpus.Attr, bool) {
	switch a {
	case corpus.Word, corpus.C5, corpus.Lemma, corpus.POS:
		return a, true
	default:
		return a, false
	}
}

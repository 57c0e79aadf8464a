// Package query holds the structured query representation the planner
// consumes: a Query is a sequence of position-aligned Clauses, each a
// conjunction of Literals over a corpus attribute. The text surface syntax
// (ParseText) and Id-resolution (Compile) both live here; the core
// algebra/planner packages only ever see a compiled Query.
package query

import "github.com/corpusql/corpusql/internal/corpus"

// Literal is a single equality/inequality constraint on one attribute.
type Literal struct {
	Attr       corpus.Attr
	Value      corpus.Id
	IsEquality bool
}

// Clause is a conjunction of Literals constraining a single token position.
// An empty Clause matches every position.
type Clause []Literal

// Query is a sequence of position-aligned Clauses. Clause k constrains the
// token at offset k from a candidate starting position.
type Query []Clause

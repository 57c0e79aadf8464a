// Package exec runs a query-service request end to end against a loaded
// corpus: parse the surface text, compile it against the corpus's
// interner, evaluate it through the planner, and truncate to a result
// limit. It is the non-HTTP core that internal/queryservice/handler and
// internal/queryservice/cache both depend on.
package exec

import (
	"fmt"

	"github.com/corpusql/corpusql/internal/corpus"
	"github.com/corpusql/corpusql/internal/planner"
	"github.com/corpusql/corpusql/internal/query"
)

// Result is the outcome of running one query against a corpus.
type Result struct {
	QueryText  string          `json:"query_text"`
	ClauseLen  int             `json:"clause_len"`
	MatchCount int             `json:"match_count"`
	Matches    []planner.Match `json:"matches"`
}

// Run parses, compiles, and evaluates queryText against c, returning at
// most limit matches. MatchCount always reports the true total even when
// Matches has been truncated to limit.
func Run(c *corpus.Corpus, queryText string, limit int, strict bool) (*Result, error) {
	pq, err := query.ParseText(queryText)
	if err != nil {
		return nil, fmt.Errorf("parsing query: %w", err)
	}
	q, ok, err := query.Compile(pq, c, strict)
	if err != nil {
		return nil, fmt.Errorf("compiling query: %w", err)
	}
	if !ok {
		return &Result{QueryText: queryText, ClauseLen: len(pq), MatchCount: 0, Matches: []planner.Match{}}, nil
	}

	matches := planner.MatchQuery(c, q)
	result := &Result{
		QueryText:  queryText,
		ClauseLen:  len(q),
		MatchCount: len(matches),
	}
	if limit > 0 && len(matches) > limit {
		result.Matches = matches[:limit]
	} else {
		result.Matches = matches
	}
	return result, nil
}

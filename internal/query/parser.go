package query

import (
	"fmt"
	"strings"

	"github.com/corpusql/corpusql/internal/corpus"
	cqerrors "github.com/corpusql/corpusql/pkg/errors"
)

// ParseText parses the surface query language:
//
//	query  := clause { clause }
//	clause := '[' literal* ']'
//	literal:= attr op '"' value '"'
//	op     := '=' | '!='
//
// into a ParsedQuery. Values are left as raw strings; Compile resolves them
// against a corpus. ParseText itself never touches a corpus.
func ParseText(text string) (ParsedQuery, error) {
	clauseTexts, err := splitClauses(text)
	if err != nil {
		return nil, err
	}
	if len(clauseTexts) == 0 {
		return nil, cqerrors.ErrEmptyQuery
	}
	pq := make(ParsedQuery, 0, len(clauseTexts))
	for _, ct := range clauseTexts {
		lits, err := parseClause(ct)
		if err != nil {
			return nil, err
		}
		pq = append(pq, lits)
	}
	return pq, nil
}

// splitClauses splits "[...] [...] ..." into the bracketed substrings,
// mirroring original_source's split_clauses: a '[' while already inside a
// clause, or a ']' outside one, is a format error.
func splitClauses(text string) ([]string, error) {
	var clauses []string
	var current strings.Builder
	inClause := false

	for _, ch := range text {
		switch {
		case ch == '[':
			if inClause {
				return nil, fmt.Errorf("nested or misplaced '[': %w", cqerrors.ErrInvalidInput)
			}
			inClause = true
			current.Reset()
		case ch == ']':
			if !inClause {
				return nil, fmt.Errorf("mismatched ']': %w", cqerrors.ErrInvalidInput)
			}
			clauses = append(clauses, current.String())
			inClause = false
		case inClause:
			current.WriteRune(ch)
		}
	}
	if inClause {
		return nil, fmt.Errorf("missing closing ']': %w", cqerrors.ErrInvalidInput)
	}
	return clauses, nil
}

// parseClause splits a clause body on whitespace into literals of the form
// attr=\"value\" or attr!=\"value\". An empty body is the empty clause,
// which matches every position.
func parseClause(body string) (ParsedClause, error) {
	fields := strings.Fields(body)
	if len(fields) == 0 {
		return ParsedClause{}, nil
	}
	lits := make(ParsedClause, 0, len(fields))
	for _, field := range fields {
		lit, err := parseLiteral(field)
		if err != nil {
			return nil, err
		}
		lits = append(lits, lit)
	}
	return lits, nil
}

func parseLiteral(field string) (ParsedLiteral, error) {
	isEquality := true
	opIdx := strings.Index(field, "!=")
	if opIdx < 0 {
		opIdx = strings.Index(field, "=")
		if opIdx < 0 {
			return ParsedLiteral{}, fmt.Errorf("cannot parse literal %q: %w", field, cqerrors.ErrInvalidInput)
		}
	} else {
		isEquality = false
	}
	opLen := 1
	if !isEquality {
		opLen = 2
	}
	attrStr := field[:opIdx]
	rawValue := field[opIdx+opLen:]
	value, err := unquote(rawValue)
	if err != nil {
		return ParsedLiteral{}, err
	}
	attr := corpus.Attr(attrStr)
	switch attr {
	case corpus.Word, corpus.C5, corpus.Lemma, corpus.POS:
	default:
		return ParsedLiteral{}, fmt.Errorf("attribute %q not recognized: %w", attrStr, cqerrors.ErrUnknownAttribute)
	}
	return ParsedLiteral{Attr: attr, Value: value, IsEquality: isEquality}, nil
}

func unquote(s string) (string, error) {
	if len(s) >= 2 && strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`) {
		return s[1 : len(s)-1], nil
	}
	return "", fmt.Errorf("value %q is missing quotes: %w", s, cqerrors.ErrInvalidInput)
}

package query

import (
	"errors"
	"testing"

	"github.com/corpusql/corpusql/internal/corpus"
	cqerrors "github.com/corpusql/corpusql/pkg/errors"
)

func TestParseTextSingleClause(t *testing.T) {
	pq, err := ParseText(`[word="the"]`)
	if err != nil {
		t.Fatalf("ParseText: %v", err)
	}
	if len(pq) != 1 || len(pq[0]) != 1 {
		t.Fatalf("got %+v, want one clause with one literal", pq)
	}
	lit := pq[0][0]
	if lit.Attr != corpus.Word || lit.Value != "the" || !lit.IsEquality {
		t.Fatalf("unexpected literal %+v", lit)
	}
}

func TestParseTextMultiClauseMultiLiteral(t *testing.T) {
	pq, err := ParseText(`[pos="VERB" lemma="be"] [] [word!="."]`)
	if err != nil {
		t.Fatalf("ParseText: %v", err)
	}
	if len(pq) != 3 {
		t.Fatalf("len(pq) = %d, want 3", len(pq))
	}
	if len(pq[0]) != 2 {
		t.Fatalf("first clause has %d literals, want 2", len(pq[0]))
	}
	if len(pq[1]) != 0 {
		t.Fatalf("second clause should be empty, got %+v", pq[1])
	}
	if pq[2][0].IsEquality {
		t.Fatal("expected != to parse as a negated literal")
	}
}

func TestParseTextEmptyQueryIsError(t *testing.T) {
	if _, err := ParseText(""); !errors.Is(err, cqerrors.ErrEmptyQuery) {
		t.Fatalf("ParseText(\"\") error = %v, want ErrEmptyQuery", err)
	}
}

func TestParseTextMismatchedCloseBracket(t *testing.T) {
	if _, err := ParseText(`word="the"]`); !errors.Is(err, cqerrors.ErrInvalidInput) {
		t.Fatalf("error = %v, want ErrInvalidInput", err)
	}
}

func TestParseTextNestedOpenBracket(t *testing.T) {
	if _, err := ParseText(`[[word="the"]]`); !errors.Is(err, cqerrors.ErrInvalidInput) {
		t.Fatalf("error = %v, want ErrInvalidInput", err)
	}
}

func TestParseTextUnclosedBracket(t *testing.T) {
	if _, err := ParseText(`[word="the"`); !errors.Is(err, cqerrors.ErrInvalidInput) {
		t.Fatalf("error = %v, want ErrInvalidInput", err)
	}
}

func TestParseTextMissingQuotes(t *testing.T) {
	if _, err := ParseText(`[word=the]`); !errors.Is(err, cqerrors.ErrInvalidInput) {
		t.Fatalf("error = %v, want ErrInvalidInput", err)
	}
}

func TestParseTextMissingOperator(t *testing.T) {
	if _, err := ParseText(`[word"the"]`); !errors.Is(err, cqerrors.ErrInvalidInput) {
		t.Fatalf("error = %v, want ErrInvalidInput", err)
	}
}

func TestParseTextUnknownAttribute(t *testing.T) {
	if _, err := ParseText(`[gloss="the"]`); !errors.Is(err, cqerrors.ErrUnknownAttribute) {
		t.Fatalf("error = %v, want ErrUnknownAttribute", err)
	}
}

func TestParseTextEmptyClauseBody(t *testing.T) {
	pq, err := ParseText(`[]`)
	if err != nil {
		t.Fatalf("ParseText: %v", err)
	}
	if len(pq) != 1 || len(pq[0]) != 0 {
		t.Fatalf("got %+v, want one empty clause", pq)
	}
}

func TestParseTextWhitespaceBetweenClauses(t *testing.T) {
	pq, err := ParseText("  [word=\"a\"]   [word=\"b\"]  ")
	if err != nil {
		t.Fatalf("ParseText: %v", err)
	}
	if len(pq) != 2 {
		t.Fatalf("len(pq) = %d, want 2", len(pq))
	}
}

func TestParseTextNegationBeforeEquality(t *testing.T) {
	// "!=" must be detected even though it also contains "=", so the
	// substring search for "=" alone must not win first.
	pq, err := ParseText(`[pos!="PUN"]`)
	if err != nil {
		t.Fatalf("ParseText: %v", err)
	}
	lit := pq[0][0]
	if lit.IsEquality {
		t.Fatal("expected IsEquality=false for !=")
	}
	if lit.Value != "PUN" {
		t.Fatalf("Value = %q, want PUN", lit.Value)
	}
}

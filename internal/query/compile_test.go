package query

import (
	"errors"
	"strings"
	"testing"

	"github.com/corpusql/corpusql/internal/corpus"
	cqerrors "github.com/corpusql/corpusql/pkg/errors"
)

const sampleCorpus = `word	c5	lemma	pos
there	EX0	there	PRON
is	VBZ	be	VERB
no	AT0	no	ART
vaccine	NN1	vaccine	SUBST
or	CJC	or	CONJ
cure	VVB-NN1	cure	VERB
currently	AV0	currently	ADV
available	AJ0	available	ADJ
.	PUN	.	PUN
`

func loadSample(t *testing.T) *corpus.Corpus {
	t.Helper()
	c, err := corpus.LoadReader(strings.NewReader(sampleCorpus))
	if err != nil {
		t.Fatalf("LoadReader: %v", err)
	}
	return c
}

func TestCompileKnownValueStrict(t *testing.T) {
	c := loadSample(t)
	pq, err := ParseText(`[lemma="vaccine"]`)
	if err != nil {
		t.Fatalf("ParseText: %v", err)
	}
	q, ok, err := Compile(pq, c, true)
	if err != nil || !ok {
		t.Fatalf("Compile: ok=%v err=%v", ok, err)
	}
	if len(q) != 1 || len(q[0]) != 1 {
		t.Fatalf("unexpected compiled query %+v", q)
	}
}

func TestCompileUnknownValueStrictFails(t *testing.T) {
	c := loadSample(t)
	pq, err := ParseText(`[lemma="nonexistent"]`)
	if err != nil {
		t.Fatalf("ParseText: %v", err)
	}
	_, _, err = Compile(pq, c, true)
	if !errors.Is(err, cqerrors.ErrUnknownValue) {
		t.Fatalf("Compile error = %v, want ErrUnknownValue", err)
	}
}

func TestCompileUnknownValueLenientMisses(t *testing.T) {
	c := loadSample(t)
	pq, err := ParseText(`[lemma="nonexistent"]`)
	if err != nil {
		t.Fatalf("ParseText: %v", err)
	}
	q, ok, err := Compile(pq, c, false)
	if err != nil {
		t.Fatalf("Compile returned an error in lenient mode: %v", err)
	}
	if ok {
		t.Fatal("expected ok=false for an unresolved value in lenient mode")
	}
	if q != nil {
		t.Fatalf("expected a nil Query alongside ok=false, got %+v", q)
	}
}

func TestCompileEmptyClauseStaysEmpty(t *testing.T) {
	c := loadSample(t)
	pq, err := ParseText(`[word="vaccine"] []`)
	if err != nil {
		t.Fatalf("ParseText: %v", err)
	}
	q, ok, err := Compile(pq, c, true)
	if err != nil || !ok {
		t.Fatalf("Compile: ok=%v err=%v", ok, err)
	}
	if len(q[1]) != 0 {
		t.Fatalf("second clause should stay empty after compilation, got %+v", q[1])
	}
}

func TestCompileEmptyQueryIsError(t *testing.T) {
	_, _, err := Compile(ParsedQuery{}, loadSample(t), true)
	if !errors.Is(err, cqerrors.ErrEmptyQuery) {
		t.Fatalf("error = %v, want ErrEmptyQuery", err)
	}
}

func TestCompileUnknownAttributeFatalInBothModes(t *testing.T) {
	c := loadSample(t)
	pq := ParsedQuery{ParsedClause{{Attr: corpus.Attr("gloss"), Value: "x", IsEquality: true}}}

	if _, _, err := Compile(pq, c, true); !errors.Is(err, cqerrors.ErrUnknownAttribute) {
		t.Fatalf("strict mode error = %v, want ErrUnknownAttribute", err)
	}
	if _, _, err := Compile(pq, c, false); !errors.Is(err, cqerrors.ErrUnknownAttribute) {
		t.Fatalf("lenient mode error = %v, want ErrUnknownAttribute", err)
	}
}

func TestCompileNegatedLiteralPreservesIsEquality(t *testing.T) {
	c := loadSample(t)
	pq, err := ParseText(`[pos!="PUN"]`)
	if err != nil {
		t.Fatalf("ParseText: %v", err)
	}
	q, ok, err := Compile(pq, c, true)
	if err != nil || !ok {
		t.Fatalf("Compile: ok=%v err=%v", ok, err)
	}
	if q[0][0].IsEquality {
		t.Fatal("expected IsEquality=false to survive compilation")
	}
}

func TestLookupOrFailAndLookupOrEmptyAgree(t *testing.T) {
	c := loadSample(t)

	id, err := LookupOrFail(c, corpus.Lemma, "vaccine")
	if err != nil {
		t.Fatalf("LookupOrFail: %v", err)
	}
	id2, ok := LookupOrEmpty(c, corpus.Lemma, "vaccine")
	if !ok || id != id2 {
		t.Fatalf("LookupOrEmpty = (%v, %v), want (%v, true)", id2, ok, id)
	}

	if _, err := LookupOrFail(c, corpus.Lemma, "nonexistent"); !errors.Is(err, cqerrors.ErrUnknownValue) {
		t.Fatalf("LookupOrFail error = %v, want ErrUnknownValue", err)
	}
	if _, ok := LookupOrEmpty(c, corpus.Lemma, "nonexistent"); ok {
		t.Fatal("LookupOrEmpty: expected ok=false for an unresolved value")
	}
}

package corpus

import (
	"strings"
	"testing"
)

const sample = `word	c5	lemma	pos
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

func load(t *testing.T) *Corpus {
	t.Helper()
	c, err := LoadReader(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("LoadReader: %v", err)
	}
	return c
}

func TestLoadBasics(t *testing.T) {
	c := load(t)
	if c.Len() != 9 {
		t.Fatalf("Len() = %d, want 9", c.Len())
	}
	if got := c.SentenceStarts(); len(got) != 1 || got[0] != 0 {
		t.Fatalf("SentenceStarts() = %v, want [0]", got)
	}
}

func TestInternRoundTrip(t *testing.T) {
	c := load(t)
	id, ok := c.Interner().Lookup(Lemma, "vaccine")
	if !ok {
		t.Fatal("expected vaccine to be interned")
	}
	if got := c.Interner().String(Lemma, id); got != "vaccine" {
		t.Fatalf("String() = %q, want vaccine", got)
	}
	if _, ok := c.Interner().Lookup(Lemma, "nonexistent"); ok {
		t.Fatal("expected miss for unknown value")
	}
}

func TestAttributeIndexSorted(t *testing.T) {
	c := load(t)
	idx := c.indexes[attrLemma]
	if len(idx) != c.Len() {
		t.Fatalf("index length = %d, want %d", len(idx), c.Len())
	}
	for i := 1; i < len(idx); i++ {
		if c.tokens[idx[i-1]].Lemma > c.tokens[idx[i]].Lemma {
			t.Fatalf("index not sorted at %d", i)
		}
	}
}

func TestIndexLookupExact(t *testing.T) {
	c := load(t)
	id, ok := c.Interner().Lookup(Lemma, "vaccine")
	if !ok {
		t.Fatal("expected vaccine interned")
	}
	slice, ok := c.IndexLookup(Lemma, id)
	if !ok || len(slice) != 1 || slice[0] != 3 {
		t.Fatalf("IndexLookup(lemma, vaccine) = %v, ok=%v, want [3]", slice, ok)
	}
}

func TestIndexLookupEveryPosition(t *testing.T) {
	c := load(t)
	for p := Pos(0); p < Pos(c.Len()); p++ {
		tok := c.Token(p)
		slice, ok := c.IndexLookup(Lemma, tok.Lemma)
		if !ok {
			t.Fatalf("unexpected miss for pos %d", p)
		}
		found := false
		for _, q := range slice {
			if q == p {
				found = true
			}
			if c.Token(q).Lemma != tok.Lemma {
				t.Fatalf("IndexLookup returned a position with a different lemma id")
			}
		}
		if !found {
			t.Fatalf("position %d missing from its own lemma's index range", p)
		}
	}
}

func TestSentenceOf(t *testing.T) {
	data := "word\tc5\tlemma\tpos\na\tX\ta\tX\nb\tX\tb\tX\n\nc\tX\tc\tX\n"
	c, err := LoadReader(strings.NewReader(data))
	if err != nil {
		t.Fatalf("LoadReader: %v", err)
	}
	if c.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", c.Len())
	}
	want := []int{0, 0, 1}
	for p := 0; p < c.Len(); p++ {
		if got := c.SentenceOf(Pos(p)); got != want[p] {
			t.Errorf("SentenceOf(%d) = %d, want %d", p, got, want[p])
		}
	}
}

func TestLoadRejectsMalformedLine(t *testing.T) {
	data := "word\tc5\tlemma\tpos\na\tX\ta\n"
	if _, err := LoadReader(strings.NewReader(data)); err == nil {
		t.Fatal("expected an error for a malformed line")
	}
}

func TestLoadEmptyCorpus(t *testing.T) {
	c, err := LoadReader(strings.NewReader("word\tc5\tlemma\tpos\n"))
	if err != nil {
		t.Fatalf("LoadReader: %v", err)
	}
	if c.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", c.Len())
	}
}

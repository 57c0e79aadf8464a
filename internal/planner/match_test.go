package planner

import (
	"strings"
	"testing"

	"github.com/corpusql/corpusql/internal/corpus"
	"github.com/corpusql/corpusql/internal/query"
)

const readmeCorpusData = `word	c5	lemma	pos
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

// buildReadmeCorpus builds the small nine-token worked example used as a
// shared fixture across the tests below.
func buildReadmeCorpus() (*corpus.Corpus, error) {
	return corpus.LoadReader(strings.NewReader(readmeCorpusData))
}

// readmeCorpus is the test-friendly wrapper around buildReadmeCorpus.
func readmeCorpus(t *testing.T) *corpus.Corpus {
	t.Helper()
	c, err := buildReadmeCorpus()
	if err != nil {
		t.Fatalf("LoadReader: %v", err)
	}
	return c
}

func compile(t *testing.T, c *corpus.Corpus, text string) query.Query {
	t.Helper()
	pq, err := query.ParseText(text)
	if err != nil {
		t.Fatalf("ParseText(%q): %v", text, err)
	}
	q, ok, err := query.Compile(pq, c, true)
	if err != nil {
		t.Fatalf("Compile(%q): %v", text, err)
	}
	if !ok {
		t.Fatalf("Compile(%q): expected ok", text)
	}
	return q
}

func TestReadmeScenarios(t *testing.T) {
	c := readmeCorpus(t)

	cases := []struct {
		name    string
		query   string
		wantPos []int
		wantLen int
	}{
		{"empty clause", "[]", []int{0, 1, 2, 3, 4, 5, 6, 7, 8}, 1},
		{"single literal", `[lemma="no"]`, []int{2}, 1},
		{"two clauses", `[pos="ART"] [lemma="vaccine"]`, []int{2}, 2},
		{"negation excludes", `[lemma="cure" pos!="VERB"]`, nil, 1},
		{"negation admits", `[lemma="cure" pos!="SUBST"]`, []int{5}, 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			q := compile(t, c, tc.query)
			got := MatchQuery(c, q)
			if len(got) != len(tc.wantPos) {
				t.Fatalf("got %d matches, want %d (%v)", len(got), len(tc.wantPos), got)
			}
			for i, m := range got {
				if int(m.Pos) != tc.wantPos[i] {
					t.Errorf("match %d: pos=%d, want %d", i, m.Pos, tc.wantPos[i])
				}
				if m.Len != tc.wantLen {
					t.Errorf("match %d: len=%d, want %d", i, m.Len, tc.wantLen)
				}
			}
		})
	}
}

func TestMatchQueryOrdering(t *testing.T) {
	c := readmeCorpus(t)
	q := compile(t, c, "[]")
	matches := MatchQuery(c, q)
	for i := 1; i < len(matches); i++ {
		if matches[i].Pos <= matches[i-1].Pos {
			t.Fatalf("matches not strictly increasing at %d: %v", i, matches)
		}
	}
}

func TestMatchQueryDeterministic(t *testing.T) {
	c := readmeCorpus(t)
	q := compile(t, c, `[pos="VERB"]`)
	a := MatchQuery(c, q)
	b := MatchQuery(c, q)
	if len(a) != len(b) {
		t.Fatalf("non-deterministic result lengths: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("non-deterministic result at %d: %v vs %v", i, a[i], b[i])
		}
	}
}

// TestNaiveEquivalence checks that MatchQuery agrees with the brute-force
// oracle across a mix of empty, single-literal, negated, and multi-clause
// queries.
func TestNaiveEquivalence(t *testing.T) {
	c := readmeCorpus(t)
	queries := []string{
		"[]",
		`[lemma="no"]`,
		`[pos="ART"] [lemma="vaccine"]`,
		`[lemma="cure" pos!="VERB"]`,
		`[lemma="cure" pos!="SUBST"]`,
		`[] [] []`,
		`[pos="VERB"] []`,
	}
	for _, qs := range queries {
		q := compile(t, c, qs)
		want := MatchBruteForce(c, q)
		got := MatchQuery(c, q)
		if len(want) != len(got) {
			t.Fatalf("%q: brute=%v planner=%v", qs, want, got)
		}
		for i := range want {
			if want[i] != got[i] {
				t.Fatalf("%q: mismatch at %d: brute=%v planner=%v", qs, i, want[i], got[i])
			}
		}
	}
}

func TestMatchSingleValue(t *testing.T) {
	c := readmeCorpus(t)
	got := MatchSingleValue(c, corpus.Lemma, "vaccine")
	if len(got) != 1 || got[0].Pos != 3 {
		t.Fatalf("got %v, want a single match at pos 3", got)
	}
	if got := MatchSingleValue(c, corpus.Lemma, "nonexistent"); got != nil {
		t.Fatalf("expected nil for unknown value, got %v", got)
	}
}

func TestEnforceSentenceBoundary(t *testing.T) {
	data := "word\tc5\tlemma\tpos\na\tX\ta\tX\nb\tX\tb\tX\n\nc\tX\tc\tX\nd\tX\td\tX\n"
	c, err := corpus.LoadReader(strings.NewReader(data))
	if err != nil {
		t.Fatalf("LoadReader: %v", err)
	}
	q := compile(t, c, "[] []")
	all := MatchQuery(c, q)
	if len(all) != 3 {
		t.Fatalf("expected 3 unfiltered matches (window may cross boundary), got %v", all)
	}
	filtered := EnforceSentenceBoundary(c, all)
	if len(filtered) != 2 {
		t.Fatalf("expected 2 matches after boundary enforcement, got %v", filtered)
	}
}

func BenchmarkEvaluateSingleLiteral(b *testing.B) {
	c, err := buildReadmeCorpus()
	if err != nil {
		b.Fatalf("buildReadmeCorpus: %v", err)
	}
	pq, _ := query.ParseText(`[lemma="vaccine"]`)
	q, _, _ := query.Compile(pq, c, true)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = MatchQuery(c, q)
	}
}

func BenchmarkEvaluateThreeClause(b *testing.B) {
	c, err := buildReadmeCorpus()
	if err != nil {
		b.Fatalf("buildReadmeCorpus: %v", err)
	}
	pq, _ := query.ParseText(`[pos="VERB"] [] []`)
	q, _, _ := query.Compile(pq, c, true)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = MatchQuery(c, q)
	}
}

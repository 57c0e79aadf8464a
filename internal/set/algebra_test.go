package set

import (
	"reflect"
	"testing"
)

func explicitOf(vals ...Pos) Explicit { return Explicit{Elems: vals} }

func elemsOf(v any) []Pos {
	switch s := v.(type) {
	case Dense:
		if s.Empty() {
			return nil
		}
		out := make([]Pos, 0, s.Len())
		for p := s.First; p <= s.Last; p++ {
			out = append(out, p)
		}
		return out
	case Indexed:
		out := make([]Pos, s.Len())
		for i := range out {
			out[i] = s.At(i)
		}
		return out
	case Explicit:
		return s.Elems
	}
	panic("unknown shape")
}

func TestIntersectCommutative(t *testing.T) {
	a := explicitOf(1, 3, 5, 7, 9)
	b := explicitOf(2, 3, 4, 5, 6)
	ab := elemsOf(Intersect(a, b))
	ba := elemsOf(Intersect(b, a))
	if !reflect.DeepEqual(ab, ba) {
		t.Fatalf("not commutative: %v vs %v", ab, ba)
	}
	want := []Pos{3, 5}
	if !reflect.DeepEqual(ab, want) {
		t.Fatalf("got %v, want %v", ab, want)
	}
}

func TestIntersectGallopVsLinearAgree(t *testing.T) {
	small := explicitOf(10, 50, 90)
	big := make([]Pos, 0, 200)
	for i := Pos(0); i < 200; i++ {
		big = append(big, i)
	}
	bigSet := explicitOf(big...)

	oldT := GallopThreshold
	defer func() { GallopThreshold = oldT }()

	GallopThreshold = 1 // force gallop
	gallop := elemsOf(Intersect(small, bigSet))
	GallopThreshold = 1 << 30 // force linear
	linear := elemsOf(Intersect(small, bigSet))

	if !reflect.DeepEqual(gallop, linear) {
		t.Fatalf("gallop=%v linear=%v", gallop, linear)
	}
	want := []Pos{10, 50, 90}
	if !reflect.DeepEqual(gallop, want) {
		t.Fatalf("got %v want %v", gallop, want)
	}
}

func TestDifferenceBasic(t *testing.T) {
	a := explicitOf(1, 2, 3, 4, 5)
	b := explicitOf(2, 4)
	got := elemsOf(Difference(a, b))
	want := []Pos{1, 3, 5}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestSetAlgebraLaws(t *testing.T) {
	a := explicitOf(1, 2, 3, 4, 5)
	aSame := explicitOf(1, 2, 3, 4, 5)
	empty := explicitOf()

	if got := elemsOf(Difference(a, aSame)); len(got) != 0 {
		t.Fatalf("A\\A should be empty, got %v", got)
	}
	if got := elemsOf(Difference(a, empty)); !reflect.DeepEqual(got, elemsOf(a)) {
		t.Fatalf("A\\empty should equal A, got %v", got)
	}
	universe := Dense{First: 0, Last: 10}
	if got := elemsOf(Intersect(a, universe)); !reflect.DeepEqual(got, elemsOf(a)) {
		t.Fatalf("A intersect universe should equal A, got %v", got)
	}
}

func TestDenseDifferenceSplit(t *testing.T) {
	a := Dense{First: 0, Last: 10}
	b := Dense{First: 3, Last: 5}
	got := elemsOf(Difference(a, b))
	want := []Pos{0, 1, 2, 6, 7, 8, 9, 10}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestDenseDifferenceCovered(t *testing.T) {
	a := Dense{First: 2, Last: 4}
	b := Dense{First: 0, Last: 10}
	got := Difference(a, b)
	d, ok := got.(Dense)
	if !ok || !d.Empty() {
		t.Fatalf("expected canonical empty Dense, got %#v", got)
	}
}

func TestIndexedShift(t *testing.T) {
	// Indexed{Slice: [5, 7, 9], Shift: 2} denotes logical {3, 5, 7}.
	ix := Indexed{Slice: []Pos{5, 7, 9}, Shift: 2}
	got := elemsOf(ix)
	want := []Pos{3, 5, 7}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestIntersectMatchSetsDeMorgan(t *testing.T) {
	a := explicitOf(1, 2, 3, 4, 5)
	b := explicitOf(3, 4, 5, 6, 7)

	notA := MatchSet{Set: a, Complement: true}
	notB := MatchSet{Set: b, Complement: true}
	plainA := MatchSet{Set: a, Complement: false}
	plainB := MatchSet{Set: b, Complement: false}

	// false,false -> intersect
	r := IntersectMatchSets(plainA, plainB)
	if r.Complement || !reflect.DeepEqual(elemsOf(r.Set), []Pos{3, 4, 5}) {
		t.Fatalf("ff case wrong: %#v", r)
	}

	// false,true -> A \ B
	r = IntersectMatchSets(plainA, notB)
	if r.Complement || !reflect.DeepEqual(elemsOf(r.Set), []Pos{1, 2}) {
		t.Fatalf("ft case wrong: %#v", r)
	}

	// true,false -> B \ A
	r = IntersectMatchSets(notA, plainB)
	if r.Complement || !reflect.DeepEqual(elemsOf(r.Set), []Pos{6, 7}) {
		t.Fatalf("tf case wrong: %#v", r)
	}

	// true,true -> intersect, complement stays true
	r = IntersectMatchSets(notA, notB)
	if !r.Complement || !reflect.DeepEqual(elemsOf(r.Set), []Pos{3, 4, 5}) {
		t.Fatalf("tt case wrong: %#v", r)
	}
}

func BenchmarkIntersectLinear(b *testing.B) {
	oldT := GallopThreshold
	GallopThreshold = 1 << 30
	defer func() { GallopThreshold = oldT }()
	x := make([]Pos, 0, 1000)
	y := make([]Pos, 0, 1000)
	for i := Pos(0); i < 1000; i += 2 {
		x = append(x, i)
	}
	for i := Pos(0); i < 1000; i += 3 {
		y = append(y, i)
	}
	xs, ys := explicitOf(x...), explicitOf(y...)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = Intersect(xs, ys)
	}
}

func BenchmarkIntersectGallop(b *testing.B) {
	oldT := GallopThreshold
	GallopThreshold = 1
	defer func() { GallopThreshold = oldT }()
	small := explicitOf(5, 500, 900)
	big := make([]Pos, 0, 1000)
	for i := Pos(0); i < 1000; i++ {
		big = append(big, i)
	}
	bigSet := explicitOf(big...)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = Intersect(small, bigSet)
	}
}

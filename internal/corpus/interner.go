// Package corpus owns the token store, string interner, and per-attribute
// indexes that the query engine reads. Everything here is built once at
// load time and is immutable afterwards.
package corpus

// Id is a dense identifier assigned to a distinct attribute value string,
// in first-seen order starting at 0.
type Id uint32

// Pos is a token position: an index into a Corpus's token store.
type Pos int32

// Interner maps attribute value strings to dense Ids and back. It is used
// in insert mode while a corpus is loaded and in lookup-only mode while a
// query is compiled.
type Interner struct {
	strToId []map[string]Id
	idToStr [][]string
}

func newInterner() *Interner {
	return &Interner{
		strToId: make([]map[string]Id, numAttrs),
		idToStr: make([][]string, numAttrs),
	}
}

// intern returns the Id for s under attribute attr, assigning a new one in
// first-seen order if s has not been observed before.
func (in *Interner) intern(attr attrIndex, s string) Id {
	if id, ok := in.strToId[attr][s]; ok {
		return id
	}
	id := Id(len(in.idToStr[attr]))
	in.idToStr[attr] = append(in.idToStr[attr], s)
	in.strToId[attr][s] = id
	return id
}

// Lookup returns the Id for s under attribute attr without inserting it.
// The second return value is false if s was never interned.
func (in *Interner) Lookup(attr Attr, s string) (Id, bool) {
	a, ok := attrIndexOf(attr)
	if !ok {
		return 0, false
	}
	id, ok := in.strToId[a][s]
	return id, ok
}

// String returns the value string for id under attribute attr. Panics if id
// is out of range, which indicates a CorpusIntegrity violation upstream.
func (in *Interner) String(attr Attr, id Id) string {
	a, ok := attrIndexOf(attr)
	if !ok {
		panic("corpus: unknown attribute")
	}
	return in.idToStr[a][id]
}

// Size returns the number of distinct values interned for attr.
func (in *Interner) Size(attr Attr) int {
	a, ok := attrIndexOf(attr)
	if !ok {
		return 0
	}
	return len(in.idToStr[a])
}

package corpus

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	cqerrors "github.com/corpusql/corpusql/pkg/errors"
)

// Load reads a tab/whitespace-separated corpus file from path and returns a
// fully indexed Corpus. Format: one token per non-empty, non-comment line
// ("word c5 lemma pos"), "#"-prefixed comment lines, blank lines terminate
// sentences, and the first line is a header that is always skipped.
func Load(path string) (*Corpus, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening corpus file %s: %w", path, err)
	}
	defer f.Close()
	return LoadReader(f)
}

// LoadReader is the format-parsing core of Load, split out so tests can
// build a Corpus from an in-memory string without touching the filesystem.
func LoadReader(r io.Reader) (*Corpus, error) {
	c := &Corpus{interner: newInterner()}
	for a := range c.interner.strToId {
		c.interner.strToId[a] = make(map[string]Id)
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	headerSkipped := false
	inSentence := false

	for scanner.Scan() {
		line := scanner.Text()

		if !headerSkipped {
			headerSkipped = true
			continue
		}

		if line == "" {
			inSentence = false
			continue
		}
		if strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) != 4 {
			return nil, fmt.Errorf("line %q: expected 4 fields, got %d: %w", line, len(fields), cqerrors.ErrCorpusIntegrity)
		}

		tok := Token{
			Word:  c.interner.intern(attrWord, fields[0]),
			C5:    c.interner.intern(attrC5, fields[1]),
			Lemma: c.interner.intern(attrLemma, fields[2]),
			Pos:   c.interner.intern(attrPos, fields[3]),
		}
		if !inSentence {
			inSentence = true
			c.sentences = append(c.sentences, Pos(len(c.tokens)))
		}
		c.tokens = append(c.tokens, tok)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading corpus: %w", err)
	}

	if err := c.checkIntegrity(); err != nil {
		return nil, err
	}
	c.buildIndices()
	return c, nil
}

// checkIntegrity verifies that a freshly loaded Corpus is internally
// consistent before it is handed to a query: every token id resolves in
// the interner and sentence boundaries are strictly increasing and in
// range.
func (c *Corpus) checkIntegrity() error {
	for _, t := range c.tokens {
		if int(t.Word) >= c.interner.Size(Word) ||
			int(t.C5) >= c.interner.Size(C5) ||
			int(t.Lemma) >= c.interner.Size(Lemma) ||
			int(t.Pos) >= c.interner.Size(POS) {
			return fmt.Errorf("token references an id beyond the interner: %w", cqerrors.ErrCorpusIntegrity)
		}
	}
	for i := 1; i < len(c.sentences); i++ {
		if c.sentences[i] <= c.sentences[i-1] {
			return fmt.Errorf("sentence starts are not strictly increasing: %w", cqerrors.ErrCorpusIntegrity)
		}
	}
	if len(c.tokens) > 0 && (len(c.sentences) == 0 || c.sentences[0] != 0) {
		return fmt.Errorf("first sentence must start at position 0: %w", cqerrors.ErrCorpusIntegrity)
	}
	for _, s := range c.sentences {
		if s < 0 || int(s) >= len(c.tokens) {
			return fmt.Errorf("sentence start out of range: %w", cqerrors.ErrCorpusIntegrity)
		}
	}
	return nil
}

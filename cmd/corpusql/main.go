// Command corpusql is an interactive REPL for running positional queries
// against an annotated corpus from a terminal, without standing up the HTTP
// query service. It mirrors the read-query-display loop of the original
// desktop tool this engine was ported from, including its colorized match
// highlighting and a -benchmark mode for timing a fixed query set.
//
// Usage:
//
//	go run ./cmd/corpusql -corpus corpus.txt
//	go run ./cmd/corpusql -corpus corpus.txt -benchmark -runs 25
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/corpusql/corpusql/internal/corpus"
	"github.com/corpusql/corpusql/internal/planner"
	"github.com/corpusql/corpusql/internal/query"
)

const (
	colorRed      = "\033[1;31m"
	colorGreen    = "\033[1;32m"
	colorReset    = "\033[0m"
	boldUnderline = "\033[1;4m"
	maxDisplayed  = 10
)

func main() {
	corpusPath := flag.String("corpus", "corpus.txt", "path to the annotated corpus file")
	strict := flag.Bool("strict", false, "fail on unresolved attribute values instead of reporting zero matches")
	benchmarkMode := flag.Bool("benchmark", false, "time a fixed set of queries instead of starting the REPL")
	runs := flag.Int("runs", 25, "number of runs to average over in -benchmark mode")
	flag.Parse()

	c, err := corpus.Load(*corpusPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading corpus: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Corpus loaded successfully from %s (%d tokens)\n", *corpusPath, c.Len())

	if *benchmarkMode {
		runBenchmark(c, *runs)
		return
	}

	repl(c, *strict)
}

// repl mirrors main.cpp's get_input/handle_input loop: prompt, parse+match,
// display, repeat until an empty line is entered.
func repl(c *corpus.Corpus, strict bool) {
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("\nEnter a query (or leave empty to exit): ")
		if !scanner.Scan() {
			break
		}
		queryText := strings.TrimSpace(scanner.Text())
		if queryText == "" {
			fmt.Println(colorGreen + "Exiting program." + colorReset)
			return
		}
		handleInput(c, queryText, strict)
	}
}

func handleInput(c *corpus.Corpus, queryText string, strict bool) {
	pq, err := query.ParseText(queryText)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return
	}
	q, ok, err := query.Compile(pq, c, strict)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return
	}
	if !ok {
		fmt.Println(colorRed + "No matches found." + colorReset)
		return
	}
	matches := planner.MatchQuery(c, q)
	if len(matches) == 0 {
		fmt.Println(colorRed + "No matches found." + colorReset)
		return
	}
	displayMatches(c, matches)
}

// displayMatches prints up to the first maxDisplayed matches, each as its
// containing sentence with the matched span highlighted in green.
func displayMatches(c *corpus.Corpus, matches []planner.Match) {
	displayed := len(matches)
	if displayed > maxDisplayed {
		displayed = maxDisplayed
	}
	fmt.Printf("Found %d matches. Showing first %d\n", len(matches), displayed)

	for i := 0; i < displayed; i++ {
		m := matches[i]
		start, end := c.SentenceBounds(m.Sentence)

		fmt.Printf("%sMatch %d%s in sentence %d: ", boldUnderline, i+1, colorReset, m.Sentence+1)
		for j := start; j < end; j++ {
			word := c.Interner().String(corpus.Word, c.Token(j).Word)
			if j >= m.Pos && j < m.Pos+corpus.Pos(m.Len) {
				fmt.Print(colorGreen + word + colorReset + " ")
			} else {
				fmt.Print(word + " ")
			}
		}
		fmt.Println()
	}
}

// runBenchmark times a fixed set of representative queries over the loaded
// corpus, mirroring the original tool's run_benchmark harness.
func runBenchmark(c *corpus.Corpus, runs int) {
	queries := []string{
		`[lemma="house" pos!="VERB"]`,
		`[word="the"] [] []`,
		`[lemma="poop"] [lemma="scoop"] [lemma="and"]`,
	}

	for _, qtext := range queries {
		benchmarkOne(c, qtext, runs)
	}
}

func benchmarkOne(c *corpus.Corpus, queryText string, runs int) {
	pq, err := query.ParseText(queryText)
	if err != nil {
		fmt.Printf("%s: parse error: %v\n", queryText, err)
		return
	}
	q, ok, err := query.Compile(pq, c, false)
	if err != nil {
		fmt.Printf("%s: compile error: %v\n", queryText, err)
		return
	}
	if !ok {
		fmt.Printf("%s: zero matches (an operand value never occurs in this corpus)\n", queryText)
		return
	}

	var total time.Duration
	for i := 0; i < runs; i++ {
		start := time.Now()
		planner.MatchQuery(c, q)
		total += time.Since(start)
	}
	average := total / time.Duration(runs)
	fmt.Printf("%s Time taken (average over %d runs): %s\n", queryText, runs, average)
}

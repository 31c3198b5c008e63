// Command lexstat reports on a lexicon file without emitting its keys: row
// and distinct-key counts, duplicate and malformed totals, input size, and
// an order-independent fingerprint of the key set. The fingerprint lets two
// runs (or two mirrors of the same dump) be compared without diffing output.
//
// Example:
//
//	lexstat -file unidic-cwj.csv
//	lexstat -url https://example.com/dumps/lex.csv -lenient
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"github.com/dustin/go-humanize"

	"lexkit/internal/keyset"
	"lexkit/internal/lexicon"
	"lexkit/internal/source"
)

// report holds everything printed by the command.
type report struct {
	Bytes       uint64
	Stats       lexicon.Stats
	Fingerprint uint64
}

// countingReader counts bytes as they pass through.
type countingReader struct {
	r io.Reader
	n uint64
}

func (cr *countingReader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	cr.n += uint64(n)
	return n, err
}

// analyze performs the extraction pass over src and builds the report.
func analyze(ctx context.Context, src source.Source, opt lexicon.Options) (report, error) {
	rc, err := src.Open(ctx)
	if err != nil {
		return report{}, err
	}
	defer rc.Close()

	counted := &countingReader{r: bufio.NewReaderSize(rc, 256*1024)}
	set := keyset.New()
	stats, err := lexicon.NewReader(opt).ExtractKeys(counted, set)
	if err != nil {
		return report{}, err
	}

	return report{
		Bytes:       counted.n,
		Stats:       stats,
		Fingerprint: set.Fingerprint(),
	}, nil
}

// print writes the human-readable summary.
func (r report) print(w io.Writer) {
	fmt.Fprintf(w, "Input size:      %s (%d bytes)\n", humanize.Bytes(r.Bytes), r.Bytes)
	fmt.Fprintf(w, "Rows read:       %d\n", r.Stats.Rows)
	fmt.Fprintf(w, "Distinct keys:   %d\n", r.Stats.Distinct)
	fmt.Fprintf(w, "Duplicates:      %d\n", r.Stats.Duplicates)
	fmt.Fprintf(w, "Malformed rows:  %d\n", r.Stats.Malformed)
	fmt.Fprintf(w, "Set fingerprint: %016x\n", r.Fingerprint)
}

func main() {
	fileFlag := flag.String("file", "", "lexicon file to analyze")
	urlFlag := flag.String("url", "", "URL to fetch the lexicon from")
	commaFlag := flag.String("comma", ",", "field delimiter (single character)")
	columnFlag := flag.Int("column", 0, "zero-based key column index")
	lenientFlag := flag.Bool("lenient", false, "tolerate malformed rows instead of aborting")
	trimFlag := flag.Bool("trim", false, "trim surrounding whitespace from keys")
	flag.Parse()

	if (*fileFlag == "") == (*urlFlag == "") {
		fmt.Fprintln(os.Stderr, "provide exactly one of -file or -url")
		flag.PrintDefaults()
		os.Exit(2)
	}

	comma, _ := utf8.DecodeRuneInString(*commaFlag)
	if comma == utf8.RuneError {
		comma = ','
	}

	var src source.Source
	if *fileFlag != "" {
		src = source.NewFile(*fileFlag)
	} else {
		src = source.NewHTTP(*urlFlag, source.HTTPConfig{})
	}

	rep, err := analyze(context.Background(), src, lexicon.Options{
		Comma:     comma,
		Column:    *columnFlag,
		TrimSpace: *trimFlag,
		Lenient:   *lenientFlag,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "lexstat: %v\n", err)
		os.Exit(1)
	}
	rep.print(os.Stdout)
}

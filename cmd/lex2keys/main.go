// Command lex2keys prints the distinct first-column values of a delimited
// lexicon file, sorted ascending by byte value, one key per line.
//
// Usage:
//
//	lex2keys <lex_path>
//
// The single positional argument is the path to the lexicon; no flags or
// environment variables are recognized. The file is parsed as standard CSV
// (quoted fields may contain embedded commas, newlines, and doubled double
// quotes); only column 0 is used. Output goes to stdout. The command exits
// 0 on success (including an empty input, which prints nothing), 1 on I/O
// or parse failures, and 2 on usage errors.
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"lexkit/internal/keyset"
	"lexkit/internal/lexicon"
	"lexkit/internal/source"
)

// run extracts keys from the lexicon at path and writes the sorted set to
// out. It performs no logging or exiting itself so tests can drive it with
// in-memory writers.
func run(path string, out io.Writer) error {
	rc, err := source.NewFile(path).Open(context.Background())
	if err != nil {
		return err
	}
	defer rc.Close()

	set := keyset.New()
	rd := lexicon.NewReader(lexicon.Options{})
	if _, err := rd.ExtractKeys(bufio.NewReaderSize(rc, 256*1024), set); err != nil {
		return err
	}

	w := bufio.NewWriterSize(out, 256*1024)
	if _, err := set.WriteTo(w); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return w.Flush()
}

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <lex_path>\n", filepath.Base(os.Args[0]))
		os.Exit(2)
	}
	if err := run(os.Args[1], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "lex2keys: %v\n", err)
		os.Exit(1)
	}
}

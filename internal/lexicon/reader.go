// Package lexicon reads delimited lexicon files and extracts the key column
// into a keyset.
//
// The input format is standard CSV: one record per line, fields split on the
// delimiter, double-quoted fields may contain embedded delimiters, newlines,
// and doubled double-quotes. Only the configured key column is semantically
// used; all other fields are ignored, and records may have any width as long
// as the key column exists.
//
// Blank-line policy: encoding/csv consumes empty physical lines without
// yielding a record, so a row with zero fields never reaches extraction.
// Blank lines are therefore skipped, not errors. A record whose first field
// is an empty string (e.g. a line of just ",x") does have a key - the empty
// string - and is collected like any other value.
package lexicon

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"lexkit/internal/keyset"
)

// utf8BOM is stripped from the very first key of the input if present.
const utf8BOM = "\uFEFF"

// Options configures key extraction. All fields are optional; zero values
// select sensible defaults.
type Options struct {
	// Comma is the field delimiter. When zero, ',' is used.
	Comma rune

	// Column is the zero-based index of the key column. Default 0.
	Column int

	// TrimSpace trims leading/trailing ASCII whitespace from extracted keys.
	// Off by default: keys are opaque strings and pass through verbatim.
	TrimSpace bool

	// Lenient relaxes parsing: quoting irregularities are tolerated
	// (LazyQuotes) and rows that still fail to parse, or that are too short
	// to contain the key column, are counted and skipped instead of
	// aborting. When false (the default), the first malformed row is fatal.
	Lenient bool
}

// Stats summarizes one extraction pass.
type Stats struct {
	// Rows is the number of records successfully read.
	Rows int

	// Distinct is the number of keys inserted into the set by this pass.
	Distinct int

	// Duplicates counts extracted keys that were already present.
	Duplicates int

	// Malformed counts rows skipped in lenient mode. Always zero in strict
	// mode, where the first bad row aborts the pass.
	Malformed int
}

// Reader extracts keys from CSV input according to Options. A Reader is
// stateless and may be reused across inputs; it is not concurrency-safe.
type Reader struct{ opt Options }

// NewReader constructs a Reader with the provided Options.
func NewReader(opt Options) *Reader { return &Reader{opt: opt} }

// ExtractKeys performs a single pass over r, inserting the key column of
// every record into set. It returns per-pass statistics and the first fatal
// error, if any. On error the set retains the keys collected before the
// failing row; callers treating errors as fatal should discard it.
func (rd *Reader) ExtractKeys(r io.Reader, set *keyset.Set) (Stats, error) {
	cr := csv.NewReader(r)
	if rd.opt.Comma != 0 {
		cr.Comma = rd.opt.Comma
	}
	cr.FieldsPerRecord = -1 // record width varies; only the key column matters
	cr.ReuseRecord = true
	cr.LazyQuotes = rd.opt.Lenient

	col := rd.opt.Column
	if col < 0 {
		return Stats{}, fmt.Errorf("lexicon: key column %d out of range", col)
	}

	var stats Stats
	first := true
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			return stats, nil
		}
		if err != nil {
			if rd.opt.Lenient {
				stats.Malformed++
				continue
			}
			return stats, fmt.Errorf("parse lexicon: %w", err)
		}
		if col >= len(rec) {
			if rd.opt.Lenient {
				stats.Malformed++
				continue
			}
			return stats, fmt.Errorf("parse lexicon: row %d has %d field(s), key column %d missing", line, len(rec), col)
		}

		stats.Rows++

		key := rec[col]
		if first {
			first = false
			if col == 0 {
				key = strings.TrimPrefix(key, utf8BOM)
			}
		}
		if rd.opt.TrimSpace && hasEdgeSpace(key) {
			key = strings.TrimSpace(key)
		}

		if set.Add(key) {
			stats.Distinct++
		} else {
			stats.Duplicates++
		}
	}
}

// hasEdgeSpace reports whether s starts or ends with ASCII whitespace. It
// checks only the boundary bytes so the common no-trim case stays cheap.
func hasEdgeSpace(s string) bool {
	if s == "" {
		return false
	}
	return isSpace(s[0]) || isSpace(s[len(s)-1])
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

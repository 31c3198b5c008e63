// Package keyset implements the distinct-key accumulator used by the lexkit
// commands.
//
// A Set collects opaque strings with exact-equality membership semantics.
// Accumulation is unordered; ordering happens exactly once, at emit time,
// by ascending byte value. This mirrors the lifecycle of a key extraction
// run: create empty, populate during a single pass over the input, consume
// once to produce sorted output, discard.
package keyset

import (
	"io"
	"sort"

	"github.com/zeebo/xxh3"
)

// Set collects distinct strings. Use New to construct one; the zero value
// has no backing storage. Set is not safe for concurrent use.
type Set struct {
	m map[string]struct{}
}

// New returns an empty Set.
func New() *Set { return &Set{m: make(map[string]struct{})} }

// Add inserts key into the set and reports whether it was absent before the
// call. Adding a key that is already present is a no-op.
func (s *Set) Add(key string) bool {
	if _, ok := s.m[key]; ok {
		return false
	}
	s.m[key] = struct{}{}
	return true
}

// Has reports whether key is a member of the set.
func (s *Set) Has(key string) bool {
	_, ok := s.m[key]
	return ok
}

// Len returns the number of distinct keys collected so far.
func (s *Set) Len() int { return len(s.m) }

// SortedKeys returns the members in ascending byte order. Go string
// comparison is byte-wise, so sort.Strings yields exactly the ordinal
// ordering required for deterministic output. The returned slice is owned
// by the caller.
func (s *Set) SortedKeys() []string {
	keys := make([]string, 0, len(s.m))
	for k := range s.m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// WriteTo writes every member to w in sorted order, one per line, each
// terminated by a single '\n'. It returns the number of bytes written and
// the first write error encountered, if any. An empty set writes nothing.
func (s *Set) WriteTo(w io.Writer) (int64, error) {
	var written int64
	for _, k := range s.SortedKeys() {
		n, err := io.WriteString(w, k)
		written += int64(n)
		if err != nil {
			return written, err
		}
		n, err = w.Write(nl)
		written += int64(n)
		if err != nil {
			return written, err
		}
	}
	return written, nil
}

var nl = []byte{'\n'}

// Fingerprint returns an xxh3 hash over the sorted members, each followed by
// a NUL separator so that key boundaries cannot alias ("ab","c" vs "a","bc").
// Two sets have equal fingerprints iff they contain the same keys, which
// makes the fingerprint a cheap cross-run determinism check.
func (s *Set) Fingerprint() uint64 {
	h := xxh3.New()
	for _, k := range s.SortedKeys() {
		_, _ = h.WriteString(k)
		_, _ = h.Write([]byte{0})
	}
	return h.Sum64()
}

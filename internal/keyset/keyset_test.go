package keyset

import (
	"bytes"
	"reflect"
	"testing"
)

func TestAddReportsFirstInsertion(t *testing.T) {
	t.Parallel()

	s := New()
	if !s.Add("a") {
		t.Fatalf("Add(a) on empty set = false, want true")
	}
	if s.Add("a") {
		t.Fatalf("second Add(a) = true, want false")
	}
	if !s.Add("") {
		t.Fatalf("Add of empty string = false, want true; empty keys are ordinary members")
	}
	if got := s.Len(); got != 2 {
		t.Fatalf("Len() = %d, want 2", got)
	}
	if !s.Has("a") || !s.Has("") || s.Has("b") {
		t.Fatalf("membership mismatch: Has(a)=%v Has(\"\")=%v Has(b)=%v", s.Has("a"), s.Has(""), s.Has("b"))
	}
}

func TestSortedKeysByteOrder(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{
			name: "plain_ascii",
			in:   []string{"z", "m", "m", "a"},
			want: []string{"a", "m", "z"},
		},
		{
			// Byte-wise ordering puts uppercase before lowercase and
			// multibyte UTF-8 sequences after ASCII.
			name: "byte_not_locale_order",
			in:   []string{"b", "A", "é", "B"},
			want: []string{"A", "B", "b", "é"},
		},
		{
			name: "empty_key_sorts_first",
			in:   []string{"x", ""},
			want: []string{"", "x"},
		},
		{
			name: "empty_set",
			in:   nil,
			want: []string{},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := New()
			for _, k := range tt.in {
				s.Add(k)
			}
			got := s.SortedKeys()
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SortedKeys() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWriteTo(t *testing.T) {
	t.Parallel()

	s := New()
	for _, k := range []string{"b", "a", "b"} {
		s.Add(k)
	}

	var buf bytes.Buffer
	n, err := s.WriteTo(&buf)
	if err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	want := "a\nb\n"
	if buf.String() != want {
		t.Errorf("WriteTo output = %q, want %q", buf.String(), want)
	}
	if n != int64(len(want)) {
		t.Errorf("WriteTo bytes = %d, want %d", n, len(want))
	}
}

func TestWriteToEmptySet(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	n, err := New().WriteTo(&buf)
	if err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	if n != 0 || buf.Len() != 0 {
		t.Errorf("empty set wrote %d bytes (%q), want none", n, buf.String())
	}
}

func TestFingerprint(t *testing.T) {
	t.Parallel()

	a := New()
	b := New()
	// Same members in different insertion order.
	for _, k := range []string{"x", "y", "z"} {
		a.Add(k)
	}
	for _, k := range []string{"z", "x", "y", "x"} {
		b.Add(k)
	}
	if a.Fingerprint() != b.Fingerprint() {
		t.Errorf("equal sets disagree: %#x vs %#x", a.Fingerprint(), b.Fingerprint())
	}

	// Key boundaries must not alias.
	c := New()
	c.Add("ab")
	c.Add("c")
	d := New()
	d.Add("a")
	d.Add("bc")
	if c.Fingerprint() == d.Fingerprint() {
		t.Errorf("{ab,c} and {a,bc} share fingerprint %#x", c.Fingerprint())
	}

	b.Add("w")
	if a.Fingerprint() == b.Fingerprint() {
		t.Errorf("differing sets share fingerprint %#x", a.Fingerprint())
	}
}

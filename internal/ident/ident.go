// Package ident derives SQL-safe identifiers from lexicon file names.
// Open-data lexicons frequently carry diacritics and punctuation in their
// file names (e.g. "slovník_unidic-čt.csv"); table names derived from them
// must be plain lowercase ASCII.
package ident

import (
	"path"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// TableName returns a deterministic table identifier for the lexicon at p,
// which may be a filesystem path or a URL path. The base name minus its
// extension is folded to ASCII (decompose, strip nonspacing marks,
// recompose), lowercased, and squeezed to [a-z0-9_]. A leading digit gets a
// "t_" prefix; an empty result falls back to "lexicon_keys".
func TableName(p string) string {
	base := path.Base(strings.ReplaceAll(p, "\\", "/"))
	if i := strings.LastIndexByte(base, '.'); i > 0 {
		base = base[:i]
	}
	s := strings.ToLower(strings.TrimSpace(base))

	// Decompose, drop nonspacing marks (accents), recompose.
	t := transform.Chain(
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)),
		norm.NFC,
	)
	ascii, _, _ := transform.String(t, s)

	var b strings.Builder
	prevUnderscore := true // also swallows leading separators
	for _, r := range ascii {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			prevUnderscore = false
		case r == '_' || r == ' ' || r == '-' || r == '.':
			if !prevUnderscore {
				b.WriteRune('_')
				prevUnderscore = true
			}
		default:
			// drop anything else
		}
	}

	name := strings.TrimRight(b.String(), "_")
	if name == "" {
		return "lexicon_keys"
	}
	if name[0] >= '0' && name[0] <= '9' {
		name = "t_" + name
	}
	return name
}

package schema

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// NormalizeHeader turns a raw column label into the key used for alias
// matching: compatibility forms are folded (full-width letters, ligatures),
// surrounding whitespace is trimmed, whitespace runs collapse, every rune
// that is not a letter or digit is dropped and the rest is uppercased.
//
// Two headers are equivalent iff their keys are equal.
func NormalizeHeader(raw any) string {
	var s string
	switch v := raw.(type) {
	case nil:
		return ""
	case string:
		s = v
	case fmt.Stringer:
		s = v.String()
	default:
		s = fmt.Sprint(v)
	}

	s = norm.NFKC.String(s)
	s = strings.Join(strings.Fields(s), " ")

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToUpper(r))
		}
	}
	return b.String()
}

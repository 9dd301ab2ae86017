package pii

import (
	"regexp"
	"strings"
)

// SpaceChars is the body of a character class matching the whitespace set of
// JavaScript's \s. RE2's \s covers only [\t\n\f\r ], which misses vertical tab
// and the Unicode spaces (U+00A0 in particular) common in pasted text.
const SpaceChars = `\s\v\x{00A0}\x{1680}\x{2000}-\x{200A}\x{2028}\x{2029}\x{202F}\x{205F}\x{3000}\x{FEFF}`

// ExpandSpace rewrites every \s in pattern to SpaceChars, bracketed when the
// escape appears outside a character class
func ExpandSpace(pattern string) string {
	var b strings.Builder
	inClass := false
	for i := 0; i < len(pattern); i++ {
		c := pattern[i]
		switch {
		case c == '\\' && i+1 < len(pattern):
			next := pattern[i+1]
			i++
			if next == 's' {
				if inClass {
					b.WriteString(SpaceChars)
				} else {
					b.WriteString("[" + SpaceChars + "]")
				}
				continue
			}
			b.WriteByte(c)
			b.WriteByte(next)
		case c == '[' && !inClass:
			inClass = true
			b.WriteByte(c)
		case c == ']' && inClass:
			inClass = false
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// MustCompile compiles pattern with \s widened by ExpandSpace
func MustCompile(pattern string) *regexp.Regexp {
	return regexp.MustCompile(ExpandSpace(pattern))
}

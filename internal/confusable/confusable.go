// Package confusable finds characters that make text read differently from
// how it matches: invisible format characters, bidirectional controls, tag
// characters, raw control bytes, invalid UTF-8 and Latin look-alikes from the
// Cyrillic and Greek scripts.
//
// Findings are diagnostic. Guards report them but never decide on them.
package confusable

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Categories reported in Finding.Category.
const (
	ZeroWidth   = "zero-width"
	Bidi        = "bidi"
	Tag         = "tag"
	Control     = "control"
	InvalidUTF8 = "invalid-utf8"
	Homoglyph   = "homoglyph"
)

// Finding is one suspicious character.
type Finding struct {
	Category string
	// Codepoint is "U+XXXX", or "0xXX" for an invalid byte.
	Codepoint string
	// Offset is the byte offset in the scanned text.
	Offset int
	// LooksLike is the Latin letter a homoglyph imitates.
	LooksLike rune
}

func (f Finding) String() string {
	if f.Category == Homoglyph {
		return fmt.Sprintf("%s %s(%c)@%d", f.Codepoint, f.Category, f.LooksLike, f.Offset)
	}
	return fmt.Sprintf("%s %s@%d", f.Codepoint, f.Category, f.Offset)
}

// Find scans s and returns its findings in offset order.
func Find(s string) []Finding {
	var findings []Finding
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			findings = append(findings, Finding{Category: InvalidUTF8, Codepoint: fmt.Sprintf("0x%02X", s[i]), Offset: i})
			i++
			continue
		}
		if category, like := classify(r); category != "" {
			findings = append(findings, Finding{
				Category:  category,
				Codepoint: fmt.Sprintf("U+%04X", r),
				Offset:    i,
				LooksLike: like,
			})
		}
		i += size
	}
	return findings
}

// Summary joins findings for a single log attribute or display row.
func Summary(findings []Finding) string {
	parts := make([]string, len(findings))
	for i, f := range findings {
		parts[i] = f.String()
	}
	return strings.Join(parts, ", ")
}

func classify(r rune) (string, rune) {
	switch {
	case zeroWidth[r]:
		return ZeroWidth, 0
	case bidi[r]:
		return Bidi, 0
	case r >= 0xE0001 && r <= 0xE007F:
		return Tag, 0
	case isControl(r):
		return Control, 0
	}
	if like, ok := lookalikes[r]; ok {
		return Homoglyph, like
	}
	return "", 0
}

// isControl covers C0, DEL and C1, except tab, newline and carriage return.
func isControl(r rune) bool {
	if r == '\t' || r == '\n' || r == '\r' {
		return false
	}
	return r <= 0x1F || r == 0x7F || (r >= 0x80 && r <= 0x9F)
}

var zeroWidth = map[rune]bool{
	'\u200B': true, '\u200C': true, '\u200D': true, '\u2060': true,
	'\uFEFF': true, '\u180E': true, '\u200E': true, '\u200F': true,
}

var bidi = map[rune]bool{
	'\u202A': true, '\u202B': true, '\u202C': true, '\u202D': true, '\u202E': true,
	'\u2066': true, '\u2067': true, '\u2068': true, '\u2069': true,
}

// lookalikes maps Cyrillic and Greek letters to the Latin letter they imitate.
var lookalikes = map[rune]rune{
	// Cyrillic
	'а': 'a', 'А': 'A', 'В': 'B', 'с': 'c', 'С': 'C', 'е': 'e', 'Е': 'E',
	'Н': 'H', 'і': 'i', 'І': 'I', 'К': 'K', 'М': 'M', 'о': 'o', 'О': 'O',
	'р': 'p', 'Р': 'P', 'Т': 'T', 'х': 'x', 'Х': 'X', 'у': 'y', 'У': 'Y',
	// Greek
	'Α': 'A', 'Β': 'B', 'Ε': 'E', 'Η': 'H', 'Ι': 'I', 'Κ': 'K', 'Μ': 'M',
	'Ν': 'N', 'Ο': 'O', 'ο': 'o', 'Ρ': 'P', 'Τ': 'T', 'Χ': 'X', 'Υ': 'Y',
	'Ζ': 'Z',
}

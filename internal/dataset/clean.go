package dataset

import (
	"fmt"
	"math"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// CleanText normalizes a text-like value: lower-cases it, trims surrounding
// whitespace and drops every rune that is not a letter, number, underscore or
// whitespace. Absent values (nil, a nil *string, NaN) become "".
func CleanText(v any) string {
	var s string
	switch x := v.(type) {
	case nil:
		return ""
	case *string:
		if x == nil {
			return ""
		}
		s = *x
	case string:
		s = x
	case float64:
		if math.IsNaN(x) {
			return ""
		}
		s = fmt.Sprint(x)
	case fmt.Stringer:
		s = x.String()
	default:
		s = fmt.Sprint(x)
	}
	s = strings.TrimFunc(cases.Lower(language.Und).String(s), isSpace)
	s = strings.Map(keepWordOrSpace, s)
	// Removing symbols can expose new edge whitespace ("! hi" -> " hi").
	return strings.TrimFunc(s, isSpace)
}

// isSpace is unicode.IsSpace plus the ASCII information separators
// U+001C..U+001F.
func isSpace(r rune) bool {
	return unicode.IsSpace(r) || (r >= 0x1c && r <= 0x1f)
}

func keepWordOrSpace(r rune) rune {
	if r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r) || isSpace(r) {
		return r
	}
	return -1
}

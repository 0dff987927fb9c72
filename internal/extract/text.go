package extract

import (
	"math"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Fold returns the caseless form of s used for keyword and unit comparison.
// It works for Latin and Cyrillic alike ("Клапан" and "клапан" fold equal).
func Fold(s string) string {
	return cases.Fold().String(norm.NFC.String(strings.TrimSpace(s)))
}

// Lower returns the trimmed, NFC-normalized, lower-cased s. Size patterns are
// matched against this form.
func Lower(s string) string {
	return cases.Lower(language.Und).String(norm.NFC.String(strings.TrimSpace(s)))
}

// Tokens splits s on whitespace and commas.
func Tokens(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == ','
	})
}

// ParseNumber parses cell text as a locale-invariant decimal. "nan", "inf"
// and out-of-range literals are rejected.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || !IsFinite(v) {
		return 0, false
	}
	return v, true
}

// IsFinite reports whether v is neither NaN nor an infinity.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// FormatTemplate replaces {0}, {1}... in tmpl with the shortest decimal
// rendering of the matching value.
func FormatTemplate(tmpl string, values ...float64) string {
	out := tmpl
	for i, v := range values {
		out = strings.ReplaceAll(out, "{"+strconv.Itoa(i)+"}", strconv.FormatFloat(v, 'f', -1, 64))
	}
	return out
}

// HasPlaceholders reports whether tmpl contains {0}..{n-1}.
func HasPlaceholders(tmpl string, n int) bool {
	for i := 0; i < n; i++ {
		if !strings.Contains(tmpl, "{"+strconv.Itoa(i)+"}") {
			return false
		}
	}
	return true
}

package fields

import (
	"strings"
	"unicode"
)

// Boilerplate labels that precede a company name in supplier blocks.
var partyLabels = []string{"Company Name", "Nom de la Société"}

// NormalizeAmount drops every whitespace character and turns decimal commas into dots:
// "1 234,56" -> "1234.56". Nothing else is touched.
func NormalizeAmount(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	return strings.ReplaceAll(s, ",", ".")
}

// NormalizeCurrency uppercases the matched token; "Dirhams" stays "DIRHAMS".
func NormalizeCurrency(s string) string {
	return strings.ToUpper(s)
}

// FirstLine returns the first line of s, trimmed.
func FirstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

// StripLabel removes the company-name labels wherever they occur and trims the rest.
func StripLabel(s string) string {
	for _, l := range partyLabels {
		s = strings.ReplaceAll(s, l, "")
	}
	return strings.TrimSpace(s)
}

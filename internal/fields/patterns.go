// Package fields holds the deterministic extractors: per-field pattern rules, the
// domicile clause party parser, the first-page object heuristic and value normalizers.
package fields

import (
	"regexp"
	"strings"

	"github.com/joseph-ayodele/contract-extractor/constants"
)

// Rule binds a field to the pattern and capture group that extract it.
type Rule struct {
	Field   constants.Field
	Pattern *regexp.Regexp
	Group   int
}

// Rules is the pattern table for the structurally predictable fields, in extraction order.
// All patterns are case-insensitive. \p{Zs} covers no-break and narrow no-break spaces used
// as French thousands separators. The amount stays on its own line.
var Rules = []Rule{
	{
		Field:   constants.ContractNumber,
		Pattern: regexp.MustCompile(`(?i)CONTRAT\s*(?:N°|No)\s*([A-Z0-9/.-]+)`),
		Group:   1,
	},
	{
		Field:   constants.TotalAmount,
		Pattern: regexp.MustCompile(`(?i)Montant\s+(?:HT|total)[^\d]*([\d \t\p{Zs}.,]+)`),
		Group:   1,
	},
	{
		Field:   constants.Currency,
		Pattern: regexp.MustCompile(`(?i)\b(MAD|Dirhams?|DH|EUR|USD)\b`),
		Group:   1,
	},
	{
		Field:   constants.Date,
		Pattern: regexp.MustCompile(`(?i)\b(20\d{2})\b`),
		Group:   1,
	},
}

// ExtractField returns the trimmed capture group of the first match of re in text.
// A miss, an out-of-range group or a blank capture all report ok == false.
func ExtractField(text string, re *regexp.Regexp, group int) (string, bool) {
	if re == nil || group < 0 || group > re.NumSubexp() {
		return "", false
	}
	m := re.FindStringSubmatchIndex(text)
	if m == nil || m[2*group] < 0 {
		return "", false
	}
	v := strings.TrimSpace(text[m[2*group]:m[2*group+1]])
	if v == "" {
		return "", false
	}
	return v, true
}

// ApplyRules runs every rule against text and returns the fields that matched.
func ApplyRules(text string, rules []Rule) map[constants.Field]string {
	out := make(map[constants.Field]string, len(rules))
	for _, r := range rules {
		if v, ok := ExtractField(text, r.Pattern, r.Group); ok {
			out[r.Field] = v
		}
	}
	return out
}

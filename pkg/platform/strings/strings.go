// Package strings holds the small string helpers shared by config parsing and
// request validation.
package strings

import (
	"strings"
	"unicode"
)

// SplitList splits a comma-separated setting such as KAFKA_BROKERS.
// Elements are trimmed; blanks and repeats are dropped, first occurrence wins.
func SplitList(csv string) []string {
	var out []string
	seen := map[string]bool{}
	for part := range strings.SplitSeq(csv, ",") {
		part = strings.TrimSpace(part)
		if part == "" || seen[part] {
			continue
		}
		seen[part] = true
		out = append(out, part)
	}
	return out
}

// SnakeCase turns a Go field name into its JSON spelling for error messages:
// "VerificationKey" becomes "verification_key", "MaxOpenDB" becomes "max_open_db".
func SnakeCase(name string) string {
	runes := []rune(name)
	var b strings.Builder
	b.Grow(len(name) + 4)
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) {
			prevLower := unicode.IsLower(runes[i-1])
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if prevLower || nextLower {
				b.WriteByte('_')
			}
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

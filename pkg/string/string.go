// Package string carries small string helpers shared across packages.
package string

import (
	"strings"
	"unicode"
)

// ToSnakeCase converts CamelCase identifiers to snake_case, matching
// the JSON field names the API surfaces use.
func ToSnakeCase(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		if unicode.IsUpper(r) && i > 0 &&
			(unicode.IsLower(runes[i-1]) || (i+1 < len(runes) && unicode.IsLower(runes[i+1]))) {
			b.WriteByte('_')
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// Package extract turns parsed HTML into the normalized strings,
// sections, and page metadata the clipper sends to Tana.
package extract

import "strings"

// Normalize collapses all whitespace runs in s (including NBSP, CR, LF
// and tabs) into single spaces and trims the ends. It returns "" when
// nothing remains, and filters the "undefined" sentinel that broken
// clients serialize into meta tags.
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	s = strings.ReplaceAll(s, " ", " ")
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return ""
	}
	if strings.EqualFold(s, "undefined") || strings.EqualFold(s, `"undefined"`) {
		return ""
	}
	return s
}

package util

import "strings"

func CleanText(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimSpace(s)
}

// FirstCommaTokenDropped removes the leading comma-delimited token, which
// Greenhouse locations use for a neighbourhood or office qualifier.
func FirstCommaTokenDropped(loc string) string {
	loc = CleanText(loc)
	if _, rest, ok := strings.Cut(loc, ","); ok && strings.TrimSpace(rest) != "" {
		return strings.TrimSpace(rest)
	}
	return loc
}

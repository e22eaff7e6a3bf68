package overrides

import "strings"

// globToLike translates a curator glob into a SQL LIKE pattern: * becomes
// %, ? becomes _, and literal %, _, and \ in the glob are escaped so they
// only match themselves.
func globToLike(glob string) string {
	var b strings.Builder
	b.Grow(len(glob))
	for _, r := range glob {
		switch r {
		case '*':
			b.WriteByte('%')
		case '?':
			b.WriteByte('_')
		case '%', '_', '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

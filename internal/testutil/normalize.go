package testutil

import "strings"

// NormalizeText converts CRLF and CR line endings to LF and strips a
// leading byte order mark.
func NormalizeText(s string) string {
	s = strings.TrimPrefix(s, "\ufeff")
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

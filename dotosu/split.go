package dotosu

import "strings"

// Split cuts s at every non-overlapping occurrence of delim, scanning left to
// right. Consecutive delimiters produce empty fields and the remainder after
// the last delimiter is always the final field, so Split("", ",") is [""].
// Fields are returned verbatim: no trimming and no quote handling.
func Split(s, delim string) []string {
	if delim == "" {
		return []string{s}
	}
	return strings.Split(s, delim)
}

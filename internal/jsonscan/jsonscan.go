// Package jsonscan pulls JSON values out of prose. Language models often wrap
// their structured answer in commentary or markdown fences, so callers scan for
// the first bracket-delimited substring instead of decoding the whole body.
package jsonscan

import "strings"

// FirstArray returns the substring spanning the first '[' through the last ']'
// of s, or "" and false when no such span exists.
func FirstArray(s string) (string, bool) {
	return span(s, '[', ']')
}

// FirstObject returns the substring spanning the first '{' through the last '}'
// of s, or "" and false when no such span exists.
func FirstObject(s string) (string, bool) {
	return span(s, '{', '}')
}

func span(s string, open, close byte) (string, bool) {
	start := strings.IndexByte(s, open)
	if start < 0 {
		return "", false
	}
	end := strings.LastIndexByte(s, close)
	if end <= start {
		return "", false
	}
	return s[start : end+1], true
}

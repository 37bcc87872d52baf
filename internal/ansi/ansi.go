// Package ansi strips terminal escape sequences from ingested log
// text: ingested files routinely carry color codes from the process
// that wrote them, and those codes must not corrupt severity
// classification, filter matching, or the rendered row.
package ansi

import "regexp"

var escapeSequence = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// Strip removes ANSI CSI escape sequences (color codes, cursor moves)
// from s, leaving the visible text untouched.
func Strip(s string) string {
	if !containsEscape(s) {
		return s
	}
	return escapeSequence.ReplaceAllString(s, "")
}

func containsEscape(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] == 0x1b {
			return true
		}
	}
	return false
}

// Package classify maps a single log line's text to a severity level.
package classify

import (
	"strings"

	"github.com/alienxp03/logbench/internal/ansi"
)

// Severity is one of the six levels the workbench recognizes.
type Severity int

const (
	OTHER Severity = iota
	TRACE
	DEBUG
	INFO
	WARN
	ERROR
)

func (s Severity) String() string {
	switch s {
	case TRACE:
		return "TRACE"
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return "OTHER"
	}
}

// ParseSeverity parses the textual form used in filter configs and
// persisted rows. Unknown strings map to OTHER.
func ParseSeverity(s string) Severity {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TRACE":
		return TRACE
	case "DEBUG":
		return DEBUG
	case "INFO":
		return INFO
	case "WARN", "WARNING":
		return WARN
	case "ERROR", "ERR":
		return ERROR
	default:
		return OTHER
	}
}

// needle/level pairs, tested in order. The first whole-word hit
// anywhere in the line wins, not just the line's first token.
var candidates = []struct {
	level  Severity
	tokens []string
}{
	{TRACE, []string{"TRACE"}},
	{DEBUG, []string{"DEBUG"}},
	{INFO, []string{"INFO"}},
	{WARN, []string{"WARN", "WARNING"}},
	{ERROR, []string{"ERR", "ERROR"}},
}

// Classify is a pure, total function: every input maps to exactly one
// Severity, never an error. Embedded ANSI escape sequences (common in
// logs emitted by a color-aware process) are stripped before scanning
// so they can't split a token across an escape code.
func Classify(line string) Severity {
	upper := strings.ToUpper(ansi.Strip(line))
	for _, c := range candidates {
		for _, tok := range c.tokens {
			if containsWholeWord(upper, tok) {
				return c.level
			}
		}
	}
	return OTHER
}

// containsWholeWord reports whether tok occurs in s bounded on both
// sides by a non-word byte (anything but a letter, digit or underscore)
// or the string edge. s and tok are both assumed upper-cased already.
func containsWholeWord(s, tok string) bool {
	n := len(tok)
	for i := 0; i+n <= len(s); i++ {
		if s[i:i+n] != tok {
			continue
		}
		if i > 0 && isWordByte(s[i-1]) {
			continue
		}
		if i+n < len(s) && isWordByte(s[i+n]) {
			continue
		}
		return true
	}
	return false
}

func isWordByte(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9') || b == '_'
}

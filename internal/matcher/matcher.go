// Package matcher compiles a filter configuration into a predicate
// over line text, returning match/no-match plus the character ranges
// that matched.
package matcher

import (
	"regexp"
	"strings"

	"github.com/alienxp03/logbench/internal/classify"
)

// Mode selects between literal substring matching and regex matching.
type Mode int

const (
	ModeText Mode = iota
	ModeRegex
)

// Config is the user-facing filter configuration. An empty Query
// matches every line (subject to Level).
type Config struct {
	Query         string
	Mode          Mode
	CaseSensitive bool
	Level         classify.Severity // LevelAll disables the severity filter; classify.OTHER filters to unclassified lines
}

// LevelAll is the sentinel meaning "no severity filter"; it is distinct
// from classify.OTHER (a real, matchable severity), so Config.Level
// uses this pseudo-value rather than overloading OTHER.
const LevelAll classify.Severity = -1

// Range is a half-open [From,To) span of byte offsets within the
// matched text.
type Range struct {
	From, To int
}

// Result is the outcome of running a compiled matcher against one line.
type Result struct {
	Match  bool
	Ranges []Range
}

// Matcher is a compiled predicate, safe for concurrent reuse across lines.
type Matcher struct {
	cfg    Config
	re     *regexp.Regexp // nil in text mode, or when regex compile failed
	needle string         // pre-folded needle in text mode
	valid  bool           // false when regex mode failed to compile
}

// Compile builds a Matcher from cfg. An empty Query always matches
// (Result.Match stays true with no ranges). An invalid regex compiles
// successfully to a Matcher that always reports no match; it never
// returns an error.
func Compile(cfg Config) *Matcher {
	m := &Matcher{cfg: cfg, valid: true}
	if cfg.Query == "" {
		return m
	}
	if cfg.Mode == ModeRegex {
		pattern := cfg.Query
		if !cfg.CaseSensitive {
			pattern = "(?i)" + pattern
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			m.valid = false
			return m
		}
		m.re = re
		return m
	}
	m.needle = cfg.Query
	if !cfg.CaseSensitive {
		m.needle = strings.ToLower(m.needle)
	}
	return m
}

// Match runs the compiled predicate against text, additionally
// requiring severity to pass when a non-ALL level is configured.
func (m *Matcher) Match(text string) Result {
	if m.cfg.Level != LevelAll && classify.Classify(text) != m.cfg.Level {
		return Result{Match: false}
	}
	if m.cfg.Query == "" {
		return Result{Match: true}
	}
	if !m.valid {
		return Result{Match: false}
	}
	if m.cfg.Mode == ModeRegex {
		return m.matchRegex(text)
	}
	return m.matchText(text)
}

func (m *Matcher) matchText(text string) Result {
	haystack := text
	if !m.cfg.CaseSensitive {
		haystack = strings.ToLower(haystack)
	}
	needle := m.needle
	if needle == "" {
		return Result{Match: true}
	}
	var ranges []Range
	start := 0
	for {
		idx := strings.Index(haystack[start:], needle)
		if idx < 0 {
			break
		}
		from := start + idx
		to := from + len(needle)
		ranges = append(ranges, Range{From: from, To: to})
		start = to
		if start >= len(haystack) {
			break
		}
	}
	return Result{Match: len(ranges) > 0, Ranges: ranges}
}

func (m *Matcher) matchRegex(text string) Result {
	locs := m.re.FindAllStringIndex(text, -1)
	if locs == nil {
		return Result{Match: false}
	}
	ranges := make([]Range, 0, len(locs))
	for _, loc := range locs {
		ranges = append(ranges, Range{From: loc[0], To: loc[1]})
	}
	return Result{Match: true, Ranges: ranges}
}

// Package tsformat extracts an embedded timestamp from a log line and
// renders it in a display timezone.
package tsformat

import (
	"regexp"
	"time"
)

type pattern struct {
	re     *regexp.Regexp
	layout string
}

// patterns covers the common encodings found in practice: ISO 8601,
// syslog-ish "Mon 2 15:04:05", common-log-format brackets, and a plain
// "2006-01-02 15:04:05" stamp.
var patterns = []pattern{
	{regexp.MustCompile(`\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(?:\.\d+)?(?:Z|[+-]\d{2}:\d{2})`), time.RFC3339},
	{regexp.MustCompile(`\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(?:\.\d+)?(?:Z|[+-]\d{2}:\d{2})`), time.RFC3339Nano},
	{regexp.MustCompile(`\d{2}/\w{3}/\d{4}:\d{2}:\d{2}:\d{2}`), "02/Jan/2006:15:04:05"},
	{regexp.MustCompile(`\w{3} \d{1,2} \d{2}:\d{2}:\d{2}`), "Jan 2 15:04:05"},
	{regexp.MustCompile(`\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}`), "2006-01-02 15:04:05"},
}

// Extract scans line for the first recognizable timestamp and parses
// it. ok is false when no pattern matched or the match failed to
// parse, in which case line carries no displayable timestamp.
func Extract(line string) (t time.Time, ok bool) {
	for _, p := range patterns {
		match := p.re.FindString(line)
		if match == "" {
			continue
		}
		if parsed, err := time.Parse(p.layout, match); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

// Display renders t in the named zone using a fixed
// "2006-01-02 15:04:05" layout. An unknown zone name falls back to
// UTC rather than erroring, since a malformed --timezone flag
// shouldn't take down the viewport.
func Display(t time.Time, zone string) string {
	loc, err := time.LoadLocation(zone)
	if err != nil {
		loc = time.UTC
	}
	return t.In(loc).Format("2006-01-02 15:04:05")
}

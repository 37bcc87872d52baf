package matcher

import (
	"testing"

	"github.com/alienxp03/logbench/internal/classify"
)

func TestEmptyQueryMatchesEverything(t *testing.T) {
	m := Compile(Config{Level: LevelAll})
	res := m.Match("anything at all")
	if !res.Match || len(res.Ranges) != 0 {
		t.Fatalf("got %+v, want match with no ranges", res)
	}
}

func TestTextModeNonOverlappingRanges(t *testing.T) {
	m := Compile(Config{Query: "ab", Mode: ModeText, CaseSensitive: true, Level: LevelAll})
	res := m.Match("ababab")
	if !res.Match {
		t.Fatalf("expected match")
	}
	want := []Range{{0, 2}, {2, 4}, {4, 6}}
	if len(res.Ranges) != len(want) {
		t.Fatalf("got %v, want %v", res.Ranges, want)
	}
	for i, r := range want {
		if res.Ranges[i] != r {
			t.Errorf("range %d = %v, want %v", i, res.Ranges[i], r)
		}
	}
}

func TestTextModeCaseFolding(t *testing.T) {
	m := Compile(Config{Query: "ERROR", Mode: ModeText, CaseSensitive: false, Level: LevelAll})
	res := m.Match("an error occurred")
	if !res.Match {
		t.Fatalf("expected case-insensitive match")
	}
}

func TestRegexFilterScenario(t *testing.T) {
	lines := []string{"info: ok", "warn: x", "error: y", "warn: z"}
	m := Compile(Config{Query: "^warn", Mode: ModeRegex, CaseSensitive: false, Level: LevelAll})

	var visibleIdx []int
	for i, l := range lines {
		if res := m.Match(l); res.Match {
			visibleIdx = append(visibleIdx, i)
			if len(res.Ranges) != 1 || res.Ranges[0] != (Range{0, 4}) {
				t.Errorf("line %d: got ranges %v, want [{0 4}]", i, res.Ranges)
			}
		}
	}
	if len(visibleIdx) != 2 || visibleIdx[0] != 1 || visibleIdx[1] != 3 {
		t.Fatalf("got visible indices %v, want [1 3]", visibleIdx)
	}
}

func TestInvalidRegexYieldsNoMatch(t *testing.T) {
	m := Compile(Config{Query: "(unclosed", Mode: ModeRegex, Level: LevelAll})
	res := m.Match("anything")
	if res.Match || len(res.Ranges) != 0 {
		t.Fatalf("got %+v, want no match for invalid regex", res)
	}
}

func TestZeroLengthRegexMatchesAdvance(t *testing.T) {
	m := Compile(Config{Query: "a*", Mode: ModeRegex, CaseSensitive: true, Level: LevelAll})
	res := m.Match("baaab")
	if !res.Match {
		t.Fatalf("expected match")
	}
	// Must terminate and produce a finite, non-overlapping set of ranges.
	if len(res.Ranges) == 0 {
		t.Fatalf("expected at least one range")
	}
}

func TestSeverityFilterIsAdditionalPredicate(t *testing.T) {
	m := Compile(Config{Query: "", Level: classify.WARN})
	if res := m.Match("this is an INFO line"); res.Match {
		t.Fatalf("expected INFO line to fail a WARN-only filter")
	}
	if res := m.Match("this is a WARN line"); !res.Match {
		t.Fatalf("expected WARN line to pass a WARN-only filter")
	}
}

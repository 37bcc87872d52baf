package viewport

import (
	"testing"

	"github.com/alienxp03/logbench/internal/classify"
	"github.com/alienxp03/logbench/internal/matcher"
	"github.com/alienxp03/logbench/internal/provider"
)

func line(file string, n int, content string) provider.LogLine {
	return provider.LogLine{
		ID:         file + ":" + itoa(n),
		FileName:   file,
		LineNumber: n,
		Content:    content,
		Level:      classify.Classify(content),
	}
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	pos := len(buf)
	for n > 0 {
		pos--
		buf[pos] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[pos:])
}

func TestFilterPassesMatchOrPinned(t *testing.T) {
	lines := []provider.LogLine{
		line("a.log", 1, "info: ok"),
		line("a.log", 2, "warn: careful"),
		line("a.log", 3, "error: bang"),
	}
	pinned := map[string]struct{}{"a.log:1": {}}
	m := matcher.Compile(matcher.Config{Query: "warn", Mode: matcher.ModeText, Level: matcher.LevelAll})

	rows := Filter(lines, pinned, m, false)
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2 (pinned miss + warn match)", len(rows))
	}
	ids := map[string]bool{}
	for _, r := range rows {
		ids[r.ID] = true
	}
	if !ids["a.log:1"] || !ids["a.log:2"] {
		t.Fatalf("got rows %v, want a.log:1 and a.log:2", ids)
	}
}

func TestFilterShowOnlyPinned(t *testing.T) {
	lines := []provider.LogLine{
		line("a.log", 1, "info: ok"),
		line("a.log", 2, "warn: careful"),
	}
	pinned := map[string]struct{}{"a.log:2": {}}
	m := matcher.Compile(matcher.Config{Level: matcher.LevelAll})

	rows := Filter(lines, pinned, m, true)
	if len(rows) != 1 || rows[0].ID != "a.log:2" {
		t.Fatalf("got %+v, want only a.log:2", rows)
	}
}

func TestHeightMapDefaultsToEstimate(t *testing.T) {
	h := NewHeightMap()
	if h.Get("x") != Estimate {
		t.Fatalf("got %d, want Estimate", h.Get("x"))
	}
	h.SetHeight("x", 3)
	if h.Get("x") != Estimate {
		t.Fatalf("expected pending height to not apply before Flush")
	}
	if !h.Flush() {
		t.Fatalf("expected Flush to report a change")
	}
	if h.Get("x") != 3 {
		t.Fatalf("got %d after flush, want 3", h.Get("x"))
	}
	if h.Flush() {
		t.Fatalf("expected second Flush with no pending updates to report no change")
	}
}

func TestPrefixSumAndVisibleRange(t *testing.T) {
	rows := make([]Row, 100)
	for i := range rows {
		rows[i] = Row{LogLine: line("a.log", i+1, "x")}
	}
	h := NewHeightMap()
	prefix := PrefixSum(rows, h)
	if prefix[100] != 100 {
		t.Fatalf("got total height %d, want 100 (all estimate=1)", prefix[100])
	}

	start, end := VisibleRange(prefix, 50, 10, 0)
	if start != 50 || end != 60 {
		t.Fatalf("got [%d,%d), want [50,60)", start, end)
	}

	start, end = VisibleRange(prefix, 50, 10, Overscan)
	wantStart, wantEnd := 50-Overscan, 59+Overscan+1
	if start != wantStart || end != wantEnd {
		t.Fatalf("got [%d,%d) with overscan, want [%d,%d)", start, end, wantStart, wantEnd)
	}
}

func TestFollowTailFlag(t *testing.T) {
	s := NewState()
	s.UpdateScroll(0, 100, 20)
	if s.Following {
		t.Fatalf("expected not following when scrolled to top of a long list")
	}
	s.UpdateScroll(80, 100, 20)
	if !s.Following {
		t.Fatalf("expected following when at bottom")
	}
}

func TestTopLoadGating(t *testing.T) {
	s := NewState()
	s.UpdateScroll(0, 1000, 20)
	calls := 0
	onLoad := func() error { calls++; return nil }

	if err := s.MaybeLoadMoreTop(onLoad); err != nil {
		t.Fatalf("MaybeLoadMoreTop: %v", err)
	}
	if calls != 1 {
		t.Fatalf("got %d calls, want 1", calls)
	}
	// Still in flight: should not invoke again.
	if err := s.MaybeLoadMoreTop(onLoad); err != nil {
		t.Fatalf("MaybeLoadMoreTop: %v", err)
	}
	if calls != 1 {
		t.Fatalf("got %d calls while in flight, want still 1", calls)
	}
	s.TopLoadSettled()
	if err := s.MaybeLoadMoreTop(onLoad); err != nil {
		t.Fatalf("MaybeLoadMoreTop: %v", err)
	}
	if calls != 2 {
		t.Fatalf("got %d calls after settle, want 2", calls)
	}
}

func TestTopLoadNotTriggeredAwayFromTop(t *testing.T) {
	s := NewState()
	s.UpdateScroll(500, 1000, 20)
	calls := 0
	if err := s.MaybeLoadMoreTop(func() error { calls++; return nil }); err != nil {
		t.Fatalf("MaybeLoadMoreTop: %v", err)
	}
	if calls != 0 {
		t.Fatalf("got %d calls, want 0 when far from top", calls)
	}
}

func TestResolveJumpFound(t *testing.T) {
	rows := make([]Row, 50)
	for i := range rows {
		rows[i] = Row{LogLine: line("a.log", i+1, "x")}
	}
	h := NewHeightMap()
	prefix := PrefixSum(rows, h)

	offset, ok := ResolveJump(rows, prefix, "a.log:25", 10)
	if !ok {
		t.Fatalf("expected jump target found")
	}
	if offset < 0 {
		t.Fatalf("got negative offset %d", offset)
	}
}

func TestResolveJumpNotFoundLeavesArmed(t *testing.T) {
	rows := []Row{{LogLine: line("a.log", 1, "x")}}
	h := NewHeightMap()
	prefix := PrefixSum(rows, h)

	s := NewState()
	s.SetJumpTarget("a.log:999")
	_, ok := ResolveJump(rows, prefix, s.JumpTarget(), 10)
	if ok {
		t.Fatalf("expected not found")
	}
	if s.JumpTarget() != "a.log:999" {
		t.Fatalf("expected jump target to remain armed for retry")
	}
	s.ClearJump()
	if s.JumpTarget() != "" {
		t.Fatalf("expected jump target cleared")
	}
}

// Package viewport implements the terminal row virtualizer: a
// measured-height prefix-sum row list with follow-tail, top-load, and
// jump-to-id behavior.
package viewport

import (
	"sort"

	"github.com/alienxp03/logbench/internal/ansi"
	"github.com/alienxp03/logbench/internal/matcher"
	"github.com/alienxp03/logbench/internal/provider"
)

// Estimate is the default assumed row height in terminal lines, used
// until a row's real rendered height is measured.
const Estimate = 1

// Overscan is the number of extra rows rendered beyond each edge of
// the visible band.
const Overscan = 8

// FollowBand is how many rows from the bottom counts as "at the
// bottom" for follow-tail purposes.
const FollowBand = 2

// TopLoadBand is how many rows from the top triggers onLoadMoreTop.
const TopLoadBand = 2

// Row is one filtered, render-ready line: the viewport's unit of
// virtualization.
type Row struct {
	provider.LogLine
	Pinned  bool
	Ranges  []matcher.Range
	ZebraOn bool
}

// Filter applies matcher + severity + pinned union to lines, producing
// the derived ordered sequence the virtualizer renders. A line is
// visible if it passes severity and the predicate, or it is pinned.
func Filter(lines []provider.LogLine, pinned map[string]struct{}, m *matcher.Matcher, showOnlyPinned bool) []Row {
	out := make([]Row, 0, len(lines))
	for _, l := range lines {
		// Match and render against the ANSI-stripped text so escape
		// bytes can't desync match ranges from the rendered string.
		l.Content = ansi.Strip(l.Content)

		_, isPinned := pinned[l.ID]
		if showOnlyPinned {
			if !isPinned {
				continue
			}
			out = append(out, Row{LogLine: l, Pinned: true, ZebraOn: len(out)%2 == 1})
			continue
		}
		res := m.Match(l.Content)
		if !res.Match && !isPinned {
			continue
		}
		var ranges []matcher.Range
		if res.Match {
			ranges = toRanges(res)
		}
		out = append(out, Row{LogLine: l, Pinned: isPinned, Ranges: ranges, ZebraOn: len(out)%2 == 1})
	}
	return out
}

func toRanges(res matcher.Result) []matcher.Range {
	if len(res.Ranges) == 0 {
		return nil
	}
	out := make([]matcher.Range, len(res.Ranges))
	copy(out, res.Ranges)
	return out
}

// HeightMap tracks each row's measured height, defaulting unmeasured
// rows to Estimate. Updates are batched: SetHeight stages a pending
// value, Flush commits every staged value in one pass.
type HeightMap struct {
	heights map[string]int
	pending map[string]int
}

// NewHeightMap constructs an empty HeightMap.
func NewHeightMap() *HeightMap {
	return &HeightMap{heights: make(map[string]int), pending: make(map[string]int)}
}

// Get returns id's measured height, or Estimate if unmeasured.
func (h *HeightMap) Get(id string) int {
	if v, ok := h.heights[id]; ok {
		return v
	}
	return Estimate
}

// SetHeight stages a measured height for id, applied on the next Flush.
func (h *HeightMap) SetHeight(id string, height int) {
	if height < 1 {
		height = 1
	}
	h.pending[id] = height
}

// Flush commits every staged height update and reports whether any
// value actually changed (callers use this to decide whether to
// recompute the prefix sum).
func (h *HeightMap) Flush() bool {
	if len(h.pending) == 0 {
		return false
	}
	changed := false
	for id, v := range h.pending {
		if h.heights[id] != v {
			h.heights[id] = v
			changed = true
		}
	}
	h.pending = make(map[string]int)
	return changed
}

// PrefixSum computes the cumulative row-start offsets over rows in
// terminal lines: PrefixSum(rows)[i] is the offset of rows[i], and the
// final element (len(rows)) is the total height.
func PrefixSum(rows []Row, h *HeightMap) []int {
	sums := make([]int, len(rows)+1)
	for i, r := range rows {
		sums[i+1] = sums[i] + h.Get(r.ID)
	}
	return sums
}

// VisibleRange binary-searches prefix for the first row at or after
// offset, and returns [start,end) widened by Overscan and clamped to
// bounds, such that the rows in [start,end) cover the viewport band
// [offset, offset+viewportHeight).
func VisibleRange(prefix []int, offset, viewportHeight, overscan int) (start, end int) {
	n := len(prefix) - 1
	if n <= 0 {
		return 0, 0
	}
	first := sort.Search(n, func(i int) bool { return prefix[i+1] > offset })
	last := sort.Search(n, func(i int) bool { return prefix[i+1] >= offset+viewportHeight })
	start = first - overscan
	if start < 0 {
		start = 0
	}
	end = last + overscan + 1
	if end > n {
		end = n
	}
	if end < start {
		end = start
	}
	return start, end
}

// State holds a Viewport's scroll position and follow/top-load flags
// across renders. A zero State does not follow the tail; NewState
// returns one that does.
type State struct {
	ScrollOffset    int
	Following       bool
	topLoadInFlight bool
	jumpID          string
}

// NewState returns a State that follows the tail by default.
func NewState() *State {
	return &State{Following: true}
}

// UpdateScroll records a new scroll offset against totalHeight and
// viewportHeight, recomputing the follow-tail flag: within FollowBand
// rows of the bottom arms it, anything else clears it.
func (s *State) UpdateScroll(offset, totalHeight, viewportHeight int) {
	s.ScrollOffset = offset
	bottom := totalHeight - viewportHeight
	if bottom < 0 {
		bottom = 0
	}
	s.Following = offset >= bottom-FollowBand
}

// FollowToBottom computes the scroll offset that sits at the bottom of
// totalHeight for a viewport of viewportHeight lines, for use when
// Following is true and filtered grew.
func FollowToBottom(totalHeight, viewportHeight int) int {
	offset := totalHeight - viewportHeight
	if offset < 0 {
		offset = 0
	}
	return offset
}

// MaybeLoadMoreTop invokes onLoadMoreTop at most once in flight when
// the scroll position is within TopLoadBand of the top. Callers are
// expected to call TopLoadSettled once the load completes.
func (s *State) MaybeLoadMoreTop(onLoadMoreTop func() error) error {
	if s.topLoadInFlight || s.ScrollOffset > TopLoadBand {
		return nil
	}
	s.topLoadInFlight = true
	return onLoadMoreTop()
}

// TopLoadSettled clears the in-flight gate. Callers invoke this from
// the next Update tick rather than synchronously inside
// MaybeLoadMoreTop's callback, so the gate stays held for one extra
// frame after the load settles.
func (s *State) TopLoadSettled() {
	s.topLoadInFlight = false
}

// SetJumpTarget arms a pending jump-to-id.
func (s *State) SetJumpTarget(id string) {
	s.jumpID = id
}

// JumpTarget returns the pending jump-to-id, or "" if none.
func (s *State) JumpTarget() string {
	return s.jumpID
}

// ResolveJump locates id in rows and, if present, returns the scroll
// offset that centers it in a viewport of viewportHeight lines. If id
// is not present, it returns ok=false; the caller should retry once
// more rows have loaded, or call ClearJump directly if the session
// reports the id will never load (file not open), instead of retrying
// forever.
func ResolveJump(rows []Row, prefix []int, id string, viewportHeight int) (offset int, ok bool) {
	for i, r := range rows {
		if r.ID != id {
			continue
		}
		rowHeight := prefix[i+1] - prefix[i]
		center := prefix[i] + rowHeight/2 - viewportHeight/2
		if center < 0 {
			center = 0
		}
		return center, true
	}
	return 0, false
}

// ClearJump cancels a pending jump without resolving it: a jump to an
// id whose file is not loaded resolves as a no-op.
func (s *State) ClearJump() {
	s.jumpID = ""
}

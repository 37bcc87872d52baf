package app

import (
	"strconv"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/alienxp03/logbench/internal/classify"
	"github.com/alienxp03/logbench/internal/matcher"
)

// Update dispatches tea.Msg to the right handler via keyMap-driven
// key dispatch.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case filesImportedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.log.Error("import failed", "error", msg.err)
		}
		return m, nil

	case prefetchTickMsg:
		return m, tea.Batch(m.prefetchCmd(), m.tickCmd())

	case topLoadDoneMsg:
		m.vp.TopLoadSettled()
		if msg.err != nil {
			m.err = msg.err
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.focus {
	case focusFilter:
		return m.handleFilterKey(msg)
	case focusJump:
		return m.handleJumpKey(msg)
	}
	return m.handleViewportKey(msg)
}

func (m *Model) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.String() == "enter" || msg.String() == "esc":
		m.focus = focusViewport
		m.filterInput.Blur()
		m.applyFilter()
		return m, nil
	}
	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)
	m.applyFilter()
	return m, cmd
}

func (m *Model) handleJumpKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.focus = focusViewport
		n, err := strconv.Atoi(m.jumpInput.Value())
		m.jumpInput.SetValue("")
		m.jumpInput.Blur()
		if err != nil {
			return m, nil
		}
		if err := m.sess.JumpToLine(n); err != nil {
			m.err = err
		} else if id := m.sess.PendingJumpID(); id != "" {
			m.vp.Following = false
			m.vp.SetJumpTarget(id)
		}
		return m, nil
	case "esc":
		m.focus = focusViewport
		m.jumpInput.SetValue("")
		m.jumpInput.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.jumpInput, cmd = m.jumpInput.Update(msg)
	return m, cmd
}

func (m *Model) handleViewportKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case keyMatches(msg, m.keys.Quit):
		return m, tea.Quit
	case keyMatches(msg, m.keys.Filter):
		m.focus = focusFilter
		m.filterInput.Focus()
		return m, nil
	case keyMatches(msg, m.keys.Jump):
		m.focus = focusJump
		m.jumpInput.Focus()
		return m, nil
	case keyMatches(msg, m.keys.RegexToggle):
		m.useRegex = !m.useRegex
		m.applyFilter()
		return m, nil
	case keyMatches(msg, m.keys.CaseToggle):
		m.caseSens = !m.caseSens
		m.applyFilter()
		return m, nil
	case keyMatches(msg, m.keys.LevelCycle):
		m.level = nextLevel(m.level)
		m.applyFilter()
		return m, nil
	case keyMatches(msg, m.keys.PinnedOnly):
		m.sess.SetShowOnlyPinned(!m.sess.ShowOnlyPinned())
		return m, nil
	case keyMatches(msg, m.keys.Follow):
		m.vp.Following = !m.vp.Following
		return m, nil
	case keyMatches(msg, m.keys.Pin):
		return m, m.pinSelectedCmd()
	case keyMatches(msg, m.keys.NextTab):
		return m, m.switchTabCmd(1)
	case keyMatches(msg, m.keys.PrevTab):
		return m, m.switchTabCmd(-1)
	case keyMatches(msg, m.keys.CloseTab):
		return m, m.closeTabCmd()
	case keyMatches(msg, m.keys.Top):
		return m, m.jumpToTop()
	case keyMatches(msg, m.keys.Bottom):
		return m, m.jumpToBottom()
	case keyMatches(msg, m.keys.Up):
		return m, m.moveSelection(-1)
	case keyMatches(msg, m.keys.Down):
		return m, tea.Batch(m.moveSelection(1), m.loadMoreCmd(1))
	case keyMatches(msg, m.keys.PageUp):
		return m, tea.Batch(m.moveSelection(-m.pageStep()), m.loadMoreCmd(-1))
	case keyMatches(msg, m.keys.PageDown):
		return m, tea.Batch(m.moveSelection(m.pageStep()), m.loadMoreCmd(1))
	}
	return m, nil
}

func keyMatches(msg tea.KeyMsg, b interface{ Keys() []string }) bool {
	for _, k := range b.Keys() {
		if msg.String() == k {
			return true
		}
	}
	return false
}

func nextLevel(cur classify.Severity) classify.Severity {
	order := []classify.Severity{
		matcher.LevelAll,
		classify.TRACE, classify.DEBUG, classify.INFO,
		classify.WARN, classify.ERROR, classify.OTHER,
	}
	for i, l := range order {
		if l == cur {
			return order[(i+1)%len(order)]
		}
	}
	return order[0]
}

func (m *Model) pageStep() int {
	h := m.height - statusLines
	if h < 1 {
		h = 1
	}
	return h
}

// moveSelection adjusts the selected row by delta, scrolls the
// viewport just enough to keep it in view (arming/disengaging
// follow-tail via UpdateScroll in the process), and triggers an
// upward prefetch if the scroll lands near the top of the window.
func (m *Model) moveSelection(delta int) tea.Cmd {
	m.selectedIdx += delta
	if m.selectedIdx < 0 {
		m.selectedIdx = 0
	}

	rows, prefix, total, height := m.viewportGeometry()
	if m.selectedIdx >= len(rows) {
		m.selectedIdx = len(rows) - 1
	}
	if m.selectedIdx < 0 {
		m.selectedIdx = 0
	}
	if len(rows) == 0 {
		return nil
	}

	offset := m.vp.ScrollOffset
	rowTop := prefix[m.selectedIdx]
	rowBottom := prefix[m.selectedIdx+1]
	if rowTop < offset {
		offset = rowTop
	} else if rowBottom > offset+height {
		offset = rowBottom - height
	}
	m.vp.UpdateScroll(offset, total, height)

	return m.topLoadCmd()
}

// jumpToTop scrolls to the first loaded row and disengages follow-tail.
func (m *Model) jumpToTop() tea.Cmd {
	_, _, total, height := m.viewportGeometry()
	m.selectedIdx = 0
	m.vp.UpdateScroll(0, total, height)
	return m.topLoadCmd()
}

// jumpToBottom re-engages follow-tail, which scrolls to the last row
// on the next render.
func (m *Model) jumpToBottom() tea.Cmd {
	rows := m.visibleRows()
	m.selectedIdx = len(rows) - 1
	if m.selectedIdx < 0 {
		m.selectedIdx = 0
	}
	m.vp.Following = true
	return nil
}

// topLoadCmd checks whether the current scroll position is near the
// top of the loaded window and, if so, dispatches an upward load that
// reports back via topLoadDoneMsg once settled.
func (m *Model) topLoadCmd() tea.Cmd {
	var trigger bool
	_ = m.vp.MaybeLoadMoreTop(func() error {
		trigger = true
		return nil
	})
	if !trigger {
		return nil
	}
	return func() tea.Msg {
		return topLoadDoneMsg{err: m.sess.LoadMoreUp()}
	}
}

func (m *Model) pinSelectedCmd() tea.Cmd {
	rows := m.visibleRows()
	if m.selectedIdx < 0 || m.selectedIdx >= len(rows) {
		return nil
	}
	id := rows[m.selectedIdx].ID
	return func() tea.Msg {
		_ = m.sess.TogglePin(id)
		return nil
	}
}

func (m *Model) switchTabCmd(delta int) tea.Cmd {
	files := m.sess.Files()
	if len(files) == 0 {
		return nil
	}
	names := make([]string, 0, len(files)+1)
	names = append(names, "ALL")
	for _, f := range files {
		names = append(names, f.Name)
	}
	cur := m.sess.SelectedTab()
	if cur == "" {
		cur = "ALL"
	}
	idx := 0
	for i, n := range names {
		if n == cur {
			idx = i
		}
	}
	next := (idx + delta + len(names)) % len(names)
	name := names[next]
	return func() tea.Msg {
		_ = m.sess.SelectTab(name)
		return nil
	}
}

func (m *Model) closeTabCmd() tea.Cmd {
	name := m.sess.SelectedTab()
	if name == "" || name == "ALL" {
		return nil
	}
	return func() tea.Msg {
		_ = m.sess.CloseFileTab(name)
		return nil
	}
}

func (m *Model) loadMoreCmd(dir int) tea.Cmd {
	return func() tea.Msg {
		if dir < 0 {
			_ = m.sess.LoadMoreUp()
		} else {
			_ = m.sess.LoadMoreDown()
		}
		return nil
	}
}

// prefetchCmd drives active-filter prefetch: while a filter is active,
// alternately call loadMoreUp/loadMoreDown so hits outside the loaded
// window become visible.
func (m *Model) prefetchCmd() tea.Cmd {
	if !m.sess.HasActiveFilter() {
		return nil
	}
	up := m.prefetchUp
	m.prefetchUp = !m.prefetchUp
	return func() tea.Msg {
		if up {
			_ = m.sess.LoadMoreUp()
		} else {
			_ = m.sess.LoadMoreDown()
		}
		return nil
	}
}

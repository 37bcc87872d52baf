package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/alienxp03/logbench/internal/viewport"
)

// statusLines is how many terminal rows the header + footer chrome
// consumes: one header line, one status/footer line, with a little
// slack for wrapped footer text.
const statusLines = 4

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57"))
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
)

// visibleRows computes the filtered, render-ready rows for the
// currently selected tab.
func (m *Model) visibleRows() []viewport.Row {
	lines := m.sess.Window()
	return viewport.Filter(lines, m.pinned.Snapshot(), m.matcher, m.sess.ShowOnlyPinned())
}

// viewportGeometry returns the current rows together with their
// prefix-sum offsets, the total content height, and the body height
// available for rendering.
func (m *Model) viewportGeometry() (rows []viewport.Row, prefix []int, total, height int) {
	rows = m.visibleRows()
	height = m.height - statusLines
	if height < 1 {
		height = 1
	}
	prefix = viewport.PrefixSum(rows, m.heights)
	if len(prefix) > 0 {
		total = prefix[len(prefix)-1]
	}
	return rows, prefix, total, height
}

// View renders the header (tab bar), the virtualized row band, and the
// status/footer line.
func (m *Model) View() string {
	if m.width == 0 {
		return "initializing..."
	}

	header := m.renderHeader()
	body := m.renderBody()
	footer := m.renderFooter()

	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

func (m *Model) renderHeader() string {
	files := m.sess.Files()
	tabs := make([]string, 0, len(files)+1)
	sel := m.sess.SelectedTab()
	allLabel := "ALL"
	if sel == "ALL" || sel == "" {
		allLabel = "[" + allLabel + "]"
	}
	tabs = append(tabs, allLabel)
	for _, f := range files {
		label := fmt.Sprintf("%s (%s)", f.Name, humanize.Comma(int64(f.TotalLines)))
		if f.Name == sel {
			label = "[" + label + "]"
		}
		tabs = append(tabs, label)
	}
	return headerStyle.Width(m.width).Render(strings.Join(tabs, "  "))
}

func (m *Model) renderBody() string {
	rows, prefix, total, height := m.viewportGeometry()

	if jumpID := m.vp.JumpTarget(); jumpID != "" {
		if offset, ok := viewport.ResolveJump(rows, prefix, jumpID, height); ok {
			m.vp.ScrollOffset = offset
			m.vp.ClearJump()
			m.sess.ClearPendingJump()
		}
	} else if m.vp.Following {
		m.vp.ScrollOffset = viewport.FollowToBottom(total, height)
	}

	start, end := viewport.VisibleRange(prefix, m.vp.ScrollOffset, height, viewport.Overscan)

	var b strings.Builder
	for i := start; i < end && i < len(rows); i++ {
		selected := i == m.selectedIdx
		b.WriteString(viewport.RenderRow(rows[i], m.width, selected, m.styles, m.cfg.Timezone))
		b.WriteByte('\n')
	}
	return b.String()
}

func (m *Model) renderFooter() string {
	if m.focus == focusFilter {
		return footerStyle.Render("filter: " + m.filterInput.View())
	}
	if m.focus == focusJump {
		return footerStyle.Render("jump to line: " + m.jumpInput.View())
	}
	if m.err != nil {
		return errStyle.Render(fmt.Sprintf("error: %v", m.err))
	}

	rows := m.visibleRows()
	status := fmt.Sprintf(
		"%d/%d lines  filter=%q regex=%v case=%v level=%v pinned-only=%v follow=%v  [/] filter  [:] jump  [p] pin  [P] pinned-only  [tab] next file  [q] quit",
		len(rows), m.sess.PageSize(), m.filterInput.Value(), m.useRegex, m.caseSens, m.level, m.sess.ShowOnlyPinned(), m.vp.Following,
	)
	return footerStyle.Render(status)
}

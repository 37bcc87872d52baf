package viewport

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/alienxp03/logbench/internal/classify"
	"github.com/alienxp03/logbench/internal/matcher"
	"github.com/alienxp03/logbench/internal/tsformat"
)

// Styles is the per-level and pinned/zebra/highlight palette.
type Styles struct {
	Levels    map[classify.Severity]lipgloss.Style
	Zebra     lipgloss.Style
	Selected  lipgloss.Style
	Pinned    lipgloss.Style
	Highlight lipgloss.Style
}

// DefaultStyles is the default ANSI-256 palette: muted trace/debug,
// blue info, yellow warn, red error, plus pin/highlight accents.
func DefaultStyles() Styles {
	return Styles{
		Levels: map[classify.Severity]lipgloss.Style{
			classify.TRACE: lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
			classify.DEBUG: lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
			classify.INFO:  lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
			classify.WARN:  lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
			classify.ERROR: lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
			classify.OTHER: lipgloss.NewStyle(),
		},
		Zebra:     lipgloss.NewStyle().Background(lipgloss.Color("235")),
		Selected:  lipgloss.NewStyle().Background(lipgloss.Color("57")),
		Pinned:    lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		Highlight: lipgloss.NewStyle().Background(lipgloss.Color("226")).Foreground(lipgloss.Color("0")),
	}
}

// RenderRow renders one row's text line: severity color, zebra stripe,
// pin marker, converted display timestamp (when one is embedded in
// the line and zone is non-empty), and match-range highlighting,
// truncated to width.
func RenderRow(r Row, width int, selected bool, st Styles, zone string) string {
	marker := "  "
	if r.Pinned {
		marker = st.Pinned.Render("● ")
	}

	prefix := ""
	if zone != "" {
		if ts, ok := tsformat.Extract(r.Content); ok {
			prefix = "[" + tsformat.Display(ts, zone) + "] "
		}
	}

	text := highlightContent(r.Content, r.Ranges, st)
	line := marker + prefix + text

	base := st.Levels[r.Level]
	if r.ZebraOn {
		base = base.Inherit(st.Zebra)
	}
	if selected {
		base = base.Inherit(st.Selected)
	}
	return base.MaxWidth(width).Render(line)
}

func highlightContent(content string, ranges []matcher.Range, st Styles) string {
	if len(ranges) == 0 {
		return content
	}
	var b strings.Builder
	prev := 0
	for _, rg := range ranges {
		from, to := rg.From, rg.To
		if from < prev || from > len(content) || to > len(content) || from > to {
			continue
		}
		b.WriteString(content[prev:from])
		b.WriteString(st.Highlight.Render(content[from:to]))
		prev = to
	}
	b.WriteString(content[prev:])
	return b.String()
}

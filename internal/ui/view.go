package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/extman/internal/gateway"
	"github.com/five82/extman/internal/state"
)

const (
	emptyMessage      = "No extensions found."
	loadFailedMessage = "Failed to load extensions. Try again later."
	loadingMessage    = "Loading extensions..."

	// chromeLines is header + tabs + status line + footer.
	chromeLines  = 4
	minNameWidth = 12
	maxNameWidth = 28
)

// renderMain renders the full screen.
func (m Model) renderMain() string {
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderTabs())
	b.WriteString("\n")
	b.WriteString(m.renderBody())
	b.WriteString("\n")
	b.WriteString(m.renderStatusLine())
	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m Model) bodyHeight() int {
	return max(m.height-chromeLines, 1)
}

func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	parts := []string{bg.Render("extman", styles.Logo)}

	switch {
	case m.loading || m.snapshot.Status == state.LoadPending:
		parts = append(parts, bg.Render(m.spinner.View(), styles.AccentText)+bg.Space()+
			bg.Render("Loading", styles.WarningText))
	case m.snapshot.Status == state.LoadFailed:
		parts = append(parts, bg.Render("● OFFLINE", styles.DangerText))
	default:
		parts = append(parts, bg.Render(fmt.Sprintf("%d", len(m.snapshot.Extensions)), styles.Text)+bg.Space()+
			bg.Render("extensions", styles.MutedText))
	}

	if pending := m.pending(); pending > 0 {
		parts = append(parts, bg.Render(m.spinner.View(), styles.AccentText)+bg.Space()+
			bg.Render(fmt.Sprintf("Saving %d", pending), styles.WarningText))
	}

	if m.width >= 60 {
		parts = append(parts, bg.Render("theme", styles.FaintText)+bg.Space()+
			bg.Render(m.theme.Name, styles.MutedText))
	}

	return styles.Header.Width(m.width).Render(bg.Join(parts, "  "))
}

// renderTabs shows one tab per filter with its count.
func (m Model) renderTabs() string {
	styles := m.theme.Styles().WithBackground(m.theme.Background)
	bg := NewBgStyle(m.theme.Background)
	counts := state.CountFilters(m.snapshot.Extensions)

	tabs := make([]string, 0, len(state.Filters))
	for _, f := range state.Filters {
		label := fmt.Sprintf("%s %d", f.Label(), counts.For(f))
		if f == m.snapshot.Filter {
			tabs = append(tabs, styles.TabActive.Render(label))
			continue
		}
		tabs = append(tabs, styles.TabInactive.Render(label))
	}
	return bg.FillLine(bg.Join(tabs, " "), m.width)
}

func (m Model) renderBody() string {
	styles := m.theme.Styles()
	height := m.bodyHeight()

	var content string
	switch {
	case m.loading || m.snapshot.Status == state.LoadPending:
		content = m.spinner.View() + " " + styles.MutedText.Render(loadingMessage)
	case m.snapshot.Status == state.LoadFailed:
		content = lipgloss.JoinVertical(lipgloss.Center,
			styles.DangerText.Render(loadFailedMessage),
			styles.FaintText.Render("Press r to retry."),
		)
	default:
		visible := m.snapshot.Visible()
		if len(visible) == 0 {
			content = styles.MutedText.Render(emptyMessage)
			break
		}
		return m.renderList(visible, height)
	}
	return lipgloss.Place(m.width, height, lipgloss.Center, lipgloss.Center, content)
}

func (m Model) renderList(visible []gateway.Extension, height int) string {
	start, end := listWindow(len(visible), m.selected, height)
	nameWidth := nameColumnWidth(visible)

	lines := make([]string, 0, height)
	for i := start; i < end; i++ {
		lines = append(lines, m.renderRow(visible[i], nameWidth, i == m.selected))
	}
	filler := NewBgStyle(m.theme.SurfaceAlt).FillLine("", m.width)
	for len(lines) < height {
		lines = append(lines, filler)
	}
	return strings.Join(lines, "\n")
}

// renderRow formats one extension: "● Name  description  Active".
func (m Model) renderRow(ext gateway.Extension, nameWidth int, selected bool) string {
	bgColor := m.theme.SurfaceAlt
	if selected {
		bgColor = m.theme.SelectionBg
	}
	bg := NewBgStyle(bgColor)
	styles := m.theme.Styles()

	marker, markerStyle := "○", styles.MutedText
	status, statusStyle := "Inactive", styles.MutedText
	if ext.IsActive {
		marker, markerStyle = "●", styles.SuccessText
		status, statusStyle = "Active", styles.SuccessText
	}
	if m.busy(ext.ID) {
		status += " …"
		statusStyle = styles.WarningText
	}

	nameStyle, descStyle := styles.Text.Bold(true), styles.MutedText
	if selected {
		sel := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.SelectionText))
		nameStyle, descStyle = sel.Bold(true), sel
	}

	statusWidth := len("Inactive …") + 1
	descWidth := m.width - nameWidth - statusWidth - 6
	name := padRight(truncate(ext.Name, nameWidth), nameWidth)

	row := bg.Space() +
		bg.Render(marker, markerStyle) + bg.Space() +
		bg.Render(name, nameStyle) + bg.Spaces(2)
	if descWidth > 8 {
		row += bg.Render(padRight(truncate(firstLine(ext.Description), descWidth), descWidth), descStyle) + bg.Space()
	}
	row += bg.Render(status, statusStyle)
	return bg.FillLine(row, m.width)
}

func (m Model) renderStatusLine() string {
	styles := m.theme.Styles().WithBackground(m.theme.Background)
	bg := NewBgStyle(m.theme.Background)
	if m.flash == "" {
		return bg.FillLine("", m.width)
	}
	style := styles.SuccessText
	if m.flashErr {
		style = styles.DangerText
	}
	return bg.FillLine(bg.Space()+bg.Render(truncate(m.flash, m.width-2), style), m.width)
}

func (m Model) renderFooter() string {
	styles := m.theme.Styles()
	return styles.Footer.Width(m.width).Render(m.help.ShortHelpView(m.keys.ShortHelp()))
}

func (m Model) pending() int {
	if m.ctl == nil {
		return 0
	}
	return m.ctl.Pending()
}

func (m Model) busy(id gateway.ID) bool {
	return m.ctl != nil && m.ctl.Busy(id)
}

// listWindow returns the [start, end) rows to draw so that selected stays on
// screen.
func listWindow(total, selected, height int) (int, int) {
	if height <= 0 || total <= 0 {
		return 0, 0
	}
	if total <= height {
		return 0, total
	}
	start := 0
	if selected >= height {
		start = selected - height + 1
	}
	if start > total-height {
		start = total - height
	}
	return start, start + height
}

func nameColumnWidth(items []gateway.Extension) int {
	width := minNameWidth
	for _, ext := range items {
		if n := len([]rune(ext.Name)); n > width {
			width = n
		}
	}
	return min(width, maxNameWidth)
}

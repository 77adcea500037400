package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"wenv/internal/model"
	"wenv/internal/render"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	panelTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	selectedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57"))
	normalStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	invalidStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	dimStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	adviceStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("208")) // Orange
	keptStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))

	borderColor = lipgloss.Color("63")
	activeColor = lipgloss.Color("205")
)

func (m AppModel) View() string {
	if m.Loading {
		return fmt.Sprintf("\n  Checking %s... please wait.\n", m.Variable)
	}
	if m.Err != nil {
		return fmt.Sprintf("\n  Error: %v\n\n  Press q to quit.\n", m.Err)
	}

	width := m.WindowSize.Width
	height := m.WindowSize.Height

	// 6 columns for borders and a small gutter, 6 rows for title and footer.
	netWidth := width - 6
	if netWidth < 20 {
		netWidth = 20
	}
	leftWidth := netWidth / 2
	rightWidth := netWidth - leftWidth

	boxHeight := height - 6
	if boxHeight < 6 {
		boxHeight = 6
	}
	interiorHeight := boxHeight - 2

	left := lipgloss.NewStyle().
		Width(leftWidth).
		Height(interiorHeight).
		Border(lipgloss.NormalBorder()).
		BorderForeground(activeColor).
		Render(m.entriesPanel(leftWidth, interiorHeight))

	var rightContent string
	if m.ShowFix {
		rightContent = m.fixPanel(rightWidth)
	} else {
		rightContent = m.detailsPanel()
	}
	right := lipgloss.NewStyle().
		Width(rightWidth).
		Height(interiorHeight).
		Border(lipgloss.NormalBorder()).
		BorderForeground(borderColor).
		Render(rightContent)

	var b strings.Builder
	b.WriteString(titleStyle.Render("wenv " + m.Variable))
	b.WriteString("  ")
	b.WriteString(dimStyle.Render(render.Summary(m.Report)))
	b.WriteString("\n")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, right))
	b.WriteString("\n")
	b.WriteString(m.footer())
	return b.String()
}

func (m AppModel) entriesPanel(width, height int) string {
	var view strings.Builder
	view.WriteString(panelTitleStyle.Render("Entries"))
	view.WriteString("\n\n")

	// Title and blank line take two rows.
	visibleItems := height - 2
	if visibleItems < 1 {
		visibleItems = 1
	}
	startIdx := 0
	endIdx := len(m.FilteredIndices)
	if len(m.FilteredIndices) > visibleItems {
		if m.SelectedIdx >= visibleItems/2 {
			startIdx = m.SelectedIdx - visibleItems/2
		}
		if startIdx+visibleItems > len(m.FilteredIndices) {
			startIdx = len(m.FilteredIndices) - visibleItems
		}
		endIdx = startIdx + visibleItems
	}

	for i := startIdx; i < endIdx; i++ {
		it := m.Report.Items[m.FilteredIndices[i]]
		line := truncate(render.EntryLine(it), width-2)

		style := normalStyle
		switch {
		case i == m.SelectedIdx:
			style = selectedStyle
		case it.Outcome == model.Invalid:
			style = invalidStyle
		case m.ShowFix:
			style = keptStyle
		}
		view.WriteString(style.Render(line))
		view.WriteString("\n")
	}
	if len(m.FilteredIndices) == 0 {
		view.WriteString(dimStyle.Render("No matching entries."))
	}
	return strings.TrimSuffix(view.String(), "\n")
}

func (m AppModel) detailsPanel() string {
	var view strings.Builder
	view.WriteString(panelTitleStyle.Render("Details"))
	view.WriteString("\n\n")

	if len(m.FilteredIndices) == 0 {
		return view.String()
	}
	it := m.Report.Items[m.FilteredIndices[m.SelectedIdx]]

	raw := it.Raw
	if raw == "" {
		raw = "(empty)"
	}
	view.WriteString(fmt.Sprintf("Entry:    %s\n", raw))
	view.WriteString(fmt.Sprintf("Position: %d of %d\n", it.Index+1, len(m.Report.Items)))
	view.WriteString(fmt.Sprintf("Status:   %s\n", it.Outcome))
	if it.IsDuplicate() {
		view.WriteString(fmt.Sprintf("Duplicate of entry %d\n", it.DuplicateOf+1))
	}

	view.WriteString("\n")
	switch {
	case it.Raw == "":
		view.WriteString(adviceStyle.Render("Empty entries come from doubled or trailing delimiters. The fix drops them."))
	case it.Outcome == model.Invalid:
		view.WriteString(adviceStyle.Render("This directory does not exist. The fix removes it from the list."))
	case it.IsDuplicate():
		view.WriteString(dimStyle.Render("Duplicates are kept; only entries that fail the existence check are removed."))
	}

	vp := m.DetailsViewport
	vp.SetContent(view.String())
	return vp.View()
}

func (m AppModel) fixPanel(width int) string {
	var view strings.Builder
	view.WriteString(panelTitleStyle.Render("Corrected value"))
	view.WriteString("\n\n")

	if !m.Report.Changed() {
		view.WriteString(dimStyle.Render("Nothing to fix."))
		return view.String()
	}

	for _, e := range m.Report.Kept() {
		view.WriteString(keptStyle.Render(truncate(model.IconKept+" "+e.Raw, width-2)))
		view.WriteString("\n")
	}
	for _, e := range m.Report.Removed() {
		raw := e.Raw
		if raw == "" {
			raw = "(empty)"
		}
		view.WriteString(invalidStyle.Render(truncate(model.IconRemoved+" "+raw, width-2)))
		view.WriteString("\n")
	}

	view.WriteString("\n")
	if m.DryRun {
		view.WriteString(adviceStyle.Render("Dry run is on: w previews only."))
	} else {
		view.WriteString(adviceStyle.Render("Press w to write this value."))
	}
	return view.String()
}

func (m AppModel) footer() string {
	if m.InputMode {
		return "Filter: " + m.InputBuffer.View()
	}
	keys := "↑/↓ move • f fix preview • w write • / filter • r reload • q quit"
	if m.Status != "" {
		return adviceStyle.Render(m.Status) + "  " + dimStyle.Render(keys)
	}
	return dimStyle.Render(keys)
}

func truncate(s string, max int) string {
	if max < 4 || lipgloss.Width(s) <= max {
		return s
	}
	r := []rune(s)
	if len(r) > max-3 {
		r = r[:max-3]
	}
	return string(r) + "..."
}

// Package render turns store listings and repair reports into terminal text.
package render

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	nameStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))  // Blue
	valueStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))  // Green
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214")) // Yellow
	commandStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("135")).Underline(true)
	invalidStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	adviceStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("208")) // Orange
)

// DefaultWidth is used when stdout is not a terminal.
const DefaultWidth = 80

// TerminalWidth returns the stdout width, override when > 0, or DefaultWidth.
func TerminalWidth(override int) int {
	if override > 0 {
		return override
	}
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return DefaultWidth
}

package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"wenv/internal/model"
	"wenv/internal/pathlist"
)

// Variables writes one "NAME  value" line per variable. Values that would
// overflow width are replaced by a hint to use `wenv show NAME`.
func Variables(w io.Writer, vars []model.Variable, width int) error {
	longest := 0
	for _, v := range vars {
		if n := lipgloss.Width(v.Name); n > longest {
			longest = n
		}
	}
	nameCol := lipgloss.NewStyle().Width(longest + 2)

	var b strings.Builder
	for _, v := range vars {
		b.WriteString(nameCol.Render(nameStyle.Render(v.Name)))
		switch {
		case v.Unsupported:
			b.WriteString(warnStyle.Render(fmt.Sprintf("(unsupported type: %s)", v.Kind)))
		case longest+2+lipgloss.Width(v.Value) > width:
			b.WriteString(warnStyle.Render("(too long - run "))
			b.WriteString(commandStyle.Render("wenv show " + v.Name))
			b.WriteString(warnStyle.Render(")"))
		default:
			b.WriteString(valueStyle.Render(v.Value))
		}
		b.WriteString("\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// Value writes a single variable, one list entry per line. A value without
// the delimiter is a one-entry list.
func Value(w io.Writer, name, value, delim string) error {
	var b strings.Builder
	b.WriteString(nameStyle.Render(name))
	b.WriteString("\n")
	for _, e := range pathlist.Parse(value, delim) {
		b.WriteString("  ")
		if e.Raw == "" {
			b.WriteString(dimStyle.Render("(empty)"))
		} else {
			b.WriteString(valueStyle.Render(e.Raw))
		}
		b.WriteString("\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

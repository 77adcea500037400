package model

// Icons shared by the text report, the TUI and the web view.
// Single-width characters keep the columns aligned.
const (
	IconOK        = " " // No icon for healthy entries to reduce noise
	IconMissing   = "✗"
	IconEmpty     = "∅"
	IconDuplicate = "≈"
	IconRemoved   = "-"
	IconKept      = "+"
)

// StatusIcon picks the icon for a classified entry.
func StatusIcon(c Classified) string {
	switch {
	case c.Raw == "":
		return IconEmpty
	case c.Outcome == Invalid:
		return IconMissing
	case c.IsDuplicate():
		return IconDuplicate
	}
	return IconOK
}

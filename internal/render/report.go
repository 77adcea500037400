package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"wenv/internal/model"
	"wenv/internal/repair"
)

// EntryLine formats one classified entry, e.g. " 3. ✗ C:\gone (missing)".
func EntryLine(it model.Classified) string {
	text := it.Raw
	if text == "" {
		text = "(empty)"
	}
	line := fmt.Sprintf("%2d. %s %s", it.Index+1, model.StatusIcon(it), text)
	var notes []string
	if it.Outcome == model.Invalid {
		if it.Raw == "" {
			notes = append(notes, "empty entry")
		} else {
			notes = append(notes, "missing")
		}
	}
	if it.IsDuplicate() {
		notes = append(notes, fmt.Sprintf("duplicate of %d", it.DuplicateOf+1))
	}
	if len(notes) > 0 {
		line += " (" + strings.Join(notes, ", ") + ")"
	}
	return line
}

// Summary is the one-line count shown under a report.
func Summary(r model.RepairReport) string {
	return fmt.Sprintf("%d entries: %d valid, %d invalid", len(r.Items), r.ValidCount(), r.InvalidCount)
}

// Report renders a repair report as text.
func Report(r model.RepairReport) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(r.Variable))
	b.WriteString("\n\n")

	for _, it := range r.Items {
		line := EntryLine(it)
		if it.Outcome == model.Invalid {
			b.WriteString(invalidStyle.Render(line))
		} else {
			b.WriteString(line)
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(Summary(r))
	b.WriteString("\n")

	if r.HasFiltered {
		b.WriteString("\n")
		if !r.Changed() {
			b.WriteString(dimStyle.Render("Nothing to fix."))
			b.WriteString("\n")
			return b.String()
		}
		b.WriteString("Corrected value:\n  ")
		if r.Filtered == "" {
			b.WriteString(dimStyle.Render("(empty)"))
		} else {
			b.WriteString(valueStyle.Render(r.Filtered))
		}
		b.WriteString("\n")
		for _, e := range r.Removed() {
			text := e.Raw
			if text == "" {
				text = "(empty)"
			}
			b.WriteString(fmt.Sprintf("  %s %s\n", model.IconRemoved, text))
		}
	} else if r.InvalidCount > 0 {
		b.WriteString(adviceStyle.Render(fmt.Sprintf("Run `wenv path %s --fix` to preview a corrected value.", r.Variable)))
		b.WriteString("\n")
	}
	return b.String()
}

// Outcome describes what happened to a planned repair.
func Outcome(res repair.Result) string {
	switch {
	case res.Committed && res.Backup != nil:
		return fmt.Sprintf("Wrote %s (backup %s).", res.Report.Variable, res.Backup.ID)
	case res.Committed:
		return fmt.Sprintf("Wrote %s.", res.Report.Variable)
	case !res.Report.Changed():
		return ""
	case res.DryRun:
		return adviceStyle.Render("Dry run: nothing written. Pass --write to commit.")
	}
	return ""
}

// JSON writes v as indented JSON.
func JSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

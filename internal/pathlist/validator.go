package pathlist

import (
	"wenv/internal/model"
)

// ExistsFunc answers whether a path currently exists.
type ExistsFunc func(path string) bool

// Validate classifies every entry in input order and builds a report.
// exists is called once per non-empty entry; empty entries are always invalid.
// In filter mode the report also carries the list rebuilt from valid entries.
func Validate(entries []model.Entry, exists ExistsFunc, mode model.Mode, delim string) model.RepairReport {
	outcomes := make([]model.Outcome, len(entries))
	for i, e := range entries {
		outcomes[i] = classify(e, exists)
	}
	return assemble(entries, outcomes, mode, delim)
}

func classify(e model.Entry, exists ExistsFunc) model.Outcome {
	if e.Raw == "" {
		return model.Invalid
	}
	if exists(e.Raw) {
		return model.Valid
	}
	return model.Invalid
}

// assemble builds the report from outcomes indexed like entries.
func assemble(entries []model.Entry, outcomes []model.Outcome, mode model.Mode, delim string) model.RepairReport {
	report := model.RepairReport{
		Mode:      mode,
		Delimiter: delim,
		Original:  Join(entries, delim),
		Items:     make([]model.Classified, len(entries)),
	}

	seen := make(map[string]int)
	var kept []model.Entry
	for i, e := range entries {
		item := model.Classified{Entry: e, Outcome: outcomes[i], DuplicateOf: -1}
		if first, ok := seen[e.Raw]; ok && e.Raw != "" {
			item.DuplicateOf = first
		} else {
			seen[e.Raw] = i
		}
		if item.Outcome == model.Invalid {
			report.InvalidCount++
		} else {
			kept = append(kept, e)
		}
		report.Items[i] = item
	}

	if mode == model.ModeFilter {
		report.Filtered = Join(kept, delim)
		report.HasFiltered = true
	}
	return report
}

package model

import "fmt"

// Entry is a single element of a delimited list variable such as PATH.
type Entry struct {
	Index int    // Position in the original list (0-based)
	Raw   string // Text exactly as split, no trimming
}

// Outcome is the result of checking one entry.
type Outcome int

const (
	Invalid Outcome = iota
	Valid
)

func (o Outcome) String() string {
	if o == Valid {
		return "valid"
	}
	return "invalid"
}

// MarshalText lets reports encode outcomes as words in JSON.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

func (o *Outcome) UnmarshalText(b []byte) error {
	switch string(b) {
	case "valid":
		*o = Valid
	case "invalid":
		*o = Invalid
	default:
		return fmt.Errorf("unknown outcome %q", b)
	}
	return nil
}

// Mode selects how much work the validator does.
type Mode int

const (
	ModeReport Mode = iota // Classify only
	ModeFilter             // Classify and compute the corrected list
)

func (m Mode) String() string {
	if m == ModeFilter {
		return "filter"
	}
	return "report"
}

func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Mode) UnmarshalText(b []byte) error {
	mode, ok := ParseMode(string(b))
	if !ok {
		return fmt.Errorf("unknown mode %q", b)
	}
	*m = mode
	return nil
}

// ParseMode maps "report" / "filter" (and "fix") to a Mode.
func ParseMode(s string) (Mode, bool) {
	switch s {
	case "", "report":
		return ModeReport, true
	case "filter", "fix":
		return ModeFilter, true
	}
	return ModeReport, false
}

// Classified pairs an entry with its outcome.
type Classified struct {
	Entry
	Outcome     Outcome
	DuplicateOf int // Index of the first entry with the same text, or -1
}

// IsDuplicate reports whether an earlier entry has the same text.
func (c Classified) IsDuplicate() bool {
	return c.DuplicateOf >= 0
}

// RepairReport is the validator output for one list variable.
type RepairReport struct {
	Variable     string       `json:",omitempty"`
	Mode         Mode
	Delimiter    string
	Original     string
	Items        []Classified
	InvalidCount int

	// Only set in filter mode.
	Filtered    string
	HasFiltered bool
}

// ValidCount returns the number of entries that passed the existence check.
func (r RepairReport) ValidCount() int {
	return len(r.Items) - r.InvalidCount
}

// Kept returns the valid entries in original order.
func (r RepairReport) Kept() []Entry {
	var out []Entry
	for _, it := range r.Items {
		if it.Outcome == Valid {
			out = append(out, it.Entry)
		}
	}
	return out
}

// Removed returns the invalid entries in original order.
func (r RepairReport) Removed() []Entry {
	var out []Entry
	for _, it := range r.Items {
		if it.Outcome == Invalid {
			out = append(out, it.Entry)
		}
	}
	return out
}

// Changed reports whether committing the filtered list would alter the value.
func (r RepairReport) Changed() bool {
	return r.HasFiltered && r.Filtered != r.Original
}

// Variable is one name/value pair read from an environment store.
type Variable struct {
	Name  string
	Value string
	Kind  string // Store-specific value kind, e.g. "REG_EXPAND_SZ" or "string"

	// Set when the store holds a value wenv cannot treat as a string.
	// Value is empty in that case.
	Unsupported bool `json:",omitempty"`
}

package pathlist

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wenv/internal/model"
)

// fakeFS answers existence from a fixed set and records every call.
type fakeFS struct {
	mu      sync.Mutex
	present map[string]bool
	calls   []string
}

func newFakeFS(paths ...string) *fakeFS {
	f := &fakeFS{present: make(map[string]bool)}
	for _, p := range paths {
		f.present[p] = true
	}
	return f
}

func (f *fakeFS) Exists(path string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, path)
	return f.present[path]
}

func outcomes(r model.RepairReport) []model.Outcome {
	out := make([]model.Outcome, len(r.Items))
	for i, it := range r.Items {
		out[i] = it.Outcome
	}
	return out
}

func countInvalid(r model.RepairReport) int {
	n := 0
	for _, it := range r.Items {
		if it.Outcome == model.Invalid {
			n++
		}
	}
	return n
}

func TestValidateScenarios(t *testing.T) {
	tests := []struct {
		name         string
		raw          string
		present      []string
		wantOutcomes []model.Outcome
		wantInvalid  int
		wantFiltered string
	}{
		{
			name:         "missing directory removed",
			raw:          `C:\a;C:\b;C:\missing`,
			present:      []string{`C:\a`, `C:\b`},
			wantOutcomes: []model.Outcome{model.Valid, model.Valid, model.Invalid},
			wantInvalid:  1,
			wantFiltered: `C:\a;C:\b`,
		},
		{
			name:         "empty input",
			raw:          "",
			wantOutcomes: []model.Outcome{model.Invalid},
			wantInvalid:  1,
			wantFiltered: "",
		},
		{
			name:         "empty entry in the middle",
			raw:          "a;;b",
			present:      []string{"a", "b", ""},
			wantOutcomes: []model.Outcome{model.Valid, model.Invalid, model.Valid},
			wantInvalid:  1,
			wantFiltered: "a;b",
		},
		{
			name:         "all invalid",
			raw:          "x;y;z",
			wantOutcomes: []model.Outcome{model.Invalid, model.Invalid, model.Invalid},
			wantInvalid:  3,
			wantFiltered: "",
		},
		{
			name:         "duplicates validated independently",
			raw:          "a;b;a",
			present:      []string{"a"},
			wantOutcomes: []model.Outcome{model.Valid, model.Invalid, model.Valid},
			wantInvalid:  1,
			wantFiltered: "a;a",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries := Parse(tt.raw, ";")

			report := Validate(entries, newFakeFS(tt.present...).Exists, model.ModeReport, ";")
			assert.Equal(t, tt.wantOutcomes, outcomes(report))
			assert.Equal(t, tt.wantInvalid, report.InvalidCount)
			assert.Equal(t, countInvalid(report), report.InvalidCount)
			assert.Equal(t, tt.raw, report.Original)
			assert.False(t, report.HasFiltered)
			assert.Empty(t, report.Filtered)

			filtered := Validate(entries, newFakeFS(tt.present...).Exists, model.ModeFilter, ";")
			assert.Equal(t, report.Items, filtered.Items)
			assert.True(t, filtered.HasFiltered)
			assert.Equal(t, tt.wantFiltered, filtered.Filtered)
		})
	}
}

func TestValidateCallsPredicateOncePerEntryInOrder(t *testing.T) {
	fs := newFakeFS("b")
	Validate(Parse("a;b;;c;a", ";"), fs.Exists, model.ModeReport, ";")
	assert.Equal(t, []string{"a", "b", "c", "a"}, fs.calls)
}

func TestValidateEmptyEntryNeverValid(t *testing.T) {
	always := func(string) bool { return true }
	report := Validate(Parse(";", ";"), always, model.ModeFilter, ";")
	assert.Equal(t, 2, report.InvalidCount)
	assert.Equal(t, "", report.Filtered)
}

func TestValidateOrderAndFilterProperties(t *testing.T) {
	raw := "/usr/bin;/opt/x;;/usr/bin;/home/me/bin;/gone;/opt/x"
	fs := newFakeFS("/usr/bin", "/home/me/bin", "/opt/x")
	report := Validate(Parse(raw, ";"), fs.Exists, model.ModeFilter, ";")

	for i, it := range report.Items {
		assert.Equal(t, i, it.Index, "indices must follow input order")
	}

	var wantKept []string
	for _, it := range report.Items {
		if it.Outcome == model.Valid {
			wantKept = append(wantKept, it.Raw)
		}
	}
	assert.Equal(t, wantKept, raws(Parse(report.Filtered, ";")))
	assert.Equal(t, wantKept, raws(report.Kept()))
	assert.Len(t, report.Removed(), report.InvalidCount)
	assert.Equal(t, len(report.Items)-report.InvalidCount, report.ValidCount())
	assert.True(t, report.Changed())
}

func TestValidateMarksDuplicates(t *testing.T) {
	always := func(string) bool { return true }
	report := Validate(Parse("a;b;a;;", ";"), always, model.ModeReport, ";")

	require.Len(t, report.Items, 5)
	assert.Equal(t, -1, report.Items[0].DuplicateOf)
	assert.Equal(t, -1, report.Items[1].DuplicateOf)
	assert.Equal(t, 0, report.Items[2].DuplicateOf)
	assert.False(t, report.Items[3].IsDuplicate(), "empty entries are not reported as duplicates")
	assert.False(t, report.Items[4].IsDuplicate())
}

func TestValidateIsIdempotent(t *testing.T) {
	fs := newFakeFS("a", "c")
	entries := Parse("a;b;c", ";")
	first := Validate(entries, fs.Exists, model.ModeFilter, ";")
	second := Validate(entries, fs.Exists, model.ModeFilter, ";")
	assert.Equal(t, first, second)
}

func TestValidateUnchangedListIsNotChanged(t *testing.T) {
	fs := newFakeFS("a", "b")
	report := Validate(Parse("a;b", ";"), fs.Exists, model.ModeFilter, ";")
	assert.False(t, report.Changed())

	report = Validate(Parse("a;b", ";"), fs.Exists, model.ModeReport, ";")
	assert.False(t, report.Changed(), "report mode never proposes a change")
}

func TestValidateParallelMatchesSerial(t *testing.T) {
	raw := "a;b;;c;d;a;e;f;g;h;i;j;k"
	fs := newFakeFS("a", "c", "e", "g", "i", "k")
	entries := Parse(raw, ";")

	serial := Validate(entries, fs.Exists, model.ModeFilter, ";")
	for _, workers := range []int{0, 1, 3, 64} {
		parallel, err := ValidateParallel(context.Background(), entries, fs.Exists, model.ModeFilter, ";", workers)
		require.NoError(t, err)
		assert.Equal(t, serial, parallel, "workers=%d", workers)
	}
}

func TestValidateParallelCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ValidateParallel(ctx, Parse("a;b", ";"), newFakeFS().Exists, model.ModeReport, ";", 2)
	assert.ErrorIs(t, err, context.Canceled)
}
